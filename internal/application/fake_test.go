package application_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Sanalemba991/digiallink-sa/internal/application"
)

type fakeRepo struct {
	mu   sync.Mutex
	apps []application.JobApplication
	err  error
}

func (f *fakeRepo) Exists(_ context.Context, email, jobSlug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return false, f.err
	}
	for _, a := range f.apps {
		if a.Email == email && a.JobSlug == jobSlug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Create(_ context.Context, app *application.JobApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	for _, a := range f.apps {
		if a.Email == app.Email && a.JobSlug == app.JobSlug {
			return application.ErrDuplicateApplication
		}
	}
	app.CreatedAt = app.AppliedDate
	app.UpdatedAt = app.AppliedDate
	f.apps = append(f.apps, *app)
	return nil
}

func (f *fakeRepo) List(_ context.Context) ([]application.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	out := append([]application.JobApplication(nil), f.apps...)
	sort.Slice(out, func(i, j int) bool { return out[i].AppliedDate.After(out[j].AppliedDate) })
	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id string, status application.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	for i := range f.apps {
		if f.apps[i].ID == id {
			f.apps[i].Status = status
			return nil
		}
	}
	return application.ErrNotFound
}

func (f *fakeRepo) GetByResumeFilename(_ context.Context, filename string) (*application.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.apps {
		if a.ResumeFilename == filename {
			found := a
			return &found, nil
		}
	}
	return nil, application.ErrResumeNotFound
}

// put stores app directly, bypassing the service.
func (f *fakeRepo) put(app application.JobApplication) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apps = append(f.apps, app)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
