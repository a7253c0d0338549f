package contact_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Sanalemba991/digiallink-sa/internal/contact"
)

type fakeRepo struct {
	mu       sync.Mutex
	contacts []contact.Contact
	err      error
}

func (f *fakeRepo) Create(_ context.Context, c *contact.Contact, since time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	for _, existing := range f.contacts {
		if existing.Email == c.Email && existing.Subject == c.Subject && !existing.SubmittedDate.Before(since) {
			return contact.ErrDuplicateSubmission
		}
	}
	c.CreatedAt = c.SubmittedDate
	c.UpdatedAt = c.SubmittedDate
	f.contacts = append(f.contacts, *c)
	return nil
}

func (f *fakeRepo) List(_ context.Context) ([]contact.Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	out := append([]contact.Contact(nil), f.contacts...)
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedDate.After(out[j].SubmittedDate) })
	return out, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id string, status contact.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	for i := range f.contacts {
		if f.contacts[i].ID == id {
			f.contacts[i].Status = status
			return nil
		}
	}
	return contact.ErrNotFound
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
