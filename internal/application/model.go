package application

import (
	"time"

	"github.com/Sanalemba991/digiallink-sa/internal/db"

	"github.com/uptrace/bun"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

type JobApplication struct {
	bun.BaseModel `bun:"table:job_applications,alias:ja"`

	ID             string    `bun:"id,pk,type:uuid"`
	FullName       string    `bun:"full_name,notnull"`
	Email          string    `bun:"email,notnull"`
	Phone          string    `bun:"phone,notnull"`
	CoverLetter    string    `bun:"cover_letter,notnull"`
	JobTitle       string    `bun:"job_title,notnull"`
	JobSlug        string    `bun:"job_slug,notnull,default:''"`
	ResumeFilename string    `bun:"resume_filename,notnull,default:''"`
	ResumePath     string    `bun:"resume_path,notnull,default:''"`
	Status         Status    `bun:"status,notnull,default:'pending'"`
	AppliedDate    time.Time `bun:"applied_date,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func Schema() db.Schema {
	return db.Schema{
		Model: (*JobApplication)(nil),
		Table: "job_applications",
		Indexes: []db.Index{
			{Name: "idx_job_applications_email_job_slug", Columns: []string{"email", "job_slug"}, Unique: true},
			{Name: "idx_job_applications_status", Columns: []string{"status"}},
			{Name: "idx_job_applications_applied_date", Columns: []string{"applied_date DESC"}},
			{Name: "idx_job_applications_resume_filename", Columns: []string{"resume_filename"}},
		},
	}
}

type SubmitRequest struct {
	FullName    string `validate:"required"`
	Email       string `validate:"required,emailshape"`
	Phone       string `validate:"required"`
	CoverLetter string `validate:"required"`
	JobTitle    string `validate:"required"`
	JobSlug     string
}

// ResumeUpload is the optional file part of a submission.
type ResumeUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// Resume is a stored resume ready to be served back.
type Resume struct {
	Filename    string
	ContentType string
	Data        []byte
}

type UpdateStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type Response struct {
	ID             string `json:"id"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	CoverLetter    string `json:"coverLetter"`
	JobTitle       string `json:"jobTitle"`
	JobSlug        string `json:"jobSlug"`
	ResumeFilename string `json:"resumeFilename"`
	ResumePath     string `json:"resumePath"`
	Status         Status `json:"status"`
	AppliedDate    string `json:"appliedDate"`
	CreatedAt      string `json:"createdAt"`
}
