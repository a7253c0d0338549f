package contact

import (
	"time"

	"github.com/Sanalemba991/digiallink-sa/internal/db"

	"github.com/uptrace/bun"
)

type Status string

const (
	StatusNew      Status = "new"
	StatusRead     Status = "read"
	StatusReplied  Status = "replied"
	StatusResolved Status = "resolved"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusRead, StatusReplied, StatusResolved:
		return true
	}
	return false
}

type Contact struct {
	bun.BaseModel `bun:"table:contacts,alias:c"`

	ID            string    `bun:"id,pk,type:uuid"`
	Name          string    `bun:"name,notnull"`
	Email         string    `bun:"email,notnull"`
	Phone         string    `bun:"phone,notnull"`
	Subject       string    `bun:"subject,notnull"`
	Message       string    `bun:"message,notnull"`
	Status        Status    `bun:"status,notnull,default:'new'"`
	SubmittedDate time.Time `bun:"submitted_date,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Schema is the contacts table with the index backing the duplicate lookup.
func Schema() db.Schema {
	return db.Schema{
		Model: (*Contact)(nil),
		Table: "contacts",
		Indexes: []db.Index{
			{Name: "idx_contacts_email_subject_submitted", Columns: []string{"email", "subject", "submitted_date"}},
		},
	}
}

type SubmitRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,emailshape"`
	Phone   string `json:"phone" validate:"required"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}

type UpdateStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Response is the admin view of a contact message.
type Response struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Subject       string `json:"subject"`
	Message       string `json:"message"`
	Status        Status `json:"status"`
	SubmittedDate string `json:"submittedDate"`
	CreatedAt     string `json:"createdAt"`
}
