package submission

import (
	"time"

	"github.com/uptrace/bun"
)

// Status is the triage state of a submission. Any state is reachable from
// any other, but only through an explicit update; viewing a submission never
// changes its status.
type Status string

const (
	StatusNew      Status = "new"
	StatusRead     Status = "read"
	StatusReplied  Status = "replied"
	StatusArchived Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusRead, StatusReplied, StatusArchived:
		return true
	}
	return false
}

// Statuses lists every triage state, in workflow order.
func Statuses() []Status {
	return []Status{StatusNew, StatusRead, StatusReplied, StatusArchived}
}

// Submission is a contact form message. Name, email and message are
// write-once; only status and updated_at change after insert.
type Submission struct {
	bun.BaseModel `bun:"table:submissions,alias:s"`

	ID        string    `bun:"id,pk" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email,notnull" json:"email"`
	Message   string    `bun:"message,notnull" json:"message"`
	Status    Status    `bun:"status,notnull,default:'new'" json:"status"`
	IPAddress string    `bun:"ip_address" json:"ip_address,omitempty"`
	UserAgent string    `bun:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}
