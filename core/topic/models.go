package topic

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/olety/Diplomatool/core"
)

// States
const (
	StateProposed  = "proposed"
	StateChecked   = "checked"
	StateAvailable = "available"
	StateVotedFor  = "voted_for"
)

type Topic struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	ShortDescription string    `json:"short_description"`
	Level            string    `json:"level"`
	StudentID        string    `json:"student_id"` // empty when the topic is open to any student
	SupervisorID     string    `json:"supervisor_id"`
	VotedFor         bool      `json:"voted_for"`
	Available        bool      `json:"available"`
	Checked          bool      `json:"checked"`
	CreatedAt        time.Time `json:"created_at"` // UTC
	UpdatedAt        time.Time `json:"updated_at"` // UTC
}

// State returns the furthest step the topic reached: proposed -> checked -> available -> voted_for.
func (t Topic) State() string {
	switch {
	case t.VotedFor:
		return StateVotedFor
	case t.Available:
		return StateAvailable
	case t.Checked:
		return StateChecked
	}
	return StateProposed
}

// ProposeTopic is the form a student fills to suggest a topic of their own.
type ProposeTopic struct {
	Name        string `json:"name" form:"name" validate:"required,max=100"`
	Description string `json:"description" form:"description" validate:"required"`
	Supervisor  string `json:"supervisor" form:"supervisor" validate:"required"`
}

func (pt *ProposeTopic) Validate(validate *validator.Validate) error {
	pt.Name = core.CleanString(pt.Name)
	pt.Description = core.CleanString(pt.Description)
	pt.Supervisor = core.CleanString(pt.Supervisor)
	return validate.Struct(pt)
}

// NewTopic contains information needed by staff to create a Topic.
type NewTopic struct {
	Name         string `json:"name" validate:"required,max=255"`
	Description  string `json:"description"`
	Level        string `json:"level" validate:"omitempty,max=50"`
	SupervisorID string `json:"supervisor" validate:"required"`
	StudentID    string `json:"student"`
}

func (nt *NewTopic) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Description = core.CleanString(nt.Description)
	nt.Level = core.CleanString(nt.Level)
	nt.SupervisorID = core.CleanString(nt.SupervisorID)
	nt.StudentID = core.CleanString(nt.StudentID)
	return validate.Struct(nt)
}

// QueryFilter applies AND operation on its set fields.
type QueryFilter struct {
	Available    *bool
	StudentID    string
	SupervisorID string
}
