package appointment

import "github.com/chasmapasal/chasmapasal-api/internal/httperr"

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return Status(s), nil
	}
	return "", httperr.ErrValidation("invalid_status", "Status must be scheduled, completed or cancelled")
}

// CanTransition guards status updates; cancelled and completed are final.
func CanTransition(from, to Status) error {
	if from == to {
		return nil
	}
	if from != StatusScheduled {
		return httperr.ErrConflict("invalid_state", "Appointment is already "+string(from))
	}
	return nil
}

// Blocks reports whether an appointment in this status occupies its slot.
func (s Status) Blocks() bool {
	return s != StatusCancelled
}
