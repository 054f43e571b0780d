package appointment

import (
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

const ConflictMessage = "Appointment already exists within 1 hour. Please change date or time"

func ErrSlotTaken() error {
	return httperr.ErrConflict("time_conflict", ConflictMessage)
}

// BookedTimes returns the times that still occupy a slot, skipping exclude.
func BookedTimes(aps []models.Appointment, exclude uint) []string {
	out := make([]string, 0, len(aps))
	for _, ap := range aps {
		if ap.ID == exclude || !Status(ap.Status).Blocks() {
			continue
		}
		out = append(out, ap.Time)
	}
	return out
}

// NotificationMessage is what the doctor reads after a booking.
func NotificationMessage(patient *models.User, date, clock string) string {
	return "New appointment scheduled with " + patient.FirstName + " " + patient.LastName +
		" on " + date + " at " + clock + "."
}
