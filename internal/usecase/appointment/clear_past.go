package appointment

import (
	"context"

	"github.com/sirupsen/logrus"

	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/appointment"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/timezone"
)

// ClearPastAppointments deletes a user's appointments that started before now
// in the clinic's timezone.
type ClearPastAppointments struct {
	repo   domain.Repository
	clinic *timezone.Clinic
	log    *logrus.Logger
}

func NewClearPastAppointments(
	repo domain.Repository,
	clinic *timezone.Clinic,
	log *logrus.Logger,
) *ClearPastAppointments {
	return &ClearPastAppointments{
		repo:   repo,
		clinic: clinic,
		log:    log,
	}
}

func (uc *ClearPastAppointments) Execute(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, httperr.ErrValidation("missing_user", "User ID is required")
	}

	aps, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	ids := make([]uint, 0, len(aps))
	for _, ap := range aps {
		passed, err := uc.clinic.Passed(ap.Date, ap.Time)
		if err != nil {
			uc.log.Warnf("Skipping appointment %d with unreadable date %q %q", ap.ID, ap.Date, ap.Time)
			continue
		}
		if passed {
			ids = append(ids, ap.ID)
		}
	}

	n, err := uc.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}

	uc.log.WithField("user_id", userID).Infof("cleared %d past appointments", n)
	return n, nil
}
