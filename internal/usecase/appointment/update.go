package appointment

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/chasmapasal/chasmapasal-api/internal/auth"
	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/appointment"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type UpdateAppointmentInput struct {
	Actor auth.Identity
	ID    uint

	Date    *string
	Time    *string
	Contact *string
	Status  *string
}

type UpdateAppointment struct {
	repo domain.Repository
	log  *logrus.Logger
}

func NewUpdateAppointment(repo domain.Repository, log *logrus.Logger) *UpdateAppointment {
	return &UpdateAppointment{repo: repo, log: log}
}

func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	in UpdateAppointmentInput,
) (*models.Appointment, error) {

	var ap *models.Appointment

	err := uc.repo.Transaction(ctx, func(repo domain.Repository) error {
		var err error
		ap, err = repo.Get(ctx, in.ID)
		if err != nil {
			return httperr.MapNotFound(err, "appointment_not_found", "Appointment not found")
		}
		if err := authorize(in.Actor, ap); err != nil {
			return err
		}

		moved := false

		if in.Date != nil && *in.Date != ap.Date {
			if _, err := domain.ParseDate(*in.Date); err != nil {
				return err
			}
			ap.Date = *in.Date
			moved = true
		}

		if in.Time != nil {
			clock, err := domain.ParseClock(*in.Time)
			if err != nil {
				return err
			}
			if t := clock.Format(domain.ClockLayout); t != ap.Time {
				ap.Time = t
				moved = true
			}
		}

		if in.Contact != nil {
			if *in.Contact == "" {
				return httperr.ErrValidation("missing_contact", "Contact must not be empty")
			}
			ap.Contact = *in.Contact
		}

		if in.Status != nil {
			next, err := domain.ParseStatus(*in.Status)
			if err != nil {
				return err
			}
			if err := domain.CanTransition(domain.Status(ap.Status), next); err != nil {
				return err
			}
			ap.Status = string(next)
		}

		// --------------------------------------------------
		// Moving a live booking re-checks the one hour gap
		// --------------------------------------------------
		if moved && domain.Status(ap.Status).Blocks() {
			if err := repo.LockDoctorDay(ctx, ap.DoctorID, ap.Date); err != nil {
				return err
			}

			existing, err := repo.ListForDoctorOnDate(ctx, ap.DoctorID, ap.Date)
			if err != nil {
				return err
			}
			if domain.Conflicts(ap.Time, domain.BookedTimes(existing, ap.ID)) {
				return domain.ErrSlotTaken()
			}
		}

		return repo.Update(ctx, ap)
	})
	if err != nil {
		if httperr.IsUniqueViolation(err) {
			return nil, domain.ErrSlotTaken()
		}
		return nil, err
	}

	uc.log.WithFields(logrus.Fields{
		"appointment_id": ap.ID,
		"status":         ap.Status,
	}).Info("appointment updated")

	return ap, nil
}

type DeleteAppointment struct {
	repo domain.Repository
	log  *logrus.Logger
}

func NewDeleteAppointment(repo domain.Repository, log *logrus.Logger) *DeleteAppointment {
	return &DeleteAppointment{repo: repo, log: log}
}

func (uc *DeleteAppointment) Execute(ctx context.Context, actor auth.Identity, id uint) error {
	ap, err := uc.repo.Get(ctx, id)
	if err != nil {
		return httperr.MapNotFound(err, "appointment_not_found", "Appointment not found")
	}
	if err := authorize(actor, ap); err != nil {
		return err
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return httperr.MapNotFound(err, "appointment_not_found", "Appointment not found")
	}

	uc.log.WithField("appointment_id", id).Info("appointment deleted")
	return nil
}

// authorize lets the two parties and admins touch an appointment.
func authorize(actor auth.Identity, ap *models.Appointment) error {
	if actor.IsAdmin() || actor.UserID == ap.DoctorID || actor.UserID == ap.PatientID {
		return nil
	}
	return httperr.ErrForbidden("forbidden", "You cannot modify this appointment")
}
