package appointment

import (
	"context"

	"github.com/sirupsen/logrus"

	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/appointment"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
	"github.com/chasmapasal/chasmapasal-api/internal/notify"
)

// ======================================================
// INPUT
// ======================================================

type BookAppointmentInput struct {
	Date      string
	Time      string
	DoctorID  uint
	PatientID uint
	Contact   string
}

// ======================================================
// USE CASE
// ======================================================

type BookAppointment struct {
	repo     domain.Repository
	notifier notify.Notifier
	log      *logrus.Logger
}

func NewBookAppointment(
	repo domain.Repository,
	notifier notify.Notifier,
	log *logrus.Logger,
) *BookAppointment {
	return &BookAppointment{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *BookAppointment) Execute(
	ctx context.Context,
	in BookAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// Input
	// --------------------------------------------------
	if in.DoctorID == 0 || in.PatientID == 0 || in.Contact == "" {
		return nil, httperr.ErrValidation("missing_fields", "Please provide all required fields")
	}

	if _, err := domain.ParseDate(in.Date); err != nil {
		return nil, err
	}
	clock, err := domain.ParseClock(in.Time)
	if err != nil {
		return nil, err
	}

	var (
		ap      *models.Appointment
		patient *models.User
	)

	err = uc.repo.Transaction(ctx, func(repo domain.Repository) error {

		// --------------------------------------------------
		// Parties
		// --------------------------------------------------
		doctor, err := repo.GetUser(ctx, in.DoctorID)
		if err != nil {
			return httperr.MapNotFound(err, "doctor_not_found", "Doctor not found")
		}
		if !doctor.IsDoctor() {
			return httperr.ErrNotFound("doctor_not_found", "Doctor not found")
		}

		patient, err = repo.GetUser(ctx, in.PatientID)
		if err != nil {
			return httperr.MapNotFound(err, "patient_not_found", "Patient not found")
		}

		// --------------------------------------------------
		// Conflict check under the doctor/day lock
		// --------------------------------------------------
		if err := repo.LockDoctorDay(ctx, in.DoctorID, in.Date); err != nil {
			return err
		}

		existing, err := repo.ListForDoctorOnDate(ctx, in.DoctorID, in.Date)
		if err != nil {
			return err
		}

		if domain.Conflicts(clock.Format(domain.ClockLayout), domain.BookedTimes(existing, 0)) {
			return domain.ErrSlotTaken()
		}

		ap = &models.Appointment{
			Date:      in.Date,
			Time:      clock.Format(domain.ClockLayout),
			DoctorID:  in.DoctorID,
			PatientID: in.PatientID,
			Contact:   in.Contact,
			Status:    string(domain.StatusScheduled),
		}

		return repo.Create(ctx, ap)
	})
	if err != nil {
		if httperr.IsUniqueViolation(err) {
			return nil, domain.ErrSlotTaken()
		}
		return nil, err
	}

	uc.log.WithFields(logrus.Fields{
		"appointment_id": ap.ID,
		"doctor_id":      ap.DoctorID,
		"date":           ap.Date,
		"time":           ap.Time,
	}).Info("appointment booked")

	// --------------------------------------------------
	// Doctor notification (best effort)
	// --------------------------------------------------
	uc.notifier.Dispatch(notify.Event{
		UserID:  ap.DoctorID,
		Message: domain.NotificationMessage(patient, ap.Date, ap.Time),
	})

	return ap, nil
}
