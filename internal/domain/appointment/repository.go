package appointment

import (
	"context"

	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type Repository interface {
	// Transaction runs fn against a repository bound to one database transaction.
	Transaction(
		ctx context.Context,
		fn func(repo Repository) error,
	) error

	// LockDoctorDay serialises bookings for a doctor and date until the
	// surrounding transaction ends.
	LockDoctorDay(
		ctx context.Context,
		doctorID uint,
		date string,
	) error

	// -------- Users --------
	GetUser(
		ctx context.Context,
		id uint,
	) (*models.User, error)

	// -------- Appointment --------
	ListForDoctorOnDate(
		ctx context.Context,
		doctorID uint,
		date string,
	) ([]models.Appointment, error)

	Create(
		ctx context.Context,
		ap *models.Appointment,
	) error

	Get(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	Update(
		ctx context.Context,
		ap *models.Appointment,
	) error

	Delete(
		ctx context.Context,
		id uint,
	) error

	List(ctx context.Context) ([]models.Appointment, error)

	// ListByUser returns appointments where the user is doctor or patient,
	// with both parties loaded.
	ListByUser(
		ctx context.Context,
		userID uint,
	) ([]models.Appointment, error)

	DeleteByIDs(
		ctx context.Context,
		ids []uint,
	) (int64, error)

	Count(ctx context.Context) (int64, error)
}
