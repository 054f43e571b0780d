package appointment

import (
	"context"

	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/appointment"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
)

type GetAvailability struct {
	repo domain.Repository
}

func NewGetAvailability(repo domain.Repository) *GetAvailability {
	return &GetAvailability{repo: repo}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	doctorID uint,
	date string,
) (*domain.Availability, error) {

	if doctorID == 0 || date == "" {
		return nil, httperr.ErrValidation("missing_fields", "Doctor ID and date are required")
	}
	if _, err := domain.ParseDate(date); err != nil {
		return nil, err
	}

	existing, err := uc.repo.ListForDoctorOnDate(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	return &domain.Availability{
		AvailableSlots: domain.AvailableSlots(domain.BookedTimes(existing, 0)),
		AllSlots:       domain.AllSlots(),
	}, nil
}
