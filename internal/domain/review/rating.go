package review

import (
	"math"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

const (
	MinRating = 1
	MaxRating = 5
)

func ValidateRating(r int) error {
	if r < MinRating || r > MaxRating {
		return httperr.ErrValidation("invalid_rating", "Rating must be between 1 and 5")
	}
	return nil
}

// Average is rounded to one decimal; zero when there are no reviews.
func Average(rs []models.Review) float64 {
	if len(rs) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rs {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(rs))*10) / 10
}
