package review

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/chasmapasal/chasmapasal-api/internal/auth"
	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/review"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
)

type CreateReviewInput struct {
	Actor    auth.Identity
	DoctorID uint
	Rating   int
	Body     string
}

type UpdateReviewInput struct {
	Actor  auth.Identity
	ID     uint
	Rating *int
	Body   *string
}

// DoctorReviews is what a doctor's profile page shows.
type DoctorReviews struct {
	Reviews       []models.Review `json:"reviews"`
	AverageRating float64         `json:"averageRating"`
	Total         int             `json:"total"`
}

type Service struct {
	repo domain.Repository
	log  *logrus.Logger
}

func NewService(repo domain.Repository, log *logrus.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) Create(ctx context.Context, in CreateReviewInput) (*models.Review, error) {
	if err := domain.ValidateRating(in.Rating); err != nil {
		return nil, err
	}

	doctor, err := s.repo.GetUser(ctx, in.DoctorID)
	if err != nil {
		return nil, httperr.MapNotFound(err, "doctor_not_found", "Doctor not found")
	}
	if !doctor.IsDoctor() {
		return nil, httperr.ErrNotFound("doctor_not_found", "Doctor not found")
	}
	if doctor.ID == in.Actor.UserID {
		return nil, httperr.ErrConflict("self_review", "Doctors cannot review themselves")
	}

	author, err := s.repo.GetUser(ctx, in.Actor.UserID)
	if err != nil {
		return nil, httperr.MapNotFound(err, "user_not_found", "User not found")
	}

	r := &models.Review{
		DoctorID: doctor.ID,
		UserID:   author.ID,
		Rating:   in.Rating,
		Body:     in.Body,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	r.Author = author

	s.log.WithFields(logrus.Fields{
		"review_id": r.ID,
		"doctor_id": r.DoctorID,
		"rating":    r.Rating,
	}).Info("review created")

	return r, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uint) (*DoctorReviews, error) {
	reviews, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	return &DoctorReviews{
		Reviews:       reviews,
		AverageRating: domain.Average(reviews),
		Total:         len(reviews),
	}, nil
}

func (s *Service) Update(ctx context.Context, in UpdateReviewInput) (*models.Review, error) {
	r, err := s.get(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if r.UserID != in.Actor.UserID {
		return nil, httperr.ErrForbidden("forbidden", "Only the author can edit this review")
	}

	if in.Rating != nil {
		if err := domain.ValidateRating(*in.Rating); err != nil {
			return nil, err
		}
		r.Rating = *in.Rating
	}
	if in.Body != nil {
		r.Body = *in.Body
	}

	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Identity, id uint) error {
	r, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if r.UserID != actor.UserID && !actor.IsAdmin() {
		return httperr.ErrForbidden("forbidden", "Only the author can delete this review")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return httperr.MapNotFound(err, "review_not_found", "Review not found")
	}
	return nil
}

func (s *Service) get(ctx context.Context, id uint) (*models.Review, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, httperr.MapNotFound(err, "review_not_found", "Review not found")
	}
	return r, nil
}
