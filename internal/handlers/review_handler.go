package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/httpresp"
	"github.com/chasmapasal/chasmapasal-api/internal/middleware"
	ucReview "github.com/chasmapasal/chasmapasal-api/internal/usecase/review"
)

type ReviewHandler struct {
	svc *ucReview.Service
}

func NewReviewHandler(svc *ucReview.Service) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

type CreateReviewRequest struct {
	DoctorID uint   `json:"doctorId" binding:"required"`
	Rating   int    `json:"rating" binding:"required"`
	Review   string `json:"review"`
}

type UpdateReviewRequest struct {
	Rating *int    `json:"rating,omitempty"`
	Review *string `json:"review,omitempty"`
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.svc.Create(c.Request.Context(), ucReview.CreateReviewInput{
		Actor:    middleware.Identity(c),
		DoctorID: req.DoctorID,
		Rating:   req.Rating,
		Body:     req.Review,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Data(c, http.StatusCreated, r)
}

func (h *ReviewHandler) ListForDoctor(c *gin.Context) {
	doctorID, ok := uintParam(c, "doctorId")
	if !ok {
		return
	}

	out, err := h.svc.ListForDoctor(c.Request.Context(), doctorID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Data(c, http.StatusOK, out)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	r, err := h.svc.Update(c.Request.Context(), ucReview.UpdateReviewInput{
		Actor:  middleware.Identity(c),
		ID:     id,
		Rating: req.Rating,
		Body:   req.Review,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Data(c, http.StatusOK, r)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), middleware.Identity(c), id); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Message(c, "Review deleted")
}
