package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/httpresp"
	"github.com/chasmapasal/chasmapasal-api/internal/middleware"
	ucAccount "github.com/chasmapasal/chasmapasal-api/internal/usecase/account"
)

// UserHandler serves the caller's profile and the doctor directory.
type UserHandler struct {
	accounts *ucAccount.Service
}

func NewUserHandler(accounts *ucAccount.Service) *UserHandler {
	return &UserHandler{accounts: accounts}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.accounts.Me(c.Request.Context(), middleware.Identity(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateImage takes a multipart "image" field.
func (h *UserHandler) UpdateImage(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}

	data, ok := formFile(c, "image")
	if !ok {
		return
	}
	if data == nil {
		httperr.BadRequest(c, "empty_file", "No file uploaded")
		return
	}

	user, err := h.accounts.UpdateImage(c.Request.Context(), middleware.Identity(c), userID, data)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) ListDoctors(c *gin.Context) {
	doctors, err := h.accounts.ListDoctors(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(doctors))
}

func (h *UserHandler) DeleteDoctor(c *gin.Context) {
	doctorID, ok := uintParam(c, "doctorId")
	if !ok {
		return
	}

	if err := h.accounts.DeleteDoctor(c.Request.Context(), doctorID); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Message(c, "Doctor deleted successfully")
}
