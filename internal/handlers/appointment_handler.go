package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/httpresp"
	"github.com/chasmapasal/chasmapasal-api/internal/middleware"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
	ucAppointment "github.com/chasmapasal/chasmapasal-api/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	book         *ucAppointment.BookAppointment
	availability *ucAppointment.GetAvailability
	list         *ucAppointment.ListAppointments
	listByUser   *ucAppointment.ListUserAppointments
	update       *ucAppointment.UpdateAppointment
	delete       *ucAppointment.DeleteAppointment
	clearPast    *ucAppointment.ClearPastAppointments
}

func NewAppointmentHandler(
	book *ucAppointment.BookAppointment,
	availability *ucAppointment.GetAvailability,
	list *ucAppointment.ListAppointments,
	listByUser *ucAppointment.ListUserAppointments,
	update *ucAppointment.UpdateAppointment,
	del *ucAppointment.DeleteAppointment,
	clearPast *ucAppointment.ClearPastAppointments,
) *AppointmentHandler {
	return &AppointmentHandler{
		book:         book,
		availability: availability,
		list:         list,
		listByUser:   listByUser,
		update:       update,
		delete:       del,
		clearPast:    clearPast,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	DoctorID  uint   `json:"doctorId" binding:"required"`
	PatientID uint   `json:"patientId"`
	Contact   string `json:"contact" binding:"required"`
}

type UpdateAppointmentRequest struct {
	Date    *string `json:"date,omitempty"`
	Time    *string `json:"time,omitempty"`
	Contact *string `json:"contact,omitempty"`
	Status  *string `json:"status,omitempty"`
}

type ClearPastRequest struct {
	UserID uint `json:"userId"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	actor := middleware.Identity(c)
	patientID := req.PatientID
	if patientID == 0 {
		patientID = actor.UserID
	}
	// doctors and admins may book on a patient's behalf
	if patientID != actor.UserID && actor.Role == models.RoleUser {
		httperr.Forbidden(c, "forbidden", "You can only book appointments for yourself")
		return
	}

	ap, err := h.book.Execute(c.Request.Context(), ucAppointment.BookAppointmentInput{
		Date:      req.Date,
		Time:      req.Time,
		DoctorID:  req.DoctorID,
		PatientID: patientID,
		Contact:   req.Contact,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Data(c, http.StatusCreated, ap)
}

// ======================================================
// READ
// ======================================================

func (h *AppointmentHandler) AvailableSlots(c *gin.Context) {
	var doctorID uint
	if raw := c.Query("doctorId"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			httperr.BadRequest(c, "invalid_doctorId", "Invalid doctorId")
			return
		}
		doctorID = uint(v)
	}

	out, err := h.availability.Execute(c.Request.Context(), doctorID, c.Query("date"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Data(c, http.StatusOK, out)
}

func (h *AppointmentHandler) List(c *gin.Context) {
	aps, err := h.list.Execute(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Data(c, http.StatusOK, nonNil(aps))
}

func (h *AppointmentHandler) ListByUser(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}

	aps, err := h.listByUser.Execute(c.Request.Context(), userID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Data(c, http.StatusOK, nonNil(aps))
}

// ======================================================
// UPDATE / DELETE
// ======================================================

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	ap, err := h.update.Execute(c.Request.Context(), ucAppointment.UpdateAppointmentInput{
		Actor:   middleware.Identity(c),
		ID:      id,
		Date:    req.Date,
		Time:    req.Time,
		Contact: req.Contact,
		Status:  req.Status,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Data(c, http.StatusOK, ap)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.delete.Execute(c.Request.Context(), middleware.Identity(c), id); err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, "Appointment deleted successfully")
}

func (h *AppointmentHandler) ClearPast(c *gin.Context) {
	var req ClearPastRequest
	if !bindJSON(c, &req) {
		return
	}

	actor := middleware.Identity(c)
	userID := req.UserID
	if userID == 0 {
		userID = actor.UserID
	}
	if userID != actor.UserID && !actor.IsAdmin() {
		httperr.Forbidden(c, "forbidden", "Authenticated Access Denied")
		return
	}

	n, err := h.clearPast.Execute(c.Request.Context(), userID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Message(c, fmt.Sprintf("Cleared %d past appointments", n))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
