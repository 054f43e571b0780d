package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/httpresp"
	"github.com/chasmapasal/chasmapasal-api/internal/middleware"
	ucNotification "github.com/chasmapasal/chasmapasal-api/internal/usecase/notification"
)

type NotificationHandler struct {
	svc *ucNotification.Service
}

func NewNotificationHandler(svc *ucNotification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type CreateNotificationRequest struct {
	UserID  uint   `json:"userId" binding:"required"`
	Message string `json:"message" binding:"required"`
}

func (h *NotificationHandler) Create(c *gin.Context) {
	var req CreateNotificationRequest
	if !bindJSON(c, &req) {
		return
	}

	n, err := h.svc.Create(c.Request.Context(), req.UserID, req.Message)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Data(c, http.StatusCreated, n)
}

func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}

	ns, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Data(c, http.StatusOK, nonNil(ns))
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	n, err := h.svc.MarkRead(c.Request.Context(), middleware.Identity(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Data(c, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}

	n, err := h.svc.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Message(c, fmt.Sprintf("%d notifications marked as read", n))
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), middleware.Identity(c), id); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Message(c, "Notification deleted")
}

func (h *NotificationHandler) DeleteAll(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}

	n, err := h.svc.DeleteAll(c.Request.Context(), userID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Message(c, fmt.Sprintf("%d notifications deleted", n))
}
