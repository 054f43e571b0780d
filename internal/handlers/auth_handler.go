package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/httpresp"
	ucAccount "github.com/chasmapasal/chasmapasal-api/internal/usecase/account"
)

type AuthHandler struct {
	accounts *ucAccount.Service
}

func NewAuthHandler(accounts *ucAccount.Service) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// --------- Requests ---------

type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Role      string `json:"role"`

	MedicalLicense string `json:"medicalLicense"`
	Specialization string `json:"specialization"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SendVerifyOTPRequest struct {
	UserID uint `json:"userId" binding:"required"`
}

type VerifyEmailRequest struct {
	UserID uint   `json:"userId" binding:"required"`
	OTP    string `json:"otp" binding:"required"`
}

type SendResetOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// --------- Handlers ---------

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	s, err := h.accounts.Register(c.Request.Context(), ucAccount.RegisterInput{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Password:       req.Password,
		Role:           req.Role,
		MedicalLicense: req.MedicalLicense,
		Specialization: req.Specialization,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, s)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	s, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, s)
}

func (h *AuthHandler) SendVerifyOTP(c *gin.Context) {
	var req SendVerifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.accounts.SendVerifyOTP(c.Request.Context(), req.UserID); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Message(c, "Verification OTP sent to your Email")
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.accounts.VerifyEmail(c.Request.Context(), req.UserID, req.OTP); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Message(c, "Email Verified Successfully")
}

func (h *AuthHandler) SendResetOTP(c *gin.Context) {
	var req SendResetOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.accounts.SendResetOTP(c.Request.Context(), req.Email); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Message(c, "OTP sent to your email")
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.accounts.ResetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.Message(c, "Password reset successfully")
}
