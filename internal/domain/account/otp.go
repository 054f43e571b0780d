package account

import "time"

const (
	PurposeVerifyEmail   = "verify_email"
	PurposeResetPassword = "reset_password"

	VerifyOTPTTL = 24 * time.Hour
	ResetOTPTTL  = 15 * time.Minute
)
