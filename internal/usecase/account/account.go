package account

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/chasmapasal/chasmapasal-api/internal/auth"
	domain "github.com/chasmapasal/chasmapasal-api/internal/domain/account"
	"github.com/chasmapasal/chasmapasal-api/internal/httperr"
	"github.com/chasmapasal/chasmapasal-api/internal/infra/mailer"
	"github.com/chasmapasal/chasmapasal-api/internal/models"
	"github.com/chasmapasal/chasmapasal-api/internal/otp"
	"github.com/chasmapasal/chasmapasal-api/internal/validators"
)

// ImageStore keeps profile pictures.
type ImageStore interface {
	Store(ctx context.Context, folder string, data []byte) (string, error)
	Discard(ctx context.Context, url string)
}

type Service struct {
	repo        domain.Repository
	tokens      *auth.TokenIssuer
	otps        *otp.Service
	mail        mailer.Mailer
	images      ImageStore
	checkDomain validators.EmailDomainChecker
	log         *logrus.Logger
}

func NewService(
	repo domain.Repository,
	tokens *auth.TokenIssuer,
	otps *otp.Service,
	mail mailer.Mailer,
	images ImageStore,
	log *logrus.Logger,
) *Service {
	return &Service{
		repo:        repo,
		tokens:      tokens,
		otps:        otps,
		mail:        mail,
		images:      images,
		checkDomain: validators.IsEmailDomainValid,
		log:         log,
	}
}

// WithDomainChecker replaces the DNS lookup used at registration.
func (s *Service) WithDomainChecker(check validators.EmailDomainChecker) *Service {
	s.checkDomain = check
	return s
}

// --------- Register / Login ---------

type RegisterInput struct {
	FirstName      string
	LastName       string
	Email          string
	Password       string
	Role           string
	MedicalLicense string
	Specialization string
}

// Session is returned by register and login.
type Session struct {
	ID        uint   `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ImageURL  string `json:"image_url,omitempty"`
	Token     string `json:"token,omitempty"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleDoctor {
		return nil, httperr.ErrValidation("invalid_role", "Role must be user or doctor")
	}

	if role == models.RoleDoctor {
		if strings.TrimSpace(in.MedicalLicense) == "" {
			return nil, httperr.ErrValidation("missing_fields", "Please enter all required fields: missing medicalLicense")
		}
		if strings.TrimSpace(in.Specialization) == "" {
			return nil, httperr.ErrValidation("missing_fields", "Please enter all required fields: missing specialization")
		}
	}

	email := validators.NormalizeEmail(in.Email)
	if !s.checkDomain(email) {
		return nil, httperr.ErrValidation("invalid_email_domain", "The e-mail domain does not look valid")
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, httperr.ErrConflict("user_exists", "User already exists")
	} else if !isNotFound(err) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if role == models.RoleDoctor {
		user.MedicalLicense = strings.TrimSpace(in.MedicalLicense)
		user.Specialization = strings.TrimSpace(in.Specialization)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if httperr.IsUniqueViolation(err) {
			return nil, httperr.ErrConflict("user_exists", "User already exists")
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("user registered")

	out := sessionOf(user)
	// doctors are onboarded by the clinic and log in once verified
	if role != models.RoleDoctor {
		token, err := s.tokens.Issue(user)
		if err != nil {
			return nil, err
		}
		out.Token = token
	}
	return out, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	invalid := httperr.ErrUnauthorized("invalid_credentials", "Invalid email or password")

	user, err := s.repo.GetByEmail(ctx, validators.NormalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil, invalid
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, invalid
	}

	if !user.IsAccountVerified {
		return nil, httperr.ErrForbidden("email_not_verified", "Please verify your email before logging in")
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	out := sessionOf(user)
	out.Token = token
	return out, nil
}

// --------- Users ---------

func (s *Service) Me(ctx context.Context, actor auth.Identity) (*models.User, error) {
	return s.get(ctx, actor.UserID)
}

func (s *Service) ListDoctors(ctx context.Context) ([]models.User, error) {
	return s.repo.ListByRole(ctx, models.RoleDoctor)
}

func (s *Service) DeleteDoctor(ctx context.Context, doctorID uint) error {
	doctor, err := s.repo.GetByID(ctx, doctorID)
	if err != nil {
		return httperr.MapNotFound(err, "doctor_not_found", "Doctor not found")
	}
	if !doctor.IsDoctor() {
		return httperr.ErrForbidden("not_a_doctor", "Cannot delete non-doctor user")
	}

	if err := s.repo.Delete(ctx, doctor.ID); err != nil {
		return httperr.MapNotFound(err, "doctor_not_found", "Doctor not found")
	}

	if doctor.ImageURL != "" {
		s.images.Discard(ctx, doctor.ImageURL)
	}

	s.log.WithField("doctor_id", doctor.ID).Info("doctor deleted")
	return nil
}

// UpdateImage replaces a user's profile picture. Only the user or an admin
// may do it.
func (s *Service) UpdateImage(ctx context.Context, actor auth.Identity, userID uint, data []byte) (*models.User, error) {
	if actor.UserID != userID && !actor.IsAdmin() {
		return nil, httperr.ErrForbidden("forbidden", "Authenticated Access Denied")
	}

	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.images.Store(ctx, "users", data)
	if err != nil {
		return nil, err
	}

	old := user.ImageURL
	user.ImageURL = url
	if err := s.repo.Save(ctx, user); err != nil {
		s.images.Discard(ctx, url)
		return nil, err
	}

	if old != "" {
		s.images.Discard(ctx, old)
	}
	return user, nil
}

// CountUsers counts every user, or only those with role when it is set.
func (s *Service) CountUsers(ctx context.Context, role string) (int64, error) {
	return s.repo.CountByRole(ctx, role)
}

// --------- OTP ---------

func (s *Service) SendVerifyOTP(ctx context.Context, userID uint) error {
	user, err := s.get(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAccountVerified {
		return httperr.ErrConflict("already_verified", "Account already verified")
	}

	code, err := s.otps.Issue(ctx, subject(user.ID), domain.PurposeVerifyEmail, domain.VerifyOTPTTL)
	if err != nil {
		return err
	}

	msg, err := mailer.VerifyEmailMessage(user.Email, user.FullName(), code)
	if err != nil {
		return err
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return httperr.ErrExternal("mail_failed", "Could not send the verification e-mail", err)
	}

	s.log.WithField("user_id", user.ID).Info("verification otp sent")
	return nil
}

func (s *Service) VerifyEmail(ctx context.Context, userID uint, code string) error {
	user, err := s.get(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAccountVerified {
		return nil
	}

	if err := s.otps.Redeem(ctx, subject(user.ID), domain.PurposeVerifyEmail, code); err != nil {
		return otpError(err)
	}

	user.IsAccountVerified = true
	return s.repo.Save(ctx, user)
}

func (s *Service) SendResetOTP(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, validators.NormalizeEmail(email))
	if err != nil {
		return httperr.MapNotFound(err, "user_not_found", "User not found")
	}

	code, err := s.otps.Issue(ctx, subject(user.ID), domain.PurposeResetPassword, domain.ResetOTPTTL)
	if err != nil {
		return err
	}

	msg, err := mailer.ResetPasswordMessage(user.Email, user.FullName(), code)
	if err != nil {
		return err
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return httperr.ErrExternal("mail_failed", "Could not send the reset e-mail", err)
	}

	s.log.WithField("user_id", user.ID).Info("reset otp sent")
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.repo.GetByEmail(ctx, validators.NormalizeEmail(email))
	if err != nil {
		return httperr.MapNotFound(err, "user_not_found", "User not found")
	}

	if err := s.otps.Redeem(ctx, subject(user.ID), domain.PurposeResetPassword, code); err != nil {
		return otpError(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashed)

	if err := s.repo.Save(ctx, user); err != nil {
		return err
	}

	s.log.WithField("user_id", user.ID).Info("password reset")
	return nil
}

// --------- helpers ---------

func (s *Service) get(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, httperr.MapNotFound(err, "user_not_found", "User not found")
	}
	return u, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func sessionOf(u *models.User) *Session {
	return &Session{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
		ImageURL:  u.ImageURL,
	}
}

func subject(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

func otpError(err error) error {
	switch {
	case errors.Is(err, otp.ErrExpired):
		return httperr.ErrValidation("otp_expired", "OTP expired")
	case errors.Is(err, otp.ErrInvalid):
		return httperr.ErrValidation("invalid_otp", "Invalid OTP")
	default:
		return err
	}
}
