package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/labourhub/backend/internal/auth"
	"github.com/labourhub/backend/internal/config"
	"github.com/labourhub/backend/internal/domain/user"
	"github.com/labourhub/backend/internal/otp"
	"github.com/labourhub/backend/internal/security"
)

// OTPService is the slice of the otp flow the handler drives.
type OTPService interface {
	RequestCode(ctx context.Context, email string, purpose otp.Purpose) (otp.Record, error)
	VerifyRegister(ctx context.Context, code string, req user.CreateRequest) (user.User, error)
	VerifyReset(ctx context.Context, email, code, newPassword string) error
}

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type LoginRecorder interface {
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

type AuthHandler struct {
	otp    OTPService
	users  UserReader
	logins LoginRecorder
	jwt    *auth.Manager
	cfg    config.Config
}

func NewAuthHandler(otpSvc OTPService, users UserReader, logins LoginRecorder, jwtManager *auth.Manager, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		otp:    otpSvc,
		users:  users,
		logins: logins,
		jwt:    jwtManager,
		cfg:    cfg,
	}
}

type SendOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyOTPRegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	UserType string `json:"userType" binding:"required,oneof=worker employer"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
	OTP      string `json:"otp" binding:"required,len=6,numeric"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SendOTP issues a registration code. The code travels through the
// notification channel, never the response body; dev deployments may opt in
// to echoing it for manual testing.
func (h *AuthHandler) SendOTP(ctx *gin.Context) {
	var req SendOTPRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rec, err := h.otp.RequestCode(cctx, req.Email, otp.PurposeRegister)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondConflict(ctx, "email_taken", "Email is already registered.")
			return
		}
		RespondInternal(ctx, "Could not issue verification code")
		return
	}

	body := gin.H{
		"message":   "Verification code sent",
		"expiresIn": int(time.Until(rec.ExpiresAt).Seconds()),
	}
	if h.cfg.OTPDevEcho {
		body["otp"] = rec.Code
	}

	ctx.JSON(http.StatusOK, body)
}

func (h *AuthHandler) VerifyOTPRegister(ctx *gin.Context) {
	var req VerifyOTPRegisterRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	u, err := h.otp.VerifyRegister(cctx, req.OTP, user.CreateRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		UserType: req.UserType,
		Phone:    req.Phone,
	})
	if err != nil {
		h.respondOTPError(ctx, err)
		return
	}

	token, err := h.jwt.GenerateAccessToken(u.ID, u.Email, u.UserType)
	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"user":  u,
		"token": token,
	})
}

// SendResetOTP issues a password-reset code for an existing account.
func (h *AuthHandler) SendResetOTP(ctx *gin.Context) {
	var req SendOTPRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	rec, err := h.otp.RequestCode(cctx, req.Email, otp.PurposeReset)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "No account found for this email.")
			return
		}
		RespondInternal(ctx, "Could not issue reset code")
		return
	}

	body := gin.H{
		"message":   "Reset code sent",
		"expiresIn": int(time.Until(rec.ExpiresAt).Seconds()),
	}
	if h.cfg.OTPDevEcho {
		body["otp"] = rec.Code
	}

	ctx.JSON(http.StatusOK, body)
}

func (h *AuthHandler) ResetPassword(ctx *gin.Context) {
	var req ResetPasswordRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := h.otp.VerifyReset(cctx, req.Email, req.OTP, req.NewPassword); err != nil {
		h.respondOTPError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password has been reset."})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnauthorized(ctx, "Invalid email or password")
			return
		}
		RespondInternal(ctx, "Could not log in")
		return
	}

	if err := security.CheckPassword(u.PasswordHash, req.Password); err != nil {
		RespondUnauthorized(ctx, "Invalid email or password")
		return
	}

	token, err := h.jwt.GenerateAccessToken(u.ID, u.Email, u.UserType)
	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	now := time.Now().UTC()
	if err := h.logins.UpdateLastLogin(cctx, u.ID, now); err == nil {
		u.LastLogin = &now
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user":  u,
		"token": token,
	})
}

// respondOTPError maps otp and validation failures onto the error taxonomy.
func (h *AuthHandler) respondOTPError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, otp.ErrNotFound):
		RespondConflict(ctx, "otp_not_found", "No pending code for this email. Request a new one.")
	case errors.Is(err, otp.ErrExpired):
		RespondConflict(ctx, "otp_expired", "The code has expired. Request a new one.")
	case errors.Is(err, otp.ErrMismatch):
		RespondConflict(ctx, "otp_mismatch", "The code is incorrect.")
	case errors.Is(err, user.ErrEmailTaken):
		RespondConflict(ctx, "email_taken", "Email is already registered.")
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, "No account found for this email.")
	case security.IsPasswordPolicyError(err):
		RespondBadRequest(ctx, err.Error(), nil)
	default:
		RespondInternal(ctx, "Verification failed")
	}
}
