package otp

import (
	"context"
	"errors"
	"time"

	"github.com/labourhub/backend/internal/domain/user"
	"github.com/labourhub/backend/internal/observability"
	"github.com/labourhub/backend/internal/security"
)

// Consumer-side slices of the users repository; keep them small so tests can
// fake them easily.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, req user.CreateRequest, passwordHash string) (user.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// Sender delivers an issued code out of band. The API must never surface the
// code itself outside of dev.
type Sender interface {
	SendCode(ctx context.Context, email, purpose, code string, expiresAt time.Time) error
}

type Service struct {
	store  Store
	users  UserReader
	writer UserWriter
	sender Sender
	ttl    time.Duration
	prom   *observability.Prom
	now    func() time.Time
}

func NewService(store Store, users UserReader, writer UserWriter, sender Sender, ttl time.Duration, prom *observability.Prom) *Service {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &Service{
		store:  store,
		users:  users,
		writer: writer,
		sender: sender,
		ttl:    ttl,
		prom:   prom,
		now:    time.Now,
	}
}

func (s *Service) observe(purpose Purpose, result string) {
	if s.prom != nil {
		s.prom.OTPResults.WithLabelValues(string(purpose), result).Inc()
	}
}

// RequestCode issues a fresh code for the email/purpose pair, overwriting any
// outstanding one. For registration the email must be unused; for reset it
// must belong to an account. The code is handed to the Sender for delivery
// and returned so the handler can echo it in dev mode.
func (s *Service) RequestCode(ctx context.Context, email string, purpose Purpose) (Record, error) {
	existing, err := s.users.GetByEmail(ctx, email)

	switch purpose {
	case PurposeRegister:
		if err == nil {
			return Record{}, user.ErrEmailTaken
		}
		if !errors.Is(err, user.ErrNotFound) {
			return Record{}, err
		}

	case PurposeReset:
		if errors.Is(err, user.ErrNotFound) {
			return Record{}, user.ErrNotFound
		}
		if err != nil {
			return Record{}, err
		}

	default:
		return Record{}, errors.New("unknown otp purpose")
	}

	code, err := GenerateCode()

	if err != nil {
		return Record{}, err
	}

	rec := Record{
		Code:      code,
		ExpiresAt: s.now().Add(s.ttl),
	}

	if purpose == PurposeReset {
		rec.UserID = existing.ID
	}

	if err := s.store.Put(ctx, Key(email, purpose), rec); err != nil {
		return Record{}, err
	}

	if s.sender != nil {
		if err := s.sender.SendCode(ctx, email, string(purpose), code, rec.ExpiresAt); err != nil {
			// delivery is best effort; the code stays valid and re-requestable
			s.observe(purpose, "delivery_failed")
		}
	}

	s.observe(purpose, "issued")
	return rec, nil
}

// consume validates and removes the pending record for the key. The record is
// gone after a successful return even if the caller's follow-up mutation
// fails; the user can always request a fresh code.
func (s *Service) consume(ctx context.Context, email string, purpose Purpose, submitted string) (Record, error) {
	key := Key(email, purpose)

	rec, ok, err := s.store.Get(ctx, key)

	if err != nil {
		return Record{}, err
	}

	if !ok {
		s.observe(purpose, "not_found")
		return Record{}, ErrNotFound
	}

	if s.now().After(rec.ExpiresAt) {
		_ = s.store.Delete(ctx, key)
		s.observe(purpose, "expired")
		return Record{}, ErrExpired
	}

	if rec.Code != submitted {
		s.observe(purpose, "mismatch")
		return Record{}, ErrMismatch
	}

	if err := s.store.Delete(ctx, key); err != nil {
		return Record{}, err
	}

	s.observe(purpose, "verified")
	return rec, nil
}

// VerifyRegister consumes a registration code and creates the account.
func (s *Service) VerifyRegister(ctx context.Context, submittedCode string, req user.CreateRequest) (user.User, error) {
	if err := security.ValidatePassword(req.Password); err != nil {
		return user.User{}, err
	}

	if _, err := s.consume(ctx, req.Email, PurposeRegister, submittedCode); err != nil {
		return user.User{}, err
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		return user.User{}, err
	}

	return s.writer.Create(ctx, req, hash)
}

// VerifyReset consumes a reset code and replaces the account password.
func (s *Service) VerifyReset(ctx context.Context, email, submittedCode, newPassword string) error {
	if err := security.ValidatePassword(newPassword); err != nil {
		return err
	}

	rec, err := s.consume(ctx, email, PurposeReset, submittedCode)

	if err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword)

	if err != nil {
		return err
	}

	return s.writer.UpdatePassword(ctx, rec.UserID, hash)
}
