// Package otp implements the one-time-code flow that gates registration and
// password reset: short-lived six digit codes keyed by email address.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

type Purpose string

const (
	PurposeRegister Purpose = "register"
	PurposeReset    Purpose = "reset"
)

// Record is one outstanding code. UserID is only set for reset codes, where
// the account is known at issue time.
type Record struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userId,omitempty"`
}

// Store holds pending records keyed by email (+purpose suffix for reset).
// A Put for an existing key overwrites the previous record.
type Store interface {
	Put(ctx context.Context, key string, rec Record) error
	Get(ctx context.Context, key string) (Record, bool, error)
	Delete(ctx context.Context, key string) error
}

var (
	ErrNotFound = errors.New("no pending code for this email")
	ErrExpired  = errors.New("code has expired")
	ErrMismatch = errors.New("code does not match")
)

// Key derives the store key for an email and purpose. Reset codes live under
// a separate key so an in-flight registration cannot be consumed by a reset.
func Key(email string, purpose Purpose) string {
	if purpose == PurposeReset {
		return email + ":reset"
	}
	return email
}

// GenerateCode draws a uniform six digit code from [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))

	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}

	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
