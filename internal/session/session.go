// Package session wraps the external identity service. It validates
// credentials before they leave the process and maps provider error codes
// to short localized messages; raw provider detail goes to the operational
// log only, never to the end user.
package session

import (
	"context"
	"errors"
	"strings"
)

// Identity is an authenticated principal with a stable unique id.
type Identity struct {
	UID   string
	Email string
}

// Code is the fixed vocabulary of identity service failures.
type Code string

const (
	CodeUserNotFound      Code = "user-not-found"
	CodeWrongSecret       Code = "wrong-secret"
	CodeInvalidEmail      Code = "invalid-email"
	CodeDisabled          Code = "disabled"
	CodeRateLimited       Code = "rate-limited"
	CodeNetworkFailure    Code = "network-failure"
	CodeInvalidCredential Code = "invalid-credential"
	CodeAlreadyInUse      Code = "already-in-use"
	CodeWeakSecret        Code = "weak-secret"
	CodeMisconfigured     Code = "misconfigured"
	CodeUnknown           Code = "unknown"
)

// AuthError carries the classified code, the user-facing localized message
// and the raw provider error (logged, never displayed).
type AuthError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Unwrap() error { return e.Err }

// NewAuthError builds an AuthError with the localized message for code.
func NewAuthError(code Code, err error) *AuthError {
	return &AuthError{Code: code, Message: MessageFor(code), Err: err}
}

// CodeOf extracts the auth error code, or CodeUnknown for foreign errors.
func CodeOf(err error) Code {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// MessageFor returns the localized user-facing message for a code.
func MessageFor(code Code) string {
	switch code {
	case CodeUserNotFound:
		return "Email tidak terdaftar"
	case CodeWrongSecret:
		return "Password salah"
	case CodeInvalidEmail:
		return "Format email tidak valid"
	case CodeDisabled:
		return "Akun telah dinonaktifkan"
	case CodeRateLimited:
		return "Terlalu banyak percobaan login. Coba lagi nanti"
	case CodeNetworkFailure:
		return "Koneksi internet bermasalah"
	case CodeInvalidCredential:
		return "Email atau password salah"
	case CodeAlreadyInUse:
		return "Email sudah digunakan"
	case CodeWeakSecret:
		return "Password terlalu lemah"
	case CodeMisconfigured:
		return "Konfigurasi layanan tidak valid"
	default:
		return "Terjadi kesalahan. Silakan coba lagi"
	}
}

// IdentityService is the outbound port to the external identity provider.
// Implementations return *AuthError with a classified code on failure.
type IdentityService interface {
	SignIn(ctx context.Context, email, secret string) (Identity, error)
	SignUp(ctx context.Context, email, secret string) (Identity, error)
	SignOut(ctx context.Context) error
	CurrentIdentity() (Identity, bool)
}

const minSecretLen = 6

// validation errors, raised before any remote call
var (
	errMissingCredential = &AuthError{Code: CodeInvalidCredential, Message: "Email dan password harus diisi"}
	errMalformedEmail    = &AuthError{Code: CodeInvalidEmail, Message: MessageFor(CodeInvalidEmail)}
	errShortSecret       = &AuthError{Code: CodeWeakSecret, Message: "Password minimal 6 karakter"}
)

func validateCredential(email, secret string, register bool) error {
	if strings.TrimSpace(email) == "" || secret == "" {
		return errMissingCredential
	}
	if !strings.Contains(email, "@") {
		return errMalformedEmail
	}
	if register && len(secret) < minSecretLen {
		return errShortSecret
	}
	return nil
}
