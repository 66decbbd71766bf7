package session

import (
	"context"
	"errors"
	"log/slog"
)

// Provider is the session provider: it fronts the identity service with
// input validation and error mapping, and exposes the current identity.
type Provider struct {
	svc IdentityService
}

func NewProvider(svc IdentityService) *Provider {
	return &Provider{svc: svc}
}

// Current returns the currently authenticated identity, if any.
func (p *Provider) Current() (Identity, bool) {
	return p.svc.CurrentIdentity()
}

// Login validates the credential and signs in against the identity service.
func (p *Provider) Login(ctx context.Context, email, secret string) (Identity, error) {
	if err := validateCredential(email, secret, false); err != nil {
		return Identity{}, err
	}

	ident, err := p.svc.SignIn(ctx, email, secret)
	if err != nil {
		return Identity{}, p.mapError(ctx, "login", err)
	}

	slog.InfoContext(ctx, "Login successful", "uid", ident.UID)
	return ident, nil
}

// Register validates the credential (including the minimum secret length)
// and creates the account.
func (p *Provider) Register(ctx context.Context, email, secret string) (Identity, error) {
	if err := validateCredential(email, secret, true); err != nil {
		return Identity{}, err
	}

	ident, err := p.svc.SignUp(ctx, email, secret)
	if err != nil {
		return Identity{}, p.mapError(ctx, "register", err)
	}

	slog.InfoContext(ctx, "Registration successful", "uid", ident.UID)
	return ident, nil
}

// Logout releases the current session.
func (p *Provider) Logout(ctx context.Context) error {
	if err := p.svc.SignOut(ctx); err != nil {
		return p.mapError(ctx, "logout", err)
	}
	slog.InfoContext(ctx, "Logout successful")
	return nil
}

// mapError guarantees every failure leaving the provider is an *AuthError
// with a localized message. Raw provider detail is logged here and nowhere
// else.
func (p *Provider) mapError(ctx context.Context, op string, err error) error {
	var ae *AuthError
	if !errors.As(err, &ae) {
		ae = NewAuthError(CodeUnknown, err)
	}

	slog.WarnContext(ctx, "Identity service error",
		"operation", op,
		"code", string(ae.Code),
		"error", errDetail(ae))
	return ae
}

func errDetail(ae *AuthError) string {
	if ae.Err != nil {
		return ae.Err.Error()
	}
	return ae.Message
}
