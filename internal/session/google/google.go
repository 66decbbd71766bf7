// Package google adapts the Google Identity Toolkit (the Firebase Auth
// REST surface) to the session.IdentityService port.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"catatuang/internal/session"
)

type Service struct {
	rp *identitytoolkit.RelyingpartyService

	mu      sync.Mutex
	current *session.Identity
}

var _ session.IdentityService = (*Service)(nil)

// New creates a client authenticated by API key. When emulatorHost is
// non-empty the client targets a local Auth emulator instead of the
// production endpoint.
func New(ctx context.Context, apiKey, emulatorHost string) (*Service, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing identity toolkit API key")
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if emulatorHost != "" {
		endpoint := fmt.Sprintf("http://%s/www.googleapis.com/identitytoolkit/v3/relyingparty/", emulatorHost)
		opts = append(opts, option.WithEndpoint(endpoint))
		slog.InfoContext(ctx, "Using identity toolkit emulator", "host", emulatorHost)
	}

	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("identity toolkit service: %w", err)
	}

	return &Service{rp: svc.Relyingparty}, nil
}

func (s *Service) SignIn(ctx context.Context, email, secret string) (session.Identity, error) {
	resp, err := s.rp.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          secret,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return session.Identity{}, classify(err)
	}

	ident := session.Identity{UID: resp.LocalId, Email: resp.Email}
	s.setCurrent(&ident)
	return ident, nil
}

func (s *Service) SignUp(ctx context.Context, email, secret string) (session.Identity, error) {
	resp, err := s.rp.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:    email,
		Password: secret,
	}).Context(ctx).Do()
	if err != nil {
		return session.Identity{}, classify(err)
	}

	ident := session.Identity{UID: resp.LocalId, Email: resp.Email}
	s.setCurrent(&ident)
	return ident, nil
}

// SignOut releases the client-side session. The toolkit keeps no server
// session for password sign-in, so this never fails remotely.
func (s *Service) SignOut(context.Context) error {
	s.setCurrent(nil)
	return nil
}

func (s *Service) CurrentIdentity() (session.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return session.Identity{}, false
	}
	return *s.current, true
}

func (s *Service) setCurrent(ident *session.Identity) {
	s.mu.Lock()
	s.current = ident
	s.mu.Unlock()
}

// classify maps toolkit error payloads to the session code vocabulary.
// The toolkit reports failures as uppercase message constants on a 400.
func classify(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return session.NewAuthError(session.CodeNetworkFailure, err)
	}

	var ge *googleapi.Error
	if !errors.As(err, &ge) {
		return session.NewAuthError(session.CodeUnknown, err)
	}

	msg := ge.Message
	switch {
	case strings.HasPrefix(msg, "EMAIL_NOT_FOUND"):
		return session.NewAuthError(session.CodeUserNotFound, err)
	case strings.HasPrefix(msg, "INVALID_PASSWORD"):
		return session.NewAuthError(session.CodeWrongSecret, err)
	case strings.HasPrefix(msg, "INVALID_EMAIL"):
		return session.NewAuthError(session.CodeInvalidEmail, err)
	case strings.HasPrefix(msg, "USER_DISABLED"):
		return session.NewAuthError(session.CodeDisabled, err)
	case strings.HasPrefix(msg, "TOO_MANY_ATTEMPTS_TRY_LATER"):
		return session.NewAuthError(session.CodeRateLimited, err)
	case strings.HasPrefix(msg, "EMAIL_EXISTS"):
		return session.NewAuthError(session.CodeAlreadyInUse, err)
	case strings.HasPrefix(msg, "WEAK_PASSWORD"):
		return session.NewAuthError(session.CodeWeakSecret, err)
	case strings.HasPrefix(msg, "INVALID_LOGIN_CREDENTIALS"):
		return session.NewAuthError(session.CodeInvalidCredential, err)
	case strings.Contains(msg, "API key not valid"), strings.HasPrefix(msg, "API_KEY_INVALID"):
		return session.NewAuthError(session.CodeMisconfigured, err)
	default:
		return session.NewAuthError(session.CodeUnknown, err)
	}
}
