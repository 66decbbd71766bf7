// Package memory is an in-process identity service used in tests and local
// runs without a Google project.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"catatuang/internal/session"
)

type account struct {
	uid    string
	secret string
}

type Service struct {
	mu       sync.Mutex
	accounts map[string]account // keyed by email
	current  *session.Identity
	nextUID  int
	disabled map[string]bool
}

var _ session.IdentityService = (*Service)(nil)

func NewService() *Service {
	return &Service{
		accounts: make(map[string]account),
		disabled: make(map[string]bool),
	}
}

// Seed registers an account without signing it in.
func (s *Service) Seed(email, secret string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerLocked(email, secret)
}

// Disable marks an account as disabled for sign-in.
func (s *Service) Disable(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabled[strings.ToLower(email)] = true
}

func (s *Service) SignIn(_ context.Context, email, secret string) (session.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	acc, ok := s.accounts[key]
	if !ok {
		return session.Identity{}, session.NewAuthError(session.CodeUserNotFound, fmt.Errorf("no account for %s", key))
	}
	if s.disabled[key] {
		return session.Identity{}, session.NewAuthError(session.CodeDisabled, fmt.Errorf("account %s disabled", key))
	}
	if acc.secret != secret {
		return session.Identity{}, session.NewAuthError(session.CodeWrongSecret, fmt.Errorf("secret mismatch for %s", key))
	}

	ident := session.Identity{UID: acc.uid, Email: key}
	s.current = &ident
	return ident, nil
}

func (s *Service) SignUp(_ context.Context, email, secret string) (session.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := s.accounts[key]; exists {
		return session.Identity{}, session.NewAuthError(session.CodeAlreadyInUse, fmt.Errorf("account %s exists", key))
	}

	uid := s.registerLocked(key, secret)
	ident := session.Identity{UID: uid, Email: key}
	s.current = &ident
	return ident, nil
}

func (s *Service) SignOut(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
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

func (s *Service) registerLocked(email, secret string) string {
	s.nextUID++
	uid := fmt.Sprintf("uid-%04d", s.nextUID)
	s.accounts[strings.ToLower(email)] = account{uid: uid, secret: secret}
	return uid
}
