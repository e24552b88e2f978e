// README: Session manager; resolves the authenticated driver and owns the current-user value.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"routemind/internal/infra"
	"routemind/internal/observe"
	"routemind/internal/types"
)

var (
	ErrNoUser      = errors.New("no authenticated user")
	ErrNotFound    = errors.New("user not found")
	ErrAuthFailed  = errors.New("authentication failed")
	ErrPersistence = errors.New("persistence failure")
)

// Repository is the persistence collaborator for user records.
type Repository interface {
	SaveUser(ctx context.Context, u *User) error
	FetchUser(ctx context.Context, id types.ID) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
}

type Service struct {
	mu       sync.Mutex
	repo     Repository
	verifier infra.TokenVerifier
	current  *observe.Value[types.Option[User]]
}

func NewService(repo Repository, verifier infra.TokenVerifier) *Service {
	return &Service{
		repo:     repo,
		verifier: verifier,
		current:  observe.NewValue(types.None[User](), sameIdentity),
	}
}

// sameIdentity gates republication on the user identity, not the whole
// record: downstream managers reload state only when the driver changes.
// Preference edits are read through Preferences() instead.
func sameIdentity(a, b types.Option[User]) bool {
	ua, aok := a.Get()
	ub, bok := b.Get()
	if aok != bok {
		return false
	}
	if !aok {
		return true
	}
	return ua.ID == ub.ID
}

// CurrentUser exposes the authenticated driver for subscription.
func (s *Service) CurrentUser() *observe.Value[types.Option[User]] {
	return s.current
}

// Preferences returns the current driver's preference bundle.
func (s *Service) Preferences() (Preferences, bool) {
	u, ok := s.current.Get().Get()
	if !ok {
		return Preferences{}, false
	}
	return u.Preferences, true
}

// Authenticate verifies the ID token, loads the driver record, and
// publishes it as the current user. A first sign-in creates the record
// with default preferences.
func (s *Service) Authenticate(ctx context.Context, idToken string) (*User, error) {
	token, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, errors.Join(ErrAuthFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	u, err := s.repo.FetchUser(ctx, types.ID(token.UID))
	switch {
	case errors.Is(err, ErrNotFound):
		u = &User{
			ID:          types.ID(token.UID),
			Email:       token.Email,
			Name:        token.Name,
			Preferences: DefaultPreferences(),
			CreatedAt:   now,
			LastLogin:   now,
		}
		if err := s.repo.SaveUser(ctx, u); err != nil {
			return nil, errors.Join(ErrPersistence, err)
		}
	case err != nil:
		return nil, errors.Join(ErrPersistence, err)
	default:
		u.LastLogin = now
		if err := s.repo.UpdateUser(ctx, u); err != nil {
			// Last-login bookkeeping is not worth failing sign-in over.
			log.Printf("session: update last login for %s: %v", u.ID, err)
		}
	}

	s.current.Set(types.Some(*u))
	return u, nil
}

// SignOut clears the current user. Downstream managers observe the
// absence and tear down their derived state.
func (s *Service) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Set(types.None[User]())
}

// UpdatePreferences persists the new bundle, then applies it locally.
// The local user is only replaced after a successful write.
func (s *Service) UpdatePreferences(ctx context.Context, prefs Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.current.Get().Get()
	if !ok {
		return ErrNoUser
	}
	u.Preferences = prefs
	u.LastLogin = time.Now()
	if err := s.repo.UpdateUser(ctx, &u); err != nil {
		return errors.Join(ErrPersistence, err)
	}
	s.current.Set(types.Some(u))
	return nil
}
