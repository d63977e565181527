package auth

import (
	"context"
	"errors"

	"tradelab/internal/storage"
	"tradelab/pkg/models"
)

// ErrIdentityMissing is reported when no authenticated identity exists
// for the requested user.
var ErrIdentityMissing = errors.New("auth: no authenticated user")

// Session proves a completed login. It can only be constructed through
// Login, so holders never need to re-check "is a user logged in" at
// storage call sites.
type Session struct {
	userID string
	user   models.User
}

// Login resolves the identity-provider user id against the store. An
// absent or deactivated profile yields ErrIdentityMissing and no Session.
func Login(ctx context.Context, repo storage.Repository, userID string) (*Session, error) {
	if userID == "" {
		return nil, ErrIdentityMissing
	}
	user, err := repo.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrIdentityMissing
	}
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, ErrIdentityMissing
	}
	return &Session{userID: userID, user: user}, nil
}

func (s *Session) UserID() string {
	return s.userID
}

func (s *Session) User() models.User {
	return s.user
}
