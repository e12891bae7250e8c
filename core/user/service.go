package user

import (
	"context"
	"errors"
)

var (
	// errors
	ErrNotAuthenticated = errors.New("not authenticated")
)

type (
	Repository interface {
		// GetMe fetches the authenticated user's profile from the backend.
		GetMe(ctx context.Context) (User, error)
	}

	// Service is the identity provider: it resolves the current user once and
	// keeps it on the session until the next explicit refresh.
	Service struct {
		repo Repository
		sess *Session
	}
)

func NewService(repo Repository, sess *Session) *Service {
	return &Service{repo: repo, sess: sess}
}

// Me returns the cached identity, fetching it on first use.
func (svc *Service) Me(ctx context.Context) (User, error) {
	if usr, ok := svc.sess.User(); ok {
		return usr, nil
	}
	return svc.Reload(ctx)
}

// Reload fetches the profile from the backend and replaces the cached identity.
func (svc *Service) Reload(ctx context.Context) (User, error) {
	usr, err := svc.repo.GetMe(ctx)
	if err != nil {
		return User{}, err
	}
	svc.sess.SetUser(usr)
	return usr, nil
}

// Logout drops the session identity and edit state.
func (svc *Service) Logout() {
	svc.sess.Clear()
}
