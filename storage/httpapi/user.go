package httpapi

import (
	"context"
	"net/http"

	"github.com/corpacademy/client-go/core/user"
)

type userRepository struct {
	client *Client
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(client *Client) user.Repository {
	return &userRepository{client: client}
}

func (repo *userRepository) GetMe(ctx context.Context) (user.User, error) {
	var usr user.User
	err := repo.client.do(ctx, http.MethodGet, "/users/me", nil, &usr)
	return usr, err
}
