package inmem

import (
	"context"

	"github.com/corpacademy/client-go/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) GetMe(_ context.Context) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	if err := repo.db.takeFail(); err != nil {
		return user.User{}, err
	}
	return repo.db.me, nil
}
