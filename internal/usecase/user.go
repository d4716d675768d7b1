package usecase

import (
	"context"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

// UserUseCase is the user directory used to pick assignees.
type UserUseCase struct {
	Users entity.UserRepository
}

func NewUserUseCase(users entity.UserRepository) *UserUseCase {
	return &UserUseCase{Users: users}
}

func (uc *UserUseCase) List(ctx context.Context) ([]*entity.User, error) {
	users, err := uc.Users.List(ctx)
	if err != nil {
		return nil, internal("failed to list users", err)
	}
	if users == nil {
		users = []*entity.User{}
	}
	return users, nil
}
