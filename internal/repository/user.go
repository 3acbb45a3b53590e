package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/edulink/linking-server-go/internal/model"
)

// UserRepository reads from the shared users table. Account lifecycle is
// owned by another service, so this repository is read-only.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByIDAndRole(ctx context.Context, id string, role model.UserRole) (*model.User, error)
}

type userRepo struct {
	db sqlxDB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE id = $1
	`, id)
	return HandleNotFound(&user, err)
}

func (r *userRepo) FindByIDAndRole(ctx context.Context, id string, role model.UserRole) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE id = $1 AND role = $2
	`, id, role)
	return HandleNotFound(&user, err)
}
