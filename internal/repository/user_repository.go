package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Basel6/Private-Coach-Web-App/internal/models"
)

// UserRepository reads application users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a single user.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	const query = `SELECT id, email, full_name, role, active, created_at, updated_at FROM users WHERE id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// CoachNames resolves display names for the given coach ids.
func (r *UserRepository) CoachNames(ctx context.Context, ids []int64) (map[int64]string, error) {
	if len(ids) == 0 {
		return map[int64]string{}, nil
	}
	query, args, err := sqlx.In(`SELECT id, full_name FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	rows := []struct {
		ID       int64  `db:"id"`
		FullName string `db:"full_name"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(rows))
	for _, row := range rows {
		names[row.ID] = row.FullName
	}
	return names, nil
}
