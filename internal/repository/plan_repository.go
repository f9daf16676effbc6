package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Basel6/Private-Coach-Web-App/internal/models"
)

// PlanRepository reads client training plans.
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository constructs the repository.
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// GetByClient returns the client's active plan.
func (r *PlanRepository) GetByClient(ctx context.Context, clientID int64) (*models.ClientPlan, error) {
	const query = `SELECT id, client_id, assigned_coach_id, sessions_per_week, active, created_at
		FROM client_plans WHERE client_id = $1 AND active = TRUE`
	var plan models.ClientPlan
	if err := r.db.GetContext(ctx, &plan, query, clientID); err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetWithCoach returns the client's active plan joined with the coach's
// display name.
func (r *PlanRepository) GetWithCoach(ctx context.Context, clientID int64) (*models.PlanWithCoach, error) {
	const query = `SELECT p.id, p.client_id, p.assigned_coach_id, p.sessions_per_week, p.active, p.created_at,
			u.full_name AS coach_name
		FROM client_plans p
		JOIN users u ON u.id = p.assigned_coach_id
		WHERE p.client_id = $1 AND p.active = TRUE`
	var plan models.PlanWithCoach
	if err := r.db.GetContext(ctx, &plan, query, clientID); err != nil {
		return nil, err
	}
	return &plan, nil
}
