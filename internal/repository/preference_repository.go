package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Basel6/Private-Coach-Web-App/internal/models"
)

// PreferenceRepository persists client time-window preferences.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs the repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetByClient returns the client's stored preference.
func (r *PreferenceRepository) GetByClient(ctx context.Context, clientID int64) (*models.ClientPreference, error) {
	const query = `SELECT id, client_id, preferred_start_hour, preferred_end_hour, is_flexible, updated_at
		FROM client_preferences WHERE client_id = $1`
	var pref models.ClientPreference
	if err := r.db.GetContext(ctx, &pref, query, clientID); err != nil {
		return nil, err
	}
	return &pref, nil
}

// Upsert creates or updates the client's preference.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *models.ClientPreference) error {
	pref.UpdatedAt = time.Now().UTC()

	const query = `INSERT INTO client_preferences (client_id, preferred_start_hour, preferred_end_hour, is_flexible, updated_at)
		VALUES (:client_id, :preferred_start_hour, :preferred_end_hour, :is_flexible, :updated_at)
		ON CONFLICT (client_id) DO UPDATE
		SET preferred_start_hour = EXCLUDED.preferred_start_hour,
		    preferred_end_hour = EXCLUDED.preferred_end_hour,
		    is_flexible = EXCLUDED.is_flexible,
		    updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, pref); err != nil {
		return fmt.Errorf("upsert client preference: %w", err)
	}
	return nil
}
