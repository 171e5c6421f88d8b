// Package repository reads and writes the Postgres tables behind user
// profiles and the policy catalogue.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/models"
)

// ProfileRepository stores one JSONB profile document per user.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// StoredProfile is a profile with its row metadata.
type StoredProfile struct {
	UserID    string             `json:"userId"`
	Profile   models.UserProfile `json:"profile"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Get returns PROFILE_NOT_FOUND when the user has no row.
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*StoredProfile, error) {
	var raw []byte
	var updatedAt time.Time

	err := r.db.QueryRowContext(ctx, `
		SELECT profile, updated_at
		FROM user_profiles
		WHERE user_id = $1`, userID).Scan(&raw, &updatedAt)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewProfileNotFoundError(userID)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get_profile", err)
	}

	var profile models.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, errors.NewInternalError(err)
	}
	return &StoredProfile{UserID: userID, Profile: profile, UpdatedAt: updatedAt}, nil
}

// Upsert merges update into the stored profile, creating the row when
// needed, and returns the result.
func (r *ProfileRepository) Upsert(ctx context.Context, userID string, update models.UserProfile) (*StoredProfile, error) {
	current := models.UserProfile{}
	existing, err := r.Get(ctx, userID)
	switch {
	case err == nil:
		current = existing.Profile
	case errors.HasCode(err, errors.ErrCodeProfileNotFound):
	default:
		return nil, err
	}

	merged := current.Merge(update)
	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	var updatedAt time.Time
	err = r.db.QueryRowContext(ctx, `
		INSERT INTO user_profiles (user_id, profile, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET profile = EXCLUDED.profile, updated_at = NOW()
		RETURNING updated_at`, userID, raw).Scan(&updatedAt)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("upsert_profile", err)
	}
	return &StoredProfile{UserID: userID, Profile: merged, UpdatedAt: updatedAt}, nil
}

// Delete removes the user's row. Missing rows are not an error.
func (r *ProfileRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_profiles WHERE user_id = $1`, userID); err != nil {
		return errors.NewQueryExecutionFailedError("delete_profile", err)
	}
	return nil
}
