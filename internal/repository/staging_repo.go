package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"todolists/internal/database"
	"todolists/internal/staging"
)

// StagingRepository stores edit stages in the staged_lists table.
// Rows reference their login session and go away with it.
type StagingRepository struct {
	db database.DBTX
}

// NewStagingRepository creates a new staging repository
func NewStagingRepository(db database.DBTX) *StagingRepository {
	return &StagingRepository{db: db}
}

// Get returns the stage for sessionID, or nil if there is none
func (r *StagingRepository) Get(ctx context.Context, sessionID string) (*staging.Stage, error) {
	var payload string
	err := r.db.GetContext(ctx, &payload, "SELECT payload FROM staged_lists WHERE session_id = ?", sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}

	var stage staging.Stage
	if err := json.Unmarshal([]byte(payload), &stage); err != nil {
		return nil, fmt.Errorf("failed to decode stage: %w", err)
	}
	return &stage, nil
}

// Put replaces the stage for sessionID
func (r *StagingRepository) Put(ctx context.Context, sessionID string, stage *staging.Stage) error {
	payload, err := json.Marshal(stage)
	if err != nil {
		return fmt.Errorf("failed to encode stage: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, r.db.GetDialect().UpsertStagedList(), sessionID, string(payload)); err != nil {
		return fmt.Errorf("failed to store stage: %w", err)
	}
	return nil
}

// Delete removes the stage for sessionID
func (r *StagingRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM staged_lists WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("failed to delete stage: %w", err)
	}
	return nil
}

var _ staging.Store = (*StagingRepository)(nil)
