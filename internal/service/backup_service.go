package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"todolists/internal/database"
	"todolists/internal/logger"
	"todolists/internal/models"
	"todolists/internal/repository"
)

// BackupVersion is written into every export
const BackupVersion = "1"

// BackupData represents the complete database backup structure.
// Sessions and staged edits are not included.
type BackupData struct {
	Version      string             `json:"version"`
	ExportedAt   time.Time          `json:"exported_at"`
	DatabaseType string             `json:"database_type"`
	Users        []models.User      `json:"users"`
	Lists        []models.TodoList  `json:"lists"`
	Owners       []models.ListOwner `json:"owners"`
	Items        []models.TodoItem  `json:"items"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db  *database.DB
	log *logger.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, log *logger.Logger) *BackupService {
	return &BackupService{db: db, log: log.WithComponent("backup")}
}

// Export writes every user, list, owner and item as indented JSON
func (s *BackupService) Export(ctx context.Context, w io.Writer) (*BackupData, error) {
	users := repository.NewUserRepository(s.db)
	lists := repository.NewListRepository(s.db)

	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.Name(),
	}

	var err error
	if backup.Users, err = users.GetAllUsers(ctx); err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	if backup.Lists, err = lists.GetAllLists(ctx); err != nil {
		return nil, fmt.Errorf("failed to export lists: %w", err)
	}
	if backup.Owners, err = lists.GetAllOwners(ctx); err != nil {
		return nil, fmt.Errorf("failed to export owners: %w", err)
	}
	if backup.Items, err = lists.GetAllItems(ctx); err != nil {
		return nil, fmt.Errorf("failed to export items: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	s.log.Infow("Database exported",
		"users", len(backup.Users),
		"lists", len(backup.Lists),
		"owners", len(backup.Owners),
		"items", len(backup.Items),
	)
	return backup, nil
}

// Import restores a backup in one transaction, keeping the original ids
func (s *BackupService) Import(ctx context.Context, r io.Reader) (*BackupData, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return nil, fmt.Errorf("unsupported backup version %q", backup.Version)
	}

	err := s.db.WithTransaction(ctx, func(tx *database.Tx) error {
		users := repository.NewUserRepository(tx)
		lists := repository.NewListRepository(tx)

		for i := range backup.Users {
			if err := users.InsertUserWithID(ctx, &backup.Users[i]); err != nil {
				return err
			}
		}
		for i := range backup.Lists {
			if err := lists.RestoreList(ctx, &backup.Lists[i]); err != nil {
				return err
			}
		}
		for _, owner := range backup.Owners {
			if _, err := lists.EnsureOwner(ctx, owner.UserID, owner.ListID); err != nil {
				return err
			}
		}
		for i := range backup.Items {
			if err := lists.RestoreItem(ctx, &backup.Items[i]); err != nil {
				return err
			}
		}

		return s.resetSequences(ctx, tx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import backup: %w", err)
	}

	s.log.Infow("Database imported",
		"exported_at", backup.ExportedAt,
		"users", len(backup.Users),
		"lists", len(backup.Lists),
		"items", len(backup.Items),
	)
	return &backup, nil
}

// Clear deletes all application data, children first
func (s *BackupService) Clear(ctx context.Context) error {
	tables := []string{"staged_lists", "todo_items", "list_owners", "todo_lists", "sessions", "users"}

	return s.db.WithTransaction(ctx, func(tx *database.Tx) error {
		for _, table := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
		}
		return nil
	})
}

// resetSequences moves PostgreSQL serial counters past imported ids.
// SQLite and MySQL advance their counters on explicit inserts.
func (s *BackupService) resetSequences(ctx context.Context, tx *database.Tx) error {
	if s.db.Dialect.Name() != database.EnginePostgres {
		return nil
	}
	for _, table := range []string{"users", "todo_lists", "todo_items"} {
		query := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 0) + 1, false) FROM %s", table, table)
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to reset sequence for %s: %w", table, err)
		}
	}
	return nil
}
