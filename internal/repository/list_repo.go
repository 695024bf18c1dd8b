package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"todolists/internal/database"
	"todolists/internal/models"
)

// ListRepository handles database operations for to-do lists, their items and owners
type ListRepository struct {
	db database.DBTX
}

// NewListRepository creates a new list repository
func NewListRepository(db database.DBTX) *ListRepository {
	return &ListRepository{db: db}
}

// WithTx returns a copy bound to tx
func (r *ListRepository) WithTx(tx *database.Tx) *ListRepository {
	return &ListRepository{db: tx}
}

const listColumns = "l.id, l.name, l.handle, l.created_at, l.updated_at"

// HandleExists reports whether any list uses handle
func (r *ListRepository) HandleExists(ctx context.Context, handle string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM todo_lists WHERE handle = ?", handle); err != nil {
		return false, fmt.Errorf("failed to check handle: %w", err)
	}
	return count > 0, nil
}

// CreateList inserts a new list row
func (r *ListRepository) CreateList(ctx context.Context, name, handle string) (*models.TodoList, error) {
	id, err := r.db.ExecReturningID(ctx, "INSERT INTO todo_lists (name, handle) VALUES (?, ?)", name, handle)
	if err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}

	now := time.Now()
	return &models.TodoList{
		ID:        id,
		Name:      name,
		Handle:    handle,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetListByHandle retrieves a list by its public handle
func (r *ListRepository) GetListByHandle(ctx context.Context, handle string) (*models.TodoList, error) {
	list := &models.TodoList{}
	query := "SELECT " + listColumns + " FROM todo_lists l WHERE l.handle = ?"
	err := r.db.GetContext(ctx, list, query, handle)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get list: %w", err)
	}
	return list, nil
}

// GetListItems returns a list's items in position order
func (r *ListRepository) GetListItems(ctx context.Context, listID int64) ([]models.TodoItem, error) {
	items := []models.TodoItem{}
	query := `
		SELECT id, list_id, task, position, important, done
		FROM todo_items
		WHERE list_id = ?
		ORDER BY position
	`
	if err := r.db.SelectContext(ctx, &items, query, listID); err != nil {
		return nil, fmt.Errorf("failed to get list items: %w", err)
	}
	return items, nil
}

// GetListWithItems loads a list and its items by handle
func (r *ListRepository) GetListWithItems(ctx context.Context, handle string) (*models.ListWithItems, error) {
	list, err := r.GetListByHandle(ctx, handle)
	if err != nil || list == nil {
		return nil, err
	}

	items, err := r.GetListItems(ctx, list.ID)
	if err != nil {
		return nil, err
	}

	return &models.ListWithItems{TodoList: *list, Items: items}, nil
}

// GetUserLists returns every list the user owns, with items, newest first
func (r *ListRepository) GetUserLists(ctx context.Context, userID int64) ([]models.ListWithItems, error) {
	var lists []models.TodoList
	query := "SELECT " + listColumns + `
		FROM todo_lists l
		JOIN list_owners o ON o.list_id = l.id
		WHERE o.user_id = ?
		ORDER BY l.updated_at DESC, l.id DESC
	`
	if err := r.db.SelectContext(ctx, &lists, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user lists: %w", err)
	}

	var items []models.TodoItem
	itemsQuery := `
		SELECT i.id, i.list_id, i.task, i.position, i.important, i.done
		FROM todo_items i
		JOIN list_owners o ON o.list_id = i.list_id
		WHERE o.user_id = ?
		ORDER BY i.list_id, i.position
	`
	if err := r.db.SelectContext(ctx, &items, itemsQuery, userID); err != nil {
		return nil, fmt.Errorf("failed to get user list items: %w", err)
	}

	byList := make(map[int64][]models.TodoItem, len(lists))
	for _, item := range items {
		byList[item.ListID] = append(byList[item.ListID], item)
	}

	result := make([]models.ListWithItems, 0, len(lists))
	for _, list := range lists {
		result = append(result, models.ListWithItems{TodoList: list, Items: byList[list.ID]})
	}
	return result, nil
}

// GetAllLists returns every list ordered by id
func (r *ListRepository) GetAllLists(ctx context.Context) ([]models.TodoList, error) {
	var lists []models.TodoList
	if err := r.db.SelectContext(ctx, &lists, "SELECT "+listColumns+" FROM todo_lists l ORDER BY l.id"); err != nil {
		return nil, fmt.Errorf("failed to list lists: %w", err)
	}
	return lists, nil
}

// GetAllItems returns every item ordered by list and position
func (r *ListRepository) GetAllItems(ctx context.Context) ([]models.TodoItem, error) {
	var items []models.TodoItem
	query := "SELECT id, list_id, task, position, important, done FROM todo_items ORDER BY list_id, position"
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// GetAllOwners returns every ownership row
func (r *ListRepository) GetAllOwners(ctx context.Context) ([]models.ListOwner, error) {
	var owners []models.ListOwner
	if err := r.db.SelectContext(ctx, &owners, "SELECT user_id, list_id FROM list_owners ORDER BY list_id, user_id"); err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	return owners, nil
}

// UpdateListName renames a list and bumps updated_at
func (r *ListRepository) UpdateListName(ctx context.Context, listID int64, name string) error {
	query := "UPDATE todo_lists SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, query, name, listID); err != nil {
		return fmt.Errorf("failed to update list: %w", err)
	}
	return nil
}

// TouchList bumps updated_at
func (r *ListRepository) TouchList(ctx context.Context, listID int64) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE todo_lists SET updated_at = CURRENT_TIMESTAMP WHERE id = ?", listID); err != nil {
		return fmt.Errorf("failed to touch list: %w", err)
	}
	return nil
}

// DeleteList deletes a list; items and ownership rows cascade
func (r *ListRepository) DeleteList(ctx context.Context, listID int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM todo_lists WHERE id = ?", listID); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	return nil
}

// IsOwner reports whether userID owns listID
func (r *ListRepository) IsOwner(ctx context.Context, userID, listID int64) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM list_owners WHERE user_id = ? AND list_id = ?"
	if err := r.db.GetContext(ctx, &count, query, userID, listID); err != nil {
		return false, fmt.Errorf("failed to check list owner: %w", err)
	}
	return count > 0, nil
}

// EnsureOwner attaches userID to listID unless already attached.
// Returns true when a row was added.
func (r *ListRepository) EnsureOwner(ctx context.Context, userID, listID int64) (bool, error) {
	owner, err := r.IsOwner(ctx, userID, listID)
	if err != nil {
		return false, err
	}
	if owner {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx, "INSERT INTO list_owners (user_id, list_id) VALUES (?, ?)", userID, listID)
	if err != nil {
		if r.db.GetDialect().IsUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to add list owner: %w", err)
	}
	return true, nil
}

// OwnerHasListNamed reports whether userID already owns a list called name,
// ignoring excludeListID (0 to consider every list)
func (r *ListRepository) OwnerHasListNamed(ctx context.Context, userID int64, name string, excludeListID int64) (bool, error) {
	var count int
	query := `
		SELECT COUNT(*)
		FROM todo_lists l
		JOIN list_owners o ON o.list_id = l.id
		WHERE o.user_id = ? AND l.name = ? AND l.id <> ?
	`
	if err := r.db.GetContext(ctx, &count, query, userID, name, excludeListID); err != nil {
		return false, fmt.Errorf("failed to check list name: %w", err)
	}
	return count > 0, nil
}

// CountOpenItems counts the items of a list not yet done
func (r *ListRepository) CountOpenItems(ctx context.Context, listID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM todo_items WHERE list_id = ? AND done = " + r.db.GetDialect().BoolValue(false)
	if err := r.db.GetContext(ctx, &count, query, listID); err != nil {
		return 0, fmt.Errorf("failed to count open items: %w", err)
	}
	return count, nil
}

// InsertItem creates an item row and returns its id
func (r *ListRepository) InsertItem(ctx context.Context, item *models.TodoItem) (int64, error) {
	query := `
		INSERT INTO todo_items (list_id, task, position, important, done)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, item.ListID, item.Task, item.Position, item.Important, item.Done)
	if err != nil {
		return 0, fmt.Errorf("failed to insert item: %w", err)
	}
	return id, nil
}

// UpdateItem overwrites task, flags and position of an item in its list
func (r *ListRepository) UpdateItem(ctx context.Context, item *models.TodoItem) error {
	query := `
		UPDATE todo_items
		SET task = ?, position = ?, important = ?, done = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND list_id = ?
	`
	_, err := r.db.ExecContext(ctx, query, item.Task, item.Position, item.Important, item.Done, item.ID, item.ListID)
	if err != nil {
		return fmt.Errorf("failed to update item %d: %w", item.ID, err)
	}
	return nil
}

// SetItemPosition moves one item to position
func (r *ListRepository) SetItemPosition(ctx context.Context, listID, itemID int64, position int) error {
	query := "UPDATE todo_items SET position = ? WHERE id = ? AND list_id = ?"
	if _, err := r.db.ExecContext(ctx, query, position, itemID, listID); err != nil {
		return fmt.Errorf("failed to move item %d: %w", itemID, err)
	}
	return nil
}

// DeleteItem removes one item from a list
func (r *ListRepository) DeleteItem(ctx context.Context, listID, itemID int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM todo_items WHERE id = ? AND list_id = ?", itemID, listID); err != nil {
		return fmt.Errorf("failed to delete item %d: %w", itemID, err)
	}
	return nil
}

// RestoreList inserts a list row with its original id, used by imports
func (r *ListRepository) RestoreList(ctx context.Context, list *models.TodoList) error {
	query := "INSERT INTO todo_lists (id, name, handle, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, query, list.ID, list.Name, list.Handle, list.CreatedAt, list.UpdatedAt); err != nil {
		return fmt.Errorf("failed to restore list %d: %w", list.ID, err)
	}
	return nil
}

// RestoreItem inserts an item row with its original id, used by imports
func (r *ListRepository) RestoreItem(ctx context.Context, item *models.TodoItem) error {
	query := "INSERT INTO todo_items (id, list_id, task, position, important, done) VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.db.ExecContext(ctx, query, item.ID, item.ListID, item.Task, item.Position, item.Important, item.Done)
	if err != nil {
		return fmt.Errorf("failed to restore item %d: %w", item.ID, err)
	}
	return nil
}
