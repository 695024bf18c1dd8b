package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"todolists/internal/database"
	"todolists/internal/models"
	"todolists/internal/staging"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}
	db, err := database.Initialize(filepath.Join(t.TempDir(), "repo.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUserAndSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)

	user, err := users.CreateUser(ctx, "ann@example.com", "hash")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	got, err := users.GetUserByEmail(ctx, "ann@example.com")
	if err != nil || got == nil || got.ID != user.ID {
		t.Fatalf("GetUserByEmail() = %+v, %v", got, err)
	}

	missing, err := users.GetUserByEmail(ctx, "nobody@example.com")
	if err != nil || missing != nil {
		t.Fatalf("GetUserByEmail(missing) = %+v, %v, want nil, nil", missing, err)
	}

	if _, err := users.CreateUser(ctx, "ann@example.com", "hash"); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("duplicate email error = %v, want ErrDuplicateEmail", err)
	}

	if _, err := users.CreateSession(ctx, "live", user.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := users.CreateSession(ctx, "stale", user.ID, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	session, err := users.GetSession(ctx, "live")
	if err != nil || session == nil || session.IsExpired() {
		t.Fatalf("GetSession(live) = %+v, %v", session, err)
	}

	n, err := users.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions() error = %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteExpiredSessions() removed %d, want 1", n)
	}
	if s, _ := users.GetSession(ctx, "stale"); s != nil {
		t.Error("expired session still present")
	}
}

func TestListRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	lists := NewListRepository(db)

	owner, _ := users.CreateUser(ctx, "owner@example.com", "hash")

	list, err := lists.CreateList(ctx, "Groceries", "Gr0c")
	if err != nil {
		t.Fatalf("CreateList() error = %v", err)
	}
	added, err := lists.EnsureOwner(ctx, owner.ID, list.ID)
	if err != nil || !added {
		t.Fatalf("EnsureOwner() = %v, %v, want true", added, err)
	}
	added, err = lists.EnsureOwner(ctx, owner.ID, list.ID)
	if err != nil || added {
		t.Fatalf("second EnsureOwner() = %v, %v, want false", added, err)
	}

	for i, task := range []string{"milk", "eggs", "bread"} {
		if _, err := lists.InsertItem(ctx, &models.TodoItem{ListID: list.ID, Task: task, Position: i, Done: i == 0}); err != nil {
			t.Fatalf("InsertItem() error = %v", err)
		}
	}

	exists, err := lists.HandleExists(ctx, "Gr0c")
	if err != nil || !exists {
		t.Errorf("HandleExists() = %v, %v, want true", exists, err)
	}

	full, err := lists.GetListWithItems(ctx, "Gr0c")
	if err != nil || full == nil {
		t.Fatalf("GetListWithItems() = %v, %v", full, err)
	}
	if len(full.Items) != 3 || full.Items[2].Task != "bread" || !full.Items[0].Done {
		t.Errorf("items = %+v", full.Items)
	}

	open, err := lists.CountOpenItems(ctx, list.ID)
	if err != nil || open != 2 {
		t.Errorf("CountOpenItems() = %d, %v, want 2", open, err)
	}

	named, err := lists.OwnerHasListNamed(ctx, owner.ID, "Groceries", 0)
	if err != nil || !named {
		t.Errorf("OwnerHasListNamed() = %v, %v, want true", named, err)
	}
	named, err = lists.OwnerHasListNamed(ctx, owner.ID, "Groceries", list.ID)
	if err != nil || named {
		t.Errorf("OwnerHasListNamed(excluding itself) = %v, %v, want false", named, err)
	}

	userLists, err := lists.GetUserLists(ctx, owner.ID)
	if err != nil || len(userLists) != 1 || len(userLists[0].Items) != 3 {
		t.Fatalf("GetUserLists() = %+v, %v", userLists, err)
	}

	if err := lists.DeleteList(ctx, list.ID); err != nil {
		t.Fatalf("DeleteList() error = %v", err)
	}
	items, err := lists.GetAllItems(ctx)
	if err != nil || len(items) != 0 {
		t.Errorf("items after delete = %d, %v, want 0", len(items), err)
	}
	gone, err := lists.GetListByHandle(ctx, "Gr0c")
	if err != nil || gone != nil {
		t.Errorf("GetListByHandle() after delete = %+v, %v", gone, err)
	}
}

func TestStagingRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	store := NewStagingRepository(db)

	user, _ := users.CreateUser(ctx, "s@example.com", "hash")
	if _, err := users.CreateSession(ctx, "sess-1", user.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if got, err := store.Get(ctx, "sess-1"); err != nil || got != nil {
		t.Fatalf("Get() before Put = %+v, %v", got, err)
	}

	stage := staging.NewEmptyStage(user.ID, "Trip")
	stage.Append("passport")
	if err := store.Put(ctx, "sess-1", stage); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	stage.Append("tickets")
	if err := store.Put(ctx, "sess-1", stage); err != nil {
		t.Fatalf("second Put() error = %v", err)
	}

	got, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ListName != "Trip" || got.Count() != 2 || !got.IsNew {
		t.Errorf("Get() = %+v", got)
	}

	// Deleting the login session removes the stage with it
	if err := users.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if got, err := store.Get(ctx, "sess-1"); err != nil || got != nil {
		t.Errorf("Get() after session delete = %+v, %v, want nil", got, err)
	}
}
