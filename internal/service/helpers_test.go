package service

import (
	"context"
	"path/filepath"
	"testing"

	"todolists/internal/database"
	"todolists/internal/logger"
	"todolists/internal/metrics"
	"todolists/internal/models"
	"todolists/internal/repository"
	"todolists/internal/staging"
)

type testEnv struct {
	db     *database.DB
	users  *repository.UserRepository
	lists  *repository.ListRepository
	stages staging.Store
	svc    *ListService
}

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}
	db, err := database.Initialize(filepath.Join(t.TempDir(), "service.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	env := &testEnv{
		db:     db,
		users:  repository.NewUserRepository(db),
		lists:  repository.NewListRepository(db),
		stages: staging.NewMemoryStore(),
	}
	env.svc = NewListService(db, env.lists, env.stages, metrics.New(), logger.NewNop())
	return env
}

func (e *testEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := e.users.CreateUser(context.Background(), email, "hash")
	if err != nil {
		t.Fatalf("CreateUser(%s) error = %v", email, err)
	}
	return user
}

// createList saves a new list through the edit workflow and returns it with items
func (e *testEnv) createList(t *testing.T, sessionID string, userID int64, name string, tasks ...string) *models.ListWithItems {
	t.Helper()
	ctx := context.Background()

	if _, err := e.svc.StartNewList(ctx, sessionID, userID, name); err != nil {
		t.Fatalf("StartNewList(%s) error = %v", name, err)
	}
	for _, task := range tasks {
		if _, err := e.svc.AppendItem(ctx, sessionID, task); err != nil {
			t.Fatalf("AppendItem(%s) error = %v", task, err)
		}
	}
	list, err := e.svc.SaveList(ctx, sessionID, userID)
	if err != nil {
		t.Fatalf("SaveList(%s) error = %v", name, err)
	}
	return e.load(t, list.Handle)
}

func (e *testEnv) load(t *testing.T, handle string) *models.ListWithItems {
	t.Helper()
	list, err := e.lists.GetListWithItems(context.Background(), handle)
	if err != nil {
		t.Fatalf("GetListWithItems(%s) error = %v", handle, err)
	}
	if list == nil {
		t.Fatalf("list %s not found", handle)
	}
	return list
}

func tasksOf(list *models.ListWithItems) []string {
	out := make([]string, len(list.Items))
	for i, item := range list.Items {
		out[i] = item.Task
	}
	return out
}

func idsOf(list *models.ListWithItems) []int64 {
	out := make([]int64, len(list.Items))
	for i, item := range list.Items {
		out[i] = item.ID
	}
	return out
}
