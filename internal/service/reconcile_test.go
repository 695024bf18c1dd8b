package service

import (
	"reflect"
	"testing"

	"todolists/internal/models"
)

func persistedItems(listID int64, tasks ...string) []models.TodoItem {
	items := make([]models.TodoItem, len(tasks))
	for i, task := range tasks {
		items[i] = models.TodoItem{ID: int64(i + 1), ListID: listID, Task: task, Position: i}
	}
	return items
}

func stagedFrom(items []models.TodoItem) []models.StagedItem {
	staged := make([]models.StagedItem, len(items))
	for i, item := range items {
		staged[i] = models.StagedItem{
			ItemID:     item.ID,
			Task:       item.Task,
			OrderIndex: item.Position,
			Important:  item.Important,
			Done:       item.Done,
		}
	}
	return staged
}

func TestPlanReconcileUnchanged(t *testing.T) {
	persisted := persistedItems(7, "a", "b", "c")
	plan := PlanReconcile(7, stagedFrom(persisted), persisted)

	if len(plan.Inserts) != 0 || len(plan.Updates) != 0 || len(plan.Deletes) != 0 {
		t.Fatalf("plan = %+v, want no writes", plan)
	}
	if plan.Unchanged != 3 {
		t.Errorf("Unchanged = %d, want 3", plan.Unchanged)
	}
}

func TestPlanReconcile(t *testing.T) {
	persisted := persistedItems(7, "a", "b", "c", "d", "e")

	tests := []struct {
		name        string
		staged      func() []models.StagedItem
		wantInserts []string
		wantUpdates []int64
		wantMoved   []int64
		wantDeletes []int64
	}{
		{
			name: "shrink deletes trailing rows",
			staged: func() []models.StagedItem {
				return stagedFrom(persisted)[:3]
			},
			wantDeletes: []int64{4, 5},
		},
		{
			name: "delete from the middle renumbers the rest",
			staged: func() []models.StagedItem {
				s := stagedFrom(persisted)
				return append(s[:1], s[2:]...)
			},
			wantUpdates: []int64{3, 4, 5},
			wantMoved:   []int64{3, 4, 5},
			wantDeletes: []int64{2},
		},
		{
			name: "grow inserts new items",
			staged: func() []models.StagedItem {
				s := stagedFrom(persisted)[:2]
				return append(s, models.StagedItem{Task: "x", OrderIndex: 2}, models.StagedItem{Task: "y", OrderIndex: 3})
			},
			wantInserts: []string{"x", "y"},
			wantDeletes: []int64{3, 4, 5},
		},
		{
			name: "flag change is an update in place",
			staged: func() []models.StagedItem {
				s := stagedFrom(persisted)
				s[1].Done = true
				s[3].Task = "D"
				return s
			},
			wantUpdates: []int64{2, 4},
		},
		{
			name: "swap moves both rows",
			staged: func() []models.StagedItem {
				s := stagedFrom(persisted)
				s[0], s[4] = s[4], s[0]
				return s
			},
			wantUpdates: []int64{5, 1},
			wantMoved:   []int64{5, 1},
		},
		{
			name: "duplicate claim becomes an insert",
			staged: func() []models.StagedItem {
				s := stagedFrom(persisted)[:2]
				dup := s[0]
				return append(s, dup)
			},
			wantInserts: []string{"a"},
			wantDeletes: []int64{3, 4, 5},
		},
		{
			name: "stale id becomes an insert",
			staged: func() []models.StagedItem {
				return []models.StagedItem{{ItemID: 99, Task: "ghost"}}
			},
			wantInserts: []string{"ghost"},
			wantDeletes: []int64{1, 2, 3, 4, 5},
		},
		{
			name: "empty stage deletes everything",
			staged: func() []models.StagedItem {
				return nil
			},
			wantDeletes: []int64{1, 2, 3, 4, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			staged := tt.staged()
			plan := PlanReconcile(7, staged, persisted)

			var inserts []string
			for _, item := range plan.Inserts {
				inserts = append(inserts, item.Task)
				if item.ListID != 7 || item.ID != 0 {
					t.Errorf("insert %+v has wrong list or a preset id", item)
				}
			}
			var updates, moved []int64
			for _, u := range plan.Updates {
				updates = append(updates, u.Item.ID)
				if u.Moved {
					moved = append(moved, u.Item.ID)
				}
			}

			if !reflect.DeepEqual(inserts, tt.wantInserts) {
				t.Errorf("inserts = %v, want %v", inserts, tt.wantInserts)
			}
			if !reflect.DeepEqual(updates, tt.wantUpdates) {
				t.Errorf("updates = %v, want %v", updates, tt.wantUpdates)
			}
			if !reflect.DeepEqual(moved, tt.wantMoved) {
				t.Errorf("moved = %v, want %v", moved, tt.wantMoved)
			}
			if !reflect.DeepEqual(plan.Deletes, tt.wantDeletes) {
				t.Errorf("deletes = %v, want %v", plan.Deletes, tt.wantDeletes)
			}

			if got := len(plan.Inserts) + len(plan.Updates) + plan.Unchanged; got != len(staged) {
				t.Errorf("plan covers %d staged items, want %d", got, len(staged))
			}
		})
	}
}

func TestPlanReconcilePositionsAreDense(t *testing.T) {
	persisted := persistedItems(1, "a", "b", "c", "d")
	staged := stagedFrom(persisted)
	staged = append(staged[:1], staged[3:]...)
	staged = append(staged, models.StagedItem{Task: "new", OrderIndex: 9})

	plan := PlanReconcile(1, staged, persisted)

	positions := map[int]bool{}
	for _, item := range plan.Inserts {
		positions[item.Position] = true
	}
	for _, u := range plan.Updates {
		positions[u.Item.Position] = true
	}
	// "a" stays at 0 untouched
	positions[0] = true

	for pos := 0; pos < len(staged); pos++ {
		if !positions[pos] {
			t.Errorf("position %d not assigned", pos)
		}
	}
}

func TestPlanNewList(t *testing.T) {
	staged := []models.StagedItem{
		{Task: "first", OrderIndex: 3, Important: true},
		{Task: "second", OrderIndex: 0, Done: true},
	}

	plan := PlanNewList(4, staged)

	want := []models.TodoItem{
		{ListID: 4, Task: "first", Position: 0, Important: true},
		{ListID: 4, Task: "second", Position: 1, Done: true},
	}
	if !reflect.DeepEqual(plan.Inserts, want) {
		t.Errorf("Inserts = %+v, want %+v", plan.Inserts, want)
	}
	if len(plan.Updates) != 0 || len(plan.Deletes) != 0 {
		t.Errorf("new list plan has updates or deletes: %+v", plan)
	}
}
