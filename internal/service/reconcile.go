package service

import "todolists/internal/models"

// ReconcilePlan is the set of row writes that brings a persisted list in
// line with a stage
type ReconcilePlan struct {
	Inserts []models.TodoItem
	Updates []ItemUpdate
	Deletes []int64
	// Unchanged counts staged items whose row already matches
	Unchanged int
}

// ItemUpdate rewrites one existing row
type ItemUpdate struct {
	Item  models.TodoItem
	Moved bool
}

// PlanReconcile matches staged items to persisted rows by item id. A staged
// item keeps its row when it carries the id of a row that still exists and
// no earlier staged item claimed it; everything else becomes an insert.
// Rows not claimed by any staged item are deleted. Positions in the result
// are the staged indices, so a saved list is always numbered 0..n-1.
func PlanReconcile(listID int64, staged []models.StagedItem, persisted []models.TodoItem) ReconcilePlan {
	byID := make(map[int64]models.TodoItem, len(persisted))
	for _, item := range persisted {
		byID[item.ID] = item
	}
	claimed := make(map[int64]bool, len(persisted))

	var plan ReconcilePlan
	for pos, s := range staged {
		target := models.TodoItem{
			ListID:    listID,
			Task:      s.Task,
			Position:  pos,
			Important: s.Important,
			Done:      s.Done,
		}

		current, ok := byID[s.ItemID]
		if s.ItemID == 0 || !ok || claimed[s.ItemID] {
			plan.Inserts = append(plan.Inserts, target)
			continue
		}
		claimed[s.ItemID] = true
		target.ID = current.ID

		if current == target {
			plan.Unchanged++
			continue
		}
		plan.Updates = append(plan.Updates, ItemUpdate{
			Item:  target,
			Moved: current.Position != pos,
		})
	}

	for _, item := range persisted {
		if !claimed[item.ID] {
			plan.Deletes = append(plan.Deletes, item.ID)
		}
	}

	return plan
}

// PlanNewList inserts every staged item at its staged index
func PlanNewList(listID int64, staged []models.StagedItem) ReconcilePlan {
	var plan ReconcilePlan
	for pos, s := range staged {
		plan.Inserts = append(plan.Inserts, models.TodoItem{
			ListID:    listID,
			Task:      s.Task,
			Position:  pos,
			Important: s.Important,
			Done:      s.Done,
		})
	}
	return plan
}
