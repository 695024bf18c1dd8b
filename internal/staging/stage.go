// Package staging holds the per-session edit area for one to-do list and
// the stores that keep it between requests.
package staging

import (
	"errors"
	"fmt"

	"todolists/internal/models"
)

// ErrPositionOutOfRange is returned when a position does not address a staged item
var ErrPositionOutOfRange = errors.New("staged position out of range")

// Stage is the in-progress state of one list for one browsing session
type Stage struct {
	ListHandle string              `json:"list_handle"`
	ListName   string              `json:"list_name"`
	IsNew      bool                `json:"is_new"`
	Loaded     bool                `json:"loaded"`
	Shared     bool                `json:"shared"`
	UserID     int64               `json:"user_id"`
	Items      []models.StagedItem `json:"items"`
}

// NewStageFromList stages every persisted item of list in position order
func NewStageFromList(userID int64, list *models.ListWithItems) *Stage {
	items := make([]models.StagedItem, 0, len(list.Items))
	for _, item := range list.Items {
		items = append(items, models.StagedItem{
			ItemID:     item.ID,
			Task:       item.Task,
			OrderIndex: item.Position,
			Important:  item.Important,
			Done:       item.Done,
		})
	}

	return &Stage{
		ListHandle: list.Handle,
		ListName:   list.Name,
		Loaded:     true,
		UserID:     userID,
		Items:      items,
	}
}

// NewEmptyStage starts a brand-new list with no items
func NewEmptyStage(userID int64, name string) *Stage {
	return &Stage{
		ListName: name,
		IsNew:    true,
		Loaded:   true,
		UserID:   userID,
		Items:    []models.StagedItem{},
	}
}

// Count returns the number of staged items
func (s *Stage) Count() int {
	return len(s.Items)
}

// Append adds a new item at the end. Its order index is one past the
// highest in use, which is the staged count until something is removed.
func (s *Stage) Append(task string) models.StagedItem {
	item := models.StagedItem{
		Task:       task,
		OrderIndex: s.nextOrderIndex(),
	}
	s.Items = append(s.Items, item)
	return item
}

// Remove deletes the item at position without renumbering the rest
func (s *Stage) Remove(position int) error {
	if err := s.checkPosition(position); err != nil {
		return err
	}
	s.Items = append(s.Items[:position], s.Items[position+1:]...)
	return nil
}

// ToggleImportant flips the important flag of the item at position
func (s *Stage) ToggleImportant(position int) error {
	if err := s.checkPosition(position); err != nil {
		return err
	}
	s.Items[position].Important = !s.Items[position].Important
	return nil
}

// ToggleDone flips the done flag of the item at position
func (s *Stage) ToggleDone(position int) error {
	if err := s.checkPosition(position); err != nil {
		return err
	}
	s.Items[position].Done = !s.Items[position].Done
	return nil
}

// Rename changes the staged list name
func (s *Stage) Rename(name string) {
	s.ListName = name
}

// Reorder re-sequences the items by order index and applies the
// importance and completion rule
func (s *Stage) Reorder(order []int) {
	s.Items = Reorder(s.Items, order)
}

// Clone returns a deep copy
func (s *Stage) Clone() *Stage {
	c := *s
	c.Items = make([]models.StagedItem, len(s.Items))
	copy(c.Items, s.Items)
	return &c
}

func (s *Stage) checkPosition(position int) error {
	if position < 0 || position >= len(s.Items) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrPositionOutOfRange, position, len(s.Items))
	}
	return nil
}

func (s *Stage) nextOrderIndex() int {
	next := 0
	for _, item := range s.Items {
		if item.OrderIndex >= next {
			next = item.OrderIndex + 1
		}
	}
	return next
}
