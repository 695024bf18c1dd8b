package models

import "time"

// TodoList is a named, owned collection of ordered items addressed by a public handle
type TodoList struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Handle    string    `db:"handle" json:"handle"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TodoItem is one persisted task. Position is dense and 0-based within its list.
type TodoItem struct {
	ID        int64  `db:"id" json:"id"`
	ListID    int64  `db:"list_id" json:"list_id"`
	Task      string `db:"task" json:"task"`
	Position  int    `db:"position" json:"position"`
	Important bool   `db:"important" json:"important"`
	Done      bool   `db:"done" json:"done"`
}

// ListOwner links a user to a list they may edit
type ListOwner struct {
	UserID int64 `db:"user_id" json:"user_id"`
	ListID int64 `db:"list_id" json:"list_id"`
}

// ListWithItems combines a list with its items in position order
type ListWithItems struct {
	TodoList
	Items []TodoItem `json:"items"`
}

// IsFinished reports whether every item is done. An empty list counts as finished.
func (l *ListWithItems) IsFinished() bool {
	for _, item := range l.Items {
		if !item.Done {
			return false
		}
	}
	return true
}

// OpenCount returns the number of items not yet done
func (l *ListWithItems) OpenCount() int {
	n := 0
	for _, item := range l.Items {
		if !item.Done {
			n++
		}
	}
	return n
}

// StagedItem is an item being edited in a session before it is saved.
// ItemID is the persisted row it came from, 0 for items added during the edit.
type StagedItem struct {
	ItemID     int64  `json:"item_id,omitempty"`
	Task       string `json:"task"`
	OrderIndex int    `json:"order_index"`
	Important  bool   `json:"important"`
	Done       bool   `json:"done"`
}
