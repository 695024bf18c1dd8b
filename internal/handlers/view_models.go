package handlers

import (
	"time"

	"todolists/internal/models"
)

type LoginViewData struct {
	Title   string
	User    *models.User
	Error   string
	Email   string
	Success string
}

type RegisterViewData struct {
	Title string
	User  *models.User
	Error string
	Email string
}

// ListSummary is one row on the overview page
type ListSummary struct {
	Name      string `json:"name"`
	Handle    string `json:"handle"`
	ItemCount int    `json:"item_count"`
	OpenCount int    `json:"open_count"`
}

type ListsViewData struct {
	Title     string        `json:"title"`
	User      *models.User  `json:"-"`
	Ongoing   []ListSummary `json:"ongoing"`
	Finished  []ListSummary `json:"finished"`
	NewName   string        `json:"new_name,omitempty"`
	Error     string        `json:"error,omitempty"`
	Flash     string        `json:"flash,omitempty"`
	CSRFToken string        `json:"csrf_token"`
}

// EditItemView is one staged item. Position addresses it in edit actions,
// OrderIndex in reorder requests.
type EditItemView struct {
	Position   int    `json:"position"`
	OrderIndex int    `json:"order_index"`
	Task       string `json:"task"`
	Important  bool   `json:"important"`
	Done       bool   `json:"done"`
}

type EditViewData struct {
	Title     string         `json:"title"`
	User      *models.User   `json:"-"`
	ListName  string         `json:"list_name"`
	Handle    string         `json:"handle,omitempty"`
	IsNew     bool           `json:"is_new"`
	Shared    bool           `json:"shared"`
	Items     []EditItemView `json:"items"`
	Error     string         `json:"error,omitempty"`
	Flash     string         `json:"flash,omitempty"`
	CSRFToken string         `json:"csrf_token"`
}

type ShareViewData struct {
	Title     string       `json:"title"`
	User      *models.User `json:"-"`
	Handle    string       `json:"handle"`
	URL       string       `json:"url"`
	ExpiresAt time.Time    `json:"expires_at"`
	OpenItems int          `json:"open_items"`
	Emailed   bool         `json:"emailed"`
	CSRFToken string       `json:"csrf_token"`
}

func summarize(lists []models.ListWithItems) []ListSummary {
	out := make([]ListSummary, 0, len(lists))
	for i := range lists {
		out = append(out, ListSummary{
			Name:      lists[i].Name,
			Handle:    lists[i].Handle,
			ItemCount: len(lists[i].Items),
			OpenCount: lists[i].OpenCount(),
		})
	}
	return out
}

func editItems(items []models.StagedItem) []EditItemView {
	out := make([]EditItemView, 0, len(items))
	for pos, item := range items {
		out = append(out, EditItemView{
			Position:   pos,
			OrderIndex: item.OrderIndex,
			Task:       item.Task,
			Important:  item.Important,
			Done:       item.Done,
		})
	}
	return out
}
