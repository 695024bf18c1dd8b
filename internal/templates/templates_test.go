package templates

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"todolists/internal/handlers"
	"todolists/internal/models"
)

func TestLoadAndRenderPages(t *testing.T) {
	tmpl, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	user := &models.User{ID: 1, Email: "ann@example.com"}

	tests := []struct {
		name  string
		page  string
		data  interface{}
		wants []string
	}{
		{
			name:  "login",
			page:  "login.tmpl",
			data:  handlers.LoginViewData{Title: "Log in", Error: "Invalid email or password", Email: "ann@example.com"},
			wants: []string{"Invalid email or password", `value="ann@example.com"`},
		},
		{
			name:  "register",
			page:  "register.tmpl",
			data:  handlers.RegisterViewData{Title: "Sign up"},
			wants: []string{`name="confirm"`},
		},
		{
			name: "lists",
			page: "lists.tmpl",
			data: handlers.ListsViewData{
				Title:     "My lists",
				User:      user,
				Ongoing:   []handlers.ListSummary{{Name: "Groceries", Handle: "Ab12", ItemCount: 3, OpenCount: 2}},
				Finished:  []handlers.ListSummary{},
				Flash:     "List saved.",
				CSRFToken: "tok",
			},
			wants: []string{"Groceries", `/lists/Ab12/share`, "2 of 3 open", "No finished lists yet.", "List saved.", `value="tok"`, "ann@example.com"},
		},
		{
			name: "edit",
			page: "edit.tmpl",
			data: handlers.EditViewData{
				Title:    "Groceries",
				User:     user,
				ListName: "Groceries",
				Items: []handlers.EditItemView{
					{Position: 0, OrderIndex: 1, Task: "<eggs>", Important: true},
					{Position: 1, OrderIndex: 0, Task: "milk", Done: true},
				},
				CSRFToken: "tok",
			},
			wants: []string{"1. &lt;eggs&gt;", "2. milk", `/edit/items/1/done`, `data-order="1"`, "Unstar", "Reopen"},
		},
		{
			name: "share",
			page: "share.tmpl",
			data: handlers.ShareViewData{
				Title:     "Share",
				User:      user,
				URL:       "http://example.test/share/tok",
				ExpiresAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
				OpenItems: 1,
				Emailed:   true,
			},
			wants: []string{"http://example.test/share/tok", "Mar 1, 2026", "sent by email", "1 open item on"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tmpl.ExecuteTemplate(&buf, tt.page, tt.data); err != nil {
				t.Fatalf("ExecuteTemplate(%s) error = %v", tt.page, err)
			}
			out := buf.String()
			for _, want := range tt.wants {
				if !strings.Contains(out, want) {
					t.Errorf("%s output missing %q", tt.page, want)
				}
			}
		})
	}
}
