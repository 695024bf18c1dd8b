package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"todolists/internal/logger"
	"todolists/internal/security"
)

func TestShareLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ann := env.createUser(t, "ann@example.com")
	bob := env.createUser(t, "bob@example.com")
	list := env.createList(t, "s1", ann.ID, "Party", "cake")

	fake := &fakeSES{}
	email := newEmailServiceWithClient(fake, "lists@example.com", "", logger.NewNop())
	tokens := security.NewShareTokens("test-secret", time.Hour)
	shares := NewShareService(env.lists, tokens, email, "http://localhost:8080/", logger.NewNop())

	if _, err := shares.CreateShareLink(ctx, bob, list.Handle, ""); !errors.Is(err, ErrNotListOwner) {
		t.Errorf("CreateShareLink(non-owner) error = %v, want ErrNotListOwner", err)
	}
	if _, err := shares.CreateShareLink(ctx, ann, "nope", ""); !errors.Is(err, ErrListNotFound) {
		t.Errorf("CreateShareLink(missing) error = %v, want ErrListNotFound", err)
	}

	link, err := shares.CreateShareLink(ctx, ann, list.Handle, "")
	if err != nil {
		t.Fatalf("CreateShareLink() error = %v", err)
	}
	if !strings.HasPrefix(link.URL, "http://localhost:8080/share/") {
		t.Errorf("URL = %q", link.URL)
	}
	if link.OpenItems != 1 {
		t.Errorf("OpenItems = %d, want 1", link.OpenItems)
	}
	if link.Emailed || len(fake.inputs) != 0 {
		t.Error("link without recipient should not be emailed")
	}

	token := strings.TrimPrefix(link.URL, "http://localhost:8080/share/")
	handle, err := shares.Resolve(token)
	if err != nil || handle != list.Handle {
		t.Errorf("Resolve() = %q, %v, want %q", handle, err, list.Handle)
	}
	if _, err := shares.Resolve(token + "x"); !errors.Is(err, security.ErrInvalidShareToken) {
		t.Errorf("Resolve(tampered) error = %v, want ErrInvalidShareToken", err)
	}

	mailed, err := shares.CreateShareLink(ctx, ann, list.Handle, "bob@example.com")
	if err != nil {
		t.Fatalf("CreateShareLink(recipient) error = %v", err)
	}
	if !mailed.Emailed || len(fake.inputs) != 1 {
		t.Errorf("Emailed = %v, sent = %d, want true, 1", mailed.Emailed, len(fake.inputs))
	}
}
