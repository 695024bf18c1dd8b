package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"todolists/internal/logger"
	"todolists/internal/models"
	"todolists/internal/repository"
	"todolists/internal/security"
)

// ShareLink is a signed link granting edit access to one list
type ShareLink struct {
	URL       string
	ExpiresAt time.Time
	OpenItems int
	Emailed   bool
}

// ShareService issues and resolves list share links
type ShareService struct {
	lists   *repository.ListRepository
	tokens  *security.ShareTokens
	email   *EmailService
	baseURL string
	log     *logger.Logger
}

// NewShareService creates a new share service
func NewShareService(lists *repository.ListRepository, tokens *security.ShareTokens, email *EmailService, baseURL string, log *logger.Logger) *ShareService {
	return &ShareService{
		lists:   lists,
		tokens:  tokens,
		email:   email,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     log.WithComponent("share_service"),
	}
}

// CreateShareLink signs a link for a list the user owns and, when recipient
// is set, mails it
func (s *ShareService) CreateShareLink(ctx context.Context, user *models.User, handle, recipient string) (*ShareLink, error) {
	list, err := s.lists.GetListByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, ErrListNotFound
	}

	owner, err := s.lists.IsOwner(ctx, user.ID, list.ID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, ErrNotListOwner
	}

	token, expiresAt, err := s.tokens.Issue(list.Handle, user.ID)
	if err != nil {
		return nil, err
	}

	open, err := s.lists.CountOpenItems(ctx, list.ID)
	if err != nil {
		return nil, err
	}

	link := &ShareLink{
		URL:       fmt.Sprintf("%s/share/%s", s.baseURL, token),
		ExpiresAt: expiresAt,
		OpenItems: open,
	}

	if recipient != "" && s.email != nil && s.email.IsEnabled() {
		if err := s.email.SendShareInvite(ctx, recipient, user.Email, list.Name, link.URL, expiresAt); err != nil {
			return nil, fmt.Errorf("failed to send share invite: %w", err)
		}
		link.Emailed = true
	}

	s.log.LogUserAction(user.ID, "share_list", map[string]interface{}{
		"handle":  handle,
		"emailed": link.Emailed,
	})
	return link, nil
}

// Resolve verifies a share token and returns the list handle it grants
func (s *ShareService) Resolve(token string) (string, error) {
	return s.tokens.Parse(token)
}
