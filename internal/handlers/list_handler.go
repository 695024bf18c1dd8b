package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"todolists/internal/handles"
	"todolists/internal/logger"
	"todolists/internal/security"
	"todolists/internal/service"
	"todolists/internal/staging"
	"todolists/internal/validation"
)

const maxReorderBody = 64 << 10

// ListHandler handles list overview and editing requests
type ListHandler struct {
	listService  *service.ListService
	shareService *service.ShareService
	middleware   *Middleware
	renderer     Renderer
	log          *logger.Logger
}

// NewListHandler creates a new list handler
func NewListHandler(listService *service.ListService, shareService *service.ShareService, middleware *Middleware, renderer Renderer, log *logger.Logger) *ListHandler {
	return &ListHandler{
		listService:  listService,
		shareService: shareService,
		middleware:   middleware,
		renderer:     renderer,
		log:          log.WithComponent("lists"),
	}
}

func (h *ListHandler) render(w http.ResponseWriter, status int, name string, data interface{}) {
	if err := h.renderer.Render(w, status, name, data); err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Error rendering "+name, err)
	}
}

func (h *ListHandler) renderEdit(w http.ResponseWriter, r *http.Request, status int, stage *staging.Stage, errMsg string) {
	title := "New list - To-Do Lists"
	if stage.ListName != "" {
		title = stage.ListName + " - To-Do Lists"
	}
	h.render(w, status, "edit.tmpl", EditViewData{
		Title:     title,
		User:      GetUserFromContext(r.Context()),
		ListName:  stage.ListName,
		Handle:    stage.ListHandle,
		IsNew:     stage.IsNew,
		Shared:    stage.Shared,
		Items:     editItems(stage.Items),
		Error:     errMsg,
		Flash:     popFlash(w, r),
		CSRFToken: h.middleware.CSRFToken(r),
	})
}

func (h *ListHandler) renderLists(w http.ResponseWriter, r *http.Request, status int, newName, errMsg string) {
	user := GetUserFromContext(r.Context())

	groups, err := h.listService.Overview(r.Context(), user.ID)
	if err != nil {
		respondWithError(w, h.log, http.StatusInternalServerError, ErrInternalServerError, "Error getting user lists", err)
		return
	}

	h.render(w, status, "lists.tmpl", ListsViewData{
		Title:     "My lists - To-Do Lists",
		User:      user,
		Ongoing:   summarize(groups.Ongoing),
		Finished:  summarize(groups.Finished),
		NewName:   newName,
		Error:     errMsg,
		Flash:     popFlash(w, r),
		CSRFToken: h.middleware.CSRFToken(r),
	})
}

// handleError maps service failures to responses. Missing lists and failed
// saves go back to the overview with an advisory; foreign lists look missing.
func (h *ListHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := h.log
	if user := GetUserFromContext(r.Context()); user != nil {
		log = log.WithUserID(user.ID)
	}

	switch {
	case errors.Is(err, service.ErrNoActiveStage):
		redirectWithFlash(w, r, "/lists", flashNoStage)
	case errors.Is(err, service.ErrListNotFound):
		redirectWithFlash(w, r, "/lists", flashListMissing)
	case errors.Is(err, service.ErrNotListOwner):
		respondWithError(w, log, http.StatusNotFound, ErrNotFound, "access to foreign list", err)
	case errors.Is(err, staging.ErrPositionOutOfRange):
		log.WithError(err).Errorw("staged position out of range", "path", r.URL.Path)
		http.Error(w, ErrInvalidFormData, http.StatusBadRequest)
	default:
		log.WithError(err).Errorw("list operation failed", "path", r.URL.Path)
		redirectWithFlash(w, r, "/lists", flashSaveFailed)
	}
}

// ShowLists renders the overview of the user's ongoing and finished lists
func (h *ListHandler) ShowLists(w http.ResponseWriter, r *http.Request) {
	h.renderLists(w, r, http.StatusOK, "", "")
}

// CreateList starts editing a brand-new list
func (h *ListHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	name, err := validation.ValidateListName(r.FormValue("name"))
	if err != nil {
		h.renderLists(w, r, http.StatusBadRequest, r.FormValue("name"), validationMessage(err))
		return
	}

	if _, err := h.listService.StartNewList(r.Context(), GetSessionIDFromContext(r.Context()), user.ID, name); err != nil {
		if errors.Is(err, service.ErrDuplicateListName) {
			h.renderLists(w, r, http.StatusConflict, name, err.Error())
			return
		}
		h.handleError(w, r, err)
		return
	}

	http.Redirect(w, r, "/edit", http.StatusSeeOther)
}

// OpenList loads an owned list into the edit stage and shows it
func (h *ListHandler) OpenList(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	handle := r.PathValue("handle")
	if !handles.Valid(handle) {
		http.Error(w, ErrNotFound, http.StatusNotFound)
		return
	}

	stage, err := h.listService.OpenList(r.Context(), GetSessionIDFromContext(r.Context()), user.ID, handle)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderEdit(w, r, http.StatusOK, stage, "")
}

// ShowEdit renders the list currently being edited
func (h *ListHandler) ShowEdit(w http.ResponseWriter, r *http.Request) {
	stage, err := h.listService.CurrentStage(r.Context(), GetSessionIDFromContext(r.Context()))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.renderEdit(w, r, http.StatusOK, stage, "")
}

// AppendItem adds a task to the end of the staged list
func (h *ListHandler) AppendItem(w http.ResponseWriter, r *http.Request) {
	sessionID := GetSessionIDFromContext(r.Context())

	task, err := validation.ValidateTask(r.FormValue("task"))
	if err != nil {
		stage, stageErr := h.listService.CurrentStage(r.Context(), sessionID)
		if stageErr != nil {
			h.handleError(w, r, stageErr)
			return
		}
		h.renderEdit(w, r, http.StatusBadRequest, stage, validationMessage(err))
		return
	}

	if _, err := h.listService.AppendItem(r.Context(), sessionID, task); err != nil {
		h.handleError(w, r, err)
		return
	}
	http.Redirect(w, r, "/edit", http.StatusSeeOther)
}

// DeleteItem removes the staged item at the path position
func (h *ListHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	h.positionAction(w, r, h.listService.DeleteItem)
}

// ToggleImportant flips the important flag of the staged item at the path position
func (h *ListHandler) ToggleImportant(w http.ResponseWriter, r *http.Request) {
	h.positionAction(w, r, h.listService.ToggleImportant)
}

// ToggleDone flips the done flag of the staged item at the path position
func (h *ListHandler) ToggleDone(w http.ResponseWriter, r *http.Request) {
	h.positionAction(w, r, h.listService.ToggleDone)
}

type positionOp func(ctx context.Context, sessionID string, position int) (*staging.Stage, error)

func (h *ListHandler) positionAction(w http.ResponseWriter, r *http.Request, op positionOp) {
	position, err := strconv.Atoi(r.PathValue("position"))
	if err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidFormData, "bad item position", err)
		return
	}

	if _, err := op(r.Context(), GetSessionIDFromContext(r.Context()), position); err != nil {
		h.handleError(w, r, err)
		return
	}
	http.Redirect(w, r, "/edit", http.StatusSeeOther)
}

// Reorder applies a drag-and-drop reorder and renders the result. The
// order arrives as JSON {"order":[...]} or as a form value "2,0,1".
func (h *ListHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	order, err := parseOrder(r)
	if err != nil {
		respondWithError(w, h.log, http.StatusBadRequest, ErrInvalidFormData, "bad reorder request", err)
		return
	}

	stage, err := h.listService.Reorder(r.Context(), GetSessionIDFromContext(r.Context()), order)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.renderEdit(w, r, http.StatusOK, stage, "")
}

func parseOrder(r *http.Request) ([]int, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Order []int `json:"order"`
		}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxReorderBody)).Decode(&body); err != nil {
			return nil, fmt.Errorf("failed to decode order: %w", err)
		}
		return body.Order, nil
	}

	raw := strings.TrimSpace(r.FormValue("order"))
	if raw == "" {
		return []int{}, nil
	}
	parts := strings.Split(raw, ",")
	order := make([]int, 0, len(parts))
	for _, part := range parts {
		idx, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid order index %q: %w", part, err)
		}
		order = append(order, idx)
	}
	return order, nil
}

// Rename changes the name of the staged list
func (h *ListHandler) Rename(w http.ResponseWriter, r *http.Request) {
	sessionID := GetSessionIDFromContext(r.Context())

	name, err := validation.ValidateListName(r.FormValue("name"))
	if err != nil {
		stage, stageErr := h.listService.CurrentStage(r.Context(), sessionID)
		if stageErr != nil {
			h.handleError(w, r, stageErr)
			return
		}
		h.renderEdit(w, r, http.StatusBadRequest, stage, validationMessage(err))
		return
	}

	if _, err := h.listService.RenameStage(r.Context(), sessionID, name); err != nil {
		h.handleError(w, r, err)
		return
	}
	http.Redirect(w, r, "/edit", http.StatusSeeOther)
}

// Discard drops unsaved edits
func (h *ListHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.listService.DiscardStage(r.Context(), GetSessionIDFromContext(r.Context())); err != nil {
		h.handleError(w, r, err)
		return
	}
	redirectWithFlash(w, r, "/lists", flashDiscarded)
}

// Save writes the staged list to the database
func (h *ListHandler) Save(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	sessionID := GetSessionIDFromContext(r.Context())

	if _, err := h.listService.SaveList(r.Context(), sessionID, user.ID); err != nil {
		if errors.Is(err, service.ErrDuplicateListName) {
			stage, stageErr := h.listService.CurrentStage(r.Context(), sessionID)
			if stageErr != nil {
				h.handleError(w, r, stageErr)
				return
			}
			h.renderEdit(w, r, http.StatusConflict, stage, service.ErrDuplicateListName.Error())
			return
		}
		h.handleError(w, r, err)
		return
	}

	redirectWithFlash(w, r, "/lists", flashSaved)
}

// DeleteList removes an owned list
func (h *ListHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	if err := h.listService.DeleteList(r.Context(), GetSessionIDFromContext(r.Context()), user.ID, r.PathValue("handle")); err != nil {
		h.handleError(w, r, err)
		return
	}
	redirectWithFlash(w, r, "/lists", flashDeleted)
}

// ShareList issues a share link for an owned list, mailing it when an
// address is given
func (h *ListHandler) ShareList(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	handle := r.PathValue("handle")

	form := validation.ShareForm{Email: strings.TrimSpace(r.FormValue("email"))}
	if err := validation.Struct(form); err != nil {
		h.renderLists(w, r, http.StatusBadRequest, "", validationMessage(err))
		return
	}

	link, err := h.shareService.CreateShareLink(r.Context(), user, handle, form.Email)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.render(w, http.StatusOK, "share.tmpl", ShareViewData{
		Title:     "Share list - To-Do Lists",
		User:      user,
		Handle:    handle,
		URL:       link.URL,
		ExpiresAt: link.ExpiresAt,
		OpenItems: link.OpenItems,
		Emailed:   link.Emailed,
		CSRFToken: h.middleware.CSRFToken(r),
	})
}

// AcceptShare opens a list reached through a share link for editing.
// Saving it adds the user as an owner.
func (h *ListHandler) AcceptShare(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	handle, err := h.shareService.Resolve(r.PathValue("token"))
	if err != nil {
		h.log.LogSecurityEvent("invalid_share_token", security.GetClientIP(r), map[string]interface{}{
			"user_id": user.ID,
		})
		http.Error(w, ErrNotFound, http.StatusNotFound)
		return
	}

	stage, err := h.listService.OpenSharedList(r.Context(), GetSessionIDFromContext(r.Context()), user.ID, handle)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.renderEdit(w, r, http.StatusOK, stage, "")
}
