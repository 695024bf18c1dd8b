package service

import (
	"context"
	"errors"
	"fmt"

	"todolists/internal/database"
	"todolists/internal/handles"
	"todolists/internal/logger"
	"todolists/internal/metrics"
	"todolists/internal/models"
	"todolists/internal/repository"
	"todolists/internal/staging"
)

var (
	ErrListNotFound      = errors.New("list not found")
	ErrNoActiveStage     = errors.New("no list is being edited")
	ErrDuplicateListName = errors.New("you already have a list with that name")
	ErrNotListOwner      = errors.New("list belongs to another user")

	errHandleTaken = errors.New("list handle taken by concurrent insert")
)

const maxHandleInsertTries = 3

// ListService drives the edit workflow: staging a list, editing the stage
// and saving it back in one transaction
type ListService struct {
	db      *database.DB
	lists   *repository.ListRepository
	stages  staging.Store
	metrics *metrics.Metrics
	log     *logger.Logger
}

// NewListService creates a new list service
func NewListService(db *database.DB, lists *repository.ListRepository, stages staging.Store, m *metrics.Metrics, log *logger.Logger) *ListService {
	return &ListService{
		db:      db,
		lists:   lists,
		stages:  stages,
		metrics: m,
		log:     log.WithComponent("list_service"),
	}
}

// Overview returns the user's lists grouped into ongoing and finished
func (s *ListService) Overview(ctx context.Context, userID int64) (ListGroups, error) {
	lists, err := s.lists.GetUserLists(ctx, userID)
	if err != nil {
		return ListGroups{}, err
	}
	return ClassifyLists(lists), nil
}

// StartNewList replaces the session's stage with an empty list called name
func (s *ListService) StartNewList(ctx context.Context, sessionID string, userID int64, name string) (*staging.Stage, error) {
	taken, err := s.lists.OwnerHasListNamed(ctx, userID, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateListName
	}

	stage := staging.NewEmptyStage(userID, name)
	if err := s.stages.Put(ctx, sessionID, stage); err != nil {
		return nil, err
	}
	return stage, nil
}

// OpenList stages an owned list for editing. A stage already loaded for
// the same list is returned as is so in-progress edits survive reloads.
func (s *ListService) OpenList(ctx context.Context, sessionID string, userID int64, handle string) (*staging.Stage, error) {
	return s.open(ctx, sessionID, userID, handle, false)
}

// OpenSharedList stages a list reached through a share link. The user
// need not own it yet; saving the stage makes them an owner.
func (s *ListService) OpenSharedList(ctx context.Context, sessionID string, userID int64, handle string) (*staging.Stage, error) {
	return s.open(ctx, sessionID, userID, handle, true)
}

func (s *ListService) open(ctx context.Context, sessionID string, userID int64, handle string, viaShare bool) (*staging.Stage, error) {
	current, err := s.stages.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if current != nil && current.Loaded && !current.IsNew && current.ListHandle == handle && current.UserID == userID {
		if viaShare || !current.Shared {
			return current, nil
		}
	}

	list, err := s.lists.GetListWithItems(ctx, handle)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, ErrListNotFound
	}

	owner, err := s.lists.IsOwner(ctx, userID, list.ID)
	if err != nil {
		return nil, err
	}
	if !owner && !viaShare {
		return nil, ErrNotListOwner
	}

	stage := staging.NewStageFromList(userID, list)
	stage.Shared = !owner
	if err := s.stages.Put(ctx, sessionID, stage); err != nil {
		return nil, err
	}
	return stage, nil
}

// CurrentStage returns the session's stage
func (s *ListService) CurrentStage(ctx context.Context, sessionID string) (*staging.Stage, error) {
	stage, err := s.stages.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if stage == nil {
		return nil, ErrNoActiveStage
	}
	return stage, nil
}

// DiscardStage drops unsaved edits
func (s *ListService) DiscardStage(ctx context.Context, sessionID string) error {
	return s.stages.Delete(ctx, sessionID)
}

// AppendItem adds a task to the end of the stage
func (s *ListService) AppendItem(ctx context.Context, sessionID, task string) (*staging.Stage, error) {
	return s.mutate(ctx, sessionID, "append", func(stage *staging.Stage) error {
		stage.Append(task)
		return nil
	})
}

// DeleteItem removes the staged item at position
func (s *ListService) DeleteItem(ctx context.Context, sessionID string, position int) (*staging.Stage, error) {
	return s.mutate(ctx, sessionID, "delete", func(stage *staging.Stage) error {
		return stage.Remove(position)
	})
}

// ToggleImportant flips the important flag at position
func (s *ListService) ToggleImportant(ctx context.Context, sessionID string, position int) (*staging.Stage, error) {
	return s.mutate(ctx, sessionID, "toggle_important", func(stage *staging.Stage) error {
		return stage.ToggleImportant(position)
	})
}

// ToggleDone flips the done flag at position
func (s *ListService) ToggleDone(ctx context.Context, sessionID string, position int) (*staging.Stage, error) {
	return s.mutate(ctx, sessionID, "toggle_done", func(stage *staging.Stage) error {
		return stage.ToggleDone(position)
	})
}

// Reorder applies a client reorder given as a sequence of order indices
func (s *ListService) Reorder(ctx context.Context, sessionID string, order []int) (*staging.Stage, error) {
	return s.mutate(ctx, sessionID, "reorder", func(stage *staging.Stage) error {
		stage.Reorder(order)
		return nil
	})
}

// RenameStage changes the staged list name; uniqueness is checked on save
func (s *ListService) RenameStage(ctx context.Context, sessionID, name string) (*staging.Stage, error) {
	return s.mutate(ctx, sessionID, "rename", func(stage *staging.Stage) error {
		stage.Rename(name)
		return nil
	})
}

func (s *ListService) mutate(ctx context.Context, sessionID, op string, fn func(*staging.Stage) error) (*staging.Stage, error) {
	stage, err := s.CurrentStage(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(stage); err != nil {
		return nil, err
	}
	if err := s.stages.Put(ctx, sessionID, stage); err != nil {
		return nil, err
	}
	s.metrics.StageOp(op)
	return stage, nil
}

// SaveList writes the session's stage to the database in one transaction
// and clears the stage. Nothing is written when it fails.
func (s *ListService) SaveList(ctx context.Context, sessionID string, userID int64) (*models.TodoList, error) {
	stage, err := s.CurrentStage(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if stage.UserID != userID {
		return nil, ErrNoActiveStage
	}

	var (
		list *models.TodoList
		plan ReconcilePlan
	)
	if stage.IsNew {
		list, plan, err = s.saveNew(ctx, stage)
	} else {
		list, plan, err = s.saveExisting(ctx, stage)
	}
	if err != nil {
		return nil, err
	}

	if err := s.stages.Delete(ctx, sessionID); err != nil {
		s.log.WithError(err).Warnw("failed to clear stage after save", "handle", list.Handle)
	}

	s.metrics.ListSaved(stage.IsNew)
	s.metrics.Reconciled(len(plan.Inserts), len(plan.Updates), len(plan.Deletes))
	s.log.LogUserAction(userID, "save_list", map[string]interface{}{
		"handle":  list.Handle,
		"new":     stage.IsNew,
		"inserts": len(plan.Inserts),
		"updates": len(plan.Updates),
		"deletes": len(plan.Deletes),
	})

	return list, nil
}

func (s *ListService) saveNew(ctx context.Context, stage *staging.Stage) (*models.TodoList, ReconcilePlan, error) {
	var (
		list *models.TodoList
		plan ReconcilePlan
		err  error
	)

	for attempt := 0; attempt < maxHandleInsertTries; attempt++ {
		err = s.db.WithTransaction(ctx, func(tx *database.Tx) error {
			repo := s.lists.WithTx(tx)

			taken, err := repo.OwnerHasListNamed(ctx, stage.UserID, stage.ListName, 0)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateListName
			}

			handle, err := handles.Unique(ctx, repo.HandleExists)
			if err != nil {
				return err
			}

			list, err = repo.CreateList(ctx, stage.ListName, handle)
			if err != nil {
				if tx.GetDialect().IsUniqueViolation(err) {
					return errHandleTaken
				}
				return err
			}

			if _, err := repo.EnsureOwner(ctx, stage.UserID, list.ID); err != nil {
				return err
			}

			plan = PlanNewList(list.ID, stage.Items)
			return applyPlan(ctx, repo, list.ID, plan)
		})
		if !errors.Is(err, errHandleTaken) {
			break
		}
		s.log.Warnw("list handle collided on insert, retrying", "attempt", attempt+1)
	}
	if err != nil {
		return nil, ReconcilePlan{}, fmt.Errorf("failed to save new list: %w", err)
	}

	return list, plan, nil
}

func (s *ListService) saveExisting(ctx context.Context, stage *staging.Stage) (*models.TodoList, ReconcilePlan, error) {
	var (
		list *models.TodoList
		plan ReconcilePlan
	)

	err := s.db.WithTransaction(ctx, func(tx *database.Tx) error {
		repo := s.lists.WithTx(tx)

		var err error
		list, err = repo.GetListByHandle(ctx, stage.ListHandle)
		if err != nil {
			return err
		}
		if list == nil {
			return ErrListNotFound
		}

		owner, err := repo.IsOwner(ctx, stage.UserID, list.ID)
		if err != nil {
			return err
		}
		if !owner && !stage.Shared {
			return ErrNotListOwner
		}

		// A rename or a first save through a share link brings the name into
		// the user's set of lists, where it must be unique.
		renamed := stage.ListName != list.Name
		if renamed || !owner {
			taken, err := repo.OwnerHasListNamed(ctx, stage.UserID, stage.ListName, list.ID)
			if err != nil {
				return err
			}
			if taken {
				return ErrDuplicateListName
			}
		}

		if renamed {
			if err := repo.UpdateListName(ctx, list.ID, stage.ListName); err != nil {
				return err
			}
			list.Name = stage.ListName
		} else if err := repo.TouchList(ctx, list.ID); err != nil {
			return err
		}

		persisted, err := repo.GetListItems(ctx, list.ID)
		if err != nil {
			return err
		}

		plan = PlanReconcile(list.ID, stage.Items, persisted)
		if err := applyPlan(ctx, repo, list.ID, plan); err != nil {
			return err
		}

		_, err = repo.EnsureOwner(ctx, stage.UserID, list.ID)
		return err
	})
	if err != nil {
		return nil, ReconcilePlan{}, fmt.Errorf("failed to save list %s: %w", stage.ListHandle, err)
	}

	return list, plan, nil
}

// applyPlan writes a plan. Moved rows are parked at negative positions
// first so no intermediate state breaks the unique (list_id, position) key.
func applyPlan(ctx context.Context, repo *repository.ListRepository, listID int64, plan ReconcilePlan) error {
	for _, id := range plan.Deletes {
		if err := repo.DeleteItem(ctx, listID, id); err != nil {
			return err
		}
	}

	for _, u := range plan.Updates {
		if !u.Moved {
			continue
		}
		if err := repo.SetItemPosition(ctx, listID, u.Item.ID, -int(u.Item.ID)); err != nil {
			return err
		}
	}

	for i := range plan.Updates {
		if err := repo.UpdateItem(ctx, &plan.Updates[i].Item); err != nil {
			return err
		}
	}

	for i := range plan.Inserts {
		id, err := repo.InsertItem(ctx, &plan.Inserts[i])
		if err != nil {
			return err
		}
		plan.Inserts[i].ID = id
	}

	return nil
}

// DeleteList removes an owned list and its items. A stage of the same list
// in this session is dropped too.
func (s *ListService) DeleteList(ctx context.Context, sessionID string, userID int64, handle string) error {
	list, err := s.lists.GetListByHandle(ctx, handle)
	if err != nil {
		return err
	}
	if list == nil {
		return ErrListNotFound
	}

	owner, err := s.lists.IsOwner(ctx, userID, list.ID)
	if err != nil {
		return err
	}
	if !owner {
		return ErrNotListOwner
	}

	if err := s.lists.DeleteList(ctx, list.ID); err != nil {
		return err
	}

	stage, err := s.stages.Get(ctx, sessionID)
	if err != nil {
		s.log.WithError(err).Warnw("failed to read stage after delete", "handle", handle)
	} else if stage != nil && stage.ListHandle == handle {
		if err := s.stages.Delete(ctx, sessionID); err != nil {
			s.log.WithError(err).Warnw("failed to drop stage of deleted list", "handle", handle)
		}
	}

	s.log.LogUserAction(userID, "delete_list", map[string]interface{}{"handle": handle})
	return nil
}
