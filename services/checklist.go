package services

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harekrishna1602/anvesha-2.0/metrics"
	"github.com/harekrishna1602/anvesha-2.0/models"
)

// ChecklistEntry is one row of an edited checklist: either an ExistingItem
// that is already persisted or a DraftItem created during editing.
type ChecklistEntry interface {
	checklistEntry()
}

// ExistingItem is a persisted checklist item
type ExistingItem struct {
	ID          uuid.UUID
	Description string
	IsCompleted bool
}

// DraftItem is a checklist item that has not been persisted yet
type DraftItem struct {
	Description string
	IsCompleted bool
}

func (ExistingItem) checklistEntry() {}
func (DraftItem) checklistEntry() {}

// ChecklistItemInput is the wire form of a checklist entry. Entries without
// an id are drafts.
type ChecklistItemInput struct {
	ID          *uuid.UUID `json:"id"`
	Description string     `json:"description"`
	IsCompleted bool       `json:"is_completed"`
}

// Entry converts the input into its checklist variant
func (in ChecklistItemInput) Entry() ChecklistEntry {
	if in.ID == nil || *in.ID == uuid.Nil {
		return DraftItem{Description: in.Description, IsCompleted: in.IsCompleted}
	}
	return ExistingItem{ID: *in.ID, Description: in.Description, IsCompleted: in.IsCompleted}
}

// ChecklistEntries converts wire inputs into checklist variants
func ChecklistEntries(inputs []ChecklistItemInput) []ChecklistEntry {
	entries := make([]ChecklistEntry, 0, len(inputs))
	for _, in := range inputs {
		entries = append(entries, in.Entry())
	}
	return entries
}

// ChecklistDiff is the disjoint add/update/delete partition of an edited checklist
type ChecklistDiff struct {
	ToAdd    []DraftItem
	ToUpdate []ExistingItem
	ToDelete []uuid.UUID
}

// Empty reports whether applying the diff would issue no writes
func (d ChecklistDiff) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToUpdate) == 0 && len(d.ToDelete) == 0
}

// DiffChecklist partitions the desired checklist against the ids removed
// during editing. Drafts are added, existing items named in removed are
// deleted, and every other existing item is updated. A removed id is deleted
// once even if repeated or absent from desired.
func DiffChecklist(desired []ChecklistEntry, removed []uuid.UUID) ChecklistDiff {
	var diff ChecklistDiff

	removedSet := make(map[uuid.UUID]struct{}, len(removed))
	for _, id := range removed {
		if id == uuid.Nil {
			continue
		}
		if _, seen := removedSet[id]; seen {
			continue
		}
		removedSet[id] = struct{}{}
		diff.ToDelete = append(diff.ToDelete, id)
	}

	for _, entry := range desired {
		switch e := entry.(type) {
		case DraftItem:
			diff.ToAdd = append(diff.ToAdd, e)
		case ExistingItem:
			if _, gone := removedSet[e.ID]; gone {
				continue
			}
			diff.ToUpdate = append(diff.ToUpdate, e)
		}
	}
	return diff
}

// ChecklistStore writes individual checklist items of a task
type ChecklistStore interface {
	AddChecklistItem(ctx context.Context, taskID uuid.UUID, item DraftItem) error
	UpdateChecklistItem(ctx context.Context, taskID uuid.UUID, item ExistingItem) error
	DeleteChecklistItem(ctx context.Context, taskID uuid.UUID, id uuid.UUID) error
}

// ApplyChecklistDiff issues every write of the diff concurrently. Each write
// is independent; failures are collected into a PartialFailureError and
// writes that succeeded are kept.
func ApplyChecklistDiff(ctx context.Context, store ChecklistStore, taskID uuid.UUID, diff ChecklistDiff) error {
	total := len(diff.ToAdd) + len(diff.ToUpdate) + len(diff.ToDelete)
	if total == 0 {
		return nil
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		partial = &PartialFailureError{Op: "apply checklist changes"}
	)
	record := func(op string, id uuid.UUID, err error) {
		metrics.ChecklistOperations.WithLabelValues(op, metrics.Outcome(err)).Inc()
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			partial.Failures = append(partial.Failures, OperationFailure{ID: id, Op: op, Err: err})
			return
		}
		partial.Succeeded++
	}

	for _, item := range diff.ToAdd {
		wg.Add(1)
		go func(item DraftItem) {
			defer wg.Done()
			record("add", uuid.Nil, store.AddChecklistItem(ctx, taskID, item))
		}(item)
	}
	for _, item := range diff.ToUpdate {
		wg.Add(1)
		go func(item ExistingItem) {
			defer wg.Done()
			record("update", item.ID, store.UpdateChecklistItem(ctx, taskID, item))
		}(item)
	}
	for _, id := range diff.ToDelete {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			record("delete", id, store.DeleteChecklistItem(ctx, taskID, id))
		}(id)
	}
	wg.Wait()

	if len(partial.Failures) > 0 {
		return partial
	}
	return nil
}

// GormChecklistStore persists checklist items with gorm
type GormChecklistStore struct {
	db *gorm.DB
}

func NewGormChecklistStore(db *gorm.DB) *GormChecklistStore {
	return &GormChecklistStore{db: db}
}

func (s *GormChecklistStore) AddChecklistItem(ctx context.Context, taskID uuid.UUID, item DraftItem) error {
	if strings.TrimSpace(item.Description) == "" {
		return invalid("description", "checklist item description is required")
	}
	row := models.ChecklistItem{
		TaskID:      taskID,
		Description: strings.TrimSpace(item.Description),
		IsCompleted: item.IsCompleted,
	}
	return persistence("add checklist item", s.db.WithContext(ctx).Create(&row).Error)
}

// UpdateChecklistItem writes description and completion only
func (s *GormChecklistStore) UpdateChecklistItem(ctx context.Context, taskID uuid.UUID, item ExistingItem) error {
	if strings.TrimSpace(item.Description) == "" {
		return invalid("description", "checklist item description is required")
	}
	result := s.db.WithContext(ctx).Model(&models.ChecklistItem{}).
		Where("id = ? AND task_id = ?", item.ID, taskID).
		Updates(map[string]interface{}{
			"description":  strings.TrimSpace(item.Description),
			"is_completed": item.IsCompleted,
		})
	if result.Error != nil {
		return persistence("update checklist item", result.Error)
	}
	if result.RowsAffected == 0 {
		return persistence("update checklist item", gorm.ErrRecordNotFound)
	}
	return nil
}

func (s *GormChecklistStore) DeleteChecklistItem(ctx context.Context, taskID uuid.UUID, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ? AND task_id = ?", id, taskID).Delete(&models.ChecklistItem{})
	if result.Error != nil {
		return persistence("delete checklist item", result.Error)
	}
	if result.RowsAffected == 0 {
		return persistence("delete checklist item", gorm.ErrRecordNotFound)
	}
	return nil
}
