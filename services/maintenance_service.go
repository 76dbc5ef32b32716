package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harekrishna1602/anvesha-2.0/models"
	"github.com/harekrishna1602/anvesha-2.0/session"
)

// MaintenanceTaskInput holds the header fields of a maintenance task and its
// edited checklist. RemovedItemIDs lists checklist items deleted while editing.
type MaintenanceTaskInput struct {
	AssetID        uuid.UUID                `json:"asset_id"`
	Title          string                   `json:"title"`
	Description    *string                  `json:"description"`
	ScheduledDate  time.Time                `json:"scheduled_date"`
	AssignedTo     *string                  `json:"assigned_to"`
	Status         models.MaintenanceStatus `json:"status"`
	ChecklistItems []ChecklistItemInput     `json:"checklist_items"`
	RemovedItemIDs []uuid.UUID              `json:"removed_item_ids"`
}

func (in *MaintenanceTaskInput) validate() error {
	if in.AssetID == uuid.Nil {
		return invalid("asset_id", "an asset must be selected")
	}
	if strings.TrimSpace(in.Title) == "" {
		return invalid("title", "task title is required")
	}
	if in.ScheduledDate.IsZero() {
		return invalid("scheduled_date", "scheduled date is required")
	}
	if in.Status == "" {
		in.Status = models.MaintenanceStatusScheduled
	}
	if !in.Status.Valid() {
		return invalid("status", "unknown maintenance status %q", in.Status)
	}
	for _, item := range in.ChecklistItems {
		if strings.TrimSpace(item.Description) == "" {
			return invalid("checklist_items", "checklist item description is required")
		}
	}
	return nil
}

// MaintenanceFilter narrows a task listing. Zero values mean no filtering.
type MaintenanceFilter struct {
	Status  *models.MaintenanceStatus
	Search  string
	AssetID *uuid.UUID
}

// AssetFinder looks up an asset owned by the actor
type AssetFinder interface {
	GetAsset(ctx context.Context, actor session.Actor, id uuid.UUID) (*models.Asset, error)
}

type MaintenanceService struct {
	db        *gorm.DB
	assets    AssetFinder
	checklist ChecklistStore
}

func NewMaintenanceService(db *gorm.DB, assets AssetFinder, checklist ChecklistStore) *MaintenanceService {
	return &MaintenanceService{db: db, assets: assets, checklist: checklist}
}

func withTaskDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Asset").
		Preload("ChecklistItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("maintenance_checklist_items.created_at ASC")
		})
}

func (s *MaintenanceService) checkAsset(ctx context.Context, actor session.Actor, id uuid.UUID) error {
	if _, err := s.assets.GetAsset(ctx, actor, id); err != nil {
		if IsNotFound(err) {
			return invalid("asset_id", "asset %s not found", id)
		}
		return err
	}
	return nil
}

// CreateTask writes the task and its initial checklist in one transaction.
// Every checklist entry of a new task is treated as a draft.
func (s *MaintenanceService) CreateTask(ctx context.Context, actor session.Actor, in MaintenanceTaskInput) (*models.MaintenanceTask, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkAsset(ctx, actor, in.AssetID); err != nil {
		return nil, err
	}

	items := make([]models.ChecklistItem, 0, len(in.ChecklistItems))
	for _, c := range in.ChecklistItems {
		items = append(items, models.ChecklistItem{
			Description: strings.TrimSpace(c.Description),
			IsCompleted: c.IsCompleted,
		})
	}

	task := models.MaintenanceTask{
		UserID:        actor.ID,
		AssetID:       in.AssetID,
		Title:         strings.TrimSpace(in.Title),
		Description:   trimmedOrNil(in.Description),
		ScheduledDate: in.ScheduledDate.UTC(),
		AssignedTo:    trimmedOrNil(in.AssignedTo),
		Status:        in.Status,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&task).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].TaskID = task.ID
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, persistence("create maintenance task", err)
	}

	return s.GetTask(ctx, actor, task.ID)
}

// ListTasks returns the actor's tasks by scheduled date, soonest first
func (s *MaintenanceService) ListTasks(ctx context.Context, actor session.Actor, filter MaintenanceFilter) ([]models.MaintenanceTask, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, invalid("status", "unknown maintenance status %q", *filter.Status)
	}

	query := s.db.WithContext(ctx).Scopes(ownedBy(actor), withTaskDetails)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if strings.TrimSpace(filter.Search) != "" {
		query = query.Where("LOWER(title) LIKE ?", likePattern(filter.Search))
	}
	if filter.AssetID != nil {
		query = query.Where("asset_id = ?", *filter.AssetID)
	}

	var tasks []models.MaintenanceTask
	if err := query.Order("scheduled_date ASC").Find(&tasks).Error; err != nil {
		return nil, persistence("list maintenance tasks", err)
	}
	return tasks, nil
}

func (s *MaintenanceService) GetTask(ctx context.Context, actor session.Actor, id uuid.UUID) (*models.MaintenanceTask, error) {
	var task models.MaintenanceTask
	err := s.db.WithContext(ctx).Scopes(ownedBy(actor), withTaskDetails).Where("id = ?", id).First(&task).Error
	if err != nil {
		return nil, persistence("get maintenance task", err)
	}
	return &task, nil
}

// UpdateTask rewrites the task header and then reconciles its checklist. The
// checklist writes are independent; on partial failure the reloaded task is
// returned together with the PartialFailureError.
func (s *MaintenanceService) UpdateTask(ctx context.Context, actor session.Actor, id uuid.UUID, in MaintenanceTaskInput) (*models.MaintenanceTask, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.checkAsset(ctx, actor, in.AssetID); err != nil {
		return nil, err
	}

	_, err := updateOwned[models.MaintenanceTask](ctx, s.db, actor, id, map[string]interface{}{
		"asset_id":       in.AssetID,
		"title":          strings.TrimSpace(in.Title),
		"description":    trimmedOrNil(in.Description),
		"scheduled_date": in.ScheduledDate.UTC(),
		"assigned_to":    trimmedOrNil(in.AssignedTo),
		"status":         in.Status,
	}, "update maintenance task")
	if err != nil {
		return nil, err
	}

	diff := DiffChecklist(ChecklistEntries(in.ChecklistItems), in.RemovedItemIDs)
	applyErr := ApplyChecklistDiff(ctx, s.checklist, id, diff)

	task, err := s.GetTask(ctx, actor, id)
	if err != nil {
		return nil, errors.Join(applyErr, err)
	}
	return task, applyErr
}

// DeleteTask removes the task's checklist and then the task
func (s *MaintenanceService) DeleteTask(ctx context.Context, actor session.Actor, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.MaintenanceTask{}).Scopes(ownedBy(actor)).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("task_id = ?", id).Delete(&models.ChecklistItem{}).Error; err != nil {
			return err
		}
		return tx.Scopes(ownedBy(actor)).Where("id = ?", id).Delete(&models.MaintenanceTask{}).Error
	})
	return persistence("delete maintenance task", err)
}

// Calendar returns tasks scheduled within [start, end], both inclusive
func (s *MaintenanceService) Calendar(ctx context.Context, actor session.Actor, start, end time.Time) ([]models.MaintenanceTask, error) {
	if end.Before(start) {
		return nil, invalid("end", "end must not be before start")
	}

	var tasks []models.MaintenanceTask
	err := s.db.WithContext(ctx).Scopes(ownedBy(actor)).Preload("Asset").
		Where("scheduled_date >= ? AND scheduled_date <= ?", start.UTC(), end.UTC()).
		Order("scheduled_date ASC").Find(&tasks).Error
	if err != nil {
		return nil, persistence("maintenance calendar", err)
	}
	return tasks, nil
}
