package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	catalog "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
)

// EventType classifies task log entries.
type EventType string

const (
	EventAssigned  EventType = "ASSIGNED"
	EventStarted   EventType = "STARTED"
	EventPaused    EventType = "PAUSED"
	EventCompleted EventType = "COMPLETED"
	EventReopened  EventType = "REOPENED"
	EventReset     EventType = "RESET"
)

// BOMKinds are the catalog kinds a template may consume.
var BOMKinds = []catalog.Kind{
	catalog.KindPiece,
	catalog.KindSousAssemblage,
	catalog.KindSousSousAssemblage,
}

// TaskTemplate is a reusable task definition. A nil BorneID makes it generic.
type TaskTemplate struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	BorneID     *uint          `json:"borneId" gorm:"index"`
	Label       string         `json:"label" gorm:"not null"`
	Description *string        `json:"description"`
	Order       int            `json:"order" gorm:"column:sort_order;not null;default:0"`
	Active      bool           `json:"active" gorm:"not null"`
	Items       []TemplateItem `json:"items" gorm:"foreignKey:TemplateID"`
	Logs        []TemplateLog  `json:"logs,omitempty" gorm:"foreignKey:TemplateID"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (TaskTemplate) TableName() string {
	return "task_templates"
}

// ItemsOfKind returns the BOM entries of one catalog kind.
func (t *TaskTemplate) ItemsOfKind(kind catalog.Kind) []TemplateItem {
	var out []TemplateItem
	for _, it := range t.Items {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	return out
}

// TemplateItem is one BOM line of a template.
type TemplateItem struct {
	ID         uint          `json:"id" gorm:"primaryKey"`
	TemplateID uint          `json:"templateId" gorm:"not null;uniqueIndex:idx_template_item"`
	Kind       catalog.Kind  `json:"kind" gorm:"type:varchar(32);not null;uniqueIndex:idx_template_item"`
	ItemID     uint          `json:"itemId" gorm:"not null;uniqueIndex:idx_template_item;index"`
	Quantity   int           `json:"quantity" gorm:"not null"`
	Item       *catalog.Item `json:"item,omitempty" gorm:"foreignKey:ItemID"`
}

func (TemplateItem) TableName() string {
	return "task_template_items"
}

// TemplateLog records an execution of a generic template.
type TemplateLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TemplateID uint      `json:"templateId" gorm:"not null;index"`
	EventType  EventType `json:"eventType" gorm:"type:varchar(16);not null"`
	UserID     *uint     `json:"userId,omitempty"`
	Note       *string   `json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt" gorm:"index"`
}

func (TemplateLog) TableName() string {
	return "task_template_logs"
}

// BOMLine is a requested BOM entry. A nil quantity means one.
type BOMLine struct {
	ItemID   uint `json:"itemId"`
	Quantity *int `json:"quantity"`
}

// BuildItems validates lines of one kind and converts them to template items.
func BuildItems(kind catalog.Kind, lines []BOMLine) ([]TemplateItem, error) {
	items := make([]TemplateItem, 0, len(lines))
	seen := make(map[uint]bool, len(lines))
	for _, l := range lines {
		if l.ItemID == 0 {
			return nil, apperror.Invalid("%s id is required", kind)
		}
		if seen[l.ItemID] {
			return nil, apperror.Invalid("%s %d is listed twice", kind, l.ItemID)
		}
		seen[l.ItemID] = true

		qty := 1
		if l.Quantity != nil {
			qty = *l.Quantity
		}
		if qty <= 0 {
			return nil, apperror.Invalid("quantity of %s %d must be greater than zero", kind, l.ItemID)
		}
		items = append(items, TemplateItem{Kind: kind, ItemID: l.ItemID, Quantity: qty})
	}
	return items, nil
}

// OptionalID distinguishes an absent JSON field from an explicit null.
type OptionalID struct {
	Set   bool
	Value *uint
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var id uint
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// SameID reports whether a and b designate the same optional id.
func SameID(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Scope selects templates by borne binding.
type Scope string

const (
	ScopeAll     Scope = "all"
	ScopeGeneric Scope = "generic"
	ScopeBorne   Scope = "borne"
)

// Filter narrows template listings.
type Filter struct {
	Scope   Scope
	BorneID uint
}

// Repository defines the contract for task template data access
type Repository interface {
	Create(ctx context.Context, template *TaskTemplate) error
	FindByID(ctx context.Context, id uint) (*TaskTemplate, error)
	FindAll(ctx context.Context, filter Filter) ([]TaskTemplate, error)
	// FindActiveByBornes returns active templates bound to any of borneIDs,
	// ordered by borne, order then id.
	FindActiveByBornes(ctx context.Context, borneIDs []uint) ([]TaskTemplate, error)
	// Update writes the template row and fully replaces the BOM of every
	// kind present in replace.
	Update(ctx context.Context, template *TaskTemplate, replace map[catalog.Kind][]TemplateItem) error
	Delete(ctx context.Context, id uint) error
	CreateLog(ctx context.Context, log *TemplateLog) error
	FindLogs(ctx context.Context, templateID uint, limit int) ([]TemplateLog, error)
	FindGenericWithLogs(ctx context.Context, logLimit int) ([]TaskTemplate, error)
}

// ProductionSync is the production side effect of template changes.
type ProductionSync interface {
	SyncAllOpenProductionsForBorne(ctx context.Context, borneID uint) error
	PropagateTemplateLabel(ctx context.Context, templateID uint, label string) error
}

// CatalogLookup validates references into the catalog.
type CatalogLookup interface {
	MissingBornes(ctx context.Context, ids []uint) ([]uint, error)
	MissingItems(ctx context.Context, kind catalog.Kind, ids []uint) ([]uint, error)
}
