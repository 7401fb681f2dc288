package domain

import "context"

// ItemFilter narrows item listings.
type ItemFilter struct {
	BorneID  *uint
	Archived *bool
}

// BorneRepository defines the contract for borne data access
type BorneRepository interface {
	Create(ctx context.Context, borne *Borne) error
	FindByID(ctx context.Context, id uint) (*Borne, error)
	FindAll(ctx context.Context) ([]Borne, error)
	FindByIDs(ctx context.Context, ids []uint) ([]Borne, error)
	IsReferenced(ctx context.Context, id uint) (bool, error)
	Delete(ctx context.Context, id uint) error
}

// ItemRepository defines the contract for catalog item data access
type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	FindByID(ctx context.Context, kind Kind, id uint) (*Item, error)
	FindAll(ctx context.Context, kind Kind, filter ItemFilter) ([]Item, error)
	FindByIDs(ctx context.Context, kind Kind, ids []uint) ([]Item, error)
	Search(ctx context.Context, kind Kind, term string, limit int) ([]Item, error)
	References(ctx context.Context, kind Kind, pieceType string) ([]string, error)
	// Taken reports whether another item of kind already uses name or
	// reference. excludeID is ignored when zero.
	Taken(ctx context.Context, kind Kind, name, reference string, excludeID uint) (nameTaken, referenceTaken bool, err error)
	// Update writes the descriptive fields of item. When bornes is non-nil the
	// borne association set is replaced by it. Quantity is never written.
	Update(ctx context.Context, item *Item, bornes []Borne) error
	SetArchived(ctx context.Context, kind Kind, id uint, archived bool) error
	// Delete removes every composition link and template BOM entry that
	// references the item, then the item itself.
	Delete(ctx context.Context, kind Kind, id uint) error
}

// LinkRepository defines the contract for composition link data access
type LinkRepository interface {
	Create(ctx context.Context, link *CompositionLink) error
	Find(ctx context.Context, kind LinkKind, parentID, childID uint) (*CompositionLink, error)
	FindByParent(ctx context.Context, kind LinkKind, parentID uint) ([]CompositionLink, error)
	UpdateQuantity(ctx context.Context, kind LinkKind, parentID, childID uint, quantity int) (int64, error)
	Delete(ctx context.Context, kind LinkKind, parentID, childID uint) (int64, error)
	DeleteByParent(ctx context.Context, kind LinkKind, parentID uint) (int64, error)
}

// StockRepository is the single write path for item quantities.
type StockRepository interface {
	// Apply moves quantity units of the item atomically with its StockLog
	// entry. It fails with an invalid request when stock would go negative.
	Apply(ctx context.Context, kind Kind, itemID uint, op Operation, quantity int, userID *uint) (*Movement, error)
	History(ctx context.Context, kind Kind, itemID uint, limit int) ([]StockLog, error)
}
