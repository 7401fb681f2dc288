package domain

import (
	"time"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
)

// Kind identifies one of the four catalog item tiers.
type Kind string

const (
	KindPiece              Kind = "piece"
	KindSousAssemblage     Kind = "sousAssemblage"
	KindSousSousAssemblage Kind = "sousSousAssemblage"
	KindKit                Kind = "kit"
)

// Kinds lists every catalog kind.
var Kinds = []Kind{KindPiece, KindSousAssemblage, KindSousSousAssemblage, KindKit}

// ParseKind validates s as a catalog kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", apperror.Invalid("unknown catalog kind %q", s)
}

// Borne is a machine type. Items, templates and production lines refer to it.
type Borne struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt"`
}

// Item is a piece, sous-assemblage, sous-sous-assemblage or kit. Quantity
// only changes through a stock movement.
type Item struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Kind           Kind      `json:"kind" gorm:"type:varchar(32);not null;uniqueIndex:idx_item_kind_name;uniqueIndex:idx_item_kind_reference"`
	Name           string    `json:"name" gorm:"not null;uniqueIndex:idx_item_kind_name"`
	Reference      string    `json:"reference" gorm:"not null;uniqueIndex:idx_item_kind_reference"`
	Type           string    `json:"type"`
	State          string    `json:"state"`
	Version        string    `json:"version"`
	Numero         string    `json:"numero"`
	Quantity       int       `json:"quantity" gorm:"not null;default:0"`
	AlertThreshold int       `json:"alertThreshold" gorm:"not null;default:0"`
	Location       string    `json:"location"`
	PhotoURL       *string   `json:"photoUrl,omitempty"`
	Archived       bool      `json:"archived" gorm:"not null"`
	Bornes         []Borne   `json:"bornes" gorm:"many2many:catalog_item_bornes;"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Item) TableName() string {
	return "catalog_items"
}

// BorneIDs returns the ids of the associated bornes.
func (i *Item) BorneIDs() []uint {
	ids := make([]uint, 0, len(i.Bornes))
	for _, b := range i.Bornes {
		ids = append(ids, b.ID)
	}
	return ids
}

// LinkKind names a one-level composition between two catalog kinds.
type LinkKind string

const (
	LinkKitPiece LinkKind = "kit-piece"
	LinkSAPiece  LinkKind = "sa-piece"
	LinkSSAPiece LinkKind = "ssa-piece"
	LinkSASSA    LinkKind = "sa-ssa"
)

var linkKinds = map[LinkKind][2]Kind{
	LinkKitPiece: {KindKit, KindPiece},
	LinkSAPiece:  {KindSousAssemblage, KindPiece},
	LinkSSAPiece: {KindSousSousAssemblage, KindPiece},
	LinkSASSA:    {KindSousAssemblage, KindSousSousAssemblage},
}

// ParseLinkKind validates s as a composition kind.
func ParseLinkKind(s string) (LinkKind, error) {
	if _, ok := linkKinds[LinkKind(s)]; !ok {
		return "", apperror.Invalid("unknown composition kind %q", s)
	}
	return LinkKind(s), nil
}

// Parent is the kind of the containing item.
func (k LinkKind) Parent() Kind { return linkKinds[k][0] }

// Child is the kind of the contained item.
func (k LinkKind) Child() Kind { return linkKinds[k][1] }

// LinkKindsTouching returns the composition kinds in which an item of kind
// appears as parent and as child.
func LinkKindsTouching(kind Kind) (asParent, asChild []LinkKind) {
	for _, lk := range []LinkKind{LinkKitPiece, LinkSAPiece, LinkSSAPiece, LinkSASSA} {
		if lk.Parent() == kind {
			asParent = append(asParent, lk)
		}
		if lk.Child() == kind {
			asChild = append(asChild, lk)
		}
	}
	return asParent, asChild
}

// CompositionLink says that ParentID contains Quantity of ChildID.
type CompositionLink struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	LinkKind  LinkKind  `json:"linkKind" gorm:"type:varchar(16);not null;uniqueIndex:idx_link_parent_child"`
	ParentID  uint      `json:"parentId" gorm:"not null;uniqueIndex:idx_link_parent_child"`
	ChildID   uint      `json:"childId" gorm:"not null;uniqueIndex:idx_link_parent_child;index"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Child     *Item     `json:"child,omitempty" gorm:"foreignKey:ChildID"`
	CreatedAt time.Time `json:"createdAt"`
}

func (CompositionLink) TableName() string {
	return "composition_links"
}
