package command

import (
	"context"
	"fmt"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/database"
)

// AddLinkCommand adds Quantity of ChildID to ParentID.
type AddLinkCommand struct {
	LinkKind domain.LinkKind
	ParentID uint
	ChildID  uint
	Quantity int
}

// AddLinkHandler handles composition link creation
type AddLinkHandler struct {
	links domain.LinkRepository
	items domain.ItemRepository
}

// NewAddLinkHandler creates a new add link handler
func NewAddLinkHandler(links domain.LinkRepository, items domain.ItemRepository) *AddLinkHandler {
	return &AddLinkHandler{links: links, items: items}
}

// Handle executes the add link command
func (h *AddLinkHandler) Handle(ctx context.Context, cmd AddLinkCommand) (*domain.CompositionLink, error) {
	if cmd.Quantity <= 0 {
		return nil, apperror.Invalid("quantity must be greater than zero")
	}
	if _, err := h.items.FindByID(ctx, cmd.LinkKind.Parent(), cmd.ParentID); err != nil {
		return nil, lookupErr(err, string(cmd.LinkKind.Parent()), cmd.ParentID)
	}
	child, err := h.items.FindByID(ctx, cmd.LinkKind.Child(), cmd.ChildID)
	if err != nil {
		return nil, lookupErr(err, string(cmd.LinkKind.Child()), cmd.ChildID)
	}

	if _, err := h.links.Find(ctx, cmd.LinkKind, cmd.ParentID, cmd.ChildID); err == nil {
		return nil, apperror.Conflict("%s %d already contains %s %d", cmd.LinkKind.Parent(), cmd.ParentID, cmd.LinkKind.Child(), cmd.ChildID)
	} else if !database.IsNotFound(err) {
		return nil, fmt.Errorf("failed to check link: %w", err)
	}

	link := &domain.CompositionLink{
		LinkKind: cmd.LinkKind,
		ParentID: cmd.ParentID,
		ChildID:  cmd.ChildID,
		Quantity: cmd.Quantity,
	}
	if err := h.links.Create(ctx, link); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("%s %d already contains %s %d", cmd.LinkKind.Parent(), cmd.ParentID, cmd.LinkKind.Child(), cmd.ChildID)
		}
		return nil, fmt.Errorf("failed to create link: %w", err)
	}
	link.Child = child
	return link, nil
}

// UpdateLinkCommand sets the quantity of an existing link.
type UpdateLinkCommand struct {
	LinkKind domain.LinkKind
	ParentID uint
	ChildID  uint
	Quantity int
}

// UpdateLinkHandler handles composition link quantity updates
type UpdateLinkHandler struct {
	links domain.LinkRepository
}

// NewUpdateLinkHandler creates a new update link handler
func NewUpdateLinkHandler(links domain.LinkRepository) *UpdateLinkHandler {
	return &UpdateLinkHandler{links: links}
}

// Handle executes the update link command
func (h *UpdateLinkHandler) Handle(ctx context.Context, cmd UpdateLinkCommand) (*domain.CompositionLink, error) {
	if cmd.Quantity <= 0 {
		return nil, apperror.Invalid("quantity must be greater than zero")
	}
	n, err := h.links.UpdateQuantity(ctx, cmd.LinkKind, cmd.ParentID, cmd.ChildID, cmd.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to update link: %w", err)
	}
	if n == 0 {
		return nil, linkNotFound(cmd.LinkKind, cmd.ParentID, cmd.ChildID)
	}
	link, err := h.links.Find(ctx, cmd.LinkKind, cmd.ParentID, cmd.ChildID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload link: %w", err)
	}
	return link, nil
}

// RemoveLinkCommand removes one link.
type RemoveLinkCommand struct {
	LinkKind domain.LinkKind
	ParentID uint
	ChildID  uint
}

// RemoveLinkHandler handles composition link removal
type RemoveLinkHandler struct {
	links domain.LinkRepository
}

// NewRemoveLinkHandler creates a new remove link handler
func NewRemoveLinkHandler(links domain.LinkRepository) *RemoveLinkHandler {
	return &RemoveLinkHandler{links: links}
}

// Handle executes the remove link command
func (h *RemoveLinkHandler) Handle(ctx context.Context, cmd RemoveLinkCommand) error {
	n, err := h.links.Delete(ctx, cmd.LinkKind, cmd.ParentID, cmd.ChildID)
	if err != nil {
		return fmt.Errorf("failed to remove link: %w", err)
	}
	if n == 0 {
		return linkNotFound(cmd.LinkKind, cmd.ParentID, cmd.ChildID)
	}
	return nil
}

// RemoveAllLinksCommand empties the composition of a parent.
type RemoveAllLinksCommand struct {
	LinkKind domain.LinkKind
	ParentID uint
}

// RemoveAllLinksHandler handles bulk composition removal
type RemoveAllLinksHandler struct {
	links domain.LinkRepository
	items domain.ItemRepository
}

// NewRemoveAllLinksHandler creates a new remove all links handler
func NewRemoveAllLinksHandler(links domain.LinkRepository, items domain.ItemRepository) *RemoveAllLinksHandler {
	return &RemoveAllLinksHandler{links: links, items: items}
}

// Handle returns the number of removed links.
func (h *RemoveAllLinksHandler) Handle(ctx context.Context, cmd RemoveAllLinksCommand) (int64, error) {
	if _, err := h.items.FindByID(ctx, cmd.LinkKind.Parent(), cmd.ParentID); err != nil {
		return 0, lookupErr(err, string(cmd.LinkKind.Parent()), cmd.ParentID)
	}
	n, err := h.links.DeleteByParent(ctx, cmd.LinkKind, cmd.ParentID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove links: %w", err)
	}
	return n, nil
}

func linkNotFound(kind domain.LinkKind, parentID, childID uint) error {
	return apperror.NotFound("%s %d does not contain %s %d", kind.Parent(), parentID, kind.Child(), childID)
}
