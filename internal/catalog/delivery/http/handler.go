package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/usecase/command"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/usecase/query"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/auth"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/httpx"
)

// CatalogHandler handles HTTP requests for bornes, catalog items,
// compositions and stock.
type CatalogHandler struct {
	// Command handlers
	createBorne    *command.CreateBorneHandler
	deleteBorne    *command.DeleteBorneHandler
	createItem     *command.CreateItemHandler
	updateItem     *command.UpdateItemHandler
	setArchived    *command.SetArchivedHandler
	deleteItem     *command.DeleteItemHandler
	addLink        *command.AddLinkHandler
	updateLink     *command.UpdateLinkHandler
	removeLink     *command.RemoveLinkHandler
	removeAllLinks *command.RemoveAllLinksHandler
	moveStock      *command.MoveStockHandler

	// Query handlers
	listBornes   *query.ListBornesHandler
	getBorne     *query.GetBorneHandler
	getItem      *query.GetItemHandler
	listItems    *query.ListItemsHandler
	searchItems  *query.SearchItemsHandler
	listLinks    *query.ListLinksHandler
	stockHistory *query.StockHistoryHandler
}

// NewCatalogHandler creates a new catalog handler. publisher may be nil.
func NewCatalogHandler(
	bornes domain.BorneRepository,
	items domain.ItemRepository,
	links domain.LinkRepository,
	stock domain.StockRepository,
	publisher command.StockPublisher,
) *CatalogHandler {
	return &CatalogHandler{
		createBorne:    command.NewCreateBorneHandler(bornes),
		deleteBorne:    command.NewDeleteBorneHandler(bornes),
		createItem:     command.NewCreateItemHandler(items, bornes),
		updateItem:     command.NewUpdateItemHandler(items, bornes),
		setArchived:    command.NewSetArchivedHandler(items),
		deleteItem:     command.NewDeleteItemHandler(items),
		addLink:        command.NewAddLinkHandler(links, items),
		updateLink:     command.NewUpdateLinkHandler(links),
		removeLink:     command.NewRemoveLinkHandler(links),
		removeAllLinks: command.NewRemoveAllLinksHandler(links, items),
		moveStock:      command.NewMoveStockHandler(stock, publisher),

		listBornes:   query.NewListBornesHandler(bornes),
		getBorne:     query.NewGetBorneHandler(bornes),
		getItem:      query.NewGetItemHandler(items),
		listItems:    query.NewListItemsHandler(items),
		searchItems:  query.NewSearchItemsHandler(items),
		listLinks:    query.NewListLinksHandler(links, items),
		stockHistory: query.NewStockHistoryHandler(stock, items),
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/bornes", h.ListBornes).Methods("GET")
	api.HandleFunc("/bornes", h.CreateBorne).Methods("POST")
	api.HandleFunc("/bornes/{id}", h.GetBorne).Methods("GET")
	api.HandleFunc("/bornes/{id}", h.DeleteBorne).Methods("DELETE")

	api.HandleFunc("/items/{kind}", h.ListItems).Methods("GET")
	api.HandleFunc("/items/{kind}", h.CreateItem).Methods("POST")
	api.HandleFunc("/items/{kind}/search", h.SearchItems).Methods("GET")
	api.HandleFunc("/items/{kind}/{id}", h.GetItem).Methods("GET")
	api.HandleFunc("/items/{kind}/{id}", h.UpdateItem).Methods("PUT", "PATCH")
	api.HandleFunc("/items/{kind}/{id}", h.DeleteItem).Methods("DELETE")
	api.HandleFunc("/items/{kind}/{id}/archive", h.archiveHandler(true)).Methods("POST")
	api.HandleFunc("/items/{kind}/{id}/unarchive", h.archiveHandler(false)).Methods("POST")

	api.HandleFunc("/stock/{kind}/{id}/add", h.moveHandler(domain.OperationAdd)).Methods("POST")
	api.HandleFunc("/stock/{kind}/{id}/remove", h.moveHandler(domain.OperationRemove)).Methods("POST")
	api.HandleFunc("/stock/{kind}/{id}/history", h.StockHistory).Methods("GET")

	api.HandleFunc("/links/{linkKind}/{parentId}", h.ListLinks).Methods("GET")
	api.HandleFunc("/links/{linkKind}/{parentId}", h.AddLink).Methods("POST")
	api.HandleFunc("/links/{linkKind}/{parentId}", h.RemoveAllLinks).Methods("DELETE")
	api.HandleFunc("/links/{linkKind}/{parentId}/{childId}", h.UpdateLink).Methods("PUT", "PATCH")
	api.HandleFunc("/links/{linkKind}/{parentId}/{childId}", h.RemoveLink).Methods("DELETE")
}

// actingUser prefers the authenticated user over a user id sent in the body.
func actingUser(r *http.Request, fromBody *uint) *uint {
	if id := auth.UserID(r.Context()); id != nil {
		return id
	}
	return fromBody
}

func pathKind(r *http.Request) (domain.Kind, error) {
	return domain.ParseKind(mux.Vars(r)["kind"])
}

func pathKindAndID(r *http.Request) (domain.Kind, uint, error) {
	kind, err := pathKind(r)
	if err != nil {
		return "", 0, err
	}
	id, err := httpx.PathID(r, "id")
	if err != nil {
		return "", 0, err
	}
	return kind, id, nil
}

func pathLink(r *http.Request) (domain.LinkKind, uint, error) {
	kind, err := domain.ParseLinkKind(mux.Vars(r)["linkKind"])
	if err != nil {
		return "", 0, err
	}
	parentID, err := httpx.PathID(r, "parentId")
	if err != nil {
		return "", 0, err
	}
	return kind, parentID, nil
}

// ListBornes godoc
// @Summary List bornes
// @Tags Bornes
// @Produce json
// @Success 200 {object} httpx.Response
// @Router /api/bornes [get]
func (h *CatalogHandler) ListBornes(w http.ResponseWriter, r *http.Request) {
	bornes, err := h.listBornes.Handle(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, bornes)
}

// CreateBorne godoc
// @Summary Create a borne
// @Tags Bornes
// @Accept json
// @Produce json
// @Param request body object{name=string} true "Borne"
// @Success 201 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/bornes [post]
func (h *CatalogHandler) CreateBorne(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	borne, err := h.createBorne.Handle(r.Context(), command.CreateBorneCommand{Name: req.Name})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusCreated, borne)
}

func (h *CatalogHandler) GetBorne(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	borne, err := h.getBorne.Handle(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, borne)
}

// DeleteBorne godoc
// @Summary Delete a borne no longer referenced
// @Tags Bornes
// @Produce json
// @Param id path int true "Borne ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/bornes/{id} [delete]
func (h *CatalogHandler) DeleteBorne(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.deleteBorne.Handle(r.Context(), command.DeleteBorneCommand{ID: id}); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Message(w, "Borne deleted")
}

// ListItems godoc
// @Summary List catalog items of a kind
// @Tags Items
// @Produce json
// @Param kind path string true "piece, sousAssemblage, sousSousAssemblage or kit"
// @Param borneId query int false "Only items of this borne"
// @Param archived query bool false "Archived flag"
// @Success 200 {object} httpx.Response
// @Router /api/items/{kind} [get]
func (h *CatalogHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	filter := domain.ItemFilter{}
	if filter.BorneID, err = httpx.QueryID(r, "borneId"); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if raw := r.URL.Query().Get("archived"); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.Error(w, r, apperror.Invalid("invalid archived %q", raw))
			return
		}
		filter.Archived = &archived
	}

	items, err := h.listItems.Handle(r.Context(), query.ListItemsQuery{Kind: kind, Filter: filter})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, items)
}

type itemRequest struct {
	Name           *string `json:"name"`
	Reference      *string `json:"reference"`
	Type           *string `json:"type"`
	State          *string `json:"state"`
	Version        *string `json:"version"`
	Numero         *string `json:"numero"`
	AlertThreshold *int    `json:"alertThreshold"`
	Location       *string `json:"location"`
	PhotoURL       *string `json:"photoUrl"`
	BorneIDs       *[]uint `json:"borneIds"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// CreateItem godoc
// @Summary Create a catalog item
// @Description The reference is generated from the type when omitted.
// @Tags Items
// @Accept json
// @Produce json
// @Param kind path string true "Catalog kind"
// @Param request body object{name=string,reference=string,type=string,state=string,version=string,numero=string,alertThreshold=int,location=string,photoUrl=string,borneIds=[]int} true "Item"
// @Success 201 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/items/{kind} [post]
func (h *CatalogHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req itemRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	cmd := command.CreateItemCommand{
		Kind:      kind,
		Name:      deref(req.Name),
		Reference: deref(req.Reference),
		Type:      deref(req.Type),
		State:     deref(req.State),
		Version:   deref(req.Version),
		Numero:    deref(req.Numero),
		Location:  deref(req.Location),
		PhotoURL:  req.PhotoURL,
	}
	if req.AlertThreshold != nil {
		cmd.AlertThreshold = *req.AlertThreshold
	}
	if req.BorneIDs != nil {
		cmd.BorneIDs = *req.BorneIDs
	}

	item, err := h.createItem.Handle(r.Context(), cmd)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusCreated, item)
}

// SearchItems godoc
// @Summary Search items by name or reference
// @Tags Items
// @Produce json
// @Param kind path string true "Catalog kind"
// @Param q query string true "Case-insensitive fragment"
// @Success 200 {object} httpx.Response
// @Router /api/items/{kind}/search [get]
func (h *CatalogHandler) SearchItems(w http.ResponseWriter, r *http.Request) {
	kind, err := pathKind(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	items, err := h.searchItems.Handle(r.Context(), kind, r.URL.Query().Get("q"))
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, items)
}

func (h *CatalogHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	kind, id, err := pathKindAndID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	item, err := h.getItem.Handle(r.Context(), kind, id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, item)
}

// UpdateItem godoc
// @Summary Update a catalog item
// @Description borneIds, when present, replaces the borne set. Stock is not editable here.
// @Tags Items
// @Accept json
// @Produce json
// @Param kind path string true "Catalog kind"
// @Param id path int true "Item ID"
// @Success 200 {object} httpx.Response
// @Router /api/items/{kind}/{id} [put]
func (h *CatalogHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	kind, id, err := pathKindAndID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req itemRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	item, err := h.updateItem.Handle(r.Context(), command.UpdateItemCommand{
		Kind:           kind,
		ID:             id,
		Name:           req.Name,
		Reference:      req.Reference,
		Type:           req.Type,
		State:          req.State,
		Version:        req.Version,
		Numero:         req.Numero,
		AlertThreshold: req.AlertThreshold,
		Location:       req.Location,
		PhotoURL:       req.PhotoURL,
		BorneIDs:       req.BorneIDs,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, item)
}

// DeleteItem godoc
// @Summary Delete a catalog item and its composition links
// @Tags Items
// @Produce json
// @Param kind path string true "Catalog kind"
// @Param id path int true "Item ID"
// @Success 200 {object} httpx.Response
// @Router /api/items/{kind}/{id} [delete]
func (h *CatalogHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	kind, id, err := pathKindAndID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.deleteItem.Handle(r.Context(), command.DeleteItemCommand{Kind: kind, ID: id}); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Message(w, "Item deleted")
}

func (h *CatalogHandler) archiveHandler(archived bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, id, err := pathKindAndID(r)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		item, err := h.setArchived.Handle(r.Context(), command.SetArchivedCommand{Kind: kind, ID: id, Archived: archived})
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.OK(w, http.StatusOK, item)
	}
}

// moveHandler godoc
// @Summary Add or remove stock
// @Description Stock never goes below zero; an overdraw answers 400.
// @Tags Stock
// @Accept json
// @Produce json
// @Param kind path string true "Catalog kind"
// @Param id path int true "Item ID"
// @Param request body object{quantity=int,userId=int} true "Movement"
// @Success 200 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Router /api/stock/{kind}/{id}/add [post]
// @Router /api/stock/{kind}/{id}/remove [post]
func (h *CatalogHandler) moveHandler(op domain.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, id, err := pathKindAndID(r)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		var req struct {
			Quantity int   `json:"quantity"`
			UserID   *uint `json:"userId"`
		}
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}

		movement, err := h.moveStock.Handle(r.Context(), command.MoveStockCommand{
			Kind:      kind,
			ItemID:    id,
			Operation: op,
			Quantity:  req.Quantity,
			UserID:    actingUser(r, req.UserID),
		})
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		httpx.OK(w, http.StatusOK, movement)
	}
}

// StockHistory godoc
// @Summary Latest stock movements of an item
// @Tags Stock
// @Produce json
// @Param kind path string true "Catalog kind"
// @Param id path int true "Item ID"
// @Param limit query int false "Defaults to 5"
// @Success 200 {object} httpx.Response
// @Router /api/stock/{kind}/{id}/history [get]
func (h *CatalogHandler) StockHistory(w http.ResponseWriter, r *http.Request) {
	kind, id, err := pathKindAndID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	limit, err := httpx.QueryInt(r, "limit", 0)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	logs, err := h.stockHistory.Handle(r.Context(), query.StockHistoryQuery{Kind: kind, ItemID: id, Limit: limit})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, logs)
}

func (h *CatalogHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	kind, parentID, err := pathLink(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	links, err := h.listLinks.Handle(r.Context(), kind, parentID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, links)
}

// AddLink godoc
// @Summary Add a component to a parent item
// @Tags Links
// @Accept json
// @Produce json
// @Param linkKind path string true "kit-piece, sa-piece, ssa-piece or sa-ssa"
// @Param parentId path int true "Parent item ID"
// @Param request body object{childId=int,quantity=int} true "Link"
// @Success 201 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/links/{linkKind}/{parentId} [post]
func (h *CatalogHandler) AddLink(w http.ResponseWriter, r *http.Request) {
	kind, parentID, err := pathLink(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		ChildID  uint `json:"childId"`
		Quantity *int `json:"quantity"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	link, err := h.addLink.Handle(r.Context(), command.AddLinkCommand{LinkKind: kind, ParentID: parentID, ChildID: req.ChildID, Quantity: qty})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusCreated, link)
}

func (h *CatalogHandler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	kind, parentID, err := pathLink(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	childID, err := httpx.PathID(r, "childId")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	link, err := h.updateLink.Handle(r.Context(), command.UpdateLinkCommand{LinkKind: kind, ParentID: parentID, ChildID: childID, Quantity: req.Quantity})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, link)
}

func (h *CatalogHandler) RemoveLink(w http.ResponseWriter, r *http.Request) {
	kind, parentID, err := pathLink(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	childID, err := httpx.PathID(r, "childId")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.removeLink.Handle(r.Context(), command.RemoveLinkCommand{LinkKind: kind, ParentID: parentID, ChildID: childID}); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Message(w, "Link removed")
}

func (h *CatalogHandler) RemoveAllLinks(w http.ResponseWriter, r *http.Request) {
	kind, parentID, err := pathLink(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	n, err := h.removeAllLinks.Handle(r.Context(), command.RemoveAllLinksCommand{LinkKind: kind, ParentID: parentID})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Message(w, strconv.FormatInt(n, 10)+" links removed")
}
