package http

import (
	"net/http"

	"github.com/gorilla/mux"

	catalog "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/usecase/command"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/usecase/query"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/auth"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/httpx"
)

// TemplateHandler handles HTTP requests for task templates
type TemplateHandler struct {
	createTemplate *command.CreateTemplateHandler
	updateTemplate *command.UpdateTemplateHandler
	deleteTemplate *command.DeleteTemplateHandler
	logExecution   *command.LogExecutionHandler

	getTemplate   *query.GetTemplateHandler
	listTemplates *query.ListTemplatesHandler
	templateLogs  *query.TemplateLogsHandler
	generic       *query.GenericTemplatesHandler
}

// NewTemplateHandler creates a new task template handler
func NewTemplateHandler(repo domain.Repository, lookup domain.CatalogLookup, sync domain.ProductionSync) *TemplateHandler {
	return &TemplateHandler{
		createTemplate: command.NewCreateTemplateHandler(repo, lookup, sync),
		updateTemplate: command.NewUpdateTemplateHandler(repo, lookup, sync),
		deleteTemplate: command.NewDeleteTemplateHandler(repo),
		logExecution:   command.NewLogExecutionHandler(repo),

		getTemplate:   query.NewGetTemplateHandler(repo),
		listTemplates: query.NewListTemplatesHandler(repo),
		templateLogs:  query.NewTemplateLogsHandler(repo),
		generic:       query.NewGenericTemplatesHandler(repo),
	}
}

// RegisterRoutes registers all task template routes
func (h *TemplateHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/task-templates").Subrouter()

	api.HandleFunc("", h.ListTemplates).Methods("GET")
	api.HandleFunc("", h.CreateTemplate).Methods("POST")
	api.HandleFunc("/generic", h.GenericTemplates).Methods("GET")
	api.HandleFunc("/{id}", h.GetTemplate).Methods("GET")
	api.HandleFunc("/{id}", h.UpdateTemplate).Methods("PUT", "PATCH")
	api.HandleFunc("/{id}", h.DeleteTemplate).Methods("DELETE")
	api.HandleFunc("/{id}/logs", h.TemplateLogs).Methods("GET")
	api.HandleFunc("/{id}/executions", h.LogExecution).Methods("POST")
}

type bomRequest struct {
	Pieces              *[]domain.BOMLine `json:"pieces"`
	SousAssemblages     *[]domain.BOMLine `json:"sousAssemblages"`
	SousSousAssemblages *[]domain.BOMLine `json:"sousSousAssemblages"`
}

// lines keeps only the arrays present in the request.
func (b bomRequest) lines() map[catalog.Kind][]domain.BOMLine {
	out := map[catalog.Kind][]domain.BOMLine{}
	add := func(kind catalog.Kind, l *[]domain.BOMLine) {
		if l == nil {
			return
		}
		out[kind] = *l
		if out[kind] == nil {
			out[kind] = []domain.BOMLine{}
		}
	}
	add(catalog.KindPiece, b.Pieces)
	add(catalog.KindSousAssemblage, b.SousAssemblages)
	add(catalog.KindSousSousAssemblage, b.SousSousAssemblages)
	return out
}

// ListTemplates godoc
// @Summary List task templates
// @Tags Task templates
// @Produce json
// @Param scope query string false "all, generic or borne"
// @Param borneId query int false "Borne of the borne scope"
// @Success 200 {object} httpx.Response
// @Router /api/task-templates [get]
func (h *TemplateHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	borneID, err := httpx.QueryID(r, "borneId")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	filter := domain.Filter{Scope: domain.Scope(r.URL.Query().Get("scope"))}
	if borneID != nil {
		filter.BorneID = *borneID
		if filter.Scope == "" {
			filter.Scope = domain.ScopeBorne
		}
	}

	templates, err := h.listTemplates.Handle(r.Context(), query.ListTemplatesQuery{Filter: filter})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, templates)
}

// CreateTemplate godoc
// @Summary Create a task template
// @Description A template bound to a borne is added at once to every open production building that borne.
// @Tags Task templates
// @Accept json
// @Produce json
// @Param request body object{borneId=int,label=string,description=string,order=int,active=bool,pieces=[]domain.BOMLine,sousAssemblages=[]domain.BOMLine,sousSousAssemblages=[]domain.BOMLine} true "Template"
// @Success 201 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/task-templates [post]
func (h *TemplateHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BorneID     *uint   `json:"borneId"`
		Label       string  `json:"label"`
		Description *string `json:"description"`
		Order       int     `json:"order"`
		Active      *bool   `json:"active"`
		bomRequest
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	template, err := h.createTemplate.Handle(r.Context(), command.CreateTemplateCommand{
		BorneID:     req.BorneID,
		Label:       req.Label,
		Description: req.Description,
		Order:       req.Order,
		Active:      req.Active,
		BOM:         req.lines(),
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusCreated, template)
}

func (h *TemplateHandler) GenericTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.generic.Handle(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, templates)
}

func (h *TemplateHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	template, err := h.getTemplate.Handle(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, template)
}

// UpdateTemplate godoc
// @Summary Update a task template
// @Description Each BOM array sent replaces that category entirely. Omitted arrays are kept.
// @Tags Task templates
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/task-templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		BorneID     domain.OptionalID `json:"borneId"`
		Label       *string           `json:"label"`
		Description *string           `json:"description"`
		Order       *int              `json:"order"`
		Active      *bool             `json:"active"`
		bomRequest
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	template, err := h.updateTemplate.Handle(r.Context(), command.UpdateTemplateCommand{
		ID:          id,
		BorneID:     req.BorneID,
		Label:       req.Label,
		Description: req.Description,
		Order:       req.Order,
		Active:      req.Active,
		BOM:         req.lines(),
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, template)
}

func (h *TemplateHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.deleteTemplate.Handle(r.Context(), command.DeleteTemplateCommand{ID: id}); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Message(w, "Task template deleted")
}

func (h *TemplateHandler) TemplateLogs(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	limit, err := httpx.QueryInt(r, "limit", 0)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	logs, err := h.templateLogs.Handle(r.Context(), query.TemplateLogsQuery{TemplateID: id, Limit: limit})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, logs)
}

// LogExecution godoc
// @Summary Record an execution of a generic template
// @Tags Task templates
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param request body object{userId=int,note=string} false "Execution"
// @Success 201 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Router /api/task-templates/{id}/executions [post]
func (h *TemplateHandler) LogExecution(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		UserID *uint  `json:"userId"`
		Note   string `json:"note"`
	}
	if r.ContentLength != 0 {
		if err := httpx.Decode(r, &req); err != nil {
			httpx.Error(w, r, err)
			return
		}
	}

	userID := req.UserID
	if id := auth.UserID(r.Context()); id != nil {
		userID = id
	}
	entry, err := h.logExecution.Handle(r.Context(), command.LogExecutionCommand{TemplateID: id, UserID: userID, Note: req.Note})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusCreated, entry)
}
