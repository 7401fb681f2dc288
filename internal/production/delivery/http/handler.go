package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/usecase/command"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/usecase/query"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/auth"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/httpx"
)

// ProductionHandler handles HTTP requests for productions and their tasks
type ProductionHandler struct {
	createProduction *command.CreateProductionHandler
	updateProduction *command.UpdateProductionHandler
	deleteProduction *command.DeleteProductionHandler
	syncProduction   *command.SyncProductionHandler
	transitionTask   *command.TransitionTaskHandler

	getProduction   *query.GetProductionHandler
	listProductions *query.ListProductionsHandler
	listTasks       *query.ListTasksHandler
	getTask         *query.GetTaskHandler
	openTasks       *query.OpenTasksHandler
}

// NewProductionHandler creates a new production handler. publisher may be nil.
func NewProductionHandler(
	productions domain.ProductionRepository,
	tasks domain.TaskRepository,
	templates domain.TemplateSource,
	bornes domain.BorneLookup,
	syncer *command.Syncer,
	publisher command.TaskPublisher,
) *ProductionHandler {
	return &ProductionHandler{
		createProduction: command.NewCreateProductionHandler(productions, tasks, templates, bornes),
		updateProduction: command.NewUpdateProductionHandler(productions),
		deleteProduction: command.NewDeleteProductionHandler(productions),
		syncProduction:   command.NewSyncProductionHandler(productions, syncer),
		transitionTask:   command.NewTransitionTaskHandler(tasks, productions, publisher),

		getProduction:   query.NewGetProductionHandler(productions),
		listProductions: query.NewListProductionsHandler(productions),
		listTasks:       query.NewListTasksHandler(productions, tasks),
		getTask:         query.NewGetTaskHandler(tasks),
		openTasks:       query.NewOpenTasksHandler(tasks),
	}
}

// RegisterRoutes registers all production and task routes
func (h *ProductionHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/productions", h.ListProductions).Methods("GET")
	api.HandleFunc("/productions", h.CreateProduction).Methods("POST")
	api.HandleFunc("/productions/{id}", h.GetProduction).Methods("GET")
	api.HandleFunc("/productions/{id}", h.UpdateProduction).Methods("PUT", "PATCH")
	api.HandleFunc("/productions/{id}", h.DeleteProduction).Methods("DELETE")
	api.HandleFunc("/productions/{id}/sync", h.SyncProduction).Methods("POST")
	api.HandleFunc("/productions/{id}/tasks", h.ListTasks).Methods("GET")

	api.HandleFunc("/tasks/open", h.OpenTasks).Methods("GET")
	api.HandleFunc("/tasks/{id}", h.GetTask).Methods("GET")
	api.HandleFunc("/tasks/{id}/{action}", h.TransitionTask).Methods("POST")
}

// parseDate accepts a calendar date or an RFC 3339 timestamp.
func parseDate(raw string) (*time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, apperror.Invalid("invalid dueDate %q", raw)
}

// ListProductions godoc
// @Summary List productions
// @Tags Productions
// @Produce json
// @Param status query string false "PLANNED, IN_PROGRESS, DONE or CANCELED"
// @Success 200 {object} httpx.Response
// @Router /api/productions [get]
func (h *ProductionHandler) ListProductions(w http.ResponseWriter, r *http.Request) {
	q := query.ListProductionsQuery{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		q.Status = &status
	}

	productions, err := h.listProductions.Handle(r.Context(), q)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, productions)
}

// CreateProduction godoc
// @Summary Create a production
// @Description Creates one task per active template of the bornes built by the lines.
// @Tags Productions
// @Accept json
// @Produce json
// @Param request body object{name=string,reference=string,description=string,dueDate=string,lines=[]domain.LineInput} true "Production"
// @Success 201 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/productions [post]
func (h *ProductionHandler) CreateProduction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string             `json:"name"`
		Reference   *string            `json:"reference"`
		Description *string            `json:"description"`
		DueDate     *string            `json:"dueDate"`
		Lines       []domain.LineInput `json:"lines"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	cmd := command.CreateProductionCommand{
		Name:        req.Name,
		Reference:   req.Reference,
		Description: req.Description,
		Lines:       req.Lines,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := parseDate(*req.DueDate)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		cmd.DueDate = due
	}

	production, err := h.createProduction.Handle(r.Context(), cmd)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusCreated, production)
}

func (h *ProductionHandler) GetProduction(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	production, err := h.getProduction.Handle(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, production)
}

// UpdateProduction godoc
// @Summary Update a production
// @Description Status follows PLANNED -> IN_PROGRESS -> DONE, with CANCELED reachable from both open states. An empty dueDate clears it.
// @Tags Productions
// @Accept json
// @Produce json
// @Param id path int true "Production ID"
// @Param request body object{name=string,reference=string,description=string,dueDate=string,status=string} true "Fields to change"
// @Success 200 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Router /api/productions/{id} [put]
func (h *ProductionHandler) UpdateProduction(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		Name        *string `json:"name"`
		Reference   *string `json:"reference"`
		Description *string `json:"description"`
		DueDate     *string `json:"dueDate"`
		Status      *string `json:"status"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	cmd := command.UpdateProductionCommand{
		ID:          id,
		Name:        req.Name,
		Reference:   req.Reference,
		Description: req.Description,
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			cmd.ClearDueDate = true
		} else if cmd.DueDate, err = parseDate(*req.DueDate); err != nil {
			httpx.Error(w, r, err)
			return
		}
	}
	if req.Status != nil {
		status, err := domain.ParseStatus(*req.Status)
		if err != nil {
			httpx.Error(w, r, err)
			return
		}
		cmd.Status = &status
	}

	production, err := h.updateProduction.Handle(r.Context(), cmd)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, production)
}

// DeleteProduction godoc
// @Summary Delete a production with its lines, tasks and task logs
// @Tags Productions
// @Produce json
// @Param id path int true "Production ID"
// @Success 200 {object} httpx.Response
// @Failure 404 {object} httpx.Response
// @Router /api/productions/{id} [delete]
func (h *ProductionHandler) DeleteProduction(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := h.deleteProduction.Handle(r.Context(), command.DeleteProductionCommand{ID: id}); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Message(w, "Production deleted")
}

func (h *ProductionHandler) SyncProduction(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	production, err := h.syncProduction.Handle(r.Context(), command.SyncProductionCommand{ID: id})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, production)
}

func (h *ProductionHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	tasks, err := h.listTasks.Handle(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, tasks)
}

// OpenTasks godoc
// @Summary Unfinished tasks with time estimates
// @Description Estimates average the seconds per machine of completed tasks of the same template.
// @Tags Tasks
// @Produce json
// @Success 200 {object} httpx.Response
// @Router /api/tasks/open [get]
func (h *ProductionHandler) OpenTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.openTasks.Handle(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, tasks)
}

func (h *ProductionHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	task, err := h.getTask.Handle(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, task)
}

// TransitionTask godoc
// @Summary Apply an action to a task
// @Description version, when sent, must match the task or the call answers 409.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param action path string true "assign, start, pause, complete, reopen or reset-time"
// @Param request body object{userId=int,assignedToId=int,note=string,version=int} false "Action parameters"
// @Success 200 {object} httpx.Response
// @Failure 400 {object} httpx.Response
// @Failure 409 {object} httpx.Response
// @Router /api/tasks/{id}/{action} [post]
func (h *ProductionHandler) TransitionTask(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	action, err := command.ParseAction(mux.Vars(r)["action"])
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	var req struct {
		UserID       *uint  `json:"userId"`
		AssignedToID *uint  `json:"assignedToId"`
		Note         string `json:"note"`
		Version      *int   `json:"version"`
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
	task, err := h.transitionTask.Handle(r.Context(), command.TransitionTaskCommand{
		TaskID:          id,
		Action:          action,
		UserID:          userID,
		AssigneeID:      req.AssignedToID,
		Note:            req.Note,
		ExpectedVersion: req.Version,
	})
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, task)
}
