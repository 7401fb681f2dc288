package command

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	catalog "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	catalogrepo "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/repository"
	catalogquery "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/usecase/query"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/repository"
	tasktemplate "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
	templaterepo "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/repository"
	templatecmd "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/usecase/command"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/testutil"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/kafka"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
)

type fixture struct {
	db          *gorm.DB
	productions *repository.GormProductionRepository
	tasks       *repository.GormTaskRepository
	templates   *templaterepo.GormTemplateRepository
	lookup      *catalogquery.Lookup
	syncer      *Syncer
	bornes      []catalog.Borne
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	bornes := catalogrepo.NewGormBorneRepository(db)
	f := &fixture{
		db:          db,
		productions: repository.NewGormProductionRepository(db),
		tasks:       repository.NewGormTaskRepository(db),
		templates:   templaterepo.NewGormTemplateRepository(db),
		lookup:      catalogquery.NewLookup(bornes, catalogrepo.NewGormItemRepository(db)),
	}
	f.syncer = NewSyncer(f.productions, f.tasks, f.templates)

	for _, name := range []string{"Borne A", "Borne B"} {
		b := catalog.Borne{Name: name}
		if err := bornes.Create(context.Background(), &b); err != nil {
			t.Fatalf("create borne: %v", err)
		}
		f.bornes = append(f.bornes, b)
	}
	return f
}

func (f *fixture) template(t *testing.T, borneID *uint, label string, order int) *tasktemplate.TaskTemplate {
	t.Helper()
	h := templatecmd.NewCreateTemplateHandler(f.templates, f.lookup, f.syncer)
	tpl, err := h.Handle(context.Background(), templatecmd.CreateTemplateCommand{BorneID: borneID, Label: label, Order: order})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	return tpl
}

func (f *fixture) production(t *testing.T, lines ...domain.LineInput) *domain.Production {
	t.Helper()
	h := NewCreateProductionHandler(f.productions, f.tasks, f.templates, f.lookup)
	p, err := h.Handle(context.Background(), CreateProductionCommand{Name: "Série", Lines: lines})
	if err != nil {
		t.Fatalf("create production: %v", err)
	}
	return p
}

func (f *fixture) transitions(now *time.Time, publisher TaskPublisher) *TransitionTaskHandler {
	h := NewTransitionTaskHandler(f.tasks, f.productions, publisher)
	h.now = func() time.Time { return *now }
	return h
}

func TestCreateProductionMaterializesTasksInOrder(t *testing.T) {
	f := newFixture(t)
	a, b := f.bornes[0].ID, f.bornes[1].ID
	f.template(t, &b, "B first", 0)
	f.template(t, &a, "A second", 2)
	f.template(t, &a, "A first", 1)
	f.template(t, nil, "Generic", 0)

	p := f.production(t, domain.LineInput{BorneID: b, Quantity: 1}, domain.LineInput{BorneID: a, Quantity: 2})

	if p.Status != domain.StatusPlanned {
		t.Errorf("status = %s, want PLANNED", p.Status)
	}
	want := []string{"A first", "A second", "B first"}
	if len(p.Tasks) != len(want) {
		t.Fatalf("tasks = %d, want %d", len(p.Tasks), len(want))
	}
	for i, label := range want {
		if p.Tasks[i].Label != label {
			t.Errorf("task %d = %q, want %q", i, p.Tasks[i].Label, label)
		}
	}
}

func TestCreateProductionValidation(t *testing.T) {
	f := newFixture(t)
	h := NewCreateProductionHandler(f.productions, f.tasks, f.templates, f.lookup)
	ref := "PRD-1"

	if _, err := h.Handle(context.Background(), CreateProductionCommand{Name: "X"}); !apperror.IsInvalid(err) {
		t.Errorf("no lines: got %v, want InvalidRequest", err)
	}
	_, err := h.Handle(context.Background(), CreateProductionCommand{Name: "X", Lines: []domain.LineInput{{BorneID: 999, Quantity: 1}}})
	if !apperror.IsNotFound(err) {
		t.Errorf("unknown borne: got %v, want NotFound", err)
	}

	lines := []domain.LineInput{{BorneID: f.bornes[0].ID, Quantity: 1}}
	if _, err := h.Handle(context.Background(), CreateProductionCommand{Name: "X", Reference: &ref, Lines: lines}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := h.Handle(context.Background(), CreateProductionCommand{Name: "Y", Reference: &ref, Lines: lines}); !apperror.IsConflict(err) {
		t.Errorf("duplicate reference: got %v, want Conflict", err)
	}
}

func TestTemplateCreationIsRetroactive(t *testing.T) {
	f := newFixture(t)
	a, b := f.bornes[0].ID, f.bornes[1].ID
	open := f.production(t, domain.LineInput{BorneID: a, Quantity: 2})
	other := f.production(t, domain.LineInput{BorneID: b, Quantity: 1})
	done := f.production(t, domain.LineInput{BorneID: a, Quantity: 1})
	update := NewUpdateProductionHandler(f.productions)
	for _, s := range []domain.Status{domain.StatusInProgress, domain.StatusDone} {
		s := s
		if _, err := update.Handle(context.Background(), UpdateProductionCommand{ID: done.ID, Status: &s}); err != nil {
			t.Fatalf("move to %s: %v", s, err)
		}
	}

	tpl := f.template(t, &a, "Câblage", 0)

	count := func(productionID uint) int {
		tasks, err := f.tasks.FindByProduction(context.Background(), productionID)
		if err != nil {
			t.Fatalf("list tasks: %v", err)
		}
		n := 0
		for _, task := range tasks {
			if task.TaskTemplateID != nil && *task.TaskTemplateID == tpl.ID {
				n++
			}
		}
		return n
	}
	if got := count(open.ID); got != 1 {
		t.Errorf("open production tasks = %d, want 1", got)
	}
	if got := count(other.ID); got != 0 {
		t.Errorf("production of another borne tasks = %d, want 0", got)
	}
	if got := count(done.ID); got != 0 {
		t.Errorf("done production tasks = %d, want 0", got)
	}

	if err := f.syncer.SyncAllOpenProductionsForBorne(context.Background(), a); err != nil {
		t.Fatalf("resync: %v", err)
	}
	if got := count(open.ID); got != 1 {
		t.Errorf("after resync tasks = %d, want 1", got)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	f := newFixture(t)
	a := f.bornes[0].ID
	p := f.production(t, domain.LineInput{BorneID: a, Quantity: 1})

	// Inserted without the registry so the production lags behind.
	tpl := tasktemplate.TaskTemplate{BorneID: &a, Label: "Late", Active: true}
	if err := f.templates.Create(context.Background(), &tpl); err != nil {
		t.Fatalf("insert template: %v", err)
	}

	created, err := f.syncer.SyncTasksFromTemplates(context.Background(), p.ID)
	if err != nil || created != 1 {
		t.Fatalf("first sync: created %d, err %v; want 1", created, err)
	}
	created, err = f.syncer.SyncTasksFromTemplates(context.Background(), p.ID)
	if err != nil || created != 0 {
		t.Fatalf("second sync: created %d, err %v; want 0", created, err)
	}
}

func TestTemplateRenamePropagatesLabel(t *testing.T) {
	f := newFixture(t)
	a := f.bornes[0].ID
	tpl := f.template(t, &a, "Old", 0)
	p := f.production(t, domain.LineInput{BorneID: a, Quantity: 1})

	label := "New"
	desc := "changed"
	h := templatecmd.NewUpdateTemplateHandler(f.templates, f.lookup, f.syncer)
	if _, err := h.Handle(context.Background(), templatecmd.UpdateTemplateCommand{ID: tpl.ID, Label: &label, Description: &desc}); err != nil {
		t.Fatalf("update template: %v", err)
	}

	tasks, err := f.tasks.FindByProduction(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Label != "New" {
		t.Fatalf("tasks = %+v, want one task labelled New", tasks)
	}
	if tasks[0].Description != nil {
		t.Errorf("description should stay a snapshot, got %q", *tasks[0].Description)
	}
}

func TestUpdateProductionStatusMachine(t *testing.T) {
	f := newFixture(t)
	p := f.production(t, domain.LineInput{BorneID: f.bornes[0].ID, Quantity: 1})
	h := NewUpdateProductionHandler(f.productions)
	status := func(s domain.Status) *domain.Status { return &s }

	if _, err := h.Handle(context.Background(), UpdateProductionCommand{ID: p.ID, Status: status(domain.StatusDone)}); !apperror.IsInvalid(err) {
		t.Errorf("PLANNED -> DONE: got %v, want InvalidRequest", err)
	}
	updated, err := h.Handle(context.Background(), UpdateProductionCommand{ID: p.ID, Status: status(domain.StatusCanceled)})
	if err != nil {
		t.Fatalf("PLANNED -> CANCELED: %v", err)
	}
	if updated.Status != domain.StatusCanceled {
		t.Errorf("status = %s", updated.Status)
	}
	if _, err := h.Handle(context.Background(), UpdateProductionCommand{ID: p.ID, Status: status(domain.StatusInProgress)}); !apperror.IsInvalid(err) {
		t.Errorf("CANCELED -> IN_PROGRESS: got %v, want InvalidRequest", err)
	}
	if _, err := NewSyncProductionHandler(f.productions, f.syncer).Handle(context.Background(), SyncProductionCommand{ID: p.ID}); !apperror.IsInvalid(err) {
		t.Errorf("sync of canceled production: got %v, want InvalidRequest", err)
	}
}

func TestDeleteProductionCascades(t *testing.T) {
	f := newFixture(t)
	a := f.bornes[0].ID
	f.template(t, &a, "T1", 0)
	f.template(t, &a, "T2", 1)
	p := f.production(t, domain.LineInput{BorneID: a, Quantity: 1})
	keep := f.production(t, domain.LineInput{BorneID: a, Quantity: 1})

	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	h := f.transitions(&now, nil)
	if _, err := h.Handle(context.Background(), TransitionTaskCommand{TaskID: p.Tasks[0].ID, Action: ActionStart}); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := NewDeleteProductionHandler(f.productions).Handle(context.Background(), DeleteProductionCommand{ID: p.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	counts := map[string]int64{}
	for name, model := range map[string]interface{}{
		"productions": &domain.Production{},
		"lines":       &domain.Line{},
		"tasks":       &domain.Task{},
		"logs":        &domain.TaskLog{},
	} {
		var n int64
		if err := f.db.Model(model).Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		counts[name] = n
	}
	want := map[string]int64{"productions": 1, "lines": 1, "tasks": 2, "logs": 0}
	for name, n := range want {
		if counts[name] != n {
			t.Errorf("%s = %d, want %d", name, counts[name], n)
		}
	}
	if _, err := f.productions.FindByID(context.Background(), keep.ID, 0); err != nil {
		t.Errorf("other production removed: %v", err)
	}
}

type recordingTaskPublisher struct {
	events []kafka.TaskEvent
}

func (p *recordingTaskPublisher) PublishTaskEvent(_ context.Context, e kafka.TaskEvent) error {
	p.events = append(p.events, e)
	return nil
}

func TestTaskTimer(t *testing.T) {
	f := newFixture(t)
	a := f.bornes[0].ID
	f.template(t, &a, "Câblage", 0)
	p := f.production(t, domain.LineInput{BorneID: a, Quantity: 1})
	taskID := p.Tasks[0].ID

	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	pub := &recordingTaskPublisher{}
	h := f.transitions(&now, pub)
	user := uint(3)
	run := func(action Action) (*domain.Task, error) {
		return h.Handle(context.Background(), TransitionTaskCommand{TaskID: taskID, Action: action, UserID: &user})
	}

	if _, err := run(ActionStart); err != nil {
		t.Fatalf("start: %v", err)
	}
	promoted, err := f.productions.FindByID(context.Background(), p.ID, 0)
	if err != nil {
		t.Fatalf("reload production: %v", err)
	}
	if promoted.Status != domain.StatusInProgress {
		t.Errorf("production status = %s, want IN_PROGRESS", promoted.Status)
	}

	if _, err := run(ActionStart); !apperror.IsInvalid(err) {
		t.Errorf("double start: got %v, want InvalidRequest", err)
	}

	now = now.Add(90*time.Second + 900*time.Millisecond)
	task, err := run(ActionPause)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if task.TotalSeconds != 90 {
		t.Errorf("after first cycle total = %d, want 90", task.TotalSeconds)
	}
	if _, err := run(ActionPause); !apperror.IsInvalid(err) {
		t.Errorf("pause while paused: got %v, want InvalidRequest", err)
	}

	if _, err := run(ActionStart); err != nil {
		t.Fatalf("restart: %v", err)
	}
	now = now.Add(30 * time.Second)
	task, err = run(ActionComplete)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !task.IsDone || task.Running || task.TotalSeconds != 120 {
		t.Errorf("after complete = %+v, want done, stopped, 120s", task)
	}

	task, err = run(ActionReopen)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if task.IsDone || task.TotalSeconds != 120 {
		t.Errorf("after reopen done=%v total=%d, want pending with 120s", task.IsDone, task.TotalSeconds)
	}

	task, err = run(ActionResetTime)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if task.TotalSeconds != 0 || task.Running || task.LastStartedAt != nil {
		t.Errorf("after reset = %+v", task)
	}

	wantEvents := []tasktemplate.EventType{
		tasktemplate.EventReset, tasktemplate.EventReopened, tasktemplate.EventCompleted,
		tasktemplate.EventStarted, tasktemplate.EventPaused, tasktemplate.EventStarted,
	}
	if len(task.Logs) != len(wantEvents) {
		t.Fatalf("logs = %d, want %d", len(task.Logs), len(wantEvents))
	}
	for i, e := range wantEvents {
		if task.Logs[i].EventType != e {
			t.Errorf("log %d = %s, want %s", i, task.Logs[i].EventType, e)
		}
	}
	if len(pub.events) != len(wantEvents) {
		t.Errorf("published %d events, want %d", len(pub.events), len(wantEvents))
	}
}

func TestAssignAndStaleVersion(t *testing.T) {
	f := newFixture(t)
	a := f.bornes[0].ID
	f.template(t, &a, "Câblage", 0)
	p := f.production(t, domain.LineInput{BorneID: a, Quantity: 1})
	task := p.Tasks[0]

	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	h := f.transitions(&now, nil)
	assignee, actor := uint(12), uint(3)
	assigned, err := h.Handle(context.Background(), TransitionTaskCommand{TaskID: task.ID, Action: ActionAssign, UserID: &actor, AssigneeID: &assignee})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.AssignedToID == nil || *assigned.AssignedToID != assignee {
		t.Errorf("assignee = %v, want %d", assigned.AssignedToID, assignee)
	}
	if len(assigned.Logs) != 1 || assigned.Logs[0].EventType != tasktemplate.EventAssigned {
		t.Fatalf("logs = %+v, want one ASSIGNED entry", assigned.Logs)
	}
	if id := assigned.Logs[0].UserID; id == nil || *id != assignee {
		t.Errorf("ASSIGNED log user = %v, want assignee %d", id, assignee)
	}

	stale := task.Version
	_, err = h.Handle(context.Background(), TransitionTaskCommand{TaskID: task.ID, Action: ActionStart, ExpectedVersion: &stale})
	if !apperror.IsConflict(err) {
		t.Fatalf("stale version: got %v, want Conflict", err)
	}

	// A write racing on the same snapshot must not land.
	current, err := f.tasks.FindByID(context.Background(), task.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	version := current.Version
	if err := current.Start(now); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := f.tasks.SaveTransition(context.Background(), current, version, &domain.TaskLog{EventType: tasktemplate.EventStarted}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := f.tasks.SaveTransition(context.Background(), current, version, &domain.TaskLog{EventType: tasktemplate.EventStarted}); !apperror.IsConflict(err) {
		t.Errorf("second save on same version: got %v, want Conflict", err)
	}
}

func TestUnknownTask(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	_, err := f.transitions(&now, nil).Handle(context.Background(), TransitionTaskCommand{TaskID: 42, Action: ActionStart})
	if !apperror.IsNotFound(err) {
		t.Errorf("got %v, want NotFound", err)
	}
}
