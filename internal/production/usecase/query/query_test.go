package query

import (
	"context"
	"testing"

	catalog "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	catalogrepo "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/repository"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/repository"
	tasktemplate "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
	templaterepo "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/repository"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/testutil"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
)

func TestOpenTasksEstimate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	productions := repository.NewGormProductionRepository(db)
	tasks := repository.NewGormTaskRepository(db)

	borne := catalog.Borne{Name: "Borne B"}
	if err := catalogrepo.NewGormBorneRepository(db).Create(ctx, &borne); err != nil {
		t.Fatalf("create borne: %v", err)
	}
	tpl := tasktemplate.TaskTemplate{BorneID: &borne.ID, Label: "Câblage", Active: true}
	other := tasktemplate.TaskTemplate{BorneID: &borne.ID, Label: "Contrôle", Active: true}
	templates := templaterepo.NewGormTemplateRepository(db)
	for _, t2 := range []*tasktemplate.TaskTemplate{&tpl, &other} {
		if err := templates.Create(ctx, t2); err != nil {
			t.Fatalf("create template: %v", err)
		}
	}

	newProduction := func(qty int, status domain.Status) *domain.Production {
		p := &domain.Production{Name: "P", Status: status, Lines: []domain.Line{{BorneID: borne.ID, Quantity: qty}}}
		if err := productions.Create(ctx, p); err != nil {
			t.Fatalf("create production: %v", err)
		}
		return p
	}
	past := newProduction(3, domain.StatusDone)
	current := newProduction(5, domain.StatusInProgress)

	done := domain.NewTaskFromTemplate(past.ID, tpl)
	done.IsDone = true
	done.TotalSeconds = 600
	unmeasured := domain.NewTaskFromTemplate(past.ID, other)
	unmeasured.IsDone = true
	if err := tasks.CreateBatch(ctx, []domain.Task{
		done,
		unmeasured,
		domain.NewTaskFromTemplate(current.ID, tpl),
		domain.NewTaskFromTemplate(current.ID, other),
	}); err != nil {
		t.Fatalf("create tasks: %v", err)
	}

	open, err := NewOpenTasksHandler(tasks).Handle(ctx)
	if err != nil {
		t.Fatalf("open tasks: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("open tasks = %d, want 2", len(open))
	}

	estimated, bare := open[0], open[1]
	if estimated.AvgSecondsPerMachine == nil || *estimated.AvgSecondsPerMachine != 200 {
		t.Errorf("avgSecondsPerMachine = %v, want 200", estimated.AvgSecondsPerMachine)
	}
	if estimated.MachinesCount == nil || *estimated.MachinesCount != 5 {
		t.Errorf("machinesCount = %v, want 5", estimated.MachinesCount)
	}
	if estimated.EstimatedSecondsTotal == nil || *estimated.EstimatedSecondsTotal != 1000 {
		t.Errorf("estimatedSecondsTotal = %v, want 1000", estimated.EstimatedSecondsTotal)
	}
	if bare.AvgSecondsPerMachine != nil || bare.MachinesCount != nil || bare.EstimatedSecondsTotal != nil {
		t.Errorf("template without history should have no estimate, got %+v", bare)
	}
}

func TestGetProductionNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	productions := repository.NewGormProductionRepository(db)

	if _, err := NewGetProductionHandler(productions).Handle(context.Background(), 7); !apperror.IsNotFound(err) {
		t.Errorf("get: got %v, want NotFound", err)
	}
	if _, err := NewListTasksHandler(productions, repository.NewGormTaskRepository(db)).Handle(context.Background(), 7); !apperror.IsNotFound(err) {
		t.Errorf("list tasks: got %v, want NotFound", err)
	}
}
