package command

import (
	"context"
	"testing"

	catalog "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	catalogrepo "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/repository"
	catalogquery "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/usecase/query"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/repository"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/testutil"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
)

type recordingSync struct {
	synced []uint
	labels map[uint]string
}

func (s *recordingSync) SyncAllOpenProductionsForBorne(_ context.Context, borneID uint) error {
	s.synced = append(s.synced, borneID)
	return nil
}

func (s *recordingSync) PropagateTemplateLabel(_ context.Context, templateID uint, label string) error {
	if s.labels == nil {
		s.labels = map[uint]string{}
	}
	s.labels[templateID] = label
	return nil
}

type fixture struct {
	repo   *repository.GormTemplateRepository
	lookup *catalogquery.Lookup
	sync   *recordingSync
	bornes []catalog.Borne
	pieces []catalog.Item
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	bornes := catalogrepo.NewGormBorneRepository(db)
	items := catalogrepo.NewGormItemRepository(db)
	f := &fixture{
		repo:   repository.NewGormTemplateRepository(db),
		lookup: catalogquery.NewLookup(bornes, items),
		sync:   &recordingSync{},
	}

	ctx := context.Background()
	for _, name := range []string{"Borne A", "Borne B"} {
		b := catalog.Borne{Name: name}
		if err := bornes.Create(ctx, &b); err != nil {
			t.Fatalf("create borne: %v", err)
		}
		f.bornes = append(f.bornes, b)
	}
	for _, ref := range []string{"C001A", "C002A"} {
		it := catalog.Item{Kind: catalog.KindPiece, Name: "Piece " + ref, Reference: ref, Type: "COMMERCE"}
		if err := items.Create(ctx, &it); err != nil {
			t.Fatalf("create piece: %v", err)
		}
		f.pieces = append(f.pieces, it)
	}
	return f
}

func (f *fixture) create(t *testing.T, cmd CreateTemplateCommand) *domain.TaskTemplate {
	t.Helper()
	tpl, err := NewCreateTemplateHandler(f.repo, f.lookup, f.sync).Handle(context.Background(), cmd)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	return tpl
}

func intPtr(v int) *int { return &v }

func TestCreateTemplateSyncsBorne(t *testing.T) {
	f := newFixture(t)
	borneID := f.bornes[0].ID

	tpl := f.create(t, CreateTemplateCommand{
		BorneID: &borneID,
		Label:   "Câblage",
		BOM: map[catalog.Kind][]domain.BOMLine{
			catalog.KindPiece: {{ItemID: f.pieces[0].ID, Quantity: intPtr(2)}, {ItemID: f.pieces[1].ID}},
		},
	})

	if !tpl.Active {
		t.Error("template should default to active")
	}
	pieces := tpl.ItemsOfKind(catalog.KindPiece)
	if len(pieces) != 2 {
		t.Fatalf("pieces = %d, want 2", len(pieces))
	}
	if pieces[0].Quantity != 2 || pieces[1].Quantity != 1 {
		t.Errorf("quantities = %d, %d, want 2, 1", pieces[0].Quantity, pieces[1].Quantity)
	}
	if len(f.sync.synced) != 1 || f.sync.synced[0] != borneID {
		t.Errorf("synced = %v, want [%d]", f.sync.synced, borneID)
	}

	f.create(t, CreateTemplateCommand{Label: "Ménage"})
	if len(f.sync.synced) != 1 {
		t.Errorf("generic template should not trigger a sync, synced = %v", f.sync.synced)
	}
}

func TestCreateTemplateValidation(t *testing.T) {
	f := newFixture(t)
	missingBorne := uint(999)
	h := NewCreateTemplateHandler(f.repo, f.lookup, f.sync)

	tests := []struct {
		name  string
		cmd   CreateTemplateCommand
		check func(error) bool
	}{
		{"empty label", CreateTemplateCommand{Label: "  "}, apperror.IsInvalid},
		{"unknown borne", CreateTemplateCommand{Label: "X", BorneID: &missingBorne}, apperror.IsNotFound},
		{"unknown piece", CreateTemplateCommand{Label: "X", BOM: map[catalog.Kind][]domain.BOMLine{
			catalog.KindPiece: {{ItemID: 999}},
		}}, apperror.IsNotFound},
		{"zero quantity", CreateTemplateCommand{Label: "X", BOM: map[catalog.Kind][]domain.BOMLine{
			catalog.KindPiece: {{ItemID: f.pieces[0].ID, Quantity: intPtr(0)}},
		}}, apperror.IsInvalid},
		{"kit not allowed", CreateTemplateCommand{Label: "X", BOM: map[catalog.Kind][]domain.BOMLine{
			catalog.KindKit: {{ItemID: 1}},
		}}, apperror.IsInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Handle(context.Background(), tt.cmd)
			if !tt.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestUpdateTemplateReplacesProvidedBOMOnly(t *testing.T) {
	f := newFixture(t)
	tpl := f.create(t, CreateTemplateCommand{
		Label: "Montage",
		BOM: map[catalog.Kind][]domain.BOMLine{
			catalog.KindPiece: {{ItemID: f.pieces[0].ID}},
		},
	})
	h := NewUpdateTemplateHandler(f.repo, f.lookup, f.sync)

	desc := "new description"
	updated, err := h.Handle(context.Background(), UpdateTemplateCommand{ID: tpl.ID, Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Items) != 1 {
		t.Fatalf("unspecified BOM changed: %d items", len(updated.Items))
	}

	updated, err = h.Handle(context.Background(), UpdateTemplateCommand{
		ID:  tpl.ID,
		BOM: map[catalog.Kind][]domain.BOMLine{catalog.KindPiece: {{ItemID: f.pieces[1].ID, Quantity: intPtr(3)}}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Items) != 1 || updated.Items[0].ItemID != f.pieces[1].ID || updated.Items[0].Quantity != 3 {
		t.Fatalf("items = %+v, want only piece %d x3", updated.Items, f.pieces[1].ID)
	}

	updated, err = h.Handle(context.Background(), UpdateTemplateCommand{
		ID:  tpl.ID,
		BOM: map[catalog.Kind][]domain.BOMLine{catalog.KindPiece: {}},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Items) != 0 {
		t.Errorf("empty array should clear BOM, got %d items", len(updated.Items))
	}
}

func TestUpdateTemplateLabelAndBorne(t *testing.T) {
	f := newFixture(t)
	a, b := f.bornes[0].ID, f.bornes[1].ID
	tpl := f.create(t, CreateTemplateCommand{Label: "Test", BorneID: &a})
	f.sync.synced = nil

	label := "Test final"
	updated, err := NewUpdateTemplateHandler(f.repo, f.lookup, f.sync).Handle(context.Background(), UpdateTemplateCommand{
		ID:      tpl.ID,
		Label:   &label,
		BorneID: domain.OptionalID{Set: true, Value: &b},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.BorneID == nil || *updated.BorneID != b {
		t.Errorf("borne = %v, want %d", updated.BorneID, b)
	}
	if f.sync.labels[tpl.ID] != label {
		t.Errorf("propagated label = %q, want %q", f.sync.labels[tpl.ID], label)
	}
	if len(f.sync.synced) != 2 || f.sync.synced[0] != a || f.sync.synced[1] != b {
		t.Errorf("synced = %v, want [%d %d]", f.sync.synced, a, b)
	}

	f.sync.synced = nil
	f.sync.labels = nil
	updated, err = NewUpdateTemplateHandler(f.repo, f.lookup, f.sync).Handle(context.Background(), UpdateTemplateCommand{
		ID:      tpl.ID,
		BorneID: domain.OptionalID{Set: true},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.BorneID != nil {
		t.Errorf("borne = %v, want generic", *updated.BorneID)
	}
	if len(f.sync.labels) != 0 {
		t.Errorf("unchanged label propagated: %v", f.sync.labels)
	}
	if len(f.sync.synced) != 1 || f.sync.synced[0] != b {
		t.Errorf("synced = %v, want previous borne [%d]", f.sync.synced, b)
	}
}

func TestDeleteTemplate(t *testing.T) {
	f := newFixture(t)
	tpl := f.create(t, CreateTemplateCommand{Label: "X", BOM: map[catalog.Kind][]domain.BOMLine{
		catalog.KindPiece: {{ItemID: f.pieces[0].ID}},
	}})
	if _, err := NewLogExecutionHandler(f.repo).Handle(context.Background(), LogExecutionCommand{TemplateID: tpl.ID, Note: "fait"}); err != nil {
		t.Fatalf("log: %v", err)
	}
	h := NewDeleteTemplateHandler(f.repo)

	if err := h.Handle(context.Background(), DeleteTemplateCommand{ID: tpl.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	logs, err := f.repo.FindLogs(context.Background(), tpl.ID, 10)
	if err != nil {
		t.Fatalf("find logs: %v", err)
	}
	if len(logs) != 1 || logs[0].Note == nil || *logs[0].Note != "fait" {
		t.Errorf("logs after delete = %+v, want the execution entry kept", logs)
	}
	if err := h.Handle(context.Background(), DeleteTemplateCommand{ID: tpl.ID}); !apperror.IsNotFound(err) {
		t.Errorf("second delete: got %v, want NotFound", err)
	}
}

func TestLogExecution(t *testing.T) {
	f := newFixture(t)
	generic := f.create(t, CreateTemplateCommand{Label: "Inventaire"})
	borneID := f.bornes[0].ID
	bound := f.create(t, CreateTemplateCommand{Label: "Câblage", BorneID: &borneID})
	h := NewLogExecutionHandler(f.repo)

	user := uint(4)
	entry, err := h.Handle(context.Background(), LogExecutionCommand{TemplateID: generic.ID, UserID: &user, Note: " done "})
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if entry.EventType != domain.EventCompleted {
		t.Errorf("event = %s, want COMPLETED", entry.EventType)
	}
	if entry.Note == nil || *entry.Note != "done" {
		t.Errorf("note = %v, want done", entry.Note)
	}

	if _, err := h.Handle(context.Background(), LogExecutionCommand{TemplateID: bound.ID}); !apperror.IsInvalid(err) {
		t.Errorf("bound template: got %v, want InvalidRequest", err)
	}
	if _, err := h.Handle(context.Background(), LogExecutionCommand{TemplateID: 999}); !apperror.IsNotFound(err) {
		t.Errorf("unknown template: got %v, want NotFound", err)
	}
}
