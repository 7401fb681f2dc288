package command

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/repository"
	tasktemplate "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/testutil"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/kafka"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
)

type fixture struct {
	db     *gorm.DB
	bornes *repository.GormBorneRepository
	items  *repository.GormItemRepository
	links  *repository.GormLinkRepository
	stock  domain.StockRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return &fixture{
		db:     db,
		bornes: repository.NewGormBorneRepository(db),
		items:  repository.NewGormItemRepository(db),
		links:  repository.NewGormLinkRepository(db),
		stock:  repository.NewTracingStockRepository(repository.NewGormStockRepository(db)),
	}
}

func (f *fixture) borne(t *testing.T, name string) *domain.Borne {
	t.Helper()
	b, err := NewCreateBorneHandler(f.bornes).Handle(context.Background(), CreateBorneCommand{Name: name})
	if err != nil {
		t.Fatalf("create borne: %v", err)
	}
	return b
}

func (f *fixture) item(t *testing.T, kind domain.Kind, name string, borneIDs ...uint) *domain.Item {
	t.Helper()
	cmd := CreateItemCommand{Kind: kind, Name: name, Type: "COMMERCE", BorneIDs: borneIDs}
	it, err := NewCreateItemHandler(f.items, f.bornes).Handle(context.Background(), cmd)
	if err != nil {
		t.Fatalf("create %s: %v", kind, err)
	}
	return it
}

func TestCreateBorneConflict(t *testing.T) {
	f := newFixture(t)
	f.borne(t, "Borne A")

	_, err := NewCreateBorneHandler(f.bornes).Handle(context.Background(), CreateBorneCommand{Name: "Borne A"})
	if !apperror.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := NewCreateBorneHandler(f.bornes).Handle(context.Background(), CreateBorneCommand{Name: "  "}); !apperror.IsInvalid(err) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestDeleteReferencedBorne(t *testing.T) {
	f := newFixture(t)
	b := f.borne(t, "B1")
	free := f.borne(t, "B2")
	f.item(t, domain.KindPiece, "Vis", b.ID)

	h := NewDeleteBorneHandler(f.bornes)
	if err := h.Handle(context.Background(), DeleteBorneCommand{ID: b.ID}); !apperror.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := h.Handle(context.Background(), DeleteBorneCommand{ID: free.ID}); err != nil {
		t.Fatalf("delete free borne: %v", err)
	}
	if err := h.Handle(context.Background(), DeleteBorneCommand{ID: free.ID}); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateItem(t *testing.T) {
	f := newFixture(t)
	b := f.borne(t, "B1")
	ctx := context.Background()
	h := NewCreateItemHandler(f.items, f.bornes)

	_, err := h.Handle(ctx, CreateItemCommand{Kind: domain.KindPiece, Name: "Ecrou", Type: "ELEC"})
	if !apperror.IsInvalid(err) {
		t.Fatalf("no borne: expected invalid request, got %v", err)
	}

	_, err = h.Handle(ctx, CreateItemCommand{Kind: domain.KindPiece, Name: "Ecrou", Type: "ELEC", BorneIDs: []uint{999}})
	if !apperror.IsNotFound(err) {
		t.Fatalf("unknown borne: expected not found, got %v", err)
	}

	first, err := h.Handle(ctx, CreateItemCommand{Kind: domain.KindPiece, Name: "Ecrou", Type: "ELEC", BorneIDs: []uint{b.ID, b.ID}})
	if err != nil {
		t.Fatal(err)
	}
	if first.Reference != "E001A" || first.Numero != "001" || first.Version != "A" {
		t.Errorf("generated %s numero %s version %s", first.Reference, first.Numero, first.Version)
	}
	if len(first.Bornes) != 1 {
		t.Errorf("expected one borne, got %d", len(first.Bornes))
	}

	second, err := h.Handle(ctx, CreateItemCommand{Kind: domain.KindPiece, Name: "Relais", Type: "ELEC", BorneIDs: []uint{b.ID}})
	if err != nil {
		t.Fatal(err)
	}
	if second.Reference != "E002A" {
		t.Errorf("second reference = %s", second.Reference)
	}

	_, err = h.Handle(ctx, CreateItemCommand{Kind: domain.KindPiece, Name: "Ecrou", Reference: "X1", BorneIDs: []uint{b.ID}})
	if !apperror.IsConflict(err) {
		t.Fatalf("duplicate name: expected conflict, got %v", err)
	}
	_, err = h.Handle(ctx, CreateItemCommand{Kind: domain.KindPiece, Name: "Autre", Reference: "E001A", BorneIDs: []uint{b.ID}})
	if !apperror.IsConflict(err) {
		t.Fatalf("duplicate reference: expected conflict, got %v", err)
	}

	// Names are unique per kind only.
	if _, err := h.Handle(ctx, CreateItemCommand{Kind: domain.KindKit, Name: "Ecrou", BorneIDs: []uint{b.ID}}); err != nil {
		t.Fatalf("same name in another kind: %v", err)
	}
}

func TestUpdateItemReplacesBornes(t *testing.T) {
	f := newFixture(t)
	b1 := f.borne(t, "B1")
	b2 := f.borne(t, "B2")
	b3 := f.borne(t, "B3")
	it := f.item(t, domain.KindPiece, "Vis", b1.ID, b2.ID)
	ctx := context.Background()

	// Stock moved meanwhile must survive the update.
	if _, err := f.stock.Apply(ctx, domain.KindPiece, it.ID, domain.OperationAdd, 4, nil); err != nil {
		t.Fatal(err)
	}

	name := "Vis M4"
	ids := []uint{b3.ID}
	h := NewUpdateItemHandler(f.items, f.bornes)
	updated, err := h.Handle(ctx, UpdateItemCommand{Kind: domain.KindPiece, ID: it.ID, Name: &name, BorneIDs: &ids})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != name {
		t.Errorf("name = %s", updated.Name)
	}

	reloaded, err := f.items.FindByID(ctx, domain.KindPiece, it.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.BorneIDs(); len(got) != 1 || got[0] != b3.ID {
		t.Errorf("bornes = %v, want [%d]", got, b3.ID)
	}
	if reloaded.Quantity != 4 {
		t.Errorf("update must not touch stock, quantity = %d", reloaded.Quantity)
	}

	empty := []uint{}
	if _, err := h.Handle(ctx, UpdateItemCommand{Kind: domain.KindPiece, ID: it.ID, BorneIDs: &empty}); !apperror.IsInvalid(err) {
		t.Errorf("empty borne set: expected invalid request, got %v", err)
	}
	if _, err := h.Handle(ctx, UpdateItemCommand{Kind: domain.KindKit, ID: it.ID, Name: &name}); !apperror.IsNotFound(err) {
		t.Errorf("wrong kind: expected not found, got %v", err)
	}
}

func TestArchiveKeepsStock(t *testing.T) {
	f := newFixture(t)
	b := f.borne(t, "B1")
	it := f.item(t, domain.KindSousAssemblage, "Chassis", b.ID)
	ctx := context.Background()
	f.stock.Apply(ctx, domain.KindSousAssemblage, it.ID, domain.OperationAdd, 2, nil)

	h := NewSetArchivedHandler(f.items)
	archived, err := h.Handle(ctx, SetArchivedCommand{Kind: domain.KindSousAssemblage, ID: it.ID, Archived: true})
	if err != nil {
		t.Fatal(err)
	}
	if !archived.Archived || archived.Quantity != 2 {
		t.Errorf("archived item = %+v", archived)
	}

	restored, err := h.Handle(ctx, SetArchivedCommand{Kind: domain.KindSousAssemblage, ID: it.ID, Archived: false})
	if err != nil {
		t.Fatal(err)
	}
	if restored.Archived {
		t.Error("unarchive did not clear the flag")
	}
}

func TestLinks(t *testing.T) {
	f := newFixture(t)
	b := f.borne(t, "B1")
	kit := f.item(t, domain.KindKit, "Kit", b.ID)
	piece := f.item(t, domain.KindPiece, "Vis", b.ID)
	ctx := context.Background()

	add := NewAddLinkHandler(f.links, f.items)
	cmd := AddLinkCommand{LinkKind: domain.LinkKitPiece, ParentID: kit.ID, ChildID: piece.ID, Quantity: 3}
	link, err := add.Handle(ctx, cmd)
	if err != nil {
		t.Fatal(err)
	}
	if link.Child == nil || link.Child.ID != piece.ID {
		t.Errorf("link child not hydrated: %+v", link)
	}

	if _, err := add.Handle(ctx, cmd); !apperror.IsConflict(err) {
		t.Fatalf("second add: expected conflict, got %v", err)
	}

	missing := cmd
	missing.ChildID = 999
	if _, err := add.Handle(ctx, missing); !apperror.IsNotFound(err) {
		t.Fatalf("unknown child: expected not found, got %v", err)
	}

	updated, err := NewUpdateLinkHandler(f.links).Handle(ctx, UpdateLinkCommand{LinkKind: domain.LinkKitPiece, ParentID: kit.ID, ChildID: piece.ID, Quantity: 5})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Quantity != 5 {
		t.Errorf("quantity = %d", updated.Quantity)
	}

	remove := NewRemoveLinkHandler(f.links)
	if err := remove.Handle(ctx, RemoveLinkCommand{LinkKind: domain.LinkKitPiece, ParentID: kit.ID, ChildID: piece.ID}); err != nil {
		t.Fatal(err)
	}
	if err := remove.Handle(ctx, RemoveLinkCommand{LinkKind: domain.LinkKitPiece, ParentID: kit.ID, ChildID: piece.ID}); !apperror.IsNotFound(err) {
		t.Fatalf("removing a missing link: expected not found, got %v", err)
	}
}

func TestDeleteItemCascadesLinks(t *testing.T) {
	f := newFixture(t)
	b := f.borne(t, "B1")
	sa := f.item(t, domain.KindSousAssemblage, "SA", b.ID)
	ssa := f.item(t, domain.KindSousSousAssemblage, "SSA", b.ID)
	piece := f.item(t, domain.KindPiece, "Vis", b.ID)
	ctx := context.Background()

	add := NewAddLinkHandler(f.links, f.items)
	for _, c := range []AddLinkCommand{
		{LinkKind: domain.LinkSASSA, ParentID: sa.ID, ChildID: ssa.ID, Quantity: 1},
		{LinkKind: domain.LinkSSAPiece, ParentID: ssa.ID, ChildID: piece.ID, Quantity: 2},
		{LinkKind: domain.LinkSAPiece, ParentID: sa.ID, ChildID: piece.ID, Quantity: 4},
	} {
		if _, err := add.Handle(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	if err := NewDeleteItemHandler(f.items).Handle(ctx, DeleteItemCommand{Kind: domain.KindSousSousAssemblage, ID: ssa.ID}); err != nil {
		t.Fatal(err)
	}

	var remaining []domain.CompositionLink
	f.db.Find(&remaining)
	if len(remaining) != 1 || remaining[0].LinkKind != domain.LinkSAPiece {
		t.Errorf("remaining links = %+v", remaining)
	}
	if _, err := f.items.FindByID(ctx, domain.KindSousSousAssemblage, ssa.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("item still present: %v", err)
	}
}

func TestDeleteItemRemovesTemplateBOMRows(t *testing.T) {
	f := newFixture(t)
	b := f.borne(t, "B1")
	vis := f.item(t, domain.KindPiece, "Vis", b.ID)
	ecrou := f.item(t, domain.KindPiece, "Ecrou", b.ID)
	ctx := context.Background()

	rows := []tasktemplate.TemplateItem{
		{TemplateID: 1, Kind: domain.KindPiece, ItemID: vis.ID, Quantity: 2},
		{TemplateID: 1, Kind: domain.KindPiece, ItemID: ecrou.ID, Quantity: 2},
	}
	if err := f.db.Create(&rows).Error; err != nil {
		t.Fatalf("seed template items: %v", err)
	}

	if err := NewDeleteItemHandler(f.items).Handle(ctx, DeleteItemCommand{Kind: domain.KindPiece, ID: vis.ID}); err != nil {
		t.Fatal(err)
	}

	var remaining []tasktemplate.TemplateItem
	f.db.Find(&remaining)
	if len(remaining) != 1 || remaining[0].ItemID != ecrou.ID {
		t.Errorf("remaining template items = %+v, want only the Ecrou row", remaining)
	}
}

type recordingPublisher struct {
	events []kafka.StockMovedEvent
}

func (p *recordingPublisher) PublishStockMoved(_ context.Context, e kafka.StockMovedEvent) error {
	p.events = append(p.events, e)
	return nil
}

func TestMoveStockNeverNegative(t *testing.T) {
	f := newFixture(t)
	b := f.borne(t, "B1")
	it := f.item(t, domain.KindPiece, "Vis", b.ID)
	ctx := context.Background()
	pub := &recordingPublisher{}
	h := NewMoveStockHandler(f.stock, pub)

	user := uint(12)
	steps := []struct {
		op      domain.Operation
		qty     int
		want    int
		wantErr bool
	}{
		{domain.OperationAdd, 5, 5, false},
		{domain.OperationRemove, 3, 2, false},
		{domain.OperationRemove, 3, 2, true},
		{domain.OperationRemove, 2, 0, false},
		{domain.OperationRemove, 1, 0, true},
	}
	for i, s := range steps {
		m, err := h.Handle(ctx, MoveStockCommand{Kind: domain.KindPiece, ItemID: it.ID, Operation: s.op, Quantity: s.qty, UserID: &user})
		if s.wantErr {
			if !apperror.IsInvalid(err) {
				t.Fatalf("step %d: expected invalid request, got %v", i, err)
			}
		} else if err != nil {
			t.Fatalf("step %d: %v", i, err)
		} else if m.NewQuantity != s.want {
			t.Fatalf("step %d: new quantity %d, want %d", i, m.NewQuantity, s.want)
		}

		current, _ := f.items.FindByID(ctx, domain.KindPiece, it.ID)
		if current.Quantity != s.want {
			t.Fatalf("step %d: stored quantity %d, want %d", i, current.Quantity, s.want)
		}
	}

	var logs []domain.StockLog
	f.db.Find(&logs)
	if len(logs) != 3 {
		t.Errorf("expected one log per applied movement, got %d", len(logs))
	}
	if len(pub.events) != 3 || pub.events[2].NewQuantity != 0 {
		t.Errorf("published %+v", pub.events)
	}
	if logs[0].UserID == nil || *logs[0].UserID != user {
		t.Errorf("movement not attributed: %+v", logs[0])
	}

	if _, err := h.Handle(ctx, MoveStockCommand{Kind: domain.KindPiece, ItemID: 999, Operation: domain.OperationAdd, Quantity: 1}); !apperror.IsNotFound(err) {
		t.Errorf("unknown item: expected not found, got %v", err)
	}
}
