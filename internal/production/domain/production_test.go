package domain

import (
	"testing"
	"time"

	tasktemplate "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
)

func TestStatusTransitions(t *testing.T) {
	allowed := [][2]Status{
		{StatusPlanned, StatusInProgress},
		{StatusPlanned, StatusCanceled},
		{StatusInProgress, StatusDone},
		{StatusInProgress, StatusCanceled},
		{StatusDone, StatusDone},
	}
	for _, tr := range allowed {
		if err := tr[0].TransitionTo(tr[1]); err != nil {
			t.Errorf("%s -> %s: %v", tr[0], tr[1], err)
		}
	}

	denied := [][2]Status{
		{StatusPlanned, StatusDone},
		{StatusDone, StatusInProgress},
		{StatusCanceled, StatusPlanned},
		{StatusInProgress, StatusPlanned},
	}
	for _, tr := range denied {
		if err := tr[0].TransitionTo(tr[1]); !apperror.IsInvalid(err) {
			t.Errorf("%s -> %s: expected invalid request, got %v", tr[0], tr[1], err)
		}
	}
}

func TestBuildLines(t *testing.T) {
	if _, err := BuildLines(nil); !apperror.IsInvalid(err) {
		t.Errorf("no lines: got %v", err)
	}
	if _, err := BuildLines([]LineInput{{BorneID: 1, Quantity: 0}}); !apperror.IsInvalid(err) {
		t.Errorf("zero quantity: got %v", err)
	}
	lines, err := BuildLines([]LineInput{{BorneID: 1, Quantity: 2}, {BorneID: 3, Quantity: 1}, {BorneID: 1, Quantity: 4}})
	if err != nil {
		t.Fatal(err)
	}
	p := Production{Lines: lines}
	if ids := p.BorneIDs(); len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Errorf("BorneIDs() = %v", ids)
	}
	if n := p.MachinesFor(1); n != 6 {
		t.Errorf("MachinesFor(1) = %d, want 6", n)
	}
}

func TestTimerAccumulation(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	task := &Task{ID: 1}

	if err := task.Start(t0); err != nil {
		t.Fatal(err)
	}
	if err := task.Pause(t0.Add(90*time.Second + 900*time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	if task.TotalSeconds != 90 {
		t.Fatalf("after first cycle TotalSeconds = %d, want 90", task.TotalSeconds)
	}
	if task.Running || task.LastStartedAt != nil {
		t.Fatal("pause must stop the clock")
	}

	t1 := t0.Add(time.Hour)
	if err := task.Start(t1); err != nil {
		t.Fatal(err)
	}
	if err := task.Pause(t1.Add(30 * time.Second)); err != nil {
		t.Fatal(err)
	}
	if task.TotalSeconds != 120 {
		t.Fatalf("after second cycle TotalSeconds = %d, want 120", task.TotalSeconds)
	}

	task.ResetTime()
	if task.TotalSeconds != 0 {
		t.Fatalf("after reset TotalSeconds = %d", task.TotalSeconds)
	}
}

func TestTimerPreconditions(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	task := &Task{ID: 2, TotalSeconds: 10}

	if err := task.Pause(t0); !apperror.IsInvalid(err) {
		t.Errorf("pause while pending: got %v", err)
	}
	if task.TotalSeconds != 10 {
		t.Errorf("failed pause changed TotalSeconds to %d", task.TotalSeconds)
	}

	task.Start(t0)
	if err := task.Start(t0.Add(time.Minute)); !apperror.IsInvalid(err) {
		t.Errorf("double start: got %v", err)
	}
	if !task.LastStartedAt.Equal(t0) {
		t.Errorf("failed start moved LastStartedAt to %v", task.LastStartedAt)
	}

	if err := task.Reopen(); !apperror.IsInvalid(err) {
		t.Errorf("reopen while running: got %v", err)
	}

	task.Complete(t0.Add(5 * time.Second))
	if !task.IsDone || task.Running || task.TotalSeconds != 15 {
		t.Errorf("complete: %+v", task)
	}
	if err := task.Start(t0); !apperror.IsInvalid(err) {
		t.Errorf("start while done: got %v", err)
	}

	if err := task.Reopen(); err != nil {
		t.Fatal(err)
	}
	if task.IsDone || task.TotalSeconds != 15 {
		t.Errorf("reopen must keep time: %+v", task)
	}

	task.Complete(t0)
	task.ResetTime()
	if !task.IsDone {
		t.Error("reset must keep IsDone")
	}
}

func TestEstimate(t *testing.T) {
	borne := uint(7)
	templateID := uint(3)
	template := &tasktemplate.TaskTemplate{ID: templateID, BorneID: &borne}

	history := []Task{{
		TaskTemplateID: &templateID,
		IsDone:         true,
		TotalSeconds:   600,
		Template:       template,
		Production:     &Production{Lines: []Line{{BorneID: borne, Quantity: 3}}},
	}}

	other := uint(9)
	open := []Task{
		{
			ID:             10,
			TaskTemplateID: &templateID,
			Template:       template,
			Production:     &Production{Lines: []Line{{BorneID: borne, Quantity: 5}}},
		},
		{
			ID:             11,
			TaskTemplateID: &other,
			Template:       &tasktemplate.TaskTemplate{ID: other},
			Production:     &Production{},
		},
		{ID: 12},
	}

	got := Estimate(open, history)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}

	first := got[0]
	if first.AvgSecondsPerMachine == nil || *first.AvgSecondsPerMachine != 200 {
		t.Fatalf("avg = %v, want 200", first.AvgSecondsPerMachine)
	}
	if *first.MachinesCount != 5 || *first.EstimatedSecondsTotal != 1000 {
		t.Errorf("machines = %d, total = %d", *first.MachinesCount, *first.EstimatedSecondsTotal)
	}

	for _, ot := range got[1:] {
		if ot.AvgSecondsPerMachine != nil || ot.MachinesCount != nil || ot.EstimatedSecondsTotal != nil {
			t.Errorf("task %d without history must have nil estimates", ot.ID)
		}
	}
}

func TestEstimateAveragesSamples(t *testing.T) {
	templateID := uint(1)
	template := &tasktemplate.TaskTemplate{ID: templateID}

	history := []Task{
		{TaskTemplateID: &templateID, TotalSeconds: 100, Template: template, Production: &Production{}},
		{TaskTemplateID: &templateID, TotalSeconds: 201, Template: template, Production: &Production{}},
	}
	open := []Task{{TaskTemplateID: &templateID, Template: template, Production: &Production{}}}

	got := Estimate(open, history)
	if *got[0].AvgSecondsPerMachine != 151 {
		t.Errorf("avg = %d, want 151", *got[0].AvgSecondsPerMachine)
	}
	if *got[0].MachinesCount != 1 || *got[0].EstimatedSecondsTotal != 151 {
		t.Errorf("generic template must count one machine, got %d", *got[0].MachinesCount)
	}
}

func TestEstimateSkipsHistoryOfDeletedTemplate(t *testing.T) {
	templateID := uint(3)

	history := []Task{{TaskTemplateID: &templateID, TotalSeconds: 400, Production: &Production{}}}
	open := []Task{{TaskTemplateID: &templateID, Production: &Production{}}}

	got := Estimate(open, history)
	if got[0].AvgSecondsPerMachine != nil || got[0].MachinesCount != nil || got[0].EstimatedSecondsTotal != nil {
		t.Errorf("estimate from a deleted template = %+v, want nil fields", got[0])
	}
}
