package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/domain"
	tasktemplate "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/kafka"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/logger"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/metrics"
)

// Action is a timer transition requested on a production task.
type Action string

const (
	ActionAssign    Action = "assign"
	ActionStart     Action = "start"
	ActionPause     Action = "pause"
	ActionComplete  Action = "complete"
	ActionReopen    Action = "reopen"
	ActionResetTime Action = "reset-time"
)

// ParseAction validates s as a task action.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionAssign, ActionStart, ActionPause, ActionComplete, ActionReopen, ActionResetTime:
		return Action(s), nil
	}
	return "", apperror.Invalid("unknown task action %q", s)
}

// TaskPublisher receives task transitions.
type TaskPublisher interface {
	PublishTaskEvent(ctx context.Context, event kafka.TaskEvent) error
}

// TransitionTaskCommand applies one action to a task. AssigneeID is only
// read by assign. When ExpectedVersion is set the action fails with a
// conflict if the task changed since the caller read it.
type TransitionTaskCommand struct {
	TaskID          uint
	Action          Action
	UserID          *uint
	AssigneeID      *uint
	Note            string
	ExpectedVersion *int
}

// TransitionTaskHandler handles the task execution state machine
type TransitionTaskHandler struct {
	tasks       domain.TaskRepository
	productions domain.ProductionRepository
	publisher   TaskPublisher
	now         func() time.Time
}

// NewTransitionTaskHandler creates a new task transition handler. publisher
// may be nil.
func NewTransitionTaskHandler(tasks domain.TaskRepository, productions domain.ProductionRepository, publisher TaskPublisher) *TransitionTaskHandler {
	return &TransitionTaskHandler{tasks: tasks, productions: productions, publisher: publisher, now: time.Now}
}

// Handle loads the task, applies the action and saves it with its log entry
// in one conditional write.
func (h *TransitionTaskHandler) Handle(ctx context.Context, cmd TransitionTaskCommand) (*domain.Task, error) {
	task, err := h.tasks.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return nil, lookupErr(err, "task", cmd.TaskID)
	}
	if cmd.ExpectedVersion != nil && *cmd.ExpectedVersion != task.Version {
		return nil, apperror.Conflict("task %d is at version %d, not %d", task.ID, task.Version, *cmd.ExpectedVersion)
	}
	version := task.Version

	event, err := apply(task, cmd, h.now())
	if err != nil {
		return nil, err
	}

	// ASSIGNED entries record the assignee, every other entry the actor.
	entry := &domain.TaskLog{EventType: event, UserID: cmd.UserID}
	if cmd.Action == ActionAssign {
		entry.UserID = cmd.AssigneeID
	}
	if note := strings.TrimSpace(cmd.Note); note != "" {
		entry.Note = &note
	}
	if err := h.tasks.SaveTransition(ctx, task, version, entry); err != nil {
		if apperror.IsConflict(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save task %d: %w", task.ID, err)
	}
	metrics.TaskTransitions.WithLabelValues(string(event)).Inc()

	if cmd.Action == ActionStart {
		if err := h.productions.PromoteIfPlanned(ctx, task.ProductionID); err != nil {
			return nil, fmt.Errorf("failed to start production %d: %w", task.ProductionID, err)
		}
	}

	logger.Info(ctx).
		Uint("task_id", task.ID).
		Uint("production_id", task.ProductionID).
		Str("event", string(event)).
		Int("total_seconds", task.TotalSeconds).
		Msg("Task transition")
	h.publish(ctx, task, event, cmd.UserID)

	task, err = h.tasks.FindByID(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task %d: %w", cmd.TaskID, err)
	}
	return task, nil
}

func apply(task *domain.Task, cmd TransitionTaskCommand, now time.Time) (tasktemplate.EventType, error) {
	switch cmd.Action {
	case ActionAssign:
		task.Assign(cmd.AssigneeID)
		return tasktemplate.EventAssigned, nil
	case ActionStart:
		return tasktemplate.EventStarted, task.Start(now)
	case ActionPause:
		return tasktemplate.EventPaused, task.Pause(now)
	case ActionComplete:
		task.Complete(now)
		return tasktemplate.EventCompleted, nil
	case ActionReopen:
		return tasktemplate.EventReopened, task.Reopen()
	case ActionResetTime:
		task.ResetTime()
		return tasktemplate.EventReset, nil
	}
	return "", apperror.Invalid("unknown task action %q", cmd.Action)
}

// publish forwards the transition to the event stream. Failures are logged
// only; the transition is already committed.
func (h *TransitionTaskHandler) publish(ctx context.Context, task *domain.Task, event tasktemplate.EventType, userID *uint) {
	if h.publisher == nil {
		return
	}
	err := h.publisher.PublishTaskEvent(ctx, kafka.TaskEvent{
		TaskID:       task.ID,
		ProductionID: task.ProductionID,
		TemplateID:   task.TaskTemplateID,
		Transition:   string(event),
		TotalSeconds: task.TotalSeconds,
		UserID:       userID,
	})
	if err != nil {
		logger.Warn(ctx).Err(err).Uint("task_id", task.ID).Msg("Failed to publish task event")
	}
}
