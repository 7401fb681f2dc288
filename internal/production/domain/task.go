package domain

import (
	"time"

	tasktemplate "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
)

// Task is a materialized unit of work of a production. Label and description
// are copied from the template when the task is created; only the label
// follows later template renames.
type Task struct {
	ID             uint                       `json:"id" gorm:"primaryKey"`
	ProductionID   uint                       `json:"productionId" gorm:"not null;index"`
	TaskTemplateID *uint                      `json:"taskTemplateId" gorm:"index"`
	Label          string                     `json:"label" gorm:"not null"`
	Description    *string                    `json:"description"`
	IsDone         bool                       `json:"isDone" gorm:"not null;index"`
	Running        bool                       `json:"running" gorm:"not null"`
	LastStartedAt  *time.Time                 `json:"lastStartedAt"`
	TotalSeconds   int                        `json:"totalSeconds" gorm:"not null"`
	AssignedToID   *uint                      `json:"assignedToId"`
	Version        int                        `json:"version" gorm:"not null"`
	Template       *tasktemplate.TaskTemplate `json:"template,omitempty" gorm:"foreignKey:TaskTemplateID"`
	Production     *Production                `json:"production,omitempty" gorm:"foreignKey:ProductionID"`
	Logs           []TaskLog                  `json:"logs,omitempty" gorm:"foreignKey:TaskID"`
	CreatedAt      time.Time                  `json:"createdAt"`
	UpdatedAt      time.Time                  `json:"updatedAt"`
}

func (Task) TableName() string {
	return "production_tasks"
}

// TaskLog is an append-only record of a task transition.
type TaskLog struct {
	ID        uint                   `json:"id" gorm:"primaryKey"`
	TaskID    uint                   `json:"taskId" gorm:"not null;index"`
	EventType tasktemplate.EventType `json:"eventType" gorm:"type:varchar(16);not null"`
	UserID    *uint                  `json:"userId,omitempty"`
	Note      *string                `json:"note,omitempty"`
	CreatedAt time.Time              `json:"createdAt" gorm:"index"`
}

func (TaskLog) TableName() string {
	return "production_task_logs"
}

// NewTaskFromTemplate snapshots the template display fields.
func NewTaskFromTemplate(productionID uint, t tasktemplate.TaskTemplate) Task {
	id := t.ID
	return Task{
		ProductionID:   productionID,
		TaskTemplateID: &id,
		Label:          t.Label,
		Description:    t.Description,
	}
}

// elapsedSeconds is the whole number of seconds between start and now.
func elapsedSeconds(start, now time.Time) int {
	d := now.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}

func (t *Task) stopClock(now time.Time) {
	if t.Running && t.LastStartedAt != nil {
		t.TotalSeconds += elapsedSeconds(*t.LastStartedAt, now)
	}
	t.Running = false
	t.LastStartedAt = nil
}

// Assign sets or clears the assignee. Legal in every state.
func (t *Task) Assign(userID *uint) {
	t.AssignedToID = userID
}

// Start moves a pending task to running.
func (t *Task) Start(now time.Time) error {
	if t.IsDone {
		return apperror.Invalid("task %d is done, reopen it first", t.ID)
	}
	if t.Running {
		return apperror.Invalid("task %d is already running", t.ID)
	}
	t.Running = true
	t.LastStartedAt = &now
	return nil
}

// Pause folds the running time into TotalSeconds.
func (t *Task) Pause(now time.Time) error {
	if !t.Running || t.LastStartedAt == nil {
		return apperror.Invalid("task %d is not running", t.ID)
	}
	t.stopClock(now)
	return nil
}

// Complete marks the task done from any state, counting running time first.
func (t *Task) Complete(now time.Time) {
	t.stopClock(now)
	t.IsDone = true
}

// Reopen moves a done task back to pending. TotalSeconds is kept.
func (t *Task) Reopen() error {
	if !t.IsDone {
		return apperror.Invalid("task %d is not done", t.ID)
	}
	t.IsDone = false
	return nil
}

// ResetTime clears the accumulated time and stops the clock. IsDone is kept.
func (t *Task) ResetTime() {
	t.TotalSeconds = 0
	t.Running = false
	t.LastStartedAt = nil
}
