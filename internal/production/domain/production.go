package domain

import (
	"time"

	catalog "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
)

// Status is the lifecycle state of a production.
type Status string

const (
	StatusPlanned    Status = "PLANNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
	StatusCanceled   Status = "CANCELED"
)

var transitions = map[Status][]Status{
	StatusPlanned:    {StatusInProgress, StatusCanceled},
	StatusInProgress: {StatusDone, StatusCanceled},
}

// ParseStatus validates s as a production status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPlanned, StatusInProgress, StatusDone, StatusCanceled:
		return Status(s), nil
	}
	return "", apperror.Invalid("unknown production status %q", s)
}

// Open reports whether productions in this status still receive tasks.
func (s Status) Open() bool {
	return s == StatusPlanned || s == StatusInProgress
}

// TransitionTo checks that the production may move from s to next. Staying
// in the same status is always allowed.
func (s Status) TransitionTo(next Status) error {
	if s == next {
		return nil
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return nil
		}
	}
	return apperror.Invalid("cannot move production from %s to %s", s, next)
}

// Production is a batch build of bornes. It owns its lines and tasks.
type Production struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"not null"`
	Reference   *string    `json:"reference" gorm:"uniqueIndex"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Status      Status     `json:"status" gorm:"type:varchar(16);not null;index"`
	Lines       []Line     `json:"lines" gorm:"foreignKey:ProductionID"`
	Tasks       []Task     `json:"tasks,omitempty" gorm:"foreignKey:ProductionID"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (Production) TableName() string {
	return "productions"
}

// BorneIDs returns the distinct bornes built by the production, in line order.
func (p *Production) BorneIDs() []uint {
	seen := make(map[uint]bool, len(p.Lines))
	var ids []uint
	for _, l := range p.Lines {
		if !seen[l.BorneID] {
			seen[l.BorneID] = true
			ids = append(ids, l.BorneID)
		}
	}
	return ids
}

// MachinesFor sums the line quantities building borneID.
func (p *Production) MachinesFor(borneID uint) int {
	total := 0
	for _, l := range p.Lines {
		if l.BorneID == borneID {
			total += l.Quantity
		}
	}
	return total
}

// Line says how many machines of one borne the production builds.
type Line struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	ProductionID uint           `json:"productionId" gorm:"not null;index"`
	BorneID      uint           `json:"borneId" gorm:"not null;index"`
	Quantity     int            `json:"quantity" gorm:"not null"`
	Borne        *catalog.Borne `json:"borne,omitempty" gorm:"foreignKey:BorneID"`
}

func (Line) TableName() string {
	return "production_lines"
}

// LineInput is a requested production line.
type LineInput struct {
	BorneID  uint `json:"borneId"`
	Quantity int  `json:"quantity"`
}

// BuildLines validates the requested lines. At least one is required.
func BuildLines(inputs []LineInput) ([]Line, error) {
	if len(inputs) == 0 {
		return nil, apperror.Invalid("a production needs at least one line")
	}
	lines := make([]Line, 0, len(inputs))
	for _, in := range inputs {
		if in.BorneID == 0 {
			return nil, apperror.Invalid("borneId is required on every line")
		}
		if in.Quantity <= 0 {
			return nil, apperror.Invalid("quantity of borne %d must be greater than zero", in.BorneID)
		}
		lines = append(lines, Line{BorneID: in.BorneID, Quantity: in.Quantity})
	}
	return lines, nil
}
