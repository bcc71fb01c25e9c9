package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Task is the immutable input to a run: a free-text objective plus the
// capital allocation it may deploy. Symbols are supplied separately so one
// task can fan out across a portfolio.
type Task struct {
	ID         uuid.UUID       `json:"id"`
	Objective  string          `json:"objective"`
	Allocation decimal.Decimal `json:"allocation"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewTask creates a task with a fresh identifier
func NewTask(objective string, allocation decimal.Decimal) Task {
	return Task{
		ID:         uuid.New(),
		Objective:  objective,
		Allocation: allocation,
		CreatedAt:  time.Now().UTC(),
	}
}
