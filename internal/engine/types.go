package engine

import "time"

// Appointment is one row of the upcoming view and one item of the feed
// document. Date and Start keep their wire form: zero-padded ISO strings
// compare lexicographically in calendar order, which the presenter relies on.
type Appointment struct {
	// ID is a unique identifier used for stability in lists.
	ID string `json:"id"`

	// Title is the display text.
	Title string `json:"title"`

	// Date is the calendar date of the appointment, "2006-01-02".
	Date string `json:"date"`

	// Start is the time of day, "15:04".
	Start string `json:"start"`

	// DurationMin is the planned length in minutes.
	DurationMin int `json:"durationMin"`
}

// Priority classifies an urgent todo. Band order is fixed: high before
// medium before low.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank maps a priority to its sort band. Unknown values land after low so a
// corrupt row can never jump the queue.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// UrgentTodo is a task surfaced on the urgent tab. A nil DueAt means the task
// has no deadline and sorts after dated ones within its priority band.
type UrgentTodo struct {
	ID       string
	Title    string
	Done     bool
	Priority Priority
	DueAt    *time.Time
}

// TodoSource is the storage contract the panel consumes. Implementations own
// the done flip; the panel only asks for it by id and re-reads the collection
// afterwards.
type TodoSource interface {
	UrgentTodos() []UrgentTodo
	LoadUrgentTodos() error
	ToggleUrgentDone(id string) error
}
