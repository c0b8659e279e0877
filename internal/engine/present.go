package engine

import (
	"sort"
	"time"

	"pinpanel/internal/config"
)

// UpcomingAppointments returns the items dated today or later, ordered by
// date then start time. The cut is calendar-based, not timestamp-based: an
// appointment earlier today stays listed until the day is over. The input
// slice is left untouched and equal keys keep their incoming order.
func UpcomingAppointments(all []Appointment, today time.Time) []Appointment {
	day := today.Format(config.DateLayoutISO)

	out := make([]Appointment, 0, len(all))
	for _, a := range all {
		if a.Date >= day {
			out = append(out, a)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Start < out[j].Start
	})
	return out
}

// PendingTodos filters out completed items. Callers apply this before
// SortedUrgent; the urgent tab count is the length of this slice.
func PendingTodos(all []UrgentTodo) []UrgentTodo {
	out := make([]UrgentTodo, 0, len(all))
	for _, t := range all {
		if !t.Done {
			out = append(out, t)
		}
	}
	return out
}

// SortedUrgent orders open todos by priority band, then due time with
// undated items last within their band. Equal keys keep their incoming
// order; the input slice is left untouched.
func SortedUrgent(open []UrgentTodo) []UrgentTodo {
	out := make([]UrgentTodo, len(open))
	copy(out, open)

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Priority.Rank(), out[j].Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return dueBefore(out[i].DueAt, out[j].DueAt)
	})
	return out
}

// dueBefore orders two optional due times, nil sorting last.
func dueBefore(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.Before(*b)
}
