package store

import (
	"time"

	"github.com/amirk1998/notes-vault/internal/models"
)

// Section is one labelled group of the note list.
type Section struct {
	Label string
	Notes []models.Note
}

const (
	SectionPinned = "Pinned"
	SectionToday  = "Today"
	SectionWeek   = "Previous 7 Days"
	SectionMonth  = "Previous 30 Days"
	SectionOlder  = "Older"

	daysInWeekGroup  = 7
	daysInMonthGroup = 30
)

// GroupNotes splits notes into the list sections. Pinned notes form their
// own section; the rest are bucketed by the calendar day of updatedAt in
// now's location, counted back from today's midnight. A note dated after
// today counts as Today. Empty sections are omitted and order within a
// section follows notes.
func GroupNotes(notes []models.Note, now time.Time) []Section {
	labels := []string{SectionPinned, SectionToday, SectionWeek, SectionMonth, SectionOlder}
	buckets := make(map[string][]models.Note, len(labels))

	today := startOfDay(now)
	for _, n := range notes {
		label := SectionOlder
		switch days := daysBetween(startOfDay(n.UpdatedAt.In(now.Location())), today); {
		case n.IsPinned:
			label = SectionPinned
		case days <= 0:
			label = SectionToday
		case days <= daysInWeekGroup:
			label = SectionWeek
		case days <= daysInMonthGroup:
			label = SectionMonth
		}
		buckets[label] = append(buckets[label], n)
	}

	sections := make([]Section, 0, len(labels))
	for _, label := range labels {
		if len(buckets[label]) > 0 {
			sections = append(sections, Section{Label: label, Notes: buckets[label]})
		}
	}
	return sections
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b, both at midnight.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Round(time.Hour).Hours() / 24)
}
