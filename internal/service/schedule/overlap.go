package schedule

import (
	"time"

	"travelink/internal/domain"
)

// Overlaps reports whether two half-open time intervals [startA, endA) and
// [startB, endB) intersect. Touching endpoints do not count: a trip ending at
// 16:00 does not conflict with one departing at 16:00.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}

// findConflicts returns the trips whose occupied window overlaps the candidate
// interval, skipping excludeID (the trip being edited, if any). Callers pass
// only SCHEDULED or DEPARTED trips; cancelled and arrived ones never conflict.
func findConflicts(trips []domain.Schedule, from, to time.Time, excludeID string) []domain.Schedule {
	var conflicts []domain.Schedule
	for _, trip := range trips {
		if trip.ID == excludeID {
			continue
		}
		start, end := trip.Window()
		if Overlaps(from, to, start, end) {
			conflicts = append(conflicts, trip)
		}
	}
	return conflicts
}
