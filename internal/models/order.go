package models

import "strings"

// Natural-key orderings. They match the ORDER BY columns of the remote
// tables, with the id as tie-breaker, so a local-only collection lists in
// the same order a remote reload would.

func TaskLess(a, b Task) bool {
	return compareKeys(a.ID, b.ID, string(a.StartDate), string(b.StartDate), a.Activity, b.Activity) < 0
}

func KPILess(a, b KPI) bool {
	return compareKeys(a.ID, b.ID, a.Perspective, b.Perspective, a.Indicator, b.Indicator) < 0
}

func LaunchLess(a, b Launch) bool {
	return compareKeys(a.ID, b.ID, string(a.LaunchDate), string(b.LaunchDate)) < 0
}

func PublicationLess(a, b Publication) bool {
	return compareKeys(a.ID, b.ID, string(a.Date), string(b.Date), a.Time, b.Time) < 0
}

func IdeaLess(a, b Idea) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func ParticipantLess(a, b Participant) bool {
	return compareKeys(a.ID, b.ID, a.Name, b.Name) < 0
}

func PerspectiveLess(a, b Perspective) bool {
	return compareKeys(a.ID, b.ID, a.Name, b.Name) < 0
}

// compareKeys compares pairs of keys in order and falls back to the ids.
func compareKeys(idA, idB string, pairs ...string) int {
	for i := 0; i+1 < len(pairs); i += 2 {
		if c := strings.Compare(pairs[i], pairs[i+1]); c != 0 {
			return c
		}
	}
	return strings.Compare(idA, idB)
}
