package lifecycle

import (
	"github.com/fieldserve/inspector-api/models"
)

// transitions is the closed set of legal status moves. Pending inspectors
// activate or are retired without ever activating; mobilized inspectors either
// demobilize or are terminated outright; demobilized inspectors remobilize,
// return to the bench, or retire.
var transitions = map[models.InspectorStatus][]models.InspectorStatus{
	models.StatusPending:     {models.StatusActive, models.StatusInactive},
	models.StatusActive:      {models.StatusMobilized, models.StatusInactive},
	models.StatusMobilized:   {models.StatusDemobilized, models.StatusInactive},
	models.StatusDemobilized: {models.StatusActive, models.StatusMobilized, models.StatusInactive},
	models.StatusInactive:    {},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to models.InspectorStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// AllowedSources lists every status from which the target status is reachable.
func AllowedSources(to models.InspectorStatus) []models.InspectorStatus {
	var sources []models.InspectorStatus
	for from, targets := range transitions {
		for _, t := range targets {
			if t == to {
				sources = append(sources, from)
			}
		}
	}
	return sources
}
