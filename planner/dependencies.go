package planner

import "github.com/kvit-dev/caleoban/models"

// BlockingDependencies returns the dependency ids of task that resolve to an
// existing task which is not done yet, in dependsOn order. Ids that no longer
// resolve are ignored: a deleted dependency does not block.
func BlockingDependencies(task models.Task, all []models.Task) []string {
	if len(task.DependsOn) == 0 {
		return nil
	}
	byID := make(map[string]models.Task, len(all))
	for _, t := range all {
		if t.ID != "" {
			byID[t.ID] = t
		}
	}

	var blockers []string
	for _, id := range task.DependsOn {
		dep, ok := byID[id]
		if ok && dep.Status != models.StatusDone {
			blockers = append(blockers, id)
		}
	}
	return blockers
}

// IsBlocked reports whether task may not move to done yet.
func IsBlocked(task models.Task, all []models.Task) bool {
	return len(BlockingDependencies(task, all)) > 0
}
