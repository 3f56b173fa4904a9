package progress

import (
	"course-view-go/internal/model"
	"math"
)

const PointsPerFlag = 25

const (
	StatusNotStarted     = "Not Started"
	StatusInProgress     = "In Progress"
	StatusAlmostComplete = "Almost Complete"
	StatusCompleted      = "Completed"
)

// ModulePercentage is 25 points for every flag set, so one of 0, 25, 50, 75 or 100.
func ModulePercentage(p model.ModuleProgress) int {
	return p.Count() * PointsPerFlag
}

func Status(pct int) string {
	switch {
	case pct <= 0:
		return StatusNotStarted
	case pct < 50:
		return StatusInProgress
	case pct < 100:
		return StatusAlmostComplete
	default:
		return StatusCompleted
	}
}

func Color(pct int) string {
	if pct >= 100 {
		return "green"
	}
	return "purple"
}

// CourseAverage is the unweighted mean of the module percentages, rounded to the
// nearest integer. Modules whose progress could not be fetched must be passed as 0.
func CourseAverage(modules []int) int {
	if len(modules) == 0 {
		return 0
	}

	total := 0
	for _, pct := range modules {
		total += pct
	}

	return int(math.Round(float64(total) / float64(len(modules))))
}
