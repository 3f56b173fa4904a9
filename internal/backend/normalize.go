package backend

import (
	"course-view-go/internal/model"
	"encoding/json"
	"strconv"
	"strings"
)

// Field names the backend has used for each flag, newest first.
var progressKeys = map[model.Flag][]string{
	model.FlagReadingMaterial: {"readingMaterialCompleted", "readingMaterial"},
	model.FlagVideo:           {"videoCompleted", "video"},
	model.FlagAssignment:      {"assignmentCompleted", "assignment"},
	model.FlagQuiz:            {"quizCompleted", "quiz"},
}

func normalizeProgress(raw map[string]json.RawMessage) model.ModuleProgress {
	var p model.ModuleProgress
	for _, f := range model.Flags {
		for _, key := range progressKeys[f] {
			v, ok := raw[key]
			if !ok {
				continue
			}
			if truthy(v) {
				// cannot fail: f comes from model.Flags
				_, _ = p.Set(f)
			}
			break
		}
	}
	return p
}

// truthy accepts booleans, 0/1 numbers and their string forms.
func truthy(v json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return b
	}

	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return n != 0
	}

	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		s = strings.TrimSpace(s)
		if parsed, err := strconv.ParseBool(s); err == nil {
			return parsed
		}
		if parsed, err := strconv.ParseFloat(s, 64); err == nil {
			return parsed != 0
		}
	}

	return false
}
