package model

const (
	QuizCompleted  = "completed"
	QuizNotStarted = "not-started"
)

// Quiz wraps the externally hosted form. There is exactly one per module and it is
// never fetched from the backend.
type Quiz struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Questions      int    `json:"questions"`
	TimeLimit      string `json:"timeLimit"`
	Status         string `json:"status"`
	StatusLabel    string `json:"statusLabel"`
	AvailableUntil string `json:"availableUntil"`
	FormURL        string `json:"formUrl"`
}

func NewQuiz(moduleTitle, formURL string, completed bool) Quiz {
	status := QuizNotStarted
	if completed {
		status = QuizCompleted
	}

	return Quiz{
		ID:             "q1",
		Title:          moduleTitle + " - Quiz",
		Questions:      10,
		TimeLimit:      "15 minutes",
		Status:         status,
		StatusLabel:    itemStatusLabel(status),
		AvailableUntil: "30 days from now",
		FormURL:        formURL,
	}
}
