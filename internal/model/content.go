package model

type ReadingMaterial struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
}

func (m ReadingMaterial) FileName() string {
	return MaterialFileName(m.ID)
}

func MaterialFileName(materialID ID) string {
	return "material_" + string(materialID) + ".pdf"
}

type VideoLecture struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Duration    string `json:"duration,omitempty"`
	YoutubeLink string `json:"youtubeLink"`
}

const (
	AssignmentCompleted  = "completed"
	AssignmentInProgress = "in-progress"
)

type Assignment struct {
	ID     ID     `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status,omitempty"`
}

func (a Assignment) StatusLabel() string {
	return itemStatusLabel(a.Status)
}

func itemStatusLabel(status string) string {
	switch status {
	case AssignmentCompleted:
		return "Completed"
	case AssignmentInProgress:
		return "In Progress"
	default:
		return "Not Started"
	}
}
