package model

type Course struct {
	ID               ID       `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Rating           float64  `json:"rating,omitempty"`
	Duration         string   `json:"duration,omitempty"`
	Level            string   `json:"level,omitempty"`
	Instructor       string   `json:"instructor,omitempty"`
	InstructorAvatar string   `json:"instructorAvatar,omitempty"`
	ImgSrc           string   `json:"imgSrc,omitempty"`
	Hours            int      `json:"hours,omitempty"`
	Lectures         int      `json:"lectures,omitempty"`
	Exercises        int      `json:"exercises,omitempty"`
	Modules          []Module `json:"modules"`
}

const (
	defaultLectures   = 4
	minutesPerLecture = 25
)

type Module struct {
	ID            ID     `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	TotalLectures int    `json:"totalLectures,omitempty"`
}

// LectureCount falls back to four lectures when the backend leaves the count empty.
func (m Module) LectureCount() int {
	if m.TotalLectures <= 0 {
		return defaultLectures
	}
	return m.TotalLectures
}

func (m Module) EstimatedMinutes() int {
	return m.LectureCount() * minutesPerLecture
}
