package model

import "fmt"

type Flag string

const (
	FlagReadingMaterial Flag = "reading-material"
	FlagVideo           Flag = "video"
	FlagAssignment      Flag = "assignment"
	FlagQuiz            Flag = "quiz"
)

var Flags = []Flag{FlagReadingMaterial, FlagVideo, FlagAssignment, FlagQuiz}

type ModuleProgress struct {
	ReadingMaterial bool `json:"readingMaterial"`
	Video           bool `json:"video"`
	Assignment      bool `json:"assignment"`
	Quiz            bool `json:"quiz"`
}

func (p ModuleProgress) Has(f Flag) bool {
	switch f {
	case FlagReadingMaterial:
		return p.ReadingMaterial
	case FlagVideo:
		return p.Video
	case FlagAssignment:
		return p.Assignment
	case FlagQuiz:
		return p.Quiz
	}
	return false
}

// Set marks f done. Flags never go back to false, so Set reports whether anything changed.
func (p *ModuleProgress) Set(f Flag) (bool, error) {
	var target *bool
	switch f {
	case FlagReadingMaterial:
		target = &p.ReadingMaterial
	case FlagVideo:
		target = &p.Video
	case FlagAssignment:
		target = &p.Assignment
	case FlagQuiz:
		target = &p.Quiz
	default:
		return false, fmt.Errorf("unknown progress flag: %q", f)
	}

	if *target {
		return false, nil
	}
	*target = true
	return true, nil
}

func (p ModuleProgress) Merge(other ModuleProgress) ModuleProgress {
	return ModuleProgress{
		ReadingMaterial: p.ReadingMaterial || other.ReadingMaterial,
		Video:           p.Video || other.Video,
		Assignment:      p.Assignment || other.Assignment,
		Quiz:            p.Quiz || other.Quiz,
	}
}

func (p ModuleProgress) Count() int {
	n := 0
	for _, f := range Flags {
		if p.Has(f) {
			n++
		}
	}
	return n
}
