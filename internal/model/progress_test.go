package model

import (
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestModuleProgressSetIsMonotonic(t *testing.T) {
	var p ModuleProgress

	changed, err := p.Set(FlagVideo)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, p.Video)

	changed, err = p.Set(FlagVideo)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, p.Video)

	_, err = p.Set(Flag("homework"))
	assert.Error(t, err)
	assert.Equal(t, 1, p.Count())
}

func TestModuleProgressMerge(t *testing.T) {
	local := ModuleProgress{Video: true}
	server := ModuleProgress{Quiz: true}

	merged := local.Merge(server)
	assert.Equal(t, ModuleProgress{Video: true, Quiz: true}, merged)
	assert.Equal(t, merged, server.Merge(local))
}

func TestModuleLectureFallback(t *testing.T) {
	assert.Equal(t, 4, Module{}.LectureCount())
	assert.Equal(t, 100, Module{}.EstimatedMinutes())
	assert.Equal(t, 150, Module{TotalLectures: 6}.EstimatedMinutes())
}

func TestNewQuiz(t *testing.T) {
	q := NewQuiz("Intro", "https://forms.example/q", false)
	assert.Equal(t, "Intro - Quiz", q.Title)
	assert.Equal(t, QuizNotStarted, q.Status)
	assert.Equal(t, "Not Started", q.StatusLabel)

	q = NewQuiz("Intro", "https://forms.example/q", true)
	assert.Equal(t, QuizCompleted, q.Status)
	assert.Equal(t, "Completed", q.StatusLabel)
}

func TestMaterialFileName(t *testing.T) {
	assert.Equal(t, "material_7.pdf", ReadingMaterial{ID: "7"}.FileName())
	assert.Equal(t, "In Progress", Assignment{Status: AssignmentInProgress}.StatusLabel())
}

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var m Module
	require.NoError(t, json.Unmarshal([]byte(`{"id": 12, "title": "Loops"}`), &m))
	assert.Equal(t, ID("12"), m.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "abc"}`), &m))
	assert.Equal(t, ID("abc"), m.ID)

	assert.Error(t, json.Unmarshal([]byte(`{"id": true}`), &m))
}
