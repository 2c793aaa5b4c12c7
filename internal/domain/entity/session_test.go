package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestExamSession_StatusHelpers — active и completed взаимоисключающие
func TestExamSession_StatusHelpers(t *testing.T) {
	s := ExamSession{Status: SessionStatusActive}
	assert.True(t, s.IsActive())
	assert.False(t, s.IsCompleted())

	s.Status = SessionStatusCompleted
	assert.False(t, s.IsActive())
	assert.True(t, s.IsCompleted())
}

// TestExamSession_ProgressPercent — прогресс считается от фиксированной длины экзамена
func TestExamSession_ProgressPercent(t *testing.T) {
	tests := []struct {
		itemIndex int
		expected  int
	}{
		{0, 0},
		{1, 1},
		{37, 37},
		{50, 50},
		{100, 100},
	}

	for _, tt := range tests {
		s := ExamSession{ItemIndex: tt.itemIndex}
		assert.Equal(t, tt.expected, s.ProgressPercent(), "item_index=%d", tt.itemIndex)
	}
}

// TestExamSession_CurrentCategory — категория текущего слота берётся из blueprint
func TestExamSession_CurrentCategory(t *testing.T) {
	s := ExamSession{
		ItemIndex: 1,
		Blueprint: CategoryArray{CategoryMicrobiology, CategoryImmunology, CategoryLabOps},
	}
	assert.Equal(t, CategoryImmunology, s.CurrentCategory())
}
