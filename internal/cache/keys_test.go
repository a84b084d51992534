package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "grading",
			objectType:  "short",
			identifier:  "12",
			expectedKey: "quizforge:grading:short:12",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "grading",
			objectType:  "short",
			identifier:  "12",
			paramsKey:   []string{},
			expectedKey: "quizforge:grading:short:12",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "grading",
			objectType:  "blank",
			identifier:  "7",
			paramsKey:   []string{"0", "abc"},
			expectedKey: "quizforge:grading:blank:7:0_abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedKey, GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...))
		})
	}
}

func TestGradeKeys(t *testing.T) {
	a := ShortAnswerGradeKey(3, "Goroutines are  LIGHTWEIGHT")
	b := ShortAnswerGradeKey(3, "goroutines are lightweight")
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "quizforge:grading:short:3:"))
	assert.NotEqual(t, a, ShortAnswerGradeKey(4, "goroutines are lightweight"))

	assert.NotEqual(t, BlankGradeKey(3, 0, "paris"), BlankGradeKey(3, 1, "paris"))
	assert.True(t, strings.HasPrefix(BlankGradeKey(3, 1, "x"), "quizforge:grading:blank:3:1_"))
}
