package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"quiz-forge/internal/domain"
)

const (
	GlobalKeyPrefix = "quizforge"

	gradingService = "grading"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// ShortAnswerGradeKey identifies an AI judgment of one short answer.
func ShortAnswerGradeKey(questionID int64, studentAnswer string) string {
	return GenerateCacheKey(gradingService, "short", strconv.FormatInt(questionID, 10), answerHash(studentAnswer))
}

// BlankGradeKey identifies an AI judgment of one blank.
func BlankGradeKey(questionID int64, blankIndex int, studentValue string) string {
	return GenerateCacheKey(gradingService, "blank", strconv.FormatInt(questionID, 10), strconv.Itoa(blankIndex), answerHash(studentValue))
}

// answerHash makes answers that differ only in case or spacing share a key.
func answerHash(s string) string {
	sum := sha256.Sum256([]byte(domain.NormalizeText(s)))
	return hex.EncodeToString(sum[:16])
}
