package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"

	"go.uber.org/zap"
)

// ExamService drives a student's attempt from start to submission.
type ExamService interface {
	// StartAttempt returns the student's open attempt if there is one.
	StartAttempt(ctx context.Context, examID, studentID int64) (*domain.Attempt, error)
	SaveAnswer(ctx context.Context, attemptID, studentID, questionID int64, answer json.RawMessage, timeSpentSeconds int) error
	// SubmitAttempt closes the open attempt and grades it.
	SubmitAttempt(ctx context.Context, examID, studentID int64) (*domain.AttemptDetail, error)
}

type examService struct {
	exams    domain.ExamRepository
	attempts domain.AttemptRepository
	grading  GradingEngine
}

func NewExamService(exams domain.ExamRepository, attempts domain.AttemptRepository, grading GradingEngine) ExamService {
	return &examService{exams: exams, attempts: attempts, grading: grading}
}

// StartAttempt implements ExamService
func (s *examService) StartAttempt(ctx context.Context, examID, studentID int64) (*domain.Attempt, error) {
	exam, err := s.exams.GetExamByID(ctx, examID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load exam", err)
	}
	if exam == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("exam %d not found", examID))
	}
	if exam.Status != domain.ExamPublished {
		return nil, domain.NewInvalidStateError("exam is not open for attempts")
	}

	latest, err := s.attempts.GetLatestAttempt(ctx, examID, studentID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load attempt", err)
	}
	if latest != nil {
		if latest.Status == domain.AttemptInProgress {
			return latest, nil
		}
		return nil, domain.NewInvalidStateError("exam has already been submitted")
	}

	attempt := &domain.Attempt{
		ExamID:    examID,
		StudentID: studentID,
		Status:    domain.AttemptInProgress,
		StartedAt: time.Now(),
	}
	if err := s.attempts.CreateAttempt(ctx, attempt); err != nil {
		return nil, domain.NewInternalError("Failed to create attempt", err)
	}
	logger.Get().Info("Attempt started",
		zap.Int64("attempt_id", attempt.ID),
		zap.Int64("exam_id", examID),
		zap.Int64("student_id", studentID))
	return attempt, nil
}

// SaveAnswer implements ExamService
func (s *examService) SaveAnswer(ctx context.Context, attemptID, studentID, questionID int64, answer json.RawMessage, timeSpentSeconds int) error {
	if timeSpentSeconds < 0 {
		return domain.NewInvalidInputError("time_spent must not be negative")
	}
	attempt, err := s.attempts.GetAttemptByID(ctx, attemptID)
	if err != nil {
		return domain.NewInternalError("Failed to load attempt", err)
	}
	if attempt == nil {
		return domain.NewNotFoundError(fmt.Sprintf("attempt %d not found", attemptID))
	}
	if attempt.StudentID != studentID {
		return domain.NewForbiddenError("attempt belongs to another student")
	}
	if attempt.Status != domain.AttemptInProgress {
		return domain.NewInvalidStateError("attempt is no longer in progress")
	}

	questions, err := s.exams.GetExamQuestions(ctx, attempt.ExamID)
	if err != nil {
		return domain.NewInternalError("Failed to load exam questions", err)
	}
	found := false
	for _, eq := range questions {
		if eq.Question.ID == questionID {
			found = true
			break
		}
	}
	if !found {
		return domain.NewInvalidInputError(fmt.Sprintf("question %d is not part of this exam", questionID))
	}

	if err := s.attempts.UpsertAnswer(ctx, &domain.AttemptAnswer{
		AttemptID:        attemptID,
		QuestionID:       questionID,
		StudentAnswer:    answer,
		TimeSpentSeconds: timeSpentSeconds,
		UpdatedAt:        time.Now(),
	}); err != nil {
		return domain.NewInternalError("Failed to save answer", err)
	}
	return nil
}

// SubmitAttempt implements ExamService
func (s *examService) SubmitAttempt(ctx context.Context, examID, studentID int64) (*domain.AttemptDetail, error) {
	attempt, err := s.attempts.GetLatestAttempt(ctx, examID, studentID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load attempt", err)
	}
	if attempt == nil {
		return nil, domain.NewNotFoundError("no attempt to submit")
	}
	if attempt.Status != domain.AttemptInProgress {
		return nil, domain.NewInvalidStateError("attempt has already been submitted")
	}

	now := time.Now()
	attempt.Status = domain.AttemptSubmitted
	attempt.SubmittedAt = &now
	if err := s.attempts.UpdateAttempt(ctx, attempt); err != nil {
		return nil, domain.NewInternalError("Failed to submit attempt", err)
	}
	logger.Get().Info("Attempt submitted",
		zap.Int64("attempt_id", attempt.ID),
		zap.Int64("exam_id", examID),
		zap.Int64("student_id", studentID))

	return s.grading.GradeAttempt(ctx, attempt.ID)
}
