package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"quiz-forge/internal/config"
	"quiz-forge/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	teacherID = int64(900)
	studentID = int64(42)
	examID    = int64(1)
	attemptID = int64(10)
)

var (
	singleQ = &domain.Question{ID: 1, Type: domain.QuestionTypeSingle, Stem: "Capital of France?", Options: map[string]string{"A": "Paris", "B": "Rome"}, Answer: json.RawMessage(`"A"`)}
	blankQ  = &domain.Question{ID: 2, Type: domain.QuestionTypeBlank, Stem: "The capital of France is ____ and the tower was finished in ____.", Answer: json.RawMessage(`["Paris", "1889"]`)}
	shortQ  = &domain.Question{ID: 3, Type: domain.QuestionTypeShort, Stem: "What is a goroutine?", Answer: json.RawMessage(`"A lightweight thread managed by the Go runtime."`), Rubric: "mention runtime scheduling", Keywords: []string{"lightweight", "runtime"}}
	multiQ  = &domain.Question{ID: 4, Type: domain.QuestionTypeMultiple, Stem: "Which are prime?", Options: map[string]string{"A": "2", "B": "3", "C": "4"}, Answer: json.RawMessage(`["A", "B"]`)}
)

type gradingFixture struct {
	exams    *MockExamRepository
	attempts *memAttemptRepository
	tx       *passthroughTx
	engine   GradingEngine
}

func newGradingFixture(t *testing.T, grader domain.AnswerGrader, status domain.AttemptStatus, questions ...*domain.ExamQuestion) *gradingFixture {
	t.Helper()
	total := 0.0
	for _, eq := range questions {
		total += eq.Points
	}
	exams := new(MockExamRepository)
	exams.On("GetExamByID", mock.Anything, examID).Return(&domain.Exam{ID: examID, Status: domain.ExamPublished, TotalScore: total, PublishedBy: teacherID}, nil)
	exams.On("GetExamQuestions", mock.Anything, examID).Return(questions, nil)

	attempts := newMemAttemptRepository(&domain.Attempt{ID: attemptID, ExamID: examID, StudentID: studentID, Status: status})
	tx := &passthroughTx{}
	return &gradingFixture{
		exams:    exams,
		attempts: attempts,
		tx:       tx,
		engine:   NewGradingEngine(exams, attempts, tx, grader, config.GradingConfig{Concurrency: 4}),
	}
}

func (f *gradingFixture) answer(t *testing.T, questionID int64, raw string) {
	t.Helper()
	require.NoError(t, f.attempts.UpsertAnswer(context.Background(), &domain.AttemptAnswer{
		AttemptID:     attemptID,
		QuestionID:    questionID,
		StudentAnswer: json.RawMessage(raw),
	}))
}

func weighted(q *domain.Question, points float64, order int) *domain.ExamQuestion {
	return &domain.ExamQuestion{ExamID: examID, Question: q, Points: points, SortOrder: order}
}

func intPtr(i int) *int { return &i }

func TestGradeAttempt_FillBlankPerBlankScoring(t *testing.T) {
	tests := []struct {
		name          string
		student       string
		gradeResult   *domain.AIGrade
		gradeErr      error
		useGrader     bool
		wantScore     *int
		wantCorrect   *bool
		wantAIScore   *float64
		wantStatus    domain.AttemptStatus
		wantGraderHit bool
	}{
		{
			name:        "case-only mismatch is still exact",
			student:     `["paris", "1889"]`,
			wantScore:   intPtr(10),
			wantCorrect: boolPtr(true),
			wantStatus:  domain.AttemptGraded,
		},
		{
			name:        "mismatch without capability scores zero for that blank",
			student:     `["London", "1889"]`,
			wantScore:   intPtr(5),
			wantCorrect: nil,
			wantStatus:  domain.AttemptGraded,
		},
		{
			name:        "numeric student value matches",
			student:     `["Paris", 1889]`,
			wantScore:   intPtr(10),
			wantCorrect: boolPtr(true),
			wantStatus:  domain.AttemptGraded,
		},
		{
			name:        "all wrong without capability",
			student:     `["London", "1900"]`,
			wantScore:   intPtr(0),
			wantCorrect: boolPtr(false),
			wantStatus:  domain.AttemptGraded,
		},
		{
			name:          "partial credit from capability",
			student:       `["Paris city", "1889"]`,
			useGrader:     true,
			gradeResult:   &domain.AIGrade{Score: 3.5, Feedback: "close enough"},
			wantScore:     intPtr(9),
			wantCorrect:   nil,
			wantAIScore:   func() *float64 { f := 8.5; return &f }(),
			wantStatus:    domain.AttemptAIGraded,
			wantGraderHit: true,
		},
		{
			name:          "full credit from capability",
			student:       `["City of Paris", "1889"]`,
			useGrader:     true,
			gradeResult:   &domain.AIGrade{Score: 5},
			wantScore:     intPtr(10),
			wantCorrect:   boolPtr(true),
			wantAIScore:   func() *float64 { f := 10.0; return &f }(),
			wantStatus:    domain.AttemptAIGraded,
			wantGraderHit: true,
		},
		{
			name:          "capability failure leaves answer pending",
			student:       `["London", "1889"]`,
			useGrader:     true,
			gradeErr:      domain.ErrGradingUnavailable,
			wantScore:     nil,
			wantCorrect:   nil,
			wantStatus:    domain.AttemptAIGraded,
			wantGraderHit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var grader domain.AnswerGrader
			mockGrader := new(MockAnswerGrader)
			if tt.useGrader {
				grader = mockGrader
				mockGrader.On("GradeBlank", mock.Anything, mock.MatchedBy(func(req domain.BlankGradingRequest) bool {
					return req.QuestionID == 2 && req.BlankIndex == 0 && req.CorrectValue == "Paris" && req.MaxScore == 5
				})).Return(tt.gradeResult, tt.gradeErr).Once()
			}

			f := newGradingFixture(t, grader, domain.AttemptSubmitted, weighted(blankQ, 10, 1))
			f.answer(t, 2, tt.student)

			detail, err := f.engine.GradeAttempt(context.Background(), attemptID)
			require.NoError(t, err)
			require.Len(t, detail.Answers, 1)

			got := detail.Answers[0]
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantCorrect, got.IsCorrect)
			assert.Equal(t, tt.wantAIScore, got.AIScore)
			assert.Equal(t, tt.wantStatus, detail.Status)
			if tt.wantScore == nil {
				assert.Equal(t, domain.PendingManualFeedback, got.Feedback)
				assert.Equal(t, 0, detail.TotalScore)
			} else {
				assert.Equal(t, *tt.wantScore, detail.TotalScore)
			}
			if tt.wantGraderHit {
				mockGrader.AssertExpectations(t)
			} else {
				mockGrader.AssertNotCalled(t, "GradeBlank", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestGradeAttempt_EmptyBlankSkipsCapability(t *testing.T) {
	grader := new(MockAnswerGrader)
	f := newGradingFixture(t, grader, domain.AttemptSubmitted, weighted(blankQ, 10, 1))
	f.answer(t, 2, `["", "1889"]`)

	detail, err := f.engine.GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)
	assert.Equal(t, intPtr(5), detail.Answers[0].Score)
	assert.Equal(t, domain.AttemptGraded, detail.Status)
	grader.AssertNotCalled(t, "GradeBlank", mock.Anything, mock.Anything)
}

func TestGradeAttempt_MixedAttempt(t *testing.T) {
	grader := new(MockAnswerGrader)
	grader.On("GradeShortAnswer", mock.Anything, mock.MatchedBy(func(req domain.ShortAnswerGradingRequest) bool {
		return req.QuestionID == 3 &&
			req.ReferenceAnswer == "A lightweight thread managed by the Go runtime." &&
			req.StudentAnswer == "A cheap thread" &&
			req.Rubric == "mention runtime scheduling" &&
			req.MaxScore == 10
	})).Return(&domain.AIGrade{Score: 12, Feedback: "Good", Analysis: "Misses scheduling"}, nil).Once()

	f := newGradingFixture(t, grader, domain.AttemptSubmitted,
		weighted(singleQ, 5, 1),
		weighted(multiQ, 5, 4),
		weighted(blankQ, 10, 2),
		weighted(shortQ, 10, 3),
	)
	f.answer(t, 1, `"a"`)
	f.answer(t, 2, `["Paris", "1889"]`)
	f.answer(t, 3, `"A cheap thread"`)

	detail, err := f.engine.GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)
	grader.AssertExpectations(t)

	assert.Equal(t, domain.AttemptAIGraded, detail.Status)
	assert.Equal(t, 5+10+10+0, detail.TotalScore)
	require.Len(t, detail.Answers, 4)

	// Exam order, not question id order.
	ids := []int64{}
	for _, a := range detail.Answers {
		ids = append(ids, a.QuestionID)
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, ids)

	short := detail.Answers[2]
	assert.Nil(t, short.IsCorrect)
	require.NotNil(t, short.AIScore)
	assert.Equal(t, 10.0, *short.AIScore, "clamped to the question weight")
	assert.Equal(t, "Good\nMisses scheduling", short.AIFeedback)
	assert.Equal(t, short.AIFeedback, short.Feedback)

	missing := detail.Answers[3]
	assert.Equal(t, intPtr(0), missing.Score)
	assert.Equal(t, boolPtr(false), missing.IsCorrect)
	assert.Equal(t, domain.NoAnswerFeedback, missing.Feedback)
	assert.JSONEq(t, `null`, string(missing.StudentAnswer))

	stored := f.attempts.attempt(attemptID)
	assert.Equal(t, 25, stored.TotalScore)
	assert.Equal(t, 1, f.tx.calls)
}

func TestGradeAttempt_ObjectiveRules(t *testing.T) {
	tests := []struct {
		name        string
		question    *domain.Question
		student     string
		wantScore   int
		wantCorrect bool
	}{
		{name: "single correct ignoring case", question: singleQ, student: `" a "`, wantScore: 3, wantCorrect: true},
		{name: "single wrong", question: singleQ, student: `"B"`, wantScore: 0},
		{name: "multiple order insensitive", question: multiQ, student: `["b", "A"]`, wantScore: 3, wantCorrect: true},
		{name: "multiple subset gets nothing", question: multiQ, student: `["A"]`, wantScore: 0},
		{name: "undecodable answer is wrong", question: multiQ, student: `{"x": 1}`, wantScore: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGradingFixture(t, nil, domain.AttemptSubmitted, weighted(tt.question, 2.5, 1))
			f.answer(t, tt.question.ID, tt.student)

			detail, err := f.engine.GradeAttempt(context.Background(), attemptID)
			require.NoError(t, err)
			assert.Equal(t, intPtr(tt.wantScore), detail.Answers[0].Score)
			assert.Equal(t, boolPtr(tt.wantCorrect), detail.Answers[0].IsCorrect)
			assert.Equal(t, domain.AttemptGraded, detail.Status)
		})
	}
}

func TestGradeAttempt_CapabilityFailureDoesNotAbortObjectiveItems(t *testing.T) {
	grader := new(MockAnswerGrader)
	grader.On("GradeShortAnswer", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: timeout", domain.ErrGradingUnavailable)).Once()

	f := newGradingFixture(t, grader, domain.AttemptSubmitted, weighted(singleQ, 5, 1), weighted(shortQ, 10, 2))
	f.answer(t, 1, `"A"`)
	f.answer(t, 3, `"A cheap thread"`)

	detail, err := f.engine.GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)
	assert.Equal(t, domain.AttemptAIGraded, detail.Status)
	assert.Equal(t, 5, detail.TotalScore)
	assert.Equal(t, intPtr(5), detail.Answers[0].Score)
	assert.Nil(t, detail.Answers[1].Score)
	assert.Nil(t, detail.Answers[1].IsCorrect)
	assert.Equal(t, domain.PendingManualFeedback, detail.Answers[1].Feedback)
}

func TestGradeAttempt_ShortAnswerWithoutCapability(t *testing.T) {
	f := newGradingFixture(t, nil, domain.AttemptSubmitted, weighted(shortQ, 10, 1))
	f.answer(t, 3, `"A cheap thread"`)

	detail, err := f.engine.GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)
	assert.Equal(t, domain.AttemptAIGraded, detail.Status)
	assert.Nil(t, detail.Answers[0].Score)
	assert.Equal(t, domain.PendingManualFeedback, detail.Answers[0].Feedback)
}

func TestGradeAttempt_EmptyShortAnswerSkipsCapability(t *testing.T) {
	grader := new(MockAnswerGrader)
	f := newGradingFixture(t, grader, domain.AttemptSubmitted, weighted(shortQ, 10, 1))
	f.answer(t, 3, `"   "`)

	detail, err := f.engine.GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)
	assert.Equal(t, domain.AttemptGraded, detail.Status)
	assert.Equal(t, intPtr(0), detail.Answers[0].Score)
	assert.Nil(t, detail.Answers[0].IsCorrect)
	assert.Equal(t, domain.NoAnswerFeedback, detail.Answers[0].Feedback)
	grader.AssertNotCalled(t, "GradeShortAnswer", mock.Anything, mock.Anything)
}

func TestGradeAttempt_StateGuards(t *testing.T) {
	f := newGradingFixture(t, nil, domain.AttemptInProgress, weighted(singleQ, 5, 1))
	_, err := f.engine.GradeAttempt(context.Background(), attemptID)
	assert.Equal(t, domain.ErrInvalidState, domain.CodeOf(err))

	_, err = f.engine.GradeAttempt(context.Background(), 999)
	assert.Equal(t, domain.ErrNotFound, domain.CodeOf(err))
}

func TestGradeAttempt_SaveFailure(t *testing.T) {
	f := newGradingFixture(t, nil, domain.AttemptSubmitted, weighted(singleQ, 5, 1))
	f.answer(t, 1, `"A"`)
	f.attempts.failOn = "UpdateAnswerGrading"

	_, err := f.engine.GradeAttempt(context.Background(), attemptID)
	require.Error(t, err)
	assert.Equal(t, domain.ErrInternal, domain.CodeOf(err))
}

func TestScorePrecedence(t *testing.T) {
	ctx := context.Background()
	grader := new(MockAnswerGrader)
	grader.On("GradeShortAnswer", mock.Anything, mock.Anything).Return(&domain.AIGrade{Score: 7, Feedback: "AI says 7"}, nil).Once()

	f := newGradingFixture(t, grader, domain.AttemptSubmitted, weighted(singleQ, 5, 1), weighted(shortQ, 10, 2))
	f.answer(t, 1, `"A"`)
	f.answer(t, 3, `"A cheap thread"`)

	detail, err := f.engine.GradeAttempt(ctx, attemptID)
	require.NoError(t, err)
	assert.Equal(t, 12, detail.TotalScore)

	detail, err = f.engine.UpdateAnswerScores(ctx, attemptID, teacherID, []domain.ScoreUpdate{
		{QuestionID: 3, TeacherScore: 9, TeacherFeedback: "Good enough"},
	})
	require.NoError(t, err)
	short := detail.Answers[1]
	assert.Equal(t, intPtr(9), short.Score)
	assert.Equal(t, 7.0, *short.AIScore)
	assert.Equal(t, 9.0, *short.TeacherScore)
	assert.Equal(t, "Good enough", short.Feedback)
	assert.Equal(t, 14, detail.TotalScore, "5 + 9, never 5 + 7 + 9")

	// Applying the same override twice changes nothing.
	detail, err = f.engine.UpdateAnswerScores(ctx, attemptID, teacherID, []domain.ScoreUpdate{{QuestionID: 3, TeacherScore: 9}})
	require.NoError(t, err)
	assert.Equal(t, 14, detail.TotalScore)
	assert.Equal(t, "Good enough", detail.Answers[1].Feedback)

	detail, err = f.engine.ConfirmGrade(ctx, attemptID, teacherID, nil, "")
	require.NoError(t, err)
	require.NotNil(t, detail.FinalScore)
	assert.Equal(t, 14.0, *detail.FinalScore)
	assert.True(t, detail.IsGradedByTeacher)
	assert.Equal(t, domain.AttemptGraded, detail.Status)

	stored := f.attempts.attempt(attemptID)
	require.NotNil(t, stored.GradedBy)
	assert.Equal(t, teacherID, *stored.GradedBy)
	assert.NotNil(t, stored.GradedAt)

	explicit := 15.5
	detail, err = f.engine.ConfirmGrade(ctx, attemptID, teacherID, &explicit, "Well done")
	require.NoError(t, err)
	assert.Equal(t, 15.5, *detail.FinalScore)
	assert.Equal(t, "Well done", f.attempts.attempt(attemptID).TeacherComment)
}

func TestGradeAttempt_OverrideDuringAIGradingSurvives(t *testing.T) {
	ctx := context.Background()
	var f *gradingFixture
	grader := new(MockAnswerGrader)
	grader.On("GradeShortAnswer", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			// A teacher override lands while the AI call is still out.
			_, err := f.engine.UpdateAnswerScores(ctx, attemptID, teacherID, []domain.ScoreUpdate{
				{QuestionID: 1, TeacherScore: 2, TeacherFeedback: "Partial credit"},
			})
			assert.NoError(t, err)
		}).
		Return(&domain.AIGrade{Score: 7, Feedback: "AI says 7"}, nil).Once()

	f = newGradingFixture(t, grader, domain.AttemptSubmitted, weighted(singleQ, 5, 1), weighted(shortQ, 10, 2))
	f.answer(t, 1, `"A"`)
	f.answer(t, 3, `"A cheap thread"`)

	detail, err := f.engine.GradeAttempt(ctx, attemptID)
	require.NoError(t, err)
	assert.Equal(t, 9, detail.TotalScore, "2 from the teacher, 7 from the AI")

	single := f.attempts.answer(attemptID, 1)
	require.NotNil(t, single.TeacherScore)
	assert.Equal(t, 2.0, *single.TeacherScore)
	assert.Equal(t, intPtr(2), single.Score)
	assert.Equal(t, "Partial credit", single.Feedback)
	require.NotNil(t, single.IsCorrect)
	assert.True(t, *single.IsCorrect)

	short := f.attempts.answer(attemptID, 3)
	assert.Nil(t, short.TeacherScore)
	assert.Equal(t, intPtr(7), short.Score)
	grader.AssertExpectations(t)
}

func TestUpdateAnswerScores_Guards(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		status   domain.AttemptStatus
		teacher  int64
		updates  []domain.ScoreUpdate
		wantCode domain.ErrorCode
	}{
		{name: "not the publisher", status: domain.AttemptSubmitted, teacher: 7, updates: []domain.ScoreUpdate{{QuestionID: 1, TeacherScore: 1}}, wantCode: domain.ErrForbidden},
		{name: "still in progress", status: domain.AttemptInProgress, teacher: teacherID, updates: []domain.ScoreUpdate{{QuestionID: 1, TeacherScore: 1}}, wantCode: domain.ErrInvalidState},
		{name: "above the weight", status: domain.AttemptSubmitted, teacher: teacherID, updates: []domain.ScoreUpdate{{QuestionID: 1, TeacherScore: 6}}, wantCode: domain.ErrInvalidInput},
		{name: "negative", status: domain.AttemptSubmitted, teacher: teacherID, updates: []domain.ScoreUpdate{{QuestionID: 1, TeacherScore: -1}}, wantCode: domain.ErrInvalidInput},
		{name: "question not on exam", status: domain.AttemptSubmitted, teacher: teacherID, updates: []domain.ScoreUpdate{{QuestionID: 99, TeacherScore: 1}}, wantCode: domain.ErrInvalidInput},
		{name: "no updates", status: domain.AttemptSubmitted, teacher: teacherID, wantCode: domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGradingFixture(t, nil, tt.status, weighted(singleQ, 5, 1))
			_, err := f.engine.UpdateAnswerScores(ctx, attemptID, tt.teacher, tt.updates)
			assert.Equal(t, tt.wantCode, domain.CodeOf(err))
			assert.Zero(t, f.tx.calls)
		})
	}
}

func TestUpdateAnswerScores_CreatesMissingAnswer(t *testing.T) {
	f := newGradingFixture(t, nil, domain.AttemptSubmitted, weighted(singleQ, 5, 1))

	detail, err := f.engine.UpdateAnswerScores(context.Background(), attemptID, teacherID, []domain.ScoreUpdate{{QuestionID: 1, TeacherScore: 2.5}})
	require.NoError(t, err)
	require.Len(t, detail.Answers, 1)
	assert.Equal(t, intPtr(3), detail.Answers[0].Score)
	assert.Equal(t, 3, detail.TotalScore)
}

func TestUpdateAnswerScores_ConcurrentOverridesKeepTotalConsistent(t *testing.T) {
	questions := make([]*domain.ExamQuestion, 0, 8)
	for i := 1; i <= 8; i++ {
		q := &domain.Question{ID: int64(100 + i), Type: domain.QuestionTypeShort, Stem: fmt.Sprintf("Question %d?", i), Answer: json.RawMessage(`"reference text here"`)}
		questions = append(questions, weighted(q, 10, i))
	}
	f := newGradingFixture(t, nil, domain.AttemptSubmitted, questions...)

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(id int64, score float64) {
			defer wg.Done()
			_, err := f.engine.UpdateAnswerScores(context.Background(), attemptID, teacherID, []domain.ScoreUpdate{{QuestionID: id, TeacherScore: score}})
			assert.NoError(t, err)
		}(int64(100+i), float64(i))
	}
	wg.Wait()

	assert.Equal(t, 1+2+3+4+5+6+7+8, f.attempts.attempt(attemptID).TotalScore)
}

func TestConfirmGrade_Guards(t *testing.T) {
	ctx := context.Background()

	f := newGradingFixture(t, nil, domain.AttemptSubmitted, weighted(singleQ, 5, 1))
	_, err := f.engine.ConfirmGrade(ctx, attemptID, 7, nil, "")
	assert.Equal(t, domain.ErrForbidden, domain.CodeOf(err))

	negative := -1.0
	_, err = f.engine.ConfirmGrade(ctx, attemptID, teacherID, &negative, "")
	assert.Equal(t, domain.ErrInvalidInput, domain.CodeOf(err))

	f = newGradingFixture(t, nil, domain.AttemptInProgress, weighted(singleQ, 5, 1))
	_, err = f.engine.ConfirmGrade(ctx, attemptID, teacherID, nil, "")
	assert.Equal(t, domain.ErrInvalidState, domain.CodeOf(err))
}

func TestGetAttemptDetail_Access(t *testing.T) {
	ctx := context.Background()
	f := newGradingFixture(t, nil, domain.AttemptSubmitted, weighted(singleQ, 5, 1))
	f.answer(t, 1, `"A"`)

	for _, actor := range []int64{studentID, teacherID} {
		detail, err := f.engine.GetAttemptDetail(ctx, attemptID, actor)
		require.NoError(t, err)
		assert.Equal(t, studentID, detail.StudentID)
		require.Len(t, detail.Answers, 1)
		assert.Equal(t, domain.QuestionTypeSingle, detail.Answers[0].QuestionType)
	}

	_, err := f.engine.GetAttemptDetail(ctx, attemptID, 12345)
	assert.Equal(t, domain.ErrForbidden, domain.CodeOf(err))
}

func TestGetGradeStatistics(t *testing.T) {
	ctx := context.Background()
	f := newGradingFixture(t, nil, domain.AttemptInProgress, weighted(singleQ, 50, 1), weighted(shortQ, 50, 2))

	final := 90.0
	now := time.Now()
	for _, a := range []*domain.Attempt{
		{ExamID: examID, StudentID: 1, Status: domain.AttemptGraded, TotalScore: 80, FinalScore: &final, GradedAt: &now},
		{ExamID: examID, StudentID: 2, Status: domain.AttemptAIGraded, TotalScore: 60},
		{ExamID: examID, StudentID: 3, Status: domain.AttemptSubmitted, TotalScore: 30},
	} {
		require.NoError(t, f.attempts.CreateAttempt(ctx, a))
	}

	stats, err := f.engine.GetGradeStatistics(ctx, examID, teacherID)
	require.NoError(t, err)
	assert.Equal(t, &domain.GradeStatistics{
		ExamID:         examID,
		TotalAttempts:  4,
		SubmittedCount: 3,
		GradedCount:    1,
		AverageScore:   60,
		HighestScore:   90,
		LowestScore:    30,
		PassRate:       66.7,
	}, stats)

	_, err = f.engine.GetGradeStatistics(ctx, examID, 7)
	assert.Equal(t, domain.ErrForbidden, domain.CodeOf(err))
}

func TestKeyedMutex(t *testing.T) {
	k := newKeyedMutex()
	unlockA := k.Lock(1)

	// A different key is never blocked.
	done := make(chan struct{})
	go func() {
		unlock := k.Lock(2)
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("unrelated key blocked")
	}

	acquired := make(chan struct{})
	go func() {
		unlock := k.Lock(1)
		close(acquired)
		unlock()
	}()
	select {
	case <-acquired:
		t.Fatal("same key acquired twice")
	case <-time.After(50 * time.Millisecond):
	}
	unlockA()
	<-acquired

	assert.Eventually(t, func() bool {
		k.mu.Lock()
		defer k.mu.Unlock()
		return len(k.locks) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestAsDomainError(t *testing.T) {
	notFound := domain.NewNotFoundError("gone")
	assert.Same(t, notFound, asDomainError(notFound, "ignored"))

	wrapped := asDomainError(errors.New("disk full"), "Failed to save")
	assert.Equal(t, domain.ErrInternal, domain.CodeOf(wrapped))
	assert.Contains(t, wrapped.Error(), "disk full")
}
