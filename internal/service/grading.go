package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"quiz-forge/internal/config"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	scoreEpsilon = 1e-9
	passRatio    = 0.6
)

// GradingEngine scores submitted attempts and applies teacher overrides.
type GradingEngine interface {
	// GradeAttempt auto-grades every exam question of a submitted attempt. AI failures
	// leave the affected answers pending; they never fail the attempt.
	GradeAttempt(ctx context.Context, attemptID int64) (*domain.AttemptDetail, error)
	UpdateAnswerScores(ctx context.Context, attemptID, teacherID int64, updates []domain.ScoreUpdate) (*domain.AttemptDetail, error)
	// ConfirmGrade may be repeated; the last final score wins.
	ConfirmGrade(ctx context.Context, attemptID, teacherID int64, finalScore *float64, comment string) (*domain.AttemptDetail, error)
	GetAttemptDetail(ctx context.Context, attemptID, actorID int64) (*domain.AttemptDetail, error)
	GetGradeStatistics(ctx context.Context, examID, teacherID int64) (*domain.GradeStatistics, error)
}

type gradingEngine struct {
	exams       domain.ExamRepository
	attempts    domain.AttemptRepository
	tx          domain.TransactionManager
	grader      domain.AnswerGrader
	concurrency int
	locks       *keyedMutex
}

// NewGradingEngine creates the engine. A nil grader leaves every subjective answer pending.
func NewGradingEngine(
	exams domain.ExamRepository,
	attempts domain.AttemptRepository,
	tx domain.TransactionManager,
	grader domain.AnswerGrader,
	cfg config.GradingConfig,
) GradingEngine {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return &gradingEngine{
		exams:       exams,
		attempts:    attempts,
		tx:          tx,
		grader:      grader,
		concurrency: concurrency,
		locks:       newKeyedMutex(),
	}
}

// gradedAnswer is the outcome of grading one exam question.
type gradedAnswer struct {
	answer    *domain.AttemptAnswer
	aiTouched bool
}

// GradeAttempt implements GradingEngine
func (e *gradingEngine) GradeAttempt(ctx context.Context, attemptID int64) (*domain.AttemptDetail, error) {
	l := logger.Get().With(zap.Int64("attempt_id", attemptID))

	attempt, err := e.loadAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status == domain.AttemptInProgress {
		return nil, domain.NewInvalidStateError("attempt has not been submitted")
	}
	if attempt.IsGradedByTeacher {
		return nil, domain.NewInvalidStateError("attempt grade has already been confirmed")
	}

	questions, err := e.exams.GetExamQuestions(ctx, attempt.ExamID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load exam questions", err)
	}
	existing, err := e.attempts.GetAnswers(ctx, attemptID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load answers", err)
	}
	byQuestion := answersByQuestion(existing)

	// AI calls happen outside the transaction; each goroutine owns its answer.
	results := make([]gradedAnswer, len(questions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, eq := range questions {
		i, eq := i, eq
		ans, ok := byQuestion[eq.Question.ID]
		if !ok {
			ans = &domain.AttemptAnswer{AttemptID: attemptID, QuestionID: eq.Question.ID}
		}
		g.Go(func() error {
			results[i] = gradedAnswer{answer: ans, aiTouched: e.gradeAnswer(gctx, eq, ans)}
			return nil
		})
	}
	_ = g.Wait()

	aiTouched := false
	for _, r := range results {
		aiTouched = aiTouched || r.aiTouched
	}

	unlock := e.locks.Lock(attemptID)
	defer unlock()

	err = e.tx.WithTransaction(ctx, func(ctx context.Context) error {
		// Teacher scores may have changed while the AI calls ran; only the
		// auto-grading fields are carried over onto the rows read here.
		fresh, err := e.attempts.GetAnswers(ctx, attemptID)
		if err != nil {
			return err
		}
		freshByQuestion := answersByQuestion(fresh)

		for _, r := range results {
			row, ok := freshByQuestion[r.answer.QuestionID]
			if !ok {
				row = &domain.AttemptAnswer{
					AttemptID:     attemptID,
					QuestionID:    r.answer.QuestionID,
					StudentAnswer: r.answer.StudentAnswer,
				}
				if err := e.attempts.UpsertAnswer(ctx, row); err != nil {
					return err
				}
			}
			mergeGrading(row, r.answer)
			if err := e.attempts.UpdateAnswerGrading(ctx, row); err != nil {
				return err
			}
		}

		current, err := e.attempts.GetAttemptByID(ctx, attemptID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.NewNotFoundError(fmt.Sprintf("attempt %d not found", attemptID))
		}
		total, err := e.freshTotal(ctx, attemptID)
		if err != nil {
			return err
		}
		current.TotalScore = total
		if aiTouched {
			current.Status = domain.AttemptAIGraded
		} else {
			current.Status = domain.AttemptGraded
		}
		attempt = current
		return e.attempts.UpdateAttempt(ctx, current)
	})
	if err != nil {
		return nil, asDomainError(err, "Failed to save grading results")
	}

	l.Info("Attempt graded",
		zap.Int("total_score", attempt.TotalScore),
		zap.String("status", string(attempt.Status)),
		zap.Int("questions", len(questions)))
	return e.detail(ctx, attempt, questions)
}

// gradeAnswer fills the outcome fields of ans and reports whether AI grading was involved.
func (e *gradingEngine) gradeAnswer(ctx context.Context, eq *domain.ExamQuestion, ans *domain.AttemptAnswer) bool {
	ans.AIScore = nil
	ans.AIFeedback = ""
	ans.Feedback = ""
	defer ans.RecomputeScore()

	q := eq.Question
	if domain.AnswerIsEmpty(ans.StudentAnswer) {
		zero := 0
		ans.Score = &zero
		ans.Feedback = domain.NoAnswerFeedback
		if q.Type == domain.QuestionTypeShort {
			ans.IsCorrect = nil
		} else {
			ans.IsCorrect = boolPtr(false)
		}
		return false
	}

	switch q.Type {
	case domain.QuestionTypeSingle, domain.QuestionTypeMultiple:
		gradeObjective(q, eq.Points, ans)
		return false
	case domain.QuestionTypeBlank:
		return e.gradeFillBlank(ctx, q, eq.Points, ans)
	case domain.QuestionTypeShort:
		e.gradeShortAnswer(ctx, q, eq.Points, ans)
		return true
	default:
		logger.Get().Warn("Unknown question type, scoring zero",
			zap.Int64("question_id", q.ID), zap.String("type", string(q.Type)))
		zero := 0
		ans.Score = &zero
		ans.IsCorrect = boolPtr(false)
		return false
	}
}

func gradeObjective(q *domain.Question, points float64, ans *domain.AttemptAnswer) {
	correct := false
	want, err := domain.DecodeAnswer(q.Type, q.Answer)
	if err != nil {
		logger.Get().Warn("Stored answer unreadable", zap.Int64("question_id", q.ID), zap.Error(err))
	} else if got, err := domain.DecodeAnswer(q.Type, ans.StudentAnswer); err == nil {
		correct = domain.AnswersEqual(want, got)
	}

	score := 0
	if correct {
		score = domain.RoundScore(points)
	}
	ans.Score = &score
	ans.IsCorrect = &correct
}

func (e *gradingEngine) gradeFillBlank(ctx context.Context, q *domain.Question, points float64, ans *domain.AttemptAnswer) bool {
	var correct []string
	if want, err := domain.DecodeAnswer(q.Type, q.Answer); err == nil {
		correct = want.(domain.FillBlankAnswer).Values
	}
	if len(correct) == 0 {
		logger.Get().Warn("Stored blanks unreadable", zap.Int64("question_id", q.ID))
		zero := 0
		ans.Score = &zero
		ans.IsCorrect = boolPtr(false)
		return false
	}
	var student []string
	if got, err := domain.DecodeAnswer(q.Type, ans.StudentAnswer); err == nil {
		student = got.(domain.FillBlankAnswer).Values
	}

	weight := points / float64(len(correct))
	total := 0.0
	exact := 0
	aiUsed := false
	var notes []string
	for i, want := range correct {
		value := ""
		if i < len(student) {
			value = student[i]
		}
		switch {
		case domain.BlankEqual(want, value):
			total += weight
			exact++
		case strings.TrimSpace(value) == "" || e.grader == nil:
		default:
			aiUsed = true
			grade, err := e.grader.GradeBlank(ctx, domain.BlankGradingRequest{
				QuestionID:   q.ID,
				Stem:         q.Stem,
				BlankIndex:   i,
				CorrectValue: want,
				StudentValue: value,
				MaxScore:     weight,
			})
			if err != nil {
				logger.Get().Warn("Blank grading unavailable, leaving answer pending",
					zap.Int64("question_id", q.ID), zap.Int("blank", i), zap.Error(err))
				markPending(ans)
				return true
			}
			total += math.Min(math.Max(grade.Score, 0), weight)
			if grade.Feedback != "" {
				notes = append(notes, fmt.Sprintf("Blank %d: %s", i+1, grade.Feedback))
			}
		}
	}

	score := domain.RoundScore(total)
	ans.Score = &score
	switch {
	case total >= points-scoreEpsilon:
		ans.IsCorrect = boolPtr(true)
	case total <= scoreEpsilon:
		ans.IsCorrect = boolPtr(false)
	default:
		ans.IsCorrect = nil
	}
	ans.Feedback = fmt.Sprintf("%d/%d blanks correct", exact, len(correct))
	if aiUsed {
		ans.AIScore = &total
		ans.AIFeedback = strings.Join(append([]string{ans.Feedback}, notes...), "\n")
	}
	return aiUsed
}

func (e *gradingEngine) gradeShortAnswer(ctx context.Context, q *domain.Question, points float64, ans *domain.AttemptAnswer) {
	ans.IsCorrect = nil
	if e.grader == nil {
		markPending(ans)
		return
	}

	reference := string(q.Answer)
	if want, err := domain.DecodeAnswer(q.Type, q.Answer); err == nil {
		reference = want.(domain.ShortAnswer).Text
	}
	studentText := string(ans.StudentAnswer)
	if got, err := domain.DecodeAnswer(q.Type, ans.StudentAnswer); err == nil {
		studentText = got.(domain.ShortAnswer).Text
	}

	grade, err := e.grader.GradeShortAnswer(ctx, domain.ShortAnswerGradingRequest{
		QuestionID:      q.ID,
		Stem:            q.Stem,
		ReferenceAnswer: reference,
		Rubric:          q.Rubric,
		Explanation:     q.Explanation,
		Keywords:        q.Keywords,
		StudentAnswer:   studentText,
		MaxScore:        points,
	})
	if err != nil {
		logger.Get().Warn("Short answer grading unavailable, leaving answer pending",
			zap.Int64("question_id", q.ID), zap.Error(err))
		markPending(ans)
		return
	}

	score := math.Min(math.Max(grade.Score, 0), points)
	ans.AIScore = &score
	ans.AIFeedback = grade.Feedback
	if grade.Analysis != "" {
		ans.AIFeedback = strings.TrimSpace(ans.AIFeedback + "\n" + grade.Analysis)
	}
}

func markPending(ans *domain.AttemptAnswer) {
	ans.Score = nil
	ans.IsCorrect = nil
	ans.AIScore = nil
	ans.AIFeedback = ""
	ans.Feedback = domain.PendingManualFeedback
}

// mergeGrading copies the auto-grading outcome onto row and re-applies score
// precedence against row's own teacher columns.
func mergeGrading(row, graded *domain.AttemptAnswer) {
	row.IsCorrect = graded.IsCorrect
	row.Score = graded.Score
	row.AIScore = graded.AIScore
	row.AIFeedback = graded.AIFeedback
	row.Feedback = graded.Feedback
	row.RecomputeScore()
}

// UpdateAnswerScores implements GradingEngine
func (e *gradingEngine) UpdateAnswerScores(ctx context.Context, attemptID, teacherID int64, updates []domain.ScoreUpdate) (*domain.AttemptDetail, error) {
	if len(updates) == 0 {
		return nil, domain.NewInvalidInputError("at least one score update is required")
	}
	attempt, exam, err := e.loadForTeacher(ctx, attemptID, teacherID)
	if err != nil {
		return nil, err
	}
	if attempt.Status == domain.AttemptInProgress {
		return nil, domain.NewInvalidStateError("attempt has not been submitted")
	}

	questions, err := e.exams.GetExamQuestions(ctx, exam.ID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load exam questions", err)
	}
	points := make(map[int64]float64, len(questions))
	for _, eq := range questions {
		points[eq.Question.ID] = eq.Points
	}
	for _, u := range updates {
		maxScore, ok := points[u.QuestionID]
		if !ok {
			return nil, domain.NewInvalidInputError(fmt.Sprintf("question %d is not part of this exam", u.QuestionID))
		}
		if u.TeacherScore < 0 || u.TeacherScore > maxScore+scoreEpsilon {
			return nil, domain.NewInvalidInputError(fmt.Sprintf("teacher_score for question %d must be between 0 and %g", u.QuestionID, maxScore))
		}
	}

	unlock := e.locks.Lock(attemptID)
	defer unlock()

	err = e.tx.WithTransaction(ctx, func(ctx context.Context) error {
		answers, err := e.attempts.GetAnswers(ctx, attemptID)
		if err != nil {
			return err
		}
		byQuestion := answersByQuestion(answers)

		for _, u := range updates {
			ans, ok := byQuestion[u.QuestionID]
			if !ok {
				ans = &domain.AttemptAnswer{AttemptID: attemptID, QuestionID: u.QuestionID}
				if err := e.attempts.UpsertAnswer(ctx, ans); err != nil {
					return err
				}
				byQuestion[u.QuestionID] = ans
			}
			score := u.TeacherScore
			ans.TeacherScore = &score
			if u.TeacherFeedback != "" {
				ans.TeacherFeedback = u.TeacherFeedback
			}
			ans.RecomputeScore()
			if err := e.attempts.UpdateAnswerGrading(ctx, ans); err != nil {
				return err
			}
		}

		current, err := e.attempts.GetAttemptByID(ctx, attemptID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.NewNotFoundError(fmt.Sprintf("attempt %d not found", attemptID))
		}
		if current.TotalScore, err = e.freshTotal(ctx, attemptID); err != nil {
			return err
		}
		attempt = current
		return e.attempts.UpdateAttempt(ctx, current)
	})
	if err != nil {
		return nil, asDomainError(err, "Failed to save teacher scores")
	}

	logger.Get().Info("Teacher scores updated",
		zap.Int64("attempt_id", attemptID),
		zap.Int64("teacher_id", teacherID),
		zap.Int("updates", len(updates)),
		zap.Int("total_score", attempt.TotalScore))
	return e.detail(ctx, attempt, questions)
}

// ConfirmGrade implements GradingEngine
func (e *gradingEngine) ConfirmGrade(ctx context.Context, attemptID, teacherID int64, finalScore *float64, comment string) (*domain.AttemptDetail, error) {
	if finalScore != nil && *finalScore < 0 {
		return nil, domain.NewInvalidInputError("final_score must not be negative")
	}
	attempt, exam, err := e.loadForTeacher(ctx, attemptID, teacherID)
	if err != nil {
		return nil, err
	}
	if attempt.Status == domain.AttemptInProgress {
		return nil, domain.NewInvalidStateError("attempt has not been submitted")
	}

	unlock := e.locks.Lock(attemptID)
	defer unlock()

	err = e.tx.WithTransaction(ctx, func(ctx context.Context) error {
		current, err := e.attempts.GetAttemptByID(ctx, attemptID)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.NewNotFoundError(fmt.Sprintf("attempt %d not found", attemptID))
		}
		if current.TotalScore, err = e.freshTotal(ctx, attemptID); err != nil {
			return err
		}

		final := float64(current.TotalScore)
		if finalScore != nil {
			final = *finalScore
		}
		now := time.Now()
		grader := teacherID
		current.FinalScore = &final
		current.IsGradedByTeacher = true
		current.GradedAt = &now
		current.GradedBy = &grader
		current.Status = domain.AttemptGraded
		if comment != "" {
			current.TeacherComment = comment
		}
		attempt = current
		return e.attempts.UpdateAttempt(ctx, current)
	})
	if err != nil {
		return nil, asDomainError(err, "Failed to confirm grade")
	}

	logger.Get().Info("Grade confirmed",
		zap.Int64("attempt_id", attemptID),
		zap.Int64("teacher_id", teacherID),
		zap.Float64("final_score", *attempt.FinalScore))

	questions, err := e.exams.GetExamQuestions(ctx, exam.ID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load exam questions", err)
	}
	return e.detail(ctx, attempt, questions)
}

// GetAttemptDetail implements GradingEngine
func (e *gradingEngine) GetAttemptDetail(ctx context.Context, attemptID, actorID int64) (*domain.AttemptDetail, error) {
	attempt, err := e.loadAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	exam, err := e.loadExam(ctx, attempt.ExamID)
	if err != nil {
		return nil, err
	}
	if actorID != attempt.StudentID && actorID != exam.PublishedBy {
		return nil, domain.NewForbiddenError("not allowed to view this attempt")
	}

	questions, err := e.exams.GetExamQuestions(ctx, exam.ID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load exam questions", err)
	}
	return e.detail(ctx, attempt, questions)
}

// GetGradeStatistics implements GradingEngine
func (e *gradingEngine) GetGradeStatistics(ctx context.Context, examID, teacherID int64) (*domain.GradeStatistics, error) {
	exam, err := e.loadExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.PublishedBy != teacherID {
		return nil, domain.NewForbiddenError("only the exam publisher can view statistics")
	}

	attempts, err := e.attempts.ListAttemptsByExam(ctx, examID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load attempts", err)
	}
	return computeStatistics(exam, attempts), nil
}

func computeStatistics(exam *domain.Exam, attempts []*domain.Attempt) *domain.GradeStatistics {
	stats := &domain.GradeStatistics{ExamID: exam.ID, TotalAttempts: len(attempts)}

	passMark := exam.TotalScore * passRatio
	passed := 0
	sum := 0.0
	for _, a := range attempts {
		if a.Status == domain.AttemptInProgress {
			continue
		}
		if a.Status == domain.AttemptGraded {
			stats.GradedCount++
		}
		score := float64(a.TotalScore)
		if a.FinalScore != nil {
			score = *a.FinalScore
		}
		if stats.SubmittedCount == 0 || score > stats.HighestScore {
			stats.HighestScore = score
		}
		if stats.SubmittedCount == 0 || score < stats.LowestScore {
			stats.LowestScore = score
		}
		stats.SubmittedCount++
		sum += score
		if score >= passMark-scoreEpsilon {
			passed++
		}
	}
	if stats.SubmittedCount > 0 {
		n := float64(stats.SubmittedCount)
		stats.AverageScore = math.Round(sum/n*100) / 100
		stats.PassRate = math.Round(float64(passed)/n*1000) / 10
	}
	return stats
}

func (e *gradingEngine) loadAttempt(ctx context.Context, attemptID int64) (*domain.Attempt, error) {
	attempt, err := e.attempts.GetAttemptByID(ctx, attemptID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load attempt", err)
	}
	if attempt == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("attempt %d not found", attemptID))
	}
	return attempt, nil
}

func (e *gradingEngine) loadExam(ctx context.Context, examID int64) (*domain.Exam, error) {
	exam, err := e.exams.GetExamByID(ctx, examID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load exam", err)
	}
	if exam == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("exam %d not found", examID))
	}
	return exam, nil
}

func (e *gradingEngine) loadForTeacher(ctx context.Context, attemptID, teacherID int64) (*domain.Attempt, *domain.Exam, error) {
	attempt, err := e.loadAttempt(ctx, attemptID)
	if err != nil {
		return nil, nil, err
	}
	exam, err := e.loadExam(ctx, attempt.ExamID)
	if err != nil {
		return nil, nil, err
	}
	if exam.PublishedBy != teacherID {
		return nil, nil, domain.NewForbiddenError("only the exam publisher can grade this attempt")
	}
	return attempt, exam, nil
}

// freshTotal re-reads every answer so concurrent overrides never leave a stale total.
func (e *gradingEngine) freshTotal(ctx context.Context, attemptID int64) (int, error) {
	answers, err := e.attempts.GetAnswers(ctx, attemptID)
	if err != nil {
		return 0, err
	}
	return domain.SumScores(answers), nil
}

func (e *gradingEngine) detail(ctx context.Context, attempt *domain.Attempt, questions []*domain.ExamQuestion) (*domain.AttemptDetail, error) {
	answers, err := e.attempts.GetAnswers(ctx, attempt.ID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load answers", err)
	}
	return buildAttemptDetail(attempt, questions, answers), nil
}

// buildAttemptDetail lists answers in exam order; answers to questions no longer on the exam are omitted.
func buildAttemptDetail(attempt *domain.Attempt, questions []*domain.ExamQuestion, answers []*domain.AttemptAnswer) *domain.AttemptDetail {
	detail := &domain.AttemptDetail{
		AttemptID:         attempt.ID,
		ExamID:            attempt.ExamID,
		StudentID:         attempt.StudentID,
		Status:            attempt.Status,
		TotalScore:        attempt.TotalScore,
		FinalScore:        attempt.FinalScore,
		IsGradedByTeacher: attempt.IsGradedByTeacher,
		Answers:           []domain.AnswerDetail{},
	}

	ordered := append([]*domain.ExamQuestion(nil), questions...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].SortOrder < ordered[j].SortOrder })

	byQuestion := answersByQuestion(answers)
	for _, eq := range ordered {
		ans, ok := byQuestion[eq.Question.ID]
		if !ok {
			continue
		}
		studentAnswer := ans.StudentAnswer
		if len(studentAnswer) == 0 {
			studentAnswer = json.RawMessage("null")
		}
		detail.Answers = append(detail.Answers, domain.AnswerDetail{
			QuestionID:      ans.QuestionID,
			QuestionType:    eq.Question.Type,
			StudentAnswer:   studentAnswer,
			IsCorrect:       ans.IsCorrect,
			Score:           ans.Score,
			AIScore:         ans.AIScore,
			TeacherScore:    ans.TeacherScore,
			Feedback:        ans.Feedback,
			AIFeedback:      ans.AIFeedback,
			TeacherFeedback: ans.TeacherFeedback,
		})
	}
	return detail
}

func answersByQuestion(answers []*domain.AttemptAnswer) map[int64]*domain.AttemptAnswer {
	m := make(map[int64]*domain.AttemptAnswer, len(answers))
	for _, a := range answers {
		m[a.QuestionID] = a
	}
	return m
}

// asDomainError keeps DomainErrors raised inside a transaction and wraps anything else.
func asDomainError(err error, message string) error {
	if domain.CodeOf(err) != domain.ErrInternal {
		return err
	}
	return domain.NewInternalError(message, err)
}

func boolPtr(b bool) *bool { return &b }

// keyedMutex serializes work per attempt without blocking unrelated attempts.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[int64]*refMutex)}
}

// Lock blocks until key is free and returns the matching unlock function.
func (k *keyedMutex) Lock(key int64) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
