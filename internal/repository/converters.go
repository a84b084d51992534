package repository

import (
	"quiz-forge/internal/domain"
	"quiz-forge/internal/repository/models"
	"quiz-forge/internal/util"

	"github.com/jmoiron/sqlx/types"
)

func questionToDomain(m *models.Question) *domain.Question {
	return &domain.Question{
		ID:             m.ID,
		Type:           domain.QuestionType(m.Type),
		Stem:           m.Stem,
		Options:        map[string]string(m.Options),
		Answer:         rawOrNil(m.Answer),
		Explanation:    m.Explanation.String,
		Difficulty:     m.Difficulty,
		KnowledgePoint: m.KnowledgePoint.String,
		Keywords:       []string(m.Keywords),
		Rubric:         m.Rubric.String,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}

func questionFromDomain(q *domain.Question) *models.Question {
	answer := types.JSONText(q.Answer)
	if len(answer) == 0 {
		answer = types.JSONText("null")
	}
	return &models.Question{
		ID:             q.ID,
		Type:           string(q.Type),
		Stem:           q.Stem,
		Options:        models.StringMap(q.Options),
		Answer:         answer,
		Explanation:    util.StringToNullString(q.Explanation),
		Difficulty:     q.Difficulty,
		KnowledgePoint: util.StringToNullString(q.KnowledgePoint),
		Keywords:       models.StringSlice(q.Keywords),
		Rubric:         util.StringToNullString(q.Rubric),
		CreatedBy:      q.CreatedBy,
		CreatedAt:      q.CreatedAt,
	}
}

func examToDomain(m *models.Exam) *domain.Exam {
	return &domain.Exam{
		ID:          m.ID,
		Title:       m.Title,
		Status:      domain.ExamStatus(m.Status),
		TotalScore:  m.TotalScore,
		PublishedBy: m.PublishedBy,
		CreatedAt:   m.CreatedAt,
	}
}

func attemptToDomain(m *models.Attempt) *domain.Attempt {
	a := &domain.Attempt{
		ID:                m.ID,
		ExamID:            m.ExamID,
		StudentID:         m.StudentID,
		Status:            domain.AttemptStatus(m.Status),
		StartedAt:         m.StartedAt,
		SubmittedAt:       util.NullTimeToPtr(m.SubmittedAt),
		TotalScore:        m.TotalScore,
		FinalScore:        util.NullFloat64ToPtr(m.FinalScore),
		IsGradedByTeacher: m.IsGradedByTeacher,
		GradedAt:          util.NullTimeToPtr(m.GradedAt),
		TeacherComment:    m.TeacherComment.String,
	}
	a.GradedBy = util.NullInt64ToPtr(m.GradedBy)
	return a
}

func attemptFromDomain(a *domain.Attempt) *models.Attempt {
	return &models.Attempt{
		ID:                a.ID,
		ExamID:            a.ExamID,
		StudentID:         a.StudentID,
		Status:            string(a.Status),
		StartedAt:         a.StartedAt,
		SubmittedAt:       util.TimePtrToNullTime(a.SubmittedAt),
		TotalScore:        a.TotalScore,
		FinalScore:        util.Float64PtrToNull(a.FinalScore),
		IsGradedByTeacher: a.IsGradedByTeacher,
		GradedAt:          util.TimePtrToNullTime(a.GradedAt),
		GradedBy:          util.Int64PtrToNull(a.GradedBy),
		TeacherComment:    util.StringToNullString(a.TeacherComment),
	}
}

func answerToDomain(m *models.AttemptAnswer) *domain.AttemptAnswer {
	a := &domain.AttemptAnswer{
		ID:               m.ID,
		AttemptID:        m.AttemptID,
		QuestionID:       m.QuestionID,
		AIScore:          util.NullFloat64ToPtr(m.AIScore),
		AIFeedback:       m.AIFeedback.String,
		TeacherScore:     util.NullFloat64ToPtr(m.TeacherScore),
		TeacherFeedback:  m.TeacherFeedback.String,
		Feedback:         m.Feedback.String,
		TimeSpentSeconds: m.TimeSpentSeconds,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.StudentAnswer.Valid {
		a.StudentAnswer = rawOrNil(m.StudentAnswer.JSONText)
	}
	a.IsCorrect = util.NullBoolToPtr(m.IsCorrect)
	a.Score = util.NullInt64ToIntPtr(m.Score)
	return a
}

func answerFromDomain(a *domain.AttemptAnswer) *models.AttemptAnswer {
	m := &models.AttemptAnswer{
		ID:               a.ID,
		AttemptID:        a.AttemptID,
		QuestionID:       a.QuestionID,
		AIScore:          util.Float64PtrToNull(a.AIScore),
		AIFeedback:       util.StringToNullString(a.AIFeedback),
		TeacherScore:     util.Float64PtrToNull(a.TeacherScore),
		TeacherFeedback:  util.StringToNullString(a.TeacherFeedback),
		Feedback:         util.StringToNullString(a.Feedback),
		TimeSpentSeconds: a.TimeSpentSeconds,
		UpdatedAt:        a.UpdatedAt,
	}
	if len(a.StudentAnswer) > 0 {
		m.StudentAnswer = types.NullJSONText{JSONText: types.JSONText(a.StudentAnswer), Valid: true}
	}
	m.IsCorrect = util.BoolPtrToNull(a.IsCorrect)
	m.Score = util.IntPtrToNull(a.Score)
	return m
}
