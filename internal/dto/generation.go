package dto

import "quiz-forge/internal/domain"

// GenerateQuestionsRequest is the body of the generation endpoints.
type GenerateQuestionsRequest struct {
	CourseName             string `json:"course_name"`
	KnowledgePoint         string `json:"knowledge_point"`
	QuestionType           string `json:"question_type"`
	Difficulty             int    `json:"difficulty"`
	Count                  int    `json:"count"`
	Language               string `json:"language"`
	AdditionalRequirements string `json:"additional_requirements"`
	// Save stores approved questions in the question bank under the caller's id.
	Save bool `json:"save"`
}

// ToDomain fills the defaults of an omitted difficulty, count and language.
func (r *GenerateQuestionsRequest) ToDomain() domain.GenerationRequest {
	req := domain.GenerationRequest{
		CourseName:             r.CourseName,
		KnowledgePoint:         r.KnowledgePoint,
		QuestionType:           domain.QuestionType(r.QuestionType),
		Difficulty:             r.Difficulty,
		Count:                  r.Count,
		Language:               r.Language,
		AdditionalRequirements: r.AdditionalRequirements,
	}
	if req.Difficulty == 0 {
		req.Difficulty = 3
	}
	if req.Count == 0 {
		req.Count = 5
	}
	if req.Language == "" {
		req.Language = domain.DefaultLanguage
	}
	return req
}

// GenerateQuestionsResponse is the pipeline result plus the ids of saved questions.
type GenerateQuestionsResponse struct {
	domain.PipelineDict
	SavedQuestionIDs []int64 `json:"saved_question_ids,omitempty"`
}

// QuickGenerateResponse lists the questions that passed validation.
type QuickGenerateResponse struct {
	Questions []*domain.GeneratedQuestion `json:"questions"`
}

// GenerateSingleRequest is the body of POST /api/questions/generate/single.
type GenerateSingleRequest struct {
	CourseName     string `json:"course_name"`
	QuestionType   string `json:"question_type"`
	Difficulty     int    `json:"difficulty"`
	KnowledgePoint string `json:"knowledge_point"`
}

// IssueResponse is one review finding.
type IssueResponse struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// SingleQuestionResponse is a processed question with its classification.
type SingleQuestionResponse struct {
	Status           string                    `json:"status"`
	Question         *domain.GeneratedQuestion `json:"question"`
	Original         *domain.GeneratedQuestion `json:"original,omitempty"`
	ReviewComment    string                    `json:"review_comment,omitempty"`
	Issues           []IssueResponse           `json:"issues"`
	ValidationErrors []domain.FieldIssue       `json:"validation_errors"`
}

// NewSingleQuestionResponse flattens a processed question.
func NewSingleQuestionResponse(pq *domain.ProcessedQuestion) SingleQuestionResponse {
	resp := SingleQuestionResponse{
		Status:           string(pq.Status),
		Question:         pq.Question,
		Original:         pq.OriginalQuestion,
		Issues:           []IssueResponse{},
		ValidationErrors: []domain.FieldIssue{},
	}
	if pq.ReviewResult != nil {
		resp.ReviewComment = pq.ReviewResult.Comment
		for _, issue := range pq.ReviewResult.Issues {
			resp.Issues = append(resp.Issues, IssueResponse{
				Type:        issue.Type,
				Description: issue.Description,
				Severity:    string(issue.Severity),
			})
		}
	}
	if pq.ValidationResult != nil {
		resp.ValidationErrors = append(resp.ValidationErrors, pq.ValidationResult.Errors...)
	}
	return resp
}
