package domain

// FieldIssue is a single validation finding bound to a question field.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of one validation call. Errors invalidate the
// question; warnings are advisory.
type ValidationResult struct {
	IsValid  bool         `json:"is_valid"`
	Errors   []FieldIssue `json:"errors"`
	Warnings []FieldIssue `json:"warnings"`
}

// NewValidationResult returns a result that is valid until an error is added.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{IsValid: true, Errors: []FieldIssue{}, Warnings: []FieldIssue{}}
}

func (r *ValidationResult) AddError(field, message string) {
	r.IsValid = false
	r.Errors = append(r.Errors, FieldIssue{Field: field, Message: message})
}

func (r *ValidationResult) AddWarning(field, message string) {
	r.Warnings = append(r.Warnings, FieldIssue{Field: field, Message: message})
}

// ValidatedQuestion pairs a question with its validation outcome.
type ValidatedQuestion struct {
	Question *GeneratedQuestion
	Result   *ValidationResult
}
