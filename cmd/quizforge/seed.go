package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"quiz-forge/internal/config"
	"quiz-forge/internal/database"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"
	"quiz-forge/internal/repository"
	"quiz-forge/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// seedFile describes an exam and its questions in the order they are shown.
type seedFile struct {
	Title       string         `json:"title"`
	Status      string         `json:"status"`
	PublishedBy int64          `json:"published_by"`
	Questions   []seedQuestion `json:"questions"`
}

type seedQuestion struct {
	Points   float64                   `json:"points"`
	Question *domain.GeneratedQuestion `json:"question"`
}

func seedCmd(load func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Create an exam and its questions from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			var file seedFile
			if err := json.Unmarshal(data, &file); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			exam, bindings, err := buildExam(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := database.Open(ctx, load().DB)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := seedExam(ctx, repository.NewTransactionManagerAdapter(db),
				repository.NewQuestionRepository(db), repository.NewExamRepository(db), exam, bindings); err != nil {
				return err
			}
			logger.Get().Info("Exam seeded",
				zap.Int64("exam_id", exam.ID),
				zap.String("title", exam.Title),
				zap.Int("questions", len(bindings)),
				zap.Float64("total_score", exam.TotalScore))
			return writeJSON(cmd.OutOrStdout(), map[string]int64{"exam_id": exam.ID})
		},
	}
}

// buildExam validates every question and numbers them from 1.
func buildExam(file seedFile) (*domain.Exam, []*domain.ExamQuestion, error) {
	if file.Title == "" {
		return nil, nil, domain.NewInvalidInputError("title is required")
	}
	if len(file.Questions) == 0 {
		return nil, nil, domain.NewInvalidInputError("at least one question is required")
	}
	status := domain.ExamStatus(file.Status)
	switch status {
	case "":
		status = domain.ExamDraft
	case domain.ExamDraft, domain.ExamPublished, domain.ExamClosed:
	default:
		return nil, nil, domain.NewInvalidInputError(fmt.Sprintf("unknown exam status %q", file.Status))
	}

	validator := service.NewStructuralValidator()
	exam := &domain.Exam{Title: file.Title, Status: status, PublishedBy: file.PublishedBy}
	bindings := make([]*domain.ExamQuestion, 0, len(file.Questions))
	for i, sq := range file.Questions {
		if sq.Points <= 0 {
			return nil, nil, domain.NewInvalidInputError(fmt.Sprintf("question %d: points must be positive", i+1))
		}
		if result := validator.Validate(sq.Question); !result.IsValid {
			return nil, nil, domain.NewInvalidInputError(fmt.Sprintf("question %d: %s: %s",
				i+1, result.Errors[0].Field, result.Errors[0].Message))
		}
		bindings = append(bindings, &domain.ExamQuestion{
			Question:  domain.NewQuestionFromGenerated(sq.Question, file.PublishedBy),
			Points:    sq.Points,
			SortOrder: i + 1,
		})
		exam.TotalScore += sq.Points
	}
	return exam, bindings, nil
}

func seedExam(ctx context.Context, tx domain.TransactionManager, questions domain.QuestionRepository,
	exams domain.ExamRepository, exam *domain.Exam, bindings []*domain.ExamQuestion) error {
	return tx.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, b := range bindings {
			if err := questions.SaveQuestion(txCtx, b.Question); err != nil {
				return err
			}
		}
		return exams.CreateExam(txCtx, exam, bindings)
	})
}
