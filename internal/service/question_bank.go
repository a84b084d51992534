package service

import (
	"context"

	"quiz-forge/internal/domain"
	"quiz-forge/internal/logger"

	"go.uber.org/zap"
)

// SaveApproved stores the approved questions of result in the question bank and
// returns their ids in approval order. Other buckets are never persisted.
func SaveApproved(ctx context.Context, repo domain.QuestionRepository, tx domain.TransactionManager, result *domain.PipelineResult, createdBy int64) ([]int64, error) {
	approved := result.ApprovedQuestions()
	if len(approved) == 0 {
		return []int64{}, nil
	}

	ids := make([]int64, 0, len(approved))
	err := tx.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, g := range approved {
			q := domain.NewQuestionFromGenerated(g, createdBy)
			if err := repo.SaveQuestion(txCtx, q); err != nil {
				return err
			}
			ids = append(ids, q.ID)
		}
		return nil
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to save approved questions", err)
	}

	logger.Get().Info("Saved approved questions", zap.Int("count", len(ids)), zap.Int64("created_by", createdBy))
	return ids, nil
}
