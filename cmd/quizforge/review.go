package main

import (
	"encoding/json"
	"fmt"
	"os"

	"quiz-forge/internal/app"
	"quiz-forge/internal/config"
	"quiz-forge/internal/domain"

	"github.com/spf13/cobra"
)

type reviewOutput struct {
	Question *domain.GeneratedQuestion `json:"question"`
	Review   *domain.ReviewResult      `json:"review"`
}

func reviewCmd(load func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review FILE",
		Short: "Review a JSON array of questions with the language model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fix, _ := cmd.Flags().GetBool("fix")
			questions, err := readQuestions(args[0])
			if err != nil {
				return err
			}
			return withComponents(cmd.Context(), load(), func(c *app.Components) error {
				reviewed := c.Reviewer.ReviewBatch(cmd.Context(), questions, fix)
				out := make([]reviewOutput, 0, len(reviewed))
				for _, r := range reviewed {
					out = append(out, reviewOutput{Question: r.Question, Review: r.Review})
				}
				return writeJSON(cmd.OutOrStdout(), out)
			})
		},
	}
	cmd.Flags().Bool("fix", false, "Repair questions with error-severity issues and re-review them")
	return cmd
}

func readQuestions(path string) ([]*domain.GeneratedQuestion, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var questions []*domain.GeneratedQuestion
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return questions, nil
}
