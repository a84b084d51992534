package main

import (
	"context"
	"fmt"

	"quiz-forge/internal/adapter/quizgen"
	"quiz-forge/internal/app"
	"quiz-forge/internal/config"
	"quiz-forge/internal/domain"
	"quiz-forge/internal/dto"
	"quiz-forge/internal/service"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func addRequestFlags(f *pflag.FlagSet) {
	f.StringP("course", "c", "", "Course name (required)")
	f.StringP("knowledge-point", "k", "", "Knowledge point to focus on")
	f.StringP("type", "t", string(domain.QuestionTypeSingle), "Question type (single, multiple, blank, short)")
	f.IntP("difficulty", "d", 3, "Difficulty from 1 to 5")
	f.IntP("count", "n", 5, "Number of questions to generate")
	f.StringP("language", "l", domain.DefaultLanguage, "Output language code")
	f.String("requirements", "", "Additional requirements for the model")
}

func requestFromFlags(f *pflag.FlagSet) dto.GenerateQuestionsRequest {
	var req dto.GenerateQuestionsRequest
	req.CourseName, _ = f.GetString("course")
	req.KnowledgePoint, _ = f.GetString("knowledge-point")
	req.QuestionType, _ = f.GetString("type")
	req.Difficulty, _ = f.GetInt("difficulty")
	req.Count, _ = f.GetInt("count")
	req.Language, _ = f.GetString("language")
	req.AdditionalRequirements, _ = f.GetString("requirements")
	return req
}

func generateCmd(load func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the generate, validate, review and fix pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := cmd.Flags()
			flagReq := requestFromFlags(f)
			req := flagReq.ToDomain()
			save, _ := f.GetBool("save")
			createdBy, _ := f.GetInt64("created-by")
			stream, _ := f.GetBool("stream")

			return withComponents(cmd.Context(), load(), func(c *app.Components) error {
				if stream {
					return runStream(cmd, c.Generator, req)
				}
				result, err := c.Pipeline.Generate(cmd.Context(), req)
				if err != nil {
					return err
				}
				resp := dto.GenerateQuestionsResponse{PipelineDict: result.ToDict()}
				if save {
					ids, err := service.SaveApproved(cmd.Context(), c.Questions, c.Tx, result, createdBy)
					if err != nil {
						return err
					}
					resp.SavedQuestionIDs = ids
				}
				return writeJSON(cmd.OutOrStdout(), resp)
			})
		},
	}
	f := cmd.Flags()
	addRequestFlags(f)
	f.Bool("save", false, "Store approved questions in the question bank")
	f.Int64("created-by", 0, "Teacher id recorded on saved questions")
	f.Bool("stream", false, "Print raw model output as it arrives, without review")
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

func quickCmd(load func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quick",
		Short: "Generate questions with structural validation only",
		RunE: func(cmd *cobra.Command, _ []string) error {
			flagReq := requestFromFlags(cmd.Flags())
			req := flagReq.ToDomain()
			return withComponents(cmd.Context(), load(), func(c *app.Components) error {
				questions, err := c.Pipeline.GenerateQuick(cmd.Context(), req)
				if err != nil {
					return err
				}
				if questions == nil {
					questions = []*domain.GeneratedQuestion{}
				}
				return writeJSON(cmd.OutOrStdout(), dto.QuickGenerateResponse{Questions: questions})
			})
		},
	}
	addRequestFlags(cmd.Flags())
	_ = cmd.MarkFlagRequired("course")
	return cmd
}

func runStream(cmd *cobra.Command, gen *quizgen.LLMQuestionGenerator, req domain.GenerationRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return consumeStream(cmd.Context(), gen.GenerateStream(cmd.Context(), req), cmd)
}

// consumeStream echoes chunks to stderr and writes the parsed questions to stdout.
func consumeStream(ctx context.Context, events <-chan quizgen.Event, cmd *cobra.Command) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return fmt.Errorf("generation stream closed without a result")
			}
			switch ev.Type {
			case quizgen.EventChunk:
				fmt.Fprint(cmd.ErrOrStderr(), ev.Content)
			case quizgen.EventError:
				fmt.Fprintln(cmd.ErrOrStderr())
				return domain.NewGenerationError(fmt.Errorf("%s", ev.Message))
			case quizgen.EventComplete:
				fmt.Fprintln(cmd.ErrOrStderr())
				return writeJSON(cmd.OutOrStdout(), dto.QuickGenerateResponse{Questions: ev.Questions})
			}
		}
	}
}
