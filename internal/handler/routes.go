package handler

import (
	"time"

	"quiz-forge/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// NewApp creates the fiber app with the shared middleware stack.
func NewApp(readTimeout, writeTimeout time.Duration) *fiber.App {
	app := fiber.New(fiber.Config{
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})
	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept," + middleware.ActorHeader,
		MaxAge:       300,
	}))
	return app
}

// RegisterRoutes mounts every endpoint on app. The swagger UI serves whichever
// document the binary registered with swag.
func RegisterRoutes(app *fiber.App, questions *QuestionHandler, exams *ExamHandler, health *HealthHandler) {
	app.Get("/health", health.Check)
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api", middleware.RequireActor())

	api.Post("/questions/generate", questions.Generate)
	api.Post("/questions/generate/quick", questions.GenerateQuick)
	api.Post("/questions/generate/single", questions.GenerateSingle)

	api.Post("/exams/:id/attempts", exams.StartAttempt)
	api.Post("/exams/:id/submit", exams.SubmitAttempt)
	api.Get("/exams/:id/statistics", exams.Statistics)

	api.Get("/attempts/:id", exams.GetAttempt)
	api.Put("/attempts/:id/answers", exams.SaveAnswer)
	api.Put("/attempts/:id/scores", exams.UpdateScores)
	api.Post("/attempts/:id/confirm", exams.ConfirmGrade)
}
