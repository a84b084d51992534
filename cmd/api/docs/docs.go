// Package docs registers the OpenAPI document served under /swagger. It mirrors the
// swag annotations on the handlers; regenerate with
// swag init -g cmd/api/main.go -o cmd/api/docs --parseInternal
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/questions/generate": {
            "post": {
                "description": "Runs the full generate, validate, review and repair pipeline. With save set, approved questions are stored in the question bank.",
                "security": [
                    {
                        "ActorAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "questions"
                ],
                "summary": "Generate questions",
                "parameters": [
                    {
                        "description": "Generation request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.GenerateQuestionsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.GenerateQuestionsResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor id",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Generation failed",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/questions/generate/quick": {
            "post": {
                "description": "Generates and validates questions, skipping the AI review stage.",
                "security": [
                    {
                        "ActorAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "questions"
                ],
                "summary": "Generate questions without review",
                "parameters": [
                    {
                        "description": "Generation request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.GenerateQuestionsRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.QuickGenerateResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor id",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Generation failed",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/questions/generate/single": {
            "post": {
                "description": "Generates one question and drives it through the pipeline.",
                "security": [
                    {
                        "ActorAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "questions"
                ],
                "summary": "Generate one question",
                "parameters": [
                    {
                        "description": "Single question request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.GenerateSingleRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.SingleQuestionResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor id",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "503": {
                        "description": "Generation failed",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/exams/{id}/attempts": {
            "post": {
                "description": "Starts an attempt on a published exam for the calling student.",
                "security": [
                    {
                        "ActorAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "attempts"
                ],
                "summary": "Start an attempt",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Exam ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/dto.AttemptResponse"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor id",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Invalid attempt state",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/attempts/{id}/answers": {
            "put": {
                "description": "Stores or replaces the answer to one question of an in-progress attempt.",
                "security": [
                    {
                        "ActorAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "attempts"
                ],
                "summary": "Save an answer",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Attempt ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Answer",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.SaveAnswerRequest"
                        }
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor id",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Not allowed for this actor",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Invalid attempt state",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/exams/{id}/submit": {
            "post": {
                "description": "Submits the caller's latest attempt and grades it.",
                "security": [
                    {
                        "ActorAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "attempts"
                ],
                "summary": "Submit an attempt",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Exam ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.AttemptDetail"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor id",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Invalid attempt state",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/attempts/{id}": {
            "get": {
                "description": "Returns the graded answers of an attempt to its student or the exam publisher.",
                "security": [
                    {
                        "ActorAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "attempts"
                ],
                "summary": "Get attempt detail",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Attempt ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.AttemptDetail"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor id",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Not allowed for this actor",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/attempts/{id}/scores": {
            "put": {
                "description": "Applies teacher scores and feedback to answers of a submitted attempt.",
                "security": [
                    {
                        "ActorAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "grading"
                ],
                "summary": "Override answer scores",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Attempt ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Score overrides",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/dto.UpdateScoresRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.AttemptDetail"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor id",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Not allowed for this actor",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Invalid attempt state",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/attempts/{id}/confirm": {
            "post": {
                "description": "Marks the attempt as graded by the teacher, optionally with an explicit final score.",
                "security": [
                    {
                        "ActorAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "grading"
                ],
                "summary": "Confirm the grade",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Attempt ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    },
                    {
                        "description": "Final score and comment",
                        "name": "request",
                        "in": "body",
                        "required": false,
                        "schema": {
                            "$ref": "#/definitions/dto.ConfirmGradeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.AttemptDetail"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor id",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Not allowed for this actor",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "409": {
                        "description": "Invalid attempt state",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/api/exams/{id}/statistics": {
            "get": {
                "description": "Aggregates attempt scores for the exam publisher.",
                "security": [
                    {
                        "ActorAuth": []
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "grading"
                ],
                "summary": "Exam grade statistics",
                "parameters": [
                    {
                        "type": "integer",
                        "description": "Exam ID",
                        "name": "id",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/domain.GradeStatistics"
                        }
                    },
                    "400": {
                        "description": "Invalid input",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid actor id",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "403": {
                        "description": "Not allowed for this actor",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    },
                    "500": {
                        "description": "Internal server error",
                        "schema": {
                            "$ref": "#/definitions/middleware.ErrorResponse"
                        }
                    }
                }
            }
        },
        "/health": {
            "get": {
                "description": "Reports database and cache reachability.",
                "produces": [
                    "application/json"
                ],
                "tags": [
                    "health"
                ],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/dto.HealthResponse"
                        }
                    },
                    "503": {
                        "description": "Database unavailable",
                        "schema": {
                            "$ref": "#/definitions/dto.HealthResponse"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "domain.AnswerDetail": {
            "type": "object",
            "properties": {
                "question_id": {
                    "type": "integer"
                },
                "question_type": {
                    "type": "string"
                },
                "student_answer": {},
                "is_correct": {
                    "type": "boolean"
                },
                "score": {
                    "type": "integer"
                },
                "ai_score": {
                    "type": "number"
                },
                "teacher_score": {
                    "type": "number"
                },
                "feedback": {
                    "type": "string"
                },
                "ai_feedback": {
                    "type": "string"
                },
                "teacher_feedback": {
                    "type": "string"
                }
            }
        },
        "domain.AttemptDetail": {
            "type": "object",
            "properties": {
                "attempt_id": {
                    "type": "integer"
                },
                "exam_id": {
                    "type": "integer"
                },
                "student_id": {
                    "type": "integer"
                },
                "status": {
                    "type": "string"
                },
                "total_score": {
                    "type": "integer"
                },
                "final_score": {
                    "type": "number"
                },
                "is_graded_by_teacher": {
                    "type": "boolean"
                },
                "answers": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.AnswerDetail"
                    }
                }
            }
        },
        "domain.FieldIssue": {
            "type": "object",
            "properties": {
                "field": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                }
            }
        },
        "domain.GeneratedQuestion": {
            "type": "object",
            "properties": {
                "type": {
                    "type": "string"
                },
                "stem": {
                    "type": "string"
                },
                "options": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "string"
                    }
                },
                "answer": {},
                "explanation": {
                    "type": "string"
                },
                "difficulty": {
                    "type": "integer"
                },
                "knowledge_point": {
                    "type": "string"
                },
                "keywords": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                },
                "rubric": {
                    "type": "string"
                }
            }
        },
        "domain.GradeStatistics": {
            "type": "object",
            "properties": {
                "exam_id": {
                    "type": "integer"
                },
                "total_attempts": {
                    "type": "integer"
                },
                "submitted_count": {
                    "type": "integer"
                },
                "graded_count": {
                    "type": "integer"
                },
                "average_score": {
                    "type": "number"
                },
                "highest_score": {
                    "type": "number"
                },
                "lowest_score": {
                    "type": "number"
                },
                "pass_rate": {
                    "type": "number"
                }
            }
        },
        "domain.PipelineSummary": {
            "type": "object",
            "properties": {
                "total": {
                    "type": "integer"
                },
                "approved": {
                    "type": "integer"
                },
                "needs_review": {
                    "type": "integer"
                },
                "rejected": {
                    "type": "integer"
                },
                "success_rate": {
                    "type": "number"
                }
            }
        },
        "domain.ScoreUpdate": {
            "type": "object",
            "properties": {
                "question_id": {
                    "type": "integer"
                },
                "teacher_score": {
                    "type": "number"
                },
                "teacher_feedback": {
                    "type": "string"
                }
            }
        },
        "dto.AttemptResponse": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "integer"
                },
                "exam_id": {
                    "type": "integer"
                },
                "student_id": {
                    "type": "integer"
                },
                "status": {
                    "type": "string"
                },
                "started_at": {
                    "type": "string"
                },
                "submitted_at": {
                    "type": "string"
                }
            }
        },
        "dto.ConfirmGradeRequest": {
            "type": "object",
            "properties": {
                "final_score": {
                    "type": "number"
                },
                "comment": {
                    "type": "string"
                }
            }
        },
        "dto.GenerateQuestionsRequest": {
            "type": "object",
            "properties": {
                "course_name": {
                    "type": "string"
                },
                "knowledge_point": {
                    "type": "string"
                },
                "question_type": {
                    "type": "string"
                },
                "difficulty": {
                    "type": "integer"
                },
                "count": {
                    "type": "integer"
                },
                "language": {
                    "type": "string"
                },
                "additional_requirements": {
                    "type": "string"
                },
                "save": {
                    "type": "boolean"
                }
            }
        },
        "dto.GenerateQuestionsResponse": {
            "type": "object",
            "properties": {
                "summary": {
                    "$ref": "#/definitions/domain.PipelineSummary"
                },
                "approved_questions": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "question": {
                                "$ref": "#/definitions/domain.GeneratedQuestion"
                            },
                            "review_comment": {
                                "type": "string"
                            }
                        }
                    }
                },
                "needs_review_questions": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "question": {
                                "$ref": "#/definitions/domain.GeneratedQuestion"
                            },
                            "original": {
                                "$ref": "#/definitions/domain.GeneratedQuestion"
                            },
                            "issues": {
                                "type": "array",
                                "items": {
                                    "type": "object",
                                    "properties": {
                                        "type": {
                                            "type": "string"
                                        },
                                        "description": {
                                            "type": "string"
                                        }
                                    }
                                }
                            }
                        }
                    }
                },
                "rejected_questions": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "question": {
                                "$ref": "#/definitions/domain.GeneratedQuestion"
                            },
                            "validation_errors": {
                                "type": "array",
                                "items": {
                                    "$ref": "#/definitions/domain.FieldIssue"
                                }
                            }
                        }
                    }
                },
                "saved_question_ids": {
                    "type": "array",
                    "items": {
                        "type": "integer"
                    }
                }
            }
        },
        "dto.GenerateSingleRequest": {
            "type": "object",
            "properties": {
                "course_name": {
                    "type": "string"
                },
                "question_type": {
                    "type": "string"
                },
                "difficulty": {
                    "type": "integer"
                },
                "knowledge_point": {
                    "type": "string"
                }
            }
        },
        "dto.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "database": {
                    "type": "string"
                },
                "cache": {
                    "type": "string"
                }
            }
        },
        "dto.IssueResponse": {
            "type": "object",
            "properties": {
                "type": {
                    "type": "string"
                },
                "description": {
                    "type": "string"
                },
                "severity": {
                    "type": "string"
                }
            }
        },
        "dto.QuickGenerateResponse": {
            "type": "object",
            "properties": {
                "questions": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.GeneratedQuestion"
                    }
                }
            }
        },
        "dto.SaveAnswerRequest": {
            "type": "object",
            "properties": {
                "question_id": {
                    "type": "integer"
                },
                "answer": {},
                "time_spent_seconds": {
                    "type": "integer"
                }
            }
        },
        "dto.SingleQuestionResponse": {
            "type": "object",
            "properties": {
                "status": {
                    "type": "string"
                },
                "question": {
                    "$ref": "#/definitions/domain.GeneratedQuestion"
                },
                "original": {
                    "$ref": "#/definitions/domain.GeneratedQuestion"
                },
                "review_comment": {
                    "type": "string"
                },
                "issues": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/dto.IssueResponse"
                    }
                },
                "validation_errors": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.FieldIssue"
                    }
                }
            }
        },
        "dto.UpdateScoresRequest": {
            "type": "object",
            "properties": {
                "updates": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/domain.ScoreUpdate"
                    }
                }
            }
        },
        "middleware.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        }
    },
    "securityDefinitions": {
        "ActorAuth": {
            "description": "Numeric id of the calling student or teacher.",
            "type": "apiKey",
            "name": "X-Actor-ID",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Quiz Forge API",
	Description:      "Question generation pipeline, exam attempts and grading.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
