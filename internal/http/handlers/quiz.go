package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursemarket-backend/internal/http/response"
	"github.com/yungbote/coursemarket-backend/internal/services"
)

type QuizHandler struct {
	quizzes services.QuizService
}

func NewQuizHandler(quizzes services.QuizService) *QuizHandler {
	return &QuizHandler{quizzes: quizzes}
}

// POST /api/instructor/courses/:id/quizzes
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	courseID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title        string     `json:"title"`
		LessonID     *uuid.UUID `json:"lesson_id"`
		PassingScore int        `json:"passing_score"`
		MaxAttempts  int        `json:"max_attempts"`
		Questions    []struct {
			Prompt  string `json:"prompt"`
			Choices []struct {
				Text      string `json:"text"`
				IsCorrect bool   `json:"is_correct"`
			} `json:"choices"`
		} `json:"questions"`
	}
	if !bindJSON(c, &req) {
		return
	}
	in := services.QuizInput{
		Title:        req.Title,
		LessonID:     req.LessonID,
		PassingScore: req.PassingScore,
		MaxAttempts:  req.MaxAttempts,
	}
	for _, q := range req.Questions {
		qi := services.QuestionInput{Prompt: q.Prompt}
		for _, ch := range q.Choices {
			qi.Choices = append(qi.Choices, services.ChoiceInput{Text: ch.Text, IsCorrect: ch.IsCorrect})
		}
		in.Questions = append(in.Questions, qi)
	}
	quiz, err := h.quizzes.CreateQuiz(c.Request.Context(), courseID, in)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, true, gin.H{"quiz": quiz})
}

// POST /api/quizzes/:id/attempts
func (h *QuizHandler) StartAttempt(c *gin.Context) {
	quizID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	view, err := h.quizzes.StartAttempt(c.Request.Context(), quizID)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, !view.Resumed, gin.H{
		"attempt":   view.Attempt,
		"quiz":      view.Quiz,
		"questions": view.Questions,
		"resumed":   view.Resumed,
	})
}

// POST /api/attempts/:id/submit
//
// Body: {"answers": {"<question_id>": "<choice_id>", ...}}
func (h *QuizHandler) SubmitAttempt(c *gin.Context) {
	attemptID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Answers map[uuid.UUID]uuid.UUID `json:"answers"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.quizzes.SubmitAttempt(c.Request.Context(), attemptID, req.Answers)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, res)
}
