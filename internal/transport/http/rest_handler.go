package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"daily-trivia-service/internal/answer"
	"daily-trivia-service/internal/app"
	"daily-trivia-service/internal/domain"
	"github.com/sirupsen/logrus"
)

// RESTHandler exposes today's questions and standalone answer validation.
type RESTHandler struct {
	service *app.GameService
}

func NewRESTHandler(service *app.GameService) *RESTHandler {
	return &RESTHandler{service: service}
}

type errorPayload struct {
	Error string `json:"error"`
}

type dayPayload struct {
	Day       int               `json:"day"`
	Date      string            `json:"date"`
	Questions []domain.Question `json:"questions"`
}

type validateRequest struct {
	UserAnswer       string    `json:"userAnswer"`
	CorrectAnswer    string    `json:"correctAnswer"`
	AlternateAnswers *[]string `json:"alternateAnswers"`
	Question         string    `json:"question"`
	Category         string    `json:"category"`
}

// TodayQuestion serves the first question scheduled for today.
func (h *RESTHandler) TodayQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorPayload{Error: "method not allowed"})
		return
	}
	set, ok := h.today(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, set.Questions[0])
}

// TodayQuestions serves the whole set scheduled for today.
func (h *RESTHandler) TodayQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorPayload{Error: "method not allowed"})
		return
	}
	set, ok := h.today(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dayPayload{Day: set.Day, Date: set.Date, Questions: set.Questions})
}

func (h *RESTHandler) today(w http.ResponseWriter, r *http.Request) (domain.DaySet, bool) {
	set, err := h.service.Today(r.Context())
	switch {
	case err == nil:
		return set, true
	case errors.Is(err, domain.ErrNoQuestionToday):
		writeJSON(w, http.StatusNotFound, errorPayload{Error: "No question available for today."})
	default:
		logrus.WithError(err).Warn("question provider failed")
		writeJSON(w, http.StatusServiceUnavailable, errorPayload{Error: "Question provider unavailable."})
	}
	return domain.DaySet{}, false
}

// Validate judges a standalone answer through the matcher.
func (h *RESTHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorPayload{Error: "method not allowed"})
		return
	}
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "Invalid JSON"})
		return
	}
	if err := req.validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Error: "Missing required fields"})
		return
	}
	res := h.service.Validate(r.Context(), answer.Input{
		UserAnswer:       req.UserAnswer,
		CorrectAnswer:    req.CorrectAnswer,
		AlternateAnswers: *req.AlternateAnswers,
		Question:         req.Question,
		Category:         req.Category,
	})
	writeJSON(w, http.StatusOK, res)
}

func (r validateRequest) validate() error {
	if strings.TrimSpace(r.UserAnswer) == "" || strings.TrimSpace(r.CorrectAnswer) == "" || r.AlternateAnswers == nil {
		return domain.ErrValidationInput
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Debug("write response")
	}
}
