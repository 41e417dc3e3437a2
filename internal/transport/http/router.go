package http

import (
	"net/http"

	"daily-trivia-service/internal/app"
)

// NewRouter mounts every endpoint. A nil metrics handler leaves /metrics unmounted.
func NewRouter(service *app.GameService, metrics http.Handler) *http.ServeMux {
	rest := NewRESTHandler(service)
	ws := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/today-question", rest.TodayQuestion)
	mux.HandleFunc("/today-questions", rest.TodayQuestions)
	mux.HandleFunc("/validate", rest.Validate)
	mux.HandleFunc("/ws", ws.ServeWS)
	if metrics != nil {
		mux.Handle("/metrics", metrics)
	}
	return mux
}
