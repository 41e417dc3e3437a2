package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"daily-trivia-service/internal/answer"
	"daily-trivia-service/internal/app"
	"daily-trivia-service/internal/calendar"
	"daily-trivia-service/internal/domain"
	"daily-trivia-service/internal/infra/memory"
	"daily-trivia-service/internal/progress"
	"github.com/gorilla/websocket"
)

const today = "2026-03-10"

func newTestServer(t *testing.T, days map[string]domain.DaySet) *httptest.Server {
	t.Helper()
	cal := calendar.Fixed(today)
	questions := app.NewQuestionService(memory.NewQuestionRepository(memory.NewStaticQuestionLoader(days), time.Minute), cal)
	matcher, err := answer.NewMatcherFromNames(nil, nil)
	if err != nil {
		t.Fatalf("matcher: %v", err)
	}
	records := progress.NewRepository(memory.NewPlayerStore(), cal)
	service := app.NewGameService(memory.NewSessionStore(), questions, matcher, records)
	server := httptest.NewServer(NewRouter(service, nil))
	t.Cleanup(server.Close)
	return server
}

func sampleDays() map[string]domain.DaySet {
	return map[string]domain.DaySet{
		today: {
			Day:  42,
			Date: today,
			Questions: []domain.Question{{
				Day:              42,
				Date:             today,
				Category:         "Geography",
				Question:         "What is the capital of Australia?",
				Answer:           "Canberra",
				AlternateAnswers: []string{},
			}},
		},
	}
}

func TestTodayQuestionEndpoints(t *testing.T) {
	server := newTestServer(t, sampleDays())

	resp, err := http.Get(server.URL + "/today-question")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var q domain.Question
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if q.Answer != "Canberra" || q.Day != 42 {
		t.Fatalf("unexpected question %+v", q)
	}

	resp2, err := http.Get(server.URL + "/today-questions")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp2.Body.Close()
	var set dayPayload
	if err := json.NewDecoder(resp2.Body).Decode(&set); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if set.Day != 42 || len(set.Questions) != 1 {
		t.Fatalf("unexpected set %+v", set)
	}
}

func TestTodayQuestionNotScheduled(t *testing.T) {
	server := newTestServer(t, nil)
	resp, err := http.Get(server.URL + "/today-question")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestValidateEndpoint(t *testing.T) {
	server := newTestServer(t, nil)

	cases := []struct {
		name   string
		body   string
		status int
		method any
	}{
		{"keyword", `{"userAnswer":"Brady","correctAnswer":"Tom Brady","alternateAnswers":[]}`, http.StatusOK, "keyword"},
		{"miss falls through to unconfigured judge", `{"userAnswer":"Manning","correctAnswer":"Tom Brady","alternateAnswers":["brady"]}`, http.StatusOK, "ai-error"},
		{"invalid json", `{"userAnswer":`, http.StatusBadRequest, nil},
		{"missing alternates", `{"userAnswer":"Brady","correctAnswer":"Tom Brady"}`, http.StatusBadRequest, nil},
		{"empty answer", `{"userAnswer":"","correctAnswer":"Tom Brady","alternateAnswers":[]}`, http.StatusBadRequest, nil},
		{"blank answer", `{"userAnswer":"   ","correctAnswer":"Tom Brady","alternateAnswers":[]}`, http.StatusBadRequest, nil},
	}
	for _, tc := range cases {
		resp, err := http.Post(server.URL+"/validate", "application/json", bytes.NewBufferString(tc.body))
		if err != nil {
			t.Fatalf("%s: post: %v", tc.name, err)
		}
		var body map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if resp.StatusCode != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, resp.StatusCode)
		}
		if tc.status != http.StatusOK {
			if body["error"] == nil {
				t.Fatalf("%s: expected error body", tc.name)
			}
			continue
		}
		if body["method"] != tc.method {
			t.Fatalf("%s: expected method %v, got %v", tc.name, tc.method, body["method"])
		}
	}
}

func TestWebSocketPlaysDay(t *testing.T) {
	server := newTestServer(t, sampleDays())

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?playerId=p1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	state := readUntil(t, conn, func(typ string, payload map[string]any) bool {
		return typ == "state" && payload["phase"] == string(app.PhaseWager)
	})
	if state["maxWager"].(float64) != 1000 {
		t.Fatalf("expected single question wager floor, got %v", state["maxWager"])
	}

	send(t, conn, "wager", map[string]any{"amount": 0})
	readUntil(t, conn, func(typ string, payload map[string]any) bool {
		return typ == "state" && payload["phase"] == string(app.PhaseQuestion)
	})

	send(t, conn, "answer", map[string]any{"text": "canberra"})
	result := readUntil(t, conn, func(typ string, payload map[string]any) bool {
		return typ == "state" && payload["phase"] == string(app.PhaseResult)
	})
	if result["streak"].(float64) != 1 || result["totalCorrect"].(float64) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	send(t, conn, "share", nil)
	share := readUntil(t, conn, func(typ string, _ map[string]any) bool { return typ == "share" })
	if !strings.Contains(share["text"].(string), "#042") {
		t.Fatalf("unexpected share text %v", share["text"])
	}

	send(t, conn, "wager", map[string]any{"amount": 1})
	readUntil(t, conn, func(typ string, _ map[string]any) bool { return typ == "error" })
}

func TestWebSocketRequiresPlayer(t *testing.T) {
	server := newTestServer(t, sampleDays())
	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial failure")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 response")
	}
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(string, map[string]any) bool) map[string]any {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(deadline)
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if match(msg.Type, msg.Payload) {
			return msg.Payload
		}
	}
}
