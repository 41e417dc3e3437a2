package judge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"daily-trivia-service/internal/answer"
	"daily-trivia-service/internal/domain"
)

func TestVerdictYes(t *testing.T) {
	var got messagesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "secret" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("anthropic-version") != anthropicVersion {
			t.Errorf("missing version header")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"content":[{"type":"text","text":" yes\n"}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL})
	ok, err := client.Verdict(context.Background(), answer.Input{
		UserAnswer: "TB12", CorrectAnswer: "Tom Brady", Question: "Who?", Category: "NFL",
	})
	if err != nil {
		t.Fatalf("verdict: %v", err)
	}
	if !ok {
		t.Fatalf("expected affirmative verdict")
	}
	if got.MaxTokens != 10 || got.Model != defaultModel || got.System != systemPrompt {
		t.Fatalf("unexpected request %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Fatalf("expected one user message, got %+v", got.Messages)
	}
}

func TestVerdictFailures(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		},
		"garbage": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		},
		"no content": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"content":[]}`))
		},
		"rambling": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"content":[{"text":"It depends"}]}`))
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			defer server.Close()
			client := NewClient(Config{APIKey: "secret", BaseURL: server.URL})
			if _, err := client.Verdict(context.Background(), answer.Input{}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestVerdictUnconfigured(t *testing.T) {
	for _, key := range []string{"", placeholderAPIKey} {
		client := NewClient(Config{APIKey: key})
		if _, err := client.Verdict(context.Background(), answer.Input{}); !errors.Is(err, domain.ErrJudgeUnconfigured) {
			t.Fatalf("expected unconfigured error for key %q, got %v", key, err)
		}
	}
}

func TestUnreachableJudgeDegradesToAIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	m, err := answer.NewMatcherFromNames(nil, NewClient(Config{APIKey: "secret", BaseURL: url}))
	if err != nil {
		t.Fatalf("matcher: %v", err)
	}
	got := m.Match(context.Background(), answer.Input{UserAnswer: "Manning", CorrectAnswer: "Tom Brady"})
	if got != (domain.MatchResult{Correct: false, Method: domain.MethodAIError}) {
		t.Fatalf("expected ai-error, got %+v", got)
	}
}
