package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"daily-trivia-service/internal/app"
	"daily-trivia-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)

	_ = store.GetOrCreate("p1|2026-03-01", func() *app.DayController {
		return app.NewDayController("p1", nil, nil, nil)
	})
	if !mr.Exists("trivia:session:p1|2026-03-01") {
		t.Fatalf("expected redis key to be set")
	}

	store.DeleteIfIdle("p1|2026-03-01")
	if mr.Exists("trivia:session:p1|2026-03-01") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("p1|2026-03-01"); ok {
		t.Fatalf("expected controller removed")
	}
}

func TestPlayerStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewPlayerStore(newClient(mr))
	ctx := context.Background()
	if _, err := store.Get(ctx, "p1"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Put(ctx, "p1", []byte(`{"points":10}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := store.Get(ctx, "p1")
	if err != nil || string(got) != `{"points":10}` {
		t.Fatalf("unexpected record %q err=%v", got, err)
	}
	if mr.TTL("trivia:player:p1") != 0 {
		t.Fatalf("player records must not expire")
	}

	mr.Close()
	if _, err := store.Get(ctx, "p1"); !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected persistence error after shutdown, got %v", err)
	}
}
