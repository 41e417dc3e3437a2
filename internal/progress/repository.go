package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"daily-trivia-service/internal/calendar"
	"daily-trivia-service/internal/domain"
	"github.com/sirupsen/logrus"
)

// Store persists raw player records keyed by player ID (in-memory, Redis,
// Postgres). Get returns domain.ErrRecordNotFound when nothing is stored.
type Store interface {
	Get(ctx context.Context, playerID string) ([]byte, error)
	Put(ctx context.Context, playerID string, data []byte) error
}

// LoadReport describes what Load had to do to produce a record.
type LoadReport struct {
	Fresh       bool
	FromVersion int
	StreakLost  bool
}

// Repository owns the durable player record.
type Repository struct {
	store    Store
	calendar *calendar.Calendar
}

func NewRepository(store Store, cal *calendar.Calendar) *Repository {
	return &Repository{store: store, calendar: cal}
}

// Today exposes the repository's calendar date.
func (r *Repository) Today() string {
	return r.calendar.Today()
}

// Load returns the player's record, migrated to the current schema with
// streak decay applied. It never fails: missing or unreadable state yields a
// fresh record.
func (r *Repository) Load(ctx context.Context, playerID string) (domain.PlayerRecord, LoadReport) {
	log := logrus.WithField("player", playerID)

	raw, err := r.store.Get(ctx, playerID)
	if err != nil {
		if !errors.Is(err, domain.ErrRecordNotFound) {
			log.Warnf("load player record: %v", err)
		}
		return NewRecord(), LoadReport{Fresh: true, FromVersion: CurrentSchemaVersion}
	}

	var record domain.PlayerRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		log.Warnf("discarding unreadable player record: %v", err)
		return NewRecord(), LoadReport{Fresh: true, FromVersion: CurrentSchemaVersion}
	}

	report := LoadReport{FromVersion: migrate(&record)}
	record, report.StreakLost = Decay(record, r.calendar.Today())
	if report.FromVersion != record.SchemaVersion {
		log.Infof("migrated player record from schema v%d to v%d", report.FromVersion, record.SchemaVersion)
	}
	return record, report
}

// Decay zeroes points and streak when more than one calendar day passed since
// the last completed day. Lifetime counters and history are kept. streakLost
// reports whether a positive streak was broken.
func Decay(record domain.PlayerRecord, today string) (domain.PlayerRecord, bool) {
	if record.LastPlayedDate == nil {
		return record, false
	}
	gap, err := calendar.DaysBetween(*record.LastPlayedDate, today)
	if err != nil || gap <= 1 {
		return record, false
	}
	lost := record.Streak > 0
	record.Points = 0
	record.Streak = 0
	record.DayStartPoints = nil
	record.DayStartedDay = nil
	return record, lost
}

// Save persists the record stamped with the current schema version. Failures
// are logged and swallowed; the in-memory session keeps going.
func (r *Repository) Save(ctx context.Context, playerID string, record domain.PlayerRecord) {
	if err := r.save(ctx, playerID, record); err != nil {
		logrus.WithField("player", playerID).Warnf("%v", err)
	}
}

func (r *Repository) save(ctx context.Context, playerID string, record domain.PlayerRecord) error {
	if record.SchemaVersion < CurrentSchemaVersion {
		record.SchemaVersion = CurrentSchemaVersion
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", domain.ErrPersistence, err)
	}
	if err := r.store.Put(ctx, playerID, data); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return nil
}
