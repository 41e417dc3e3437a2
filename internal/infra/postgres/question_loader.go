package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"daily-trivia-service/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionLoader loads dated question JSONB from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadDay(ctx context.Context, date string) (domain.DaySet, error) {
	rows, err := l.pool.Query(ctx, `SELECT day, data FROM daily_questions WHERE date=$1 ORDER BY position`, date)
	if err != nil {
		return domain.DaySet{}, fmt.Errorf("load day: %w", err)
	}
	defer rows.Close()

	set := domain.DaySet{Date: date}
	for rows.Next() {
		var (
			day int
			raw []byte
		)
		if err := rows.Scan(&day, &raw); err != nil {
			return domain.DaySet{}, fmt.Errorf("scan question: %w", err)
		}
		var q domain.Question
		if err := json.Unmarshal(raw, &q); err != nil {
			return domain.DaySet{}, fmt.Errorf("unmarshal question: %w", err)
		}
		q.Day, q.Date = day, date
		if q.AlternateAnswers == nil {
			q.AlternateAnswers = []string{}
		}
		set.Day = day
		set.Questions = append(set.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.DaySet{}, fmt.Errorf("load day: %w", err)
	}
	if len(set.Questions) == 0 {
		return domain.DaySet{}, domain.ErrNoQuestionToday
	}
	return set, nil
}
