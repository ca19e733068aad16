package models

import (
	"database/sql"
	"fmt"
	"time"
)

// DailyAILimit is the number of coach calls a user gets per UTC day.
const DailyAILimit = 10

// Cost rates in EUR per million tokens.
const (
	inputCostPerMillion  = 3.0
	outputCostPerMillion = 15.0
)

// AIUsageLog records one successful coach call for quota accounting.
type AIUsageLog struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	FunctionName     string    `json:"function_name"`
	InputTokens      int       `json:"input_tokens"`
	OutputTokens     int       `json:"output_tokens"`
	Model            string    `json:"model"`
	EstimatedCostEUR float64   `json:"estimated_cost_eur"`
	CreatedAt        time.Time `json:"created_at"`
}

// EstimateCostEUR computes the approximate cost of a call from its token
// counts.
func EstimateCostEUR(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*inputCostPerMillion + float64(outputTokens)*outputCostPerMillion) / 1_000_000
}

// InsertUsageLog records one coach call. Cost is derived from the token
// counts.
func InsertUsageLog(db *sql.DB, userID, functionName string, inputTokens, outputTokens int, model string) (*AIUsageLog, error) {
	id := newID()
	cost := EstimateCostEUR(inputTokens, outputTokens)
	_, err := db.Exec(
		`INSERT INTO ai_usage_logs (id, user_id, function_name, input_tokens, output_tokens, model, estimated_cost_eur)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, userID, functionName, inputTokens, outputTokens, model, cost)
	if err != nil {
		return nil, fmt.Errorf("models: insert usage log for %s: %w", functionName, err)
	}

	log := &AIUsageLog{}
	err = db.QueryRow(
		`SELECT id, user_id, function_name, input_tokens, output_tokens, model, estimated_cost_eur, created_at
		 FROM ai_usage_logs WHERE id = ?`, id,
	).Scan(&log.ID, &log.UserID, &log.FunctionName, &log.InputTokens, &log.OutputTokens,
		&log.Model, &log.EstimatedCostEUR, &log.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("models: get usage log %s: %w", id, err)
	}
	return log, nil
}

// CountUsageSince returns how many coach calls the user has logged at or
// after the given instant. Quota checks pass midnight of the current UTC day.
func CountUsageSince(db *sql.DB, userID string, since time.Time) (int, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM ai_usage_logs WHERE user_id = ? AND created_at >= ?`,
		userID, since.UTC().Format("2006-01-02 15:04:05")).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("models: count usage for user %s: %w", userID, err)
	}
	return count, nil
}

// StartOfUTCDay returns midnight UTC of the day containing t.
func StartOfUTCDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// UsageSummary aggregates a user's coach usage over a window.
type UsageSummary struct {
	Calls            int     `json:"calls"`
	InputTokens      int     `json:"input_tokens"`
	OutputTokens     int     `json:"output_tokens"`
	EstimatedCostEUR float64 `json:"estimated_cost_eur"`
}

// SummarizeUsage totals a user's logged calls at or after since.
func SummarizeUsage(db *sql.DB, userID string, since time.Time) (*UsageSummary, error) {
	s := &UsageSummary{}
	err := db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0),
		 COALESCE(SUM(estimated_cost_eur), 0)
		 FROM ai_usage_logs WHERE user_id = ? AND created_at >= ?`,
		userID, since.UTC().Format("2006-01-02 15:04:05"),
	).Scan(&s.Calls, &s.InputTokens, &s.OutputTokens, &s.EstimatedCostEUR)
	if err != nil {
		return nil, fmt.Errorf("models: summarize usage for user %s: %w", userID, err)
	}
	return s, nil
}

// ListUsageLogs returns a user's logged calls, newest first.
func ListUsageLogs(db *sql.DB, userID string, limit int) ([]*AIUsageLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(
		`SELECT id, user_id, function_name, input_tokens, output_tokens, model, estimated_cost_eur, created_at
		 FROM ai_usage_logs WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("models: list usage logs for user %s: %w", userID, err)
	}
	defer rows.Close()

	var logs []*AIUsageLog
	for rows.Next() {
		l := &AIUsageLog{}
		if err := rows.Scan(&l.ID, &l.UserID, &l.FunctionName, &l.InputTokens, &l.OutputTokens,
			&l.Model, &l.EstimatedCostEUR, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("models: scan usage log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
