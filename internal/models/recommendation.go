package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Recommendation types and priorities.
const (
	RecommendationProgression = "progression"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// AIRecommendation is a stored piece of coach advice, such as the weekly
// digest. Context holds the full structured payload the advice was derived
// from.
type AIRecommendation struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Context   json.RawMessage `json:"context"`
	Priority  string          `json:"priority"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateRecommendation stores a piece of coach advice.
func CreateRecommendation(db *sql.DB, userID, recType, title, content string, context json.RawMessage, priority string) (*AIRecommendation, error) {
	if priority == "" {
		priority = PriorityMedium
	}
	if len(context) == 0 {
		context = json.RawMessage("{}")
	}
	id := newID()
	_, err := db.Exec(
		`INSERT INTO ai_recommendations (id, user_id, type, title, content, context, priority)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, userID, recType, title, content, string(context), priority)
	if err != nil {
		return nil, fmt.Errorf("models: create recommendation %q: %w", title, err)
	}
	return GetRecommendationByID(db, userID, id)
}

const recommendationColumns = `id, user_id, type, title, content, context, priority, created_at`

func scanRecommendation(scan func(dest ...any) error) (*AIRecommendation, error) {
	r := &AIRecommendation{}
	var context string
	err := scan(&r.ID, &r.UserID, &r.Type, &r.Title, &r.Content, &context, &r.Priority, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.Context = json.RawMessage(context)
	return r, nil
}

// GetRecommendationByID retrieves a recommendation owned by the given user.
func GetRecommendationByID(db *sql.DB, userID, id string) (*AIRecommendation, error) {
	row := db.QueryRow(
		`SELECT `+recommendationColumns+` FROM ai_recommendations WHERE id = ? AND user_id = ?`,
		id, userID)
	r, err := scanRecommendation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get recommendation %s: %w", id, err)
	}
	return r, nil
}

// ListRecommendations returns a user's recommendations, newest first,
// optionally filtered by type.
func ListRecommendations(db *sql.DB, userID, recType string, limit int) ([]*AIRecommendation, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + recommendationColumns + ` FROM ai_recommendations WHERE user_id = ?`
	args := []any{userID}
	if recType != "" {
		query += ` AND type = ?`
		args = append(args, recType)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("models: list recommendations for user %s: %w", userID, err)
	}
	defer rows.Close()

	var recs []*AIRecommendation
	for rows.Next() {
		r, err := scanRecommendation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("models: scan recommendation: %w", err)
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// DeleteRecommendation removes a recommendation by ID.
func DeleteRecommendation(db *sql.DB, userID, id string) error {
	result, err := db.Exec(`DELETE FROM ai_recommendations WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("models: delete recommendation %s: %w", id, err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
