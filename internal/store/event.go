package store

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Event is one fired gesture action with the key events it produced.
type Event struct {
	ID        int64           `json:"id"`
	SessionID string          `json:"session_id"`
	At        time.Time       `json:"at"`
	Action    string          `json:"action"`
	State     string          `json:"state"`
	Keys      json.RawMessage `json:"keys"`
}

// EventRepository reads and writes action events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Create inserts e and fills in its ID.
func (r *EventRepository) Create(e *Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	keys := e.Keys
	if keys == nil {
		keys = json.RawMessage("[]")
	}

	result, err := r.db.Exec(
		`INSERT INTO events (session_id, at, action, state, keys) VALUES (?, ?, ?, ?, ?)`,
		e.SessionID, e.At, e.Action, e.State, string(keys),
	)
	if err != nil {
		return err
	}

	e.ID, err = result.LastInsertId()
	return err
}

// ListBySession returns a session's events in the order they fired.
// A limit <= 0 returns all of them.
func (r *EventRepository) ListBySession(sessionID string, limit int) ([]*Event, error) {
	query := `SELECT id, session_id, at, action, state, keys FROM events
		 WHERE session_id = ? ORDER BY id`
	args := []any{sessionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		var keys string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.At, &e.Action, &e.State, &keys); err != nil {
			return nil, err
		}
		e.Keys = json.RawMessage(keys)
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountByAction returns how often each action fired in a session.
func (r *EventRepository) CountByAction(sessionID string) (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT action, COUNT(*) FROM events WHERE session_id = ? GROUP BY action`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, err
		}
		counts[action] = n
	}
	return counts, rows.Err()
}
