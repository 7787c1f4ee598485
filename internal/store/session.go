package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// App names which program recorded a session.
type App string

const (
	AppKeys App = "keys"
	AppDraw App = "draw"
)

// Session is one run of a frame loop.
type Session struct {
	ID        string     `json:"id"`
	App       App        `json:"app"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Frames    int        `json:"frames"`
	Error     string     `json:"error,omitempty"`
}

// SessionRepository reads and writes sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Start records a new session for app and returns it.
func (r *SessionRepository) Start(app App) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		App:       app,
		StartedAt: time.Now().UTC(),
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, app, started_at) VALUES (?, ?, ?)`,
		sess.ID, string(sess.App), sess.StartedAt,
	)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// End marks a session finished with its frame count and terminal error.
func (r *SessionRepository) End(id string, frames int, runErr error) error {
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}

	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, frames = ?, error = ? WHERE id = ?`,
		time.Now().UTC(), frames, msg, id,
	)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

// GetByID returns one session.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess, err := scanSession(r.db.QueryRow(
		`SELECT id, app, started_at, ended_at, frames, error FROM sessions WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sess, err
}

// List returns sessions, newest first. An empty app lists all of them.
func (r *SessionRepository) List(app App) ([]*Session, error) {
	query := `SELECT id, app, started_at, ended_at, frames, error FROM sessions`
	var args []any
	if app != "" {
		query += ` WHERE app = ?`
		args = append(args, string(app))
	}
	query += ` ORDER BY started_at DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Delete removes a session and its events.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	sess := &Session{}
	var app string
	var ended sql.NullTime

	if err := row.Scan(&sess.ID, &app, &sess.StartedAt, &ended, &sess.Frames, &sess.Error); err != nil {
		return nil, err
	}

	sess.App = App(app)
	if ended.Valid {
		t := ended.Time
		sess.EndedAt = &t
	}
	return sess, nil
}
