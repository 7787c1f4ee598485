package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Drawing is a finished canvas.
type Drawing struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Segments  int       `json:"segments"`
	CreatedAt time.Time `json:"created_at"`
	// PNG is only loaded by Image.
	PNG []byte `json:"-"`
}

// DrawingRepository reads and writes drawings.
type DrawingRepository struct {
	db *sql.DB
}

// Drawings returns the drawing repository for this store.
func (s *Store) Drawings() *DrawingRepository {
	return &DrawingRepository{db: s.db}
}

// Create stores d, assigning an ID when it has none.
func (r *DrawingRepository) Create(d *Drawing) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now().UTC()

	var session any
	if d.SessionID != "" {
		session = d.SessionID
	}

	_, err := r.db.Exec(
		`INSERT INTO drawings (id, session_id, width, height, segments, png, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, session, d.Width, d.Height, d.Segments, d.PNG, d.CreatedAt,
	)
	return err
}

// GetByID returns a drawing's metadata without the image.
func (r *DrawingRepository) GetByID(id string) (*Drawing, error) {
	d, err := scanDrawing(r.db.QueryRow(
		`SELECT id, session_id, width, height, segments, created_at FROM drawings WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return d, err
}

// Image returns a drawing's PNG bytes.
func (r *DrawingRepository) Image(id string) ([]byte, error) {
	var png []byte
	err := r.db.QueryRow(`SELECT png FROM drawings WHERE id = ?`, id).Scan(&png)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return png, err
}

// List returns drawing metadata, newest first.
func (r *DrawingRepository) List() ([]*Drawing, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, width, height, segments, created_at FROM drawings
		 ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drawings []*Drawing
	for rows.Next() {
		d, err := scanDrawing(rows)
		if err != nil {
			return nil, err
		}
		drawings = append(drawings, d)
	}
	return drawings, rows.Err()
}

// Delete removes a drawing.
func (r *DrawingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM drawings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

func scanDrawing(row rowScanner) (*Drawing, error) {
	d := &Drawing{}
	var session sql.NullString
	if err := row.Scan(&d.ID, &session, &d.Width, &d.Height, &d.Segments, &d.CreatedAt); err != nil {
		return nil, err
	}
	d.SessionID = session.String
	return d, nil
}
