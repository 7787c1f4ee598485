package store

// runMigrations creates the schema if it does not exist.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per run of either program.
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			app TEXT NOT NULL CHECK(app IN ('keys', 'draw')),
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			frames INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT ''
		)`,

		// Fired gesture actions and the key events they produced.
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			at DATETIME NOT NULL,
			action TEXT NOT NULL,
			state TEXT NOT NULL,
			keys TEXT NOT NULL DEFAULT '[]'
		)`,

		// Finished canvases as PNG.
		`CREATE TABLE IF NOT EXISTS drawings (
			id TEXT PRIMARY KEY,
			session_id TEXT REFERENCES sessions(id) ON DELETE SET NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			segments INTEGER NOT NULL DEFAULT 0,
			png BLOB NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_session_id ON events(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_drawings_session_id ON drawings(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}
