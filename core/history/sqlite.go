package history

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// SQLiteLog persists history in a SQLite database.
type SQLiteLog struct {
	db   *sql.DB
	path string
}

var _ Log = (*SQLiteLog)(nil)

// OpenSQLiteLog creates (or opens) the database at path.
func OpenSQLiteLog(path string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	log := &SQLiteLog{db: db, path: path}
	if err := log.init(); err != nil {
		db.Close()
		return nil, err
	}
	return log, nil
}

func (s *SQLiteLog) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		line TEXT NOT NULL
	);`)
	return err
}

// Load implements Log.
func (s *SQLiteLog) Load() ([]string, error) {
	rows, err := s.db.Query("SELECT line FROM history ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		entries = append(entries, line)
	}
	return entries, rows.Err()
}

// Save implements Log, replacing every stored row in one transaction.
func (s *SQLiteLog) Save(entries []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM history"); err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT INTO history (line) VALUES (?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, entry := range entries {
		if _, err := stmt.Exec(entry); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Path implements Log.
func (s *SQLiteLog) Path() string {
	return s.path
}

// Close releases the database.
func (s *SQLiteLog) Close() error {
	return s.db.Close()
}
