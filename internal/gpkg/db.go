package gpkg

import (
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"
)

// Database wraps a read-only SQLite connection to a GeoPackage file.
type Database struct {
	db *sql.DB
}

// OpenDatabase opens the GeoPackage at path read-only. The connection is
// verified eagerly so a missing file or non-SQLite content fails here
// rather than on the first query.
func OpenDatabase(path string) (*Database, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseOpen, err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDatabaseOpen, path, err)
	}

	// sql.Open is lazy; force a read so corrupt or non-SQLite files are
	// rejected before parsing starts.
	var tables int
	if err := db.QueryRow("SELECT count(*) FROM sqlite_master").Scan(&tables); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %s is not a SQLite database: %v", ErrDatabaseOpen, path, err)
	}

	return &Database{db: db}, nil
}

// Close releases the underlying connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Each runs query and invokes scan once per result row. The statement is
// always finalized, including when scan aborts the iteration early.
func (d *Database) Each(query string, scan func(rows *sql.Rows) error) error {
	rows, err := d.db.Query(query)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrQuery, query, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: stepping %q: %v", ErrQuery, query, err)
	}
	return nil
}
