package export

import (
	"database/sql"
	"time"

	"github.com/hashicorp/go-multierror"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nishad/ffqf/internal/models"
)

// writeSQLite creates a new database at path holding the runs and their files.
func writeSQLite(path string, infos []*models.RunInformation) (err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			err = multierror.Append(err, cerr).ErrorOrNil()
		}
	}()

	// Set pragmas for performance; the file is discarded on failure anyway
	pragmas := []string{
		"PRAGMA journal_mode = OFF",
		"PRAGMA synchronous = OFF",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return err
		}
	}

	for _, stmt := range schema() {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	meta := [][2]string{
		{"schema version", SchemaVersion},
		{"creation timestamp", time.Now().UTC().Format("2006-01-02 15:04:05")},
	}
	for _, m := range meta {
		if _, err := tx.Exec(`INSERT INTO metaInfo (name, value) VALUES (?, ?)`, m[0], m[1]); err != nil {
			return err
		}
	}

	runStmt, err := tx.Prepare(insertRun())
	if err != nil {
		return err
	}
	defer runStmt.Close()

	fileStmt, err := tx.Prepare(insertFile)
	if err != nil {
		return err
	}
	defer fileStmt.Close()

	for _, info := range infos {
		values := info.Values()
		args := make([]interface{}, len(values))
		for i, v := range values {
			args[i] = nullString(v)
		}
		if _, err := runStmt.Exec(args...); err != nil {
			return err
		}

		for _, f := range info.Files {
			_, err := fileStmt.Exec(info.RunAccession, f.Name, string(f.Type), nullInt64(f.Size),
				nullString(f.MD5), f.URL, string(f.URLType), nullString(f.Zone))
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// Helper function to handle NULL strings
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

// Helper function to handle NULL int64
func nullInt64(i int64) sql.NullInt64 {
	if i == 0 {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: i, Valid: true}
}
