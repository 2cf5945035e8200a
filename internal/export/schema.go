package export

import (
	"fmt"
	"strings"

	"github.com/nishad/ffqf/internal/models"
)

// SchemaVersion is recorded in the metaInfo table.
const SchemaVersion = "1"

var integerColumns = map[string]bool{
	"base_count": true,
	"read_count": true,
}

// schema returns the statements creating the output database.
func schema() []string {
	cols := make([]string, 0, len(models.Fields()))
	for _, f := range models.Fields() {
		typ := "TEXT"
		if integerColumns[f] {
			typ = "INTEGER"
		}
		cols = append(cols, fmt.Sprintf("%s %s", f, typ))
	}

	return []string{
		`CREATE TABLE metaInfo (name varchar(50), value varchar(50))`,

		fmt.Sprintf("CREATE TABLE runs (\n\t%s\n)", strings.Join(cols, ",\n\t")),
		`CREATE UNIQUE INDEX runs_run_idx ON runs (run_accession)`,

		`CREATE TABLE files (
			run_accession TEXT NOT NULL,
			name TEXT,
			type TEXT,
			size INTEGER,
			md5 TEXT,
			url TEXT,
			urltype TEXT,
			zone TEXT
		)`,
		`CREATE INDEX files_run_idx ON files (run_accession)`,
	}
}

// insertRun returns the statement inserting one runs row.
func insertRun() string {
	fields := models.Fields()
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(fields)), ", ")
	return fmt.Sprintf("INSERT INTO runs (%s) VALUES (%s)", strings.Join(fields, ", "), marks)
}

const insertFile = `INSERT INTO files
	(run_accession, name, type, size, md5, url, urltype, zone)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
