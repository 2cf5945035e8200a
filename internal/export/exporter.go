// Package export writes resolved runs as JSON, TSV, CSV, a text table or a
// SQLite database.
package export

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nishad/ffqf/internal/errors"
	"github.com/nishad/ffqf/internal/models"
)

// Config holds the export configuration
type Config struct {
	Format Format
	// OutputPath is the file to write; stdout when empty.
	OutputPath string
	// Compress gzips the output file. Implied by a .gz output path.
	Compress bool
}

// Stats holds export statistics
type Stats struct {
	Runs     int
	Files    int
	Bytes    int64 // size of the output file, 0 for stdout
	Duration time.Duration
}

// Exporter writes runs in the configured format. File output goes to a
// temporary file that replaces OutputPath only once complete.
type Exporter struct {
	cfg    *Config
	stdout io.Writer
}

// NewExporter creates a new exporter instance. stdout receives the output
// when no path is configured.
func NewExporter(cfg *Config, stdout io.Writer) (*Exporter, error) {
	const op errors.Op = "export.NewExporter"

	if cfg.Format == "" {
		cfg.Format = FormatFor(cfg.OutputPath)
	}
	if _, err := ParseFormat(string(cfg.Format)); err != nil {
		return nil, errors.Wrap(op, err)
	}
	if cfg.Format == SQLITE && cfg.OutputPath == "" {
		return nil, errors.Errorf(op, errors.KindConfig, "the SQLITE format requires an output path")
	}
	if strings.HasSuffix(strings.ToLower(cfg.OutputPath), ".gz") {
		cfg.Compress = true
	}

	if cfg.OutputPath != "" {
		// Create output directory if needed
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0755); err != nil {
			return nil, errors.E(op, errors.KindIO, err, "failed to create output directory")
		}
	}

	return &Exporter{cfg: cfg, stdout: stdout}, nil
}

// Export performs the export process
func (e *Exporter) Export(infos []*models.RunInformation) (*Stats, error) {
	const op errors.Op = "export.Exporter.Export"

	startTime := time.Now()
	stats := &Stats{Runs: len(infos)}
	for _, info := range infos {
		stats.Files += len(info.Files)
	}

	if e.cfg.OutputPath == "" {
		if err := e.write(e.stdout, infos); err != nil {
			return nil, errors.E(op, errors.KindIO, err, "failed to write output")
		}
		stats.Duration = time.Since(startTime)
		return stats, nil
	}

	tempPath := e.cfg.OutputPath + ".tmp"

	// Remove any existing temp file
	os.Remove(tempPath)

	if err := e.writeFile(tempPath, infos); err != nil {
		os.Remove(tempPath)
		return nil, errors.E(op, errors.KindIO, err, "failed to write "+e.cfg.OutputPath)
	}

	if e.cfg.Compress {
		gzPath := tempPath + ".gz"
		err := compressFile(tempPath, gzPath, strings.TrimSuffix(filepath.Base(e.cfg.OutputPath), ".gz"))
		os.Remove(tempPath)
		if err != nil {
			os.Remove(gzPath)
			return nil, errors.E(op, errors.KindIO, err, "failed to compress output")
		}
		tempPath = gzPath
	}

	if err := os.Rename(tempPath, e.cfg.OutputPath); err != nil {
		os.Remove(tempPath)
		return nil, errors.E(op, errors.KindIO, err, "failed to move output")
	}

	if fi, err := os.Stat(e.cfg.OutputPath); err == nil {
		stats.Bytes = fi.Size()
	}
	stats.Duration = time.Since(startTime)

	return stats, nil
}

func (e *Exporter) writeFile(path string, infos []*models.RunInformation) error {
	if e.cfg.Format == SQLITE {
		return writeSQLite(path, infos)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := e.write(f, infos); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func (e *Exporter) write(w io.Writer, infos []*models.RunInformation) error {
	switch e.cfg.Format {
	case TSV:
		return writeDelimited(w, '\t', infos)
	case CSV:
		return writeDelimited(w, ',', infos)
	case TABLE:
		return writeTable(w, infos)
	default:
		return writeJSON(w, infos)
	}
}

// compressFile gzips src into dst, recording name as the original file name.
func compressFile(src, dst, name string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}

	gzWriter := gzip.NewWriter(dstFile)
	gzWriter.Name = name
	gzWriter.ModTime = time.Now()

	if _, err := io.Copy(gzWriter, srcFile); err != nil {
		gzWriter.Close()
		dstFile.Close()
		return err
	}
	if err := gzWriter.Close(); err != nil {
		dstFile.Close()
		return err
	}

	return dstFile.Close()
}
