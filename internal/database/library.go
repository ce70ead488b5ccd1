package database

import (
	"database/sql"
	"errors"
	"time"
)

// LibraryFile records the last analysis of a file found by a library scan.
type LibraryFile struct {
	Path        string      `json:"path"`
	Fingerprint string      `json:"fingerprint"`
	Size        int64       `json:"size"`
	AspectRatio AspectRatio `json:"aspect_ratio"`
	Error       string      `json:"error,omitempty"`
	AnalyzedAt  time.Time   `json:"analyzed_at"`
}

func (c Client) UpsertLibraryFile(f LibraryFile) error {
	query := `
	INSERT INTO library_files (
		path, fingerprint, size,
		aspect_primary, aspect_secondary, aspect_primary_raw, aspect_secondary_raw, aspect_samples,
		error, analyzed_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (path) DO UPDATE SET
		fingerprint = excluded.fingerprint,
		size = excluded.size,
		aspect_primary = excluded.aspect_primary,
		aspect_secondary = excluded.aspect_secondary,
		aspect_primary_raw = excluded.aspect_primary_raw,
		aspect_secondary_raw = excluded.aspect_secondary_raw,
		aspect_samples = excluded.aspect_samples,
		error = excluded.error,
		analyzed_at = excluded.analyzed_at
	`
	analyzedAt := f.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now().UTC()
	}
	ar := f.AspectRatio
	_, err := c.db.Exec(c.rebind(query),
		f.Path, f.Fingerprint, f.Size,
		ar.Primary, ar.Secondary, ar.PrimaryRaw, ar.SecondaryRaw, ar.TotalSamples,
		f.Error, analyzedAt,
	)
	return err
}

const libraryColumns = `path, fingerprint, size,
	aspect_primary, aspect_secondary, aspect_primary_raw, aspect_secondary_raw, aspect_samples,
	error, analyzed_at`

// GetLibraryFile returns nil, nil when path has never been scanned.
func (c Client) GetLibraryFile(path string) (*LibraryFile, error) {
	query := `SELECT ` + libraryColumns + ` FROM library_files WHERE path = ?`
	f, err := scanLibraryFile(c.db.QueryRow(c.rebind(query), path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (c Client) ListLibraryFiles() ([]LibraryFile, error) {
	rows, err := c.db.Query(`SELECT ` + libraryColumns + ` FROM library_files ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []LibraryFile{}
	for rows.Next() {
		f, err := scanLibraryFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func scanLibraryFile(s scanner) (LibraryFile, error) {
	var f LibraryFile
	err := s.Scan(
		&f.Path,
		&f.Fingerprint,
		&f.Size,
		&f.AspectRatio.Primary,
		&f.AspectRatio.Secondary,
		&f.AspectRatio.PrimaryRaw,
		&f.AspectRatio.SecondaryRaw,
		&f.AspectRatio.TotalSamples,
		&f.Error,
		&f.AnalyzedAt,
	)
	return f, err
}
