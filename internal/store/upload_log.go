package store

import (
	"database/sql"
	"fmt"
)

// UploadSummary is the persisted outcome of one processed upload.
type UploadSummary struct {
	SessionID     string
	Filename      string
	FileSize      int64
	TotalSheets   int
	MainSheet     string
	DictSheet     string
	RowCount      int
	ColumnCount   int
	DictEntries   int
	UnusedEntries int
	SkippedCodes  int
}

// CreateUploadLog records the start of an upload, returning the log id.
// fileID is the parser's id for the workbook, "" when parsing never started.
func (s *Store) CreateUploadLog(sessionID, fileID, filename string, fileSize int64) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO upload_logs (session_id, file_id, filename, file_size, status)
		VALUES (?, ?, ?, ?, 'processing')
	`, sessionID, fileID, filename, fileSize)
	if err != nil {
		return 0, fmt.Errorf("failed to create upload log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get upload log id: %w", err)
	}
	return id, nil
}

// CompleteUploadLog finalizes an upload log with the processing outcome.
func (s *Store) CompleteUploadLog(id int64, sum UploadSummary, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE upload_logs SET
			total_sheets = ?,
			main_sheet = ?,
			dict_sheet = ?,
			row_count = ?,
			column_count = ?,
			dict_entries = ?,
			unused_entries = ?,
			skipped_codes = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, sum.TotalSheets, sum.MainSheet, sum.DictSheet,
		sum.RowCount, sum.ColumnCount,
		sum.DictEntries, sum.UnusedEntries, sum.SkippedCodes,
		status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update upload log: %w", err)
	}
	return nil
}

// LastUpload describes the most recent completed upload, for /api/status.
type LastUpload struct {
	Filename    string `json:"filename"`
	MainSheet   string `json:"mainSheet"`
	RowCount    int    `json:"rowCount"`
	ColumnCount int    `json:"columnCount"`
	CompletedAt string `json:"completedAt"`
}

// GetLastUpload returns the latest successfully processed upload, or nil
// when nothing has been imported yet.
func (s *Store) GetLastUpload() (*LastUpload, error) {
	row := s.db.QueryRow(`
		SELECT filename, main_sheet, row_count, column_count,
		       COALESCE(completed_at, '')
		FROM upload_logs
		WHERE status = 'done'
		ORDER BY id DESC
		LIMIT 1
	`)

	var last LastUpload
	err := row.Scan(&last.Filename, &last.MainSheet, &last.RowCount,
		&last.ColumnCount, &last.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last upload: %w", err)
	}
	return &last, nil
}

// CountUploads returns the total number of upload log rows.
func (s *Store) CountUploads() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM upload_logs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count uploads: %w", err)
	}
	return n, nil
}
