package store

import (
	"encoding/json"
	"fmt"

	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/model"
)

// InsertSheetMeta records one sheet's recognition outcome for traceability.
func (s *Store) InsertSheetMeta(uploadLogID int64, rec model.SheetRecognition, columns []string) error {
	_, err := s.db.Exec(`
		INSERT INTO sheet_meta (
			upload_log_id, sheet_name, role, score,
			row_count, column_count, columns_json
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uploadLogID, rec.SheetName, string(rec.Role), rec.Score,
		rec.RowCount, rec.ColCount, BuildColumnsJSON(columns))
	if err != nil {
		return fmt.Errorf("failed to insert sheet_meta: %w", err)
	}
	return nil
}

// BuildColumnsJSON serializes column names as JSON for storage.
func BuildColumnsJSON(columns []string) string {
	b, err := json.Marshal(columns)
	if err != nil {
		return "[]"
	}
	return string(b)
}
