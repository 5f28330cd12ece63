package handlers

import (
	"bytes"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/model"
	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/service/excel"
	"github.com/zohrehrezaei-dev/PPMI-curated-data-dashboard/internal/store"
)

// UploadResponse is the result of one processed workbook.
type UploadResponse struct {
	SessionID    string                   `json:"sessionId"`
	FileName     string                   `json:"fileName"`
	MainSheet    string                   `json:"mainSheet"`
	DictSheet    string                   `json:"dictSheet,omitempty"`
	Recognitions []model.SheetRecognition `json:"recognitions"`
	RowCount     int                      `json:"rowCount"`
	ColumnCount  int                      `json:"columnCount"`
	DictEntries  int                      `json:"dictEntries"`
	Unused       int                      `json:"unusedEntries"`
	SkippedCodes int                      `json:"skippedCodes"`
}

// Upload receives a workbook, classifies its sheets, merges the dictionary
// and tags every variable in one pass, then opens a session for the result.
// A "session" form field targets an existing session instead, replacing its
// dataset. The only fatal error is an unreadable or empty workbook;
// everything else degrades to a smaller metadata set.
// POST /api/upload
func (h *Handlers) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	defer file.Close()

	maxBytes := int64(h.cfg.Server.MaxUploadMB) * 1024 * 1024
	if header.Size > maxBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large"})
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .xlsx and .xls files are supported"})
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}

	ds, err := h.process(content, header.Filename)
	if err != nil {
		h.logUpload("", header.Filename, header.Size, nil, "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable workbook: " + err.Error()})
		return
	}

	// An optional session field re-uploads into an existing session,
	// replacing its dataset and stored workbook.
	sessionID := c.PostForm("session")
	if sessionID != "" {
		if err := h.sessions.Replace(sessionID, ds); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found or expired"})
			return
		}
	} else {
		sessionID = h.sessions.Create(ds)
	}
	h.saveUpload(sessionID, content)
	h.logUpload(sessionID, header.Filename, header.Size, ds, "done", "")

	c.JSON(http.StatusOK, UploadResponse{
		SessionID:    sessionID,
		FileName:     header.Filename,
		MainSheet:    ds.MainSheet,
		DictSheet:    ds.DictSheet,
		Recognitions: ds.Recognitions,
		RowCount:     ds.Table.RowCount(),
		ColumnCount:  ds.Table.ColumnCount(),
		DictEntries:  len(ds.Dictionary.Entries),
		Unused:       len(ds.Dictionary.Unused),
		SkippedCodes: ds.Dictionary.SkippedCodes,
	})
}

// saveUpload keeps the session's raw workbook on disk; a re-upload under the
// same session id overwrites it. Failures only log.
func (h *Handlers) saveUpload(sessionID string, content []byte) {
	if h.uploadsDir == "" {
		return
	}
	path := filepath.Join(h.uploadsDir, sessionID+".xlsx")
	if err := os.WriteFile(path, content, 0644); err != nil {
		log.Printf("failed to keep uploaded workbook: %v", err)
	}
}

// logUpload records the upload outcome; bookkeeping failures only log.
func (h *Handlers) logUpload(sessionID, filename string, size int64, ds *model.Dataset, status, errMsg string) {
	fileID := ""
	if ds != nil {
		fileID = ds.FileID
	}
	logID, err := h.store.CreateUploadLog(sessionID, fileID, filename, size)
	if err != nil {
		log.Printf("upload log failed: %v", err)
		return
	}

	sum := store.UploadSummary{SessionID: sessionID, Filename: filename, FileSize: size}
	if ds != nil {
		sum.TotalSheets = len(ds.Recognitions)
		sum.MainSheet = ds.MainSheet
		sum.DictSheet = ds.DictSheet
		sum.RowCount = ds.Table.RowCount()
		sum.ColumnCount = ds.Table.ColumnCount()
		sum.DictEntries = len(ds.Dictionary.Entries)
		sum.UnusedEntries = len(ds.Dictionary.Unused)
		sum.SkippedCodes = ds.Dictionary.SkippedCodes
	}
	if err := h.store.CompleteUploadLog(logID, sum, status, errMsg); err != nil {
		log.Printf("upload log update failed: %v", err)
	}

	if ds != nil {
		for _, rec := range ds.Recognitions {
			cols := []string{}
			if rec.SheetName == ds.MainSheet {
				cols = ds.Table.Columns
			}
			if err := h.store.InsertSheetMeta(logID, rec, cols); err != nil {
				log.Printf("sheet meta insert failed: %v", err)
			}
		}
	}
}

// process runs the full pipeline: classify sheets, build tables, merge the
// dictionary and tag every variable.
func (h *Handlers) process(content []byte, filename string) (*model.Dataset, error) {
	parser := excel.NewParser()
	if err := parser.LoadFile(bytes.NewReader(content)); err != nil {
		return nil, err
	}

	recs, mainSheet, dictSheet := h.classifier.Classify(parser.Workbook())
	if mainSheet == "" {
		return nil, errors.New("workbook has no usable sheets")
	}

	table, err := parser.BuildTable(mainSheet, h.cfg.Analysis.NumericCoerceRatio)
	if err != nil {
		return nil, err
	}

	var dictTable *model.Table
	if dictSheet != "" {
		// A broken dictionary sheet degrades to "no dictionary".
		if dt, err := parser.BuildTable(dictSheet, h.cfg.Analysis.NumericCoerceRatio); err == nil {
			dictTable = dt
		} else {
			log.Printf("dictionary sheet %q unreadable, continuing without: %v", dictSheet, err)
			dictSheet = ""
		}
	}

	merge := h.merger.Merge(table, dictTable)

	ds := &model.Dataset{
		FileID:       parser.FileID(),
		FileName:     filename,
		UploadedAt:   time.Now(),
		Table:        table,
		Recognitions: recs,
		MainSheet:    mainSheet,
		DictSheet:    dictSheet,
		Dictionary:   merge,
		Variables:    h.tagger.BuildMetadata(table, merge, h.typeCfg),
	}
	return ds, nil
}
