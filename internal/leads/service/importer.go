package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"salesorch_backend/internal/leads/repository"
	"salesorch_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"
)

const defaultPreviewRows = 5

// ImportParams describes one uploaded lead file.
type ImportParams struct {
	FileName    string
	Data        []byte
	CampaignID  *uuid.UUID
	Commit      bool
	PreviewRows int
}

type ImportStats struct {
	Created int
	Updated int
}

type ImportResult struct {
	FileName  string
	TotalRows int
	Preview   []map[string]string
	Committed bool
	Stats     ImportStats
}

// Import parses a CSV or XLSX file into lead rows and, when commit is
// set, upserts them by (org, email). Rows without an email are skipped
// and duplicate emails within the file keep the first occurrence. Newly
// created leads go through the same intent/announce path as API-created
// ones; refreshed leads do not.
func (s *Service) Import(ctx context.Context, orgID uuid.UUID, p ImportParams) (ImportResult, error) {
	if p.CampaignID != nil {
		if err := s.campaignForOrg(ctx, orgID, *p.CampaignID); err != nil {
			return ImportResult{}, err
		}
	}

	rows, err := parseImportFile(p.FileName, p.Data)
	if err != nil {
		return ImportResult{}, err
	}
	rows = dedupeByEmail(rows)

	previewRows := p.PreviewRows
	if previewRows <= 0 {
		previewRows = defaultPreviewRows
	}
	preview := rows
	if len(preview) > previewRows {
		preview = preview[:previewRows]
	}

	result := ImportResult{
		FileName:  p.FileName,
		TotalRows: len(rows),
		Preview:   preview,
		Committed: p.Commit,
	}
	if !p.Commit {
		return result, nil
	}

	s.archiveImport(ctx, orgID, p.FileName, p.Data)

	for _, row := range rows {
		if row["email"] == "" {
			continue
		}
		created, err := s.upsertImportedLead(ctx, orgID, p.CampaignID, row)
		if err != nil {
			return ImportResult{}, err
		}
		if created {
			result.Stats.Created++
		} else {
			result.Stats.Updated++
		}
	}
	return result, nil
}

// upsertImportedLead writes one row. Created leads get their outbox
// intents in the same transaction and are announced after commit.
func (s *Service) upsertImportedLead(ctx context.Context, orgID uuid.UUID, campaignID *uuid.UUID, row map[string]string) (bool, error) {
	lead := repository.Lead{
		OrgID:       orgID,
		CampaignID:  campaignID,
		FirstName:   pick(row, "first_name", "firstname"),
		LastName:    pick(row, "last_name", "lastname"),
		Email:       row["email"],
		Company:     row["company"],
		LinkedinURL: pick(row, "linkedin", "linkedin_url"),
		Website:     row["website"],
		Phone:       row["phone"],
	}

	var created bool
	err := pgx.BeginFunc(ctx, s.repo.Pool(), func(tx pgx.Tx) error {
		var err error
		lead, created, err = s.repo.UpsertByEmail(ctx, tx, lead)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		return s.insertIntents(ctx, tx, lead)
	})
	if err != nil {
		return false, err
	}

	if created {
		s.announceCreated(ctx, lead)
	}
	return created, nil
}

func (s *Service) archiveImport(ctx context.Context, orgID uuid.UUID, fileName string, data []byte) {
	if s.archive == nil {
		return
	}
	objectName := fmt.Sprintf("%s/%s-%s", orgID, time.Now().UTC().Format("20060102T150405"), filepath.Base(fileName))
	if err := s.archive.Archive(ctx, objectName, data, contentTypeFor(fileName)); err != nil {
		s.log.Warn("lead import archive failed", "object", objectName, "error", err)
	}
}

func parseImportFile(fileName string, data []byte) ([]map[string]string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return parseCSV(data)
	case ".xls", ".xlsx":
		return parseXLSX(data)
	default:
		return nil, apperr.Validation("unsupported file type")
	}
}

func parseCSV(data []byte) ([]map[string]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "could not parse csv", err)
	}
	columns := normalizeHeader(header)

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, "could not parse csv", err)
		}
		rows = append(rows, recordToRow(columns, record))
	}
	return rows, nil
}

func parseXLSX(data []byte) ([]map[string]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "could not parse spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "could not parse spreadsheet", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	columns := normalizeHeader(records[0])
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		rows = append(rows, recordToRow(columns, record))
	}
	return rows, nil
}

// normalizeHeader trims, lowercases, and underscores column names so
// "First Name" and "first_name" address the same field.
func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	}
	return columns
}

func recordToRow(columns, record []string) map[string]string {
	row := make(map[string]string, len(columns))
	for i, col := range columns {
		if col == "" {
			continue
		}
		value := ""
		if i < len(record) {
			value = strings.TrimSpace(record[i])
		}
		row[col] = value
	}
	return row
}

// dedupeByEmail keeps the first row per email. Rows without an email
// survive parsing so the preview shows them, but commit skips them.
func dedupeByEmail(rows []map[string]string) []map[string]string {
	seen := make(map[string]bool, len(rows))
	out := rows[:0]
	for _, row := range rows {
		email := strings.ToLower(row["email"])
		if email != "" {
			if seen[email] {
				continue
			}
			seen[email] = true
		}
		out = append(out, row)
	}
	return out
}

func pick(row map[string]string, keys ...string) string {
	for _, key := range keys {
		if row[key] != "" {
			return row[key]
		}
	}
	return ""
}

func contentTypeFor(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return "text/csv"
	case ".xls", ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
