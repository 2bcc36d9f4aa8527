package service

import (
	"errors"
	"testing"

	"salesorch_backend/platform/apperr"
)

func TestParseCSVNormalizesHeaders(t *testing.T) {
	data := []byte("First Name,Last Name,Email,LinkedIn\nAda,Lovelace,ada@example.com,https://linkedin.com/in/ada\n")

	rows, err := parseCSV(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row["first_name"] != "Ada" {
		t.Errorf("first_name = %q", row["first_name"])
	}
	if row["last_name"] != "Lovelace" {
		t.Errorf("last_name = %q", row["last_name"])
	}
	if row["email"] != "ada@example.com" {
		t.Errorf("email = %q", row["email"])
	}
	if row["linkedin"] != "https://linkedin.com/in/ada" {
		t.Errorf("linkedin = %q", row["linkedin"])
	}
}

func TestParseCSVRaggedRows(t *testing.T) {
	data := []byte("email,company\na@example.com\nb@example.com,Globex,ignored\n")

	rows, err := parseCSV(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["company"] != "" {
		t.Errorf("short row company = %q, want empty", rows[0]["company"])
	}
	if rows[1]["company"] != "Globex" {
		t.Errorf("company = %q", rows[1]["company"])
	}
}

func TestParseImportFileUnsupportedExtension(t *testing.T) {
	_, err := parseImportFile("leads.pdf", []byte("%PDF"))
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDedupeByEmail(t *testing.T) {
	rows := []map[string]string{
		{"email": "a@example.com", "company": "first"},
		{"email": "A@example.com", "company": "shadowed"},
		{"email": "", "company": "no email"},
		{"email": "b@example.com"},
		{"email": ""},
	}

	out := dedupeByEmail(rows)
	if len(out) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(out))
	}
	if out[0]["company"] != "first" {
		t.Errorf("first occurrence should win, got %q", out[0]["company"])
	}
}

func TestPick(t *testing.T) {
	row := map[string]string{"linkedin": "", "linkedin_url": "https://linkedin.com/in/x"}
	if got := pick(row, "linkedin", "linkedin_url"); got != "https://linkedin.com/in/x" {
		t.Errorf("pick = %q", got)
	}
	if got := pick(row, "missing"); got != "" {
		t.Errorf("pick missing = %q", got)
	}
}
