package tech

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// MergeMode selects how imported records combine with the existing
// collection.
type MergeMode string

const (
	// MergeReplace makes the imported set the entire collection.
	MergeReplace MergeMode = "replace"
	// MergeAppend concatenates imported records after the existing ones.
	// Ids are not deduplicated.
	MergeAppend MergeMode = "append"
)

// ParseMergeMode validates a raw merge mode string.
func ParseMergeMode(s string) (MergeMode, error) {
	switch MergeMode(s) {
	case MergeReplace, MergeAppend:
		return MergeMode(s), nil
	}
	return "", fmt.Errorf("tech: invalid merge mode %q (want replace or append)", s)
}

// ExportVersion is the version stamp written into export documents.
const ExportVersion = "1.0"

// MaxImportSize is the upload size cap applied before parsing.
const MaxImportSize = 5 << 20

// ExportDocument is the on-disk shape of an export file.
type ExportDocument struct {
	ExportedAt   string       `json:"exportedAt"`
	Version      string       `json:"version"`
	ExportType   string       `json:"exportType"`
	Technologies []Technology `json:"technologies"`
}

// ErrorKind classifies import failures.
type ErrorKind string

const (
	KindRejectedInput      ErrorKind = "rejected-input"
	KindParseFailure       ErrorKind = "parse-failure"
	KindUnrecognizedFormat ErrorKind = "unrecognized-format"
	KindInvalidTitle       ErrorKind = "invalid-title"
	KindMissingDescription ErrorKind = "missing-description"
	KindInvalidStatus      ErrorKind = "invalid-status"
	KindInvalidID          ErrorKind = "invalid-id"
)

// ImportError is a typed import failure carrying the offending record's
// position (1-based) and title where known.
type ImportError struct {
	Kind   ErrorKind
	Index  int
	Title  string
	Detail string
}

func (e *ImportError) Error() string {
	switch e.Kind {
	case KindRejectedInput:
		return fmt.Sprintf("tech: import rejected: %s", e.Detail)
	case KindParseFailure:
		return fmt.Sprintf("tech: import is not valid JSON: %s", e.Detail)
	case KindUnrecognizedFormat:
		return "tech: import has an unrecognized format (want an array of records or {\"technologies\": [...]})"
	case KindInvalidTitle:
		if e.Title != "" {
			return fmt.Sprintf("tech: record %d: title %q is too short (minimum 2 characters)", e.Index, e.Title)
		}
		return fmt.Sprintf("tech: record %d has no valid title", e.Index)
	case KindMissingDescription:
		return fmt.Sprintf("tech: record %d (%q) has no description", e.Index, e.Title)
	case KindInvalidStatus:
		return fmt.Sprintf("tech: record %d (%q) has invalid status %q", e.Index, e.Title, e.Detail)
	case KindInvalidID:
		return fmt.Sprintf("tech: record %d (%q) has a non-numeric id", e.Index, e.Title)
	}
	return fmt.Sprintf("tech: import failed (%s)", e.Kind)
}

// CheckImportFile is the precondition guard applied before any parsing:
// uploads must carry a .json extension and stay under MaxImportSize.
func CheckImportFile(name string, size int64) error {
	if size > MaxImportSize {
		return &ImportError{Kind: KindRejectedInput, Detail: fmt.Sprintf("file is %d bytes, maximum is 5 MiB", size)}
	}
	if !strings.HasSuffix(strings.ToLower(name), ".json") {
		return &ImportError{Kind: KindRejectedInput, Detail: fmt.Sprintf("%s is not a .json file", name)}
	}
	return nil
}

// Export serializes the collection into a versioned export document.
// An empty collection is refused: there is nothing to export.
func Export(records []Technology, now time.Time) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("tech: nothing to export")
	}
	doc := ExportDocument{
		ExportedAt:   Timestamp(now),
		Version:      ExportVersion,
		ExportType:   "technologies",
		Technologies: records,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tech: export: %w", err)
	}
	return data, nil
}

// ExportFilename builds the download name for an export taken at t.
func ExportFilename(t time.Time) string {
	return "tech-tracker-export-" + t.UTC().Format("2006-01-02") + ".json"
}

// DecodeImport parses, validates and normalizes an uploaded export
// document. Validation is all-or-nothing: the first invalid record aborts
// the whole import and the caller's collection stays untouched. Accepted
// shapes are a bare array of records or an object with a "technologies"
// array.
func DecodeImport(data []byte, now time.Time) ([]Technology, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &ImportError{Kind: KindParseFailure, Detail: err.Error()}
	}

	var raw []any
	switch v := doc.(type) {
	case []any:
		raw = v
	case map[string]any:
		inner, ok := v["technologies"].([]any)
		if !ok {
			return nil, &ImportError{Kind: KindUnrecognizedFormat}
		}
		raw = inner
	default:
		return nil, &ImportError{Kind: KindUnrecognizedFormat}
	}

	// Validate every candidate before touching anything.
	for i, item := range raw {
		if err := validateRecord(i+1, item); err != nil {
			return nil, err
		}
	}

	out := make([]Technology, 0, len(raw))
	for _, item := range raw {
		out = append(out, normalizeRecord(item.(map[string]any), now))
	}
	return out, nil
}

// validateRecord applies the ordered import checks to one candidate.
func validateRecord(pos int, item any) error {
	rec, ok := item.(map[string]any)
	if !ok {
		return &ImportError{Kind: KindInvalidTitle, Index: pos}
	}
	title, ok := rec["title"].(string)
	if !ok || title == "" {
		return &ImportError{Kind: KindInvalidTitle, Index: pos}
	}
	if len(strings.TrimSpace(title)) < 2 {
		return &ImportError{Kind: KindInvalidTitle, Index: pos, Title: title}
	}
	desc, ok := rec["description"].(string)
	if !ok || desc == "" {
		return &ImportError{Kind: KindMissingDescription, Index: pos, Title: title}
	}
	if s, present := rec["status"]; present && s != nil {
		str, ok := s.(string)
		if !ok {
			return &ImportError{Kind: KindInvalidStatus, Index: pos, Title: title, Detail: fmt.Sprint(s)}
		}
		if _, err := ParseStatus(str); err != nil {
			return &ImportError{Kind: KindInvalidStatus, Index: pos, Title: title, Detail: str}
		}
	}
	if id, present := rec["id"]; present && id != nil {
		if _, ok := id.(json.Number); !ok {
			return &ImportError{Kind: KindInvalidID, Index: pos, Title: title}
		}
	}
	return nil
}

// normalizeRecord builds a Technology from a validated candidate: trimmed
// strings, defaults for missing optionals, fresh updatedAt, and imported
// data is always user-owned (isFromApi false).
func normalizeRecord(rec map[string]any, now time.Time) Technology {
	t := Technology{
		Title:       strings.TrimSpace(stringField(rec, "title")),
		Description: strings.TrimSpace(stringField(rec, "description")),
		Notes:       stringField(rec, "notes"),
		Category:    stringField(rec, "category"),
		Difficulty:  stringField(rec, "difficulty"),
		Deadline:    stringField(rec, "deadline"),
		CreatedAt:   stringField(rec, "createdAt"),
		UpdatedAt:   Timestamp(now),
		IsFromAPI:   false,
	}

	if id, ok := rec["id"].(json.Number); ok {
		if n, err := id.Int64(); err == nil {
			t.ID = n
		}
	}
	if t.ID == 0 {
		t.ID = NewID() + int64(rand.IntN(1000))
	}

	if s, ok := rec["status"].(string); ok && s != "" {
		t.Status, _ = ParseStatus(s)
	}
	if p, ok := rec["priority"].(string); ok {
		if parsed, err := ParsePriority(p); err == nil {
			t.Priority = parsed
		}
	}
	if h, ok := rec["estimatedHours"].(json.Number); ok {
		if n, err := h.Int64(); err == nil && n >= 1 && n <= 1000 {
			t.EstimatedHours = int(n)
		}
	}
	if t.CreatedAt == "" {
		t.CreatedAt = Timestamp(now)
	}

	t.applyDefaults()
	return t
}

func stringField(rec map[string]any, key string) string {
	s, _ := rec[key].(string)
	return s
}
