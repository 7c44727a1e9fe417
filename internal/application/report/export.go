package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/donortrack/backend/internal/domain/report"
	"github.com/donortrack/backend/internal/domain/shared"
)

// Format is an export encoding
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatPDF   Format = "pdf"
	FormatExcel Format = "excel"
)

// ParseFormat normalizes a format name, defaulting to json when empty.
// Unknown names are UnsupportedFormat errors.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatPDF, FormatExcel:
		return f, nil
	}
	return "", shared.NewUnsupportedFormatError(s)
}

// File is an encoded report ready to be sent or stored
type File struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Encode serializes a report. PDF and Excel are rejected as not implemented.
func Encode(r report.Report, format Format) (*File, error) {
	switch format {
	case FormatCSV:
		data, err := encodeCSV(r.Table())
		if err != nil {
			return nil, err
		}
		return &File{Data: data, ContentType: "text/csv; charset=utf-8", Extension: "csv"}, nil
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode report: %w", err)
		}
		return &File{Data: data, ContentType: "application/json", Extension: "json"}, nil
	default:
		return nil, shared.NewUnsupportedFormatError(string(format))
	}
}

// encodeCSV writes the header from the first record followed by one row per
// record. Fields are quoted per RFC 4180.
func encodeCSV(t report.Table) ([]byte, error) {
	var buf bytes.Buffer
	if t.IsEmpty() {
		return buf.Bytes(), nil
	}

	w := csv.NewWriter(&buf)
	if err := w.Write(t.Header()); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := w.WriteAll(t.Rows()); err != nil {
		return nil, fmt.Errorf("failed to write csv rows: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName builds the attachment name report-<type>-<YYYY-MM-DD>.<ext>
func FileName(t report.Type, at time.Time, ext string) string {
	return fmt.Sprintf("report-%s-%s.%s", t, at.UTC().Format("2006-01-02"), ext)
}
