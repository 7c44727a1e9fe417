package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/donortrack/backend/internal/domain/report"
	"github.com/donortrack/backend/internal/domain/shared"
	"github.com/donortrack/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Date range presets accepted by the export endpoint
const (
	PresetLastWeek    = "last-week"
	PresetLastMonth   = "last-month"
	PresetLastQuarter = "last-quarter"
	PresetLastYear    = "last-year"
	PresetAll         = "all"
)

// RangeForPreset resolves a preset against now. Unknown or empty presets
// mean all time.
func RangeForPreset(preset string, now time.Time) report.DateRange {
	var start time.Time
	switch strings.ToLower(strings.TrimSpace(preset)) {
	case PresetLastWeek:
		start = now.AddDate(0, 0, -7)
	case PresetLastMonth:
		start = now.AddDate(0, -1, 0)
	case PresetLastQuarter:
		start = now.AddDate(0, -3, 0)
	case PresetLastYear:
		start = now.AddDate(-1, 0, 0)
	default:
		end := now
		return report.DateRange{End: &end}
	}
	end := now
	return report.DateRange{Start: &start, End: &end}
}

// ArchiveStorage keeps exported files and hands out temporary download links
type ArchiveStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// ExportService builds, encodes and optionally archives reports
type ExportService struct {
	reports   *ReportService
	storage   ArchiveStorage
	urlExpiry time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

// ExportServiceConfig holds dependencies for the export service
type ExportServiceConfig struct {
	Reports *ReportService
	// Storage is optional; without it archive requests are rejected
	Storage   ArchiveStorage
	URLExpiry time.Duration
	Now       func() time.Time
	Logger    *zap.Logger
}

// NewExportService creates a new ExportService
func NewExportService(config ExportServiceConfig) *ExportService {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	expiry := config.URLExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &ExportService{
		reports:   config.Reports,
		storage:   config.Storage,
		urlExpiry: expiry,
		now:       now,
		logger:    logger,
	}
}

// ExportInput describes an export request
type ExportInput struct {
	DonorID uuid.UUID
	Type    string
	Format  string
	// Range takes precedence over Preset when set
	Range   *report.DateRange
	Preset  string
	Archive bool
}

// ExportResult is an encoded report plus, when archived, its download link
type ExportResult struct {
	File        *File
	FileName    string
	DownloadURL string
	ExpiresAt   time.Time
}

// Export builds the requested report and encodes it
func (s *ExportService) Export(ctx context.Context, input ExportInput) (*ExportResult, error) {
	typ, err := report.ParseType(input.Type)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(input.Format)
	if err != nil {
		return nil, err
	}
	if format == FormatPDF || format == FormatExcel {
		return nil, shared.NewUnsupportedFormatError(string(format))
	}
	if input.Archive && s.storage == nil {
		return nil, shared.NewValidationError("Report archiving is not enabled")
	}

	now := s.now()
	rng := RangeForPreset(input.Preset, now)
	if input.Range != nil {
		rng = *input.Range
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "report", "export",
		telemetry.SpanAttrDonorID, input.DonorID.String(),
		telemetry.SpanAttrFormat, string(format))
	defer span.End()

	r, err := s.reports.BuildReport(ctx, BuildInput{Type: typ, DonorID: input.DonorID, Range: rng})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	file, err := Encode(r, format)
	if err != nil {
		return nil, err
	}

	result := &ExportResult{File: file, FileName: FileName(typ, now, file.Extension)}
	if !input.Archive {
		return result, nil
	}

	key := fmt.Sprintf("exports/%s/%s/%s", input.DonorID, uuid.NewString(), result.FileName)
	if err := s.storage.Upload(ctx, key, file.Data, file.ContentType); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to archive export: %w", err)
	}
	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.urlExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign export url: %w", err)
	}
	result.DownloadURL = url
	result.ExpiresAt = expiresAt

	s.logger.Info("Report archived",
		zap.String("donor_id", input.DonorID.String()),
		zap.String("storage_key", key),
		zap.Int("bytes", len(file.Data)))
	return result, nil
}
