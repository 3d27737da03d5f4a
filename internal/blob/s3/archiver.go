package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/alanyoungcy/arbscout/internal/domain"
)

// ReportArchiver implements domain.ReportArchiver by serializing scan
// reports to JSON and uploading them to object storage, partitioned by scan
// date.
//
//	scans/2025/12/23/scan-20251223T140500Z.json
type ReportArchiver struct {
	writer domain.BlobWriter
}

// NewReportArchiver creates a new ReportArchiver.
func NewReportArchiver(writer domain.BlobWriter) *ReportArchiver {
	return &ReportArchiver{writer: writer}
}

// ArchiveReport uploads the report and returns the object path it was
// written to.
func (a *ReportArchiver) ArchiveReport(ctx context.Context, report domain.ScanReport) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return "", fmt.Errorf("s3blob: marshal scan report: %w", err)
	}

	path := fmt.Sprintf("scans/%s/scan-%s.json",
		report.StartedAt.UTC().Format("2006/01/02"),
		report.StartedAt.UTC().Format("20060102T150405Z"),
	)

	if err := a.writer.Put(ctx, path, &buf, "application/json"); err != nil {
		return "", fmt.Errorf("s3blob: archive scan report: %w", err)
	}
	return path, nil
}
