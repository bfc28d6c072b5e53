package history

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/VanitasCaesar1/intake/models"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"

	// csvTimeLayout mirrors the zh-CN locale string of the history page.
	csvTimeLayout = "2006/1/2 15:04:05"
)

var csvHeader = []string{"时间", "识别结果", "状态", "置信度"}

type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	Count       int
}

// Export serializes data as pretty JSON or CSV. Timestamps in CSV are
// rendered in now's location.
func Export(data []models.DiagnosisRecord, format string, now time.Time) (*ExportFile, error) {
	if len(data) == 0 {
		return nil, ErrNothingToExport
	}

	var (
		content     []byte
		contentType string
		err         error
	)
	switch format {
	case FormatJSON:
		content, err = json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal history: %w", err)
		}
		contentType = "application/json"
	case FormatCSV:
		content, err = toCSV(data, now.Location())
		if err != nil {
			return nil, err
		}
		contentType = "text/csv"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("历史记录_%d.%s", now.UnixMilli(), format),
		ContentType: contentType,
		Data:        content,
		Count:       len(data),
	}, nil
}

func toCSV(data []models.DiagnosisRecord, loc *time.Location) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range data {
		row := []string{
			r.Timestamp.In(loc).Format(csvTimeLayout),
			r.DisplayText(),
			r.StatusText(),
			formatConfidence(r.Confidence),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	// No newline after the last row.
	return []byte(strings.TrimSuffix(buf.String(), "\n")), nil
}

// formatConfidence renders a [0,1] confidence as a percentage; zero and
// missing both render as "-".
func formatConfidence(c *float64) string {
	if c == nil || *c == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", *c*100)
}
