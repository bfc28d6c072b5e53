package history

import (
	"time"

	"github.com/VanitasCaesar1/intake/models"
)

// Wednesday 2025-03-12 15:00 in UTC+8
var (
	testLoc = time.FixedZone("CST", 8*60*60)
	testNow = time.Date(2025, 3, 12, 15, 0, 0, 0, testLoc)
)

func at(month time.Month, day, hour, min int) time.Time {
	return time.Date(2025, month, day, hour, min, 0, 0, testLoc)
}

func rec(id, text string, ts time.Time, isError bool) models.DiagnosisRecord {
	return models.DiagnosisRecord{ID: id, Text: text, Timestamp: ts, IsError: isError}
}

func ids(records []models.DiagnosisRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func ptr(f float64) *float64 { return &f }
