package history

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/VanitasCaesar1/intake/models"
	"go.uber.org/zap"
)

// decodeRecords decodes each stored entry on its own so one odd-shaped record
// does not cost the rest of the history. Fields of the wrong type are coerced
// or left for normalize to backfill; entries that are not JSON objects are
// skipped. It returns the records and how many entries were coerced or dropped.
func decodeRecords(raw []json.RawMessage, logger *zap.Logger) ([]models.DiagnosisRecord, int) {
	records := make([]models.DiagnosisRecord, 0, len(raw))
	changed := 0
	for i, entry := range raw {
		var r models.DiagnosisRecord
		if err := json.Unmarshal(entry, &r); err == nil && !isNull(entry) {
			records = append(records, r)
			continue
		}

		r, ok := decodeLoose(entry)
		if !ok {
			logger.Warn("skipping unreadable history record",
				zap.Int("index", i),
				zap.ByteString("raw", entry))
			changed++
			continue
		}
		records = append(records, r)
		changed++
	}
	return records, changed
}

func isNull(entry json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(entry), []byte("null"))
}

// decodeLoose reads the fields of an object one by one, keeping what it can.
func decodeLoose(entry json.RawMessage) (models.DiagnosisRecord, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
		return models.DiagnosisRecord{}, false
	}

	r := models.DiagnosisRecord{
		ID:        looseString(fields["id"]),
		Text:      looseString(fields["text"]),
		Time:      looseString(fields["time"]),
		Timestamp: looseTime(fields["timestamp"]),
	}
	_ = json.Unmarshal(fields["isError"], &r.IsError)

	var confidence float64
	if err := json.Unmarshal(fields["confidence"], &confidence); err == nil && !isNull(fields["confidence"]) {
		r.Confidence = &confidence
	}
	return r, true
}

// looseString accepts a string, or the literal text of a number or boolean.
func looseString(v json.RawMessage) string {
	if len(v) == 0 || isNull(v) {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(v, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

// looseTime accepts an RFC 3339 string or Unix milliseconds. Anything else is
// the zero time, which normalize backfills.
func looseTime(v json.RawMessage) time.Time {
	if len(v) == 0 || isNull(v) {
		return time.Time{}
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	var ms int64
	if err := json.Unmarshal(v, &ms); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}
