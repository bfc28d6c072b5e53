package history

import (
	"fmt"
	"time"

	"github.com/VanitasCaesar1/intake/models"
)

const dateLayout = "2006-01-02"

// Filter returns the records of history matching f, evaluated at now. It never
// modifies history. Day boundaries follow now's location.
func Filter(history []models.DiagnosisRecord, f models.FilterState, now time.Time) ([]models.DiagnosisRecord, error) {
	rangeStart, rangeEnd, bounded, err := timeRangeBounds(f.TimeRange, now)
	if err != nil {
		return nil, err
	}

	var customStart, customEnd time.Time
	custom := f.StartDate != "" && f.EndDate != ""
	if custom {
		start, err := time.ParseInLocation(dateLayout, f.StartDate, now.Location())
		if err != nil {
			return nil, fmt.Errorf("%w: startDate %q", ErrInvalidFilter, f.StartDate)
		}
		end, err := time.ParseInLocation(dateLayout, f.EndDate, now.Location())
		if err != nil {
			return nil, fmt.Errorf("%w: endDate %q", ErrInvalidFilter, f.EndDate)
		}
		customStart, customEnd = start, endOfDay(end)
	}

	filtered := make([]models.DiagnosisRecord, 0, len(history))
	for _, r := range history {
		if bounded && !within(r.Timestamp, rangeStart, rangeEnd) {
			continue
		}
		if custom && !within(r.Timestamp, customStart, customEnd) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

func timeRangeBounds(timeRange string, now time.Time) (start, end time.Time, bounded bool, err error) {
	switch timeRange {
	case "", models.RangeAll:
		return time.Time{}, time.Time{}, false, nil
	case models.RangeToday:
		return startOfDay(now), now, true, nil
	case models.RangeYesterday:
		y := now.AddDate(0, 0, -1)
		return startOfDay(y), endOfDay(y), true, nil
	case models.RangeWeek:
		return now.AddDate(0, 0, -7), now, true, nil
	case models.RangeMonth:
		return now.AddDate(0, -1, 0), now, true, nil
	case models.RangeYear:
		return now.AddDate(-1, 0, 0), now, true, nil
	default:
		return time.Time{}, time.Time{}, false, fmt.Errorf("%w: timeRange %q", ErrInvalidFilter, timeRange)
	}
}
