package models

const (
	RangeToday     = "today"
	RangeYesterday = "yesterday"
	RangeWeek      = "week"
	RangeMonth     = "month"
	RangeYear      = "year"
	RangeAll       = "all"
)

// FilterState is the transient view configuration of the history page.
// RecognitionType and ConfidenceLevel are carried for the UI but never filter.
type FilterState struct {
	TimeRange       string `json:"timeRange" query:"timeRange" validate:"omitempty,oneof=today yesterday week month year all"`
	StartDate       string `json:"startDate" query:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate         string `json:"endDate" query:"endDate" validate:"omitempty,datetime=2006-01-02"`
	RecognitionType string `json:"recognitionType" query:"recognitionType"`
	ConfidenceLevel string `json:"confidenceLevel" query:"confidenceLevel"`
}

func DefaultFilterState() FilterState {
	return FilterState{
		TimeRange:       RangeMonth,
		RecognitionType: RangeAll,
		ConfidenceLevel: RangeAll,
	}
}
