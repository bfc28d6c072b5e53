package models

import "time"

const (
	UnknownText   = "未知"
	StatusSuccess = "识别成功"
	StatusError   = "识别错误"
)

// DiagnosisRecord is one recognition or manually logged event. The JSON shape
// matches what the browser stored under diagnosisHistory.
type DiagnosisRecord struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Time       string    `json:"time,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	IsError    bool      `json:"isError"`
	Confidence *float64  `json:"confidence"`
}

// DisplayText returns Text, or 未知 when the record has no text.
func (r DiagnosisRecord) DisplayText() string {
	if r.Text == "" {
		return UnknownText
	}
	return r.Text
}

func (r DiagnosisRecord) StatusText() string {
	if r.IsError {
		return StatusError
	}
	return StatusSuccess
}

// CreateRecordRequest is the body of a manual history entry.
type CreateRecordRequest struct {
	Text       string   `json:"text" validate:"required,max=200"`
	Confidence *float64 `json:"confidence,omitempty" validate:"omitempty,min=0,max=1"`
}
