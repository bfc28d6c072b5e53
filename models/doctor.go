package models

import "strings"

// DoctorInfo holds the fields the doctor fills in on the intake card.
type DoctorInfo struct {
	Diagnosis  string `json:"diagnosis" validate:"max=1000"`
	Medication string `json:"medication" validate:"max=1000"`
	Signature  string `json:"signature" validate:"max=100"`
}

// Complete reports whether all three fields are non-blank.
func (d DoctorInfo) Complete() bool {
	return strings.TrimSpace(d.Diagnosis) != "" &&
		strings.TrimSpace(d.Medication) != "" &&
		strings.TrimSpace(d.Signature) != ""
}

type LearningProgress struct {
	Learned  []int `json:"learned"`
	Mastered []int `json:"mastered"`
}
