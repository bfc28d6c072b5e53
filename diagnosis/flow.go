package diagnosis

import (
	"fmt"
	"strings"
	"time"

	"github.com/VanitasCaesar1/intake/models"
	"github.com/pkg/errors"
)

var (
	ErrUnknownOption     = errors.New("option is not offered for this question")
	ErrEmptyCustomInput  = errors.New("custom answer is empty")
	ErrUnanswered        = errors.New("current question is not answered")
	ErrAtFirstQuestion   = errors.New("already at the first question")
	ErrAtLastQuestion    = errors.New("already at the last question")
	ErrSessionNotFound   = errors.New("diagnosis session not found")
	ErrIncompleteSession = errors.New("intake card is not complete")
)

// Answer is either a preset option or a free-text description.
type Answer struct {
	Value  string `json:"value"`
	Custom bool   `json:"custom"`
}

// Flow is the state of one guided intake. It is not safe for concurrent use;
// Service serializes access.
type Flow struct {
	ID        string
	Current   int
	Answers   map[int]Answer
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewFlow(id string, now time.Time) *Flow {
	return &Flow{
		ID:        id,
		Current:   1,
		Answers:   make(map[int]Answer, TotalQuestions),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SelectOption answers the current question with one of its preset options,
// replacing any custom answer.
func (f *Flow) SelectOption(option string, now time.Time) error {
	q, _ := QuestionAt(f.Current)
	if !q.hasOption(option) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}
	f.Answers[f.Current] = Answer{Value: option}
	f.UpdatedAt = now
	return nil
}

// SubmitCustom answers the current question with free text, replacing any
// preset answer.
func (f *Flow) SubmitCustom(text string, now time.Time) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyCustomInput
	}
	f.Answers[f.Current] = Answer{Value: text, Custom: true}
	f.UpdatedAt = now
	return nil
}

func (f *Flow) Next(now time.Time) error {
	if f.Current >= TotalQuestions {
		return ErrAtLastQuestion
	}
	if _, ok := f.Answers[f.Current]; !ok {
		return ErrUnanswered
	}
	f.Current++
	f.UpdatedAt = now
	return nil
}

func (f *Flow) Prev(now time.Time) error {
	if f.Current <= 1 {
		return ErrAtFirstQuestion
	}
	f.Current--
	f.UpdatedAt = now
	return nil
}

// PatientAnswered reports whether every question has an answer.
func (f *Flow) PatientAnswered() bool {
	for n := 1; n <= TotalQuestions; n++ {
		if _, ok := f.Answers[n]; !ok {
			return false
		}
	}
	return true
}

// Complete gates card generation.
func (f *Flow) Complete(doctor models.DoctorInfo) bool {
	return f.PatientAnswered() && doctor.Complete()
}

// Symptoms are the answers used for the department recommendation: the body
// part and the accompanying symptoms.
func (f *Flow) Symptoms() []string {
	var out []string
	for _, n := range []int{1, 4} {
		if a, ok := f.Answers[n]; ok {
			out = append(out, a.Value)
		}
	}
	return out
}

// State is the JSON view of a flow for the diagnosis page.
type State struct {
	ID              string            `json:"id"`
	Current         int               `json:"current"`
	Total           int               `json:"total"`
	Question        Question          `json:"question"`
	Answers         map[string]Answer `json:"answers"`
	CanPrev         bool              `json:"canPrev"`
	CanNext         bool              `json:"canNext"`
	PatientAnswered bool              `json:"patientAnswered"`
	Complete        bool              `json:"complete"`
	Status          string            `json:"status"`
	Department      string            `json:"department"`
	Doctor          models.DoctorInfo `json:"doctor"`
}

func (f *Flow) state(doctor models.DoctorInfo, department string) State {
	q, _ := QuestionAt(f.Current)
	answers := make(map[string]Answer, len(f.Answers))
	for n, a := range f.Answers {
		answers[fmt.Sprintf("question%d", n)] = a
	}
	_, answered := f.Answers[f.Current]
	complete := f.Complete(doctor)
	status := "未完成"
	if complete {
		status = "已完成"
	}
	return State{
		ID:              f.ID,
		Current:         f.Current,
		Total:           TotalQuestions,
		Question:        q,
		Answers:         answers,
		CanPrev:         f.Current > 1,
		CanNext:         answered && f.Current < TotalQuestions,
		PatientAnswered: f.PatientAnswered(),
		Complete:        complete,
		Status:          status,
		Department:      department,
		Doctor:          doctor,
	}
}
