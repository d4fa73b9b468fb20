// Package validate decides whether a candidate answer is acceptable
// for a question before the respondent may advance past it.
package validate

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/formdesk/formdesk/model"
)

type Reason string

const (
	MissingRequiredAnswer Reason = "missing_required_answer"
	InvalidEmail          Reason = "invalid_email"
	InvalidNumber         Reason = "invalid_number"
	RatingOutOfRange      Reason = "rating_out_of_range"
)

type Error struct {
	Reason     Reason `json:"reason"`
	QuestionID string `json:"question_id"`
	Message    string `json:"error"`
}

func (e *Error) Error() string {
	return e.Message
}

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Answer applies the validation rules in order, first failure wins:
// required+empty, then the variant format rule. A non-required absent
// answer always passes. Screen variants never enforce required.
func Answer(q model.Question, value any) error {
	if isEmpty(value) {
		if q.Required && !q.Type.IsScreen() {
			return &Error{
				Reason:     MissingRequiredAnswer,
				QuestionID: q.ID,
				Message:    "This question requires an answer",
			}
		}
		return nil
	}

	switch q.Type {
	case model.Email:
		s, ok := value.(string)
		if !ok || !emailShape.MatchString(s) {
			return &Error{
				Reason:     InvalidEmail,
				QuestionID: q.ID,
				Message:    "Please enter a valid email address",
			}
		}
	case model.Number:
		if _, ok := toNumber(value); !ok {
			return &Error{
				Reason:     InvalidNumber,
				QuestionID: q.ID,
				Message:    "Please enter a valid number",
			}
		}
	case model.Rating:
		min, max := q.Settings.RatingBounds()
		n, ok := toNumber(value)
		if !ok || n < float64(min) || n > float64(max) {
			return &Error{
				Reason:     RatingOutOfRange,
				QuestionID: q.ID,
				Message:    fmt.Sprintf("Please enter a rating between %d and %d", min, max),
			}
		}
	}

	return nil
}

// An answer is empty when it is nil or a string that is blank after
// trimming whitespace.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func toNumber(value any) (float64, bool) {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
