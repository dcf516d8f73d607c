package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// SentinelScore marks a week whose assignment has not been released yet.
const SentinelScore = -1.0

const weekKeyPrefix = "assignment"

// ScoreState is the closed set of states a weekly score can be in.
type ScoreState uint8

const (
	// ScoreMissing covers null, absent and non-numeric values.
	ScoreMissing ScoreState = iota
	// ScoreNotReleased is the sentinel value.
	ScoreNotReleased
	// ScoreNotSubmitted is an explicit numeric score <= 0 other than the sentinel.
	ScoreNotSubmitted
	// ScoreSubmitted is a strictly positive score.
	ScoreSubmitted
)

// String returns the state name.
func (s ScoreState) String() string {
	switch s {
	case ScoreNotReleased:
		return "not_released"
	case ScoreNotSubmitted:
		return "not_submitted"
	case ScoreSubmitted:
		return "submitted"
	default:
		return "missing"
	}
}

// WeekScore is one week's result. Value is meaningful for NotSubmitted and Submitted.
type WeekScore struct {
	State ScoreState
	Value float64
}

// Positive reports whether the week holds a strictly positive score.
func (w WeekScore) Positive() bool {
	return w.State == ScoreSubmitted
}

// ScoreFromString classifies a textual score such as "5.00" or "-1.00".
func ScoreFromString(raw string) WeekScore {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return WeekScore{State: ScoreMissing}
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return WeekScore{State: ScoreMissing}
	}
	return ScoreFromFloat(value)
}

// ScoreFromFloat classifies a numeric score.
func ScoreFromFloat(value float64) WeekScore {
	switch {
	case value == SentinelScore:
		return WeekScore{State: ScoreNotReleased, Value: value}
	case value <= 0:
		return WeekScore{State: ScoreNotSubmitted, Value: value}
	default:
		return WeekScore{State: ScoreSubmitted, Value: value}
	}
}

// ParseWeekScore classifies a raw JSON value (string, number or null).
func ParseWeekScore(raw json.RawMessage) WeekScore {
	var text FlexString
	if err := text.UnmarshalJSON(raw); err != nil {
		return WeekScore{State: ScoreMissing}
	}
	return ScoreFromString(text.String())
}

func (w WeekScore) wireValue() interface{} {
	if w.State == ScoreMissing {
		return nil
	}
	// Two decimals match the backend's wire style; finer values keep full precision.
	text := strconv.FormatFloat(w.Value, 'f', 2, 64)
	if parsed, err := strconv.ParseFloat(text, 64); err == nil && parsed == w.Value {
		return text
	}
	return strconv.FormatFloat(w.Value, 'f', -1, 64)
}

// AssignmentRecord is one student's weekly assignment scores for a course.
// Weeks is keyed by the raw week number found in the assignment<N> wire fields.
type AssignmentRecord struct {
	Email      string
	Name       string
	RollNo     string
	Department string
	CourseID   string
	Year       FlexString
	CreatedAt  string
	Weeks      map[int]WeekScore
}

// DimensionValue exposes the record's filterable attributes.
func (a AssignmentRecord) DimensionValue(d Dimension) (string, bool) {
	switch d {
	case DimensionDepartment:
		return a.Department, true
	case DimensionCourse:
		return a.CourseID, true
	case DimensionYear:
		return a.Year.String(), a.Year != ""
	}
	return "", false
}

// Score returns the score recorded for a raw week number.
func (a AssignmentRecord) Score(week int) WeekScore {
	return a.Weeks[week]
}

// WeeklyScores returns the ordered weekly sequence starting at origin (0 or 1 depending
// on dataset vintage). Gaps are reported as missing.
func (a AssignmentRecord) WeeklyScores(origin int) []WeekScore {
	maxWeek := -1
	for week := range a.Weeks {
		if week > maxWeek {
			maxWeek = week
		}
	}
	if maxWeek < origin {
		return nil
	}
	scores := make([]WeekScore, 0, maxWeek-origin+1)
	for week := origin; week <= maxWeek; week++ {
		scores = append(scores, a.Weeks[week])
	}
	return scores
}

// WeekNumbers returns the recorded raw week numbers in ascending order.
func (a AssignmentRecord) WeekNumbers() []int {
	weeks := make([]int, 0, len(a.Weeks))
	for week := range a.Weeks {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)
	return weeks
}

// UnmarshalJSON decodes the flat backend row with its assignment<N> columns.
func (a *AssignmentRecord) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode assignment record: %w", err)
	}

	record := AssignmentRecord{Weeks: make(map[int]WeekScore)}
	var courseFallback string
	for key, raw := range fields {
		switch key {
		case "email":
			record.Email = decodeString(raw)
		case "name":
			record.Name = decodeString(raw)
		case "roll_no":
			record.RollNo = decodeString(raw)
		case "dept":
			record.Department = decodeString(raw)
		case "courseid":
			record.CourseID = decodeString(raw)
		case "course_id":
			courseFallback = decodeString(raw)
		case "year":
			record.Year = FlexString(decodeString(raw))
		case "created_at":
			record.CreatedAt = decodeString(raw)
		default:
			if week, ok := parseWeekKey(key); ok {
				record.Weeks[week] = ParseWeekScore(raw)
			}
		}
	}
	if record.CourseID == "" {
		record.CourseID = courseFallback
	}

	*a = record
	return nil
}

// MarshalJSON encodes the record back into the backend's flat row shape.
func (a AssignmentRecord) MarshalJSON() ([]byte, error) {
	fields := map[string]interface{}{
		"email":      a.Email,
		"name":       a.Name,
		"roll_no":    a.RollNo,
		"dept":       a.Department,
		"courseid":   a.CourseID,
		"year":       a.Year.String(),
		"created_at": a.CreatedAt,
	}
	for week, score := range a.Weeks {
		fields[weekKeyPrefix+strconv.Itoa(week)] = score.wireValue()
	}
	return json.Marshal(fields)
}

func parseWeekKey(key string) (int, bool) {
	if !strings.HasPrefix(key, weekKeyPrefix) {
		return 0, false
	}
	week, err := strconv.Atoi(strings.TrimPrefix(key, weekKeyPrefix))
	if err != nil || week < 0 {
		return 0, false
	}
	return week, true
}

func decodeString(raw json.RawMessage) string {
	var value FlexString
	if err := value.UnmarshalJSON(raw); err != nil {
		return ""
	}
	return value.String()
}
