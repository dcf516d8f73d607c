package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PaymentComplete is the student status that marks a completed exam registration.
const PaymentComplete = "payment_complete"

// FlexString accepts JSON strings, numbers and null. Upstream datasets disagree on
// whether fields like year are numeric.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null" || trimmed == "":
		*f = ""
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("flex string: %w", err)
		}
		*f = FlexString(n.String())
	}
	return nil
}

// Scan implements sql.Scanner.
func (f *FlexString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*f = ""
	case string:
		*f = FlexString(v)
	case []byte:
		*f = FlexString(v)
	case int64:
		*f = FlexString(strconv.FormatInt(v, 10))
	case float64:
		*f = FlexString(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return fmt.Errorf("flex string: unsupported source %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (f FlexString) Value() (driver.Value, error) {
	return string(f), nil
}

// String returns the raw value.
func (f FlexString) String() string { return string(f) }

// FlexInt accepts JSON numbers, numeric strings and null. Unparseable values decode as 0.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var raw FlexString
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	if raw == "" {
		*f = 0
		return nil
	}
	if n, err := strconv.Atoi(string(raw)); err == nil {
		*f = FlexInt(n)
		return nil
	}
	if n, err := strconv.ParseFloat(string(raw), 64); err == nil {
		*f = FlexInt(int(n))
		return nil
	}
	*f = 0
	return nil
}

// Dimension identifies a filterable attribute of a record.
type Dimension int

// Filter dimensions shared by dashboard records.
const (
	DimensionDepartment Dimension = iota
	DimensionCourse
	DimensionYear
)

// StudentRecord is one student's enrollment row as served by the course backend.
type StudentRecord struct {
	Name       string     `json:"name" db:"name"`
	Email      string     `json:"email" db:"email"`
	RollNo     string     `json:"roll_no" db:"roll_no"`
	Department string     `json:"dept" db:"dept"`
	CourseID   string     `json:"course_id" db:"course_id"`
	Year       FlexString `json:"year" db:"year"`
	Status     string     `json:"status" db:"status"`
}

// DimensionValue exposes the record's filterable attributes.
func (s StudentRecord) DimensionValue(d Dimension) (string, bool) {
	switch d {
	case DimensionDepartment:
		return s.Department, true
	case DimensionCourse:
		return s.CourseID, true
	case DimensionYear:
		return s.Year.String(), s.Year != ""
	}
	return "", false
}

// PaymentComplete reports whether the student completed exam registration.
func (s StudentRecord) PaymentComplete() bool {
	return s.Status == PaymentComplete
}

// MenteeRecord links a student to their mentor.
type MenteeRecord struct {
	Name       string `json:"name" db:"name"`
	Email      string `json:"email" db:"email"`
	RollNo     string `json:"roll_no" db:"roll_no"`
	Department string `json:"dept" db:"dept"`
	MentorName string `json:"mentor_name" db:"mentor_name"`
}

// DimensionValue exposes the record's filterable attributes. Mentees carry no course or year.
func (m MenteeRecord) DimensionValue(d Dimension) (string, bool) {
	if d == DimensionDepartment {
		return m.Department, true
	}
	return "", false
}

// CourseRecord names a course.
type CourseRecord struct {
	CourseID   string `json:"course_id" db:"course_id"`
	CourseName string `json:"course_name" db:"course_name"`
}

// EnrollmentStat is the per-course enrollment count.
type EnrollmentStat struct {
	CourseID        string  `json:"course_id" db:"course_id"`
	CourseName      string  `json:"course_name" db:"course_name"`
	EnrollmentCount FlexInt `json:"enrollment_count" db:"enrollment_count"`
}
