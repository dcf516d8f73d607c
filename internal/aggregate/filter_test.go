package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/course-progress-api/internal/models"
)

func sampleStudents() []models.StudentRecord {
	return []models.StudentRecord{
		{Email: "a@x.io", Department: "CSE", CourseID: "C1", Year: "2024", Status: models.PaymentComplete},
		{Email: "b@x.io", Department: "CSE", CourseID: "C1", Year: "2023", Status: "pending"},
		{Email: "c@x.io", Department: "ECE", CourseID: "C1", Year: "2024", Status: models.PaymentComplete},
		{Email: "d@x.io", Department: "CSE", CourseID: "C2", Year: "", Status: models.PaymentComplete},
	}
}

func TestFilterRecordsIdentityWithoutDimensions(t *testing.T) {
	students := sampleStudents()
	assert.Equal(t, students, FilterRecords(students, models.FilterContext{}))
	assert.Equal(t, students, FilterRecords(students, models.FilterContext{Department: "  "}))
}

func TestFilterRecordsMonotonic(t *testing.T) {
	students := sampleStudents()
	dims := []models.FilterContext{
		{Department: "CSE"},
		{CourseID: "C1"},
		{Year: "2024"},
	}

	for mask := 0; mask < 8; mask++ {
		var ctx models.FilterContext
		for bit, dim := range dims {
			if mask&(1<<bit) == 0 {
				continue
			}
			if dim.Department != "" {
				ctx.Department = dim.Department
			}
			if dim.CourseID != "" {
				ctx.CourseID = dim.CourseID
			}
			if dim.Year != "" {
				ctx.Year = dim.Year
			}
		}
		base := len(FilterRecords(students, ctx))
		for bit, dim := range dims {
			if mask&(1<<bit) != 0 {
				continue
			}
			wider := ctx
			if dim.Department != "" {
				wider.Department = dim.Department
			}
			if dim.CourseID != "" {
				wider.CourseID = dim.CourseID
			}
			if dim.Year != "" {
				wider.Year = dim.Year
			}
			assert.LessOrEqual(t, len(FilterRecords(students, wider)), base, "mask %03b + dim %d", mask, bit)
		}
	}
}

func TestFilterRecordsAllCombinations(t *testing.T) {
	students := sampleStudents()
	cases := []struct {
		name   string
		ctx    models.FilterContext
		emails []string
	}{
		{"dept", models.FilterContext{Department: "CSE"}, []string{"a@x.io", "b@x.io", "d@x.io"}},
		{"course", models.FilterContext{CourseID: "C1"}, []string{"a@x.io", "b@x.io", "c@x.io"}},
		{"year", models.FilterContext{Year: "2024"}, []string{"a@x.io", "c@x.io"}},
		{"dept+course", models.FilterContext{Department: "CSE", CourseID: "C1"}, []string{"a@x.io", "b@x.io"}},
		{"dept+year", models.FilterContext{Department: "CSE", Year: "2024"}, []string{"a@x.io"}},
		{"course+year", models.FilterContext{CourseID: "C1", Year: "2023"}, []string{"b@x.io"}},
		{"all", models.FilterContext{Department: "ECE", CourseID: "C1", Year: "2024"}, []string{"c@x.io"}},
		{"none match", models.FilterContext{Department: "MECH"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			emails := []string{}
			for _, s := range FilterRecords(students, tc.ctx) {
				emails = append(emails, s.Email)
			}
			assert.Equal(t, tc.emails, emails)
		})
	}
}

func TestFilterRecordsYearStringified(t *testing.T) {
	var student models.StudentRecord
	assert.NoError(t, student.Year.UnmarshalJSON([]byte("2024")))
	got := FilterRecords([]models.StudentRecord{student}, models.FilterContext{Year: "2024"})
	assert.Len(t, got, 1)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(3, 0))
	assert.Equal(t, 0.0, Percentage(-1, 4))
	assert.Equal(t, 50.0, Percentage(1, 2))
}
