package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentRecordUnmarshal(t *testing.T) {
	raw := `{
		"email":"a@x.io","name":"Asha","roll_no":"21CS01","dept":"CSE",
		"courseid":"noc24-cs01","course_id":"ignored","year":2024,"created_at":"2024-01-01",
		"assignment0":"5.00","assignment1":"-1.00","assignment2":null,"assignment3":"0.00",
		"assignment4":"abc","assignment5":7,"assignments":"x"
	}`
	var record AssignmentRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &record))

	assert.Equal(t, "noc24-cs01", record.CourseID)
	assert.Equal(t, FlexString("2024"), record.Year)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, record.WeekNumbers())
	assert.Equal(t, WeekScore{State: ScoreSubmitted, Value: 5}, record.Score(0))
	assert.Equal(t, ScoreNotReleased, record.Score(1).State)
	assert.Equal(t, ScoreMissing, record.Score(2).State)
	assert.Equal(t, ScoreNotSubmitted, record.Score(3).State)
	assert.Equal(t, ScoreMissing, record.Score(4).State)
	assert.True(t, record.Score(5).Positive())
	assert.Equal(t, ScoreMissing, record.Score(40).State)

	scores := record.WeeklyScores(1)
	require.Len(t, scores, 5)
	assert.Equal(t, ScoreNotReleased, scores[0].State)
}

func TestAssignmentRecordCourseIDFallback(t *testing.T) {
	var record AssignmentRecord
	require.NoError(t, json.Unmarshal([]byte(`{"course_id":"C9"}`), &record))
	assert.Equal(t, "C9", record.CourseID)
	assert.Empty(t, record.WeeklyScores(0))
}

func TestAssignmentRecordMarshalRoundTrip(t *testing.T) {
	original := AssignmentRecord{
		Email:    "a@x.io",
		CourseID: "C1",
		Year:     "2023",
		Weeks: map[int]WeekScore{
			1: ScoreFromFloat(4.5),
			2: ScoreFromFloat(-1),
			3: {State: ScoreMissing},
		},
	}
	encoded, err := json.Marshal(original)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(encoded, &fields))
	assert.Equal(t, "4.50", fields["assignment1"])
	assert.Equal(t, "-1.00", fields["assignment2"])
	assert.Nil(t, fields["assignment3"])

	var decoded AssignmentRecord
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, original.Weeks, decoded.Weeks)
}

func TestAssignmentRecordMarshalKeepsFinePrecision(t *testing.T) {
	original := AssignmentRecord{
		Email: "a@x.io",
		Weeks: map[int]WeekScore{
			1: ScoreFromString("0.004"),
			2: ScoreFromString("7.125"),
			3: ScoreFromString("0.1"),
		},
	}
	encoded, err := json.Marshal(original)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(encoded, &fields))
	assert.Equal(t, "0.004", fields["assignment1"])
	assert.Equal(t, "7.125", fields["assignment2"])
	assert.Equal(t, "0.10", fields["assignment3"])

	var decoded AssignmentRecord
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, original.Weeks, decoded.Weeks)
	assert.Equal(t, ScoreSubmitted, decoded.Score(1).State)
}

func TestScoreStates(t *testing.T) {
	assert.Equal(t, "not_released", ScoreFromString("-1.00").State.String())
	assert.Equal(t, "not_submitted", ScoreFromString("-3").State.String())
	assert.Equal(t, "submitted", ScoreFromString(" 0.5 ").State.String())
	assert.Equal(t, "missing", ScoreFromString("NaN").State.String())
	assert.Equal(t, "missing", ScoreFromString("").State.String())
}

func TestFlexTypes(t *testing.T) {
	var stat EnrollmentStat
	require.NoError(t, json.Unmarshal([]byte(`{"course_id":"C1","enrollment_count":"12"}`), &stat))
	assert.Equal(t, FlexInt(12), stat.EnrollmentCount)

	require.NoError(t, json.Unmarshal([]byte(`{"enrollment_count":"n/a"}`), &stat))
	assert.Equal(t, FlexInt(0), stat.EnrollmentCount)

	var student StudentRecord
	require.NoError(t, json.Unmarshal([]byte(`{"dept":"CSE","year":null}`), &student))
	_, ok := student.DimensionValue(DimensionYear)
	assert.False(t, ok)
	dept, ok := student.DimensionValue(DimensionDepartment)
	assert.True(t, ok)
	assert.Equal(t, "CSE", dept)
}

func TestFilterContextClauses(t *testing.T) {
	ctx := FilterContext{Department: " CSE ", Year: "2024"}.Normalize()
	assert.Equal(t, []FilterClause{
		{Dimension: DimensionDepartment, Value: "CSE"},
		{Dimension: DimensionYear, Value: "2024"},
	}, ctx.Clauses())
	assert.False(t, ctx.IsEmpty())
	assert.True(t, FilterContext{}.IsEmpty())
	assert.Equal(t, "CSE::2024", ctx.Key())
}
