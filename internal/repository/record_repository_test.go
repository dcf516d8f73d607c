package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-progress-api/internal/models"
)

func newRecordMock(t *testing.T) (*RecordRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewRecordRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestRecordRepositoryEnrolledStudents(t *testing.T) {
	repo, mock, cleanup := newRecordMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"name", "email", "roll_no", "dept", "course_id", "year", "status"}).
		AddRow("Asha", "asha@x.io", "21CS01", "CSE", "C1", int64(2024), "payment_complete").
		AddRow("Ravi", "ravi@x.io", "21CS02", "CSE", "C1", nil, "pending")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT s.name, s.email, s.roll_no, s.dept, s.course_id, s.year, s.status FROM students s WHERE s.dept = $1 ORDER BY s.roll_no")).
		WithArgs("CSE").
		WillReturnRows(rows)

	students, err := repo.EnrolledStudents(context.Background(), "CSE")
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, models.FlexString("2024"), students[0].Year)
	assert.True(t, students[0].PaymentComplete())
	assert.Equal(t, models.FlexString(""), students[1].Year)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryAssignmentsFoldsScores(t *testing.T) {
	repo, mock, cleanup := newRecordMock(t)
	defer cleanup()

	columns := []string{"id", "email", "name", "roll_no", "dept", "course_id", "year", "created_at", "week", "score"}
	rows := sqlmock.NewRows(columns).
		AddRow(int64(1), "a@x.io", "A", "21CS01", "CSE", "C1", "2024", "2024-01-01", int64(1), "5.00").
		AddRow(int64(1), "a@x.io", "A", "21CS01", "CSE", "C1", "2024", "2024-01-01", int64(2), "-1.00").
		AddRow(int64(1), "a@x.io", "A", "21CS01", "CSE", "C1", "2024", "2024-01-01", int64(3), nil).
		AddRow(int64(2), "b@x.io", "B", "21CS02", "CSE", "C1", "2024", "2024-01-02", nil, nil)
	mock.ExpectQuery(`FROM assignments a LEFT JOIN assignment_scores sc ON sc.assignment_id = a.id WHERE 1=1 AND a.dept = \$1 AND a.course_id = \$2 ORDER BY a.id, sc.week`).
		WithArgs("CSE", "C1").
		WillReturnRows(rows)

	records, err := repo.Assignments(context.Background(), "CSE", "C1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.WeekScore{State: models.ScoreSubmitted, Value: 5}, records[0].Score(1))
	assert.Equal(t, models.ScoreNotReleased, records[0].Score(2).State)
	assert.Equal(t, models.ScoreMissing, records[0].Score(3).State)
	assert.Len(t, records[0].Weeks, 3)
	assert.Empty(t, records[1].Weeks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryCourseCounts(t *testing.T) {
	repo, mock, cleanup := newRecordMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"course_id", "course_name", "enrollment_count"}).
		AddRow("C1", "Compilers", int64(12))
	mock.ExpectQuery(`LEFT JOIN students s ON s.course_id = c.course_id AND s.dept = \$1 WHERE 1=1 AND c.course_id = \$2 GROUP BY`).
		WithArgs("CSE", "C1").
		WillReturnRows(rows)

	stats, err := repo.CourseCounts(context.Background(), "C1", "CSE")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, models.FlexInt(12), stats[0].EnrollmentCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepositoryMenteesError(t *testing.T) {
	repo, mock, cleanup := newRecordMock(t)
	defer cleanup()

	mock.ExpectQuery("FROM mentees m").WillReturnError(assert.AnError)
	_, err := repo.Mentees(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}
