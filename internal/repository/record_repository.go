package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-progress-api/internal/models"
)

// RecordRepository reads course progress records from the Postgres mirror of the
// course backend.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository constructs a RecordRepository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

const studentColumns = "s.name, s.email, s.roll_no, s.dept, s.course_id, s.year, s.status"

// Students returns every student enrollment row.
func (r *RecordRepository) Students(ctx context.Context) ([]models.StudentRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM students s ORDER BY s.roll_no", studentColumns)
	var students []models.StudentRecord
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// EnrolledStudents returns enrollment rows, optionally restricted to a department.
func (r *RecordRepository) EnrolledStudents(ctx context.Context, dept string) ([]models.StudentRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM students s", studentColumns)
	var args []interface{}
	if dept != "" {
		query += " WHERE s.dept = $1"
		args = append(args, dept)
	}
	query += " ORDER BY s.roll_no"

	var students []models.StudentRecord
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list enrolled students: %w", err)
	}
	return students, nil
}

// Courses returns the course catalogue.
func (r *RecordRepository) Courses(ctx context.Context) ([]models.CourseRecord, error) {
	var courses []models.CourseRecord
	if err := r.db.SelectContext(ctx, &courses, "SELECT c.course_id, c.course_name FROM courses c ORDER BY c.course_name"); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// Mentees returns mentor assignments for every mentee.
func (r *RecordRepository) Mentees(ctx context.Context) ([]models.MenteeRecord, error) {
	var mentees []models.MenteeRecord
	query := "SELECT m.name, m.email, m.roll_no, m.dept, m.mentor_name FROM mentees m ORDER BY m.id"
	if err := r.db.SelectContext(ctx, &mentees, query); err != nil {
		return nil, fmt.Errorf("list mentees: %w", err)
	}
	return mentees, nil
}

// CourseCounts returns the enrollment count per course.
func (r *RecordRepository) CourseCounts(ctx context.Context, courseID, dept string) ([]models.EnrollmentStat, error) {
	join := "LEFT JOIN students s ON s.course_id = c.course_id"
	args := []interface{}{}
	if dept != "" {
		args = append(args, dept)
		join += fmt.Sprintf(" AND s.dept = $%d", len(args))
	}
	conditions := []string{"1=1"}
	if courseID != "" {
		args = append(args, courseID)
		conditions = append(conditions, fmt.Sprintf("c.course_id = $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT c.course_id, c.course_name, COUNT(s.email) AS enrollment_count
        FROM courses c %s WHERE %s GROUP BY c.course_id, c.course_name ORDER BY c.course_name`, join, strings.Join(conditions, " AND "))

	var stats []models.EnrollmentStat
	if err := r.db.SelectContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("count course enrollments: %w", err)
	}
	return stats, nil
}

type assignmentScoreRow struct {
	ID         int64             `db:"id"`
	Email      string            `db:"email"`
	Name       string            `db:"name"`
	RollNo     string            `db:"roll_no"`
	Department string            `db:"dept"`
	CourseID   string            `db:"course_id"`
	Year       models.FlexString `db:"year"`
	CreatedAt  string            `db:"created_at"`
	Week       sql.NullInt64     `db:"week"`
	Score      sql.NullString    `db:"score"`
}

const assignmentSelect = `SELECT a.id, a.email, a.name, a.roll_no, a.dept, a.course_id, a.year, a.created_at::text AS created_at, sc.week, sc.score
        FROM assignments a LEFT JOIN assignment_scores sc ON sc.assignment_id = a.id`

// Assignments returns weekly assignment scores, optionally restricted by department and course.
func (r *RecordRepository) Assignments(ctx context.Context, dept, courseID string) ([]models.AssignmentRecord, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	if dept != "" {
		args = append(args, dept)
		conditions = append(conditions, fmt.Sprintf("a.dept = $%d", len(args)))
	}
	if courseID != "" {
		args = append(args, courseID)
		conditions = append(conditions, fmt.Sprintf("a.course_id = $%d", len(args)))
	}
	query := fmt.Sprintf("%s WHERE %s ORDER BY a.id, sc.week", assignmentSelect, strings.Join(conditions, " AND "))
	return r.selectAssignments(ctx, query, args...)
}

// MenteeAssignments returns assignment rows belonging to students with a mentor.
func (r *RecordRepository) MenteeAssignments(ctx context.Context) ([]models.AssignmentRecord, error) {
	query := assignmentSelect + " WHERE a.email IN (SELECT m.email FROM mentees m) ORDER BY a.id, sc.week"
	return r.selectAssignments(ctx, query)
}

func (r *RecordRepository) selectAssignments(ctx context.Context, query string, args ...interface{}) ([]models.AssignmentRecord, error) {
	var rows []assignmentScoreRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	records := make([]models.AssignmentRecord, 0)
	index := make(map[int64]int)
	for _, row := range rows {
		idx, ok := index[row.ID]
		if !ok {
			idx = len(records)
			index[row.ID] = idx
			records = append(records, models.AssignmentRecord{
				Email:      row.Email,
				Name:       row.Name,
				RollNo:     row.RollNo,
				Department: row.Department,
				CourseID:   row.CourseID,
				Year:       row.Year,
				CreatedAt:  row.CreatedAt,
				Weeks:      make(map[int]models.WeekScore),
			})
		}
		if !row.Week.Valid {
			continue
		}
		score := models.WeekScore{State: models.ScoreMissing}
		if row.Score.Valid {
			score = models.ScoreFromString(row.Score.String)
		}
		records[idx].Weeks[int(row.Week.Int64)] = score
	}
	return records, nil
}
