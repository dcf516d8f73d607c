package aggregate

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/noah-isme/course-progress-api/internal/models"
)

var (
	rollPattern      = regexp.MustCompile(`(\d{2})(?:[A-Z]{2})(\d+)`)
	rollDeptPattern  = regexp.MustCompile(`\d{2}([A-Z]{2})`)
	departmentByCode = map[string]string{"AM": "AIML", "CS": "CSE", "CZ": "CSE (CS)"}
)

// ParseRollNumber extracts the two-digit admission year and the trailing sequence from
// a roll number such as 21CS1042. Unmatched input yields (0, 0).
func ParseRollNumber(roll string) (year, sequence int) {
	match := rollPattern.FindStringSubmatch(roll)
	if match == nil {
		return 0, 0
	}
	year, _ = strconv.Atoi(match[1])
	sequence, _ = strconv.Atoi(match[2])
	return year, sequence
}

// SortMenteesByRoll returns a copy ordered by (year, sequence). Equal keys keep their
// input order.
func SortMenteesByRoll(mentees []models.MenteeRecord) []models.MenteeRecord {
	sorted := make([]models.MenteeRecord, len(mentees))
	copy(sorted, mentees)
	sort.SliceStable(sorted, func(i, j int) bool {
		yi, si := ParseRollNumber(sorted[i].RollNo)
		yj, sj := ParseRollNumber(sorted[j].RollNo)
		if yi != yj {
			return yi < yj
		}
		return si < sj
	})
	return sorted
}

// DepartmentFromRoll maps the department code embedded in a roll number to its display
// name. Unknown codes are returned as-is and unmatched input yields "".
func DepartmentFromRoll(roll string) string {
	match := rollDeptPattern.FindStringSubmatch(roll)
	if match == nil {
		return ""
	}
	if name, ok := departmentByCode[match[1]]; ok {
		return name
	}
	return match[1]
}
