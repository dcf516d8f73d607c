package aggregate

import (
	"strings"

	"github.com/noah-isme/course-progress-api/internal/models"
)

// DefaultMentorWeekWindow is the fixed week range of the mentor view.
const DefaultMentorWeekWindow = 12

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GroupByMentor groups mentees by mentor in first-seen order and attaches each assignment
// to the group of the mentee with the same email. Duplicate mentees within a group are
// dropped, as are assignments that match no mentee.
func GroupByMentor(mentees []models.MenteeRecord, assignments []models.AssignmentRecord) []models.MentorGroup {
	groups := make([]models.MentorGroup, 0)
	groupIndex := make(map[string]int)
	menteeGroup := make(map[string]int)
	seen := make(map[string]map[string]struct{})

	for _, mentee := range mentees {
		idx, ok := groupIndex[mentee.MentorName]
		if !ok {
			idx = len(groups)
			groupIndex[mentee.MentorName] = idx
			groups = append(groups, models.MentorGroup{
				MentorName:  mentee.MentorName,
				Mentees:     []models.MenteeRecord{},
				Assignments: []models.AssignmentRecord{},
			})
			seen[mentee.MentorName] = make(map[string]struct{})
		}

		key := emailKey(mentee.Email)
		if _, dup := seen[mentee.MentorName][key]; dup {
			continue
		}
		seen[mentee.MentorName][key] = struct{}{}
		groups[idx].Mentees = append(groups[idx].Mentees, mentee)
		if _, claimed := menteeGroup[key]; !claimed {
			menteeGroup[key] = idx
		}
	}

	for _, assignment := range assignments {
		idx, ok := menteeGroup[emailKey(assignment.Email)]
		if !ok {
			continue
		}
		groups[idx].Assignments = append(groups[idx].Assignments, assignment)
	}
	return groups
}

// FindMentorGroup returns the group for mentorName.
func FindMentorGroup(groups []models.MentorGroup, mentorName string) (models.MentorGroup, bool) {
	for _, group := range groups {
		if group.MentorName == mentorName {
			return group, true
		}
	}
	return models.MentorGroup{}, false
}

// MentorWeeklyStats counts, for raw weeks 1..window, the group's assignment rows with a
// positive score against the rest.
func MentorWeeklyStats(group models.MentorGroup, window int) []models.MentorWeekStat {
	if window <= 0 {
		window = DefaultMentorWeekWindow
	}
	stats := make([]models.MentorWeekStat, 0, window)
	for week := 1; week <= window; week++ {
		stat := models.MentorWeekStat{Week: week}
		for _, assignment := range group.Assignments {
			if assignment.Score(week).Positive() {
				stat.Completed++
			} else {
				stat.NotCompleted++
			}
		}
		stats = append(stats, stat)
	}
	return stats
}

// MenteeProgressFor counts the weeks in 1..window where any of the mentee's assignment
// rows holds a positive score.
func MenteeProgressFor(mentee models.MenteeRecord, assignments []models.AssignmentRecord, window int) models.MenteeProgress {
	if window <= 0 {
		window = DefaultMentorWeekWindow
	}
	key := emailKey(mentee.Email)
	completed := 0
	for week := 1; week <= window; week++ {
		for _, assignment := range assignments {
			if emailKey(assignment.Email) == key && assignment.Score(week).Positive() {
				completed++
				break
			}
		}
	}
	return models.MenteeProgress{
		Email:        mentee.Email,
		Name:         mentee.Name,
		RollNo:       mentee.RollNo,
		Department:   mentee.Department,
		Completed:    completed,
		NotCompleted: window - completed,
	}
}

// GroupProgress derives progress for every mentee of the group, ordered by roll number.
func GroupProgress(group models.MentorGroup, window int) []models.MenteeProgress {
	mentees := SortMenteesByRoll(group.Mentees)
	progress := make([]models.MenteeProgress, 0, len(mentees))
	for _, mentee := range mentees {
		progress = append(progress, MenteeProgressFor(mentee, group.Assignments, window))
	}
	return progress
}
