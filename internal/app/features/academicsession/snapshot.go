// internal/app/features/academicsession/snapshot.go
package academicsession

import (
	"sort"
	"time"

	"github.com/mentorlink/mentorlink/internal/app/system/paging"
	"github.com/mentorlink/mentorlink/internal/domain/models"
)

// snapshot is the denormalized archive of one session period, built
// entirely in memory before anything is written.
type snapshot struct {
	Semesters []models.SemesterArchive
	Mentors   []models.ArchivedMentor
	Graduated []models.GraduatedMentee

	MeetingsArchived int
	MeetingPages     int
}

// buildSnapshot assembles the archive tree from the live collections'
// contents. Records missing an email are dropped silently; the archive
// only keeps rows that were reachable by notification in the first
// place. Meeting entries are deduplicated by meeting id across all
// documents, first occurrence winning, so a duplicated id can never
// inflate the archive.
func buildSnapshot(mentors []models.Mentor, mentees []models.Mentee, docs []models.MeetingDoc, now time.Time) snapshot {
	mentorByMujid := make(map[string]models.Mentor, len(mentors))
	for _, m := range mentors {
		mentorByMujid[m.MUJid] = m
	}

	// flatten meeting entries, dedupe by meeting id
	seen := make(map[string]bool)
	var flat []models.ArchivedMeeting
	for _, doc := range docs {
		mentor := mentorByMujid[doc.MentorMujid]
		for _, e := range doc.Meetings {
			if e.MeetingID == "" || seen[e.MeetingID] {
				continue
			}
			seen[e.MeetingID] = true
			flat = append(flat, models.ArchivedMeeting{
				MeetingID:      e.MeetingID,
				Date:           e.Date,
				Semester:       e.Semester,
				MentorMujid:    doc.MentorMujid,
				MentorName:     mentor.Name,
				MentorEmail:    mentor.Email,
				Notes:          e.Notes,
				MenteesInvited: e.MenteesInvited,
				MenteesPresent: e.MenteesPresent,
				Attendance:     models.ComputeAttendance(len(e.MenteesInvited), len(e.MenteesPresent)),
			})
		}
	}

	// per-mentee turnout and per-mentee attended history
	invitedCount := map[string]int{}
	attendedCount := map[string]int{}
	attended := map[string][]models.AttendedMeeting{}
	for _, m := range flat {
		for _, mujid := range m.MenteesInvited {
			invitedCount[mujid]++
		}
		for _, mujid := range m.MenteesPresent {
			attendedCount[mujid]++
			attended[mujid] = append(attended[mujid], models.AttendedMeeting{
				MeetingID: m.MeetingID,
				Date:      m.Date,
				Semester:  m.Semester,
			})
		}
	}

	// mentor -> mentees tree for continuing mentees; graduating ones go
	// to the flat graduated list instead
	menteesByMentor := map[string][]models.ArchivedMentee{}
	var graduated []models.GraduatedMentee
	for _, m := range mentees {
		if m.Email == "" {
			continue
		}
		if m.Graduating() {
			graduated = append(graduated, models.GraduatedMentee{
				MUJid:       m.MUJid,
				Name:        m.Name,
				Email:       m.Email,
				MentorMujid: m.MentorMujid,
				Attended:    attended[m.MUJid],
				GraduatedAt: now,
			})
			continue
		}
		menteesByMentor[m.MentorMujid] = append(menteesByMentor[m.MentorMujid], models.ArchivedMentee{
			MUJid:            m.MUJid,
			Name:             m.Name,
			Email:            m.Email,
			Semester:         m.Semester,
			MeetingsAttended: attendedCount[m.MUJid],
			MeetingsInvited:  invitedCount[m.MUJid],
		})
	}
	sort.Slice(graduated, func(i, j int) bool { return graduated[i].MUJid < graduated[j].MUJid })

	var archivedMentors []models.ArchivedMentor
	for _, m := range mentors {
		if m.Email == "" {
			continue
		}
		archivedMentors = append(archivedMentors, models.ArchivedMentor{
			MUJid:   m.MUJid,
			Name:    m.Name,
			Email:   m.Email,
			Phone:   m.Phone,
			Mentees: menteesByMentor[m.MUJid],
		})
	}
	sort.Slice(archivedMentors, func(i, j int) bool { return archivedMentors[i].MUJid < archivedMentors[j].MUJid })

	// group by semester and page
	bySemester := map[int][]models.ArchivedMeeting{}
	for _, m := range flat {
		bySemester[m.Semester] = append(bySemester[m.Semester], m)
	}
	semesterKeys := make([]int, 0, len(bySemester))
	for sem := range bySemester {
		semesterKeys = append(semesterKeys, sem)
	}
	sort.Ints(semesterKeys)

	var semesters []models.SemesterArchive
	totalPages := 0
	for _, sem := range semesterKeys {
		group := bySemester[sem]
		sort.Slice(group, func(i, j int) bool {
			if !group[i].Date.Equal(group[j].Date) {
				return group[i].Date.Before(group[j].Date)
			}
			return group[i].MeetingID < group[j].MeetingID
		})
		chunks := paging.Chunk(group, models.MeetingsPerPage)
		pages := make([]models.MeetingPage, 0, len(chunks))
		for i, chunk := range chunks {
			pages = append(pages, models.MeetingPage{Page: i + 1, Meetings: chunk})
		}
		totalPages += len(pages)
		semesters = append(semesters, models.SemesterArchive{
			Semester:     sem,
			MeetingPages: pages,
		})
	}

	return snapshot{
		Semesters:        semesters,
		Mentors:          archivedMentors,
		Graduated:        graduated,
		MeetingsArchived: len(flat),
		MeetingPages:     totalPages,
	}
}
