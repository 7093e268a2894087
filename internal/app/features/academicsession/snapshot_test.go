// internal/app/features/academicsession/snapshot_test.go
package academicsession

import (
	"fmt"
	"testing"
	"time"

	"github.com/mentorlink/mentorlink/internal/domain/models"
)

func mentor(mujid, email string) models.Mentor {
	return models.Mentor{MUJid: mujid, Name: "Mentor " + mujid, Email: email, Active: true}
}

func mentee(mujid, mentorMujid string, semester int) models.Mentee {
	return models.Mentee{
		MUJid:       mujid,
		Name:        "Mentee " + mujid,
		Email:       mujid + "@test.com",
		Semester:    semester,
		MentorMujid: mentorMujid,
	}
}

func entry(id string, semester int, invited, present []string, date time.Time) models.MeetingEntry {
	return models.MeetingEntry{
		MeetingID:      id,
		Date:           date,
		Semester:       semester,
		MenteesInvited: invited,
		MenteesPresent: present,
	}
}

func TestBuildSnapshot_Pagination(t *testing.T) {
	base := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)

	// 0, exactly one page, one over, several pages
	for _, n := range []int{0, 1, 25, 26, 60} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			entries := make([]models.MeetingEntry, 0, n)
			for i := 0; i < n; i++ {
				entries = append(entries, entry(fmt.Sprintf("m-%03d", i), 3, []string{"A"}, nil, base.Add(time.Duration(i)*time.Hour)))
			}
			docs := []models.MeetingDoc{{MentorMujid: "MUJM01", Meetings: entries}}

			snap := buildSnapshot([]models.Mentor{mentor("MUJM01", "m@x.com")}, nil, docs, base)

			if n == 0 {
				if len(snap.Semesters) != 0 || snap.MeetingPages != 0 {
					t.Fatalf("empty input produced %d semesters, %d pages", len(snap.Semesters), snap.MeetingPages)
				}
				return
			}

			wantPages := (n + models.MeetingsPerPage - 1) / models.MeetingsPerPage
			if snap.MeetingPages != wantPages {
				t.Errorf("pages = %d, want ceil(%d/%d) = %d", snap.MeetingPages, n, models.MeetingsPerPage, wantPages)
			}

			pages := snap.Semesters[0].MeetingPages
			union := map[string]bool{}
			for i, page := range pages {
				if page.Page != i+1 {
					t.Errorf("page numbering: got %d at index %d", page.Page, i)
				}
				if i < len(pages)-1 && len(page.Meetings) != models.MeetingsPerPage {
					t.Errorf("page %d has %d meetings, only the last may be short", page.Page, len(page.Meetings))
				}
				for _, m := range page.Meetings {
					if union[m.MeetingID] {
						t.Errorf("meeting %s appears on more than one page", m.MeetingID)
					}
					union[m.MeetingID] = true
				}
			}
			if len(union) != n {
				t.Errorf("union of pages has %d ids, want %d", len(union), n)
			}
		})
	}
}

func TestBuildSnapshot_DedupesByMeetingID(t *testing.T) {
	base := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)

	shared := entry("dup-1", 3, []string{"MUJ1"}, []string{"MUJ1"}, base)
	docs := []models.MeetingDoc{
		{MentorMujid: "MUJM01", Meetings: []models.MeetingEntry{shared, entry("solo-1", 3, nil, nil, base)}},
		{MentorMujid: "MUJM02", Meetings: []models.MeetingEntry{shared}},
	}

	snap := buildSnapshot([]models.Mentor{mentor("MUJM01", "a@x.com"), mentor("MUJM02", "b@x.com")}, nil, docs, base)

	if snap.MeetingsArchived != 2 {
		t.Fatalf("archived = %d, want 2 (duplicate collapsed)", snap.MeetingsArchived)
	}
	seen := map[string]int{}
	for _, sem := range snap.Semesters {
		for _, page := range sem.MeetingPages {
			for _, m := range page.Meetings {
				seen[m.MeetingID]++
			}
		}
	}
	if seen["dup-1"] != 1 {
		t.Errorf("dup-1 archived %d times", seen["dup-1"])
	}
	// first occurrence wins, including its mentor attribution
	for _, sem := range snap.Semesters {
		for _, page := range sem.MeetingPages {
			for _, m := range page.Meetings {
				if m.MeetingID == "dup-1" && m.MentorMujid != "MUJM01" {
					t.Errorf("dup-1 attributed to %s, want first document's mentor", m.MentorMujid)
				}
			}
		}
	}
}

func TestBuildSnapshot_Attendance(t *testing.T) {
	base := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	docs := []models.MeetingDoc{{MentorMujid: "MUJM01", Meetings: []models.MeetingEntry{
		entry("a", 3, []string{"M1", "M2", "M3", "M4"}, []string{"M1", "M2", "M3"}, base),
		entry("b", 3, nil, nil, base),
	}}}

	snap := buildSnapshot([]models.Mentor{mentor("MUJM01", "m@x.com")}, nil, docs, base)

	att := map[string]models.Attendance{}
	for _, sem := range snap.Semesters {
		for _, page := range sem.MeetingPages {
			for _, m := range page.Meetings {
				att[m.MeetingID] = m.Attendance
			}
		}
	}
	if a := att["a"]; a.Total != 4 || a.Present != 3 || a.Percentage != 75 {
		t.Errorf("attendance a = %+v", a)
	}
	if a := att["b"]; a.Percentage != 0 || a.Total != 0 {
		t.Errorf("zero-invited attendance = %+v, want all zero", a)
	}
}

func TestBuildSnapshot_GraduatingSplit(t *testing.T) {
	base := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	docs := []models.MeetingDoc{{MentorMujid: "MUJM01", Meetings: []models.MeetingEntry{
		entry("g-1", 8, []string{"GRAD1", "CONT1"}, []string{"GRAD1"}, base),
	}}}

	snap := buildSnapshot(
		[]models.Mentor{mentor("MUJM01", "m@x.com")},
		[]models.Mentee{
			mentee("GRAD1", "MUJM01", 8),
			mentee("CONT1", "MUJM01", 5),
		},
		docs, base)

	if len(snap.Graduated) != 1 || snap.Graduated[0].MUJid != "GRAD1" {
		t.Fatalf("graduated = %+v", snap.Graduated)
	}
	g := snap.Graduated[0]
	if len(g.Attended) != 1 || g.Attended[0].MeetingID != "g-1" {
		t.Errorf("graduate attendance history = %+v", g.Attended)
	}
	if !g.GraduatedAt.Equal(base) {
		t.Errorf("GraduatedAt = %v", g.GraduatedAt)
	}

	if len(snap.Mentors) != 1 {
		t.Fatalf("mentors = %+v", snap.Mentors)
	}
	tree := snap.Mentors[0].Mentees
	if len(tree) != 1 || tree[0].MUJid != "CONT1" {
		t.Errorf("mentor tree = %+v, graduating mentee must not appear", tree)
	}
	if tree[0].MeetingsInvited != 1 || tree[0].MeetingsAttended != 0 {
		t.Errorf("continuing mentee counters = %+v", tree[0])
	}
}

func TestBuildSnapshot_DropsRecordsWithoutEmail(t *testing.T) {
	base := time.Now().UTC()

	noEmailMentor := mentor("MUJM02", "")
	noEmailMentee := mentee("M2", "MUJM01", 3)
	noEmailMentee.Email = ""

	snap := buildSnapshot(
		[]models.Mentor{mentor("MUJM01", "ok@x.com"), noEmailMentor},
		[]models.Mentee{mentee("M1", "MUJM01", 3), noEmailMentee},
		nil, base)

	if len(snap.Mentors) != 1 || snap.Mentors[0].MUJid != "MUJM01" {
		t.Errorf("mentors = %+v, want only the one with an email", snap.Mentors)
	}
	if len(snap.Mentors[0].Mentees) != 1 || snap.Mentors[0].Mentees[0].MUJid != "M1" {
		t.Errorf("mentees = %+v, want only the one with an email", snap.Mentors[0].Mentees)
	}
}
