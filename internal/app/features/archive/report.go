// internal/app/features/archive/report.go
package archive

import (
	"io"
	"strconv"

	"github.com/mentorlink/mentorlink/internal/domain/models"
	"github.com/xuri/excelize/v2"
)

// workbook wraps an excelize file so handlers can stream and close it
// without importing excelize themselves.
type workbook struct {
	f *excelize.File
}

func (wb *workbook) WriteTo(w io.Writer) error { return wb.f.Write(w) }
func (wb *workbook) Close() error              { return wb.f.Close() }

// sheetName trims a candidate to excelize's 31-character sheet limit.
func sheetName(s string) string {
	if len(s) > 31 {
		return s[:31]
	}
	return s
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// buildMentorWorkbook writes one sheet per archived mentor listing
// their mentees with turnout counters.
func buildMentorWorkbook(period models.SessionPeriod) (*workbook, error) {
	f := excelize.NewFile()
	first := true
	for _, m := range period.Mentors {
		if m.Email == "" {
			continue
		}
		name := sheetName(m.MUJid)
		if first {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return nil, err
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}

		if err := setRow(f, name, 1, "Mentor", m.Name, m.Email, orPlaceholder(m.Phone)); err != nil {
			return nil, err
		}
		if err := setRow(f, name, 3, "MUJid", "Name", "Email", "Semester", "Meetings Invited", "Meetings Attended"); err != nil {
			return nil, err
		}
		row := 4
		for _, s := range m.Mentees {
			if err := setRow(f, name, row,
				s.MUJid, orPlaceholder(s.Name), orPlaceholder(s.Email),
				s.Semester, s.MeetingsInvited, s.MeetingsAttended); err != nil {
				return nil, err
			}
			row++
		}
	}
	return &workbook{f: f}, nil
}

// buildSemesterWorkbook writes one sheet per semester listing that
// semester's archived meetings in page order.
func buildSemesterWorkbook(period models.SessionPeriod) (*workbook, error) {
	f := excelize.NewFile()
	first := true
	for _, sem := range period.Semesters {
		name := "Semester " + strconv.Itoa(sem.Semester)
		if first {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return nil, err
			}
			first = false
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}

		if err := setRow(f, name, 1, "Meeting ID", "Date", "Mentor", "Invited", "Present", "Attendance %"); err != nil {
			return nil, err
		}
		row := 2
		for _, page := range sem.MeetingPages {
			for _, m := range page.Meetings {
				if err := setRow(f, name, row,
					m.MeetingID,
					m.Date.Format("2006-01-02 15:04"),
					orPlaceholder(m.MentorName),
					m.Attendance.Total,
					m.Attendance.Present,
					m.Attendance.Percentage); err != nil {
					return nil, err
				}
				row++
			}
		}
	}
	return &workbook{f: f}, nil
}

// buildSummaryWorkbook writes the combined report: a mentor overview, a
// meetings-per-semester rollup and the graduated mentee list.
func buildSummaryWorkbook(period models.SessionPeriod, yearLabel, periodName string) (*workbook, error) {
	f := excelize.NewFile()
	const sheet = "Summary"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	if err := setRow(f, sheet, 1, "Academic Year", yearLabel, "Session", periodName); err != nil {
		return nil, err
	}

	row := 3
	if err := setRow(f, sheet, row, "Mentor MUJid", "Name", "Email", "Mentees"); err != nil {
		return nil, err
	}
	row++
	for _, m := range period.Mentors {
		if m.Email == "" {
			continue
		}
		if err := setRow(f, sheet, row, m.MUJid, m.Name, m.Email, len(m.Mentees)); err != nil {
			return nil, err
		}
		row++
	}

	row++
	if err := setRow(f, sheet, row, "Semester", "Meetings", "Pages"); err != nil {
		return nil, err
	}
	row++
	for _, sem := range period.Semesters {
		total := 0
		for _, page := range sem.MeetingPages {
			total += len(page.Meetings)
		}
		if err := setRow(f, sheet, row, sem.Semester, total, len(sem.MeetingPages)); err != nil {
			return nil, err
		}
		row++
	}

	if len(period.GraduatedMentees) > 0 {
		const grads = "Graduated"
		if _, err := f.NewSheet(grads); err != nil {
			return nil, err
		}
		if err := setRow(f, grads, 1, "MUJid", "Name", "Email", "Mentor", "Meetings Attended", "Graduated At"); err != nil {
			return nil, err
		}
		r := 2
		for _, g := range period.GraduatedMentees {
			if err := setRow(f, grads, r,
				g.MUJid, orPlaceholder(g.Name), orPlaceholder(g.Email), g.MentorMujid,
				len(g.Attended), g.GraduatedAt.Format("2006-01-02")); err != nil {
				return nil, err
			}
			r++
		}
	}
	return &workbook{f: f}, nil
}
