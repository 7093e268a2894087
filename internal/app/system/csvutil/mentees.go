// internal/app/system/csvutil/mentees.go
package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mentorlink/mentorlink/internal/app/system/normalize"
	"github.com/mentorlink/mentorlink/internal/domain/models"
)

// MenteeCSVRow is the normalized row produced by PreScanMenteesCSV.
type MenteeCSVRow struct {
	MUJid       string
	Name        string
	Email       string
	Phone       string
	Semester    int
	MentorMujid string
}

// RowError describes one rejected CSV line.
type RowError struct {
	Line   int    `json:"line"`
	MUJid  string `json:"mujid,omitempty"`
	Reason string `json:"reason"`
}

func (e RowError) String() string {
	if e.MUJid != "" {
		return fmt.Sprintf("line %d (%s): %s", e.Line, e.MUJid, e.Reason)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// PreScanMenteesCSV reads all rows from r, skips a header if present,
// validates each row, and returns either normalized rows or the list of
// bad lines. It never writes to a DB; it's safe to call before any
// mutations.
//
// Expected columns: mujid, name, email, phone, semester, mentor mujid.
// Phone is optional; everything else is required.
func PreScanMenteesCSV(r io.Reader) (rows []MenteeCSVRow, rowErrs []RowError, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first, ferr := reader.Read()
	if ferr == io.EOF {
		first = nil
	} else if ferr != nil {
		return nil, nil, fmt.Errorf("read csv: %w", ferr)
	}

	if len(first) > 0 {
		first[0] = strings.TrimPrefix(first[0], "\uFEFF")
	}

	var raw [][]string
	lines := []int{}
	line := 1
	if isMenteeHeader(first) {
		// header detected, skip it
	} else if first != nil {
		raw = append(raw, first)
		lines = append(lines, line)
	}
	for {
		line++
		rec, e := reader.Read()
		if e == io.EOF {
			break
		}
		if e != nil || len(rec) == 0 {
			continue
		}
		raw = append(raw, rec)
		lines = append(lines, line)
	}

	if len(raw) > MaxRows {
		return nil, nil, fmt.Errorf("too many rows: %d (limit %d)", len(raw), MaxRows)
	}

	seen := make(map[string]int) // mujid -> first line
	for i, rec := range raw {
		row, bad := normalizeMenteeRow(rec, lines[i])
		if row.MUJid == "" && row.Name == "" && row.Email == "" {
			continue // blank line
		}
		if prev, dup := seen[row.MUJid]; dup && row.MUJid != "" {
			bad = append(bad, RowError{
				Line:   lines[i],
				MUJid:  row.MUJid,
				Reason: fmt.Sprintf("duplicate of line %d", prev),
			})
		} else if row.MUJid != "" {
			seen[row.MUJid] = lines[i]
		}
		if len(bad) > 0 {
			rowErrs = append(rowErrs, bad...)
			continue
		}
		rows = append(rows, row)
	}

	if len(rowErrs) > 0 {
		return nil, rowErrs, nil
	}
	return rows, nil, nil
}

func isMenteeHeader(rec []string) bool {
	if len(rec) < 2 {
		return false
	}
	h := strings.ToLower(strings.TrimSpace(rec[0]))
	return h == "mujid" || h == "registration no" || h == "registration number"
}

func normalizeMenteeRow(rec []string, line int) (MenteeCSVRow, []RowError) {
	field := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	row := MenteeCSVRow{
		MUJid:       normalize.MUJid(field(0)),
		Name:        normalize.Name(field(1)),
		Email:       normalize.Email(field(2)),
		Phone:       normalize.Phone(field(3)),
		MentorMujid: normalize.MUJid(field(5)),
	}

	var errs []RowError
	add := func(reason string) {
		errs = append(errs, RowError{Line: line, MUJid: row.MUJid, Reason: reason})
	}

	if row.MUJid == "" {
		add("missing mujid")
	}
	if row.Name == "" {
		add("missing name")
	}
	if row.Email == "" || !strings.Contains(row.Email, "@") {
		add("invalid or missing email")
	}
	if row.MentorMujid == "" {
		add("missing mentor mujid")
	}

	semRaw := field(4)
	sem, convErr := strconv.Atoi(semRaw)
	if convErr != nil || sem < models.MinSemester || sem > models.MaxSemester {
		add(fmt.Sprintf("semester must be %d-%d", models.MinSemester, models.MaxSemester))
	} else {
		row.Semester = sem
	}

	return row, errs
}
