package csvutil

import (
	"strings"
	"testing"
)

func TestPreScanMenteesCSV_ValidRows(t *testing.T) {
	csv := `MUJid,Name,Email,Phone,Semester,Mentor MUJid
muj2024001,Asha Rao,Asha.Rao@example.com,9876543210,3,MUJM01
MUJ2024002,Dev Patel,dev@example.com,,5,mujm02`

	rows, rowErrs, err := PreScanMenteesCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("PreScanMenteesCSV() error = %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrs)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	if rows[0].MUJid != "MUJ2024001" {
		t.Errorf("Row 0 MUJid = %q, want %q", rows[0].MUJid, "MUJ2024001")
	}
	if rows[0].Email != "asha.rao@example.com" {
		t.Errorf("Row 0 Email = %q, want %q", rows[0].Email, "asha.rao@example.com")
	}
	if rows[0].Semester != 3 {
		t.Errorf("Row 0 Semester = %d, want 3", rows[0].Semester)
	}
	if rows[1].MentorMujid != "MUJM02" {
		t.Errorf("Row 1 MentorMujid = %q, want %q", rows[1].MentorMujid, "MUJM02")
	}
}

func TestPreScanMenteesCSV_NoHeader(t *testing.T) {
	csv := `MUJ2024001,Asha Rao,asha@example.com,,3,MUJM01`

	rows, rowErrs, err := PreScanMenteesCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("PreScanMenteesCSV() error = %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("unexpected row errors: %v", rowErrs)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want 1", len(rows))
	}
}

func TestPreScanMenteesCSV_BOMHandling(t *testing.T) {
	csv := "\uFEFFMUJid,Name,Email,Phone,Semester,Mentor MUJid\nMUJ2024001,Asha Rao,asha@example.com,,3,MUJM01"

	rows, rowErrs, err := PreScanMenteesCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("PreScanMenteesCSV() error = %v", err)
	}
	if len(rowErrs) != 0 {
		t.Fatalf("unexpected row errors with BOM: %v", rowErrs)
	}
	if len(rows) != 1 {
		t.Errorf("got %d rows, want 1", len(rows))
	}
}

func TestPreScanMenteesCSV_EmptyFile(t *testing.T) {
	rows, rowErrs, err := PreScanMenteesCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("PreScanMenteesCSV() error = %v", err)
	}
	if len(rows) != 0 || len(rowErrs) != 0 {
		t.Errorf("got %d rows, %d errors, want 0, 0", len(rows), len(rowErrs))
	}
}

func TestPreScanMenteesCSV_InvalidRows(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"missing mujid", ",Asha Rao,asha@example.com,,3,MUJM01", "missing mujid"},
		{"missing name", "MUJ2024001,,asha@example.com,,3,MUJM01", "missing name"},
		{"bad email", "MUJ2024001,Asha Rao,not-an-email,,3,MUJM01", "invalid or missing email"},
		{"missing mentor", "MUJ2024001,Asha Rao,asha@example.com,,3,", "missing mentor mujid"},
		{"semester too high", "MUJ2024001,Asha Rao,asha@example.com,,9,MUJM01", "semester must be 1-8"},
		{"semester not a number", "MUJ2024001,Asha Rao,asha@example.com,,three,MUJM01", "semester must be 1-8"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rows, rowErrs, err := PreScanMenteesCSV(strings.NewReader(tc.row))
			if err != nil {
				t.Fatalf("PreScanMenteesCSV() error = %v", err)
			}
			if len(rows) != 0 {
				t.Errorf("bad row accepted: %+v", rows)
			}
			found := false
			for _, re := range rowErrs {
				if strings.Contains(re.Reason, tc.want) {
					found = true
				}
			}
			if !found {
				t.Errorf("row errors %v do not mention %q", rowErrs, tc.want)
			}
		})
	}
}

func TestPreScanMenteesCSV_DuplicateMujid(t *testing.T) {
	csv := `MUJ2024001,Asha Rao,asha@example.com,,3,MUJM01
MUJ2024001,Asha Again,asha2@example.com,,3,MUJM01`

	_, rowErrs, err := PreScanMenteesCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("PreScanMenteesCSV() error = %v", err)
	}
	if len(rowErrs) != 1 {
		t.Fatalf("got %d row errors, want 1: %v", len(rowErrs), rowErrs)
	}
	if !strings.Contains(rowErrs[0].Reason, "duplicate") {
		t.Errorf("reason = %q, want duplicate mention", rowErrs[0].Reason)
	}
	if rowErrs[0].Line != 2 {
		t.Errorf("line = %d, want 2", rowErrs[0].Line)
	}
}
