package timeentry

import (
	"sort"

	"github.com/xuri/excelize/v2"
)

const (
	entriesSheet = "Entries"
	totalsSheet  = "Totals"
	timeLayout   = "2006-01-02 15:04"
)

var (
	entriesHeader = []interface{}{"Employee", "Email", "Location", "Clock In (UTC)", "Clock Out (UTC)", "Duration (min)", "Notes"}
	totalsHeader  = []interface{}{"Employee", "Email", "Entries", "Total Minutes", "Total Hours"}
)

type userTotal struct {
	name    string
	email   string
	entries int
	minutes int
}

// BuildTimesheet renders one row per entry plus a per-user totals sheet.
// Open entries are listed without a clock-out and count zero minutes.
func BuildTimesheet(rows []TimeEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", entriesSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(totalsSheet); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(entriesSheet, "A1", &entriesHeader); err != nil {
		return nil, err
	}

	totals := map[string]*userTotal{}
	for i, e := range rows {
		name, email := userLabel(e)
		locName := ""
		if e.Location != nil {
			locName = e.Location.Name
		}
		clockOut := ""
		if e.ClockOutTime != nil {
			clockOut = e.ClockOutTime.UTC().Format(timeLayout)
		}
		minutes := 0
		if e.DurationMinutes != nil {
			minutes = *e.DurationMinutes
		}
		notes := ""
		if e.Notes != nil {
			notes = *e.Notes
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{name, email, locName, e.ClockInTime.UTC().Format(timeLayout), clockOut, minutes, notes}
		if err := f.SetSheetRow(entriesSheet, cell, &row); err != nil {
			return nil, err
		}

		key := e.UserID.String()
		t, ok := totals[key]
		if !ok {
			t = &userTotal{name: name, email: email}
			totals[key] = t
		}
		t.entries++
		t.minutes += minutes
	}

	if err := f.SetSheetRow(totalsSheet, "A1", &totalsHeader); err != nil {
		return nil, err
	}

	sorted := make([]*userTotal, 0, len(totals))
	for _, t := range totals {
		sorted = append(sorted, t)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].email < sorted[j].email })

	for i, t := range sorted {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{t.name, t.email, t.entries, t.minutes, float64(t.minutes) / 60}
		if err := f.SetSheetRow(totalsSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func userLabel(e TimeEntry) (string, string) {
	if e.User == nil {
		return e.UserID.String(), ""
	}
	name := e.User.FullName
	if name == "" {
		name = e.User.Username
	}
	return name, e.User.Email
}
