package treatment

import (
	"encoding/csv"
	"io"
	"strings"
	"time"
)

// Report column headers per tab.
var (
	activeReportHeader  = []string{"Patient", "Location", "Drug", "Start", "Progress", "Status"}
	historyReportHeader = []string{"Patient", "Location", "Drug", "Start", "End", "Status"}
)

// FormatShortDate renders an ISO calendar date as day/month, the convention
// used on printed reports. Empty dates render as a dash.
func FormatShortDate(isoDate string) string {
	parts := strings.SplitN(isoDate, "-", 3)
	if len(parts) != 3 {
		return "-"
	}
	return parts[2] + "/" + parts[1]
}

// BuildReport produces the columnar report rows for one tab, header first.
// Active rows carry the computed progress text and status label; history
// rows carry the treatment end date and a fixed Completed label. The report
// is presentation-only; nothing feeds back into the records.
func BuildReport(records []*PatientRecord, tab Tab, asOf time.Time) ([][]string, error) {
	rows := make([][]string, 0, len(records)+1)

	if tab == TabHistory {
		rows = append(rows, historyReportHeader)
		for _, rec := range records {
			rows = append(rows, []string{
				rec.Name, rec.Location, rec.Drug,
				FormatShortDate(rec.Start), FormatShortDate(rec.EndDate), "Completed",
			})
		}
		return rows, nil
	}

	rows = append(rows, activeReportHeader)
	for _, rec := range records {
		info, err := ComputeStatus(rec, asOf)
		if err != nil {
			return nil, err
		}
		rows = append(rows, []string{
			rec.Name, rec.Location, rec.Drug,
			FormatShortDate(rec.Start), info.DisplayText, info.Label,
		})
	}
	return rows, nil
}

// WriteCSV writes report rows to w in CSV form.
func WriteCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}
