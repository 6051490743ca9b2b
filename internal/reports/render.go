package reports

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
)

// ViewMode selects how the daily report is laid out
type ViewMode string

const (
	ViewBySpecialty ViewMode = "specialty"
	ViewByDay       ViewMode = "day"
)

const stampLayout = "2006-01-02 15:04"

func stamp(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(stampLayout)
}

// RenderDailyReport writes the plain-text daily report
func RenderDailyReport(w io.Writer, report *DailyReport, mode ViewMode) error {
	loc := report.Location
	if loc == nil {
		loc = time.Local
	}
	out := bufio.NewWriter(w)
	fmt.Fprintf(out, "Daily Report - %s\n\n", report.Day.Format(DayLayout))

	switch mode {
	case ViewByDay:
		fmt.Fprintln(out, "Active Patients:")
		for _, p := range report.Overview.Active {
			fmt.Fprintf(out, "- %s (MRN: %s, Age: %d, Specialty: %s, Admitted: %s)\n", p.Name, p.MRN, p.Age, p.Specialty, stamp(p.AdmissionDate, loc))
		}
		fmt.Fprintln(out, "\nDischarged Patients:")
		for _, p := range report.Overview.Discharged {
			fmt.Fprintf(out, "- %s (MRN: %s, Age: %d, Specialty: %s, Discharged: %s)\n", p.Name, p.MRN, p.Age, p.Specialty, stamp(*p.DischargeDate, loc))
		}
	case ViewBySpecialty, "":
		for _, section := range report.Sections {
			fmt.Fprintf(out, "%s\n", section.Specialty)
			fmt.Fprintln(out, "Active Patients:")
			for _, p := range section.Active {
				fmt.Fprintf(out, "- %s (MRN: %s, Age: %d, Admitted: %s)\n", p.Name, p.MRN, p.Age, stamp(p.AdmissionDate, loc))
			}
			fmt.Fprintln(out, "Discharged Patients:")
			for _, p := range section.Discharged {
				fmt.Fprintf(out, "- %s (MRN: %s, Age: %d, Discharged: %s)\n", p.Name, p.MRN, p.Age, stamp(*p.DischargeDate, loc))
			}
			fmt.Fprintln(out)
		}
	default:
		return fmt.Errorf("unknown report view %q", mode)
	}
	return out.Flush()
}

// RenderDischarges writes the list of patients discharged on day
func RenderDischarges(w io.Writer, patients []*entities.Patient, day time.Time, loc *time.Location) error {
	out := bufio.NewWriter(w)
	discharged := DischargedOn(patients, day, loc)
	fmt.Fprintf(out, "Discharges - %s (%d)\n", label(day).Format(DayLayout), len(discharged))
	for _, p := range discharged {
		fmt.Fprintf(out, "- %s (MRN: %s, Specialty: %s, Discharged: %s)\n", p.Name, p.MRN, p.Specialty, stamp(*p.DischargeDate, loc))
	}
	return out.Flush()
}

// RenderExtract writes the plain-text patient data extract
func RenderExtract(w io.Writer, extracted []ExtractedPatient, from, to time.Time, loc *time.Location) error {
	out := bufio.NewWriter(w)
	fmt.Fprintf(out, "Patient Data Extract (%s to %s)\n\n", label(from).Format(DayLayout), label(to).Format(DayLayout))

	for _, p := range extracted {
		fmt.Fprintf(out, "Patient: %s (MRN: %s)\n", p.Name, p.MRN)
		fmt.Fprintf(out, "Specialty: %s\n", p.Specialty)
		fmt.Fprintf(out, "Admission Date: %s\n", p.AdmissionDate.In(loc).Format(DayLayout))
		if p.DischargeDate != nil {
			fmt.Fprintf(out, "Discharge Date: %s\n", p.DischargeDate.In(loc).Format(DayLayout))
		}
		fmt.Fprintf(out, "Status: %s\n", p.Status)
		fmt.Fprintln(out, "Notes:")
		for _, note := range p.Notes {
			fmt.Fprintf(out, "  %s: %s\n", stamp(note.Date, loc), note.Note)
		}
		fmt.Fprintln(out)
	}
	return out.Flush()
}
