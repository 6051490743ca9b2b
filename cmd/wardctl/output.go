package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
	"github.com/zatekoja/wardtracker/internal/reports"
)

const timeLayout = "2006-01-02 15:04"

func parseDay(value string, loc *time.Location) (time.Time, error) {
	return reports.ParseDay(value, loc)
}

// parseTime accepts the API's timestamp forms, read in loc when zone-less.
// An empty value means now.
func parseTime(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	t, err := entities.ParseTimestamp(value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc), nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPatients(w io.Writer, patients []*entities.Patient, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MRN\tNAME\tAGE\tGENDER\tSPECIALTY\tSTATUS\tADMITTED\tDISCHARGED")
	for _, p := range patients {
		discharged := "-"
		if p.DischargeDate != nil {
			discharged = p.DischargeDate.In(loc).Format(timeLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			p.MRN, p.Name, p.Age, p.Gender, p.Specialty, p.Status,
			p.AdmissionDate.In(loc).Format(timeLayout), discharged)
	}
	return tw.Flush()
}

func printNotes(w io.Writer, notes []*entities.MedicalNote, loc *time.Location) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tUSER\tNOTE")
	for _, n := range notes {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", n.Date.In(loc).Format(timeLayout), n.User, n.Note)
	}
	return tw.Flush()
}

func printPatientDetail(w io.Writer, p *entities.Patient, notes []*entities.MedicalNote, loc *time.Location) error {
	fmt.Fprintf(w, "%s (MRN %s)\n", p.Name, p.MRN)
	fmt.Fprintf(w, "  Age:        %d\n", p.Age)
	fmt.Fprintf(w, "  Gender:     %s\n", p.Gender)
	fmt.Fprintf(w, "  Diagnosis:  %s\n", p.Diagnosis)
	fmt.Fprintf(w, "  Specialty:  %s\n", p.Specialty)
	if p.AssignedDoctor != "" {
		fmt.Fprintf(w, "  Doctor:     %s\n", p.AssignedDoctor)
	}
	fmt.Fprintf(w, "  Status:     %s\n", p.Status)
	fmt.Fprintf(w, "  Admitted:   %s\n", p.AdmissionDate.In(loc).Format(timeLayout))
	if p.DischargeDate != nil {
		fmt.Fprintf(w, "  Discharged: %s\n", p.DischargeDate.In(loc).Format(timeLayout))
	}
	fmt.Fprintln(w)
	return printNotes(w, notes, loc)
}
