// Package reports builds the ward's daily report and date-range extract from
// the patient list the API returns. Nothing here talks to a store directly.
package reports

import (
	"fmt"
	"time"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
)

// DayLayout is the calendar-day format accepted on the command line
const DayLayout = "2006-01-02"

// ParseDay parses a YYYY-MM-DD calendar day in loc
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DayLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q, want YYYY-MM-DD: %w", value, err)
	}
	return day, nil
}

// OnDay reports whether t, read in loc, falls on day's calendar date. day is
// a date label: only its own year, month and day are used.
func OnDay(t, day time.Time, loc *time.Location) bool {
	y1, m1, d1 := t.In(loc).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// civil reduces t to a comparable calendar date in loc
func civil(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func label(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AdmittedOn returns the patients admitted on day
func AdmittedOn(patients []*entities.Patient, day time.Time, loc *time.Location) []*entities.Patient {
	result := make([]*entities.Patient, 0)
	for _, p := range patients {
		if OnDay(p.AdmissionDate, day, loc) {
			result = append(result, p)
		}
	}
	return result
}

// DischargedOn returns the patients discharged on day
func DischargedOn(patients []*entities.Patient, day time.Time, loc *time.Location) []*entities.Patient {
	result := make([]*entities.Patient, 0)
	for _, p := range patients {
		if p.Status == entities.PatientStatusDischarged && p.DischargeDate != nil && OnDay(*p.DischargeDate, day, loc) {
			result = append(result, p)
		}
	}
	return result
}

func withStatus(patients []*entities.Patient, status entities.PatientStatus) []*entities.Patient {
	result := make([]*entities.Patient, 0, len(patients))
	for _, p := range patients {
		if p.Status == status {
			result = append(result, p)
		}
	}
	return result
}

func withSpecialty(patients []*entities.Patient, specialty string) []*entities.Patient {
	result := make([]*entities.Patient, 0)
	for _, p := range patients {
		if string(p.Specialty) == specialty {
			result = append(result, p)
		}
	}
	return result
}
