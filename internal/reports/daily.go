package reports

import (
	"time"

	"github.com/zatekoja/wardtracker/internal/domain/entities"
)

// PatientLists splits a day's patients by status. Active patients are
// those admitted on the day; discharged ones are those discharged on it.
type PatientLists struct {
	Active     []*entities.Patient
	Discharged []*entities.Patient
}

// SpecialtySection is one specialty's part of the daily report
type SpecialtySection struct {
	Specialty string
	PatientLists
}

// DailyReport is the per-specialty and whole-ward view of one day
type DailyReport struct {
	Day      time.Time
	Location *time.Location
	Sections []SpecialtySection
	Overview PatientLists
}

func listsFor(patients []*entities.Patient, day time.Time, loc *time.Location) PatientLists {
	return PatientLists{
		Active:     AdmittedOn(withStatus(patients, entities.PatientStatusActive), day, loc),
		Discharged: DischargedOn(patients, day, loc),
	}
}

// BuildDailyReport builds the report for day. Sections follow the order of
// specialties, which normally comes from GET /specialties.
func BuildDailyReport(patients []*entities.Patient, specialties []string, day time.Time, loc *time.Location) *DailyReport {
	report := &DailyReport{
		Day:      label(day),
		Location: loc,
		Sections: make([]SpecialtySection, 0, len(specialties)),
		Overview: listsFor(patients, day, loc),
	}
	for _, specialty := range specialties {
		report.Sections = append(report.Sections, SpecialtySection{
			Specialty:    specialty,
			PatientLists: listsFor(withSpecialty(patients, specialty), day, loc),
		})
	}
	return report
}
