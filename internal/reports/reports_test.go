package reports_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/wardtracker/internal/domain/entities"
	"github.com/zatekoja/wardtracker/internal/reports"
)

func at(value string) time.Time {
	t, err := time.ParseInLocation("2006-01-02T15:04", value, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func patient(mrn string, specialty entities.Specialty, admitted string) *entities.Patient {
	return &entities.Patient{
		MRN:           mrn,
		Name:          "Patient " + mrn,
		Age:           40,
		Gender:        entities.GenderOther,
		Diagnosis:     "Observation",
		AdmissionDate: at(admitted),
		Status:        entities.PatientStatusActive,
		Specialty:     specialty,
	}
}

func discharged(p *entities.Patient, on string) *entities.Patient {
	d := at(on)
	p.Status = entities.PatientStatusDischarged
	p.DischargeDate = &d
	return p
}

func TestOnDay_CalendarDay(t *testing.T) {
	day, err := reports.ParseDay("2024-01-05", time.UTC)
	require.NoError(t, err)

	assert.True(t, reports.OnDay(at("2024-01-05T08:00"), day, time.UTC))
	assert.True(t, reports.OnDay(at("2024-01-05T23:59"), day, time.UTC))
	assert.False(t, reports.OnDay(at("2024-01-06T00:01"), day, time.UTC))
	assert.False(t, reports.OnDay(at("2024-01-04T23:59"), day, time.UTC))
}

func TestOnDay_UsesLocation(t *testing.T) {
	lagos := time.FixedZone("WAT", 60*60)
	day, err := reports.ParseDay("2024-01-06", lagos)
	require.NoError(t, err)

	// 23:30 UTC on the 5th is 00:30 on the 6th in UTC+1
	assert.True(t, reports.OnDay(at("2024-01-05T23:30"), day, lagos))
	assert.False(t, reports.OnDay(at("2024-01-05T23:30"), day, time.UTC))
}

func TestParseDay_Invalid(t *testing.T) {
	_, err := reports.ParseDay("05/01/2024", time.UTC)
	assert.Error(t, err)
}

func TestAdmittedOnAndDischargedOn(t *testing.T) {
	day, _ := reports.ParseDay("2024-01-05", time.UTC)
	patients := []*entities.Patient{
		patient("A", entities.SpecialtyHematology, "2024-01-05T08:00"),
		patient("B", entities.SpecialtyHematology, "2024-01-05T23:59"),
		patient("C", entities.SpecialtyHematology, "2024-01-06T00:01"),
		discharged(patient("D", entities.SpecialtyNeurology, "2024-01-01T10:00"), "2024-01-05T12:00"),
	}

	admitted := reports.AdmittedOn(patients, day, time.UTC)
	require.Len(t, admitted, 2)
	assert.Equal(t, "A", admitted[0].MRN)
	assert.Equal(t, "B", admitted[1].MRN)

	out := reports.DischargedOn(patients, day, time.UTC)
	require.Len(t, out, 1)
	assert.Equal(t, "D", out[0].MRN)
}

func TestBuildDailyReport(t *testing.T) {
	day, _ := reports.ParseDay("2024-01-05", time.UTC)
	patients := []*entities.Patient{
		patient("A", entities.SpecialtyHematology, "2024-01-05T08:00"),
		patient("B", entities.SpecialtyNeurology, "2024-01-05T09:00"),
		patient("C", entities.SpecialtyNeurology, "2024-01-04T09:00"),
		discharged(patient("D", entities.SpecialtyNeurology, "2024-01-01T10:00"), "2024-01-05T12:00"),
		discharged(patient("E", entities.SpecialtyHematology, "2024-01-05T07:00"), "2024-01-07T12:00"),
	}

	report := reports.BuildDailyReport(patients, []string{"Hematology", "Neurology"}, day, time.UTC)

	require.Len(t, report.Sections, 2)
	hematology := report.Sections[0]
	assert.Equal(t, "Hematology", hematology.Specialty)
	require.Len(t, hematology.Active, 1)
	assert.Equal(t, "A", hematology.Active[0].MRN)
	assert.Empty(t, hematology.Discharged)

	neurology := report.Sections[1]
	require.Len(t, neurology.Active, 1)
	assert.Equal(t, "B", neurology.Active[0].MRN)
	require.Len(t, neurology.Discharged, 1)
	assert.Equal(t, "D", neurology.Discharged[0].MRN)

	assert.Len(t, report.Overview.Active, 2)
	assert.Len(t, report.Overview.Discharged, 1)
}

func TestRenderDailyReport(t *testing.T) {
	day, _ := reports.ParseDay("2024-01-05", time.UTC)
	patients := []*entities.Patient{
		patient("A", entities.SpecialtyHematology, "2024-01-05T08:00"),
		discharged(patient("D", entities.SpecialtyHematology, "2024-01-01T10:00"), "2024-01-05T12:00"),
	}
	report := reports.BuildDailyReport(patients, []string{"Hematology"}, day, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, reports.RenderDailyReport(&buf, report, reports.ViewBySpecialty))
	assert.Equal(t, "Daily Report - 2024-01-05\n\n"+
		"Hematology\n"+
		"Active Patients:\n"+
		"- Patient A (MRN: A, Age: 40, Admitted: 2024-01-05 08:00)\n"+
		"Discharged Patients:\n"+
		"- Patient D (MRN: D, Age: 40, Discharged: 2024-01-05 12:00)\n\n", buf.String())

	buf.Reset()
	require.NoError(t, reports.RenderDailyReport(&buf, report, reports.ViewByDay))
	assert.Contains(t, buf.String(), "- Patient A (MRN: A, Age: 40, Specialty: Hematology, Admitted: 2024-01-05 08:00)")

	assert.Error(t, reports.RenderDailyReport(&buf, report, "weekly"))
}

// countingNotes records how often each MRN is fetched
type countingNotes struct {
	mu    sync.Mutex
	calls map[string]int
	notes map[string][]*entities.MedicalNote
	err   error
}

func (c *countingNotes) ListNotes(ctx context.Context, mrn string) ([]*entities.MedicalNote, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[mrn]++
	if c.err != nil {
		return nil, c.err
	}
	return c.notes[mrn], nil
}

func TestExtract(t *testing.T) {
	from, _ := reports.ParseDay("2024-01-05", time.UTC)
	to, _ := reports.ParseDay("2024-01-06", time.UTC)
	a := patient("A", entities.SpecialtyHematology, "2024-01-05T00:00")
	b := patient("B", entities.SpecialtyHematology, "2024-01-06T23:59")
	c := patient("C", entities.SpecialtyHematology, "2024-01-07T00:01")
	source := &countingNotes{notes: map[string][]*entities.MedicalNote{
		"A": {{ID: 1, PatientMRN: "A", Date: at("2024-01-05T10:00"), Note: "Bloods sent", User: "Dr. Bello"}},
	}}

	extracted, err := reports.Extract(context.Background(), []*entities.Patient{a, b, c, a}, from, to, time.UTC, source)
	require.NoError(t, err)

	require.Len(t, extracted, 3)
	assert.Equal(t, "A", extracted[0].MRN)
	assert.Len(t, extracted[0].Notes, 1)
	assert.Equal(t, "B", extracted[1].MRN)
	assert.Empty(t, extracted[1].Notes)
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, source.calls)

	var buf bytes.Buffer
	require.NoError(t, reports.RenderExtract(&buf, extracted[:1], from, to, time.UTC))
	assert.Equal(t, "Patient Data Extract (2024-01-05 to 2024-01-06)\n\n"+
		"Patient: Patient A (MRN: A)\n"+
		"Specialty: Hematology\n"+
		"Admission Date: 2024-01-05\n"+
		"Status: Active\n"+
		"Notes:\n"+
		"  2024-01-05 10:00: Bloods sent\n\n", buf.String())
}

func TestExtract_Errors(t *testing.T) {
	from, _ := reports.ParseDay("2024-01-06", time.UTC)
	to, _ := reports.ParseDay("2024-01-05", time.UTC)
	_, err := reports.Extract(context.Background(), nil, from, to, time.UTC, &countingNotes{})
	assert.Error(t, err)

	source := &countingNotes{err: errors.New("503 Service Unavailable")}
	_, err = reports.Extract(context.Background(),
		[]*entities.Patient{patient("A", entities.SpecialtyHematology, "2024-01-05T10:00")},
		to, from, time.UTC, source)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestRenderDischarges(t *testing.T) {
	day, _ := reports.ParseDay("2024-01-05", time.UTC)
	var buf bytes.Buffer
	require.NoError(t, reports.RenderDischarges(&buf, []*entities.Patient{
		discharged(patient("D", entities.SpecialtyNeurology, "2024-01-01T10:00"), "2024-01-05T12:00"),
		patient("A", entities.SpecialtyNeurology, "2024-01-05T10:00"),
	}, day, time.UTC))
	assert.Equal(t, "Discharges - 2024-01-05 (1)\n- Patient D (MRN: D, Specialty: Neurology, Discharged: 2024-01-05 12:00)\n", buf.String())
}

// slowNotes answers after a delay and remembers the most calls it saw at once
type slowNotes struct {
	mu          sync.Mutex
	inFlight    int
	maxInFlight int
}

func (s *slowNotes) ListNotes(ctx context.Context, mrn string) ([]*entities.MedicalNote, error) {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > s.maxInFlight {
		s.maxInFlight = s.inFlight
	}
	s.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
	return []*entities.MedicalNote{{PatientMRN: mrn, Note: "Ward round"}}, nil
}

func TestExtract_FetchesNotesConcurrently(t *testing.T) {
	from, _ := reports.ParseDay("2024-01-05", time.UTC)
	var patients []*entities.Patient
	for _, mrn := range []string{"A", "B", "C", "D", "E", "F"} {
		patients = append(patients, patient(mrn, entities.SpecialtyHematology, "2024-01-05T08:00"))
	}
	source := &slowNotes{}

	extracted, err := reports.Extract(context.Background(), patients, from, from, time.UTC, source)
	require.NoError(t, err)

	require.Len(t, extracted, 6)
	for i, p := range extracted {
		assert.Equal(t, patients[i].MRN, p.MRN)
		require.Len(t, p.Notes, 1)
		assert.Equal(t, p.MRN, p.Notes[0].PatientMRN)
	}
	assert.Greater(t, source.maxInFlight, 1)
}
