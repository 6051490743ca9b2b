package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/zatekoja/wardtracker/internal/adapters/database"
	"github.com/zatekoja/wardtracker/internal/adapters/mirror"
	"github.com/zatekoja/wardtracker/internal/application/services"
	"github.com/zatekoja/wardtracker/internal/domain/entities"
	"github.com/zatekoja/wardtracker/internal/domain/providers"
	"github.com/zatekoja/wardtracker/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/wardtracker/pkg/config"
	apperrors "github.com/zatekoja/wardtracker/pkg/errors"
)

type seedPatient struct {
	mrn       string
	name      string
	age       int
	gender    entities.Gender
	diagnosis string
	specialty entities.Specialty
	doctor    string
	daysAgo   int
	notes     []string
	discharge string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	if err := database.EnsureSchema(ctx, pgClient); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE medical_notes, patients RESTART IDENTITY CASCADE`); err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
	}

	fanout, closeMirror, err := mirror.Connect(ctx, cfg, nil)
	if err != nil {
		log.Printf("Mirror degraded, seeding the reachable backends only: %v", err)
	}
	defer func() { _ = closeMirror(ctx) }()

	var recordMirror providers.RecordMirror
	if fanout != nil {
		recordMirror = fanout
	}

	replicator := services.NewMirrorReplicator(recordMirror, nil, cfg.Mirror.Timeout)
	svc := services.NewRecordService(
		database.NewPatientAdapter(pgClient, nil),
		database.NewMedicalNoteAdapter(pgClient, nil),
		replicator,
	)

	now := time.Now()
	for _, sp := range seedPatients() {
		age := sp.age
		admitted := now.AddDate(0, 0, -sp.daysAgo).Truncate(time.Hour)
		_, err := svc.AdmitPatient(ctx, &entities.NewPatient{
			MRN:            sp.mrn,
			Name:           sp.name,
			Age:            &age,
			Gender:         sp.gender,
			Diagnosis:      sp.diagnosis,
			AdmissionDate:  entities.At(admitted),
			Specialty:      sp.specialty,
			AssignedDoctor: sp.doctor,
		})
		if apperrors.IsConflict(err) {
			log.Printf("Patient %s already present, skipping", sp.mrn)
			continue
		}
		if err != nil {
			log.Printf("Failed to admit %s: %v", sp.mrn, err)
			continue
		}

		for i, text := range sp.notes {
			_, err := svc.AddNote(ctx, &entities.NewMedicalNote{
				PatientMRN: sp.mrn,
				Date:       entities.At(admitted.Add(time.Duration(i+1) * 6 * time.Hour)),
				Note:       text,
				User:       sp.doctor,
			})
			if err != nil {
				log.Printf("Failed to add note for %s: %v", sp.mrn, err)
			}
		}

		if sp.discharge != "" {
			if _, err := svc.DischargePatient(ctx, sp.mrn, &entities.DischargeRequest{DischargeNotes: sp.discharge}); err != nil {
				log.Printf("Failed to discharge %s: %v", sp.mrn, err)
			}
		}
	}

	replicator.Close()
	log.Println("Seeding completed successfully")
}

func seedPatients() []seedPatient {
	return []seedPatient{
		{
			mrn: "MRN-1001", name: "Amaka Obi", age: 34, gender: entities.GenderFemale,
			diagnosis: "Sickle cell crisis", specialty: entities.SpecialtyHematology, doctor: "Dr. Adeyemi", daysAgo: 3,
			notes: []string{"IV fluids and analgesia started", "Pain improving, tolerating oral intake"},
		},
		{
			mrn: "MRN-1002", name: "Tunde Bakare", age: 67, gender: entities.GenderMale,
			diagnosis: "Community acquired pneumonia", specialty: entities.SpecialtyPulmonology, doctor: "Dr. Okonkwo", daysAgo: 5,
			notes:     []string{"Started on IV ceftriaxone", "Afebrile for 48 hours"},
			discharge: "Complete oral antibiotics, review in clinic in two weeks",
		},
		{
			mrn: "MRN-1003", name: "Grace Eze", age: 45, gender: entities.GenderFemale,
			diagnosis: "Rheumatoid arthritis flare", specialty: entities.SpecialtyRheumatology, doctor: "Dr. Musa", daysAgo: 1,
			notes: []string{"Pulse methylprednisolone given"},
		},
		{
			mrn: "MRN-1004", name: "Ibrahim Sani", age: 29, gender: entities.GenderMale,
			diagnosis: "Severe malaria", specialty: entities.SpecialtyInfectiousDiseases, doctor: "Dr. Adeyemi", daysAgo: 4,
			notes:     []string{"IV artesunate commenced", "Parasite count cleared"},
			discharge: "Discharged home, complete oral ACT course",
		},
		{
			mrn: "MRN-1005", name: "Ngozi Nwosu", age: 58, gender: entities.GenderFemale,
			diagnosis: "Diabetic ketoacidosis", specialty: entities.SpecialtyEndocrinology, doctor: "Dr. Bello", daysAgo: 0,
			notes: []string{"Insulin infusion per DKA protocol"},
		},
		{
			mrn: "MRN-1006", name: "Chidi Okafor", age: 72, gender: entities.GenderMale,
			diagnosis: "Ischaemic stroke", specialty: entities.SpecialtyNeurology, doctor: "Dr. Musa", daysAgo: 2,
		},
		{
			mrn: "MRN-1007", name: "Sam Ade", age: 40, gender: entities.GenderOther,
			diagnosis: "Hypertensive urgency", specialty: entities.SpecialtyGeneralInternalMedicine, doctor: "Dr. Bello", daysAgo: 1,
			notes: []string{"Blood pressure controlled on oral agents"},
		},
	}
}
