package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/zatekoja/wardtracker/internal/domain/entities"
)

func patientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "List, admit, update and discharge patients",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.refresh(cmd.Context()); err != nil {
				return err
			}
			store := a.ward.Store()
			patients := store.Snapshot()
			if active, _ := cmd.Flags().GetBool("active"); active {
				patients = store.Active()
			}
			if specialty, _ := cmd.Flags().GetString("specialty"); specialty != "" {
				patients = store.BySpecialty()[entities.Specialty(specialty)]
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), patients)
			}
			return printPatients(cmd.OutOrStdout(), patients, a.loc)
		},
	}
	listCmd.Flags().Bool("active", false, "Only patients still on the ward")
	listCmd.Flags().String("specialty", "", "Only patients under this specialty")

	showCmd := &cobra.Command{
		Use:   "show MRN",
		Short: "Show one patient and their notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.refresh(cmd.Context()); err != nil {
				return err
			}
			patient, ok := a.ward.Store().Find(args[0])
			if !ok {
				return fmt.Errorf("patient %s not found", args[0])
			}
			notes, err := a.ward.API().ListNotes(cmd.Context(), patient.MRN)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"patient": patient, "notes": notes})
			}
			return printPatientDetail(cmd.OutOrStdout(), patient, notes, a.loc)
		},
	}

	admitCmd := &cobra.Command{
		Use:   "admit",
		Short: "Admit a new patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := admissionFromFlags(cmd, a)
			if err != nil {
				return err
			}
			patient, err := a.ward.Admit(cmd.Context(), input)
			if err != nil {
				return err
			}
			return a.printPatient(cmd.OutOrStdout(), patient, "Admitted")
		},
	}
	admitCmd.Flags().String("mrn", "", "Medical record number")
	admitCmd.Flags().String("name", "", "Patient name")
	admitCmd.Flags().Int("age", -1, "Age in years")
	admitCmd.Flags().String("gender", "", "Male, Female or Other")
	admitCmd.Flags().String("diagnosis", "", "Admitting diagnosis")
	admitCmd.Flags().String("specialty", "", "Ward specialty")
	admitCmd.Flags().String("doctor", "", "Assigned doctor")
	admitCmd.Flags().String("admitted", "", "Admission time (defaults to now)")

	updateCmd := &cobra.Command{
		Use:   "update MRN",
		Short: "Update a patient's details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patient, err := a.ward.Update(cmd.Context(), args[0], updateFromFlags(cmd))
			if err != nil {
				return err
			}
			return a.printPatient(cmd.OutOrStdout(), patient, "Updated")
		},
	}
	updateCmd.Flags().String("name", "", "Patient name")
	updateCmd.Flags().Int("age", 0, "Age in years")
	updateCmd.Flags().String("gender", "", "Male, Female or Other")
	updateCmd.Flags().String("diagnosis", "", "Diagnosis")
	updateCmd.Flags().String("specialty", "", "Ward specialty")
	updateCmd.Flags().String("doctor", "", "Assigned doctor")

	dischargeCmd := &cobra.Command{
		Use:   "discharge MRN",
		Short: "Discharge a patient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, _ := cmd.Flags().GetString("notes")
			patient, err := a.ward.Discharge(cmd.Context(), args[0], notes)
			if err != nil {
				return err
			}
			return a.printPatient(cmd.OutOrStdout(), patient, "Discharged")
		},
	}
	dischargeCmd.Flags().String("notes", "", "Discharge notes")
	_ = dischargeCmd.MarkFlagRequired("notes")

	cmd.AddCommand(listCmd, showCmd, admitCmd, updateCmd, dischargeCmd)
	return cmd
}

func (a *app) printPatient(w io.Writer, patient *entities.Patient, verb string) error {
	if a.jsonOutput() {
		return printJSON(w, patient)
	}
	fmt.Fprintf(w, "%s %s (MRN %s)\n", verb, patient.Name, patient.MRN)
	return nil
}

// admissionFromFlags leaves missing fields empty so the server reports them
func admissionFromFlags(cmd *cobra.Command, a *app) (*entities.NewPatient, error) {
	flags := cmd.Flags()
	input := &entities.NewPatient{}
	input.MRN, _ = flags.GetString("mrn")
	input.Name, _ = flags.GetString("name")
	if age, _ := flags.GetInt("age"); flags.Changed("age") {
		input.Age = &age
	}
	gender, _ := flags.GetString("gender")
	input.Gender = entities.Gender(gender)
	input.Diagnosis, _ = flags.GetString("diagnosis")
	specialty, _ := flags.GetString("specialty")
	input.Specialty = entities.Specialty(specialty)
	input.AssignedDoctor, _ = flags.GetString("doctor")

	admitted, _ := flags.GetString("admitted")
	at, err := parseTime(admitted, a.loc)
	if err != nil {
		return nil, err
	}
	input.AdmissionDate = entities.At(at)
	return input, nil
}

// updateFromFlags only sends the flags the caller set
func updateFromFlags(cmd *cobra.Command) *entities.PatientUpdate {
	flags := cmd.Flags()
	update := &entities.PatientUpdate{}
	if flags.Changed("name") {
		v, _ := flags.GetString("name")
		update.Name = &v
	}
	if flags.Changed("age") {
		v, _ := flags.GetInt("age")
		update.Age = &v
	}
	if flags.Changed("gender") {
		v, _ := flags.GetString("gender")
		g := entities.Gender(v)
		update.Gender = &g
	}
	if flags.Changed("diagnosis") {
		v, _ := flags.GetString("diagnosis")
		update.Diagnosis = &v
	}
	if flags.Changed("specialty") {
		v, _ := flags.GetString("specialty")
		s := entities.Specialty(v)
		update.Specialty = &s
	}
	if flags.Changed("doctor") {
		v, _ := flags.GetString("doctor")
		update.AssignedDoctor = &v
	}
	return update
}
