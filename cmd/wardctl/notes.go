package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zatekoja/wardtracker/internal/domain/entities"
)

func notesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Read and write medical notes",
	}

	listCmd := &cobra.Command{
		Use:   "list MRN",
		Short: "List a patient's notes, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			notes, err := a.ward.API().ListNotes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), notes)
			}
			return printNotes(cmd.OutOrStdout(), notes, a.loc)
		},
	}

	addCmd := &cobra.Command{
		Use:   "add MRN",
		Short: "Add a note to a patient's record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, _ := cmd.Flags().GetString("note")
			user, _ := cmd.Flags().GetString("user")
			dateFlag, _ := cmd.Flags().GetString("date")
			at, err := parseTime(dateFlag, a.loc)
			if err != nil {
				return err
			}

			note, err := a.ward.API().AddNote(cmd.Context(), &entities.NewMedicalNote{
				PatientMRN: args[0],
				Date:       entities.At(at),
				Note:       text,
				User:       user,
			})
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), note)
			}
			return printNotes(cmd.OutOrStdout(), []*entities.MedicalNote{note}, a.loc)
		},
	}
	addCmd.Flags().String("note", "", "Note text")
	addCmd.Flags().String("user", "", "Author of the note")
	addCmd.Flags().String("date", "", "Time of the note (defaults to now)")
	_ = addCmd.MarkFlagRequired("note")
	_ = addCmd.MarkFlagRequired("user")

	cmd.AddCommand(listCmd, addCmd)
	return cmd
}

func specialtiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "specialties",
		Short: "List the specialties in use on the ward",
		RunE: func(cmd *cobra.Command, args []string) error {
			specialties, err := a.ward.API().ListSpecialties(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), specialties)
			}
			for _, s := range specialties {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}
