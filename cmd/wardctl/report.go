package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zatekoja/wardtracker/internal/reports"
)

func reportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Daily ward reports",
	}

	dailyCmd := &cobra.Command{
		Use:   "daily",
		Short: "Admissions, active and discharged patients for one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			dayFlag, _ := cmd.Flags().GetString("day")
			day, err := a.day(dayFlag)
			if err != nil {
				return err
			}
			view, _ := cmd.Flags().GetString("view")
			mode := reports.ViewMode(view)
			if mode != reports.ViewBySpecialty && mode != reports.ViewByDay {
				return fmt.Errorf("invalid view %q, want %q or %q", view, reports.ViewBySpecialty, reports.ViewByDay)
			}

			if err := a.refresh(cmd.Context()); err != nil {
				return err
			}
			specialties, err := a.ward.API().ListSpecialties(cmd.Context())
			if err != nil {
				return err
			}

			report := reports.BuildDailyReport(a.ward.Store().Snapshot(), specialties, day, a.loc)
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), report)
			}
			return reports.RenderDailyReport(cmd.OutOrStdout(), report, mode)
		},
	}
	dailyCmd.Flags().String("day", "", "Calendar day YYYY-MM-DD (defaults to today)")
	dailyCmd.Flags().String("view", string(reports.ViewBySpecialty), "Layout: specialty or day")

	dischargesCmd := &cobra.Command{
		Use:   "discharges",
		Short: "Patients discharged on one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			dayFlag, _ := cmd.Flags().GetString("day")
			day, err := a.day(dayFlag)
			if err != nil {
				return err
			}
			if err := a.refresh(cmd.Context()); err != nil {
				return err
			}
			patients := a.ward.Store().Snapshot()
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), reports.DischargedOn(patients, day, a.loc))
			}
			return reports.RenderDischarges(cmd.OutOrStdout(), patients, day, a.loc)
		},
	}
	dischargesCmd.Flags().String("day", "", "Calendar day YYYY-MM-DD (defaults to today)")

	cmd.AddCommand(dailyCmd, dischargesCmd)
	return cmd
}

func extractCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Patients admitted in a date range, with their notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			fromFlag, _ := cmd.Flags().GetString("from")
			toFlag, _ := cmd.Flags().GetString("to")
			from, err := parseDay(fromFlag, a.loc)
			if err != nil {
				return err
			}
			to, err := parseDay(toFlag, a.loc)
			if err != nil {
				return err
			}
			if to.Before(from) {
				return fmt.Errorf("--to %s is before --from %s", toFlag, fromFlag)
			}

			if err := a.refresh(cmd.Context()); err != nil {
				return err
			}
			extracted, err := reports.Extract(cmd.Context(), a.ward.Store().Snapshot(), from, to, a.loc, a.ward.API())
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return printJSON(cmd.OutOrStdout(), extracted)
			}
			return reports.RenderExtract(cmd.OutOrStdout(), extracted, from, to, a.loc)
		},
	}
	cmd.Flags().String("from", "", "First admission day YYYY-MM-DD")
	cmd.Flags().String("to", "", "Last admission day YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
