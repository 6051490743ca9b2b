package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zatekoja/wardtracker/internal/client"
)

// app carries the settings resolved from flags and WARD_* environment
// variables, plus the ward client built from them.
type app struct {
	v    *viper.Viper
	ward *client.Ward
	loc  *time.Location
}

func main() {
	if err := newRootCmd(&app{v: viper.New()}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "wardctl",
		Short:         "Ward patient tracker client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("api-url", "http://localhost:5000", "Base URL of the ward API")
	flags.Duration("timeout", 10*time.Second, "Per-request timeout")
	flags.String("timezone", "Local", "IANA time zone used for calendar days")
	flags.Bool("json", false, "Print raw JSON instead of tables")

	a.v.SetEnvPrefix("WARD")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	_ = a.v.BindPFlags(flags)

	rootCmd.AddCommand(patientsCmd(a))
	rootCmd.AddCommand(notesCmd(a))
	rootCmd.AddCommand(specialtiesCmd(a))
	rootCmd.AddCommand(reportCmd(a))
	rootCmd.AddCommand(extractCmd(a))
	return rootCmd
}

func (a *app) init() error {
	loc, err := time.LoadLocation(a.v.GetString("timezone"))
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", a.v.GetString("timezone"), err)
	}
	a.loc = loc

	api := client.NewAPIClient(a.v.GetString("api-url"), a.v.GetDuration("timeout"))
	a.ward = client.NewWard(api, client.NewWardStore())
	return nil
}

func (a *app) jsonOutput() bool {
	return a.v.GetBool("json")
}

// day resolves a --day flag, defaulting to today in the configured zone
func (a *app) day(value string) (time.Time, error) {
	if value == "" {
		now := time.Now().In(a.loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.loc), nil
	}
	return parseDay(value, a.loc)
}

func (a *app) refresh(ctx context.Context) error {
	return a.ward.Refresh(ctx)
}
