package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"pet-vaccination-tracker/internal/app"
	"pet-vaccination-tracker/internal/domain/reminders"
	"pet-vaccination-tracker/internal/domain/vaccinations"
	"pet-vaccination-tracker/internal/platform/config"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	now        string
	seed       bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "clinicctl",
		Short:         "Pet vaccination tracker: catalog, due dashboard, reminder scans",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to TOML config file (defaults to $CONFIG_FILE)")
	root.PersistentFlags().StringVar(&flags.now, "now", "", "pin today's date (YYYY-MM-DD)")
	root.PersistentFlags().BoolVar(&flags.seed, "seed", false, "seed sample data when the registry is empty")

	root.AddCommand(
		newCatalogCmd(),
		newDueCmd(flags),
		newScanCmd(flags),
		newHistoryCmd(flags),
		newWhatsAppCmd(flags),
		newServeCmd(flags),
	)
	return root
}

// openApp carga la config y arma el proceso con las flags globales aplicadas.
func openApp(cmd *cobra.Command, flags *rootFlags) (*app.App, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.seed {
		cfg.SeedSampleData = true
	}

	var opts []app.Option
	if flags.now != "" {
		day, err := vaccinations.ParseDate(flags.now)
		if err != nil {
			return nil, fmt.Errorf("--now: %w", err)
		}
		opts = append(opts, app.WithClock(func() time.Time { return day }))
	}

	return app.New(cmd.Context(), cfg, app.NewLogger(cfg, cmd.ErrOrStderr()), opts...)
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List vaccination types and their intervals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tINTERVAL\tLABEL\tDAYS")
			for _, tc := range vaccinations.Catalog() {
				for _, iv := range tc.Intervals {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", tc.Type, iv.ID, iv.Label, iv.Days)
				}
			}
			return tw.Flush()
		},
	}
}

func newDueCmd(flags *rootFlags) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "due",
		Short: "Show vaccinations due within the next N days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 0 || days > 366 {
				return fmt.Errorf("--days must be between 0 and 366")
			}
			a, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			items := a.Clinic.VaccinationsDueWithin(days)
			if len(items) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "nothing due in the next %d days\n", days)
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DUE\tDAYS\tSTATUS\tPET\tTYPE\tOWNER\tPHONE")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
					vaccinations.FormatDate(it.Vaccination.NextDueDate), it.DaysUntil, it.Status,
					it.PetName, it.Vaccination.Type, it.OwnerName, it.OwnerPhone)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "window in days (0-366)")
	return cmd
}

func newScanCmd(flags *rootFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one reminder scan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if dryRun {
				sel := a.Scanner.Preview()
				for _, c := range sel.Due {
					fmt.Fprintf(out, "would remind %s (%s) about %s on %s\n",
						c.Owner.Name, c.Owner.Phone, c.Vaccination.Type, vaccinations.FormatDate(c.Vaccination.NextDueDate))
				}
				for _, s := range sel.Skipped {
					fmt.Fprintf(out, "would skip %s: %s\n", s.VaccinationID, s.Reason)
				}
				fmt.Fprintf(out, "selected=%d skipped=%d\n", len(sel.Due), len(sel.Skipped))
				return nil
			}

			res, err := a.Scanner.Scan(cmd.Context())
			if err != nil {
				return err
			}
			if res.Locked {
				fmt.Fprintln(out, "another process holds the scan lock, nothing done")
				return nil
			}
			fmt.Fprintf(out, "scan %s: selected=%d sent=%d failed=%d skipped=%d (%s)\n",
				res.ScanID, res.Selected, res.Sent, res.Failed, res.Skipped, res.Duration.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only list what would be sent")
	return cmd
}

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var (
		limit    int
		outcomes []string
	)

	cmd := &cobra.Command{
		Use:   "history PET_ID",
		Short: "Show the reminder attempt log of a pet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := reminders.ListFilter{Limit: limit}
			for _, o := range outcomes {
				oc := reminders.Outcome(strings.ToLower(strings.TrimSpace(o)))
				switch oc {
				case reminders.OutcomeSent, reminders.OutcomeFailed, reminders.OutcomeSkipped:
					f.Outcomes = append(f.Outcomes, oc)
				default:
					return fmt.Errorf("invalid outcome %q", o)
				}
			}

			a, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.Scanner.History(cmd.Context(), args[0], f)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "AT\tOUTCOME\tCHANNEL\tVACCINATION\tREASON")
			for _, at := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					at.AttemptedAt.UTC().Format(time.RFC3339), at.Outcome, at.Channel, at.VaccinationID, at.Reason)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", reminders.DefaultListLimit, "max attempts to show")
	cmd.Flags().StringSliceVar(&outcomes, "outcome", nil, "filter by outcome (sent,failed,skipped)")
	return cmd
}

func newWhatsAppCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whatsapp PET_ID VACCINATION_ID",
		Short: "Print the reminder message and its WhatsApp link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			rem, err := a.Scanner.ReminderFor(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rem.Message)
			fmt.Fprintln(cmd.OutOrStdout(), rem.WhatsAppLink)
			return nil
		},
	}
}

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the reminder loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr != "" {
				a.Config.Addr = addr
			}
			return a.Serve(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}
