package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mr1hm/go-rescue-network/internal/crisis"
	"github.com/mr1hm/go-rescue-network/internal/expiry"
	"github.com/mr1hm/go-rescue-network/internal/fixtures"
	"github.com/mr1hm/go-rescue-network/internal/logging"
)

func newRootCmd(now func() time.Time) *cobra.Command {
	root := &cobra.Command{
		Use:           "rescuectl",
		Short:         "Inspect rescue network data from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newClassifyCmd(now), newFixturesCmd(now))
	return root
}

func newClassifyCmd(now func() time.Time) *cobra.Command {
	var expiryFlag, nowFlag string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify an expiry timestamp into an urgency tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := expiry.ParseExpiry(expiryFlag)
			if err != nil {
				return err
			}
			at := now()
			if nowFlag != "" {
				if at, err = expiry.ParseExpiry(nowFlag); err != nil {
					return err
				}
			}

			r := expiry.Classify(exp, at)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r.Tier, r.Label)
			return nil
		},
	}
	cmd.Flags().StringVar(&expiryFlag, "expiry", "", "expiry timestamp (RFC 3339 or YYYY-MM-DD[THH:MM[:SS]])")
	cmd.Flags().StringVar(&nowFlag, "now", "", "reference time, defaults to the current time")
	_ = cmd.MarkFlagRequired("expiry")
	return cmd
}

func newFixturesCmd(now func() time.Time) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Summarize a seed file, or the built-in seed",
		RunE: func(cmd *cobra.Command, args []string) error {
			at := now()
			var (
				seed *fixtures.Seed
				err  error
			)
			if path != "" {
				seed, err = fixtures.LoadFile(path, at)
			} else {
				seed, err = fixtures.Default(at)
			}
			if err != nil {
				return err
			}
			printSeed(cmd.OutOrStdout(), seed, at)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "seed YAML file")
	return cmd
}

func printSeed(w io.Writer, seed *fixtures.Seed, now time.Time) {
	fmt.Fprintf(w, "donors: %d  ngos: %d  vehicles: %d  route stops: %d\n",
		len(seed.Donors), len(seed.NGOs), len(seed.Vehicles), len(seed.RouteStops))

	for _, d := range seed.Donors {
		fmt.Fprintf(w, "\n%s (%s)\n", d.Name, d.ID)
		for _, item := range d.Items {
			r := expiry.Classify(item.Expiry, now)
			fmt.Fprintf(w, "  %-24s %4d kg  %-8s %s\n", item.Name, item.Quantity, r.Tier, r.Label)
		}
	}

	fmt.Fprintf(w, "\nopen crises: %d\n", len(seed.Crises))
	for _, c := range crisis.SortBySeverity(seed.Crises) {
		fmt.Fprintf(w, "  [%s] %s: %s\n", c.Severity, c.ID, c.Title)
	}
}

func main() {
	_ = godotenv.Load()
	logging.Setup(os.Getenv("LOG_LEVEL"))

	if err := newRootCmd(time.Now).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
