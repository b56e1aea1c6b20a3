package main

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/signalsfoundry/festival-simulator/internal/config"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [scenario.yaml]",
		Short: "Check a scenario file without running it",
		Long:  "Parses and validates a scenario. With no argument the embedded default scenario is checked.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			s, err := config.LoadScenario(path)
			if err != nil {
				return err
			}
			describeScenario(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func describeScenario(w io.Writer, s *config.Scenario) {
	p := message.NewPrinter(language.English)
	p.Fprintf(w, "scenario %q is valid\n", s.Name)
	p.Fprintf(w, "  window:       %s to %s (%v)\n", s.Start.Format("2006-01-02 15:04 MST"), s.End.Format("2006-01-02 15:04 MST"), s.Duration())
	p.Fprintf(w, "  capacity:     %d (fire code %d)\n", s.Venue.Capacity, s.Venue.FireCodeLimit)
	p.Fprintf(w, "  budget:       %.2f across %d categories\n", s.Budget.Total, len(s.Budget.Categories))
	p.Fprintf(w, "  performances: %d\n", len(s.Performances))
	p.Fprintf(w, "  documents:    %d\n", len(s.Documents))
	p.Fprintf(w, "  staff:        %d (%d guards)\n", s.Staff.Total, s.Staff.Guards)
}
