package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/scoring"
)

var labelsCmd = &cobra.Command{
	Use:   "labels [values...]",
	Short: "Show display labels for profile values",
	Long: `Labels formats stored snake_case values the way profile pages display
them, e.g. "multiple_per_week" becomes "Multiple Per Week". Without
arguments it lists every value in the built-in catalogue.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if len(args) > 0 {
			for _, v := range args {
				fmt.Fprintln(w, scoring.FormatLabel(v))
			}
			return nil
		}
		printCatalog(w, model.DefaultCatalog())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(labelsCmd)
}

func printCatalog(w io.Writer, c model.Catalog) {
	styles := newPrintStyles()
	sections := []struct {
		name    string
		options []model.Option
	}{
		{"skill_levels", c.SkillLevels},
		{"interests", c.Interests},
		{"match_goals", c.MatchGoals},
		{"personality_traits", c.PersonalityTraits},
		{"play_frequencies", c.PlayFrequencies},
		{"round_times", c.RoundTimes},
		{"pace_options", c.PaceOptions},
		{"swing_tendencies", c.SwingTendencies},
		{"group_preferences", c.GroupPreferences},
	}

	for i, s := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, styles.header.Render(scoring.FormatLabel(s.name)))
		for _, o := range s.options {
			fmt.Fprintf(w, "  %-22s %s\n", styles.dim.Render(o.Value), scoring.FormatLabel(o.Value))
		}
	}
}
