package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/scoring"
	"github.com/okian/fairway/internal/domain/types"
)

var scoreJSON bool

var scoreCmd = &cobra.Command{
	Use:   "score <self> <other>",
	Short: "Score how well one golfer profile matches another",
	Long: `Score reads two profile files (YAML or JSON), scores the second against
the first and prints the overall compatibility with its per-factor
breakdown. Factors that either golfer left blank are not compared.
A file without an id is named after the file, so attribute-only profiles
can be scored.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		self, err := readProfile(args[0])
		if err != nil {
			return err
		}
		other, err := readProfile(args[1])
		if err != nil {
			return err
		}

		c := scoring.Compute(&self, &other)
		if scoreJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(types.PairResult{
				SelfID:    self.ID,
				OtherID:   other.ID,
				Score:     c.Score,
				Breakdown: c.Top(0),
			})
		}
		printScore(cmd.OutOrStdout(), &self, &other, c)
		return nil
	},
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(scoreCmd)
}

func readProfile(path string) (model.Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Profile{}, fmt.Errorf("failed to open profile: %w", err)
	}
	defer f.Close()

	p, err := model.DecodeProfile(f)
	if err != nil {
		return model.Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	if p.ID == "" {
		p.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := p.Validate(); err != nil {
		return model.Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func printScore(w io.Writer, self, other *model.Profile, c scoring.Compatibility) {
	styles := newPrintStyles()

	fmt.Fprintln(w, styles.header.Render(fmt.Sprintf("%s → %s", displayName(self), displayName(other))))
	fmt.Fprintf(w, "%-18s %s %s\n", "Compatibility",
		styles.renderBar(c.Score), styles.forScore(c.Score).Render(fmt.Sprintf("%3d", c.Score)))
	fmt.Fprintln(w)

	for _, f := range scoring.Factors() {
		label := scoring.FactorLabel(f)
		v, ok := c.Breakdown[f]
		if !ok {
			fmt.Fprintf(w, "%-18s %s\n", label, styles.dim.Render("not compared"))
			continue
		}
		fmt.Fprintf(w, "%-18s %s %3d\n", label, styles.renderBar(v), v)
	}
}

func displayName(p *model.Profile) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.ID
}
