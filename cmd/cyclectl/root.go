package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type globalFlags struct {
	batchStart string
	now        string
	timezone   string
	output     string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "cyclectl",
		Short:         "Inspect accountability cycles offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.batchStart, "batch-start", "", "batch start date (YYYY-MM-DD or RFC3339)")
	root.PersistentFlags().StringVar(&g.now, "now", "", "evaluation instant (defaults to the current time)")
	root.PersistentFlags().StringVar(&g.timezone, "tz", "UTC", "IANA timezone used to count calendar days")
	root.PersistentFlags().StringVarP(&g.output, "output", "o", "yaml", "output format: yaml or json")

	root.AddCommand(newStageCmd(g), newClassifyCmd(g), newTokenCmd(g))
	return root
}

func (g *globalFlags) location() (*time.Location, error) {
	loc, err := time.LoadLocation(g.timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid --tz %q: %w", g.timezone, err)
	}
	return loc, nil
}

func (g *globalFlags) instant(loc *time.Location) (time.Time, error) {
	if g.now == "" {
		return time.Now(), nil
	}
	return parseTime(g.now, loc)
}

func (g *globalFlags) start(loc *time.Location) (time.Time, error) {
	if g.batchStart == "" {
		return time.Time{}, fmt.Errorf("--batch-start is required")
	}
	return parseTime(g.batchStart, loc)
}

// parseTime reads a bare date as midnight in loc.
func parseTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, use YYYY-MM-DD or RFC3339", s)
	}
	return t, nil
}

func (g *globalFlags) render(w io.Writer, v any) error {
	switch g.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// Round-trip through JSON so the json tags on domain types name the
		// YAML keys too.
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	default:
		return fmt.Errorf("unknown --output %q", g.output)
	}
}
