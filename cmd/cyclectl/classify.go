package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/comitanigiacomo/kanso-accountability-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/classifier"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-accountability-engine/internal/core/services"
)

// habitFixture is the YAML shape of one habit in a --habits file.
type habitFixture struct {
	Name         string   `yaml:"name"`
	Domains      []string `yaml:"domains"`
	WeeklyTarget int      `yaml:"weekly_target"`
	SmartGoal    string   `yaml:"smart_goal"`
	MinimalDose  string   `yaml:"minimal_dose"`
	Status       string   `yaml:"status"`
}

type fixtureFile struct {
	Habits []habitFixture `yaml:"habits"`
}

func loadFixture(path string) (*fixtureFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Habits) == 0 {
		return nil, fmt.Errorf("%s defines no habits", path)
	}
	return &f, nil
}

func newClassifyCmd(g *globalFlags) *cobra.Command {
	var (
		habitsPath    string
		minConfidence float64
	)

	cmd := &cobra.Command{
		Use:   "classify [message text]",
		Short: "Run a message through the classifier against a YAML habit fixture",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := g.location()
			if err != nil {
				return err
			}
			start, err := g.start(loc)
			if err != nil {
				return err
			}
			now, err := g.instant(loc)
			if err != nil {
				return err
			}
			fixture, err := loadFixture(habitsPath)
			if err != nil {
				return err
			}

			ctx := context.Background()
			users := repository.NewInMemoryUserRepository()
			habits := repository.NewInMemoryHabitRepository()
			proofs := repository.NewInMemoryProofRepository()

			user, err := domain.NewUser("cli-user", "cli", g.timezone, start)
			if err != nil {
				return err
			}
			if err := users.Create(ctx, user); err != nil {
				return err
			}

			for i, hf := range fixture.Habits {
				h, err := domain.NewHabit(user.ID, hf.Name, hf.WeeklyTarget, hf.Domains, domain.HabitDetails{
					SmartGoal:   hf.SmartGoal,
					MinimalDose: hf.MinimalDose,
				})
				if err != nil {
					return fmt.Errorf("habit %d (%q): %w", i+1, hf.Name, err)
				}
				if hf.Status != "" {
					if err := h.TransitionTo(domain.HabitStatus(hf.Status)); err != nil {
						return fmt.Errorf("habit %d (%q): %w", i+1, hf.Name, err)
					}
				}
				// Fixture order decides creation order, which breaks confidence ties.
				h.CreatedAt = start.Add(-time.Duration(len(fixture.Habits)-i) * time.Second)
				if err := habits.Create(ctx, h); err != nil {
					return err
				}
			}

			svc := services.NewProofService(users, habits, proofs,
				classifier.New(classifier.WithMinConfidence(minConfidence)), nil, nil)

			res, err := svc.Ingest(ctx, domain.Message{
				ID:         "cli",
				SenderID:   user.ID,
				Channel:    "cli",
				Text:       strings.Join(args, " "),
				ReceivedAt: now,
			})
			if err != nil {
				return err
			}
			return g.render(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&habitsPath, "habits", "habits.yaml", "YAML file listing the user's habits")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", classifier.DefaultMinConfidence, "confidence below which a message is not a proof")
	return cmd
}
