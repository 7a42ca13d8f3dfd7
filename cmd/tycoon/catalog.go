package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/talgya/device-tycoon/internal/calendar"
	"github.com/talgya/device-tycoon/internal/era"
)

func newCalendarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calendar DAY...",
		Short: "Convert simulation day indices to dates",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"Day", "Date", "ISO"}),
			)
			for _, arg := range args {
				day, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("%q is not a day index", arg)
				}
				if err := calendar.ValidateDay(day); err != nil {
					return err
				}
				d := calendar.DayToDateParts(day)
				table.Append([]string{arg, calendar.Format(d), calendar.FormatISO(d)})
			}
			return table.Render()
		},
	}
}

func newEventsCmd(configPath *string) *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List the scripted era events",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			catalog := era.DefaultCatalog()
			if cfg.Catalog.Path != "" {
				if catalog, err = era.LoadCatalog(cfg.Catalog.Path); err != nil {
					return err
				}
			}

			events := catalog.Events()
			if year != 0 {
				events = catalog.EventsInYear(year)
			}
			if len(events) == 0 {
				color.Yellow("No era events for %d.", year)
				return nil
			}

			color.New(color.FgCyan, color.Bold).Printf("%d era events\n", len(events))
			table := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"When", "ID", "Title", "Effects"}),
			)
			for _, e := range events {
				table.Append([]string{e.When(), e.ID, e.Title, describeEffects(e.Effects)})
			}
			return table.Render()
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "only events in this year")
	return cmd
}

func describeEffects(effects []era.Effect) string {
	parts := make([]string, 0, len(effects))
	for _, eff := range effects {
		switch eff.Type {
		case era.EffectCash:
			parts = append(parts, fmt.Sprintf("cash %+.0f", eff.Value))
		case era.EffectCompetitorMarketShare:
			target := eff.Target
			if target == "" {
				target = "all"
			}
			parts = append(parts, fmt.Sprintf("share %s %+.1f%%", target, eff.Value))
		default:
			parts = append(parts, string(eff.Type))
		}
	}
	return strings.Join(parts, ", ")
}
