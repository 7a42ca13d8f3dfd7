package main

import (
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/talgya/device-tycoon/internal/calendar"
	"github.com/talgya/device-tycoon/internal/persistence"
)

func newSlotsCmd(configPath *string) *cobra.Command {
	slots := &cobra.Command{
		Use:   "slots",
		Short: "List saved games",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := persistence.OpenStore(cmd.Context(), cfg.Storage.Driver, cfg.StorageTarget())
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				color.Yellow("No saved games.")
				return nil
			}
			table := tablewriter.NewTable(os.Stdout,
				tablewriter.WithHeader([]string{"ID", "Name", "Date", "Cash", "Saved"}),
			)
			for _, s := range list {
				table.Append([]string{
					s.ID,
					s.Name,
					calendar.FormatDay(max(s.Day, 1)),
					"$" + humanize.Comma(s.Cash),
					humanize.Time(s.UpdatedAt),
				})
			}
			return table.Render()
		},
	}
	slots.AddCommand(newSlotsDeleteCmd(configPath))
	return slots
}

func newSlotsDeleteCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a saved game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			store, err := persistence.OpenStore(cmd.Context(), cfg.Storage.Driver, cfg.StorageTarget())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			color.Green("Deleted %s.", args[0])
			return nil
		},
	}
}
