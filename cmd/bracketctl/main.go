package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/AdamBeresnev/bracket-master/internal/config"
	"github.com/AdamBeresnev/bracket-master/internal/db"
	"github.com/AdamBeresnev/bracket-master/internal/presets"
	"github.com/AdamBeresnev/bracket-master/internal/service"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "bracketctl",
		Usage: "offline tools for the bracket master server",
		Commands: []*cli.Command{
			newSimulateCommand(),
			newTemplateCommand(),
			newImportCommand(),
			newPresetsCommand(),
			newMigrateCommand(),
		},
	}
}

func newSimulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "play a whole tournament with random scores and print the podium",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "players", Aliases: []string{"n"}, Value: 8, Usage: "number of players"},
			&cli.StringFlag{Name: "preset", Value: "champions", Usage: "preset id or name"},
			&cli.BoolFlag{Name: "groups", Usage: "play a group stage first"},
			&cli.Uint64Flag{Name: "seed", Value: 1, Usage: "random seed, the same seed replays the same tournament"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "print every result"},
		},
		Action: func(c *cli.Context) error {
			if c.Int("players") < 2 {
				return fmt.Errorf("need at least two players, got %d", c.Int("players"))
			}
			sim := simulation{
				Preset:  c.String("preset"),
				Players: c.Int("players"),
				Groups:  c.Bool("groups"),
				Seed:    c.Uint64("seed"),
				Names:   c.Args().Slice(),
			}
			if c.Bool("verbose") {
				sim.Progress = c.App.Writer
			}
			state, err := sim.run()
			if err != nil {
				return err
			}
			return printReport(c.App.Writer, state)
		},
	}
}

func newTemplateCommand() *cli.Command {
	return &cli.Command{
		Name:      "template",
		Usage:     "write an empty roster spreadsheet",
		ArgsUsage: "[file]",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				path = "players_template.xlsx"
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			if err := service.WriteTemplate(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Wrote roster template to %s\n", path)
			return nil
		},
	}
}

func newImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "check a roster file (.xlsx or plain text) and print the names it yields",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("missing roster file")
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			var names []string
			if strings.EqualFold(filepath.Ext(path), ".xlsx") {
				names, err = service.ParseXLSX(data)
			} else {
				names, err = service.ParseText(string(data))
			}
			if err != nil {
				return err
			}
			for i, name := range names {
				fmt.Fprintf(c.App.Writer, "%3d  %s\n", i+1, name)
			}
			return nil
		},
	}
}

func newPresetsCommand() *cli.Command {
	return &cli.Command{
		Name:  "presets",
		Usage: "list the built-in tournament presets",
		Action: func(c *cli.Context) error {
			all, err := presets.All()
			if err != nil {
				return err
			}
			for _, p := range all {
				fmt.Fprintf(c.App.Writer, "%-10s %-20s %d teams\n", p.ID, p.Name, len(p.Teams))
			}
			return nil
		},
	}
}

func newMigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply database migrations to the configured database",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			slog.SetDefault(cfg.NewLogger(c.App.ErrWriter))

			database, err := db.Open(cfg.DatabasePath)
			if err != nil {
				return err
			}
			return database.Close()
		},
	}
}
