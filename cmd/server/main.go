package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "elimufund"
	app.Usage = "ElimuFund crowdfunding backend"
	app.Action = serve
	app.Commands = []*cli.Command{
		{
			Action:      serve,
			Name:        "serve",
			Usage:       "Start the HTTP API",
			Category:    "Api",
			Description: `Migrates the schema and serves the REST API on PORT.`,
		},
		{
			Action:      migrate,
			Name:        "migrate",
			Usage:       "Create or update database tables",
			Category:    "Database",
			Description: `Runs the schema migration and exits.`,
		},
		{
			Action:      seedAdmin,
			Name:        "seed-admin",
			Usage:       "Create the admin account",
			Category:    "Database",
			Description: `Creates the admin from ADMIN_EMAIL, ADMIN_USERNAME and ADMIN_PASSWORD unless that email already exists.`,
		},
		{
			Action:   reconcile,
			Name:     "reconcile",
			Usage:    "Compare amount_raised with the sum of donations",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "fix",
					Usage: "rewrite drifted amount_raised values",
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
