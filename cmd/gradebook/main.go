package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yigit/gradebook/internal/pkg/logger"
)

// @title Gradebook API
// @version 1.0
// @description Personal transcript GPA and GPAX reports
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "gradebook",
		Usage: "keep a transcript and compute term GPA and cumulative GPAX",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "configs/config.yaml",
				Usage:   "path to the YAML config file",
				EnvVars: []string{"GRADEBOOK_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "transcript",
				Aliases: []string{"t"},
				Usage:   "transcript CSV file, overrides storage settings",
			},
			&cli.StringFlag{
				Name:  "policy",
				Usage: "unmapped grade policy: abort, zero or exclude",
			},
		},
		Commands: []*cli.Command{
			insertCommand(),
			editCommand(),
			listCommand(),
			termsCommand(),
			viewCommand(),
			serveCommand(),
			tokenCommand(),
			migrateCommand(),
		},
	}
}
