package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/app/services"
	"github.com/yigit/gradebook/internal/bootstrap"
	"github.com/yigit/gradebook/internal/config"
	"github.com/yigit/gradebook/internal/db"
	"github.com/yigit/gradebook/internal/server"
)

// session is an open transcript and the storage behind it
type session struct {
	storage *bootstrap.Storage
	service services.TranscriptService
}

func (s *session) Close() {
	if s.storage != nil {
		s.storage.Close()
	}
}

// loadConfig reads the config file and applies the global flag overrides
func loadConfig(c *cli.Context) (*config.Config, zerolog.Logger, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(c.String("config"))
	if err != nil {
		return nil, lgr, err
	}

	if c.IsSet("transcript") {
		cfg.Storage.Driver = config.StorageCSV
		cfg.Storage.CSVPath = c.String("transcript")
	}
	if c.IsSet("policy") {
		cfg.Grading.UnmappedGradePolicy = c.String("policy")
	}
	return cfg, lgr, nil
}

// openSession loads the transcript. allowMissing lets insert create a new CSV.
func openSession(c *cli.Context, allowMissing bool) (*session, error) {
	cfg, lgr, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	storage, err := bootstrap.SetupStorage(c.Context, cfg, lgr, allowMissing)
	if err != nil {
		return nil, err
	}

	svc, err := bootstrap.BuildTranscriptService(c.Context, cfg, storage.Repo, lgr)
	if err != nil {
		storage.Close()
		return nil, err
	}

	return &session{storage: storage, service: svc}, nil
}

func insertCommand() *cli.Command {
	return &cli.Command{
		Name:  "insert",
		Usage: "append a grade record and save",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Required: true, Usage: "subject code and name, at least 12 characters"},
			&cli.StringFlag{Name: "year", Required: true, Usage: "academic year, 4 digits"},
			&cli.StringFlag{Name: "semester", Required: true, Usage: "semester, 1 digit"},
			&cli.StringFlag{Name: "credit", Required: true, Usage: "credit, 1 digit"},
			&cli.StringFlag{Name: "section", Required: true, Usage: "section, 1 to 3 digits"},
			&cli.StringFlag{Name: "grade", Required: true, Usage: "A, B+, B, C+, C, D+, D or F"},
		},
		Action: func(c *cli.Context) error {
			s, err := openSession(c, true)
			if err != nil {
				return err
			}
			defer s.Close()

			record, err := s.service.Insert(c.Context, models.GradeRecord{
				Subject:  c.String("subject"),
				Year:     c.String("year"),
				Semester: c.String("semester"),
				Credit:   c.String("credit"),
				Section:  c.String("section"),
				Grade:    models.Grade(c.String("grade")),
			})
			if err != nil {
				return err
			}

			if err := s.service.Save(c.Context); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Inserted %s (%s)\n", record.Subject, record.ID)
			return nil
		},
	}
}

func editCommand() *cli.Command {
	return &cli.Command{
		Name:  "edit",
		Usage: "change one field of a record (--id or --index) or of every record of a subject (--subject) and save",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "id", Usage: "record ID as shown by list"},
			&cli.IntFlag{Name: "index", Usage: "record number (#) as shown by list"},
			&cli.StringFlag{Name: "subject", Usage: "edit every record with this subject"},
			&cli.StringFlag{Name: "field", Required: true, Usage: "Subject, Year, Semester, Credit, Section or Grade"},
			&cli.StringFlag{Name: "value", Required: true, Usage: "new value"},
		},
		Action: func(c *cli.Context) error {
			targets := 0
			for _, name := range []string{"id", "index", "subject"} {
				if c.IsSet(name) {
					targets++
				}
			}
			if targets != 1 {
				return cli.Exit("exactly one of --id, --index or --subject is required", 2)
			}

			field, ok := models.ParseRecordField(c.String("field"))
			if !ok {
				return cli.Exit(fmt.Sprintf("unknown field %q", c.String("field")), 2)
			}

			s, err := openSession(c, false)
			if err != nil {
				return err
			}
			defer s.Close()

			if c.IsSet("id") || c.IsSet("index") {
				id, err := editTarget(c, s.service.Records(c.Context))
				if err != nil {
					return err
				}
				record, err := s.service.EditByID(c.Context, id, field, c.String("value"))
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "Updated %s: %s = %s\n", record.Subject, field, record.Get(field))
			} else {
				n, err := s.service.EditBySubject(c.Context, c.String("subject"), field, c.String("value"))
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "Updated %d record(s) of %s\n", n, c.String("subject"))
			}

			return s.service.Save(c.Context)
		},
	}
}

// editTarget resolves --id or --index to a record ID
func editTarget(c *cli.Context, records []models.GradeRecord) (uuid.UUID, error) {
	if c.IsSet("id") {
		id, err := uuid.Parse(c.String("id"))
		if err != nil {
			return uuid.Nil, cli.Exit(fmt.Sprintf("invalid record ID %q", c.String("id")), 2)
		}
		return id, nil
	}

	index := c.Int("index")
	if index < 1 || index > len(records) {
		return uuid.Nil, cli.Exit(fmt.Sprintf("record number %d out of range 1..%d", index, len(records)), 2)
	}
	return records[index-1].ID, nil
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "show every record with its ID",
		Action: func(c *cli.Context) error {
			s, err := openSession(c, false)
			if err != nil {
				return err
			}
			defer s.Close()

			renderRecords(c.App.Writer, s.service.Records(c.Context))
			return nil
		},
	}
}

func termsCommand() *cli.Command {
	return &cli.Command{
		Name:  "terms",
		Usage: "list the terms present in the transcript",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "sorted", Usage: "chronological order instead of first appearance"},
		},
		Action: func(c *cli.Context) error {
			s, err := openSession(c, false)
			if err != nil {
				return err
			}
			defer s.Close()

			terms := s.service.Terms(c.Context)
			if c.Bool("sorted") {
				terms = s.service.SortedTerms(c.Context)
			}
			renderTerms(c.App.Writer, terms)
			return nil
		},
	}
}

func viewCommand() *cli.Command {
	return &cli.Command{
		Name:      "view",
		Usage:     "show the grade report for a term",
		ArgsUsage: `"YEAR SEMESTER"`,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "term", Usage: `term as "2023 1", "2023/1" or "2023-1"`},
		},
		Action: func(c *cli.Context) error {
			raw := c.String("term")
			if raw == "" {
				raw = c.Args().First()
			}
			term, err := models.ParseTerm(raw)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}

			s, err := openSession(c, false)
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := s.service.Report(c.Context, term.Year, term.Semester)
			if err != nil {
				return err
			}
			renderReport(c.App.Writer, report)
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the transcript over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Usage: "override server.port"},
		},
		Action: func(c *cli.Context) error {
			cfg, lgr, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.IsSet("port") {
				cfg.Server.Port = c.String("port")
			}

			srv, err := server.NewServer(c.Context, cfg, lgr)
			if err != nil {
				return err
			}
			return srv.Run()
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "mint a bearer token for the mutating API routes",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "owner", Value: "owner", Usage: "token subject"},
		},
		Action: func(c *cli.Context) error {
			cfg, _, err := loadConfig(c)
			if err != nil {
				return err
			}

			jwtService, err := bootstrap.NewJWTService(cfg)
			if err != nil {
				return err
			}

			token, expiresAt, err := jwtService.GenerateToken(c.String("owner"))
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, token)
			fmt.Fprintf(c.App.ErrWriter, "expires %s\n", expiresAt.Format("2006-01-02 15:04:05 MST"))
			return nil
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply pending database migrations",
		Action: func(c *cli.Context) error {
			cfg, lgr, err := loadConfig(c)
			if err != nil {
				return err
			}

			database, err := db.NewPostgresDB(c.Context, cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			applied, err := bootstrap.RunMigrations(c.Context, cfg, database, lgr)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "Applied %d migration(s)\n", applied)
			return nil
		},
	}
}
