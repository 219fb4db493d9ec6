package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	appcli "rentledger/internal/cli"
	"rentledger/internal/config"
	"rentledger/internal/core"
	applog "rentledger/internal/log"
	"rentledger/internal/report"
	"rentledger/internal/services"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "rentledger-report:", err)
		os.Exit(1)
	}
}

type session struct {
	svc     *services.LedgerService
	cleanup func() error
}

const sessionKey = "session"

func newApp(stdout io.Writer) *cli.App {
	return &cli.App{
		Name:      "rentledger-report",
		Usage:     "settle, summarize and maintain rent ledgers from the command line",
		Writer:    stdout,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Usage: "dotenv file to load before reading configuration"},
		},
		Before: openSession,
		After:  closeSession,
		Commands: []*cli.Command{
			{
				Name:  "settle",
				Usage: "net what two parties owe each other for one month",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "party-a", Required: true},
					&cli.StringFlag{Name: "party-b", Required: true},
					&cli.IntFlag{Name: "year", Value: time.Now().Year()},
					&cli.IntFlag{Name: "month", Value: int(time.Now().Month())},
					&cli.StringFlag{Name: "fee", Usage: "service fee borne by party B"},
					&cli.StringFlag{Name: "xlsx", Usage: "also write the workbook to this path"},
				},
				Action: settle,
			},
			{
				Name:  "summary",
				Usage: "total one person's rents as landlord and tenant",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "person", Required: true},
					&cli.StringFlag{Name: "xlsx", Usage: "also write the workbook to this path"},
				},
				Action: summary,
			},
			{
				Name:  "shift-month",
				Usage: "copy one month of a ledger to the next month",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "ledger", Value: string(core.MainLedger)},
					&cli.IntFlag{Name: "year", Required: true},
					&cli.IntFlag{Name: "month", Required: true},
				},
				Action: shiftMonth,
			},
			{
				Name:  "participants",
				Usage: "list everyone a settlement can be run for",
				Action: func(c *cli.Context) error {
					for _, name := range sessionFrom(c).svc.Participants() {
						fmt.Fprintln(c.App.Writer, name)
					}
					return nil
				},
			},
		},
	}
}

func openSession(c *cli.Context) error {
	if f := c.String("env-file"); f != "" {
		appcli.LoadEnvFile(f)
	} else {
		appcli.LoadEnvFile()
	}

	cfg, err := appcli.LoadAndValidateConfig((*config.Config).Validate)
	if err != nil {
		return err
	}
	logger := appcli.SetupLogger(cfg, applog.ComponentCLI, c.App.ErrWriter)

	res, err := appcli.OpenBackend(c.Context, logger, cfg)
	if err != nil {
		return err
	}
	var publisher services.SyncPublisher
	if res.Publisher != nil {
		publisher = res.Publisher
	}
	svc := services.NewLedgerService(res.Store, publisher)
	if err := svc.Load(c.Context); err != nil {
		_ = res.Cleanup()
		return err
	}
	c.App.Metadata = map[string]any{sessionKey: &session{svc: svc, cleanup: res.Cleanup}}
	return nil
}

func closeSession(c *cli.Context) error {
	if s, ok := c.App.Metadata[sessionKey].(*session); ok {
		return s.cleanup()
	}
	return nil
}

func sessionFrom(c *cli.Context) *session {
	return c.App.Metadata[sessionKey].(*session)
}

func settle(c *cli.Context) error {
	fee, err := core.ParseFee(c.String("fee"))
	if err != nil {
		return err
	}
	rep, err := sessionFrom(c).svc.Settle(c.String("party-a"), c.String("party-b"), c.Int("year"), c.Int("month"), fee)
	if err != nil {
		return err
	}
	fmt.Fprint(c.App.Writer, report.SettlementText(rep))

	if path := c.String("xlsx"); path != "" {
		return writeFile(path, func(w io.Writer) error {
			return report.WriteSettlementWorkbook(w, rep, time.Now())
		})
	}
	return nil
}

func summary(c *cli.Context) error {
	sum := sessionFrom(c).svc.Summarize(c.String("person"))
	fmt.Fprint(c.App.Writer, report.SummaryText(sum))

	if path := c.String("xlsx"); path != "" {
		return writeFile(path, func(w io.Writer) error {
			return report.WriteSummaryWorkbook(w, sum)
		})
	}
	return nil
}

func shiftMonth(c *cli.Context) error {
	kind := core.LedgerKind(strings.ToLower(c.String("ledger")))
	n, err := sessionFrom(c).svc.ShiftMonth(c.Context, kind, c.Int("year"), c.Int("month"))
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintf(c.App.Writer, "%04d/%02d 沒有可複製的資料\n", c.Int("year"), c.Int("month"))
		return nil
	}
	fmt.Fprintf(c.App.Writer, "已複製 %d 天的資料到下個月\n", n)
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
