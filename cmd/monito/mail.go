package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"monito/internal/config"
	"monito/internal/connectors"
	gmailconnector "monito/internal/connectors/gmail"
	imapconnector "monito/internal/connectors/imap"
	"monito/internal/listener"
)

func makeConnector(ctx context.Context, cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(ctx, cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func providerFlag() cli.Flag {
	return &cli.StringFlag{Name: "provider", Value: "gmail", Usage: "Mail provider (gmail, imap)"}
}

func mailFetchCommand() *cli.Command {
	return &cli.Command{
		Name:  "mail:fetch",
		Usage: "Download new supplier emails into the raw mail store",
		Flags: []cli.Flag{
			providerFlag(),
			&cli.StringFlag{Name: "label", Value: "INBOX", Usage: "Mailbox or Gmail label"},
			&cli.IntFlag{Name: "max", Value: 50, Usage: "Maximum messages to fetch"},
		},
		Action: func(c *cli.Context) error {
			cfg, log, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			conn, err := makeConnector(c.Context, cfg, c.String("provider"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn, log)
			result, err := fetch.FetchAndStore(c.Context, c.String("label"), c.Int("max"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("mail fetch: %v", err), 1)
			}
			fmt.Fprintf(c.App.Writer, "mail fetch done provider=%s fetched=%d stored=%d\n", c.String("provider"), result.Fetched, result.Stored)
			return nil
		},
	}
}

func mailProcessCommand() *cli.Command {
	return &cli.Command{
		Name:  "mail:process",
		Usage: "Extract and normalize fetched emails",
		Flags: []cli.Flag{
			providerFlag(),
			&cli.StringFlag{Name: "message-id", Usage: "Process one message by its Message-ID"},
			&cli.IntFlag{Name: "batch", Value: 20, Usage: "Maximum pending documents"},
		},
		Action: func(c *cli.Context) error {
			cfg, log, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			processor := newProcessor(db, cfg, log)
			if id := strings.TrimSpace(c.String("message-id")); id != "" {
				res, err := processor.ProcessByProviderMessageID(c.String("provider"), id)
				if err != nil {
					return cli.Exit(fmt.Sprintf("process %s: %v", id, err), 1)
				}
				fmt.Fprintf(c.App.Writer, "processed document=%d extracted=%d stored=%d skipped=%t\n", res.DocumentID, res.Extracted, res.Stored, res.Skipped)
				return nil
			}
			docs, products, err := processor.ProcessPending(c.Int("batch"), c.String("provider"))
			if err != nil {
				return cli.Exit(fmt.Sprintf("process pending: %v", err), 1)
			}
			fmt.Fprintf(c.App.Writer, "processed pending documents=%d products=%d\n", docs, products)
			return nil
		},
	}
}

func mailListenCommand() *cli.Command {
	return &cli.Command{
		Name:  "mail:listen",
		Usage: "Poll the supplier mailbox and process price lists continuously",
		Action: func(c *cli.Context) error {
			cfg, log, err := loadConfig(c)
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer cancel()
			svc := listener.NewService(db, cfg, newProcessor(db, cfg, log), listener.WithLogger(log))
			return svc.Run(ctx)
		},
	}
}
