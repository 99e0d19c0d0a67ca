package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/customeros/mailadmin/config"
	"github.com/customeros/mailadmin/internal/logger"
	"github.com/customeros/mailadmin/internal/models"
	"github.com/customeros/mailadmin/server"
	"github.com/customeros/mailadmin/services"
)

func main() {
	app := &cli.App{
		Name:  "mailadmin",
		Usage: "webmail admin backend",
		Commands: []*cli.Command{
			{
				Name:   "server",
				Usage:  "Start the application server",
				Action: runServer,
			},
			{
				Name:  "check",
				Usage: "Verify mailbox credentials and print folder stats",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true, EnvVars: []string{"CHECK_EMAIL"}},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"CHECK_PASSWORD"}},
					&cli.DurationFlag{Name: "timeout", Value: time.Minute},
				},
				Action: runCheck,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.InitConfig()
	if err != nil {
		return nil, errors.Wrap(err, "config initialization failed")
	}
	if cfg == nil {
		return nil, errors.New("config is empty")
	}
	return cfg, nil
}

func runServer(_ *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("Mailadmin starting up...")

	srv, err := server.NewServer(cfg)
	if err != nil {
		return errors.Wrap(err, "server setup failed")
	}
	if err = srv.Run(); err != nil {
		return errors.Wrap(err, "server stopped")
	}

	log.Println("Shutdown complete")
	return nil
}

func runCheck(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	svcs, err := services.InitServices(cfg, appLogger)
	if err != nil {
		return err
	}
	defer svcs.Close()

	ctx, cancel := context.WithTimeout(c.Context, c.Duration("timeout"))
	defer cancel()

	identity := models.Identity{Email: c.String("email"), Password: c.String("password")}

	if err = svcs.MailService.Login(ctx, identity); err != nil {
		return errors.Wrap(err, "imap")
	}
	fmt.Printf("IMAP %s:%d ok\n", cfg.IMAPConfig.Host, cfg.IMAPConfig.Port)

	if err = svcs.SMTPService.Verify(ctx, identity); err != nil {
		return errors.Wrap(err, "smtp")
	}
	fmt.Printf("SMTP %s:%d ok\n", cfg.SMTPConfig.Host, cfg.SMTPConfig.Port)

	stats, err := svcs.MailService.FolderStats(ctx, identity)
	if err != nil {
		return errors.Wrap(err, "stats")
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		folder := stats[key]
		if folder.Error != "" {
			fmt.Printf("%-7s %-20s error: %s\n", key, folder.Name, folder.Error)
			continue
		}
		fmt.Printf("%-7s %-20s %6d messages %6d unseen\n", key, folder.Name, folder.Messages, folder.Unseen)
	}
	return nil
}
