package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"

	"sheet2cal/internal/app"
	"sheet2cal/internal/config"
	"sheet2cal/internal/google"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	cliApp := &cli.App{
		Name:  "sheet2cal",
		Usage: "Import events from a Google Sheet into a calendar.",
		Commands: []*cli.Command{
			authCommand(),
			importCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		fmt.Fprintln(os.Stderr, "Importing events failed. Check the log or the error notification for details.")
		os.Exit(1)
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with a Google account to get an API token.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "account", Value: "default", EnvVars: []string{"GOOGLE_ACCOUNT"}, Usage: "Name the token is saved under."},
		},
		Action: func(c *cli.Context) error {
			logger := setupLogger("info")
			logger.Info("Starting Google authentication flow.")

			oauthConfig, err := google.GetOAuthConfigForAuthFlow(os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"))
			if err != nil {
				return fmt.Errorf("failed to get google oauth config: %w", err)
			}

			authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
			fmt.Printf("Go to the following link in your browser then type the "+
				"authorization code: \n%v\n", authURL)

			fmt.Print("Enter Authorization Code: ")
			reader := bufio.NewReader(os.Stdin)
			authCode, _ := reader.ReadString('\n')
			authCode = strings.TrimSpace(authCode)

			token, err := google.TokenFromWeb(c.Context, oauthConfig, authCode)
			if err != nil {
				return fmt.Errorf("unable to retrieve token from web: %w", err)
			}

			tokenFile := google.TokenFile(c.String("account"))
			if err := google.SaveToken(tokenFile, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			logger.Info("Successfully authenticated and saved token.", "file", tokenFile)
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Add the sheet's events to the calendar and send a report.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Log what would be added without making changes."},
			&cli.IntFlag{Name: "watch", Value: 300, Usage: "Run the import every N seconds."},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger := setupLogger(cfg.LogLevel)

			if c.Bool("dry-run") {
				logger.Info("Performing a dry run. No changes will be made.")
			}

			im, err := app.NewImporter(c.Context, logger, cfg, c.Bool("dry-run"))
			if err != nil {
				return fmt.Errorf("failed to create importer: %w", err)
			}

			// Without --watch a single run is performed.
			if c.IsSet("watch") {
				interval := time.Duration(c.Int("watch")) * time.Second
				if interval <= 0 {
					return fmt.Errorf("watch interval must be positive")
				}
				logger.Info("Starting watcher.", "interval", interval)
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					if _, err := im.Run(c.Context); err != nil {
						logger.Error("Import run failed", "error", err)
					}
					select {
					case <-c.Context.Done():
						return nil
					case <-ticker.C:
					}
				}
			}

			logger.Info("Running a single import.")
			if _, err := im.Run(c.Context); err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			return nil
		},
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
