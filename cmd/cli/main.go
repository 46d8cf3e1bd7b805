package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/goreporte/internal/adapter/document"
	"github.com/iho/goreporte/internal/adapter/http/dto"
	postgresRepo "github.com/iho/goreporte/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/goreporte/internal/adapter/repository/redis"
	"github.com/iho/goreporte/internal/adapter/reportclient"
	"github.com/iho/goreporte/internal/domain"
	"github.com/iho/goreporte/internal/infrastructure/logger"
	"github.com/iho/goreporte/internal/infrastructure/postgres"
	"github.com/iho/goreporte/internal/infrastructure/redis"
	"github.com/iho/goreporte/internal/usecase"
)

var (
	baseURL  string
	token    string
	timeout  time.Duration
	currency string
	logLevel string
	retries  uint64
)

// bcryptGenerate is swapped in tests.
var bcryptGenerate = bcrypt.GenerateFromPassword

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "goreporte-cli",
		Short:         "GoReporte CLI tool",
		Long:          `A command line interface for settlement reports: query a period, reconcile it against an advance and export it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", envOr("REPORT_API_URL", "http://localhost:8080"), "Base URL of the report API")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("GOREPORTE_TOKEN"), "Bearer token for the report API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&currency, "currency", envOr("CURRENCY_SYMBOL", domain.DefaultCurrencySymbol), "Currency symbol shown in reports")
	rootCmd.PersistentFlags().Uint64Var(&retries, "retries", 0, "Retries on transport errors and 502/503 responses")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(reportCmd(), loginCmd(), hashPasswordCmd(), importCmd(), migrateCmd())
	return rootCmd
}

func reportCmd() *cobra.Command {
	var (
		user      string
		period    string
		advance   string
		exportDir string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch and reconcile a settlement report",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			log := newLogger(cmd.ErrOrStderr())
			uc := usecase.NewReportUseCase(client, nil, document.NewPDFRenderer(currency), nil, usecase.ReportUseCaseConfig{
				QueryTimeout: timeout,
				Logger:       log,
			})

			session := usecase.NewSession(uc)
			session.SetFields(user, period, advance)

			state, err := session.Submit(cmd.Context())
			if err != nil {
				return errors.New(state.Error)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if err := printJSON(out, dto.ReportFromDomain(state.Report, currency)); err != nil {
					return err
				}
			} else if err := document.NewTextRenderer(currency).Render(out, state.Report); err != nil {
				return err
			}

			if exportDir == "" {
				return nil
			}

			export, err := uc.ExportReport(state.Report)
			if err != nil {
				return err
			}
			path, err := writeExport(exportDir, export)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %s (%d bytes)\n", path, len(export.Data))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username")
	cmd.Flags().StringVar(&period, "period", "", "Settlement period (directorio)")
	cmd.Flags().StringVar(&advance, "advance", "", "Advance amount; blank means zero")
	cmd.Flags().StringVar(&exportDir, "export", "", "Directory to write the PDF export to")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

func loginCmd() *cobra.Command {
	var user, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Obtain a bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			tok, err := client.Login(ctx, domain.Credentials{Username: user, Password: password})
			if err != nil {
				return fmt.Errorf("login failed: %s", domain.DisplayMessage(err))
			}

			fmt.Fprintln(cmd.OutOrStdout(), tok.Value)
			fmt.Fprintf(cmd.ErrOrStderr(), "token for %s expires %s\n", tok.Username, tok.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username")
	cmd.Flags().StringVar(&password, "password", os.Getenv("GOREPORTE_PASSWORD"), "Password")

	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	var databaseURL, redisURL string

	cmd := &cobra.Command{
		Use:   "import <payload.json>",
		Short: "Store a raw report payload as a settlement period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			pool, err := postgres.NewPool(ctx, databaseURL, 2, 0)
			if err != nil {
				return err
			}
			defer pool.Close()

			log := newLogger(cmd.ErrOrStderr())
			repo := postgresRepo.NewInvoiceRepository(pool, postgresRepo.NewRetrier(log))
			if err := repo.SavePeriod(ctx, payload); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d invoices into %s/%s\n", len(payload.Invoices), payload.Username, payload.Directorio)

			if redisURL != "" {
				if err := invalidateCachedReport(ctx, redisURL, payload); err != nil {
					log.Warn().Err(err).Msg("imported period may be served from cache until it expires")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.Flags().StringVar(&redisURL, "redis-url", os.Getenv("REDIS_URL"), "Redis URL of the server's report cache")

	return cmd
}

// invalidateCachedReport drops the server's cached payload for the imported period.
func invalidateCachedReport(ctx context.Context, redisURL string, payload *domain.RawReportPayload) error {
	client, err := redis.NewClient(ctx, redisURL)
	if err != nil {
		return err
	}
	defer client.Close()

	return invalidateWith(ctx, redisRepo.NewCache(client), payload)
}

func invalidateWith(ctx context.Context, cache usecase.Cache, payload *domain.RawReportPayload) error {
	uc := usecase.NewReportUseCase(nil, cache, nil, nil, usecase.ReportUseCaseConfig{})
	return uc.Invalidate(ctx, usecase.QueryInput{Username: payload.Username, Directorio: payload.Directorio})
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd.ErrOrStderr()).Level(zerolog.InfoLevel)
			if args[0] == "down" {
				return postgres.RunMigrationsDown(databaseURL, path, log)
			}
			return postgres.RunMigrations(databaseURL, path, log)
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.Flags().StringVar(&path, "path", envOr("MIGRATIONS_PATH", "internal/infrastructure/postgres/migrations"), "Migrations directory")

	return cmd
}

func newClient() (*reportclient.Client, error) {
	return reportclient.New(reportclient.Config{
		BaseURL:    baseURL,
		Timeout:    timeout,
		Token:      token,
		MaxRetries: retries,
	})
}

func newLogger(w io.Writer) zerolog.Logger {
	return logger.NewWithWriter(logger.Config{Level: logLevel, Format: "console"}, w)
}

// readPayload decodes a payload in the shape served by /api/GeneradorReporte.
func readPayload(path string) (*domain.RawReportPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var payload domain.RawReportPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := domain.ValidateQuery(payload.Username, payload.Directorio); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := domain.ValidateInvoices(payload.Invoices); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &payload, nil
}

func writeExport(dir string, export *usecase.Export) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, export.Filename)
	if err := os.WriteFile(path, export.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
