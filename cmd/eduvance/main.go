package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/eduvance/portal/internal/config"
	"github.com/eduvance/portal/internal/database"
	"github.com/eduvance/portal/internal/discord"
	"github.com/eduvance/portal/internal/logging"
	"github.com/eduvance/portal/internal/web"
	"github.com/eduvance/portal/internal/web/handlers"
	"github.com/eduvance/portal/internal/web/middleware"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags
var (
	envFile   string
	dbDriver  string
	dbPath    string
	verbosity int
)

// Serve flags
var (
	port        int
	bind        string
	allowSubnet string
	skipMigrate bool

	// Timeout flags (advanced)
	requestTimeout time.Duration
	queryTimeout   time.Duration
	httpTimeout    time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "eduvance",
		Short: "Eduvance - study resources portal backend",
		Long:  `Eduvance serves the subject catalogue, past papers and community resources of the Eduvance study portal.`,
		RunE:  run,
	}

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Env file to load (default .env when present)")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "db-driver", "", "Database driver: mysql or sqlite (or set DB_DRIVER env var)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite database path (or set DB_PATH env var)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")

	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (or set PORT env var, default 3000)")
	rootCmd.Flags().StringVarP(&bind, "bind", "b", "", "IP address to bind to (e.g., 127.0.0.1, 0.0.0.0)")
	rootCmd.Flags().StringVarP(&allowSubnet, "allow-subnet", "a", "", "CIDR subnet allowed to connect (e.g., 192.168.1.0/24)")
	rootCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not apply schema migrations on startup")

	rootCmd.Flags().DurationVar(&requestTimeout, "request-timeout", 15*time.Second, "Timeout for a whole API request")
	rootCmd.Flags().DurationVar(&queryTimeout, "query-timeout", 10*time.Second, "Timeout for a single database call")
	rootCmd.Flags().DurationVar(&httpTimeout, "http-timeout", 30*time.Second, "Timeout for HTTP client requests to external services")

	rootCmd.AddCommand(
		migrateCmd(),
		seedSubjectsCmd(),
		importPapersCmd(),
		createStaffCmd(),
		checkCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("eduvance %s (commit: %s, built: %s)\n", version, commit, date)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies any explicitly set flags on top
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("db-driver") {
		cfg.Database.Driver = dbDriver
	}
	if flags.Changed("db") {
		cfg.Database.Path = dbPath
	}
	if flags.Lookup("port") != nil && flags.Changed("port") {
		cfg.Server.Port = port
	}
	if flags.Lookup("bind") != nil && flags.Changed("bind") {
		cfg.Server.Bind = bind
	}
	if flags.Lookup("allow-subnet") != nil && flags.Changed("allow-subnet") {
		cfg.Server.AllowSubnet = allowSubnet
	}
	if flags.Lookup("request-timeout") != nil && flags.Changed("request-timeout") {
		cfg.Timeouts.Request = requestTimeout
	}
	if flags.Lookup("query-timeout") != nil && flags.Changed("query-timeout") {
		cfg.Timeouts.Query = queryTimeout
	}
	if flags.Lookup("http-timeout") != nil && flags.Changed("http-timeout") {
		cfg.Timeouts.HTTPClient = httpTimeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Apply(cfg.Log, verbosity)
	config.SetGlobalTimeouts(&cfg.Timeouts)

	return cfg, nil
}

// openStore creates the shared pool and, unless skipped, brings the schema up to date
func openStore(ctx context.Context, cfg *config.Config, migrate bool) (*database.Provider, *database.DB, error) {
	provider := database.NewConfigProvider(cfg)
	db, err := provider.Get()
	if err != nil {
		return nil, nil, err
	}

	if migrate {
		if err := db.Migrate(ctx); err != nil {
			_ = provider.Close()
			return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	return provider, db, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	allowedNet, err := middleware.ParseSubnet(cfg.Server.AllowSubnet)
	if err != nil {
		return fmt.Errorf("invalid allow-subnet CIDR: %s", cfg.Server.AllowSubnet)
	}

	// Warn if binding to all interfaces without an allow list
	if (cfg.Server.Bind == "" || cfg.Server.Bind == "0.0.0.0" || cfg.Server.Bind == "::") && allowedNet == nil {
		log.Warn().Msg("Server is accessible from all interfaces without subnet restrictions. Consider using --bind or --allow-subnet for security.")
	}

	log.Info().
		Str("version", version).
		Int("port", cfg.Server.Port).
		Str("bind", cfg.Server.Bind).
		Str("allow_subnet", cfg.Server.AllowSubnet).
		Str("driver", cfg.Database.Driver).
		Msg("Starting Eduvance")

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provider, db, err := openStore(ctx, cfg, !skipMigrate)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := provider.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if err := db.Ping(ctx); err != nil {
		// Requests fail individually until the server becomes reachable
		log.Warn().Err(err).Msg("Database is not reachable yet")
	}

	discordClient := discord.NewClient(cfg.Discord)
	var members handlers.MemberCounter
	if discordClient.Configured() {
		members = discordClient

		refresher := discord.NewRefresher(discordClient, discord.DefaultSchedule)
		if err := refresher.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start member count refresher")
		} else {
			defer refresher.Stop()
		}
	} else {
		log.Info().Msg("Discord not configured, /api/members will return 401")
	}

	h := handlers.New(db, members, cfg.Site.BaseURL)
	server := web.NewServer(h, cfg.Server.Port, cfg.Server.Bind, allowedNet, cfg.Timeouts.Request)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}

	log.Info().Msg("Eduvance stopped")
	return nil
}
