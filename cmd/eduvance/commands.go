package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/eduvance/portal/internal/auth"
	"github.com/eduvance/portal/internal/database"
	"github.com/eduvance/portal/internal/importer"
)

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func closeProvider(provider *database.Provider) {
	if err := provider.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			provider, db, err := openStore(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer closeProvider(provider)

			v, err := db.SchemaVersion(ctx)
			if err != nil {
				return err
			}
			log.Info().Int("version", v).Int("latest", database.LatestSchemaVersion()).Msg("Schema is up to date")
			return nil
		},
	}
}

func seedSubjectsCmd() *cobra.Command {
	var (
		dir   string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "seed-subjects",
		Short: "Create subjects from the folders of the data-import tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Import.Dir
			}
			ctx, cancel := signalContext()
			defer cancel()

			provider, db, err := openStore(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer closeProvider(provider)

			imp := importer.New(db, dir)
			if _, err := imp.SeedSubjects(ctx); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			watcher, err := importer.NewWatcher(imp.Dir(), importer.DefaultDebounce, func(ctx context.Context) {
				if _, err := imp.SeedSubjects(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to reseed subjects")
				}
			})
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}
			if err := watcher.Start(); err != nil {
				return fmt.Errorf("failed to watch %s: %w", imp.Dir(), err)
			}
			defer watcher.Stop()

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Data-import directory (or set DATA_IMPORT_DIR env var)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep running and reseed when new folders appear")
	return cmd
}

func importPapersCmd() *cobra.Command {
	var (
		dir          string
		subject      string
		syllabusType string
	)

	cmd := &cobra.Command{
		Use:   "import-papers",
		Short: "Import a subject's past paper links from its listing files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Import.Dir
			}
			ctx, cancel := signalContext()
			defer cancel()

			provider, db, err := openStore(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer closeProvider(provider)

			result, err := importer.New(db, dir).ImportPapers(ctx, subject, syllabusType)
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d papers across %d sessions from %d files (%d skipped)\n",
				result.Papers, result.Sessions, result.Files, result.SkippedFiles)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Data-import directory (or set DATA_IMPORT_DIR env var)")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Subject name, matching its folder")
	cmd.Flags().StringVarP(&syllabusType, "type", "t", database.SyllabusIAL, "Syllabus type: IAL or IGCSE")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func createStaffCmd() *cobra.Command {
	var in auth.NewStaff

	cmd := &cobra.Command{
		Use:   "create-staff",
		Short: "Create a staff account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			provider, db, err := openStore(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer closeProvider(provider)

			user, err := auth.NewStaffService(db).CreateStaff(ctx, in)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(user, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "Login name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password (at least 8 characters)")
	cmd.Flags().StringVar(&in.Role, "role", database.RoleModerator, "Role: admin or moderator")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check database connectivity and report table sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			provider, db, err := openStore(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer closeProvider(provider)

			if err := db.Ping(ctx); err != nil {
				return err
			}

			stats, err := db.Stats(ctx)
			if err != nil {
				return err
			}

			log.Info().
				Str("driver", string(db.Dialect())).
				Str("version", stats.Version).
				Int("schema_version", stats.SchemaVersion).
				Int("latest_schema_version", database.LatestSchemaVersion()).
				Msg("Database reachable")

			tables := make([]string, 0, len(stats.TableRows))
			for table := range stats.TableRows {
				tables = append(tables, table)
			}
			sort.Strings(tables)
			for _, table := range tables {
				log.Info().Str("table", table).Int64("rows", stats.TableRows[table]).Msg("Table")
			}
			for syllabusType, n := range stats.SubjectsByType {
				log.Info().Str("type", syllabusType).Int64("subjects", n).Msg("Subjects")
			}

			if stats.SchemaVersion < database.LatestSchemaVersion() {
				fmt.Fprintln(os.Stderr, "schema is behind, run: eduvance migrate")
			}
			return nil
		},
	}
}
