package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"todolists/internal/config"
	"todolists/internal/database"
	"todolists/internal/logger"
	"todolists/internal/repository"
	"todolists/internal/service"
	"todolists/internal/staging"
	"todolists/internal/validation"
)

// openDatabase loads configuration and opens the database, applying pending migrations
func openDatabase() (*database.DB, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.LogLevel, "console")
	if err != nil {
		return nil, nil, err
	}
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, log, nil
}

func newExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export users, lists and items to a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, log, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			if output == "" {
				output = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
			}
			if dir := filepath.Dir(output); dir != "." && dir != "" {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create backup file: %w", err)
			}
			defer f.Close()

			if _, err := service.NewBackupService(db, log).Export(cmd.Context(), f); err != nil {
				return err
			}

			info, err := f.Stat()
			if err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s (%.2f KB)\n", output, float64(info.Size())/1024)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default backup_YYYYMMDD_HHMMSS.json)")
	return cmd
}

func newImportCommand() *cobra.Command {
	var (
		input     string
		clearData bool
		assumeYes bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSON backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("failed to open backup: %w", err)
			}
			defer f.Close()

			db, log, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()
			backups := service.NewBackupService(db, log)

			if clearData {
				if !assumeYes && !confirm(cmd, "This will delete all existing data. Type 'yes' to confirm: ") {
					fmt.Fprintln(cmd.OutOrStdout(), "Import cancelled")
					return nil
				}
				if err := backups.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("failed to clear database: %w", err)
				}
			}

			data, err := backups.Import(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d users, %d lists, %d items (exported %s)\n",
				len(data.Users), len(data.Lists), len(data.Items), data.ExportedAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "backup file to import")
	cmd.Flags().BoolVar(&clearData, "clear", false, "delete existing data before importing")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations and list the applied ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := db.AppliedMigrations(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newUserCommand() *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
	}

	var email, password string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateEmail(email); err != nil {
				return err
			}
			if err := validation.ValidatePassword(password); err != nil {
				return err
			}

			db, _, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			auth := service.NewAuthService(repository.NewUserRepository(db), staging.NewMemoryStore(), time.Hour)
			user, err := auth.Register(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user %d (%s)\n", user.ID, user.Email)
			return nil
		},
	}
	createCmd.Flags().StringVar(&email, "email", "", "email address")
	createCmd.Flags().StringVar(&password, "password", "", "password")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("password")

	userCmd.AddCommand(createCmd)
	return userCmd
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimSpace(answer) == "yes"
}
