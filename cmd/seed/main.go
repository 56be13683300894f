// seed writes roles, the first administrator and the leave type catalogue. Every subcommand is
// idempotent; run "seed all" against a freshly migrated database.
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"employee-management/backend/internal/config"
	"employee-management/backend/internal/db"
	leaverepo "employee-management/backend/internal/leave/repository"
	"employee-management/backend/internal/logs"
	principalrepo "employee-management/backend/internal/principal/repository"
	rolerepo "employee-management/backend/internal/role/repository"
	"employee-management/backend/internal/security"
	"employee-management/backend/internal/seed"
)

var (
	cfg    *config.Config
	conn   *sql.DB
	seeder *seed.Seeder
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed reference data into the employee management database",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		logs.Init(logs.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is not set; create a .env or set DATABASE_URL")
		}
		conn, err = db.Open(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("db: %w", err)
		}
		seeder = seed.New(
			rolerepo.NewPostgresRepository(conn),
			principalrepo.NewPostgresRepository(conn),
			leaverepo.NewPostgresRepository(conn),
			security.NewHasher(cfg.BcryptCost),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if conn != nil {
			_ = conn.Close()
		}
	},
	SilenceUsage: true,
}

func adminAccount() seed.AdminAccount {
	return seed.AdminAccount{Name: cfg.AdminName, Email: cfg.AdminEmail, Password: cfg.AdminPassword}
}

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Upsert ADMIN, HR and EMPLOYEE with their default permissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return seeder.Roles(cmd.Context())
	},
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Create the approved ADMIN account from ADMIN_EMAIL and ADMIN_PASSWORD",
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := seeder.Admin(cmd.Context(), adminAccount())
		if err != nil {
			return err
		}
		if created {
			fmt.Printf("Admin login: %s\n", cfg.AdminEmail)
		}
		return nil
	},
}

var leaveTypesCmd = &cobra.Command{
	Use:   "leave-types",
	Short: "Write the leave type catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return seeder.LeaveTypes(cmd.Context())
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run roles, admin and leave-types in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return seeder.All(cmd.Context(), adminAccount())
	},
}

func init() {
	rootCmd.AddCommand(rolesCmd, adminCmd, leaveTypesCmd, allCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
