// Command seedadmin creates the initial super admin account, or promotes an
// existing one and resets its password.
//
// It reads the same configuration as the server (env, .env, -c JSON file,
// flags) and adds:
//
//	-email string      admin email (default "admin@example.com")
//	-password string   admin password; prompted for when omitted
package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

type options struct {
	email    string
	password string
}

func parseOptions(args []string) (options, error) {
	args = flagx.FilterArgs(args, []string{"-email", "-password"})

	o := options{}
	fs := flag.NewFlagSet("seedadmin", flag.ContinueOnError)
	fs.StringVar(&o.email, "email", "admin@example.com", "admin email")
	fs.StringVar(&o.password, "password", "", "admin password")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		return err
	}

	if opts.password == "" {
		pw, err := promptPassword(bufio.NewReader(os.Stdin), os.Stdout)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		opts.password = pw
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	created, err := services.NewAdminService(db, rm, logger).EnsureSuperAdmin(ctx, opts.email, opts.password)
	if err != nil {
		return err
	}

	if created {
		fmt.Printf("Super admin %s created\n", opts.email)
	} else {
		fmt.Printf("User %s promoted to super admin\n", opts.email)
	}
	return nil
}
