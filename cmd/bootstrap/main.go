// Команда bootstrap создаёт первого администратора и сбрасывает пароли.
//
//	bootstrap create-admin -name "Mario Rossi" -email admin@slwc.it -password ...
//	bootstrap reset-password -email admin@slwc.it -password ...
//
// Пароль можно передать через BOOTSTRAP_PASSWORD вместо флага.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/slwc/membership/internal/config"
	"github.com/slwc/membership/internal/lib/sl"
	"github.com/slwc/membership/internal/migrations"
	services "github.com/slwc/membership/internal/services/bootstrap"
	"github.com/slwc/membership/internal/storage/repository"
)

const (
	cmdCreateAdmin   = "create-admin"
	cmdResetPassword = "reset-password"
)

type command struct {
	name     string
	fullName string
	email    string
	password string
}

func parseArgs(args []string, getenv func(string) string) (command, error) {
	if len(args) == 0 {
		return command{}, errors.New("usage: bootstrap create-admin|reset-password [flags]")
	}
	cmd := command{name: args[0]}
	fs := flag.NewFlagSet(cmd.name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cmd.email, "email", "", "account email")
	fs.StringVar(&cmd.password, "password", "", "account password (or BOOTSTRAP_PASSWORD)")

	switch cmd.name {
	case cmdCreateAdmin:
		fs.StringVar(&cmd.fullName, "name", "", "administrator full name")
	case cmdResetPassword:
	default:
		return command{}, fmt.Errorf("unknown command %q", cmd.name)
	}
	if err := fs.Parse(args[1:]); err != nil {
		return command{}, err
	}

	if cmd.password == "" {
		cmd.password = getenv("BOOTSTRAP_PASSWORD")
	}
	if cmd.email == "" || cmd.password == "" {
		return command{}, errors.New("email and password are required")
	}
	if cmd.name == cmdCreateAdmin && cmd.fullName == "" {
		return command{}, errors.New("name is required")
	}
	return cmd, nil
}

func main() {
	cmd, err := parseArgs(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := config.MustLoad()
	logger := sl.SetupLogger(cfg.Env, os.Stdout)

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to database", sl.Err(err))
		os.Exit(1)
	}
	defer db.Close()

	if _, err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		logger.Error("failed to apply migrations", sl.Err(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	svc := services.NewBootstrapService(db, logger)
	switch cmd.name {
	case cmdCreateAdmin:
		id, err := svc.CreateAdmin(ctx, cmd.fullName, cmd.email, cmd.password)
		if err != nil {
			logger.Error("failed to create admin", sl.Err(err))
			os.Exit(1)
		}
		logger.Info("admin created", slog.Int("id", id), slog.String("email", cmd.email))
	case cmdResetPassword:
		if err := svc.ResetPassword(ctx, cmd.email, cmd.password); err != nil {
			logger.Error("failed to reset password", sl.Err(err))
			os.Exit(1)
		}
		logger.Info("password reset", slog.String("email", cmd.email))
	}
}
