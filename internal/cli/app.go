// Package cli implements the operator commands: bootstrapping an admin
// account and rotating an account password.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/grapevine/internal/common"
	"github.com/dmitrijs2005/grapevine/internal/server/auth"
	"github.com/dmitrijs2005/grapevine/internal/server/models"
)

const (
	minPasswordLen = 6
	maxPasswordLen = auth.MaxPasswordBytes
	minUsernameLen = 3
	maxUsernameLen = 12
)

// ErrUsage is returned for an unknown command or bad command flags.
var ErrUsage = errors.New("usage error")

const usage = `usage: grapevine-cli [-c config] [-d dsn] <command> [flags]

commands:
  create-admin -u <username>   create an admin account
  set-password -u <username>   set a new password, ending every session of the account
`

// AccountService is the part of the user service the commands need.
type AccountService interface {
	Create(ctx context.Context, username, password string, admin bool) (*models.User, error)
	SetPassword(ctx context.Context, username, password string) (*models.User, error)
}

type App struct {
	accounts AccountService
	out      io.Writer
}

func NewApp(accounts AccountService, out io.Writer) *App {
	return &App{accounts: accounts, out: out}
}

// SplitArgs separates the global flags, which select the configuration,
// from the command and its own flags. The returned config args are in the
// form config.Load expects.
func SplitArgs(args []string) (configArgs, command []string, err error) {
	var cfgFile, dsn string

	fs := flag.NewFlagSet("grapevine-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfgFile, "c", "", "path to config file")
	fs.StringVar(&cfgFile, "config", "", "path to config file")
	fs.StringVar(&dsn, "d", "", "database DSN")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() == 0 {
		return nil, nil, fmt.Errorf("%w: missing command", ErrUsage)
	}

	if cfgFile != "" {
		configArgs = append(configArgs, "-c", cfgFile)
	}
	if dsn != "" {
		configArgs = append(configArgs, "-d", dsn)
	}
	return configArgs, fs.Args(), nil
}

// Usage writes the command summary to w.
func Usage(w io.Writer) {
	fmt.Fprint(w, usage)
}

// Run executes one command. args starts with the command name.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", ErrUsage)
	}

	switch args[0] {
	case "create-admin":
		return a.createAdmin(ctx, args[1:])
	case "set-password":
		return a.setPassword(ctx, args[1:])
	default:
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
}

func usernameFlag(name string, args []string) (string, error) {
	var username string

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&username, "u", "", "username")
	if err := fs.Parse(args); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUsage, err)
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: %s requires -u <username>", ErrUsage, name)
	}
	return username, nil
}

func (a *App) createAdmin(ctx context.Context, args []string) error {
	username, err := usernameFlag("create-admin", args)
	if err != nil {
		return err
	}
	if n := len(username); n < minUsernameLen || n > maxUsernameLen {
		return fmt.Errorf("username must be %d to %d characters long", minUsernameLen, maxUsernameLen)
	}

	password, err := GetNewPassword(a.out)
	if err != nil {
		return err
	}

	user, err := a.accounts.Create(ctx, username, password, true)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return fmt.Errorf("user %q already exists", username)
		}
		return err
	}

	fmt.Fprintf(a.out, "Admin %q created (id %d)\n", user.Username, user.ID)
	return nil
}

func (a *App) setPassword(ctx context.Context, args []string) error {
	username, err := usernameFlag("set-password", args)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out, "New password")
	if err != nil {
		return err
	}
	if err := checkPassword(password); err != nil {
		return err
	}

	user, err := a.accounts.SetPassword(ctx, username, password)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("user %q not found", username)
		}
		return err
	}

	fmt.Fprintf(a.out, "Password for %q updated; existing sessions are signed out\n", user.Username)
	return nil
}
