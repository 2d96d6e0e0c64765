// Command ycd drives the YouTube Comments Downloader API from the shell.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
)

//////////////////////////////////////////////////

type command struct {
	name  string
	args  string
	about string

	flags func(fset *pflag.FlagSet)
	run   func(ctx context.Context, a *app, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"test", "", "check the API key against /v1/user", nil, runTest},
		{"download", "URL...", "create jobs, wait for them and fetch the results", downloadFlags, runDownload},
		{"create", "URL", "create a download job", createFlags, runCreate},
		{"get", "ID", "show a download job", nil, runGet},
		{"list", "", "list download jobs", listFlags, runList},
		{"save", "ID", "fetch the result of a finished job", saveFlags, runSave},
		{"watch", "ID|URL...", "track jobs until they finish", watchFlags, runWatch},
		{"estimate", "URL", "estimate the number of comments of a video or channel", estimateFlags, runEstimate},
	}
}

var UnknownCommand = errors.New("unknown command")

func main() {
	if err := run(os.Args[1:]); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "ycd: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage()
		return nil
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
			break
		}
	}
	if cmd == nil {
		printUsage()
		return fmt.Errorf("%w: %s", UnknownCommand, args[0])
	}

	fset := pflag.NewFlagSet("ycd "+cmd.name, pflag.ContinueOnError)
	fset.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: ycd %s [flags] %s\n\n%s\n\n", cmd.name, cmd.args, cmd.about)
		fset.PrintDefaults()
	}
	addCommonFlags(fset)
	if cmd.flags != nil {
		cmd.flags(fset)
	}

	if err := fset.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}

		return err
	}

	cfg, err := loadConfig(fset)
	if err != nil {
		return err
	}

	logger := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      cfg.logLevel(),
			TimeFormat: time.DateTime,
		}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		cfg:    cfg,
		logger: logger,
		stop:   stop,
	}

	return cmd.run(ctx, a, fset.Args())
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: ycd <command> [flags] [args]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(os.Stderr, "  %-9s %s\n", cmd.name, cmd.about)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Every flag can also be set as %s_<FLAG> (e.g. %s_API_KEY) or in .env.\n", envPrefix, envPrefix)
}
