// Command resellerd runs the reseller hosting control plane: the
// interactive operator console, the admin HTTP API, or the FTP transport
// service.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hostsuite/resellerd/internal/app"
	"github.com/hostsuite/resellerd/internal/config"

	log "github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if errRun := run(ctx, os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("command failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("resellerd", flag.ExitOnError)
	configPath := flags.String("config", "", "path to the YAML config file")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "Usage: resellerd [flags] [console|api|ftp|migrate]\n\n")
		flags.PrintDefaults()
	}
	if errParse := flags.Parse(args); errParse != nil {
		return errParse
	}

	cfg, errLoad := config.Load(config.ResolveConfigPath(*configPath))
	if errLoad != nil {
		return errLoad
	}

	application, errNew := app.New(cfg)
	if errNew != nil {
		return errNew
	}
	defer func() {
		if errClose := application.Close(); errClose != nil {
			log.WithError(errClose).Warn("database close failed")
		}
	}()

	command := "console"
	if flags.NArg() > 0 {
		command = flags.Arg(0)
	}

	switch command {
	case "console":
		return application.RunConsole(ctx)
	case "api":
		return application.RunAPI(ctx)
	case "ftp":
		return application.RunFTP(ctx)
	case "migrate":
		// app.New already migrated; reaching here means it succeeded.
		log.Info("migration complete")
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
