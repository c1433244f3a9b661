package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/devhell/todo/internal/cli"
)

var version = "dev"

func main() {
	// Root flags (apply to every subcommand)
	apiURL := flag.String("api", "", "API base URL")
	configDir := flag.String("config", "", "config directory")
	timeout := flag.Duration("timeout", 0, "per-request timeout")
	theme := flag.String("theme", "", "classic, neon or mono")
	debug := flag.Bool("debug", false, "debug logging")
	r := cli.NewRunner(version)
	flag.Usage = func() { r.PrintHelp(os.Stderr) }
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := r.Run(ctx, flag.Args(), cli.Options{
		APIURL:    *apiURL,
		ConfigDir: *configDir,
		Timeout:   *timeout,
		Theme:     *theme,
		Debug:     *debug,
	})
	stop()
	os.Exit(code)
}
