// Command dispatchd serves the dispatch pipeline over HTTP.
//
// Configuration is layered: built-in defaults, the YAML file named by
// -config, the -env-file dotenv file, then DISPATCH_* variables.
// Both providers are simulated with provider.Chaos.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonwraymond/dispatchops/config"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the environment")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *envFile); err != nil {
		fmt.Fprintln(os.Stderr, "dispatchd:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, envFile string) error {
	cfg, err := config.Load(ctx, configPath, envFile)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	return a.serve(ctx)
}
