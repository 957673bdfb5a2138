package main

import (
	"backlog/internal/di"
	"backlog/internal/structures"
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVarP(&flags.ConfigPath, "config", "c", "config.yaml", "path to the yaml config file")
	flag.BoolVarP(&flags.DebugMode, "debug", "d", false, "enable debug logging")
	flag.Parse()

	// .env is optional; BACKLOG_* variables may come from the environment.
	_ = godotenv.Load()

	app, cleanup, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backlog: %s\n", err)
		os.Exit(1)
	}
	defer app.Close()
	defer cleanup()

	if err := app.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "backlog: %s\n", err)
		cleanup()
		app.Close()
		os.Exit(1)
	}
}
