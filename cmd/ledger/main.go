package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path"

	"personal-ledger/cli"
	"personal-ledger/config"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	level, err := config.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = slog.LevelWarn
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	app := cli.NewApp()
	app.SetFlags(flag.CommandLine)
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		flag.CommandLine.Lookup("data-dir").DefValue = dir
		app.DataDir = dir
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	cli.Register(commander, app)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
