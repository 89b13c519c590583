package main

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

var version = "dev"

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("alphatrack"),
		kong.Description("Job listing ingestion and persistence engine."),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version},
	)

	level := zerolog.InfoLevel
	if cli.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := kctx.Run(&Context{Log: log, ConfigPath: cli.ConfigFile}); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
