package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/voiceofseren/vostracker/go/clients/vos_client"
	"github.com/voiceofseren/vostracker/go/internal/detector"
	"github.com/voiceofseren/vostracker/go/internal/orchestrator"
	"github.com/voiceofseren/vostracker/go/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	config, err := loadConfig(getEnv("VOS_CONFIG", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := session.OpenDB(config.Store.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", config.Store.Path).Msg("failed to open store")
	}
	defer db.Close()

	settings := session.NewSettings(db)
	debug, err := settings.DebugMode()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read settings")
	}
	if debug || config.Logging.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	clock := clockwork.NewRealClock()
	store, err := session.Load(db, clock)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load session")
	}

	env := &detector.CommandEnvironment{
		ScannerCommand: config.Detector.Command,
		ActiveProbe:    config.Detector.ActiveProbe,
	}
	// Without capture there is nothing to schedule; surfaced once, no retry
	// loop.
	if !env.CapturePermitted() {
		log.Fatal().Str("command", config.Detector.Command).
			Msg("screen capture is not available: configure a scanner command")
	}
	det := detector.NewCommandDetector(config.Detector.Command, config.Detector.Args...)

	api := vos_client.NewVosClient(config.API.BaseURL)
	orch := orchestrator.New(config.orchestratorConfig(), store, settings, api, det, env)

	ctx, cancel := context.WithCancel(context.Background())
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		log.Info().Msg("shutting down")
		cancel()
	}()

	orch.Run(ctx)
}
