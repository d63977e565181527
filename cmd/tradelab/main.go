package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"tradelab/internal/aggregator"
	"tradelab/internal/api"
	"tradelab/internal/auth"
	"tradelab/internal/common"
	"tradelab/internal/config"
	"tradelab/internal/feed"
	"tradelab/internal/portfolio"
	"tradelab/internal/pricestore"
	"tradelab/internal/storage"
	"tradelab/internal/trading"
	"tradelab/internal/util"
	"tradelab/pkg/models"
)

func main() {
	configPath := flag.String("config", common.DefaultConfigPath, "Path to config file")
	userID := flag.String("user", "demo", "Authenticated user id")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("error_code", common.ErrCodeConfigLoadFailed.String()).Str("error_message", common.ErrMsgConfigLoadFailed.String()).Msg("Failed to load config")
	}

	switch cfg.LogLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		log.Fatal().Str("log_level", cfg.LogLevel).Msg("Invalid log level in config, use: debug, info, warn, error")
	}

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	logger := util.NewLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var repo storage.Repository
	if dsn := cfg.Storage.PostgresDSN; dsn != "" {
		pg, err := storage.NewPostgres(ctx, dsn)
		if err != nil {
			logger.Error(err, common.ErrCodeStorageFailed, common.ErrMsgStorageFailed, "Failed to connect to postgres")
			os.Exit(1)
		}
		defer pg.Close()
		repo = pg
	} else {
		mem := storage.NewMemory()
		mem.PutUser(models.User{
			ID:          *userID,
			Email:       *userID + "@tradelab.local",
			DisplayName: *userID,
			Wallet:      decimal.NewFromInt(10000),
			Active:      true,
		})
		repo = mem
		logger.Info("Using in-memory storage", "user", *userID)
	}

	session, err := auth.Login(ctx, repo, *userID)
	if err != nil {
		logger.Error(err, common.ErrCodeStorageFailed, common.ErrMsgStorageFailed, "Login failed", "user", *userID)
		os.Exit(1)
	}

	store := pricestore.NewStore()
	candles := aggregator.New(cfg.GetCandleInterval())

	tradeCh := make(chan models.Trade, cfg.GetChannelBufferSize())
	dispatcher := feed.NewDispatcher(tradeCh, store, candles)
	dispatcher.Run()

	tracker := portfolio.NewTracker(session, repo, store, logger)
	tracker.Run(ctx)

	engine := trading.NewEngine(repo, logger, tracker.HoldingsChanged)

	feedSession := feed.NewSession(cfg, tradeCh, logger)
	go func() {
		for {
			select {
			case state := <-feedSession.States():
				logger.Info("Feed state changed", "state", state.String())
			case <-ctx.Done():
				return
			}
		}
	}()
	if err := feedSession.Connect(); err != nil {
		// Not fatal: the API still serves, prices stay stale until restart.
		logger.Error(err, common.ErrCodeFeedConnectFailed, common.ErrMsgFeedConnectFailed, "Feed connect failed")
	}

	handler := api.NewHandler(store, candles, tracker, engine, repo, session, feedSession, logger)
	go func() {
		logger.Info("Starting HTTP server", "port", cfg.GetServerPort())
		if err := handler.Serve(cfg.GetServerPort()); err != nil {
			logger.Error(err, common.ErrCodeServerFailed, common.ErrMsgServerFailed, "HTTP serve failed")
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down")
	cancel()
	feedSession.Close()
	// The receive loop keeps writing trades until it observes the close;
	// join it before closing the channel it writes to.
	feedSession.Wait()
	close(tradeCh)
	dispatcher.Wait()
}
