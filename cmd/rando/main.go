package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/swccgarena/rando/internal/admin"
	"github.com/swccgarena/rando/internal/board"
	"github.com/swccgarena/rando/internal/board/events"
	"github.com/swccgarena/rando/internal/cards"
	"github.com/swccgarena/rando/internal/chat"
	"github.com/swccgarena/rando/internal/config"
	"github.com/swccgarena/rando/internal/decision"
	"github.com/swccgarena/rando/internal/gemp"
	"github.com/swccgarena/rando/internal/session"
	"github.com/swccgarena/rando/internal/stats"
	"github.com/swccgarena/rando/internal/strategy"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath = flag.String("config", "config/rando.yaml", "path to configuration file")
	gameID     = flag.String("game", "", "game id override")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *gameID != "" {
		cfg.Game.GameID = *gameID
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting rando",
		zap.String("version", version),
		zap.String("server", cfg.Server.BaseURL),
		zap.String("gameId", cfg.Game.GameID),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("session ended with error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	library := cards.NewLibrary(logger)
	if err := library.LoadFile(cfg.Game.CardLibrary); err != nil {
		logger.Warn("card library unavailable, playing without metadata", zap.Error(err))
	}

	client, err := gemp.NewClient(gemp.ClientConfig{
		BaseURL:        cfg.Server.BaseURL,
		RequestTimeout: cfg.Server.Timeout,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating game client: %w", err)
	}
	if err := client.Login(ctx, cfg.Account.Login, cfg.Account.Password); err != nil {
		return fmt.Errorf("logging in as %s: %w", cfg.Account.Login, err)
	}
	logger.Info("logged in", zap.String("login", cfg.Account.Login))

	var repo *stats.Repository
	if cfg.Database.URL != "" {
		repo, err = stats.Open(ctx, cfg.Database.URL, logger)
		if err != nil {
			logger.Warn("stats database unavailable, continuing without persistence", zap.Error(err))
		} else {
			defer repo.Close()
		}
	}

	var hub *admin.Hub
	if cfg.Admin.Address != "" {
		hub = admin.NewHub(logger)
		go hub.Run(ctx)
		go serveAdmin(ctx, cfg.Admin.Address, hub, logger)
	}

	model := board.NewModel(cfg.Account.Login, library, logger)
	tracker := decision.NewTracker(decision.TrackerConfig{
		MildThreshold:     cfg.Loop.MildThreshold,
		SevereThreshold:   cfg.Loop.SevereThreshold,
		CriticalThreshold: cfg.Loop.CriticalThreshold,
	}, logger)
	resolver := decision.NewResolver(model, tracker, strategy.Default(logger).Scorers(), nil, logger)

	var narrator *chat.Narrator
	if cfg.Game.ChatEnabled {
		narrator = chat.NewNarrator(client, cfg.Game.GameID, nil, logger)
	}

	hooks := buildHooks(cfg.Game.GameID, model, repo, hub, narrator)

	sess := session.New(session.Config{
		GameID:        cfg.Game.GameID,
		MaxIterations: cfg.Game.MaxIterations,
		OnConcede: func(reason string) {
			if narrator != nil {
				narrator.Conceding(reason)
			}
		},
	}, client, model, resolver, hooks, logger)

	runErr := sess.Run(ctx)

	if repo != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if model.GameOver() || sess.Conceded() {
			result := stats.GameResult{
				GameID:    cfg.Game.GameID,
				Player:    cfg.Account.Login,
				Winner:    model.Winner(),
				EndReason: model.EndReason(),
				Won:       model.Won(),
				Conceded:  sess.Conceded(),
			}
			if err := repo.RecordResult(flushCtx, result); err != nil {
				logger.Warn("failed to record game result", zap.Error(err))
			}
		}
		if err := repo.Flush(flushCtx); err != nil {
			logger.Warn("failed to flush play counts", zap.Error(err))
		}
	}
	return runErr
}

// buildHooks wires the optional collaborators into the event stream. The
// admin snapshot is rebuilt on phase and turn boundaries, which is frequent
// enough for a human observer.
func buildHooks(gameID string, model *board.Model, repo *stats.Repository, hub *admin.Hub, narrator *chat.Narrator) events.Hooks {
	hooks := events.Hooks{}

	if repo != nil {
		hooks.CardPlaced = func(templateID string, zone board.Zone, owner string) {
			if owner == model.OwnName() {
				repo.CountPlay(templateID)
			}
		}
	}
	if hub != nil {
		publish := func() { hub.Publish(admin.BuildSnapshot(gameID, model)) }
		hooks.PhaseChanged = func(board.Phase) { publish() }
		hooks.TurnChanged = func(int) { publish() }
		hooks.GameEnded = func(string, string) { publish() }
	}
	if narrator != nil {
		hooks.BattleStarted = narrator.BattleStarted
		callerEnd := hooks.GameEnded
		hooks.GameEnded = func(winner, reason string) {
			narrator.GameEnded(winner == model.OwnName())
			if callerEnd != nil {
				callerEnd(winner, reason)
			}
		}
	}
	return hooks
}

func serveAdmin(ctx context.Context, addr string, hub *admin.Hub, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)

	server := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("admin feed listening", zap.String("address", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Warn("admin feed stopped", zap.Error(err))
	}
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
