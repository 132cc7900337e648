package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/lexique-shimaore-bot/internal/clock"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/config"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/delivery/telegram"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/domain/entities"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/infra/postgres"
	postgresrepo "github.com/aliskhannn/lexique-shimaore-bot/internal/infra/postgres/repository"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/infra/sqlite"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/logger"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/repository"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/service"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/storage"
	"github.com/aliskhannn/lexique-shimaore-bot/internal/worker"
)

// writerQueue bounds the persistence jobs waiting behind the single writer.
const writerQueue = 1024

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	lg, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Local key-value store.
	db, err := sqlite.Open(cfg.SQLite.Path)
	if err != nil {
		lg.Fatal("failed to open local store", zap.String("path", cfg.SQLite.Path), zap.Error(err))
	}
	defer func() { _ = db.Close() }()
	kv := sqlite.NewKVStore(db)

	// Remote document store. Without a database the documents live in memory.
	var docs service.DocumentStore
	if cfg.DB.HasRemote() {
		dsn, _ := cfg.DB.DSN()
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.DB.MaxConnections),
			MaxConnLifetime: cfg.DB.MaxConnLifetime,
		})
		if err != nil {
			lg.Fatal("failed to connect to database", zap.Error(err))
		}
		defer pool.Close()

		if err := postgres.Migrate(ctx, pool); err != nil {
			lg.Fatal("failed to migrate database", zap.Error(err))
		}
		docs = postgresrepo.NewDocumentRepository(pool)
	} else {
		lg.Warn("DATABASE_URL is not set, remote documents are kept in memory")
		docs = storage.NewMemoryDocuments()
	}

	lexicon, err := repository.NewLexiconRepository(cfg.LexiconPath)
	if err != nil {
		lg.Fatal("failed to load lexicon", zap.String("path", cfg.LexiconPath), zap.Error(err))
	}
	lg.Info("lexicon loaded", zap.Int("words", lexicon.Len()))

	policy, err := service.ParseReviewPolicy(cfg.Quiz.ReviewPolicy)
	if err != nil {
		lg.Fatal("invalid review policy", zap.Error(err))
	}

	// Writes outlive the signal context so queued progress is flushed on shutdown.
	writer := worker.NewSerial(context.Background(), writerQueue, func(err error) {
		lg.Error("persistence job failed", zap.Error(err))
	})
	defer writer.Close()

	clk := clock.New()

	progressService := service.NewProgressService(kv, docs, clk, lg)
	settingsService := service.NewSettingsService(kv, cfg.Quiz.DefaultTimer, lg)
	statsService := service.NewStatsService(lexicon, progressService, clk)
	lexiconService := service.NewLexiconService(lexicon, progressService)
	resetService := service.NewResetService(kv, docs, writer, clk, lg)
	syncService := service.NewSyncService(kv, progressService, writer, cfg.Sync.Schedule, lg)

	deps := service.QuizDeps{
		Lexicon:  lexicon,
		Progress: progressService,
		Settings: settingsService,
		Scorer:   service.NewScorer(policy),
		Options:  service.NewOptionGenerator(),
		Clock:    clk,
		Writer:   writer,
		Logger:   lg,
		Config: service.QuizConfig{
			SessionSize: cfg.Quiz.SessionSize,
			RevealDelay: cfg.Quiz.RevealDelay,
		},
	}
	newQuiz := func(userID int64, direction entities.Direction, listener service.QuizListener) telegram.QuizSession {
		return service.NewQuizController(deps, userID, direction, listener)
	}

	go func() {
		if err := syncService.Start(ctx); err != nil {
			lg.Error("sync job stopped", zap.Error(err))
		}
	}()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramAPIToken)
	if err != nil {
		lg.Fatal("failed to create bot", zap.Error(err))
	}
	bot.Debug = cfg.Env != "production"
	lg.Info("authorized", zap.String("account", bot.Self.UserName))

	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Démarrer le bot"},
		{Command: "quiz", Description: "Lancer un quiz"},
		{Command: "lexique", Description: "Chercher un mot"},
		{Command: "stats", Description: "Voir ma progression"},
		{Command: "settings", Description: "Réglages"},
		{Command: "reset", Description: "Effacer ma progression"},
		{Command: "help", Description: "Aide"},
	}
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		lg.Warn("failed to set bot commands", zap.Error(err))
	}

	handler := telegram.NewHandler(bot, lg, newQuiz, settingsService, statsService, lexiconService, resetService)
	if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("handler stopped", zap.Error(err))
	}

	lg.Info("shutdown signal received, flushing pending writes")
}
