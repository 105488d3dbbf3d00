package cli

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arcquiz-service/internal/app"
	"arcquiz-service/internal/config"
	"arcquiz-service/internal/domain"
	filebank "arcquiz-service/internal/infra/file"
	"arcquiz-service/internal/infra/memory"
	pginfra "arcquiz-service/internal/infra/postgres"
	redisinfra "arcquiz-service/internal/infra/redis"
	transport "arcquiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	sessionTTL := config.TTLDuration(cfg.Quiz.SessionTTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader app.BankLoader = memory.NewStaticBankLoader(sampleQuestions())
	switch {
	case pool != nil:
		loader = pginfra.NewBankLoader(pool)
	case cfg.Quiz.BankPath != "":
		loader = filebank.NewBankLoader(cfg.Quiz.BankPath)
	}

	// A bank that fails validation is fatal: better to refuse to start
	// than to serve a quiz with broken questions.
	questions, err := loader.LoadQuestions(ctx)
	if err != nil {
		return err
	}
	bank, err := app.NewBank(questions)
	if err != nil {
		return err
	}

	var registry app.SessionRegistry
	if redisClient != nil {
		registry = redisinfra.NewSessionRegistry(redisClient, sessionTTL)
	} else {
		memRegistry := memory.NewSessionRegistry(sessionTTL)
		defer memRegistry.Close()
		registry = memRegistry
	}

	var board app.LeaderboardStore
	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		defer db.Close()
		board = pginfra.NewLeaderboardStore(db)
	} else {
		board = memory.NewLeaderboardStore()
	}
	cacheTTL := config.TTLDuration(cfg.Quiz.LeaderboardCacheTTL, 5*time.Second)
	board = memory.NewCachedLeaderboard(board, cacheTTL)

	service := app.NewQuizService(bank, registry, board)
	wsHandler := transport.NewWSHandler(service)
	lbHandler := transport.NewLeaderboardHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.Handle("/leaderboard", lbHandler)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting arcquiz service on :%s (%d questions)", finalPort, bank.Len())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions provides a minimal bank for runs without a question
// file or database.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:           "q1",
			Prompt:       "What is 2 + 2?",
			Options:      []string{"3", "4", "5", "22"},
			CorrectIndex: 1,
			Explanation:  "Basic addition: 2 + 2 = 4.",
		},
		{
			ID:           "q2",
			Prompt:       "Which planet is known as the Red Planet?",
			Options:      []string{"Venus", "Jupiter", "Mars", "Saturn"},
			CorrectIndex: 2,
			Explanation:  "Iron oxide on its surface gives Mars its color.",
		},
		{
			ID:           "q3",
			Prompt:       "What is the capital of France?",
			Options:      []string{"Lyon", "Marseille", "Paris", "Nice"},
			CorrectIndex: 2,
			Explanation:  "Paris has been the French capital since 508 AD.",
		},
	}
}
