package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"arcquiz-service/internal/app"
	"arcquiz-service/internal/domain"
	pginfra "arcquiz-service/internal/infra/postgres"
	redisinfra "arcquiz-service/internal/infra/redis"
	pgmigrations "arcquiz-service/migrations"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestQuizEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := openBun(t, pgURL)
	defer db.Close()
	migrateDB(t, ctx, db)
	seedQuestions(t, ctx, db, sampleQuestions())

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	questions, err := pginfra.NewBankLoader(pool).LoadQuestions(ctx)
	if err != nil {
		t.Fatalf("load questions: %v", err)
	}
	bank, err := app.NewBank(questions)
	if err != nil {
		t.Fatalf("new bank: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	registry := redisinfra.NewSessionRegistry(redisClient, 5*time.Minute)
	board := pginfra.NewLeaderboardStore(db)
	service := app.NewQuizServiceWithRand(bank, registry, board, rand.New(rand.NewSource(99)))

	id, view, err := service.Start(ctx, "Alice", 2)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for answered := 0; answered < 2; answered++ {
		res, err := service.Submit(ctx, id, correctChoice(t, view))
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if !res.Correct {
			t.Fatalf("expected correct answer, got %+v", res)
		}
		if !res.Done {
			view, err = service.Question(ctx, id)
			if err != nil {
				t.Fatalf("next question: %v", err)
			}
		}
	}

	result, err := service.Finish(ctx, id)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if result.Score != 2 || result.Total != 2 {
		t.Fatalf("expected 2/2, got %d/%d", result.Score, result.Total)
	}

	top, err := board.TopN(ctx, 10)
	if err != nil {
		t.Fatalf("topn: %v", err)
	}
	if len(top) != 1 || top[0].PlayerLabel != "Alice" || top[0].Percent != 100 {
		t.Fatalf("expected persisted perfect score for Alice, got %+v", top)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func openBun(t *testing.T, dsn string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func migrateDB(t *testing.T, ctx context.Context, db *bun.DB) {
	t.Helper()
	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func seedQuestions(t *testing.T, ctx context.Context, db *bun.DB, questions []domain.Question) {
	t.Helper()
	for _, q := range questions {
		opts, err := json.Marshal(q.Options)
		if err != nil {
			t.Fatalf("marshal options: %v", err)
		}
		_, err = db.ExecContext(ctx,
			`INSERT INTO questions (id, prompt, options, correct_index, explanation) VALUES (?, ?, ?::jsonb, ?, ?) ON CONFLICT (id) DO NOTHING`,
			q.ID, q.Prompt, string(opts), q.CorrectIndex, q.Explanation)
		if err != nil {
			t.Fatalf("insert question %s: %v", q.ID, err)
		}
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Prompt: "First?", Options: []string{"right one", "wrong one"}, CorrectIndex: 0, Explanation: "first"},
		{ID: "q2", Prompt: "Second?", Options: []string{"wrong here", "right here", "wrong too"}, CorrectIndex: 1},
	}
}

// correctChoice locates the known-correct option; seeded correct
// answers are prefixed "right".
func correctChoice(t *testing.T, view domain.QuestionView) int {
	t.Helper()
	for i, opt := range view.Options {
		if strings.HasPrefix(opt, "right") {
			return i
		}
	}
	t.Fatalf("no correct option in %v", view.Options)
	return -1
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
