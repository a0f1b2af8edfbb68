package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mcq-service/internal/app"
	"mcq-service/internal/auth"
	"mcq-service/internal/config"
	"mcq-service/internal/domain"
	"mcq-service/internal/infra/memory"
	pgloader "mcq-service/internal/infra/postgres"
	redisstore "mcq-service/internal/infra/redis"
	"mcq-service/internal/infra/sqlite"
	transport "mcq-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the MCQ server",
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

	if cfg.UsesDefaultSecret() {
		log.Printf("WARNING: auth.secret is the built-in development key; set AUTH_SECRET or auth.secret before exposing this server")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

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
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestions())
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = pgloader.NewQuestionLoader(pool)
	}

	store := memory.NewQuestionStore()
	seeded, err := store.Seed(ctx, loader)
	if err != nil {
		return fmt.Errorf("seed questions: %w", err)
	}
	log.Printf("seeded %d questions", seeded)

	answers, closeAnswers, err := openAnswerLog(ctx, cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeAnswers()

	var revocations auth.Revocations = memory.NewRevocationStore()
	if redisClient != nil {
		revocations = redisstore.NewRevocationStore(redisClient)
	}

	directory, err := buildDirectory(cfg)
	if err != nil {
		return err
	}
	issuer := auth.NewTokenIssuer(cfg.Auth.Secret, config.TTLDuration(cfg.Auth.TokenTTL, 8*time.Hour), revocations)
	service := app.NewQuestionService(store, answers)

	server := &http.Server{
		Addr: ":" + finalPort,
		Handler: transport.NewRouter(transport.RouterConfig{
			Service:     service,
			Directory:   directory,
			Issuer:      issuer,
			AllowSignup: cfg.Auth.AllowSignup,
			CORSOrigins: cfg.Server.CORSOrigins,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("starting mcq service on :%s (answers=%s)", finalPort, cfg.Answers.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openAnswerLog(ctx context.Context, cfg config.Config, redisClient *redis.Client) (app.AnswerLog, func(), error) {
	switch cfg.Answers.Driver {
	case config.AnswersRedis:
		if redisClient == nil {
			return nil, nil, fmt.Errorf("answers driver redis needs redis.addr")
		}
		return redisstore.NewAnswerLog(redisClient, config.TTLDuration(cfg.Redis.TTL, 7*24*time.Hour)), func() {}, nil
	case config.AnswersSQLite:
		answerLog, err := sqlite.Open(ctx, cfg.Answers.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite answers: %w", err)
		}
		return answerLog, func() {
			if err := answerLog.Close(); err != nil {
				log.Printf("close sqlite answers: %v", err)
			}
		}, nil
	default:
		return memory.NewAnswerLog(), func() {}, nil
	}
}

// buildDirectory loads the configured accounts, falling back to the demo
// logins when none are configured.
func buildDirectory(cfg config.Config) (*auth.Directory, error) {
	directory := auth.NewDirectory(0)
	if len(cfg.Auth.Users) == 0 {
		log.Printf("no accounts configured; enabling demo logins admin@example.com and user@example.com")
		return directory, auth.SeedDemoAccounts(directory)
	}
	for _, u := range cfg.Auth.Users {
		err := directory.Add(domain.Account{
			ID:           u.ID,
			Name:         u.Name,
			Email:        u.Email,
			Role:         domain.Role(u.Role),
			PasswordHash: u.PasswordHash,
		})
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", u.Email, err)
		}
	}
	return directory, nil
}

// sampleQuestions is the built-in question set used when no database is configured.
func sampleQuestions() []domain.Question {
	day := func(d int) time.Time { return time.Date(2023, time.June, d, 0, 0, 0, 0, time.UTC) }
	return []domain.Question{
		{
			ID:            "1",
			Title:         "What is the capital of France?",
			Options:       []string{"London", "Paris", "Berlin", "Madrid"},
			CorrectAnswer: "Paris",
			IsPublished:   true,
			CreatedAt:     day(10),
			UpdatedAt:     day(10),
		},
		{
			ID:            "2",
			Title:         "Which programming language is React built with?",
			Options:       []string{"Java", "Python", "JavaScript", "C++"},
			CorrectAnswer: "JavaScript",
			IsPublished:   true,
			CreatedAt:     day(15),
			UpdatedAt:     day(15),
		},
		{
			ID:            "3",
			Title:         "What year was the first iPhone released?",
			Options:       []string{"2005", "2007", "2009", "2010"},
			CorrectAnswer: "2007",
			IsPublished:   false,
			CreatedAt:     day(20),
			UpdatedAt:     day(20),
		},
	}
}
