package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	_ "easyfood/docs"
	"easyfood/internal/config"
	"easyfood/internal/domain/order"
	"easyfood/internal/domain/poll"
	"easyfood/internal/domain/user"
	"easyfood/internal/domain/vote"
	"easyfood/internal/gitmeta"
	api "easyfood/internal/http"
	"easyfood/internal/metrics"
	"easyfood/internal/notify"
	"easyfood/internal/platform/database"
	jwtpkg "easyfood/internal/platform/jwt"
	"easyfood/internal/repository/memory"
	"easyfood/internal/repository/postgres"
	"easyfood/internal/session"
	"easyfood/internal/worker"
)

// @title           EasyFood API
// @version         1.0
// @description     Group food ordering with live poll sessions
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	cfg := config.Load()
	metrics.Register()
	logger := slog.Default()
	api.SetLogger(logger)

	var (
		db        *sql.DB
		pollRepo  poll.Repository
		orderRepo order.Repository
		userRepo  user.Repository
		voteRepo  vote.Repository
	)

	if cfg.DB_DSN != "" {
		var err error
		db, err = database.NewPostgres(cfg.DB_DSN)
		if err != nil {
			log.Fatalf("db connect error: %v", err)
		}
		defer db.Close()

		pollRepo = postgres.NewPollRepo(db)
		orderRepo = postgres.NewOrderRepo(db)
		userRepo = postgres.NewUserRepo(db)
		voteRepo = postgres.NewVoteRepo(db)
	} else {
		log.Println("DB_DSN not set, using in-memory store")
		pollRepo = memory.NewPollStore()
		orderRepo = memory.NewOrderStore()
		userRepo = memory.NewUserStore()
		voteRepo = memory.NewVoteStore()
	}

	userSvc := user.NewService(userRepo)
	pollSvc := poll.NewService(pollRepo)
	voteSvc := vote.NewService(voteRepo, pollRepo)

	jwtMgr := jwtpkg.NewManager(cfg.JWTSecret, "easyfood")

	sessions := session.NewManager(pollRepo, orderRepo, userRepo, &notify.LogNotifier{Logger: logger}, logger)
	defer sessions.Close()

	orderCh := make(chan worker.OrderEvent, 100)
	statsWorker := worker.NewOrderStatsWorker(orderCh, logger)

	commits := gitmeta.NewClient(cfg.GitHubRepo)

	router := api.NewRouter(userSvc, pollSvc, voteSvc, sessions, statsWorker, commits, jwtMgr, orderCh, db)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go statsWorker.Run(ctx)

	go func() {
		log.Printf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	<-stop
	log.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown error: %v", err)
	}

	log.Println("server stopped")
}
