package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"plansey/internal/bot"
	"plansey/internal/repository"
	"plansey/internal/rest"
	"plansey/internal/service"
)

const (
	shutdownTimeout = 10 * time.Second
	reminderTimeout = 30 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the Telegram bot and the reminder scheduler",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, closeDB, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	if cfg.SeedCatalog {
		if err := repository.SeedCatalog(ctx, db, repository.DefaultCatalog); err != nil {
			return err
		}
	}

	userRepo := repository.NewUserRepository(db)
	plannerRepo := repository.NewPlannerRepository(db)
	weddingRepo := repository.NewWeddingRepository(db)
	chapterRepo := repository.NewChapterRepository(db)
	weddingTaskRepo := repository.NewWeddingTaskRepository(db)

	guard := service.NewOwnershipGuard(plannerRepo)
	authSvc := service.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.BcryptCost)
	weddingSvc := service.NewWeddingService(weddingRepo, plannerRepo, guard)
	checklistSvc := service.NewChecklistService(chapterRepo, weddingTaskRepo, plannerRepo, guard)
	dashboardSvc := service.NewDashboardService(userRepo, weddingSvc, checklistSvc)
	reminderSvc := service.NewReminderService(plannerRepo, weddingTaskRepo)

	server := &http.Server{
		Addr:              cfg.HTTP.Address,
		ReadHeaderTimeout: cfg.HTTP.Timeout,
		Handler: rest.NewRouter(logger, rest.Deps{
			Auth:       authSvc,
			Weddings:   weddingSvc,
			Checklists: checklistSvc,
			Dashboards: dashboardSvc,
			DB:         repository.NewHealth(db),
		}, cfg.HTTP.Timeout),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.BotEnabled() {
		telegramBot, err := bot.New(cfg.Telegram.Token, logger.Named("bot"), userRepo, authSvc, checklistSvc, reminderSvc)
		if err != nil {
			stop()
			_ = g.Wait()
			return err
		}

		scheduler := service.NewSchedulerService(time.Local, logger.Named("scheduler"))
		if err := scheduler.Schedule("reminders", cfg.Telegram.ReminderTime, cfg.Telegram.ReminderInterval, func(jobCtx context.Context) {
			jobCtx, cancel := context.WithTimeout(jobCtx, reminderTimeout)
			defer cancel()
			if err := telegramBot.SendReminders(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("send reminders", zap.Error(err))
			}
		}); err != nil {
			stop()
			_ = g.Wait()
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()

		g.Go(func() error {
			return telegramBot.Start(gctx)
		})
	} else {
		logger.Info("TELEGRAM_TOKEN not set, bot disabled")
	}

	err = g.Wait()
	logger.Info("shutdown complete")
	return err
}
