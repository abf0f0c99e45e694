package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"ticketdesk/internal/auditlog"
	"ticketdesk/internal/gateway/rest"
	"ticketdesk/internal/interaction"
	"ticketdesk/internal/interaction/metrics"
	"ticketdesk/internal/platform/config"
	"ticketdesk/internal/platform/httpserver"
	"ticketdesk/internal/platform/logger"
	"ticketdesk/internal/platform/redis"
	"ticketdesk/internal/schedule"
	"ticketdesk/internal/ticket"
	httptransport "ticketdesk/internal/transport/http"
)

const auditMirrorBuffer = 256

// main wires dependencies and owns the process lifecycle. Business
// logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	tickets, err := config.LoadTickets(cfg.TicketsPath)
	if err != nil {
		return err
	}

	api, err := rest.New(cfg.BotToken, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	// Deferred deletions: Redis keeps grace windows across restarts;
	// without Redis the in-memory scheduler is best effort. The runner
	// starts only after the service it executes through is built, so a
	// task recovered at startup cannot fire into a nil service.
	var svc *ticket.Service
	executor := func(ctx context.Context, task schedule.Task) error {
		return svc.ExecuteTask(ctx, task)
	}

	var sched schedule.Scheduler
	var runScheduler func() error
	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		redisSched, err := schedule.NewRedis(redisClient.Client, executor, log)
		if err != nil {
			return err
		}
		runScheduler = func() error { return redisSched.Run(ctx) }
		sched = redisSched
	} else {
		memSched, err := schedule.NewMemory(executor, log)
		if err != nil {
			return err
		}
		defer memSched.Close()
		sched = memSched
		log.Warn("redis not configured, pending deletions will not survive a restart")
	}

	// Audit mirror: only wired when brokers are configured.
	var auditOpts []auditlog.Option
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := auditlog.NewPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		defer publisher.Close()

		inbox := make(chan auditlog.Entry, auditMirrorBuffer)
		worker := auditlog.NewWorker(publisher, inbox, log)
		group.Go(func() error {
			if err := worker.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		auditOpts = append(auditOpts, auditlog.WithMirror(inbox))
	}

	audit, err := auditlog.NewActionLogger(api, cfg.GuildID, tickets.LoggingChannel, log, auditOpts...)
	if err != nil {
		return err
	}

	provisioner, err := ticket.NewProvisioner(api, cfg.GuildID, tickets.StaffRole, log)
	if err != nil {
		return err
	}
	registry, err := ticket.NewRegistry(api, cfg.GuildID, log)
	if err != nil {
		return err
	}
	svc, err = ticket.NewService(api, cfg.GuildID, tickets, provisioner, registry, audit, sched, log)
	if err != nil {
		return err
	}
	if runScheduler != nil {
		group.Go(runScheduler)
	}

	router, err := interaction.NewRouter(tickets.StaffRole, log, metrics.New())
	if err != nil {
		return err
	}
	handlers, err := ticket.NewHandlers(svc, api, tickets, cfg.GuildID, log)
	if err != nil {
		return err
	}
	handlers.Register(router)

	webhook, err := httptransport.NewHandler(router, api, cfg.AppID, cfg.PublicKey, log)
	if err != nil {
		return err
	}
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(webhook))

	group.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
