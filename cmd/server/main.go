package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"eventreg/config"
	_ "eventreg/docs"
	"eventreg/internal/adapters/auth"
	"eventreg/internal/adapters/email"
	"eventreg/internal/adapters/notify"
	deliveryhttp "eventreg/internal/delivery/http"
	"eventreg/internal/delivery/http/controllers"
	"eventreg/internal/domain"
	"eventreg/internal/metrics"
	"eventreg/internal/platform/otel"
	"eventreg/internal/repository/memory"
	"eventreg/internal/repository/postgres"
	"eventreg/internal/services"
)

const (
	serviceName       = "eventreg"
	shutdownTimeout   = 15 * time.Second
	workerConcurrency = 5
	devTokenExpiry    = 24 * time.Hour
)

// @title Event Registration API
// @version 1.0
// @description Admission, payment approval, ticketing and attendance for campus events.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	issueToken := flag.String("issue-token", "", "print a bearer token for the given user id and exit")
	attrs := attributeFlag{}
	flag.Var(attrs, "attr", "participant attribute key=value carried by -issue-token (repeatable)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := config.NewLogger()

	if *issueToken != "" {
		token, err := auth.NewJWTIssuer(cfg.JWTSecret).Issue(domain.Caller{UserID: *issueToken, Attributes: attrs}, devTokenExpiry)
		if err != nil {
			log.Fatalf("issue token: %v", err)
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// attributeFlag collects repeated -attr key=value pairs.
type attributeFlag map[string]string

func (a attributeFlag) String() string {
	pairs := make([]string, 0, len(a))
	for k, v := range a {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (a attributeFlag) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(k) == "" {
		return fmt.Errorf("attribute %q must be key=value", s)
	}
	a[strings.TrimSpace(k)] = strings.TrimSpace(v)
	return nil
}

// repositories bundles the storage ports selected by STORAGE_DRIVER.
type repositories struct {
	events    domain.EventRepository
	inventory domain.InventoryRepository
	regs      domain.RegistrationRepository
	audit     domain.AuditRepository
	tx        domain.TxManager
	ping      controllers.Pinger
	close     func() error
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories, error) {
	if cfg.StorageDriver == "memory" {
		logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return &repositories{
			events:    memory.NewEventRepository(store),
			inventory: memory.NewInventoryRepository(store),
			regs:      memory.NewRegistrationRepository(store),
			audit:     memory.NewAuditRepository(store),
			tx:        store,
			ping:      store,
			close:     func() error { return nil },
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DBUrl, logger)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &repositories{
		events:    postgres.NewEventRepository(db),
		inventory: postgres.NewInventoryRepository(db),
		regs:      postgres.NewRegistrationRepository(db),
		audit:     postgres.NewAuditRepository(db),
		tx:        postgres.NewTxManager(db),
		ping:      controllers.PingFunc(db.PingContext),
		close:     db.Close,
	}, nil
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdownTracing, err := otel.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown", "error", err)
		}
	}()
	metrics.Register(prometheus.DefaultRegisterer)

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := repos.close(); err != nil {
			logger.Warn("close store", "error", err)
		}
	}()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.AWSRegion,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretKey,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	checks := map[string]controllers.Pinger{"store": repos.ping}
	notifier := notify.NewNoopNotifier(logger)
	var worker *asynq.Server
	var workerMux *asynq.ServeMux
	if cfg.RedisAddr != "" {
		redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		client := asynq.NewClient(redisOpt)
		defer client.Close()
		notifier = notify.NewQueueNotifier(client, logger)

		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		checks["queue"] = controllers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})

		worker = notify.NewServer(redisOpt, workerConcurrency, logger)
		workerMux = notify.NewServeMux(notify.NewHandler(emailService, logger))
	} else {
		logger.Info("REDIS_ADDR not set; notifications are disabled")
	}

	signer := auth.NewTicketSigner(cfg.QRSigningSecret)
	timeout := cfg.RequestTimeout
	ledger := services.NewInventoryLedger(repos.inventory, repos.events, repos.tx,
		services.LedgerOptions{ReleaseOnCancelAfterStart: cfg.ReleaseOnCancelAfterStart}, logger)
	forms := services.NewFormService(repos.events, repos.tx, logger, timeout)
	tickets := services.NewTicketService(repos.regs, repos.events, signer, nil, cfg.TicketIDMaxAttempts, logger)

	mux := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Events: controllers.NewEventController(logger,
			services.NewEventService(repos.events, repos.inventory, ledger, repos.tx, logger, timeout), forms),
		Registrations: controllers.NewRegistrationController(logger,
			services.NewAdmissionService(repos.events, repos.regs, ledger, forms, tickets, repos.tx, notifier, logger, timeout),
			services.NewRegistrationService(repos.events, repos.regs, ledger, repos.tx, notifier, logger, timeout)),
		Payments: controllers.NewPaymentController(logger,
			services.NewPaymentService(repos.events, repos.regs, ledger, tickets, repos.tx, notifier, logger, timeout)),
		Attendance: controllers.NewAttendanceController(logger,
			services.NewAttendanceService(repos.events, repos.regs, repos.audit, signer, repos.tx, logger, timeout)),
		Tickets: controllers.NewTicketController(logger, tickets),
		Health:  controllers.NewHealthController(logger, checks),
	}, auth.NewJWTVerifier(cfg.JWTSecret), logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           deliveryhttp.NewHandler(mux, logger, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", "port", cfg.Port, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if worker != nil {
		g.Go(func() error {
			logger.Info("starting notification worker", "queue", notify.Queue)
			if err := worker.Start(workerMux); err != nil {
				return fmt.Errorf("notification worker: %w", err)
			}
			<-gctx.Done()
			worker.Shutdown()
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
