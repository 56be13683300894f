// server runs the employee management HTTP API and the gRPC health listener.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	approvalservice "employee-management/backend/internal/approval/service"
	attendancehandler "employee-management/backend/internal/attendance/handler"
	attendancerepo "employee-management/backend/internal/attendance/repository"
	attendanceservice "employee-management/backend/internal/attendance/service"
	"employee-management/backend/internal/audit"
	audithandler "employee-management/backend/internal/audit/handler"
	auditrepo "employee-management/backend/internal/audit/repository"
	"employee-management/backend/internal/config"
	"employee-management/backend/internal/db"
	employeehandler "employee-management/backend/internal/employee/handler"
	employeerepo "employee-management/backend/internal/employee/repository"
	employeeservice "employee-management/backend/internal/employee/service"
	healthhandler "employee-management/backend/internal/health/handler"
	identityhandler "employee-management/backend/internal/identity/handler"
	identityservice "employee-management/backend/internal/identity/service"
	leavehandler "employee-management/backend/internal/leave/handler"
	leaverepo "employee-management/backend/internal/leave/repository"
	leaveservice "employee-management/backend/internal/leave/service"
	"employee-management/backend/internal/logs"
	organizationhandler "employee-management/backend/internal/organization/handler"
	organizationrepo "employee-management/backend/internal/organization/repository"
	organizationservice "employee-management/backend/internal/organization/service"
	payrollhandler "employee-management/backend/internal/payroll/handler"
	payrollrepo "employee-management/backend/internal/payroll/repository"
	payrollservice "employee-management/backend/internal/payroll/service"
	"employee-management/backend/internal/platform/rbac"
	"employee-management/backend/internal/policy/engine"
	principalhandler "employee-management/backend/internal/principal/handler"
	principalrepo "employee-management/backend/internal/principal/repository"
	principalservice "employee-management/backend/internal/principal/service"
	rolerepo "employee-management/backend/internal/role/repository"
	salaryhandler "employee-management/backend/internal/salary/handler"
	salaryrepo "employee-management/backend/internal/salary/repository"
	salaryservice "employee-management/backend/internal/salary/service"
	"employee-management/backend/internal/security"
	"employee-management/backend/internal/server"
	"employee-management/backend/internal/server/middleware"
	sessionrepo "employee-management/backend/internal/session/repository"
	"employee-management/backend/internal/telemetry"
	telemetryotel "employee-management/backend/internal/telemetry/otel"
	"employee-management/backend/internal/telemetry/producer"
)

// shutdownTimeout bounds graceful shutdown of the listeners and the telemetry exporters.
const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logs.Init(logs.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}).WithField("component", "server")
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Options{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("otel shutdown")
		}
	}()

	events := telemetry.Fanout{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	if kp := producer.NewKafkaProducer(cfg.KafkaBrokersList(), cfg.ActivityKafkaTopic); kp != nil {
		defer kp.Close()
		events = append(events, kp)
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer conn.Close()
	tx := db.NewTransactor(conn)

	signer, pub, err := security.LoadKeyPair(cfg.JWTPrivateKey, cfg.JWTPublicKey)
	if err != nil {
		return fmt.Errorf("jwt keys: %w", err)
	}
	tokens := security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	policy, err := engine.NewOPAEvaluator(ctx, rbac.Policy)
	if err != nil {
		return fmt.Errorf("policy: %w", err)
	}

	principals := principalrepo.NewPostgresRepository(conn)
	roles := rolerepo.NewPostgresRepository(conn)
	employees := employeerepo.NewPostgresRepository(conn)
	sessions := sessionrepo.NewPostgresRepository(conn)
	audits := auditrepo.NewPostgresRepository(conn)
	salaries := salaryrepo.NewPostgresRepository(conn)

	auditLogger := audit.NewLogger(audits, middleware.ClientIP)
	gate := rbac.NewGate(principals, rbac.NewCachedRoles(roles, cfg.RoleCacheSize, cfg.RoleTTL()), policy)
	resolver := identityservice.NewResolver(principals, employees)
	approvals := approvalservice.NewService(principals, employees, tx, auditLogger, events)
	org := organizationservice.NewService(organizationrepo.NewPostgresRepository(conn), employees)

	auth := identityservice.NewAuthService(identityservice.Deps{
		Principals: principals,
		Roles:      roles,
		Profiles:   employees,
		Sessions:   sessions,
		Tx:         tx,
		Hasher:     hasher,
		Tokens:     tokens,
		Audit:      auditLogger,
		Events:     events,
		ResetTTL:   cfg.ResetTTL(),
	})

	health := healthhandler.NewHandler(conn, policy)
	router := server.NewRouter(server.Deps{
		Tokens:      tokens,
		Gate:        gate,
		AuditRepo:   audits,
		Events:      events,
		CORSOrigins: cfg.CORSOrigins(),
		LoginLimit: middleware.RateLimitConfig{
			RequestsPerSecond: cfg.LoginRatePerSec,
			Burst:             cfg.LoginRateBurst,
		},
		Health: health,
		Auth:   identityhandler.NewAuthHandler(auth),
		Users: principalhandler.NewHandler(
			principalservice.NewService(principals, roles, sessions, approvals, hasher)),
		Employees: employeehandler.NewHandler(
			employeeservice.NewService(employees, resolver, org, tx, events)),
		Organization: organizationhandler.NewHandler(org),
		Attendance: attendancehandler.NewHandler(
			attendanceservice.NewService(attendancerepo.NewPostgresRepository(conn), resolver)),
		Leave: leavehandler.NewHandler(
			leaveservice.NewService(leaverepo.NewPostgresRepository(conn), resolver, events)),
		Salary: salaryhandler.NewHandler(
			salaryservice.NewService(salaries, employees, principals, resolver, events)),
		Payroll: payrollhandler.NewHandler(
			payrollservice.NewService(payrollrepo.NewPostgresRepository(conn), salaries, resolver, events)),
		AuditLogs: audithandler.NewHandler(audits),
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	healthSrv := healthhandler.NewServer(health)
	grpcSrv := server.NewGRPCServer(healthSrv)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.WithField("addr", cfg.GRPCAddr).Info("gRPC health listening")
		healthSrv.SetServing()
		if err := grpcSrv.Serve(lis); err != nil {
			return fmt.Errorf("grpc: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		healthSrv.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcSrv.GracefulStop()
		return httpSrv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if !telemetry.Drain(drainCtx) {
		log.Warn("activity events still in flight at shutdown")
	}
	if err != nil {
		return err
	}
	log.Info("stopped")
	return nil
}
