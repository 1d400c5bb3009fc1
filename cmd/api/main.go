package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cmlabs-hris/presence-ledger-go/internal/config"
	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/attendance"
	"github.com/cmlabs-hris/presence-ledger-go/internal/domain/leave"
	appHTTP "github.com/cmlabs-hris/presence-ledger-go/internal/handler/http"
	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/database"
	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/geo"
	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/presence-ledger-go/internal/pkg/telemetry"
	"github.com/cmlabs-hris/presence-ledger-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/presence-ledger-go/internal/repository/sqlite"
	"github.com/cmlabs-hris/presence-ledger-go/internal/service/accounting"
	attendanceService "github.com/cmlabs-hris/presence-ledger-go/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/presence-ledger-go/internal/service/leave"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const version = "v1.0.0"

type repositories struct {
	attendance attendance.Repository
	leave      leave.Repository
	tx         leave.Transactor
	close      func()
}

func main() {
	mintToken := flag.String("mint-token", "", "print an access token for the given user id and exit")
	mintRole := flag.String("mint-role", string(jwt.RoleEmployee), "role claim for -mint-token (admin or employee)")
	mintEmployeeID := flag.String("mint-employee-id", "", "employee_id claim for -mint-token")
	mintName := flag.String("mint-name", "", "name claim for -mint-token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logLevel := parseLogLevel(cfg.App.LogLevel)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	if *mintToken != "" {
		token, expiresAt, err := JWTService.GenerateAccessToken(jwt.Identity{
			UserID:     *mintToken,
			EmployeeID: *mintEmployeeID,
			Name:       *mintName,
			Role:       jwt.Role(*mintRole),
		})
		if err != nil {
			fmt.Println("Error minting token:", err)
			os.Exit(1)
		}
		fmt.Println(token)
		fmt.Fprintf(os.Stderr, "expires at %s\n", time.Unix(expiresAt, 0).UTC().Format(time.RFC3339))
		return
	}

	ctx := context.Background()

	shutdownTelemetry := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.OTLPInsecure,
	})
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		slog.Error("Error opening storage", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer repos.close()

	accrualPeriod, err := leaveService.ParseAccrualPeriod(cfg.Leave.AccrualPeriod)
	if err != nil {
		slog.Error("Invalid leave policy", "error", err)
		os.Exit(1)
	}
	policy := leaveService.Policy{
		AnnualAllowance: cfg.Leave.AnnualAllowance,
		MonthlyCap:      cfg.Leave.MonthlyCap,
		AccrualPeriod:   accrualPeriod,
	}
	site := geo.Site{
		Name:         "office",
		Center:       geo.Point{Latitude: cfg.Office.Latitude, Longitude: cfg.Office.Longitude},
		RadiusMeters: cfg.Office.RadiusMeters,
	}

	ledger := attendanceService.NewLedger(repos.attendance, cfg.Location())
	workflow := leaveService.NewWorkflow(repos.leave, repos.tx, policy)
	accountingService := accounting.NewService(ledger, workflow, site, nil)

	attendanceHandler := appHTTP.NewAttendanceHandler(accountingService)
	leaveHandler := appHTTP.NewLeaveHandler(accountingService)
	dashboardHandler := appHTTP.NewDashboardHandler(accountingService)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Env:            cfg.App.Env,
			Version:        version,
			LogLevel:       logLevel,
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
		},
		JWTService,
		attendanceHandler,
		leaveHandler,
		dashboardHandler,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      otelhttp.NewHandler(router, cfg.Telemetry.ServiceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr, "driver", cfg.Database.Driver, "timezone", cfg.App.Timezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown error", "error", err)
	}
}

func openRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return repositories{}, err
		}
		return repositories{
			attendance: sqlite.NewAttendanceRepository(store),
			leave:      sqlite.NewLeaveRequestRepository(store),
			tx:         store,
			close:      func() { _ = store.Close() },
		}, nil
	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
			MaxConns: cfg.Database.MaxConns,
			MinConns: cfg.Database.MinConns,
		})
		if err != nil {
			return repositories{}, err
		}
		if err := postgresql.ApplySchema(ctx, db); err != nil {
			db.Close()
			return repositories{}, err
		}
		return repositories{
			attendance: postgresql.NewAttendanceRepository(db),
			leave:      postgresql.NewLeaveRequestRepository(db),
			tx:         postgresql.NewTransactor(db),
			close:      db.Close,
		}, nil
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
