// Package server orchestrates all components: NATS client, DB, services, dispatcher, HTTP health.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	comms "github.com/nats-io/nats.go"

	"github.com/pulselog/telemetry-gateway/internal/config"
	"github.com/pulselog/telemetry-gateway/pkg/bootstrap"
	"github.com/pulselog/telemetry-gateway/pkg/commsutil"
	"github.com/pulselog/telemetry-gateway/pkg/db"
	"github.com/pulselog/telemetry-gateway/pkg/events"
	"github.com/pulselog/telemetry-gateway/pkg/rpc"
	"github.com/pulselog/telemetry-gateway/pkg/services"
)

const logPrefix = "server:server"

// Server is the telemetry-gateway orchestrator.
type Server struct {
	cfg        *config.Config
	nc         *comms.Conn
	pool       *pgxpool.Pool
	httpServer *http.Server
	subject    string
	started    time.Time
}

// health is the /health response body.
type health struct {
	Status    string          `json:"status"`
	Checks    map[string]bool `json:"checks"`
	Timestamp string          `json:"timestamp"`
}

// Run starts the server, blocks until shutdown signal, then cleans up.
func Run() error {
	// Setup structured logging
	var logLevel slog.Level
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info(fmt.Sprintf("%s - Starting telemetry-gateway", logPrefix))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &Server{cfg: cfg, started: time.Now()}

	// Step 1: Load bootstrap config
	bootstrapCfg, err := bootstrap.LoadBootstrapConfig(cfg.BootstrapFile)
	if err != nil {
		return fmt.Errorf("%s - failed to load bootstrap config: %w", logPrefix, err)
	}

	// Determine gateway subject: env override, then bootstrap, then default
	gatewaySubject := cfg.GatewaySubject
	if gatewaySubject == "" {
		gatewaySubject = bootstrapCfg.Subjects.Gateway
	}
	if gatewaySubject == "" {
		gatewaySubject = commsutil.SubjectGateway
	}
	s.subject = gatewaySubject
	slog.Info(fmt.Sprintf("%s - Gateway subject: %s", logPrefix, gatewaySubject))

	// Step 2: Connect to NATS
	nc, err := commsutil.Connect(cfg.COMMSURL, cfg.COMMSName)
	if err != nil {
		return fmt.Errorf("%s - failed to connect to NATS: %w", logPrefix, err)
	}
	s.nc = nc
	slog.Info(fmt.Sprintf("%s - Connected to NATS at %s", logPrefix, cfg.COMMSURL))

	// Step 3: Connect to database
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		nc.Close()
		return fmt.Errorf("%s - failed to connect to database: %w", logPrefix, err)
	}
	s.pool = pool

	// Step 3b: Run migrations if enabled
	if cfg.RunMigrations {
		migrationSQL, err := db.LoadMigrationFiles(cfg.MigrationPath)
		if err != nil {
			pool.Close()
			nc.Close()
			return fmt.Errorf("%s - failed to load migrations: %w", logPrefix, err)
		}
		if err := db.RunMigrations(ctx, pool, migrationSQL); err != nil {
			pool.Close()
			nc.Close()
			return fmt.Errorf("%s - failed to run migrations: %w", logPrefix, err)
		}
		if err := db.SeedBootstrap(ctx, pool, cfg.BootstrapFile); err != nil {
			pool.Close()
			nc.Close()
			return fmt.Errorf("%s - failed to seed bootstrap parameters: %w", logPrefix, err)
		}
	}

	// Step 4: Create repository, publisher and services
	repo := db.NewRepository(pool)
	publisherOpts := &events.CommsPublisherOpts{}
	if cfg.RecordEventSubject != "" {
		publisherOpts.RecordSubject = cfg.RecordEventSubject
	} else if bootstrapCfg.Subjects.RecordEvent != "" {
		publisherOpts.RecordSubject = bootstrapCfg.Subjects.RecordEvent
	}
	if cfg.AccountEventSubject != "" {
		publisherOpts.AccountSubject = cfg.AccountEventSubject
	} else if bootstrapCfg.Subjects.AccountEvent != "" {
		publisherOpts.AccountSubject = bootstrapCfg.Subjects.AccountEvent
	}
	publisher := events.NewCommsPublisher(nc, publisherOpts)

	// Step 5: Build the dispatch table from the service interfaces. Duplicate
	// method names across services fail here, at startup.
	table, err := rpc.NewMethodTable(
		rpc.ServiceEntry{
			Name:  "account",
			Iface: rpc.InterfaceType((*services.AccountService)(nil)),
			Impl:  services.NewAccountService(repo, publisher),
		},
		rpc.ServiceEntry{
			Name:  "provisioning",
			Iface: rpc.InterfaceType((*services.ProvisioningService)(nil)),
			Impl:  services.NewProvisioningService(repo, publisher),
		},
		rpc.ServiceEntry{
			Name:  "record",
			Iface: rpc.InterfaceType((*services.RecordService)(nil)),
			Impl:  services.NewRecordService(repo, publisher),
		},
		rpc.ServiceEntry{
			Name:  "reporting",
			Iface: rpc.InterfaceType((*services.ReportingService)(nil)),
			Impl:  services.NewReportingService(repo),
		},
	)
	if err != nil {
		pool.Close()
		nc.Close()
		return fmt.Errorf("%s - failed to build method table: %w", logPrefix, err)
	}
	disp := rpc.NewDispatcher(table)

	// Step 6: Subscribe and serve requests
	requestTimeout := cfg.RequestTimeout
	sub, err := nc.Subscribe(gatewaySubject, func(msg *comms.Msg) {
		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		var resp *rpc.ResponseEnvelope
		env, err := rpc.DecodeRequest(table, string(msg.Data))
		if err != nil {
			slog.Warn(fmt.Sprintf("%s - rejected request: %v", logPrefix, err))
			resp = rpc.Failure(err)
		} else {
			for _, w := range env.Warnings {
				slog.Warn(fmt.Sprintf("%s - %s parameter %s: %s", logPrefix, env.Method, w.Path, w.Reason))
			}
			resp = disp.Dispatch(reqCtx, env)
		}

		payload, err := resp.Encode()
		if err != nil {
			slog.Error(fmt.Sprintf("%s - failed to encode response: %v", logPrefix, err))
			return
		}
		msg.Respond([]byte(payload))
	})
	if err != nil {
		pool.Close()
		nc.Close()
		return fmt.Errorf("%s - failed to subscribe to %s: %w", logPrefix, gatewaySubject, err)
	}
	slog.Info(fmt.Sprintf("%s - Subscribed to %s", logPrefix, gatewaySubject))

	// Step 7: Start HTTP health server
	healthTimeout := cfg.HealthCheckTimeout
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHome())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		healthCtx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		h := s.checkHealth(healthCtx)
		w.Header().Set("Content-Type", "application/json")
		if h.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(h)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	httpAddr := cfg.HTTPAddr
	if httpAddr == "" {
		httpAddr = fmt.Sprintf(":%d", cfg.HTTPPort)
	}
	s.httpServer = &http.Server{Addr: httpAddr, Handler: mux}
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP health server listening on %s", logPrefix, httpAddr))
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s - HTTP server error: %v", logPrefix, err))
		}
	}()

	slog.Info(fmt.Sprintf("%s - Telemetry gateway is ready", logPrefix))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))

	// Graceful shutdown
	sub.Unsubscribe()
	s.httpServer.Shutdown(ctx)
	nc.Drain()
	pool.Close()

	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}

// checkHealth pings the database and reports overall status.
func (s *Server) checkHealth(ctx context.Context) *health {
	h := &health{
		Status:    "healthy",
		Checks:    map[string]bool{"database": true, "comms": true},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.pool.Ping(ctx); err != nil {
		h.Checks["database"] = false
		h.Status = "unhealthy"
	}
	if !s.nc.IsConnected() {
		h.Checks["comms"] = false
		h.Status = "unhealthy"
	}
	return h
}

// homePageTemplate is the HTML for the gateway status page (white bg, black/blue text).
const homePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Telemetry Gateway</title>
  <style>
    * { box-sizing: border-box; }
    body { background: #fff; color: #000; font-family: system-ui, sans-serif; margin: 0; padding: 2rem; line-height: 1.5; }
    a { color: #0066cc; }
    h1, h2 { color: #0066cc; }
    .status-healthy { color: #0066cc; font-weight: bold; }
    .status-unhealthy { color: #cc0000; font-weight: bold; }
    table { border-collapse: collapse; width: 100%; max-width: 700px; margin-top: 0.5rem; }
    th, td { text-align: left; padding: 0.5rem 0.75rem; border: 1px solid #ccc; }
    th { background: #f0f4f8; color: #0066cc; width: 180px; }
    .meta { color: #333; font-size: 0.9rem; margin-top: 1rem; }
    section { margin-bottom: 2rem; }
  </style>
</head>
<body>
  <h1>Telemetry Gateway</h1>
  <p class="meta">Gateway health and transport configuration.</p>

  <section>
    <h2>Health</h2>
    <p>Status: <span class="status-{{.Health.Status}}">{{.Health.Status}}</span></p>
    <p>Database: {{if index .Health.Checks "database"}}<span class="status-healthy">OK</span>{{else}}<span class="status-unhealthy">Failed</span>{{end}}</p>
    <p>COMMS: {{if index .Health.Checks "comms"}}<span class="status-healthy">OK</span>{{else}}<span class="status-unhealthy">Failed</span>{{end}}</p>
    <p>Timestamp: {{.Health.Timestamp}}</p>
  </section>

  <section>
    <h2>Transport</h2>
    <table>
      <tr><th>Request subject</th><td>{{.Subject}}</td></tr>
      <tr><th>Uptime</th><td>{{.Uptime}}</td></tr>
    </table>
  </section>
</body>
</html>
`

// homeData is the data passed to the home page template.
type homeData struct {
	Health  *health
	Subject string
	Uptime  string
}

// handleHome returns an HTTP handler for the gateway status page.
func (s *Server) handleHome() http.HandlerFunc {
	tmpl := template.Must(template.New("home").Parse(homePageTemplate))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.HealthCheckTimeout)
		defer cancel()

		data := homeData{
			Health:  s.checkHealth(ctx),
			Subject: s.subject,
			Uptime:  time.Since(s.started).Round(time.Second).String(),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			slog.Error(fmt.Sprintf("%s - home template execute: %v", logPrefix, err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}
