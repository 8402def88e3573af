package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/resetdopa/engine/internal/api"
	"github.com/resetdopa/engine/internal/app/session"
	"github.com/resetdopa/engine/internal/infra/gateway"
	"github.com/resetdopa/engine/internal/infra/sqlite"
	"github.com/resetdopa/engine/internal/notify"
)

// rolloverTick is how often the day-boundary check runs. The rollover
// itself is idempotent, so a frequent tick costs nothing.
const rolloverTick = time.Minute

// Daemon is the core ResetDopa runtime. It wires together all services.
type Daemon struct {
	Config    Config
	DB        *sqlite.DB
	Gateway   *gateway.Gateway
	Session   *session.Session
	Scheduler *notify.Scheduler
	Server    *api.Server
	cancel    context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	dataDir := cfg.Storage.Dir
	if dataDir == "" {
		dataDir = resetdopaHome()
	}
	db, err := sqlite.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	userID := cfg.User.ID
	if userID == "" {
		userID = "local"
	}

	var gwOpts []gateway.Option
	if cfg.Storage.CoalesceWindowMS > 0 {
		gwOpts = append(gwOpts, gateway.WithWindow(time.Duration(cfg.Storage.CoalesceWindowMS)*time.Millisecond))
	}
	gw := gateway.New(db, userID, gwOpts...)

	var scheduler *notify.Scheduler
	var sessOpts []session.Option
	if cfg.Notifications.Enabled {
		policy := notify.DefaultPolicy()
		if cfg.Notifications.QuietStart != "" {
			policy.QuietStart = cfg.Notifications.QuietStart
		}
		if cfg.Notifications.QuietEnd != "" {
			policy.QuietEnd = cfg.Notifications.QuietEnd
		}
		if cfg.Notifications.MaxPerDay > 0 {
			policy.MaxPerDay = cfg.Notifications.MaxPerDay
		}
		scheduler = notify.NewScheduler(notify.LogSink{}, notify.WithPolicy(policy))
		sessOpts = append(sessOpts, session.WithNotifier(scheduler))
	}

	sess, err := session.Load(gw, sessOpts...)
	if err != nil {
		gw.Close()
		db.Close()
		return nil, fmt.Errorf("load session: %w", err)
	}

	srv := api.NewServer(sess)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:    cfg,
		DB:        db,
		Gateway:   gw,
		Session:   sess,
		Scheduler: scheduler,
		Server:    srv,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Run the overnight evaluation once at startup, then keep watching
	// for the day boundary.
	d.Session.ApplyRolloverOnce()
	go d.rolloverLoop(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		d.Close()
	}()

	fmt.Printf("ResetDopa engine serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// rolloverLoop fires the idempotent rollover check every tick so the
// day-boundary evaluation happens even when the app never foregrounds.
func (d *Daemon) rolloverLoop(ctx context.Context) {
	ticker := time.NewTicker(rolloverTick)
	defer ticker.Stop()

	lastDay := d.Session.CurrentProgramDay()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			day := d.Session.CurrentProgramDay()
			if d.Scheduler != nil {
				d.maybeSendMilestone(day)
			}
			if day == lastDay {
				continue
			}
			lastDay = day
			dec := d.Session.ApplyRolloverOnce()
			log.Printf("[daemon] day %d rollover: %s", day, dec.Outcome)
			if d.Scheduler != nil {
				if _, err := d.Scheduler.Send(notify.DailyReminder(day)); err != nil {
					log.Printf("[daemon] reminder failed: %v", err)
				}
				d.Scheduler.ScheduleAfter(12*time.Hour, notify.MoodCheck())
			}
		}
	}
}

// maybeSendMilestone sends the week-boundary milestone notification at most
// once per program day, deduped through the device-local KV so a daemon
// restart does not repeat it.
func (d *Daemon) maybeSendMilestone(day int) {
	if day != 8 && day != 15 && day != 22 {
		return
	}
	key := fmt.Sprintf("milestone_day_%d", day)
	if v, err := d.DB.GetLocal(key); err != nil || v != "" {
		return
	}
	delivered, err := d.Scheduler.Send(notify.Milestone(day))
	if err != nil {
		log.Printf("[daemon] milestone failed: %v", err)
	}
	if !delivered {
		return
	}
	if err := d.DB.SetLocal(key, "sent"); err != nil {
		log.Printf("[daemon] milestone dedupe write failed: %v", err)
	}
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Scheduler != nil {
		d.Scheduler.Stop()
	}
	if d.Session != nil {
		d.Session.Close()
	}
	if d.Gateway != nil {
		d.Gateway.Close()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
