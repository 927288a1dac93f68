package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"colonysim.ai/internal/persistence/indexdb"
	"colonysim.ai/internal/persistence/simlog"
	"colonysim.ai/internal/sim/tuning"
	"colonysim.ai/internal/sim/world"
	"colonysim.ai/internal/transport/observer"
)

func main() {
	var (
		addr         = flag.String("addr", "127.0.0.1:8080", "http listen address for observers")
		configDir    = flag.String("configs", "./configs", "config directory")
		dataDir      = flag.String("data", "./data", "runtime data directory")
		tuningPath   = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		scenarioPath = flag.String("scenario", "", "path to scenario.yaml (default: <configs>/scenario.yaml)")
		maxTicks     = flag.Uint64("ticks", 0, "stop after this many ticks (0 = run until signalled)")
		disableDB    = flag.Bool("disable_db", false, "disable the sqlite tick index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[sim] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		logger.Fatalf("load tuning: %v", err)
	}

	w := world.New(tune.WorldConfig())
	cfg := w.Config()

	sp := strings.TrimSpace(*scenarioPath)
	if sp == "" {
		sp = filepath.Join(*configDir, "scenario.yaml")
	}
	if scen, err := loadScenario(sp); err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load scenario: %v", err)
		}
		logger.Printf("scenario not found (%s); starting empty", sp)
	} else {
		scen.apply(w)
	}

	worldDir := filepath.Join(*dataDir, "worlds", cfg.ID)
	if err := os.MkdirAll(worldDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	tickLog := simlog.NewTickLogger(worldDir)
	defer tickLog.Close()

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(worldDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertTuning(tune); err != nil {
			logger.Printf("record tuning: %v", err)
		}
	}

	obs := observer.NewServer(w, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/v1/observer/bootstrap", obs.BootstrapHandler())
	mux.HandleFunc("/v1/observe", obs.WSHandler())
	httpSrv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("observer http on %s", *addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Printf("world %s %dx%d seed=%d tick_rate=%dhz", cfg.ID, cfg.Width, cfg.Height, cfg.Seed, cfg.TickRateHz)

	ticker := time.NewTicker(time.Second / time.Duration(cfg.TickRateHz))
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-ticker.C:
			entry := w.Step()
			if err := tickLog.WriteTick(entry); err != nil {
				logger.Printf("tick log: %v", err)
			}
			if idx != nil {
				_ = idx.WriteTick(entry)
			}
			if obs.SessionCount() > 0 {
				obs.Broadcast(observer.Snapshot(w, entry))
			}
			if *maxTicks > 0 && entry.Tick >= *maxTicks {
				break loop
			}
		}
	}

	m := w.Metrics()
	logger.Printf("stopping at tick %d: %d tasks completed, %d repaths, %d fallback assignments",
		w.CurrentTick(), m.TasksCompleted, m.Repaths, m.FallbackAssignments)

	shutCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shutCtx)
}
