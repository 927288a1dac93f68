// Package indexdb maintains a queryable sqlite index of a run. Writes go
// through a single goroutine so the sim thread never blocks on the database;
// the JSONL tick logs remain the source of truth if the indexer falls behind.
package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"colonysim.ai/internal/sim/tuning"
	"colonysim.ai/internal/sim/world"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqTick reqKind = iota + 1
)

type req struct {
	kind reqKind
	tick world.TickLogEntry
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// High buffer: bursty assignment ticks must not stall the sim.
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	// NORMAL is a decent durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			digest TEXT NOT NULL,
			agents INTEGER NOT NULL,
			buildings INTEGER NOT NULL,
			resources INTEGER NOT NULL,
			assignments INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS assignments (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			agent_id TEXT NOT NULL,
			category TEXT NOT NULL,
			kind TEXT NOT NULL,
			target_id TEXT,
			validated INTEGER NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_agent_tick ON assignments(agent_id, tick);`,
		`CREATE TABLE IF NOT EXISTS tunings (
			digest TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTick, tick: entry}:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the source of truth.
	}
	return nil
}

// UpsertTuning records the applied tuning values (canonical JSON, keyed by
// digest) so a run's parameters can be recovered from the index alone.
func (s *SQLiteIndex) UpsertTuning(tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(tune)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(b)
	digest := hex.EncodeToString(sum[:])
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.Exec(`INSERT OR REPLACE INTO tunings(digest,json,recorded_at) VALUES(?,?,?)`,
		digest, string(b), now)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`)
	return err
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(tick,digest,agents,buildings,resources,assignments,raw_json) VALUES(?,?,?,?,?,?,?)`)
	insertAssignment, _ := s.db.Prepare(`INSERT OR REPLACE INTO assignments(tick,seq,agent_id,category,kind,target_id,validated) VALUES(?,?,?,?,?,?,?)`)
	defer func() {
		if insertTick != nil {
			_ = insertTick.Close()
		}
		if insertAssignment != nil {
			_ = insertAssignment.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTick:
			b, _ := json.Marshal(r.tick)
			if insertTick != nil {
				if _, err := tx.Stmt(insertTick).Exec(
					int64(r.tick.Tick),
					r.tick.Digest,
					r.tick.Agents,
					r.tick.Buildings,
					r.tick.Resources,
					len(r.tick.Assignments),
					string(b),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
			for seq, rec := range r.tick.Assignments {
				if insertAssignment == nil {
					break
				}
				validated := 0
				if rec.Validated {
					validated = 1
				}
				if _, err := tx.Stmt(insertAssignment).Exec(
					int64(r.tick.Tick), seq, rec.AgentID, rec.Category, rec.Kind, rec.TargetID, validated,
				); err != nil {
					rollback()
					break
				}
				opCount++
			}
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}
	commit()
}

// Query helpers -------------------------------------------------------------

func (s *SQLiteIndex) TickCount() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM ticks`).Scan(&n)
	return n, err
}

func (s *SQLiteIndex) TickDigest(tick uint64) (string, error) {
	var d string
	err := s.db.QueryRow(`SELECT digest FROM ticks WHERE tick = ?`, int64(tick)).Scan(&d)
	return d, err
}

// AssignmentsForAgent returns how many task assignments the agent received
// over the indexed run.
func (s *SQLiteIndex) AssignmentsForAgent(agentID string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM assignments WHERE agent_id = ?`, agentID).Scan(&n)
	return n, err
}
