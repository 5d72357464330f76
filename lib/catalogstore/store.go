// Package catalogstore archives harvested catalogs in sqlite, one row
// per record with its dynamic fields as JSON. The CSV artifact is the
// primary output; the store exists so past runs stay queryable and
// replayable after the artifact has been handed off.
package catalogstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"
	"uiharvest/lib/harvest"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// Open opens (creating if needed) a sqlite catalog archive at path.
func Open(path string) (Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	_, err = database.Exec(Schema)
	if err != nil {
		database.Close()
		return Store{}, err
	}
	return NewStore(database), nil
}

func (s Store) Close() error {
	return s.db.Close()
}

type Run struct {
	Id        int64
	Name      string
	Mode      string
	Status    string
	StartedAt time.Time
	Schema    []string
	Records   int
}

func (s Store) CreateRun(ctx context.Context, name, mode string, startedAt time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (name, mode, status, started_at, schema_json) VALUES (?, ?, ?, ?, '[]')`,
		name, mode, "running", startedAt.Unix(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Push finalizes a run: status and unified schema on the run row, one
// record row per catalog entry, all in one transaction.
func (s Store) Push(ctx context.Context, runId int64, result harvest.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	schemaJson, err := json.Marshal(result.Schema)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE runs SET status = ?, schema_json = ? WHERE id = ?`,
		result.Status.String(), string(schemaJson), runId,
	)
	if err != nil {
		return err
	}

	for _, record := range result.Records {
		fieldsJson, err := json.Marshal(record.Fields)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO records (run_id, position, display, fields_json) VALUES (?, ?, ?, ?)`,
			runId, record.Position, record.Display, string(fieldsJson),
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Pull returns a run's catalog in stored position order.
func (s Store) Pull(ctx context.Context, runId int64) ([]harvest.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, display, fields_json FROM records WHERE run_id = ? ORDER BY position`,
		runId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []harvest.Record
	for rows.Next() {
		var record harvest.Record
		var fieldsJson string
		if err := rows.Scan(&record.Position, &record.Display, &fieldsJson); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(fieldsJson), &record.Fields); err != nil {
			slog.WarnContext(ctx, "failed to unmarshal stored record fields",
				"run_id", runId, "position", record.Position, "err", err)
			continue
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Runs lists archived runs, newest first.
func (s Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.mode, r.status, r.started_at, r.schema_json, COUNT(rec.id)
		FROM runs r
		LEFT JOIN records rec ON rec.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC, r.id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt int64
		var schemaJson string
		err := rows.Scan(&run.Id, &run.Name, &run.Mode, &run.Status, &startedAt, &schemaJson, &run.Records)
		if err != nil {
			return nil, err
		}
		run.StartedAt = time.Unix(startedAt, 0)
		if err := json.Unmarshal([]byte(schemaJson), &run.Schema); err != nil {
			slog.WarnContext(ctx, "failed to unmarshal stored run schema",
				"run_id", run.Id, "err", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
