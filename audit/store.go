// CLAUDE:SUMMARY SQLite-backed audit store — command audit rows and saved QA reports, never blocking commands.
// Package audit records command executions and saved QA reports in SQLite.
// Writes are best-effort: a failing audit store is logged via slog and never
// blocks or fails the command that produced the record.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/hazyhaar/canvasqa/dbopen"
	"github.com/hazyhaar/canvasqa/idgen"
)

// ErrReportNotFound is returned when a report ID does not exist.
var ErrReportNotFound = errors.New("audit: report not found")

// CommandRecord is one command execution to audit.
type CommandRecord struct {
	CommandID string
	Command   string
	Params    string // JSON
	Success   bool
	Error     string
	Duration  time.Duration
}

// Store writes audit rows and saved reports.
type Store struct {
	db     *sql.DB
	newAud idgen.Generator
	newRpt idgen.Generator
	logger *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger for write failures.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithIDGenerator sets the base ID generator (tests).
func WithIDGenerator(gen idgen.Generator) StoreOption {
	return func(s *Store) {
		s.newAud = idgen.Prefixed("aud_", gen)
		s.newRpt = idgen.Prefixed("rpt_", gen)
	}
}

// NewStore creates a Store over an already-opened audit database.
func NewStore(db *sql.DB, opts ...StoreOption) *Store {
	s := &Store{
		db:     db,
		newAud: idgen.Prefixed("aud_", idgen.Default),
		newRpt: idgen.Prefixed("rpt_", idgen.Default),
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// LogCommand records one command execution. Errors are logged, not returned.
func (s *Store) LogCommand(ctx context.Context, rec CommandRecord) {
	_, err := dbopen.Exec(ctx, s.db, `
		INSERT INTO command_audit (
			audit_id, command_id, command, params, success, error, duration_ms, created_at
		) VALUES (?,?,?,?,?,?,?,?)`,
		s.newAud(), rec.CommandID, rec.Command, rec.Params,
		rec.Success, rec.Error, rec.Duration.Milliseconds(), time.Now().Unix())
	if err != nil {
		s.logger.Warn("command audit write failed",
			"command", rec.Command, "command_id", rec.CommandID, "error", err)
	}
}

// SaveReport stores a rendered QA report and returns its report ID.
// Unlike LogCommand the error is returned: export_qa_report depends on the
// row existing.
func (s *Store) SaveReport(ctx context.Context, commandID string, frames, passed, total int, markdown string) (string, error) {
	id := s.newRpt()
	_, err := dbopen.Exec(ctx, s.db, `
		INSERT INTO qa_reports (report_id, command_id, frames, passed, total, report_md, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		id, commandID, frames, passed, total, markdown, time.Now().Unix())
	if err != nil {
		return "", err
	}
	return id, nil
}

// Report is one saved QA report row.
type Report struct {
	ReportID  string `json:"reportId"`
	CommandID string `json:"commandId"`
	Frames    int    `json:"frames"`
	Passed    int    `json:"passed"`
	Total     int    `json:"total"`
	Markdown  string `json:"markdown"`
	CreatedAt int64  `json:"createdAt"`
}

// GetReport fetches a saved report by ID.
func (s *Store) GetReport(ctx context.Context, reportID string) (*Report, error) {
	var r Report
	err := s.db.QueryRowContext(ctx, `
		SELECT report_id, command_id, frames, passed, total, report_md, created_at
		FROM qa_reports WHERE report_id = ?`, reportID).
		Scan(&r.ReportID, &r.CommandID, &r.Frames, &r.Passed, &r.Total, &r.Markdown, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// LatestReport fetches the most recently saved report, if any.
func (s *Store) LatestReport(ctx context.Context) (*Report, error) {
	var r Report
	err := s.db.QueryRowContext(ctx, `
		SELECT report_id, command_id, frames, passed, total, report_md, created_at
		FROM qa_reports ORDER BY created_at DESC, report_id DESC LIMIT 1`).
		Scan(&r.ReportID, &r.CommandID, &r.Frames, &r.Passed, &r.Total, &r.Markdown, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Cleanup deletes audit rows and reports older than the retention windows.
// Zero days means no cleanup for that table. Both windows apply in one
// transaction so a failure cannot leave one table trimmed and the other not.
func (s *Store) Cleanup(ctx context.Context, auditDays, reportDays int) error {
	if auditDays <= 0 && reportDays <= 0 {
		return nil
	}
	now := time.Now().Unix()
	return dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		if auditDays > 0 {
			cutoff := now - int64(auditDays)*86400
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM command_audit WHERE created_at < ?`, cutoff); err != nil {
				return err
			}
		}
		if reportDays > 0 {
			cutoff := now - int64(reportDays)*86400
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM qa_reports WHERE created_at < ?`, cutoff); err != nil {
				return err
			}
		}
		return nil
	})
}
