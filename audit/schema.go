package audit

// Schema contains the complete DDL for the canvasqa audit tables.
// Applied via dbopen.WithSchema at startup.
const Schema = `
-- Command audit: one row per top-level command invocation.
CREATE TABLE IF NOT EXISTS command_audit (
    audit_id TEXT PRIMARY KEY,
    command_id TEXT NOT NULL,
    command TEXT NOT NULL,
    params TEXT NOT NULL DEFAULT '{}',
    success INTEGER NOT NULL,
    error TEXT,
    duration_ms INTEGER NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_command_audit_created
    ON command_audit(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_command_audit_command
    ON command_audit(command, created_at DESC);

-- Saved QA reports, keyed by report ID for later export.
CREATE TABLE IF NOT EXISTS qa_reports (
    report_id TEXT PRIMARY KEY,
    command_id TEXT NOT NULL,
    frames INTEGER NOT NULL,
    passed INTEGER NOT NULL,
    total INTEGER NOT NULL,
    report_md TEXT NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);
CREATE INDEX IF NOT EXISTS idx_qa_reports_created
    ON qa_reports(created_at DESC);
`
