package db

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          BIGSERIAL PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		due_date    DATE,
		priority    TEXT,
		state       TEXT NOT NULL DEFAULT 'PENDING',
		completed   BOOLEAN NOT NULL DEFAULT FALSE,
		user_id     BIGINT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_user_id_idx ON tasks (user_id)`,
	`CREATE TABLE IF NOT EXISTS subtasks (
		id         BIGSERIAL PRIMARY KEY,
		task_id    BIGINT NOT NULL,
		title      TEXT NOT NULL,
		completed  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS subtasks_task_id_idx ON subtasks (task_id)`,
	// task_id is intentionally not a foreign key: logs outlive their task.
	`CREATE TABLE IF NOT EXISTS ai_decision_logs (
		id              BIGSERIAL PRIMARY KEY,
		task_id         BIGINT NOT NULL,
		suggested_state TEXT NOT NULL,
		reason          VARCHAR(1000) NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ai_decision_logs_task_idx ON ai_decision_logs (task_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS analytics_events (
		id          BIGSERIAL PRIMARY KEY,
		event_name  TEXT NOT NULL,
		event_time  TIMESTAMPTZ NOT NULL,
		user_id     BIGINT,
		request_id  TEXT,
		platform    TEXT NOT NULL DEFAULT 'unknown',
		app_version TEXT NOT NULL DEFAULT '',
		properties  TEXT NOT NULL DEFAULT '{}'
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		due_date    DATE,
		priority    TEXT,
		state       TEXT NOT NULL DEFAULT 'PENDING',
		completed   BOOLEAN NOT NULL DEFAULT 0,
		user_id     INTEGER,
		created_at  TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_user_id_idx ON tasks (user_id)`,
	`CREATE TABLE IF NOT EXISTS subtasks (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id    INTEGER NOT NULL,
		title      TEXT NOT NULL,
		completed  BOOLEAN NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS subtasks_task_id_idx ON subtasks (task_id)`,
	`CREATE TABLE IF NOT EXISTS ai_decision_logs (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		task_id         INTEGER NOT NULL,
		suggested_state TEXT NOT NULL,
		reason          TEXT NOT NULL,
		created_at      TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ai_decision_logs_task_idx ON ai_decision_logs (task_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS analytics_events (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		event_name  TEXT NOT NULL,
		event_time  TIMESTAMP NOT NULL,
		user_id     INTEGER,
		request_id  TEXT,
		platform    TEXT NOT NULL DEFAULT 'unknown',
		app_version TEXT NOT NULL DEFAULT '',
		properties  TEXT NOT NULL DEFAULT '{}'
	)`,
}
