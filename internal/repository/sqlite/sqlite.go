// Package sqlite implements the repository interfaces on an embedded SQLite
// database via the pure-Go modernc.org/sqlite driver (no CGo, so the binary
// cross-compiles anywhere Go does).
//
// The schema lives here as string-constant migrations; CREATE TABLE IF NOT
// EXISTS keeps them idempotent. Tests open ":memory:" databases.
package sqlite

import (
	"database/sql"
	"fmt"

	// Blank import: the driver registers itself with database/sql under the
	// name "sqlite" in its init function.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and hands out the per-entity stores.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — without it SQLite
	// locks the whole file per write, which stalls a web server.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool, flushing the WAL.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Users returns the user store backed by this database.
func (db *DB) Users() *UserStore {
	return &UserStore{conn: db.conn}
}

// Articles returns the article store backed by this database.
func (db *DB) Articles() *ArticleStore {
	return &ArticleStore{conn: db.conn}
}

// Comments returns the comment store backed by this database.
func (db *DB) Comments() *CommentStore {
	return &CommentStore{conn: db.conn}
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
			name          TEXT NOT NULL,
			role          TEXT NOT NULL,
			password_hash TEXT NOT NULL DEFAULT '',
			github_id     INTEGER NOT NULL DEFAULT 0,
			avatar_url    TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_users_github_id ON users(github_id);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// tags is a JSON-encoded string array; SQLite has no native array type
	// and tag order must be preserved.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			id             TEXT PRIMARY KEY,
			title          TEXT NOT NULL,
			content        TEXT NOT NULL,
			summary        TEXT NOT NULL DEFAULT '',
			category       TEXT NOT NULL DEFAULT '',
			tags           TEXT NOT NULL DEFAULT '[]',
			author_id      TEXT NOT NULL REFERENCES users(id),
			author_name    TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL,
			image_url      TEXT NOT NULL DEFAULT '',
			published_at   DATETIME,
			created_at     DATETIME NOT NULL,
			updated_at     DATETIME NOT NULL,
			likes_count    INTEGER NOT NULL DEFAULT 0,
			comments_count INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_articles_status ON articles(status);
		CREATE INDEX IF NOT EXISTS idx_articles_author_id ON articles(author_id);
	`)
	if err != nil {
		return fmt.Errorf("creating articles table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id          TEXT PRIMARY KEY,
			content     TEXT NOT NULL,
			author_id   TEXT NOT NULL REFERENCES users(id),
			author_name TEXT NOT NULL DEFAULT '',
			article_id  TEXT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_comments_article_id ON comments(article_id);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	return nil
}
