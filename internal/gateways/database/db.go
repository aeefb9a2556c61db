package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redlantern/fortunebot/internal/gateways/database/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	_ "modernc.org/sqlite"
)

const (
	defaultConnTimeout   = 5 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// OpenSubmissionsIndex enforces at most one PENDING or APPROVED submission per
// user and quest.
const OpenSubmissionsIndex = "event_submissions_open_uidx"

type Config struct {
	Driver   string `toml:"driver" env:"DB_DRIVER"`
	Path     string `toml:"path" env:"DB_PATH"`
	Host     string `toml:"host" env:"DB_HOST"`
	Port     int    `toml:"port" env:"DB_PORT"`
	User     string `toml:"user" env:"DB_USER"`
	Password string `toml:"password" env:"DB_PASSWORD"`
	Database string `toml:"database" env:"DB_NAME"`
	PoolSize int    `toml:"pool_size" env:"DB_POOL_SIZE"`
	// Debug logs every query at debug level.
	Debug bool `toml:"debug" env:"DB_DEBUG"`
}

// Tables lists the event tables in creation order.
var Tables = []any{
	(*models.EventUser)(nil),
	(*models.Quest)(nil),
	(*models.Submission)(nil),
	(*models.DailyClaim)(nil),
}

// TableNames returns the SQL names of Tables.
func TableNames() []string {
	return []string{"event_users", "event_quests", "event_submissions", "event_daily_claims"}
}

type DB struct {
	driver string
	pool   *pgxpool.Pool
	bunDB  *bun.DB
}

func New(ctx context.Context, cfg Config) (*DB, error) {
	var (
		db  *DB
		err error
	)
	switch cfg.Driver {
	case DriverSQLite:
		db, err = newSQLite(cfg.Path)
	case DriverPostgres, "":
		db, err = newPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	db.bunDB.AddQueryHook(&queryHook{verbose: cfg.Debug})
	return db, nil
}

func newPostgres(ctx context.Context, cfg Config) (*DB, error) {
	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))

	var (
		conn net.Conn
		err  error
	)
	for i := 0; i < defaultMaxRetries; i++ {
		conn, err = net.DialTimeout("tcp", addr, defaultConnTimeout)
		if err == nil {
			break
		}
		time.Sleep(defaultRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("database server unreachable after %d attempts: %w", defaultMaxRetries, err)
	}
	conn.Close()

	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	sslMode := os.Getenv("PG_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	if cfg.PoolSize > 0 {
		sqldb.SetMaxOpenConns(cfg.PoolSize)
	}

	return &DB{
		driver: DriverPostgres,
		pool:   pool,
		bunDB:  bun.NewDB(sqldb, pgdialect.New()),
	}, nil
}

func buildConnString(cfg Config) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=5",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

// NewSQLite opens (or creates) a sqlite database. ":memory:" gives a private
// in-memory database.
func NewSQLite(path string) (*DB, error) {
	db, err := newSQLite(path)
	if err != nil {
		return nil, err
	}
	db.bunDB.AddQueryHook(&queryHook{})
	return db, nil
}

func newSQLite(path string) (*DB, error) {
	if path == "" {
		path = "event.db"
	}

	dsn := path
	if path != ":memory:" {
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	}

	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// sqlite serialises writers; one connection keeps transactions from
	// tripping over SQLITE_BUSY and keeps ":memory:" databases alive.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(0)

	return &DB{
		driver: DriverSQLite,
		bunDB:  bun.NewDB(sqldb, sqlitedialect.New()),
	}, nil
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func (db *DB) Driver() string {
	return db.driver
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

// Ping verifies every open connection is working.
func (db *DB) Ping(ctx context.Context) error {
	if db.pool != nil {
		if err := db.pool.Ping(ctx); err != nil {
			return fmt.Errorf("pgxpool ping failed: %w", err)
		}
	}
	if err := db.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("bun ping failed: %w", err)
	}
	return nil
}

// InitializeSchema creates the event tables and their indexes.
func (db *DB) InitializeSchema(ctx context.Context) error {
	if db.driver == DriverPostgres {
		if err := db.ensureUTF8Encoding(ctx); err != nil {
			return fmt.Errorf("failed to ensure UTF-8 encoding: %w", err)
		}
	}

	for _, model := range Tables {
		if _, err := db.bunDB.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	if _, err := db.bunDB.NewCreateIndex().
		Model((*models.Submission)(nil)).
		Index(OpenSubmissionsIndex).
		Unique().
		IfNotExists().
		Column("user_id", "quest_id").
		Where("status IN (?, ?)", models.SubmissionPending, models.SubmissionApproved).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create index %s: %w", OpenSubmissionsIndex, err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_event_users_standing ON event_users(points DESC, dragon_marks DESC, envelopes DESC, user_id)",
		"CREATE INDEX IF NOT EXISTS idx_event_quests_active ON event_quests(active, id)",
		"CREATE INDEX IF NOT EXISTS idx_event_submissions_status ON event_submissions(status)",
		"CREATE INDEX IF NOT EXISTS idx_event_submissions_user ON event_submissions(user_id, quest_id)",
	}
	for _, idx := range indexes {
		if _, err := db.bunDB.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

// ResetEventTables wipes every event table: the full event reset.
func (db *DB) ResetEventTables(ctx context.Context) error {
	names := TableNames()

	if db.driver == DriverPostgres {
		stmt := "TRUNCATE TABLE " + joinIdentifiers(names) + " RESTART IDENTITY CASCADE"
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to truncate tables: %w", err)
		}
		slog.Info("Event tables truncated",
			slog.String("type", "db"),
			slog.Any("tables", names),
		)
		return nil
	}

	err := db.bunDB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range Tables {
			if _, err := tx.NewTruncateTable().Model(model).Exec(ctx); err != nil {
				return err
			}
		}
		// Restart autoincrement counters. The table only exists once a row
		// has been inserted into an AUTOINCREMENT table.
		var seq int
		if err := tx.NewRaw("SELECT count(*) FROM sqlite_master WHERE name = 'sqlite_sequence'").Scan(ctx, &seq); err != nil {
			return err
		}
		if seq > 0 {
			_, err := tx.ExecContext(ctx, "DELETE FROM sqlite_sequence")
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to reset tables: %w", err)
	}

	slog.Info("Event tables truncated",
		slog.String("type", "db"),
		slog.Any("tables", names),
	)
	return nil
}

func joinIdentifiers(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return strings.Join(quoted, ", ")
}

func (db *DB) ensureUTF8Encoding(ctx context.Context) error {
	var encoding string
	if err := db.pool.QueryRow(ctx, "SHOW server_encoding;").Scan(&encoding); err != nil {
		return fmt.Errorf("failed to check database encoding: %w", err)
	}

	if encoding != "UTF8" {
		slog.Warn("Database is not using UTF-8 encoding, this may cause character encoding issues",
			slog.String("type", "db"),
			slog.String("current_encoding", encoding),
		)
	}
	return nil
}
