package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/claimsat/internal/config"
)

// Open connects to a database and checks it is reachable
func Open(driver Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(config.GetEnvInt("DB_MAX_OPEN_CONNS", 20))
	db.SetMaxIdleConns(config.GetEnvInt("DB_MAX_IDLE_CONNS", 10))
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// DSNFromEnv builds a connection string for the dialect from the standard
// environment variables (PG* for postgres, MYSQL_* for mysql)
func DSNFromEnv(driver Dialect) (string, error) {
	switch driver {
	case Postgres:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			config.GetEnv("PGHOST", "localhost"),
			config.GetEnv("PGPORT", "5432"),
			config.GetEnv("PGUSER", "claimsat"),
			config.GetEnv("PGPASSWORD", "claimsat"),
			config.GetEnv("PGDATABASE", "claimsat"),
			config.GetEnv("PGSSLMODE", "disable")), nil
	case MySQL:
		cfg := mysql.NewConfig()
		cfg.User = config.GetEnv("MYSQL_USER", "claimsat")
		cfg.Passwd = config.GetEnv("MYSQL_PASSWORD", "claimsat")
		cfg.Net = "tcp"
		cfg.Addr = config.GetEnv("MYSQL_HOST", "localhost") + ":" + config.GetEnv("MYSQL_PORT", "3306")
		cfg.DBName = config.GetEnv("MYSQL_DB", "claimsat")
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	}
	return "", fmt.Errorf("unsupported dialect %q", driver)
}

// OpenSQLStore opens the database described by the environment. Callers run Migrate
// before first use.
func OpenSQLStore(driver Dialect) (*SQLStore, *sql.DB, error) {
	dsn, err := DSNFromEnv(driver)
	if err != nil {
		return nil, nil, err
	}

	db, err := Open(driver, dsn)
	if err != nil {
		return nil, nil, err
	}

	s, err := NewSQLStore(db, driver)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return s, db, nil
}
