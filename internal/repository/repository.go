package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"facturacion/internal/config"

	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"

	_ "github.com/sijms/go-ora/v2"
)

const queryTimeout = 5 * time.Second

// Dialect hides the placeholder and RETURNING differences between the
// supported drivers. Queries are written with '?' placeholders.
type Dialect struct {
	name string
}

var (
	Oracle   = Dialect{name: config.DriverOracle}
	Postgres = Dialect{name: config.DriverPostgres}
)

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverOracle:
		return Oracle, nil
	case config.DriverPostgres:
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported driver %q", driver)
	}
}

func (d Dialect) Name() string {
	return d.name
}

// Rebind rewrites '?' placeholders into the driver's positional form.
func (d Dialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		if d.name == config.DriverOracle {
			b.WriteString(":" + strconv.Itoa(n))
		} else {
			b.WriteString("$" + strconv.Itoa(n))
		}
	}
	return b.String()
}

// insertReturningID runs an INSERT and returns the generated ID column.
func (d Dialect) insertReturningID(ctx context.Context, db *sql.DB, insert string, args ...any) (int64, error) {
	var id int64
	if d.name == config.DriverOracle {
		query := d.Rebind(insert + " RETURNING ID INTO ?")
		args = append(args, sql.Out{Dest: &id})
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return 0, err
		}
		return id, nil
	}

	query := d.Rebind(insert + " RETURNING ID")
	if err := db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Open creates the shared connection pool and checks it is reachable.
func Open(ctx context.Context, cfg config.DB) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, Dialect{}, err
	}

	db, err := sql.Open(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, Dialect{}, fmt.Errorf("failed to ping database: %w", err)
	}

	log.WithField("driver", cfg.Driver).Info("Successfully connected to the database.")
	return db, dialect, nil
}

// IsUniqueViolation reports whether err comes from a unique constraint.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "ORA-00001")
}
