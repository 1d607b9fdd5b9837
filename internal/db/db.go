package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/docdrop-io/apiserver/config"
	_ "github.com/lib/pq"
)

const (
	defaultDBDriver     = "postgres"
	defaultPingTimeout  = 5 * time.Second
	defaultConnMaxIdle  = 2 * time.Minute
	defaultConnMaxLife  = 30 * time.Minute
	defaultMaxIdleConns = 5
	defaultMaxOpenConns = 25
)

func Open(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	sslmode := "disable"
	if cfg.Database.UseSSL {
		sslmode = "require"
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", cfg.Database.Host, cfg.Database.Port),
		User:   url.UserPassword(cfg.Database.User, cfg.Database.Password),
		Path:   cfg.Database.DBName,
	}

	q := u.Query()
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()

	dbConn, err := sql.Open(defaultDBDriver, u.String())
	if err != nil {
		return nil, err
	}

	dbConn.SetConnMaxIdleTime(defaultConnMaxIdle)
	dbConn.SetConnMaxLifetime(defaultConnMaxLife)
	dbConn.SetMaxIdleConns(defaultMaxIdleConns)
	dbConn.SetMaxOpenConns(defaultMaxOpenConns)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := dbConn.PingContext(pingCtx); err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	return dbConn, nil
}
