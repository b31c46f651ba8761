package connectivity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const postgresDriver = "postgres"

// PostgresConnector opens a single pgx connection. No pool is created.
type PostgresConnector struct{}

func (PostgresConnector) Driver() string {
	return postgresDriver
}

func (PostgresConnector) Connect(ctx context.Context, uri string, timeout time.Duration) (Session, error) {
	cfg, err := pgx.ParseConfig(uri)
	if err != nil {
		return nil, newProbeError(KindConfiguration, "", fmt.Errorf("invalid postgres uri: %w", err))
	}
	if timeout > 0 {
		cfg.ConnectTimeout = timeout
	}

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	return &postgresSession{conn: conn}, nil
}

func (PostgresConnector) Classify(err error) *ProbeError {
	return classifyPostgresError(err)
}

type postgresSession struct {
	conn *pgx.Conn
}

func (s *postgresSession) Ping(ctx context.Context) (Response, error) {
	if err := s.conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	resp := Response{"ok": 1}
	if version := s.conn.PgConn().ParameterStatus("server_version"); version != "" {
		resp["serverVersion"] = version
	}
	return resp, nil
}

func (s *postgresSession) Close(ctx context.Context) error {
	if err := s.conn.Close(ctx); err != nil {
		return fmt.Errorf("postgres close: %w", err)
	}
	return nil
}

func classifyPostgresError(err error) *ProbeError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		kind := KindServer
		// Class 28: invalid authorization specification.
		if strings.HasPrefix(pgErr.Code, "28") {
			kind = KindAuthentication
		}
		probeErr := newProbeError(kind, pgErr.Code, err)
		if pgErr.Message != "" {
			probeErr.Message = pgErr.Message
		}
		return probeErr
	}

	var parseErr *pgconn.ParseConfigError
	if errors.As(err, &parseErr) {
		return newProbeError(KindConfiguration, "", err)
	}

	if pgconn.Timeout(err) {
		return newProbeError(KindTimeout, "", err)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return newProbeError(KindNetwork, "", err)
	}
	return nil
}
