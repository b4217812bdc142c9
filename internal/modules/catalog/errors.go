package catalog

import (
	"context"
	"errors"
	"strings"

	"studiofinder/internal/discovery"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrStudioNotFound     = errors.New("studio not found")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// classifyDBError maps a storage failure onto the engine's fetch error kinds.
// Postgres connection exceptions (SQLSTATE class 08) and dial timeouts are
// reported as unavailable and timeout respectively.
func classifyDBError(err error) *discovery.FetchError {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return &discovery.FetchError{Kind: discovery.FetchTimeout, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &discovery.FetchError{Kind: discovery.FetchCanceled, Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57P") {
			return &discovery.FetchError{Kind: discovery.FetchUnavailable, Err: errors.Join(ErrCatalogUnavailable, err)}
		}
		return &discovery.FetchError{Kind: discovery.FetchBadResponse, Err: err}
	}

	return &discovery.FetchError{Kind: discovery.FetchUnavailable, Err: errors.Join(ErrCatalogUnavailable, err)}
}
