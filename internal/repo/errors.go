package repo

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrorNotFound    = errors.New("not found")
	ErrorConflict    = errors.New("conflict")
	ErrorUnavailable = errors.New("backend unavailable")
)

// mapError переводит ошибки драйвера в ошибки репозитория.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return errors.Join(ErrorConflict, err)
		case "57P01", "57P02", "57P03": // admin/crash shutdown, cannot connect now
			return errors.Join(ErrorUnavailable, err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return errors.Join(ErrorUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) || pgconn.Timeout(err) {
		return errors.Join(ErrorUnavailable, err)
	}
	return err
}
