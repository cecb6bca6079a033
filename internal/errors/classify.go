package errors

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net"

	"github.com/pkg/sftp"
)

// Classify maps a raw transport error from a listing call onto the taxonomy.
// Errors that already carry an AppError are returned unchanged.
func Classify(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, context.Canceled):
		return NewAppError(ErrTypeCancelled, "operation cancelled", err)
	case isTimeout(err):
		return NewTimeoutError("operation timed out", err)
	case errors.Is(err, fs.ErrNotExist):
		return NewPathError("path not found", err)
	case errors.Is(err, fs.ErrPermission):
		return NewPathError("permission denied", err)
	case isConnectionLost(err):
		return NewProtocolError("connection dropped", err)
	default:
		return NewProtocolError("protocol fault", err)
	}
}

// ClassifyConnect maps a dial or handshake failure. Timeouts stay timeouts;
// everything else is a connection failure.
func ClassifyConnect(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, context.Canceled):
		return NewAppError(ErrTypeCancelled, "connection cancelled", err)
	case isTimeout(err):
		return NewTimeoutError("connection timed out", err)
	default:
		return NewConnectionError("connection failed", err)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrDeadline) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionLost(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, sftp.ErrSSHFxConnectionLost) ||
		errors.Is(err, sftp.ErrSSHFxNoConnection)
}

// ErrDeadline is returned by transports that enforce their own per-call deadline
var ErrDeadline = errors.New("deadline exceeded")
