package errors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"testing"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Kind(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "connection", errType: ErrTypeConnection, expected: "ConnectionError"},
		{name: "path", errType: ErrTypePath, expected: "PathError"},
		{name: "protocol", errType: ErrTypeProtocol, expected: "ProtocolError"},
		{name: "timeout", errType: ErrTypeTimeout, expected: "TimeoutError"},
		{name: "config", errType: ErrTypeConfig, expected: "ConfigError"},
		{name: "unknown", errType: ErrorType("NOPE"), expected: "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.errType.Kind())
		})
	}
}

func TestAppError_ErrorAndDetail(t *testing.T) {
	tests := []struct {
		name       string
		appError   *AppError
		wantError  string
		wantDetail string
	}{
		{
			name:       "without cause",
			appError:   NewValidationError("account name is required"),
			wantError:  "[VALIDATION] account name is required",
			wantDetail: "ValidationError: account name is required",
		},
		{
			name:       "with cause",
			appError:   NewPathError("path not found", fs.ErrNotExist),
			wantError:  "[PATH] path not found: file does not exist",
			wantDetail: "PathError: path not found: file does not exist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantError, tt.appError.Error())
			assert.Equal(t, tt.wantDetail, tt.appError.Detail())
		})
	}
}

func TestAppError_UnwrapAndContext(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewConnectionError("connection failed", cause).
		WithContext("account", "Beta").
		WithContext("host", "sftp.beta.example")

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "Beta", err.Context["account"])
	assert.Len(t, err.Context, 2)

	wrapped := fmt.Errorf("scan: %w", err)
	assert.Equal(t, ErrTypeConnection, TypeOf(wrapped))
	assert.True(t, IsType(wrapped, ErrTypeConnection))
	assert.False(t, IsType(errors.New("plain"), ErrTypeConnection))

	bare := &AppError{Type: ErrTypeConfig, Message: "x"}
	bare.WithContext("k", 1)
	assert.Equal(t, 1, bare.Context["k"])
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantType    ErrorType
		wantMessage string
	}{
		{name: "not found", err: fmt.Errorf("readdir /in: %w", fs.ErrNotExist), wantType: ErrTypePath, wantMessage: "path not found"},
		{name: "permission", err: fs.ErrPermission, wantType: ErrTypePath, wantMessage: "permission denied"},
		{name: "eof mid listing", err: io.ErrUnexpectedEOF, wantType: ErrTypeProtocol, wantMessage: "connection dropped"},
		{name: "sftp connection lost", err: sftp.ErrSSHFxConnectionLost, wantType: ErrTypeProtocol, wantMessage: "connection dropped"},
		{name: "deadline", err: context.DeadlineExceeded, wantType: ErrTypeTimeout, wantMessage: "operation timed out"},
		{name: "net timeout", err: timeoutErr{}, wantType: ErrTypeTimeout, wantMessage: "operation timed out"},
		{name: "transport deadline", err: ErrDeadline, wantType: ErrTypeTimeout, wantMessage: "operation timed out"},
		{name: "cancelled", err: context.Canceled, wantType: ErrTypeCancelled, wantMessage: "operation cancelled"},
		{name: "other fault", err: errors.New("bad packet"), wantType: ErrTypeProtocol, wantMessage: "protocol fault"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantMessage, got.Message)
			assert.True(t, errors.Is(got, tt.err))
		})
	}

	assert.Nil(t, Classify(nil))

	existing := NewTimeoutError("listing timed out", nil)
	assert.Same(t, existing, Classify(fmt.Errorf("wrapped: %w", existing)))
}

func TestClassifyConnect(t *testing.T) {
	assert.Nil(t, ClassifyConnect(nil))

	refused := ClassifyConnect(errors.New("connection refused"))
	assert.Equal(t, "ConnectionError: connection failed: connection refused", refused.Detail())

	auth := ClassifyConnect(errors.New("ssh: unable to authenticate"))
	assert.Equal(t, ErrTypeConnection, auth.Type)

	slow := ClassifyConnect(timeoutErr{})
	assert.Equal(t, ErrTypeTimeout, slow.Type)
	assert.Equal(t, "TimeoutError: connection timed out: i/o timeout", slow.Detail())
}
