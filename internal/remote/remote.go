package remote

import (
	"context"
	"time"

	"dropwatch/pkg/contracts/domain"
)

// Endpoint identifies where and how to log in
type Endpoint struct {
	Address  string
	Username string
	Secret   domain.Secret
}

// EndpointFor builds the dial target for an account
func EndpointFor(acct domain.Account) Endpoint {
	return Endpoint{
		Address:  acct.Address(),
		Username: acct.Username,
		Secret:   acct.Secret,
	}
}

// Entry is one item returned by a directory listing
type Entry struct {
	Name       string
	Size       int64
	ModifiedAt time.Time
	IsFile     bool
	IsDir      bool
}

// Conn is an open session able to list remote directories
type Conn interface {
	List(ctx context.Context, path string) ([]Entry, error)
	Close() error
}

// Dialer opens authenticated sessions
type Dialer interface {
	Dial(ctx context.Context, ep Endpoint) (Conn, error)
}

// DialerFunc adapts a function to the Dialer interface
type DialerFunc func(ctx context.Context, ep Endpoint) (Conn, error)

// Dial calls f(ctx, ep)
func (f DialerFunc) Dial(ctx context.Context, ep Endpoint) (Conn, error) {
	return f(ctx, ep)
}
