package testutil

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sync"
	"time"

	"dropwatch/internal/remote"
)

// FakeConn is an in-memory remote.Conn. Dirs maps a path to its listing;
// Errors maps a path to the error returned when listing it.
type FakeConn struct {
	Dirs   map[string][]remote.Entry
	Errors map[string]error

	// ListFunc overrides the map lookups when set
	ListFunc func(ctx context.Context, path string) ([]remote.Entry, error)

	mu        sync.Mutex
	ListCalls []string
	Closed    int
}

// List returns the configured listing for path
func (c *FakeConn) List(ctx context.Context, p string) ([]remote.Entry, error) {
	c.mu.Lock()
	c.ListCalls = append(c.ListCalls, p)
	c.mu.Unlock()

	if c.ListFunc != nil {
		return c.ListFunc(ctx, p)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := c.Errors[p]; ok {
		return nil, err
	}
	entries, ok := c.Dirs[p]
	if !ok {
		return nil, fmt.Errorf("list %s: %w", p, fs.ErrNotExist)
	}
	out := make([]remote.Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// Close records the call
func (c *FakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Closed++
	return nil
}

// CloseCount returns how many times Close was called
func (c *FakeConn) CloseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Closed
}

// Listed returns the paths listed so far
func (c *FakeConn) Listed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.ListCalls))
	copy(out, c.ListCalls)
	return out
}

// FakeDialer hands out FakeConns keyed by endpoint address
type FakeDialer struct {
	Conns  map[string]*FakeConn
	Errors map[string]error

	// DialFunc overrides the map lookups when set
	DialFunc func(ctx context.Context, ep remote.Endpoint) (remote.Conn, error)

	mu        sync.Mutex
	DialCalls []string
}

// Dial returns the configured connection for ep.Address
func (d *FakeDialer) Dial(ctx context.Context, ep remote.Endpoint) (remote.Conn, error) {
	d.mu.Lock()
	d.DialCalls = append(d.DialCalls, ep.Address)
	d.mu.Unlock()

	if d.DialFunc != nil {
		return d.DialFunc(ctx, ep)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := d.Errors[ep.Address]; ok {
		return nil, err
	}
	conn, ok := d.Conns[ep.Address]
	if !ok {
		return nil, fmt.Errorf("dial tcp %s: connection refused", ep.Address)
	}
	return conn, nil
}

// Dialed returns the addresses dialed so far
func (d *FakeDialer) Dialed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.DialCalls))
	copy(out, d.DialCalls)
	return out
}

// File builds a regular-file entry
func File(name string, modified time.Time) remote.Entry {
	return remote.Entry{Name: path.Base(name), ModifiedAt: modified, IsFile: true, Size: 1}
}

// Dir builds a directory entry
func Dir(name string, modified time.Time) remote.Entry {
	return remote.Entry{Name: path.Base(name), ModifiedAt: modified, IsDir: true}
}
