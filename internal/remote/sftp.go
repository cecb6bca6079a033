package remote

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
	"golang.org/x/time/rate"

	apperrors "dropwatch/internal/errors"
	"dropwatch/internal/infrastructure"
)

const (
	defaultConnectTimeout = 30 * time.Second
	defaultReadTimeout    = 60 * time.Second
)

// SFTPOptions configures the SFTP dialer
type SFTPOptions struct {
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	HostKeyCallback ssh.HostKeyCallback
	Limiter         *rate.Limiter
	Logger          *slog.Logger
}

// SFTPDialer opens password-authenticated SFTP sessions over SSH
type SFTPDialer struct {
	opts   SFTPOptions
	logger *slog.Logger
}

// NewSFTPDialer creates a dialer. A nil HostKeyCallback accepts any host key.
func NewSFTPDialer(opts SFTPOptions) *SFTPDialer {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = defaultConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	if opts.HostKeyCallback == nil {
		opts.HostKeyCallback = ssh.InsecureIgnoreHostKey()
	}
	return &SFTPDialer{
		opts:   opts,
		logger: infrastructure.WithComponent(opts.Logger, "sftp"),
	}
}

// HostKeyCallback returns a known_hosts verifier, or nil when no file is configured
func HostKeyCallback(knownHostsFile string) (ssh.HostKeyCallback, error) {
	if knownHostsFile == "" {
		return nil, nil
	}
	cb, err := knownhosts.New(knownHostsFile)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load known_hosts", err).
			WithContext("file", knownHostsFile)
	}
	return cb, nil
}

// Dial connects, authenticates and starts the sftp subsystem. The TCP dial,
// SSH handshake and subsystem start share one ConnectTimeout budget.
func (d *SFTPDialer) Dial(ctx context.Context, ep Endpoint) (Conn, error) {
	if d.opts.Limiter != nil {
		if err := d.opts.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("dial throttled: %w", err)
		}
	}

	dialCtx, cancel := context.WithTimeout(ctx, d.opts.ConnectTimeout)
	defer cancel()

	var nd net.Dialer
	raw, err := nd.DialContext(dialCtx, "tcp", ep.Address)
	if err != nil {
		return nil, err
	}

	if deadline, ok := dialCtx.Deadline(); ok {
		_ = raw.SetDeadline(deadline)
	}
	stop := context.AfterFunc(dialCtx, func() { raw.Close() })

	client, sc, err := d.handshake(raw, ep)
	if !stop() {
		if client != nil {
			client.Close()
		}
		return nil, fmt.Errorf("connect %s: %w", ep.Address, dialCtx.Err())
	}
	if err != nil {
		raw.Close()
		if ctxErr := dialCtx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %v", ctxErr, err)
		}
		return nil, err
	}
	_ = raw.SetDeadline(time.Time{})

	d.logger.Debug("SFTP session established",
		slog.String("address", ep.Address),
		slog.String("username", ep.Username))

	return &sftpConn{
		ssh:         client,
		client:      sc,
		readTimeout: d.opts.ReadTimeout,
	}, nil
}

func (d *SFTPDialer) handshake(raw net.Conn, ep Endpoint) (*ssh.Client, *sftp.Client, error) {
	password := ep.Secret.Reveal()
	cfg := &ssh.ClientConfig{
		User: ep.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: d.opts.HostKeyCallback,
		Timeout:         d.opts.ConnectTimeout,
	}

	c, chans, reqs, err := ssh.NewClientConn(raw, ep.Address, cfg)
	if err != nil {
		return nil, nil, err
	}
	client := ssh.NewClient(c, chans, reqs)

	sc, err := sftp.NewClient(client)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("start sftp subsystem: %w", err)
	}
	return client, sc, nil
}

// sftpConn implements Conn on top of pkg/sftp
type sftpConn struct {
	ssh         *ssh.Client
	client      *sftp.Client
	readTimeout time.Duration

	mu     sync.Mutex
	closed bool
	broken error
}

type listResult struct {
	infos []os.FileInfo
	err   error
}

// List reads a directory. When the read deadline or ctx expires first the
// session is torn down, since pkg/sftp has no per-request cancellation.
func (c *sftpConn) List(ctx context.Context, path string) ([]Entry, error) {
	c.mu.Lock()
	broken := c.broken
	c.mu.Unlock()
	if broken != nil {
		return nil, apperrors.NewProtocolError("connection dropped", broken)
	}

	done := make(chan listResult, 1)
	go func() {
		infos, err := c.client.ReadDir(path)
		done <- listResult{infos: infos, err: err}
	}()

	timer := time.NewTimer(c.readTimeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("list %s: %w", path, res.err)
		}
		return toEntries(res.infos), nil
	case <-timer.C:
		err := fmt.Errorf("list %s after %s: %w", path, c.readTimeout, apperrors.ErrDeadline)
		c.abort(err)
		return nil, err
	case <-ctx.Done():
		c.abort(ctx.Err())
		return nil, ctx.Err()
	}
}

// abort tears the session down under a stalled request. The SSH transport
// goes first: the sftp client's Close waits for its receive loop, which only
// exits once the underlying channel is gone.
func (c *sftpConn) abort(reason error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.broken == nil {
		c.broken = reason
	}
	if c.closed {
		return
	}
	c.closed = true

	_ = c.ssh.Close()
	_ = c.client.Close()
}

// Close shuts down the sftp subsystem and the SSH connection. Safe to call twice.
func (c *sftpConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	sftpErr := c.client.Close()
	sshErr := c.ssh.Close()
	if sftpErr != nil {
		return sftpErr
	}
	return sshErr
}

func toEntries(infos []os.FileInfo) []Entry {
	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		entries = append(entries, Entry{
			Name:       fi.Name(),
			Size:       fi.Size(),
			ModifiedAt: fi.ModTime(),
			IsFile:     fi.Mode().IsRegular(),
			IsDir:      fi.IsDir(),
		})
	}
	return entries
}
