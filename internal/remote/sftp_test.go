package remote

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/pkg/sftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	"golang.org/x/time/rate"

	apperrors "dropwatch/internal/errors"
	"dropwatch/pkg/contracts/domain"
)

const testPassword = "s3cret"

// startSFTPServer runs an SSH server exposing the local filesystem over sftp
func startSFTPServer(t *testing.T) string {
	t.Helper()
	return startSSHServer(t, func(ch ssh.Channel) {
		srv, err := sftp.NewServer(ch)
		if err != nil {
			return
		}
		_ = srv.Serve()
		srv.Close()
	})
}

// stallLister never answers a directory listing until release is closed
type stallLister struct {
	release chan struct{}
}

func (l stallLister) Filelist(*sftp.Request) (sftp.ListerAt, error) {
	<-l.release
	return nil, os.ErrNotExist
}

// startStallingServer runs an sftp server whose listings hang
func startStallingServer(t *testing.T) string {
	t.Helper()
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	return startSSHServer(t, func(ch ssh.Channel) {
		handlers := sftp.InMemHandler()
		handlers.FileList = stallLister{release: release}
		srv := sftp.NewRequestServer(ch, handlers)
		_ = srv.Serve()
		srv.Close()
	})
}

func startSSHServer(t *testing.T, serve func(ch ssh.Channel)) string {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(priv)
	require.NoError(t, err)

	cfg := &ssh.ServerConfig{
		PasswordCallback: func(_ ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if string(pass) == testPassword {
				return nil, nil
			}
			return nil, fmt.Errorf("password rejected")
		},
	}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			nc, err := ln.Accept()
			if err != nil {
				return
			}
			go serveSSH(nc, cfg, serve)
		}
	}()
	return ln.Addr().String()
}

func serveSSH(nc net.Conn, cfg *ssh.ServerConfig, serve func(ch ssh.Channel)) {
	sconn, chans, reqs, err := ssh.NewServerConn(nc, cfg)
	if err != nil {
		nc.Close()
		return
	}
	defer sconn.Close()
	go ssh.DiscardRequests(reqs)

	for nch := range chans {
		if nch.ChannelType() != "session" {
			nch.Reject(ssh.UnknownChannelType, "unsupported channel")
			continue
		}
		ch, chReqs, err := nch.Accept()
		if err != nil {
			return
		}
		go func(in <-chan *ssh.Request) {
			for req := range in {
				ok := req.Type == "subsystem" && len(req.Payload) > 4 && string(req.Payload[4:]) == "sftp"
				req.Reply(ok, nil)
			}
		}(chReqs)
		go serve(ch)
	}
}

func TestSFTPDialer_ListsDirectory(t *testing.T) {
	addr := startSFTPServer(t)

	root := t.TempDir()
	older := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.csv"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.csv"), []byte("bb"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "archive"), 0o755))
	require.NoError(t, os.Chtimes(filepath.Join(root, "a.csv"), older, older))
	require.NoError(t, os.Chtimes(filepath.Join(root, "b.csv"), newer, newer))

	dialer := NewSFTPDialer(SFTPOptions{
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    5 * time.Second,
		Limiter:        rate.NewLimiter(rate.Inf, 1),
	})

	conn, err := dialer.Dial(context.Background(), Endpoint{
		Address:  addr,
		Username: "tester",
		Secret:   domain.NewSecret(testPassword),
	})
	require.NoError(t, err)
	defer conn.Close()

	entries, err := conn.List(context.Background(), filepath.ToSlash(root))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	assert.Equal(t, "a.csv", entries[0].Name)
	assert.True(t, entries[0].IsFile)
	assert.True(t, older.Equal(entries[0].ModifiedAt))
	assert.Equal(t, "archive", entries[1].Name)
	assert.True(t, entries[1].IsDir)
	assert.False(t, entries[1].IsFile)
	assert.Equal(t, int64(2), entries[2].Size)

	_, err = conn.List(context.Background(), filepath.ToSlash(filepath.Join(root, "missing")))
	require.Error(t, err)
	classified := apperrors.Classify(err)
	assert.Equal(t, apperrors.ErrTypePath, classified.Type)
	assert.Equal(t, "path not found", classified.Message)

	assert.NoError(t, conn.Close())
	assert.NoError(t, conn.Close())
}

func TestSFTPConn_ReadTimeoutBreaksSession(t *testing.T) {
	addr := startStallingServer(t)
	dialer := NewSFTPDialer(SFTPOptions{
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    150 * time.Millisecond,
	})

	conn, err := dialer.Dial(context.Background(), Endpoint{
		Address:  addr,
		Username: "tester",
		Secret:   domain.NewSecret(testPassword),
	})
	require.NoError(t, err)
	defer conn.Close()

	err = listWithin(t, context.Background(), conn, "/drop", 5*time.Second)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeTimeout, apperrors.Classify(err).Type)

	// The session is gone; later listings fail fast
	err = listWithin(t, context.Background(), conn, "/other", time.Second)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeProtocol, apperrors.Classify(err).Type)
}

func TestSFTPConn_ListHonoursCancellation(t *testing.T) {
	addr := startStallingServer(t)
	dialer := NewSFTPDialer(SFTPOptions{ReadTimeout: time.Minute})

	conn, err := dialer.Dial(context.Background(), Endpoint{
		Address:  addr,
		Username: "tester",
		Secret:   domain.NewSecret(testPassword),
	})
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = listWithin(t, ctx, conn, "/drop", 5*time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSFTPConn_CloseAfterStallReturns(t *testing.T) {
	addr := startStallingServer(t)
	dialer := NewSFTPDialer(SFTPOptions{ReadTimeout: 100 * time.Millisecond})

	conn, err := dialer.Dial(context.Background(), Endpoint{
		Address:  addr,
		Username: "tester",
		Secret:   domain.NewSecret(testPassword),
	})
	require.NoError(t, err)

	err = listWithin(t, context.Background(), conn, "/drop", 5*time.Second)
	require.Error(t, err)

	closed := make(chan struct{})
	go func() {
		conn.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked after an aborted listing")
	}
}

// listWithin fails the test when List does not return within limit
func listWithin(t *testing.T, ctx context.Context, conn Conn, dir string, limit time.Duration) error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		_, err := conn.List(ctx, dir)
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(limit):
		t.Fatalf("List(%q) still blocked after %s", dir, limit)
		return nil
	}
}

func TestSFTPDialer_WrongPassword(t *testing.T) {
	addr := startSFTPServer(t)
	dialer := NewSFTPDialer(SFTPOptions{ConnectTimeout: 5 * time.Second})

	_, err := dialer.Dial(context.Background(), Endpoint{
		Address:  addr,
		Username: "tester",
		Secret:   domain.NewSecret("wrong"),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeConnection, apperrors.ClassifyConnect(err).Type)
}

func TestSFTPDialer_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	dialer := NewSFTPDialer(SFTPOptions{ConnectTimeout: 2 * time.Second})
	_, err = dialer.Dial(context.Background(), Endpoint{Address: addr, Username: "u"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeConnection, apperrors.ClassifyConnect(err).Type)
}

func TestSFTPDialer_HandshakeTimeout(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	// Accept and stay silent so the SSH version exchange never completes.
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			defer c.Close()
		}
	}()

	dialer := NewSFTPDialer(SFTPOptions{ConnectTimeout: 150 * time.Millisecond})
	start := time.Now()
	_, err = dialer.Dial(context.Background(), Endpoint{Address: ln.Addr().String(), Username: "u"})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, apperrors.ErrTypeTimeout, apperrors.ClassifyConnect(err).Type)
}

func TestHostKeyCallback(t *testing.T) {
	cb, err := HostKeyCallback("")
	require.NoError(t, err)
	assert.Nil(t, cb)

	_, err = HostKeyCallback(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestEndpointFor(t *testing.T) {
	ep := EndpointFor(domain.Account{Name: "A", Host: "h.example", Port: 2222, Username: "u", Secret: "p"})
	assert.Equal(t, "h.example:2222", ep.Address)
	assert.Equal(t, "u", ep.Username)
	assert.Equal(t, "p", ep.Secret.Reveal())
}
