package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropwatch/internal/config"
	apperrors "dropwatch/internal/errors"
)

const testCredentials = `
Acme
host: sftp.acme.example
username: reports
password: secret
Folders:
Inbound: /data/in
-----
Broken
host: broken.example
`

func newTestApp(t *testing.T, credentials string) *app {
	t.Helper()
	t.Setenv(config.EnvPrefix+"_CREDENTIALS", "")
	t.Setenv("CREDENTIALS_PATH", "")
	return &app{
		paths:  &config.Paths{BaseDir: t.TempDir(), CredentialsFile: credentials},
		logger: quietLogger(),
	}
}

func TestApp_LoadAccounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.CredentialsFileName)
	require.NoError(t, os.WriteFile(path, []byte(testCredentials), 0600))

	accounts, err := newTestApp(t, path).loadAccounts()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Acme", accounts[0].Name)
}

func TestApp_LoadAccountsRejectsUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	path := filepath.Join(t.TempDir(), config.CredentialsFileName)
	require.NoError(t, os.WriteFile(path, []byte(testCredentials), 0000))

	_, err := newTestApp(t, path).loadAccounts()
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	assert.Contains(t, err.Error(), "not readable")
}
