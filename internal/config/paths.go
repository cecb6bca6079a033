package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// CredentialsFileName is the default name of the account definitions file
const CredentialsFileName = "credentials.txt"

// Paths contains all the application paths
type Paths struct {
	BaseDir   string
	ResultDir string
	ErrorsDir string
	LogsDir   string

	// CredentialsFile is the explicitly configured credentials path, if any
	CredentialsFile string
}

// ExecutableDir returns the directory containing the running binary
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return filepath.Dir(exe), nil
}

// GetPaths resolves the configured directories. Relative entries are joined
// to BaseDir, and an empty BaseDir means the executable's directory.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		exeDir, err := ExecutableDir()
		if err != nil {
			return nil, err
		}
		base = exeDir
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p, fallback string) string {
		if p == "" {
			p = fallback
		}
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	paths := &Paths{
		BaseDir:   base,
		ResultDir: resolve(cfg.ResultDir, "result"),
		ErrorsDir: resolve(cfg.ErrorsDir, "errors"),
		LogsDir:   resolve(cfg.LogsDir, "logs"),
	}
	if cfg.CredentialsFile != "" {
		paths.CredentialsFile = resolve(cfg.CredentialsFile, CredentialsFileName)
	}

	return paths, nil
}

// EnsureDirectories creates the output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ResultDir, p.ErrorsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// RunLogFile returns the per-run log file path, e.g. logs/run_20240102_090000.log
func (p *Paths) RunLogFile(started time.Time) string {
	return filepath.Join(p.LogsDir, fmt.Sprintf("run_%s.log", started.Format("20060102_150405")))
}

// TraceFile returns the per-run trace export path
func (p *Paths) TraceFile(started time.Time) string {
	return filepath.Join(p.LogsDir, fmt.Sprintf("trace_%s.json", started.Format("20060102_150405")))
}

// CredentialsCandidates lists credentials file locations in search order:
// the configured file, DROPWATCH_CREDENTIALS, CREDENTIALS_PATH, the base
// directory, then the working directory.
func (p *Paths) CredentialsCandidates() []string {
	var candidates []string
	add := func(path string) {
		if path == "" {
			return
		}
		for _, c := range candidates {
			if c == path {
				return
			}
		}
		candidates = append(candidates, path)
	}

	add(p.CredentialsFile)
	add(os.Getenv(EnvPrefix + "_CREDENTIALS"))
	add(os.Getenv("CREDENTIALS_PATH"))
	add(filepath.Join(p.BaseDir, CredentialsFileName))
	add(filepath.Join(p.BaseDir, "src", CredentialsFileName))
	if wd, err := os.Getwd(); err == nil {
		add(filepath.Join(wd, CredentialsFileName))
		add(filepath.Join(wd, "src", CredentialsFileName))
	}
	return candidates
}

// FindCredentialsFile returns the first existing candidate
func (p *Paths) FindCredentialsFile() (string, error) {
	candidates := p.CredentialsCandidates()
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("credentials file not found; searched %v", candidates)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
