package operations

import (
	"log/slog"
	"strings"

	"dropwatch/pkg/contracts/domain"
)

// Filter narrows the accounts handed to a run. Every match is a
// case-insensitive substring test; empty fields match everything.
type Filter struct {
	Account string
	Folder  string
	Skip    []string
}

// IsZero reports whether the filter keeps everything
func (f Filter) IsZero() bool {
	return f.Account == "" && f.Folder == "" && len(f.Skip) == 0
}

// FilterAccounts applies f and returns the surviving accounts in their
// original order. An account with no folder matching the folder filter keeps
// a single unconfigured placeholder so the report still shows it.
func FilterAccounts(accounts []domain.Account, f Filter, logger *slog.Logger) []domain.Account {
	if logger == nil {
		logger = slog.Default()
	}
	if f.IsZero() {
		return accounts
	}

	kept := make([]domain.Account, 0, len(accounts))
	for _, acct := range accounts {
		if !matches(acct.Name, f.Account) {
			continue
		}
		if skipped(acct.Name, f.Skip) {
			logger.Info("Skipping account due to skip list", slog.String("account", acct.Name))
			continue
		}

		if f.Folder != "" {
			var folders []domain.Folder
			for _, folder := range acct.Folders {
				if matches(folder.Label, f.Folder) {
					folders = append(folders, folder)
				}
			}
			if len(folders) == 0 {
				logger.Warn("No folders configured matching filter",
					slog.String("account", acct.Name),
					slog.String("folder_filter", f.Folder))
				folders = []domain.Folder{{Label: f.Folder, Unconfigured: true}}
			}
			acct.Folders = folders
		}

		kept = append(kept, acct)
	}
	return kept
}

func matches(value, pattern string) bool {
	if pattern == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func skipped(name string, skip []string) bool {
	for _, s := range skip {
		if s = strings.TrimSpace(s); s != "" && matches(name, s) {
			return true
		}
	}
	return false
}
