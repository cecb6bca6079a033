package files

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "dropwatch/internal/errors"
	"dropwatch/internal/infrastructure"
	"dropwatch/internal/remote"
	"dropwatch/pkg/contracts/domain"
)

// Empty-folder notes
const (
	NoteNoFiles        = "folder has no files"
	NoteOnlyDirs       = "folder contains only subdirectories"
	notePrefixMismatch = "no files matched prefix %q"
)

// Inspector resolves the newest qualifying file of one remote folder
type Inspector struct {
	selection Selection
	logger    *slog.Logger
}

// NewInspector creates an inspector applying the given selection policy
func NewInspector(selection Selection, logger *slog.Logger) *Inspector {
	if selection.Mode == "" {
		selection.Mode = ModeLatest
	}
	return &Inspector{
		selection: selection,
		logger:    infrastructure.WithComponent(logger, "inspector"),
	}
}

// Inspect lists the task's folder over conn and returns exactly one outcome.
// Listing failures become error outcomes; nothing is retried.
func (i *Inspector) Inspect(ctx context.Context, conn remote.Conn, task domain.FolderTask) (outcome domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := apperrors.NewProtocolError("unexpected failure", fmt.Errorf("panic: %v", r))
			i.logger.ErrorContext(ctx, "Folder inspection panicked",
				slog.String("account", task.Account),
				slog.String("folder", task.Label),
				slog.Any("panic", r))
			outcome = domain.ErrorOutcome(task, err.Detail())
		}
	}()

	files, note, err := i.candidates(ctx, conn, task)
	if err != nil {
		appErr := apperrors.Classify(err)
		i.logger.WarnContext(ctx, "Folder inspection failed",
			slog.String("account", task.Account),
			slog.String("folder", task.Label),
			slog.String("path", task.Path),
			slog.String("error_type", string(appErr.Type)),
			slog.String("error", err.Error()))
		return domain.ErrorOutcome(task, appErr.Detail())
	}

	latest, ok := GetLatestFile(files)
	if !ok {
		return domain.EmptyOutcome(task, note)
	}

	if !i.selection.IsDated() {
		return domain.FoundOutcome(task, latest.Name, latest.ModifiedAt)
	}

	if pick, ok := GetLatestFile(FilterFiles(files, i.selection.Accepts)); ok {
		return domain.FoundOutcome(task, pick.Name, pick.ModifiedAt)
	}

	criterion := i.selection.Describe()
	if !i.selection.Fallback {
		return domain.EmptyOutcome(task, "no file "+criterion)
	}

	i.logger.InfoContext(ctx, "No file met the date criteria; using latest available",
		slog.String("account", task.Account),
		slog.String("folder", task.Label),
		slog.String("criteria", criterion),
		slog.String("file", latest.Name))
	return domain.FoundOutcome(task, latest.Name, latest.ModifiedAt).
		WithNote(fmt.Sprintf("no file %s; latest available used", criterion))
}

// candidates returns the regular files eligible for selection. When a prefix
// matches nothing in the folder itself, subdirectories whose names start with
// the prefix are searched one level deep.
func (i *Inspector) candidates(ctx context.Context, conn remote.Conn, task domain.FolderTask) ([]remote.Entry, string, error) {
	entries, err := conn.List(ctx, task.Path)
	if err != nil {
		return nil, "", err
	}

	files := RegularFiles(entries)
	if task.Prefix == "" {
		switch {
		case len(files) > 0:
			return files, "", nil
		case len(Directories(entries)) > 0:
			return nil, NoteOnlyDirs, nil
		default:
			return nil, NoteNoFiles, nil
		}
	}

	if matched := MatchPrefix(files, task.Prefix); len(matched) > 0 {
		return matched, "", nil
	}

	var collected []remote.Entry
	for _, dir := range MatchPrefix(Directories(entries), task.Prefix) {
		sub := JoinRemote(task.Path, dir.Name)
		subEntries, err := conn.List(ctx, sub)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			i.logger.DebugContext(ctx, "Skipping unreadable subfolder",
				slog.String("account", task.Account),
				slog.String("path", sub),
				slog.String("error", err.Error()))
			continue
		}
		collected = append(collected, RegularFiles(subEntries)...)
	}
	if len(collected) > 0 {
		return collected, "", nil
	}
	return nil, fmt.Sprintf(notePrefixMismatch, task.Prefix), nil
}
