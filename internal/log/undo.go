package log

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrNoSessions is returned when there is nothing to undo.
var ErrNoSessions = errors.New("no rename sessions to undo")

type UndoResult struct {
	Operation OperationLog
	Success   bool
	Error     error
}

// UndoReport summarises an undone session.
type UndoReport struct {
	Session    *LogSession
	FilePath   string
	Successful int
	Failed     int
	Errors     []error
}

func UndoOperation(op OperationLog) UndoResult {
	result := UndoResult{Operation: op}

	switch op.Type {
	case OpRename:
		if op.DestPath == "" || op.SourcePath == "" {
			result.Error = fmt.Errorf("cannot undo rename: path missing")
			return result
		}
		if _, err := os.Stat(op.DestPath); os.IsNotExist(err) {
			result.Error = fmt.Errorf("cannot undo rename: file %s not found", op.DestPath)
			return result
		}
		if _, err := os.Stat(op.SourcePath); err == nil {
			result.Error = fmt.Errorf("cannot undo rename: original path %s already exists", op.SourcePath)
			return result
		}
		if err := os.Rename(op.DestPath, op.SourcePath); err != nil {
			result.Error = fmt.Errorf("failed to rename %s back to %s: %w", op.DestPath, op.SourcePath, err)
			return result
		}
		result.Success = true

	case OpCreateDir:
		if op.DestPath == "" {
			result.Error = fmt.Errorf("cannot undo directory creation: path missing")
			return result
		}

		info, err := os.Stat(op.DestPath)
		if os.IsNotExist(err) {
			result.Success = true
			return result
		}
		if err != nil {
			result.Error = fmt.Errorf("failed to stat %s: %w", op.DestPath, err)
			return result
		}
		if !info.IsDir() {
			result.Error = fmt.Errorf("path %s is not a directory", op.DestPath)
			return result
		}

		entries, err := os.ReadDir(op.DestPath)
		if err != nil {
			result.Error = fmt.Errorf("failed to read directory %s: %w", op.DestPath, err)
			return result
		}
		if len(entries) > 0 {
			result.Error = fmt.Errorf("cannot remove directory %s: not empty", op.DestPath)
			return result
		}
		if err := os.Remove(op.DestPath); err != nil {
			result.Error = fmt.Errorf("failed to remove directory %s: %w", op.DestPath, err)
			return result
		}
		result.Success = true

	default:
		result.Error = fmt.Errorf("unknown operation type: %s", op.Type)
	}

	return result
}

// UndoSession reverts the successful operations of session, newest first.
func UndoSession(session *LogSession) (successful int, failed int, errs []error) {
	for i := len(session.Operations) - 1; i >= 0; i-- {
		op := session.Operations[i]
		if !op.Success {
			continue
		}

		result := UndoOperation(op)
		if result.Success {
			successful++
			continue
		}
		failed++
		if result.Error != nil {
			errs = append(errs, result.Error)
		}
	}
	return successful, failed, errs
}

// FindLatestSession returns the newest readable session and its file.
func FindLatestSession() (*LogSession, string, error) {
	files, err := sessionFiles()
	if err != nil {
		return nil, "", fmt.Errorf("failed to read sessions: %w", err)
	}

	for _, file := range files {
		session, err := ReadSession(file)
		if err != nil {
			continue
		}
		return session, file, nil
	}
	return nil, "", ErrNoSessions
}

// UndoLatest reverts the newest session. Its file is removed once every
// operation was reverted so the next call reaches the session before it.
func UndoLatest() (*UndoReport, error) {
	session, file, err := FindLatestSession()
	if err != nil {
		return nil, err
	}

	successful, failed, errs := UndoSession(session)
	report := &UndoReport{
		Session:    session,
		FilePath:   file,
		Successful: successful,
		Failed:     failed,
		Errors:     errs,
	}

	if failed == 0 {
		if err := os.Remove(file); err != nil {
			return report, fmt.Errorf("failed to remove undone session %s: %w", file, err)
		}
	}
	return report, nil
}

// Describe renders a one-line summary such as
// "undid 3 operations from 2 hours ago (2 failed)".
func (r *UndoReport) Describe() string {
	when := formatRelativeTime(r.Session.Metadata.Timestamp)
	line := fmt.Sprintf("undid %d operation%s from %s", r.Successful, plural(r.Successful), when)
	if r.Failed > 0 {
		line += fmt.Sprintf(" (%d failed)", r.Failed)
	}
	return line
}

func formatRelativeTime(t time.Time) string {
	duration := time.Since(t)
	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		mins := int(duration.Minutes())
		return fmt.Sprintf("%d minute%s ago", mins, plural(mins))
	case duration < 24*time.Hour:
		hours := int(duration.Hours())
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	case duration < 7*24*time.Hour:
		days := int(duration.Hours() / 24)
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
