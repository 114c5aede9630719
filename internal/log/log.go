// Package log records the filesystem operations of a rename run as a JSON
// session under ~/.title-fetch/logs so that the run can be undone later.
package log

import (
	"encoding/json"
	"fmt"
	"os"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/Digital-Shane/title-fetch/internal/config"
)

// DefaultRetentionDays is how long session files are kept.
const DefaultRetentionDays = 30

type OperationType string

const (
	OpRename    OperationType = "rename"
	OpCreateDir OperationType = "create_dir"
)

type OperationLog struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Type       OperationType `json:"type"`
	SourcePath string        `json:"source_path,omitempty"`
	DestPath   string        `json:"dest_path,omitempty"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
}

type SessionMetadata struct {
	CommandArgs   []string  `json:"command_args"`
	WorkingDir    string    `json:"working_dir"`
	Timestamp     time.Time `json:"timestamp"`
	SessionID     string    `json:"session_id"`
	TotalOps      int       `json:"total_operations"`
	SuccessfulOps int       `json:"successful_operations"`
	FailedOps     int       `json:"failed_operations"`
}

type LogSession struct {
	Metadata   SessionMetadata `json:"metadata"`
	Operations []OperationLog  `json:"operations"`
}

// Global singleton session manager
var (
	currentSession *LogSession
	sessionMutex   sync.Mutex
	loggingEnabled = true
)

// Initialize enables or disables the operation log and prunes session files
// older than retentionDays.
func Initialize(enabled bool, retentionDays int) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	loggingEnabled = enabled
	if retentionDays <= 0 {
		retentionDays = DefaultRetentionDays
	}
	if enabled {
		if err := cleanupOldLogsUnsafe(retentionDays); err != nil {
			slog.Warn("failed to clean up old session logs", "error", err)
		}
	}
}

// StartSession begins recording operations for one run.
func StartSession(command string, args []string) error {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled {
		return nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	now := time.Now()
	currentSession = &LogSession{
		Metadata: SessionMetadata{
			CommandArgs: append([]string{command}, args...),
			WorkingDir:  wd,
			Timestamp:   now,
			SessionID:   fmt.Sprintf("%s_%03d", now.Format("20060102_150405"), now.Nanosecond()/1000000),
		},
		Operations: []OperationLog{},
	}
	return nil
}

// EndSession writes the current session to disk. Sessions without
// operations are dropped.
func EndSession() error {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled || currentSession == nil {
		return nil
	}

	session := currentSession
	currentSession = nil
	if len(session.Operations) == 0 {
		return nil
	}

	updateStats(session)
	return WriteSession(session)
}

// LogRename records a rename.
func LogRename(sourcePath, destPath string, success bool, err error) {
	LogOperation(OpRename, sourcePath, destPath, success, err)
}

// LogCreateDir records a directory creation.
func LogCreateDir(dirPath string, success bool, err error) {
	LogOperation(OpCreateDir, "", dirPath, success, err)
}

// LogOperation appends an operation to the current session. Paths are stored
// absolute so that undo works from any directory.
func LogOperation(opType OperationType, sourcePath, destPath string, success bool, err error) {
	sessionMutex.Lock()
	defer sessionMutex.Unlock()

	if !loggingEnabled || currentSession == nil {
		return
	}

	op := OperationLog{
		ID:         fmt.Sprintf("%s_%d", currentSession.Metadata.SessionID, len(currentSession.Operations)),
		Timestamp:  time.Now(),
		Type:       opType,
		SourcePath: absPath(sourcePath),
		DestPath:   absPath(destPath),
		Success:    success,
	}
	if err != nil {
		op.Error = err.Error()
	}

	currentSession.Operations = append(currentSession.Operations, op)
}

func absPath(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

func updateStats(session *LogSession) {
	successful := 0
	for _, op := range session.Operations {
		if op.Success {
			successful++
		}
	}

	session.Metadata.TotalOps = len(session.Operations)
	session.Metadata.SuccessfulOps = successful
	session.Metadata.FailedOps = len(session.Operations) - successful
}

// Dir returns the directory holding session files.
func Dir() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// GetLogPath returns a fresh, timestamped session file path, creating the
// log directory if needed.
func GetLogPath() (string, error) {
	logDir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	now := time.Now()
	filename := fmt.Sprintf("%s.%03d.json", now.Format("2006-01-02_150405"), now.Nanosecond()/1000000)
	return filepath.Join(logDir, filename), nil
}

func WriteSession(session *LogSession) error {
	if session == nil {
		return nil
	}

	logPath, err := GetLogPath()
	if err != nil {
		return fmt.Errorf("failed to get log path: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(logPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write log file: %w", err)
	}
	return nil
}

func ReadSession(logPath string) (*LogSession, error) {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var session LogSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// sessionFiles lists session files newest first. File names sort by time.
func sessionFiles() ([]string, error) {
	logDir, err := Dir()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(logDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}
	slices.Sort(files)
	slices.Reverse(files)
	return files, nil
}

// cleanupOldLogsUnsafe removes session files older than retentionDays. The
// caller holds sessionMutex.
func cleanupOldLogsUnsafe(retentionDays int) error {
	files, err := sessionFiles()
	if err != nil {
		return err
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err != nil {
				slog.Warn("failed to remove old session log", "file", file, "error", err)
			}
		}
	}
	return nil
}
