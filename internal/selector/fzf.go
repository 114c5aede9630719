package selector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

const (
	// maxHeight caps the fzf window in terminal lines.
	maxHeight = 20

	// chromeLines covers fzf's prompt and info line.
	chromeLines = 2
)

var commandContext = exec.CommandContext

// Fzf selects through an external fzf process. Candidates are written to its
// stdin as "index<TAB>label" lines with only the label shown, and the chosen
// line is read back from stdout.
type Fzf struct {
	// Path is the fzf binary; "fzf" when empty.
	Path string
	// Stderr receives fzf's interface and diagnostics; os.Stderr when nil.
	Stderr io.Writer
	Logger *slog.Logger
}

// Select runs fzf. A non-zero exit, cancellation or unreadable output is
// reported as no selection.
func (f *Fzf) Select(ctx context.Context, labels []string, header string) (int, bool) {
	if len(labels) == 0 {
		return -1, false
	}

	path := f.Path
	if path == "" {
		path = "fzf"
	}

	var input strings.Builder
	for i, label := range labels {
		fmt.Fprintf(&input, "%d\t%s\n", i, cleanLabel(label))
	}

	cmd := commandContext(ctx, path, fzfArgs(len(labels), header)...)
	cmd.Stdin = strings.NewReader(input.String())
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = f.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		f.logger().Debug("fzf returned no selection", "error", err)
		return -1, false
	}

	idx, ok := parseSelection(stdout.String(), len(labels))
	if !ok {
		f.logger().Debug("unparsable fzf output", "output", stdout.String())
	}
	return idx, ok
}

func (f *Fzf) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// fzfArgs builds the fzf command line for n candidates.
func fzfArgs(n int, header string) []string {
	margin := chromeLines
	if header != "" {
		margin++
	}
	args := []string{
		"--with-nth=2..",
		"--delimiter=\t",
		"--height=" + strconv.Itoa(min(maxHeight, n+margin)),
	}
	if header != "" {
		args = append(args, "--header="+cleanLabel(header))
	}
	return args
}

// parseSelection reads the index field of the first output line.
func parseSelection(out string, n int) (int, bool) {
	line, _, _ := strings.Cut(out, "\n")
	field, _, found := strings.Cut(line, "\t")
	if !found {
		return -1, false
	}
	idx, err := strconv.Atoi(strings.TrimSpace(field))
	if err != nil || idx < 0 || idx >= n {
		return -1, false
	}
	return idx, true
}
