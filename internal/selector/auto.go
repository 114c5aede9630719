package selector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/Digital-Shane/title-fetch/internal/tui/picker"
	"github.com/mattn/go-isatty"
)

var (
	lookPath   = exec.LookPath
	isTerminal = func(fd uintptr) bool {
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	runPicker = func(ctx context.Context, labels []string, header string, in io.Reader, out io.Writer) (int, bool, error) {
		return picker.Run(ctx, labels, header, in, out)
	}
)

// Builtin selects with the in-process terminal picker.
type Builtin struct {
	In     io.Reader
	Out    io.Writer
	Logger *slog.Logger
}

// Select runs the picker. A terminal failure is logged and reported as no
// selection.
func (b *Builtin) Select(ctx context.Context, labels []string, header string) (int, bool) {
	in, out := b.In, b.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}

	idx, ok, err := runPicker(ctx, labels, header, in, out)
	if err != nil {
		logger := b.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Debug("picker failed", "error", err)
		return -1, false
	}
	return idx, ok
}

// New returns the selector named by kind: "fzf", "builtin" or "auto". Auto
// prefers fzf on PATH, then the builtin picker when stdin and stderr are
// terminals, and otherwise never selects.
func New(kind string, logger *slog.Logger) (Selector, error) {
	switch kind {
	case "fzf":
		path, err := lookPath("fzf")
		if err != nil {
			return nil, fmt.Errorf("fzf not found in PATH: %w", err)
		}
		return &Fzf{Path: path, Logger: logger}, nil
	case "builtin":
		return &Builtin{Logger: logger}, nil
	case "", "auto":
		return Auto(logger), nil
	default:
		return nil, fmt.Errorf("unknown picker %q", kind)
	}
}

// Auto detects the best available selector.
func Auto(logger *slog.Logger) Selector {
	if path, err := lookPath("fzf"); err == nil {
		return &Fzf{Path: path, Logger: logger}
	}
	if isTerminal(os.Stdin.Fd()) && isTerminal(os.Stderr.Fd()) {
		return &Builtin{Logger: logger}
	}
	return None{}
}
