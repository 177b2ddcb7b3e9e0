package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/tebeka/atexit"
	"golang.org/x/term"
)

const (
	historyFileName = ".arconv_history"
	historySize     = 500
)

// LineEditor reads code one line at a time. On a terminal it uses readline
// with history; otherwise it scans the input plainly.
type LineEditor struct {
	interactive bool
	rl          *readline.Instance
	scanner     *bufio.Scanner
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) && os.Getenv("INSIDE_EMACS") == ""
}

// NewLineEditor creates a line editor over in.
func NewLineEditor(in io.Reader) *LineEditor {
	if !isTerminal(in) {
		return &LineEditor{scanner: bufio.NewScanner(in)}
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            historyPath(),
		HistoryLimit:           historySize,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: readline init failed (%v), using basic input\n", err)
		return &LineEditor{scanner: bufio.NewScanner(in)}
	}

	le := &LineEditor{interactive: true, rl: rl}
	atexit.Register(le.Close)
	return le
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, historyFileName)
}

// GetLine returns the next line, or io.EOF.
func (le *LineEditor) GetLine(prompt string) (string, error) {
	if le.interactive {
		le.rl.SetPrompt(prompt)
		line, err := le.rl.Readline()
		if err == readline.ErrInterrupt {
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			le.rl.SaveToHistory(trimmed)
		}
		return line, nil
	}

	if !le.scanner.Scan() {
		if err := le.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return le.scanner.Text(), nil
}

// ReadProgram collects lines until an empty line or EOF.
func (le *LineEditor) ReadProgram(prompt string) (string, error) {
	var lines []string
	for {
		line, err := le.GetLine(prompt)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// Close releases the terminal.
func (le *LineEditor) Close() {
	if le.rl != nil {
		le.rl.Close()
		le.rl = nil
	}
}
