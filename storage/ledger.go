package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const historySuffix = "_history.txt"

// FileLedger appends history lines to <root>/<owner>/<account>_history.txt.
// Existing lines are never rewritten.
type FileLedger struct {
	root string
	// Now stamps new entries; tests replace it.
	Now func() time.Time
}

// NewFileLedger returns a ledger rooted at root.
func NewFileLedger(root string) *FileLedger {
	return &FileLedger{root: root, Now: time.Now}
}

func (l *FileLedger) historyPath(owner, account string) string {
	return filepath.Join(l.root, owner, account+historySuffix)
}

// RecordTransaction appends description with the current timestamp,
// creating the owner directory and history file on first use.
func (l *FileLedger) RecordTransaction(_ context.Context, owner, account, description string) error {
	path := l.historyPath(owner, account)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open history for %s/%s: %w", owner, account, err)
	}
	if _, err := f.WriteString(entryLine(description, l.Now()) + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("append history for %s/%s: %w", owner, account, err)
	}
	return f.Close()
}

// History returns every entry, oldest first. An account without history
// yields an empty slice.
func (l *FileLedger) History(_ context.Context, owner, account string) ([]string, error) {
	f, err := os.Open(l.historyPath(owner, account))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history for %s/%s: %w", owner, account, err)
	}
	defer f.Close()

	lines := []string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read history for %s/%s: %w", owner, account, err)
	}
	return lines, nil
}

// LastN returns the trailing n entries in chronological order.
func (l *FileLedger) LastN(ctx context.Context, owner, account string, n int) ([]string, error) {
	lines, err := l.History(ctx, owner, account)
	if err != nil {
		return nil, err
	}
	return tail(lines, n), nil
}
