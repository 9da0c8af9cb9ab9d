package store

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// FileQueue keeps pending run IDs in a text file, one per line. Processed
// IDs are removed from the file. Blank lines are ignored and duplicates are
// collapsed.
type FileQueue struct {
	mu   sync.Mutex
	path string
}

// NewFileQueue opens the queue file at path. The file must exist.
func NewFileQueue(path string) (*FileQueue, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run ID file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("run ID file %s is a directory", path)
	}
	return &FileQueue{path: path}, nil
}

func (q *FileQueue) Pending(ctx context.Context, limit int) ([]int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	ids, err := q.read()
	if err != nil {
		return nil, err
	}
	return capLimit(ids, limit), nil
}

// MarkProcessed rewrites the file without runID. The file is replaced via
// rename so a crash never leaves it half written.
func (q *FileQueue) MarkProcessed(ctx context.Context, runID int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	ids, err := q.read()
	if err != nil {
		return err
	}

	remaining := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != runID {
			remaining = append(remaining, id)
		}
	}
	if len(remaining) == len(ids) {
		return nil
	}

	return q.write(remaining)
}

func (q *FileQueue) Close() error {
	return nil
}

func (q *FileQueue) read() ([]int64, error) {
	data, err := os.ReadFile(q.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run ID file: %w", err)
	}

	var ids []int64
	seen := make(map[int64]bool)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		id, err := strconv.ParseInt(line, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%s:%d: %w: %q", q.path, lineNo, ErrInvalidRunID, line)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read run ID file: %w", err)
	}

	return ids, nil
}

func (q *FileQueue) write(ids []int64) error {
	info, err := os.Stat(q.path)
	if err != nil {
		return fmt.Errorf("failed to stat run ID file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(q.path), "."+filepath.Base(q.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	w := bufio.NewWriter(tmp)
	for _, id := range ids {
		fmt.Fprintf(w, "%d\n", id)
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write run ID file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync run ID file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close run ID file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set run ID file mode: %w", err)
	}

	if err := os.Rename(tmp.Name(), q.path); err != nil {
		return fmt.Errorf("failed to replace run ID file: %w", err)
	}
	return nil
}
