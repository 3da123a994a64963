package fs

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/bft-labs/herald/internal/domain"
)

// DefaultLedgerFile is the ledger file name used when none is configured.
const DefaultLedgerFile = "sent_log.csv"

// LedgerFile implements ports.Ledger as an append-only text file holding
// one phone per line.
type LedgerFile struct {
	path string

	mu   sync.Mutex
	sent map[string]struct{}
	f    *os.File
}

// NewLedgerFile creates a ledger backed by the file at path.
func NewLedgerFile(path string) *LedgerFile {
	return &LedgerFile{
		path: path,
		sent: make(map[string]struct{}),
	}
}

// Load reads every recorded phone into memory.
// A missing file is an empty ledger.
func (l *LedgerFile) Load(ctx context.Context) error {
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	l.mu.Lock()
	defer l.mu.Unlock()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		phone := domain.NormalizePhone(sc.Text())
		if phone == "" {
			continue
		}
		l.sent[phone] = struct{}{}
	}
	return sc.Err()
}

// Contains reports whether phone has been recorded.
func (l *LedgerFile) Contains(phone string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.sent[domain.NormalizePhone(phone)]
	return ok
}

// Record appends phone to the file. The append and the in-memory update
// happen under one lock so concurrent callers never interleave lines.
func (l *LedgerFile) Record(ctx context.Context, phone string) error {
	phone = domain.NormalizePhone(phone)
	if phone == "" {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.sent[phone]; ok {
		return nil
	}
	if l.f == nil {
		if dir := filepath.Dir(l.path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return err
			}
		}
		f, err := openAppend(l.path)
		if err != nil {
			return err
		}
		l.f = f
	}
	if _, err := l.f.WriteString(phone + "\n"); err != nil {
		return err
	}
	l.sent[phone] = struct{}{}
	return nil
}

// openAppend opens path for appending and terminates a dangling last line
// so the next phone starts on its own line.
func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.Size() == 0 {
		return f, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		f.Close()
		return nil, err
	}
	if last[0] != '\n' {
		if _, err := f.WriteString("\n"); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Len returns the number of recorded phones.
func (l *LedgerFile) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sent)
}

// Close closes the append handle if one was opened.
func (l *LedgerFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

// Path returns the ledger file path.
func (l *LedgerFile) Path() string {
	return l.path
}
