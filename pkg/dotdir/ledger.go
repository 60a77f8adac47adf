package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	ledgerFile = "ledger.json"
)

// Ledger records which transcript files have already been ingested, keyed by
// content fingerprint. Re-running ingest over the same directory skips files
// whose fingerprints are present.
type Ledger struct {
	// Entries maps content fingerprints to their ingest record.
	Entries map[string]LedgerEntry `json:"entries"`
}

// LedgerEntry records a single ingested file.
type LedgerEntry struct {
	Path       string    `json:"path"`
	IngestedAt time.Time `json:"ingested_at"`
}

// Seen reports whether a fingerprint has already been recorded.
func (l *Ledger) Seen(fingerprint string) bool {
	if l == nil || l.Entries == nil {
		return false
	}
	_, ok := l.Entries[fingerprint]
	return ok
}

// Record adds a fingerprint to the ledger, overwriting any prior entry.
func (l *Ledger) Record(fingerprint, path string) {
	if l.Entries == nil {
		l.Entries = map[string]LedgerEntry{}
	}
	l.Entries[fingerprint] = LedgerEntry{
		Path:       path,
		IngestedAt: time.Now().UTC(),
	}
}

// LoadLedger loads the ingest ledger from a target .minutes/ledger.json.
// Returns an empty ledger if none exists yet.
// If overrideDir is non-empty, it is used instead of the default ~/.minutes/ location.
func (m *Manager) LoadLedger(overrideDir string) (*Ledger, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, ledgerFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Ledger{Entries: map[string]LedgerEntry{}}, nil
		}
		return nil, fmt.Errorf("reading ingest ledger: %w", err)
	}

	ledger := &Ledger{}
	if err := json.Unmarshal(data, &ledger); err != nil {
		return nil, fmt.Errorf("parsing ingest ledger: %w", err)
	}
	if ledger.Entries == nil {
		ledger.Entries = map[string]LedgerEntry{}
	}

	return ledger, nil
}

// SaveLedger persists the ingest ledger to a target .minutes/ledger.json.
func (m *Manager) SaveLedger(ledger *Ledger, overrideDir string) error {
	if ledger == nil {
		return errors.New("cannot save nil ledger")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling ingest ledger: %w", err)
	}

	path := filepath.Join(dir, ledgerFile)
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("writing ingest ledger: %w", err)
	}

	return nil
}

// ClearLedger removes the ledger file so every file is treated as new on the
// next ingest. Returns nil if the file doesn't exist (already cleared).
func (m *Manager) ClearLedger(overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, ledgerFile)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing ingest ledger: %w", err)
	}

	return nil
}
