package deploy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mysql-ops/internal/errors"
)

// StatusSuccess is the only status ever recorded; failed attempts leave
// no entry.
const StatusSuccess = "success"

// HistoryEntry is one record in the deployment history document
type HistoryEntry struct {
	Timestamp string `json:"timestamp"`
	SQLFile   string `json:"sql_file"`
	Status    string `json:"status"`
}

// NewHistoryEntry creates a success entry for the given script, stamped
// with the current time in RFC 3339.
func NewHistoryEntry(sqlFile string) HistoryEntry {
	return HistoryEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		SQLFile:   sqlFile,
		Status:    StatusSuccess,
	}
}

// HistoryStore persists the append-only JSON history document. Entries are
// never removed or mutated once appended. A rewrite goes through a temp
// file followed by an atomic rename, so readers never observe a torn
// document; concurrent writers are still last-write-wins.
type HistoryStore struct {
	path string
}

// NewHistoryStore creates a store for the document at path
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

// Path returns the history document location
func (hs *HistoryStore) Path() string {
	return hs.path
}

// Ensure creates the document containing an empty sequence if it does not
// exist yet.
func (hs *HistoryStore) Ensure() error {
	if _, err := os.Stat(hs.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.NewAppError(errors.ErrorTypeHistory, "failed to stat history document", err)
	}

	return hs.write([]HistoryEntry{})
}

// Entries reads and parses the full ordered sequence of history entries
func (hs *HistoryStore) Entries() ([]HistoryEntry, error) {
	data, err := os.ReadFile(hs.path)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrorTypeHistory, "failed to read history document", err)
	}

	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.NewAppError(errors.ErrorTypeHistory,
			fmt.Sprintf("history document %q is malformed", hs.path), err)
	}

	return entries, nil
}

// Append adds one entry to the end of the document
func (hs *HistoryStore) Append(entry HistoryEntry) error {
	if err := hs.Ensure(); err != nil {
		return err
	}

	entries, err := hs.Entries()
	if err != nil {
		return err
	}

	return hs.write(append(entries, entry))
}

func (hs *HistoryStore) write(entries []HistoryEntry) error {
	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return errors.NewAppError(errors.ErrorTypeHistory, "failed to encode history document", err)
	}

	dir := filepath.Dir(hs.path)
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return errors.NewAppError(errors.ErrorTypeHistory, "failed to create temp history file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.NewAppError(errors.ErrorTypeHistory, "failed to write history document", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.NewAppError(errors.ErrorTypeHistory, "failed to close temp history file", err)
	}

	if err := os.Rename(tmpName, hs.path); err != nil {
		os.Remove(tmpName)
		return errors.NewAppError(errors.ErrorTypeHistory, "failed to replace history document", err)
	}

	return nil
}
