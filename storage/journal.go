package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const journalPrefix = "journal/"

// Entry is one transaction submitted by a configuration run.
type Entry struct {
	RunID    string    `json:"run_id"`
	Seq      uint64    `json:"seq"`
	Step     string    `json:"step"`
	Symbol   string    `json:"symbol,omitempty"`
	Function string    `json:"function"`
	Hash     string    `json:"hash"`
	Success  bool      `json:"success"`
	Time     time.Time `json:"time"`
}

// RunSummary describes one run found in the journal.
type RunSummary struct {
	RunID   string
	Started time.Time
	Entries int
}

// Journal appends entries per run to a Database. Keys sort by run and then by
// submission order.
type Journal struct {
	db  Database
	now func() time.Time

	mu   sync.Mutex
	next map[string]uint64
}

func NewJournal(db Database) *Journal {
	return &Journal{db: db, now: time.Now, next: make(map[string]uint64)}
}

func runPrefix(runID string) string {
	return journalPrefix + runID + "/"
}

func entryKey(runID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", runPrefix(runID), seq))
}

// Record appends entry to its run, assigning Seq and Time.
func (j *Journal) Record(entry Entry) error {
	if strings.TrimSpace(entry.RunID) == "" {
		return errors.New("storage: journal entry without run id")
	}
	if strings.Contains(entry.RunID, "/") {
		return fmt.Errorf("storage: invalid run id %q", entry.RunID)
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	seq, ok := j.next[entry.RunID]
	if !ok {
		count, err := j.count(entry.RunID)
		if err != nil {
			return err
		}
		seq = count
	}
	entry.Seq = seq
	if entry.Time.IsZero() {
		entry.Time = j.now().UTC()
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("storage: encode entry: %w", err)
	}
	if err := j.db.Put(entryKey(entry.RunID, seq), payload); err != nil {
		return fmt.Errorf("storage: write entry: %w", err)
	}
	j.next[entry.RunID] = seq + 1
	return nil
}

func (j *Journal) count(runID string) (uint64, error) {
	var n uint64
	err := j.db.Iterate([]byte(runPrefix(runID)), func(_, _ []byte) bool {
		n++
		return true
	})
	return n, err
}

// Entries returns the entries of runID in submission order.
func (j *Journal) Entries(runID string) ([]Entry, error) {
	var (
		out    []Entry
		decErr error
	)
	err := j.db.Iterate([]byte(runPrefix(runID)), func(key, value []byte) bool {
		var e Entry
		if err := json.Unmarshal(value, &e); err != nil {
			decErr = fmt.Errorf("storage: decode %s: %w", key, err)
			return false
		}
		out = append(out, e)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, decErr
}

// Runs lists every run in the journal ordered by start time.
func (j *Journal) Runs() ([]RunSummary, error) {
	index := map[string]int{}
	var (
		out    []RunSummary
		decErr error
	)
	err := j.db.Iterate([]byte(journalPrefix), func(key, value []byte) bool {
		var e Entry
		if err := json.Unmarshal(value, &e); err != nil {
			decErr = fmt.Errorf("storage: decode %s: %w", key, err)
			return false
		}
		i, ok := index[e.RunID]
		if !ok {
			index[e.RunID] = len(out)
			out = append(out, RunSummary{RunID: e.RunID, Started: e.Time})
			i = len(out) - 1
		}
		out[i].Entries++
		if e.Time.Before(out[i].Started) {
			out[i].Started = e.Time
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if decErr != nil {
		return nil, decErr
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Started.Before(out[b].Started) })
	return out, nil
}
