// Package eventlog holds generated events per simulation run and persists them
// as JSONL.
package eventlog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// FileName returns the JSONL file name of a run's event log.
func FileName(run string) string {
	return fmt.Sprintf("%s-EVENTS.jsonl", run)
}

// Store provides thread-safe, chronological storage for generated events.
type Store struct {
	mu   sync.RWMutex
	logs map[string][]Event // Partitioned by run name
}

// NewStore creates a new empty Store.
func NewStore() *Store {
	return &Store{
		logs: make(map[string][]Event),
	}
}

// Append adds events to a run's log, dropping duplicates and keeping the log
// sorted by time. It returns the number of events actually added.
func (s *Store) Append(run string, events []Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	logData := s.logs[run]

	existing := make(map[string]bool, len(logData))
	for _, e := range logData {
		existing[e.identity()] = true
	}

	added := 0
	for _, e := range events {
		id := e.identity()
		if existing[id] {
			continue
		}
		existing[id] = true
		logData = append(logData, e)
		added++
	}

	if added == 0 {
		return 0
	}

	// ISO-8601 UTC strings of fixed width sort chronologically.
	sort.SliceStable(logData, func(i, j int) bool {
		if logData[i].Time != logData[j].Time {
			return logData[i].Time < logData[j].Time
		}
		return logData[i].DistinctID < logData[j].DistinctID
	})

	s.logs[run] = logData
	return added
}

// Load reads a run's events from its JSONL file in dir. A missing file is not
// an error.
func (s *Store) Load(dir string, run string) error {
	path := filepath.Join(dir, FileName(run))
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open event log: %w", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			log.Warn().Err(err).Str("run", run).Msg("Skipping invalid JSON line in event log")
			continue
		}
		events = append(events, e)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading event log: %w", err)
	}

	log.Info().Str("run", run).Int("count", len(events)).Msg("Loaded events from disk")
	s.Append(run, events)
	return nil
}

// Save writes a run's events to its JSONL file in dir and returns the path. The
// file is written to a temporary name first and renamed into place.
func (s *Store) Save(dir string, run string) (string, error) {
	s.mu.RLock()
	logData := s.logs[run]
	s.mu.RUnlock()

	path := filepath.Join(dir, FileName(run))
	tmpPath := path + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp event log: %w", err)
	}

	if err := WriteJSONL(file, logData); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return "", err
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("failed to rename event log: %w", err)
	}

	log.Info().Str("run", run).Int("count", len(logData)).Str("path", path).Msg("Event log saved")
	return path, nil
}

// Count returns the number of events stored for a run.
func (s *Store) Count(run string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[run])
}

// Events returns a copy of a run's events in chronological order.
func (s *Store) Events(run string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, len(s.logs[run]))
	copy(out, s.logs[run])
	return out
}

// Latest returns the time of the most recent event of a run.
func (s *Store) Latest(run string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logData := s.logs[run]
	if len(logData) == 0 {
		return time.Time{}
	}
	return logData[len(logData)-1].At()
}
