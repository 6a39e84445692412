// Package sink writes generated runs to disk (JSONL, CSV or SQLite) or streams
// them to a writer at a fixed rate.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"eventsim/internal/eventlog"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Format selects the on-disk representation of a run.
type Format string

const (
	FormatJSONL  Format = "jsonl"
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// ParseFormat accepts a format name case-insensitively. "json" is an alias for
// jsonl.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "jsonl", "json", "ndjson":
		return FormatJSONL, nil
	case "csv":
		return FormatCSV, nil
	case "sqlite", "db":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}

// Paths are the files a run is written to. Unused entries are empty.
type Paths struct {
	Events   string `json:"events,omitempty"`
	Users    string `json:"users,omitempty"`
	Funnels  string `json:"funnels"`
	Database string `json:"database,omitempty"`
}

// FileNames builds the output paths of a run named name inside dir.
func FileNames(dir, name string, format Format) Paths {
	p := Paths{Funnels: filepath.Join(dir, name+"-FUNNELS.json")}
	switch format {
	case FormatSQLite:
		p.Database = filepath.Join(dir, name+".db")
	case FormatCSV:
		p.Events = filepath.Join(dir, name+"-EVENTS.csv")
		p.Users = filepath.Join(dir, name+"-USERS.csv")
	default:
		p.Events = filepath.Join(dir, eventlog.FileName(name))
		p.Users = filepath.Join(dir, name+"-USERS.jsonl")
	}
	return p
}

// Output is everything a run produces.
type Output struct {
	Events  []eventlog.Event
	Users   []map[string]any
	Funnels any
}

// Write persists out under dir. Independent files are written concurrently.
func Write(ctx context.Context, dir, name string, format Format, out Output) (Paths, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Paths{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	paths := FileNames(dir, name, format)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return writeFile(paths.Funnels, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(out.Funnels)
		})
	})

	switch format {
	case FormatSQLite:
		g.Go(func() error {
			return WriteSQLite(ctx, paths.Database, out.Events, out.Users)
		})
	case FormatCSV:
		g.Go(func() error {
			records := make([]map[string]any, len(out.Events))
			for i, e := range out.Events {
				records[i] = e.Record()
			}
			return writeFile(paths.Events, func(w io.Writer) error { return WriteCSV(w, records) })
		})
		g.Go(func() error {
			return writeFile(paths.Users, func(w io.Writer) error { return WriteCSV(w, out.Users) })
		})
	default:
		g.Go(func() error {
			store := eventlog.NewStore()
			store.Append(name, out.Events)
			_, err := store.Save(dir, name)
			return err
		})
		g.Go(func() error {
			return writeFile(paths.Users, func(w io.Writer) error { return WriteRecordsJSONL(w, out.Users) })
		})
	}

	if err := g.Wait(); err != nil {
		return Paths{}, err
	}

	log.Info().
		Str("dir", dir).
		Str("format", string(format)).
		Int("events", len(out.Events)).
		Int("users", len(out.Users)).
		Msg("Run written to disk")
	return paths, nil
}

// writeFile writes through a temporary file that is renamed into place.
func writeFile(path string, fill func(io.Writer) error) error {
	tmpPath := path + ".tmp"
	file, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}

	if err := fill(file); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
