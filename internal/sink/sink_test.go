package sink

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"eventsim/internal/enrich"
	"eventsim/internal/eventlog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvents() []eventlog.Event {
	return []eventlog.Event{
		{Event: "sign up", DistinctID: "u1", Time: "2024-01-01T00:00:00.000Z", InsertID: "1"},
		{Event: "purchase", DistinctID: "u1", Time: "2024-01-02T00:00:00.000Z", InsertID: "2", Properties: map[string]any{"amount": 9.5}},
		{Event: "page view", DistinctID: "u2", Time: "2024-01-03T00:00:00.000Z", InsertID: "3", Properties: map[string]any{"page": "/"}},
	}
}

func sampleUsers() []map[string]any {
	return []map[string]any{
		{"distinct_id": "u1", "created": "2024-01-01T00:00:00.000Z"},
		{"distinct_id": "u2", "created": "2024-01-03T00:00:00.000Z"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatJSONL},
		{"JSON", FormatJSONL},
		{"csv", FormatCSV},
		{" sqlite ", FormatSQLite},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestFileNames(t *testing.T) {
	p := FileNames("out", "demo", FormatJSONL)
	assert.Equal(t, filepath.Join("out", "demo-EVENTS.jsonl"), p.Events)
	assert.Equal(t, filepath.Join("out", "demo-USERS.jsonl"), p.Users)
	assert.Equal(t, filepath.Join("out", "demo-FUNNELS.json"), p.Funnels)
	assert.Empty(t, p.Database)

	p = FileNames("out", "demo", FormatCSV)
	assert.Equal(t, filepath.Join("out", "demo-EVENTS.csv"), p.Events)

	p = FileNames("out", "demo", FormatSQLite)
	assert.Equal(t, filepath.Join("out", "demo.db"), p.Database)
	assert.Empty(t, p.Events)
}

func TestWriteCSV_HeaderIsUniqueKeys(t *testing.T) {
	records := make([]map[string]any, 0)
	for _, e := range sampleEvents() {
		records = append(records, e.Record())
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, len(records)+1)
	assert.Equal(t, enrich.UniqueKeys(records), rows[0])

	amountCol := -1
	for i, h := range rows[0] {
		if h == "amount" {
			amountCol = i
		}
	}
	require.NotEqual(t, -1, amountCol)
	assert.Equal(t, "", rows[1][amountCol])
	assert.Equal(t, "9.5", rows[2][amountCol])
}

func TestWrite_JSONL(t *testing.T) {
	dir := t.TempDir()
	paths, err := Write(context.Background(), dir, "demo", FormatJSONL, Output{
		Events:  sampleEvents(),
		Users:   sampleUsers(),
		Funnels: []string{"a"},
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, eventlog.FileName("demo")), paths.Events)
	store := eventlog.NewStore()
	require.NoError(t, store.Load(dir, "demo"))
	assert.Equal(t, sampleEvents(), store.Events("demo"))
	assert.Equal(t, len(sampleEvents()), store.Count("demo"))
	last := sampleEvents()[len(sampleEvents())-1]
	assert.True(t, store.Latest("demo").Equal(last.At()))

	users, err := os.ReadFile(paths.Users)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(users), "\n"))

	funnels, err := os.ReadFile(paths.Funnels)
	require.NoError(t, err)
	var decoded []string
	require.NoError(t, json.Unmarshal(funnels, &decoded))
	assert.Equal(t, []string{"a"}, decoded)

	matches, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	assert.Empty(t, matches)
}

func TestWrite_CSV(t *testing.T) {
	dir := t.TempDir()
	paths, err := Write(context.Background(), dir, "demo", FormatCSV, Output{
		Events: sampleEvents(),
		Users:  sampleUsers(),
	})
	require.NoError(t, err)

	f, err := os.Open(paths.Users)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"created", "distinct_id"}, rows[0])
	assert.Len(t, rows, 3)
}

func TestWrite_SQLite(t *testing.T) {
	dir := t.TempDir()
	paths, err := Write(context.Background(), dir, "demo", FormatSQLite, Output{
		Events: sampleEvents(),
		Users:  sampleUsers(),
	})
	require.NoError(t, err)

	db, err := sql.Open("sqlite", paths.Database)
	require.NoError(t, err)

	var events, users int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&events))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&users))
	assert.Equal(t, len(sampleEvents()), events)
	assert.Equal(t, len(sampleUsers()), users)

	var props string
	require.NoError(t, db.QueryRow(`SELECT properties FROM events WHERE insert_id = '2'`).Scan(&props))
	assert.JSONEq(t, `{"amount": 9.5}`, props)
	require.NoError(t, db.Close())

	// Rewriting replaces the database rather than appending to it.
	_, err = Write(context.Background(), dir, "demo", FormatSQLite, Output{Events: sampleEvents()[:1]})
	require.NoError(t, err)
	db2, err := sql.Open("sqlite", paths.Database)
	require.NoError(t, err)
	defer db2.Close()
	require.NoError(t, db2.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&events))
	assert.Equal(t, 1, events)
}

func TestWriteSQLite_UserWithoutID(t *testing.T) {
	err := WriteSQLite(context.Background(), filepath.Join(t.TempDir(), "x.db"), nil, []map[string]any{{"created": "now"}})
	assert.Error(t, err)
}

func TestStream(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf, 0, 1)

	n, err := s.Send(context.Background(), sampleEvents())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	scanner := bufio.NewScanner(&buf)
	lines := 0
	for scanner.Scan() {
		var e eventlog.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		lines++
	}
	assert.Equal(t, 3, lines)
}

func TestStream_Paced(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf, 20, 1)

	start := time.Now()
	n, err := s.Send(context.Background(), sampleEvents())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	// The first token is available at once; two more take ~100ms at 20/s.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestStream_Cancelled(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf, 1, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := s.Send(ctx, sampleEvents())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, n)
}
