package activitylog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Actions recorded by the till.
const (
	ActionOpenShift    = "open_shift"
	ActionCloseShift   = "close_shift"
	ActionRecordEntry  = "record_entry"
	ActionTransfer     = "transfer"
	ActionAdjustment   = "opening_adjustment"
	ActionAcknowledged = "acknowledge_discrepancy"
)

// Entry is one row in the activity log.
type Entry struct {
	Timestamp     time.Time
	User          string
	Action        string
	Details       string
	SessionID     string
	EntryID       string
	CorrelationID string
}

// Header is the CSV header for activity-log.csv.
const Header = "timestamp,user,action,details,session_id,entry_id,correlation_id"

const (
	numFields        = 7
	logDir           = "logs"
	logFile          = "logs/activity-log.csv"
	colTimestamp     = 0
	colUser          = 1
	colAction        = 2
	colDetails       = 3
	colSessionID     = 4
	colEntryID       = 5
	colCorrelationID = 6
)

// Sink receives activity entries.
type Sink interface {
	Record(entries ...Entry) error
}

// FileSink appends to <root>/logs/activity-log.csv.
type FileSink struct {
	Root string
}

// Record implements Sink.
func (s FileSink) Record(entries ...Entry) error {
	return Append(s.Root, entries)
}

// Discard drops every entry.
var Discard Sink = discard{}

type discard struct{}

func (discard) Record(...Entry) error { return nil }

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colUser] = e.User
	row[colAction] = e.Action
	row[colDetails] = e.Details
	row[colSessionID] = e.SessionID
	row[colEntryID] = e.EntryID
	row[colCorrelationID] = e.CorrelationID
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	return Entry{
		Timestamp:     ts,
		User:          record[colUser],
		Action:        record[colAction],
		Details:       record[colDetails],
		SessionID:     record[colSessionID],
		EntryID:       record[colEntryID],
		CorrelationID: record[colCorrelationID],
	}, nil
}

// Append writes entries to <root>/logs/activity-log.csv, creating the file and header if needed.
func Append(root string, entries []Entry) error {
	dir := filepath.Join(root, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	return cw.Error()
}

// Read returns all entries from <root>/logs/activity-log.csv.
// Returns an empty slice if the file does not exist.
func Read(root string) ([]Entry, error) {
	path := filepath.Join(root, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
