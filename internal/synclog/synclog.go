// Package synclog appends one CSV row per synced account to a run log.
// The log is audit output only; nothing reads it back to decide what to sync.
package synclog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp  time.Time
	Bank       string
	Account    string
	AssetID    int64
	Fetched    int
	Inserted   int
	Duplicates int
	Skipped    int // failed normalization, rejected or failed insertion
	Balance    string
	Currency   string
}

// Header is the CSV header for the run log.
const Header = "timestamp,bank,account,asset_id,fetched,inserted,duplicates,skipped,balance,currency"

const (
	numFields     = 10
	colTimestamp  = 0
	colBank       = 1
	colAccount    = 2
	colAssetID    = 3
	colFetched    = 4
	colInserted   = 5
	colDuplicates = 6
	colSkipped    = 7
	colBalance    = 8
	colCurrency   = 9
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colBank] = e.Bank
	row[colAccount] = e.Account
	row[colAssetID] = strconv.FormatInt(e.AssetID, 10)
	row[colFetched] = strconv.Itoa(e.Fetched)
	row[colInserted] = strconv.Itoa(e.Inserted)
	row[colDuplicates] = strconv.Itoa(e.Duplicates)
	row[colSkipped] = strconv.Itoa(e.Skipped)
	row[colBalance] = e.Balance
	row[colCurrency] = e.Currency
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
	assetID, err := strconv.ParseInt(record[colAssetID], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing asset_id %q: %w", record[colAssetID], err)
	}

	counts := make([]int, 4)
	for i, col := range []int{colFetched, colInserted, colDuplicates, colSkipped} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
		counts[i] = n
	}

	return Entry{
		Timestamp:  ts,
		Bank:       record[colBank],
		Account:    record[colAccount],
		AssetID:    assetID,
		Fetched:    counts[0],
		Inserted:   counts[1],
		Duplicates: counts[2],
		Skipped:    counts[3],
		Balance:    record[colBalance],
		Currency:   record[colCurrency],
	}, nil
}

// Append writes entries to the log at path, creating the file and header if needed.
func Append(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening sync log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
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
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from the log at path.
// Returns an empty slice if the file does not exist.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening sync log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading sync log CSV: %w", err)
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
