package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/storeline/bestsellers/pkg/rank"
)

var (
	// ErrInvalidEntry indicates the cache payload could not be decoded even
	// after defensive unwrapping. Callers treat this as a miss.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Entry is the stored form of a ranked list. FreshUntil is zero for layers
// that do not enforce reader-side freshness (snapshot, and process-local,
// which applies its own TTL against StoredAt).
type Entry struct {
	List       rank.RankedList `json:"list"`
	StoredAt   time.Time       `json:"stored_at"`
	FreshUntil time.Time       `json:"fresh_until,omitempty"`
}

// NewEntry wraps a ranked list with the current timestamp.
func NewEntry(list rank.RankedList) Entry {
	return Entry{List: list, StoredAt: time.Now().UTC()}
}

// IsFresh reports whether the entry is within its own freshness bound.
// Entries without a bound are always fresh to the reader.
func (e *Entry) IsFresh() bool {
	return e.FreshUntil.IsZero() || time.Now().Before(e.FreshUntil)
}

// Encode marshals the entry for storage.
func Encode(e Entry) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal cache entry: %w", err)
	}
	return data, nil
}

// Decode unmarshals a stored payload. Historic writers double-encoded the
// JSON (a JSON string wrapping the real document), and the oldest ones stored
// the bare list without an envelope; both forms are unwrapped here. Anything
// else is ErrInvalidEntry: a miss, never a crash.
func Decode(data []byte) (Entry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Entry{}, ErrInvalidEntry
	}

	// Double-encoded payload: a JSON string containing the document.
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return Entry{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
		}
		return Decode([]byte(inner))
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}

	// Envelope-less legacy payload: the document is the list itself.
	if e.StoredAt.IsZero() && e.List.Handles == nil {
		var list rank.RankedList
		if err := json.Unmarshal(data, &list); err != nil || list.Handles == nil {
			return Entry{}, ErrInvalidEntry
		}
		return Entry{List: list}, nil
	}

	return e, nil
}
