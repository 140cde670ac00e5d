// Package pagination provides opaque cursors for paging through the alert
// queue. Cursors encode a generation and an offset, so a page request that
// straddles a snapshot replacement can be detected and restarted.
package pagination

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidCursor is returned for cursors this process did not issue.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor points into one snapshot generation.
type Cursor struct {
	Generation uint64
	Offset     int
}

// Encode renders the cursor as an opaque token.
func (c Cursor) Encode() string {
	raw := fmt.Sprintf("%d:%d", c.Generation, c.Offset)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// Decode parses a token produced by Encode. An empty token is the first page.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return Cursor{}, ErrInvalidCursor
	}

	gen, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	offset, err := strconv.Atoi(parts[1])
	if err != nil || offset < 0 {
		return Cursor{}, ErrInvalidCursor
	}
	return Cursor{Generation: gen, Offset: offset}, nil
}

// Page slices items for the cursor and returns the next cursor token, or ""
// on the last page. A cursor from an older generation restarts at offset 0
// of the current one; the feed has been replaced underneath it.
func Page[T any](items []T, generation uint64, c Cursor, limit int) ([]T, string) {
	if limit <= 0 {
		limit = 50
	}
	offset := c.Offset
	if c.Generation != generation {
		offset = 0
	}
	if offset >= len(items) {
		return nil, ""
	}

	end := offset + limit
	if end >= len(items) {
		return items[offset:], ""
	}
	next := Cursor{Generation: generation, Offset: end}
	return items[offset:end], next.Encode()
}
