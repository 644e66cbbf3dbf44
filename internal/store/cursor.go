package store

import (
	"database/sql"
	"fmt"

	"github.com/roach88/kvquery/internal/value"
)

// cursor adapts sql.Rows to kv.Cursor. It holds the store's only
// connection until closed.
type cursor struct {
	rows *sql.Rows
	key  value.Value
	val  value.Value
	err  error
}

func (c *cursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	var k encodedKey
	var raw string
	if err := c.rows.Scan(&k.typ, &k.num, &k.str, &raw); err != nil {
		c.err = fmt.Errorf("scan cursor row: %w", err)
		return false
	}
	rec, err := decodeRecord(raw)
	if err != nil {
		c.err = err
		return false
	}
	c.key, c.val = k.decode(), rec
	return true
}

func (c *cursor) Key() value.Value   { return c.key }
func (c *cursor) Value() value.Value { return c.val }

func (c *cursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.rows.Err()
}

func (c *cursor) Close() error {
	return c.rows.Close()
}
