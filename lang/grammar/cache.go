package grammar

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/xxh3"
)

// Fingerprint returns a stable hash identifying a grammar: the start
// symbol plus every rule's shape in order. A cached table whose Sum does
// not match the fingerprint of the current rules is stale and ignored.
func Fingerprint(rules []Rule, start string) uint64 {
	var buf bytes.Buffer

	buf.WriteString(start)
	buf.WriteByte(0)

	for _, r := range rules {
		buf.WriteString(r.LHS)
		buf.WriteByte(0x1f)

		for _, s := range r.RHS {
			buf.WriteString(s)
			buf.WriteByte(0x1f)
		}

		buf.WriteByte(0x1e)
	}

	return xxh3.Hash(buf.Bytes())
}

// TableCache stores and retrieves built parse tables. Implementations must
// tolerate concurrent use; a Load that misses or fails is answered by a
// rebuild, never an error.
type TableCache interface {
	Load(key string) (*Table, bool)
	Store(key string, t *Table) error
}

// DirCache persists tables as gob files in a directory.
type DirCache struct {
	Dir string
}

// Load reads a previously stored table. Any read or decode failure is
// treated as a cache miss.
func (c DirCache) Load(key string) (*Table, bool) {
	data, err := os.ReadFile(filepath.Join(c.Dir, key))
	if err != nil {
		return nil, false
	}

	t := new(Table)

	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(t); err != nil {
		return nil, false
	}

	return t, true
}

// Store writes the table to a temporary file and renames it into place.
// Equal tables always encode to identical bytes, so racing writers are
// harmless regardless of which rename wins.
func (c DirCache) Store(key string, t *Table) error {
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer

	if err := gob.NewEncoder(&buf).Encode(t); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.Dir, key+".*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return err
	}

	return os.Rename(tmp.Name(), filepath.Join(c.Dir, key))
}

// LoadOrBuild returns the parse table for rules, consulting cache first.
// A nil cache always builds. Freshly built tables are stored back; a
// failed store is not an error since the table itself is usable.
func LoadOrBuild(cache TableCache, rules []Rule, start string) (*Table, error) {
	sum := Fingerprint(rules, start)
	key := fmt.Sprintf("lalr-%016x.gob", sum)

	if cache != nil {
		if t, ok := cache.Load(key); ok && t.Sum == sum {
			return t, nil
		}
	}

	t, err := Build(rules, start)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		_ = cache.Store(key, t)
	}

	return t, nil
}
