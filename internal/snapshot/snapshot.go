// Package snapshot stores a result table in a compact columnar file so it
// can be reloaded, plotted, and exported without a database connection.
//
// A snapshot file is the magic "WQSNAP1" followed by a zstd stream holding
// one gob-encoded payload. Each column carries a single value kind, a null
// bitmap, and one typed vector.
package snapshot

import (
	"bufio"
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/isws/wqrun/internal/database"
)

const magic = "WQSNAP1"

const formatVersion = 1

// ErrNotSnapshot is returned when the input does not start with the
// snapshot magic.
var ErrNotSnapshot = errors.New("not a snapshot file")

// Info describes a stored snapshot.
type Info struct {
	ID      uuid.UUID
	Created time.Time
	Rows    int
	Columns int
}

type payload struct {
	Version int
	ID      uuid.UUID
	Created time.Time
	Rows    int
	Columns []column
}

// Save writes t to w.
func Save(w io.Writer, t *database.Table) (Info, error) {
	p := payload{
		Version: formatVersion,
		ID:      uuid.New(),
		Created: time.Now().UTC(),
		Rows:    len(t.Rows),
		Columns: make([]column, len(t.Columns)),
	}
	for i := range t.Columns {
		p.Columns[i] = encodeColumn(t, i)
	}

	if _, err := io.WriteString(w, magic); err != nil {
		return Info{}, fmt.Errorf("write magic: %w", err)
	}

	enc, err := zstd.NewWriter(w)
	if err != nil {
		return Info{}, fmt.Errorf("create compressor: %w", err)
	}
	if err := gob.NewEncoder(enc).Encode(&p); err != nil {
		enc.Close()
		return Info{}, fmt.Errorf("encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return Info{}, fmt.Errorf("flush snapshot: %w", err)
	}

	return p.info(), nil
}

// Load reads a table written by Save.
func Load(r io.Reader) (*database.Table, Info, error) {
	head := make([]byte, len(magic))
	if _, err := io.ReadFull(r, head); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, Info{}, ErrNotSnapshot
		}
		return nil, Info{}, fmt.Errorf("read magic: %w", err)
	}
	if !bytes.Equal(head, []byte(magic)) {
		return nil, Info{}, ErrNotSnapshot
	}

	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, Info{}, fmt.Errorf("create decompressor: %w", err)
	}
	defer dec.Close()

	var p payload
	if err := gob.NewDecoder(dec).Decode(&p); err != nil {
		return nil, Info{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if p.Version != formatVersion {
		return nil, Info{}, fmt.Errorf("unsupported snapshot version %d", p.Version)
	}

	t := &database.Table{
		Columns: make([]database.Column, len(p.Columns)),
		Rows:    make([][]any, p.Rows),
	}
	for i := range t.Rows {
		t.Rows[i] = make([]any, len(p.Columns))
	}
	for ci, c := range p.Columns {
		t.Columns[ci] = database.Column{Name: c.Name, DataType: c.DataType}
		if err := c.decodeInto(t.Rows, ci); err != nil {
			return nil, Info{}, fmt.Errorf("column %q: %w", c.Name, err)
		}
	}

	return t, p.info(), nil
}

// SaveFile writes t to path, creating parent directories as needed.
func SaveFile(path string, t *database.Table) (Info, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Info{}, fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return Info{}, fmt.Errorf("create snapshot: %w", err)
	}

	bw := bufio.NewWriter(f)
	info, err := Save(bw, t)
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		f.Close()
		return Info{}, err
	}
	return info, f.Close()
}

// LoadFile reads the snapshot at path.
func LoadFile(path string) (*database.Table, Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Info{}, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	return Load(bufio.NewReader(f))
}

func (p payload) info() Info {
	return Info{ID: p.ID, Created: p.Created, Rows: p.Rows, Columns: len(p.Columns)}
}
