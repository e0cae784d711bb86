// Package ntar reads and writes the class archive format used for package
// signatures. An archive is a flat sequence of entries; each entry is a
// name followed by its content, and both are stored as a 4-byte
// little-endian length followed by that many bytes.
package ntar

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"fortio.org/safecast"
)

// ErrUnexpectedEOF is returned when an archive ends inside an entry.
var ErrUnexpectedEOF = errors.New("ntar: unexpected EOF")

type Entry struct {
	Name    string
	Content []byte
}

type Reader struct {
	r io.Reader
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next returns the next entry, or io.EOF once the archive is exhausted.
func (r *Reader) Next() (Entry, error) {
	name, err := r.readBlock(true)
	if err != nil {
		return Entry{}, err
	}
	content, err := r.readBlock(false)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %q: %w", name, err)
	}
	return Entry{Name: string(name), Content: content}, nil
}

// All reads every remaining entry.
func (r *Reader) All() ([]Entry, error) {
	var entries []Entry
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}
		entries = append(entries, e)
	}
}

func (r *Reader) readBlock(first bool) ([]byte, error) {
	var size [4]byte
	n, err := io.ReadFull(r.r, size[:])
	switch {
	case err == io.EOF && n == 0 && first:
		return nil, io.EOF
	case err == io.EOF || err == io.ErrUnexpectedEOF:
		return nil, ErrUnexpectedEOF
	case err != nil:
		return nil, err
	}
	buf := make([]byte, binary.LittleEndian.Uint32(size[:]))
	if _, err := io.ReadFull(r.r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}

type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) Put(name string, content []byte) error {
	if err := w.writeBlock([]byte(name)); err != nil {
		return fmt.Errorf("entry %q: %w", name, err)
	}
	if err := w.writeBlock(content); err != nil {
		return fmt.Errorf("entry %q: %w", name, err)
	}
	return nil
}

func (w *Writer) writeBlock(b []byte) error {
	size, err := safecast.Conv[uint32](len(b))
	if err != nil {
		return err
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], size)
	if _, err := w.w.Write(buf[:]); err != nil {
		return err
	}
	_, err = w.w.Write(b)
	return err
}

// Flush writes buffered entries to the underlying writer. It does not
// close it.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
