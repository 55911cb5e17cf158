package backup

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/DataDog/zstd"
)

// DefaultCompressionLevel is the zstd level used for snapshots.
const DefaultCompressionLevel = zstd.BestSpeed

// Writer stores files into a snapshot.
//
// Each entry in the compressed stream is a uint16 path length, the slash-separated
// path, a uint64 data length and the data, all little-endian.
type Writer struct {
	dst     io.WriteSeeker
	start   int64
	zWriter *zstd.Writer
	header  Header
	level   int
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCompressionLevel sets the zstd compression level.
func WithCompressionLevel(level int) WriterOption {
	return func(w *Writer) {
		w.level = level
	}
}

// NewWriter writes a placeholder header to dst and returns a Writer for the entries.
func NewWriter(dst io.WriteSeeker, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		dst:    dst,
		level:  DefaultCompressionLevel,
		header: Header{Magic: Magic, Version: Version},
	}
	for _, opt := range opts {
		opt(w)
	}

	start, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("get position: %w", err)
	}
	w.start = start

	headerBytes, _ := w.header.MarshalBinary()
	if _, err := dst.Write(headerBytes); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	w.zWriter = zstd.NewWriterLevel(dst, w.level)
	return w, nil
}

// Add stores data under the slash-separated path name.
func (w *Writer) Add(name string, data []byte) error {
	if len(name) == 0 || len(name) > math.MaxUint16 {
		return fmt.Errorf("invalid entry name length %d", len(name))
	}

	prefix := make([]byte, 2+len(name)+8)
	binary.LittleEndian.PutUint16(prefix[0:2], uint16(len(name)))
	copy(prefix[2:], name)
	binary.LittleEndian.PutUint64(prefix[2+len(name):], uint64(len(data)))

	if _, err := w.zWriter.Write(prefix); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}
	if _, err := w.zWriter.Write(data); err != nil {
		return fmt.Errorf("write entry %s: %w", name, err)
	}

	w.header.Entries++
	w.header.Length += uint64(len(prefix) + len(data))
	return nil
}

// Close flushes the compressed stream and rewrites the header with the final sizes.
func (w *Writer) Close() error {
	if err := w.zWriter.Close(); err != nil {
		return fmt.Errorf("close compressor: %w", err)
	}

	pos, err := w.dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("get position: %w", err)
	}
	w.header.CompressedLength = uint64(pos - w.start - HeaderSize)

	if _, err := w.dst.Seek(w.start, io.SeekStart); err != nil {
		return fmt.Errorf("seek to header: %w", err)
	}
	headerBytes, _ := w.header.MarshalBinary()
	if _, err := w.dst.Write(headerBytes); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if _, err := w.dst.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("seek to end: %w", err)
	}
	return nil
}

// Reader reads the entries of a snapshot.
type Reader struct {
	header  Header
	zReader io.ReadCloser
	read    uint32
}

// NewReader reads and validates the header of a snapshot.
func NewReader(r io.Reader) (*Reader, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	reader := &Reader{}
	if err := reader.header.UnmarshalBinary(buf[:]); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	reader.zReader = zstd.NewReader(r)
	return reader, nil
}

// Header returns the snapshot header.
func (r *Reader) Header() Header {
	return r.header
}

// Next returns the next entry, or io.EOF after the last one.
func (r *Reader) Next() (name string, data []byte, err error) {
	if r.read >= r.header.Entries {
		return "", nil, io.EOF
	}

	var lenBuf [2]byte
	if _, err := io.ReadFull(r.zReader, lenBuf[:]); err != nil {
		return "", nil, fmt.Errorf("read entry %d: %w", r.read, err)
	}
	rest := make([]byte, int(binary.LittleEndian.Uint16(lenBuf[:]))+8)
	if _, err := io.ReadFull(r.zReader, rest); err != nil {
		return "", nil, fmt.Errorf("read entry %d: %w", r.read, err)
	}

	name = string(rest[:len(rest)-8])
	size := binary.LittleEndian.Uint64(rest[len(rest)-8:])
	if size > r.header.Length {
		return "", nil, fmt.Errorf("entry %s: size %d exceeds snapshot length %d", name, size, r.header.Length)
	}

	data = make([]byte, size)
	if _, err := io.ReadFull(r.zReader, data); err != nil {
		return "", nil, fmt.Errorf("read entry %s: %w", name, err)
	}

	r.read++
	return name, data, nil
}

// Close closes the decompressor.
func (r *Reader) Close() error {
	return r.zReader.Close()
}

// Snapshot stores every regular file below dir into dst.
func Snapshot(dir string, dst io.WriteSeeker, opts ...WriterOption) error {
	w, err := NewWriter(dst, opts...)
	if err != nil {
		return err
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		return w.Add(filepath.ToSlash(rel), data)
	})
	if err != nil {
		w.zWriter.Close()
		return fmt.Errorf("snapshot %s: %w", dir, err)
	}

	return w.Close()
}

// SnapshotFile writes a snapshot of dir to the file at path.
func SnapshotFile(dir, path string, opts ...WriterOption) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()

	if err := Snapshot(dir, f, opts...); err != nil {
		return err
	}
	return f.Close()
}

// Restore writes the entries of a snapshot below dir.
func Restore(src io.Reader, dir string) error {
	r, err := NewReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		name, data, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if !filepath.IsLocal(filepath.FromSlash(name)) {
			return fmt.Errorf("entry %q escapes %s", name, dir)
		}
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("create dir for %s: %w", name, err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
}

// RestoreFile restores the snapshot file at path below dir.
func RestoreFile(path, dir string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	return Restore(f, dir)
}
