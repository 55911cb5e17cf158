package container

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultFileName is the name given to containers created by CreateEmpty.
const DefaultFileName = "container.1"

// Append registers the chunks ids of a save at the end of the container at path.
//
// The chunk count in the preamble is updated in place first, then the new records are
// appended after every existing byte. A crash between the two writes leaves a count
// larger than the record list.
func Append(path, saveName string, ids []Identifier) error {
	records, err := EncodeRecords(saveName, ids)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("open container: %w", err)
	}
	defer f.Close()

	var header [HeaderSize]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fmt.Errorf("read container header: %w", ErrTruncated)
		}
		return fmt.Errorf("read container header: %w", err)
	}
	if header[0] != Magic[0] || header[1] != Magic[1] {
		return fmt.Errorf("%w: expected magic %x, got %x", ErrInvalidFormat, Magic, header[0:2])
	}

	count := binary.LittleEndian.Uint32(header[countOffset:HeaderSize])
	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], count+uint32(len(ids)))
	if _, err := f.WriteAt(countBuf[:], countOffset); err != nil {
		return fmt.Errorf("write chunk count: %w", err)
	}

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seek to end: %w", err)
	}
	if _, err := f.Write(records); err != nil {
		return fmt.Errorf("append records: %w", err)
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync container: %w", err)
	}
	return f.Close()
}

// List returns the names of the container files in dir, sorted.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.Contains(e.Name(), "container") {
			continue
		}
		names = append(names, e.Name())
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoContainer, dir)
	}
	sort.Strings(names)
	return names, nil
}

// CreateEmpty writes a container holding no chunks to dir and returns its path.
func CreateEmpty(dir string) (string, error) {
	data, err := (&Index{}).MarshalBinary()
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, DefaultFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("create container: %w", err)
	}
	return path, nil
}
