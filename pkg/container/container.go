// Package container reads and updates the index file ("container.*") of a Microsoft Store
// Astroneer save folder.
//
// A container starts with an 8-byte preamble (2-byte magic, 2 reserved bytes and a
// little-endian chunk count) followed by one 160-byte ChunkMetadata record per chunk file.
// Chunk files live next to the container and are named after their Identifier.
package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// Magic bytes identifying a container index.
var Magic = [2]byte{0x04, 0x00}

// HeaderSize is the size of the preamble that precedes the records.
const HeaderSize = 8 // 2 + 2 + 4 bytes

// countOffset is the offset of the chunk count within the preamble.
const countOffset = 4

var (
	// ErrInvalidFormat is returned when the data does not start with Magic.
	ErrInvalidFormat = errors.New("invalid container format")

	// ErrTruncated is returned when the data is shorter than its declared records.
	ErrTruncated = errors.New("truncated container")

	// ErrNameTooLong is returned when a save name does not fit in a record.
	ErrNameTooLong = errors.New("save name too long")

	// ErrNoContainer is returned when a folder holds no container file.
	ErrNoContainer = errors.New("no container found")
)

// Index is a decoded container.
type Index struct {
	Magic    [2]byte
	Reserved [2]byte
	Records  []ChunkMetadata
}

// Entry is one save as described by the container: its name and its chunks in order.
type Entry struct {
	Name   string
	Chunks []Identifier
}

// ChunkCount returns the number of chunk records.
func (x *Index) ChunkCount() int {
	return len(x.Records)
}

// Decode parses a container index.
func Decode(data []byte) (*Index, error) {
	x := &Index{}
	if err := x.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return x, nil
}

// UnmarshalBinary decodes a container index from binary data.
// Chunk files are not checked for existence.
func (x *Index) UnmarshalBinary(data []byte) error {
	if len(data) < len(Magic) {
		return fmt.Errorf("%w: need %d header bytes, got %d", ErrTruncated, HeaderSize, len(data))
	}
	if data[0] != Magic[0] || data[1] != Magic[1] {
		return fmt.Errorf("%w: expected magic %x, got %x", ErrInvalidFormat, Magic, data[0:2])
	}
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: need %d header bytes, got %d", ErrTruncated, HeaderSize, len(data))
	}

	copy(x.Magic[:], data[0:2])
	copy(x.Reserved[:], data[2:4])
	count := binary.LittleEndian.Uint32(data[countOffset:HeaderSize])

	need := uint64(HeaderSize) + uint64(count)*MetadataSize
	if uint64(len(data)) < need {
		return fmt.Errorf("%w: %d records need %d bytes, got %d", ErrTruncated, count, need, len(data))
	}

	x.Records = make([]ChunkMetadata, count)
	offset := HeaderSize
	for i := range x.Records {
		x.Records[i].DecodeFrom(data[offset : offset+MetadataSize])
		offset += MetadataSize
	}

	return nil
}

// MarshalBinary encodes the container index to binary data.
func (x *Index) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize+len(x.Records)*MetadataSize)
	copy(buf[0:2], Magic[:])
	copy(buf[2:4], x.Reserved[:])
	binary.LittleEndian.PutUint32(buf[countOffset:HeaderSize], uint32(len(x.Records)))

	offset := HeaderSize
	for i := range x.Records {
		x.Records[i].EncodeTo(buf[offset:])
		offset += MetadataSize
	}
	return buf, nil
}

// Entries groups the records into saves.
func (x *Index) Entries() []Entry {
	return groupAdjacent(x.Records)
}

// groupAdjacent groups runs of consecutive records sharing a save name.
// Records of one name separated by another save form distinct entries with the same name.
func groupAdjacent(records []ChunkMetadata) []Entry {
	var entries []Entry
	for i := range records {
		name := records[i].SaveName()
		if n := len(entries); n == 0 || entries[n-1].Name != name {
			entries = append(entries, Entry{Name: name})
		}
		last := &entries[len(entries)-1]
		last.Chunks = append(last.Chunks, records[i].ID)
	}
	return entries
}

// ReadFile reads and parses a container index from a file.
func ReadFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read container: %w", err)
	}

	x, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("parse container %s: %w", path, err)
	}
	return x, nil
}
