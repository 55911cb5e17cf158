package container

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

const (
	// MetadataSize is the fixed binary size of one chunk record.
	MetadataSize = 160

	// NameSize is the size of the UTF-16LE name field at the start of a record.
	NameSize = 128

	// identifierOffset is where the chunk identifier starts within a record.
	identifierOffset = MetadataSize - IdentifierSize // 144
)

// multiChunkSeparator precedes the "<i>$<total>$1" marker of saves stored in several chunks.
const multiChunkSeparator = "$$"

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// ChunkMetadata is one 160-byte record of a container index.
type ChunkMetadata struct {
	Name     [NameSize]byte // UTF-16LE, NUL padded
	Reserved [16]byte
	ID       Identifier
}

// NewChunkMetadata builds the record for chunk index of a save stored in total chunks.
// Saves with more than one chunk carry the "$$<index>$<total>$1" marker after their name.
func NewChunkMetadata(saveName string, index, total int) (ChunkMetadata, error) {
	text := saveName
	if total > 1 {
		text += fmt.Sprintf("%s%d$%d$1", multiChunkSeparator, index, total)
	}

	encoded, err := utf16le.NewEncoder().String(text)
	if err != nil {
		return ChunkMetadata{}, fmt.Errorf("encode name %q: %w", text, err)
	}
	if len(encoded) > NameSize {
		return ChunkMetadata{}, fmt.Errorf("%w: %q takes %d bytes, limit %d", ErrNameTooLong, text, len(encoded), NameSize)
	}

	var m ChunkMetadata
	copy(m.Name[:], encoded)
	return m, nil
}

// NameText returns the whole decoded name field, marker and padding included.
func (m *ChunkMetadata) NameText() string {
	text, err := utf16le.NewDecoder().Bytes(m.Name[:])
	if err != nil {
		// The decoder replaces malformed sequences instead of failing.
		return ""
	}
	return string(text)
}

// SaveName returns the name of the save this chunk belongs to: the decoded name
// field cut at the first "$$" or NUL.
func (m *ChunkMetadata) SaveName() string {
	text := m.NameText()
	if i := strings.Index(text, multiChunkSeparator); i >= 0 {
		text = text[:i]
	}
	if i := strings.IndexByte(text, 0); i >= 0 {
		text = text[:i]
	}
	return text
}

// EncodeTo writes the record to buf, which must be at least MetadataSize bytes.
func (m *ChunkMetadata) EncodeTo(buf []byte) {
	copy(buf[0:NameSize], m.Name[:])
	copy(buf[NameSize:identifierOffset], m.Reserved[:])
	copy(buf[identifierOffset:MetadataSize], m.ID[:])
}

// DecodeFrom reads the record from buf, which must be at least MetadataSize bytes.
func (m *ChunkMetadata) DecodeFrom(buf []byte) {
	copy(m.Name[:], buf[0:NameSize])
	copy(m.Reserved[:], buf[NameSize:identifierOffset])
	copy(m.ID[:], buf[identifierOffset:MetadataSize])
}

// EncodeRecords builds the records for a save stored in the chunks ids, in order.
func EncodeRecords(saveName string, ids []Identifier) ([]byte, error) {
	buf := make([]byte, len(ids)*MetadataSize)
	for i, id := range ids {
		m, err := NewChunkMetadata(saveName, i, len(ids))
		if err != nil {
			return nil, err
		}
		m.ID = id
		m.EncodeTo(buf[i*MetadataSize:])
	}
	return buf, nil
}
