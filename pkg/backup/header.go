// Package backup protects save folders before a conversion writes into them, either as a
// plain directory copy or as a single zstd-compressed snapshot file.
package backup

import (
	"encoding/binary"
	"fmt"
)

// Magic bytes identifying a snapshot file.
var Magic = [4]byte{'A', 'S', 'B', 'K'}

// Version is the snapshot format version written by this package.
const Version uint32 = 1

// HeaderSize is the fixed binary size of a snapshot header.
const HeaderSize = 32 // 4 + 4 + 4 + 4 + 8 + 8 bytes

// Header precedes the compressed entry stream of a snapshot.
type Header struct {
	Magic            [4]byte
	Version          uint32
	Entries          uint32
	Reserved         uint32
	Length           uint64 // Uncompressed stream size
	CompressedLength uint64 // Compressed stream size
}

// Validate checks the header for validity.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("invalid magic: expected %x, got %x", Magic, h.Magic)
	}
	if h.Version == 0 || h.Version > Version {
		return fmt.Errorf("unsupported version %d", h.Version)
	}
	if h.Entries > 0 && h.CompressedLength == 0 {
		return fmt.Errorf("compressed size is zero")
	}
	return nil
}

// EncodeTo writes the header to buf, which must be at least HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.Entries)
	binary.LittleEndian.PutUint32(buf[12:16], h.Reserved)
	binary.LittleEndian.PutUint64(buf[16:24], h.Length)
	binary.LittleEndian.PutUint64(buf[24:32], h.CompressedLength)
}

// DecodeFrom reads the header from buf without validating it.
func (h *Header) DecodeFrom(buf []byte) {
	copy(h.Magic[:], buf[0:4])
	h.Version = binary.LittleEndian.Uint32(buf[4:8])
	h.Entries = binary.LittleEndian.Uint32(buf[8:12])
	h.Reserved = binary.LittleEndian.Uint32(buf[12:16])
	h.Length = binary.LittleEndian.Uint64(buf[16:24])
	h.CompressedLength = binary.LittleEndian.Uint64(buf[24:32])
}

// MarshalBinary encodes the header to binary format.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// UnmarshalBinary decodes and validates the header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("header data too short: need %d, got %d", HeaderSize, len(data))
	}
	h.DecodeFrom(data)
	return h.Validate()
}
