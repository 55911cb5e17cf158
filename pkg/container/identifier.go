package container

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Microsoft/go-winio/pkg/guid"
)

// IdentifierSize is the binary size of a chunk identifier.
const IdentifierSize = 16

// Identifier names a chunk file. The bytes are kept in on-disk order, which is the
// Windows GUID layout: the first three fields are little-endian.
type Identifier [IdentifierSize]byte

// NewIdentifier returns a random (version 4) identifier.
func NewIdentifier() (Identifier, error) {
	g, err := guid.NewV4()
	if err != nil {
		return Identifier{}, fmt.Errorf("generate identifier: %w", err)
	}
	return Identifier(g.ToWindowsArray()), nil
}

// ParseIdentifier parses a chunk file name (32 hex digits, any case) back into an identifier.
func ParseIdentifier(name string) (Identifier, error) {
	if len(name) != 2*IdentifierSize {
		return Identifier{}, fmt.Errorf("invalid chunk name %q: need %d hex digits", name, 2*IdentifierSize)
	}
	if _, err := hex.DecodeString(name); err != nil {
		return Identifier{}, fmt.Errorf("invalid chunk name %q: %w", name, err)
	}

	g, err := guid.FromString(name[0:8] + "-" + name[8:12] + "-" + name[12:16] + "-" + name[16:20] + "-" + name[20:32])
	if err != nil {
		return Identifier{}, fmt.Errorf("invalid chunk name %q: %w", name, err)
	}
	return Identifier(g.ToWindowsArray()), nil
}

// GUID returns the identifier as a GUID value.
func (id Identifier) GUID() guid.GUID {
	return guid.FromWindowsArray(id)
}

// FileName returns the name of the chunk file: the uppercase hex form of the GUID
// without separators.
func (id Identifier) FileName() string {
	return strings.ToUpper(strings.ReplaceAll(id.GUID().String(), "-", ""))
}

func (id Identifier) String() string {
	return id.FileName()
}

// IsZero reports whether every byte of the identifier is zero.
func (id Identifier) IsZero() bool {
	return id == Identifier{}
}
