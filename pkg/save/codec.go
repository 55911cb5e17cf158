package save

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/astrotools/astroSaveConverter/pkg/container"
)

const (
	// ChunkSize is the size of a Microsoft Store chunk file: 16 MiB, the big-endian
	// reading of the bytes 01 00 00 00.
	ChunkSize = 1 << 24

	// AdvisoryChunkLimit is the largest chunk count known to load in game. Larger saves
	// are converted anyway.
	AdvisoryChunkLimit = 9
)

// ToContiguous concatenates the chunk files ids found in sourceDir, in order.
// A missing chunk fails the whole conversion.
func ToContiguous(ids []container.Identifier, sourceDir string) ([]byte, error) {
	var buf bytes.Buffer
	for i, id := range ids {
		data, err := os.ReadFile(filepath.Join(sourceDir, id.FileName()))
		if err != nil {
			return nil, fmt.Errorf("read chunk %d: %w", i, err)
		}
		buf.Write(data)
	}
	return buf.Bytes(), nil
}

// ToContiguous returns the Steam form of the save whose chunks live in sourceDir.
func (s *Save) ToContiguous(sourceDir string) ([]byte, error) {
	return ToContiguous(s.Chunks, sourceDir)
}

// Split cuts r into windows of size bytes and gives each window a new identifier.
//
// Splitting stops after the first window shorter than size. That window is kept even
// when empty, so an input whose length is a multiple of size ends with an empty chunk.
func Split(r io.Reader, size int) ([]container.Identifier, [][]byte, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("invalid chunk size %d", size)
	}

	var (
		ids     []container.Identifier
		buffers [][]byte
	)

	for n := size; n == size; {
		buf := make([]byte, size)
		var err error
		n, err = io.ReadFull(r, buf)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, nil, fmt.Errorf("read chunk %d: %w", len(buffers), err)
		}

		id, err := container.NewIdentifier()
		if err != nil {
			return nil, nil, err
		}
		ids = append(ids, id)
		buffers = append(buffers, buf[:n])
	}

	return ids, buffers, nil
}

// ToChunks splits the Steam save file at path into ChunkSize chunks.
func ToChunks(path string) ([]container.Identifier, [][]byte, error) {
	return ToChunksSize(path, ChunkSize)
}

// ToChunksSize splits the Steam save file at path into chunks of size bytes.
func ToChunksSize(path string, size int) ([]container.Identifier, [][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open save: %w", err)
	}
	defer f.Close()

	return Split(f, size)
}

// ToChunks splits the Steam save file at path and records the new identifiers as the
// chunks of s.
func (s *Save) ToChunks(path string, size int) ([]container.Identifier, [][]byte, error) {
	ids, buffers, err := ToChunksSize(path, size)
	if err != nil {
		return nil, nil, err
	}
	s.Chunks = ids
	return ids, buffers, nil
}
