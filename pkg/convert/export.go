package convert

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/astrotools/astroSaveConverter/pkg/container"
	"github.com/astrotools/astroSaveConverter/pkg/save"
)

// ErrTargetExists is returned when an export would overwrite a file.
var ErrTargetExists = errors.New("target file already exists")

// Converter writes converted saves to disk.
type Converter struct {
	logger    *log.Logger
	overwrite bool
	chunkSize int
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sends debug traces and notices to l.
func WithLogger(l *log.Logger) Option {
	return func(c *Converter) {
		c.logger = l
	}
}

// WithOverwrite allows ExportToSteam to replace existing Steam files.
func WithOverwrite(overwrite bool) Option {
	return func(c *Converter) {
		c.overwrite = overwrite
	}
}

// WithChunkSize changes the size of the chunks written by ExportToXbox.
func WithChunkSize(size int) Option {
	return func(c *Converter) {
		c.chunkSize = size
	}
}

// NewConverter creates a Converter. Without WithLogger nothing is logged.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		logger:    log.New(io.Discard, "", 0),
		chunkSize: save.ChunkSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExportToSteam writes s, stored as chunks in sourceDir, to destDir as a Steam file and
// returns its path. Nothing is written unless every chunk could be read.
func (c *Converter) ExportToSteam(s *save.Save, sourceDir, destDir string) (string, error) {
	target := filepath.Join(destDir, s.FileName())
	if !c.overwrite {
		if _, err := os.Stat(target); err == nil {
			return "", fmt.Errorf("%w: %s", ErrTargetExists, target)
		}
	}

	data, err := s.ToContiguous(sourceDir)
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", s.Name, err)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", destDir, err)
	}
	if err := os.WriteFile(target, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", target, err)
	}

	c.logger.Printf("save %s: %d chunks exported to %s", s.Name, len(s.Chunks), target)
	return target, nil
}

// ExportToXbox splits the Steam file steamFile into chunk files in destDir and
// registers them as save s in the container of destDir, creating one if needed.
//
// The container is only updated once every chunk file is written. When a chunk cannot
// be written the chunks already written are removed.
func (c *Converter) ExportToXbox(s *save.Save, steamFile, destDir string) error {
	ids, buffers, err := s.ToChunks(steamFile, c.chunkSize)
	if err != nil {
		return fmt.Errorf("split %s: %w", steamFile, err)
	}
	for _, id := range ids {
		c.logger.Printf("identifier generated: %s", id)
	}

	if len(ids) > save.AdvisoryChunkLimit {
		c.logger.Printf("notice: save %s has %d chunks, more than the %d known to load in game",
			s.Name, len(ids), save.AdvisoryChunkLimit)
	}

	written := make([]string, 0, len(ids))
	for i := range buffers {
		path, err := c.writeChunk(s, i, buffers[i], destDir)
		if err != nil {
			removeAll(written)
			return err
		}
		written = append(written, path)
	}

	containerPath, err := c.containerIn(destDir)
	if err != nil {
		removeAll(written)
		return err
	}

	c.logger.Printf("editing container %s", containerPath)
	if err := container.Append(containerPath, s.Name, s.Chunks); err != nil {
		removeAll(written)
		return fmt.Errorf("update container: %w", err)
	}
	return nil
}

// writeChunk writes chunk i of s, drawing new identifiers while its file name is taken.
func (c *Converter) writeChunk(s *save.Save, i int, data []byte, destDir string) (string, error) {
	path := filepath.Join(destDir, s.Chunks[i].FileName())
	for exists(path) {
		c.logger.Printf("identifier %s already used", s.Chunks[i])
		id, err := s.RegenerateIdentifier(i)
		if err != nil {
			return "", err
		}
		c.logger.Printf("regenerated identifier: %s", id)
		path = filepath.Join(destDir, id.FileName())
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("create chunk %d: %w", i, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write chunk %d: %w", i, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close chunk %d: %w", i, err)
	}

	c.logger.Printf("chunk %d written to %s", i, path)
	return path, nil
}

// containerIn returns the first container of dir, creating an empty one if there is none.
func (c *Converter) containerIn(dir string) (string, error) {
	names, err := container.List(dir)
	if errors.Is(err, container.ErrNoContainer) {
		c.logger.Printf("no container in %s, creating one", dir)
		return container.CreateEmpty(dir)
	}
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, names[0]), nil
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}
