// Package save converts one Astroneer save between its chunked Microsoft Store form and
// the single-file Steam form.
package save

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/astrotools/astroSaveConverter/pkg/container"
)

const (
	// Extension is the suffix of Steam save files.
	Extension = ".savegame"

	// TimestampLayout is the layout of the creation date following the '$' of a save name.
	TimestampLayout = "2006.01.02-15.04.05"

	// MaxNameLength is the longest base name accepted by Rename. Longer names risk not
	// fitting in a container record once the save grows to several chunks.
	MaxNameLength = 30
)

// ErrInvalidName is returned by Rename for names outside [A-Za-z0-9]{1,30}.
var ErrInvalidName = errors.New("invalid save name")

var validName = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Save is one logical game save.
type Save struct {
	// Name is "<base name>$<timestamp>".
	Name string

	// Chunks lists the chunk files of the save in reassembly order. It is empty for
	// saves read from a Steam folder until they are split.
	Chunks []container.Identifier
}

// FromEntries creates saves from the entries of a container.
func FromEntries(entries []container.Entry) []*Save {
	saves := make([]*Save, 0, len(entries))
	for _, e := range entries {
		saves = append(saves, &Save{
			Name:   e.Name,
			Chunks: append([]container.Identifier(nil), e.Chunks...),
		})
	}
	return saves
}

// FromSteamFiles creates saves from Steam save file names.
func FromSteamFiles(names []string) []*Save {
	saves := make([]*Save, 0, len(names))
	for _, name := range names {
		saves = append(saves, &Save{Name: strings.TrimSuffix(name, Extension)})
	}
	return saves
}

// ListSteamFiles returns the names of the Steam save files in dir, sorted.
func ListSteamFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), Extension) {
			names = append(names, e.Name())
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("no %s file in %s: %w", Extension, dir, os.ErrNotExist)
	}
	sort.Strings(names)
	return names, nil
}

// FileName returns the name of the Steam file holding the save.
func (s *Save) FileName() string {
	return s.Name + Extension
}

// BaseName returns the part of the name chosen by the player.
func (s *Save) BaseName() string {
	base, _, _ := strings.Cut(s.Name, "$")
	return base
}

// Timestamp parses the creation date stored in the name.
func (s *Save) Timestamp() (time.Time, error) {
	_, suffix, ok := strings.Cut(s.Name, "$")
	if !ok {
		return time.Time{}, fmt.Errorf("save %q has no timestamp", s.Name)
	}
	// Some saves carry a 'c' before the date.
	suffix = strings.TrimPrefix(suffix, "c")
	return time.Parse(TimestampLayout, suffix)
}

// Rename replaces the base name of the save and keeps its '$' suffix.
// On error the name is left unchanged.
func (s *Save) Rename(base string) error {
	if base == "" || len(base) > MaxNameLength || !validName.MatchString(base) {
		return fmt.Errorf("%w: %q (use 1 to %d letters or digits)", ErrInvalidName, base, MaxNameLength)
	}

	if i := strings.IndexByte(s.Name, '$'); i >= 0 {
		s.Name = base + s.Name[i:]
	} else {
		s.Name = base
	}
	return nil
}

// RegenerateIdentifier replaces the identifier of chunk i with a new random one and
// returns it.
func (s *Save) RegenerateIdentifier(i int) (container.Identifier, error) {
	if i < 0 || i >= len(s.Chunks) {
		return container.Identifier{}, fmt.Errorf("chunk index %d out of range [0, %d)", i, len(s.Chunks))
	}

	id, err := container.NewIdentifier()
	if err != nil {
		return container.Identifier{}, err
	}
	s.Chunks[i] = id
	return id, nil
}
