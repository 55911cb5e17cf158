// Package convert ties the container and save codecs together: it loads Microsoft
// containers, lists their saves and moves saves between the Microsoft and Steam folders.
package convert

import (
	"fmt"
	"strings"

	"github.com/astrotools/astroSaveConverter/pkg/container"
	"github.com/astrotools/astroSaveConverter/pkg/save"
)

// Direction selects which way saves are converted.
type Direction int

const (
	// MicrosoftToSteam exports chunked Microsoft saves to Steam files.
	MicrosoftToSteam Direction = iota + 1

	// SteamToMicrosoft imports Steam files into a Microsoft save folder.
	SteamToMicrosoft
)

func (d Direction) String() string {
	switch d {
	case MicrosoftToSteam:
		return "win2steam"
	case SteamToMicrosoft:
		return "steam2win"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection parses "win2steam" or "steam2win".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "win2steam":
		return MicrosoftToSteam, nil
	case "steam2win":
		return SteamToMicrosoft, nil
	default:
		return 0, fmt.Errorf("unknown conversion %q: use win2steam or steam2win", s)
	}
}

// LoadContainer reads the container index at path.
func LoadContainer(path string) (*container.Index, error) {
	return container.ReadFile(path)
}

// ListSaves returns the saves described by a container, in container order.
func ListSaves(x *container.Index) []*save.Save {
	return save.FromEntries(x.Entries())
}

// ConvertToSteam returns the Steam form of s, read from the chunks in sourceDir.
func ConvertToSteam(s *save.Save, sourceDir string) ([]byte, error) {
	return s.ToContiguous(sourceDir)
}

// ConvertToXbox splits the Steam file steamFile into chunks and assigns them to s.
func ConvertToXbox(s *save.Save, steamFile string) ([]container.Identifier, [][]byte, error) {
	return s.ToChunks(steamFile, save.ChunkSize)
}

// AppendChunksToContainer registers new chunks of saveName in the container at path.
func AppendChunksToContainer(path, saveName string, ids []container.Identifier) error {
	return container.Append(path, saveName, ids)
}

// RenameSave changes the base name of s.
func RenameSave(s *save.Save, name string) error {
	return s.Rename(name)
}
