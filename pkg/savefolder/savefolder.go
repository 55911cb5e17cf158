// Package savefolder locates the Astroneer save folders of the Microsoft Store and Steam
// versions of the game below a local application data directory.
package savefolder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
)

// ErrNotFound is returned when no save folder is discovered.
var ErrNotFound = errors.New("save folder not found")

var (
	// containerName matches container index file names.
	containerName = regexp.MustCompile(`^container\.`)

	// dateMarker matches the "$YYYY.MM.dd" part of a save name.
	dateMarker = regexp.MustCompile(`\$\d{4}\.\d{2}\.\d{2}`)

	// saveDetail captures the base name and creation date of a save name.
	saveDetail = regexp.MustCompile(`([A-Za-z0-9_]+)\$c?(\d{4}\.\d{2}\.\d{2}-\d{2}\.\d{2}\.\d{2})`)
)

// Detail describes one save found in a Microsoft save folder.
type Detail struct {
	Name string
	Date string // "2006-01-02 15:04:05", or the raw date when it does not parse
}

// MicrosoftRoots returns the "wgs" directories of the Microsoft Store game packages.
func MicrosoftRoots(localAppData string) ([]string, error) {
	if localAppData == "" {
		return nil, fmt.Errorf("%w: local application data directory unknown", ErrNotFound)
	}

	pattern := filepath.Join(localAppData, "Packages", "SystemEraSoftworks*", "SystemAppData", "wgs")
	roots, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	return roots, nil
}

// FindMicrosoftFolders returns every folder below the Microsoft roots holding a
// container that mentions a save date.
func FindMicrosoftFolders(localAppData string) ([]string, error) {
	roots, err := MicrosoftRoots(localAppData)
	if err != nil {
		return nil, err
	}

	var folders []string
	for _, root := range roots {
		found, err := FoldersIn(root)
		if err != nil {
			return nil, err
		}
		folders = append(folders, found...)
	}

	if len(folders) == 0 {
		return nil, fmt.Errorf("%w: no Microsoft save folder below %s", ErrNotFound, localAppData)
	}
	return folders, nil
}

// FoldersIn walks root and returns the folders holding a save container.
func FoldersIn(root string) ([]string, error) {
	var folders []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !containerName.MatchString(d.Name()) {
			return nil
		}

		text, err := readText(path)
		if err != nil {
			return err
		}
		if dateMarker.MatchString(text) {
			dir := filepath.Dir(path)
			if n := len(folders); n == 0 || folders[n-1] != dir {
				folders = append(folders, dir)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return folders, nil
}

// SteamFolder returns the save folder of the Steam version.
func SteamFolder(localAppData string) (string, error) {
	if localAppData == "" {
		return "", fmt.Errorf("%w: local application data directory unknown", ErrNotFound)
	}

	path := filepath.Join(localAppData, "Astro", "Saved", "SaveGames")
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return path, nil
}

// Details lists the saves mentioned by the first container of folder.
func Details(folder string) ([]Detail, error) {
	matches, err := filepath.Glob(filepath.Join(folder, "container.*"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	sort.Strings(matches)

	text, err := readText(matches[0])
	if err != nil {
		return nil, err
	}

	var details []Detail
	for _, m := range saveDetail.FindAllStringSubmatch(text, -1) {
		date := m[2]
		if t, err := time.Parse("2006.01.02-15.04.05", date); err == nil {
			date = t.Format("2006-01-02 15:04:05")
		}
		details = append(details, Detail{Name: m[1], Date: date})
	}
	return details, nil
}

// readText decodes a whole file as UTF-16LE, replacing invalid sequences.
func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(data)%2 == 1 {
		data = data[:len(data)-1]
	}

	text, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	return strings.ToValidUTF8(string(text), ""), nil
}
