package savefolder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/astrotools/astroSaveConverter/pkg/container"
)

func writeContainer(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	x := &container.Index{}
	for _, name := range names {
		m, err := container.NewChunkMetadata(name, 0, 1)
		if err != nil {
			t.Fatal(err)
		}
		x.Records = append(x.Records, m)
	}
	data, _ := x.MarshalBinary()
	if err := os.WriteFile(filepath.Join(dir, "container.12"), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFindMicrosoftFolders(t *testing.T) {
	appData := t.TempDir()
	wgs := filepath.Join(appData, "Packages", "SystemEraSoftworks.29415440E1269_ftk5pbg2rayv2", "SystemAppData", "wgs")

	saves := filepath.Join(wgs, "000901F3F1A8CAD7_0000000000000000000000006E4BE4A8", "9C9A3B1A")
	writeContainer(t, saves, "ALPHA$2021.01.02-03.04.05", "BETA$c2022.06.07-08.09.10")

	other := filepath.Join(wgs, "000901F3F1A8CAD7_0000000000000000000000006E4BE4A8", "00000000")
	writeContainer(t, other, "settings")

	folders, err := FindMicrosoftFolders(appData)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(folders) != 1 || folders[0] != saves {
		t.Errorf("folders: got %v, want [%s]", folders, saves)
	}

	t.Run("Details", func(t *testing.T) {
		details, err := Details(saves)
		if err != nil {
			t.Fatalf("details: %v", err)
		}
		want := []Detail{
			{Name: "ALPHA", Date: "2021-01-02 03:04:05"},
			{Name: "BETA", Date: "2022-06-07 08:09:10"},
		}
		if len(details) != len(want) {
			t.Fatalf("details: got %+v", details)
		}
		for i := range want {
			if details[i] != want[i] {
				t.Errorf("detail %d: got %+v, want %+v", i, details[i], want[i])
			}
		}
	})

	t.Run("DetailsWithoutContainer", func(t *testing.T) {
		details, err := Details(t.TempDir())
		if err != nil || details != nil {
			t.Errorf("got %v, %v", details, err)
		}
	})
}

func TestNotFound(t *testing.T) {
	appData := t.TempDir()

	if _, err := FindMicrosoftFolders(appData); !errors.Is(err, ErrNotFound) {
		t.Errorf("microsoft: expected ErrNotFound, got %v", err)
	}
	if _, err := FindMicrosoftFolders(""); !errors.Is(err, ErrNotFound) {
		t.Errorf("microsoft without app data: expected ErrNotFound, got %v", err)
	}
	if _, err := SteamFolder(appData); !errors.Is(err, ErrNotFound) {
		t.Errorf("steam: expected ErrNotFound, got %v", err)
	}
	if _, err := SteamFolder(""); !errors.Is(err, ErrNotFound) {
		t.Errorf("steam without app data: expected ErrNotFound, got %v", err)
	}
}

func TestSteamFolder(t *testing.T) {
	appData := t.TempDir()
	want := filepath.Join(appData, "Astro", "Saved", "SaveGames")
	if err := os.MkdirAll(want, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := SteamFolder(appData)
	if err != nil {
		t.Fatalf("steam folder: %v", err)
	}
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
