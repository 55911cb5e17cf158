package save

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/astrotools/astroSaveConverter/pkg/container"
)

func TestRename(t *testing.T) {
	const original = "MYBASE$2021.03.04-05.06.07"

	t.Run("Invalid", func(t *testing.T) {
		for _, name := range []string{"", "bad name!", strings.Repeat("X", 31), "ÉCLAIR", "a$b"} {
			s := &Save{Name: original}
			if err := s.Rename(name); !errors.Is(err, ErrInvalidName) {
				t.Errorf("%q: expected ErrInvalidName, got %v", name, err)
			}
			if s.Name != original {
				t.Errorf("%q: name changed to %q", name, s.Name)
			}
		}
	})

	t.Run("Valid", func(t *testing.T) {
		s := &Save{Name: original}
		if err := s.Rename("NEWNAME"); err != nil {
			t.Fatalf("rename: %v", err)
		}
		if s.Name != "NEWNAME$2021.03.04-05.06.07" {
			t.Errorf("name: got %q", s.Name)
		}
	})

	t.Run("MaxLength", func(t *testing.T) {
		s := &Save{Name: original}
		name := strings.Repeat("a1", 15)
		if err := s.Rename(name); err != nil {
			t.Fatalf("rename: %v", err)
		}
		if s.BaseName() != name {
			t.Errorf("base name: got %q", s.BaseName())
		}
	})

	t.Run("NoTimestamp", func(t *testing.T) {
		s := &Save{Name: "PLAIN"}
		if err := s.Rename("OTHER"); err != nil {
			t.Fatalf("rename: %v", err)
		}
		if s.Name != "OTHER" {
			t.Errorf("name: got %q", s.Name)
		}
	})
}

func TestNameParts(t *testing.T) {
	s := &Save{Name: "BASE$2021.03.04-05.06.07"}
	if s.BaseName() != "BASE" {
		t.Errorf("base name: got %q", s.BaseName())
	}
	if s.FileName() != "BASE$2021.03.04-05.06.07.savegame" {
		t.Errorf("file name: got %q", s.FileName())
	}

	ts, err := s.Timestamp()
	if err != nil {
		t.Fatalf("timestamp: %v", err)
	}
	if want := time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC); !ts.Equal(want) {
		t.Errorf("timestamp: got %v, want %v", ts, want)
	}

	if _, err := (&Save{Name: "NODATE"}).Timestamp(); err == nil {
		t.Error("expected error for name without timestamp")
	}
}

func TestSteamFiles(t *testing.T) {
	dir := t.TempDir()

	if _, err := ListSteamFiles(dir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}

	for _, name := range []string{"B$2020.01.01-00.00.00.savegame", "A$2020.01.01-00.00.00.savegame", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "dir.savegame"), 0755); err != nil {
		t.Fatal(err)
	}

	names, err := ListSteamFiles(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 2 || names[0] != "A$2020.01.01-00.00.00.savegame" {
		t.Fatalf("names: got %v", names)
	}

	saves := FromSteamFiles(names)
	if saves[0].Name != "A$2020.01.01-00.00.00" || len(saves[0].Chunks) != 0 {
		t.Errorf("save: got %+v", saves[0])
	}
}

func TestFromEntries(t *testing.T) {
	entries := []container.Entry{
		{Name: "A", Chunks: []container.Identifier{{1}, {2}}},
		{Name: "B", Chunks: []container.Identifier{{3}}},
	}
	saves := FromEntries(entries)
	if len(saves) != 2 || saves[0].Name != "A" || len(saves[0].Chunks) != 2 {
		t.Fatalf("got %+v", saves)
	}

	saves[0].Chunks[0] = container.Identifier{9}
	if entries[0].Chunks[0] != (container.Identifier{1}) {
		t.Error("save shares chunk list with container entry")
	}
}

func TestRegenerateIdentifier(t *testing.T) {
	s := &Save{Name: "A", Chunks: []container.Identifier{{1}, {2}}}
	id, err := s.RegenerateIdentifier(1)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if s.Chunks[1] != id || id == (container.Identifier{2}) {
		t.Errorf("chunk not replaced: %v", s.Chunks)
	}
	if s.Chunks[0] != (container.Identifier{1}) {
		t.Error("other chunk changed")
	}

	if _, err := s.RegenerateIdentifier(2); err == nil {
		t.Error("expected error for out of range index")
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		size    int
		lengths []int
	}{
		{"Empty", 0, 4, []int{0}},
		{"Short", 3, 4, []int{3}},
		{"ExactMultiple", 8, 4, []int{4, 4, 0}},
		{"OneOver", 9, 4, []int{4, 4, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := bytes.Repeat([]byte{0xAA}, tt.length)
			ids, buffers, err := Split(bytes.NewReader(data), tt.size)
			if err != nil {
				t.Fatalf("split: %v", err)
			}
			if len(ids) != len(tt.lengths) || len(buffers) != len(tt.lengths) {
				t.Fatalf("chunks: got %d ids, %d buffers, want %d", len(ids), len(buffers), len(tt.lengths))
			}
			for i, want := range tt.lengths {
				if len(buffers[i]) != want {
					t.Errorf("chunk %d: got %d bytes, want %d", i, len(buffers[i]), want)
				}
			}
		})
	}

	t.Run("InvalidSize", func(t *testing.T) {
		if _, _, err := Split(bytes.NewReader(nil), 0); err == nil {
			t.Error("expected error for zero size")
		}
	})
}

func TestChunkBoundary(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates several 16 MiB buffers")
	}

	dir := t.TempDir()

	t.Run("ExactChunkSize", func(t *testing.T) {
		path := filepath.Join(dir, "exact.savegame")
		if err := os.WriteFile(path, make([]byte, ChunkSize), 0644); err != nil {
			t.Fatal(err)
		}
		ids, buffers, err := ToChunks(path)
		if err != nil {
			t.Fatalf("to chunks: %v", err)
		}
		if len(ids) != 2 || len(buffers[0]) != ChunkSize || len(buffers[1]) != 0 {
			t.Errorf("got %d chunks", len(ids))
		}
	})

	t.Run("OneByteOver", func(t *testing.T) {
		path := filepath.Join(dir, "over.savegame")
		if err := os.WriteFile(path, make([]byte, ChunkSize+1), 0644); err != nil {
			t.Fatal(err)
		}
		ids, buffers, err := ToChunks(path)
		if err != nil {
			t.Fatalf("to chunks: %v", err)
		}
		if len(ids) != 2 || len(buffers[0]) != ChunkSize || len(buffers[1]) != 1 {
			t.Errorf("got %d chunks", len(ids))
		}
	})
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	original := make([]byte, 10*1024+17)
	for i := range original {
		original[i] = byte(i * 31)
	}
	src := filepath.Join(dir, "SAVE$2021.01.01-00.00.00.savegame")
	if err := os.WriteFile(src, original, 0644); err != nil {
		t.Fatal(err)
	}

	s := &Save{Name: "SAVE$2021.01.01-00.00.00"}
	ids, buffers, err := s.ToChunks(src, 1024)
	if err != nil {
		t.Fatalf("to chunks: %v", err)
	}
	if len(ids) != 11 || len(s.Chunks) != 11 {
		t.Fatalf("chunks: got %d", len(ids))
	}

	chunkDir := t.TempDir()
	for i, id := range ids {
		if err := os.WriteFile(filepath.Join(chunkDir, id.FileName()), buffers[i], 0644); err != nil {
			t.Fatal(err)
		}
	}

	out, err := s.ToContiguous(chunkDir)
	if err != nil {
		t.Fatalf("to contiguous: %v", err)
	}
	if !bytes.Equal(out, original) {
		t.Error("round trip mismatch")
	}

	t.Run("MissingChunk", func(t *testing.T) {
		if err := os.Remove(filepath.Join(chunkDir, ids[5].FileName())); err != nil {
			t.Fatal(err)
		}
		out, err := ToContiguous(ids, chunkDir)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected ErrNotExist, got %v", err)
		}
		if out != nil {
			t.Error("partial buffer returned")
		}
	})
}
