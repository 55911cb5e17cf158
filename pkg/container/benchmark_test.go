package container

import (
	"fmt"
	"testing"
)

// BenchmarkDecode benchmarks decoding a container with many saves.
func BenchmarkDecode(b *testing.B) {
	x := &Index{}
	for i := 0; i < 1000; i++ {
		m, err := NewChunkMetadata(fmt.Sprintf("SAVE%d$2021.01.01-00.00.00", i/3), i%3, 3)
		if err != nil {
			b.Fatal(err)
		}
		m.ID = testIdentifier(byte(i))
		x.Records = append(x.Records, m)
	}
	data, _ := x.MarshalBinary()

	b.Run("Decode", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := Decode(data); err != nil {
				b.Fatal(err)
			}
		}
	})

	decoded, _ := Decode(data)

	b.Run("Entries", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = decoded.Entries()
		}
	})
}

// BenchmarkIdentifier benchmarks identifier naming.
func BenchmarkIdentifier(b *testing.B) {
	id := testIdentifier(7)

	b.Run("FileName", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = id.FileName()
		}
	})

	b.Run("New", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := NewIdentifier(); err != nil {
				b.Fatal(err)
			}
		}
	})
}
