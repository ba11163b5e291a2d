package storage

import (
	"os"
	"testing"
	"time"
)

func sample(key uint64, best string, depth int) *Analysis {
	return &Analysis{
		Key:        key,
		FEN:        "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		BestMove:   best,
		Score:      25,
		Depth:      depth,
		Nodes:      123456,
		SearchedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestStorage(t *testing.T) {
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory failed: %v", err)
	}
	defer s.Close()

	t.Run("Missing", func(t *testing.T) {
		a, ok, err := s.LoadAnalysis(42)
		if err != nil || ok || a != nil {
			t.Errorf("LoadAnalysis on empty store = %v, %v, %v", a, ok, err)
		}
	})

	t.Run("RoundTrip", func(t *testing.T) {
		want := sample(0x9d39247e33776d41, "e2e4", 12)
		if err := s.SaveAnalysis(want); err != nil {
			t.Fatal(err)
		}
		got, ok, err := s.LoadAnalysis(want.Key)
		if err != nil || !ok {
			t.Fatalf("LoadAnalysis = %v, %v", ok, err)
		}
		if got.FEN != want.FEN || got.BestMove != want.BestMove || got.Depth != want.Depth ||
			got.Nodes != want.Nodes || got.Score != want.Score || !got.SearchedAt.Equal(want.SearchedAt) {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("Replace", func(t *testing.T) {
		if err := s.SaveAnalysis(sample(7, "d2d4", 20)); err != nil {
			t.Fatal(err)
		}
		if err := s.SaveAnalysis(sample(7, "g1f3", 22)); err != nil {
			t.Fatal(err)
		}
		got, _, err := s.LoadAnalysis(7)
		if err != nil || got.BestMove != "g1f3" || got.Depth != 22 {
			t.Errorf("replaced record = %+v, %v", got, err)
		}
	})

	t.Run("SetsTimestamp", func(t *testing.T) {
		a := sample(8, "e2e4", 1)
		a.SearchedAt = time.Time{}
		if err := s.SaveAnalysis(a); err != nil {
			t.Fatal(err)
		}
		if a.SearchedAt.IsZero() {
			t.Error("SearchedAt was not set")
		}
	})

	t.Run("ListAndDelete", func(t *testing.T) {
		list, err := s.ListAnalyses()
		if err != nil {
			t.Fatal(err)
		}
		if len(list) != 3 {
			t.Fatalf("ListAnalyses returned %d records, want 3", len(list))
		}
		for i := 1; i < len(list); i++ {
			if list[i-1].Key >= list[i].Key {
				t.Errorf("records out of key order: %x before %x", list[i-1].Key, list[i].Key)
			}
		}

		if err := s.DeleteAnalysis(7); err != nil {
			t.Fatal(err)
		}
		if _, ok, _ := s.LoadAnalysis(7); ok {
			t.Error("record still present after delete")
		}
		if err := s.DeleteAnalysis(7); err != nil {
			t.Errorf("deleting a missing key: %v", err)
		}
	})
}

func TestStorageOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.SaveAnalysis(sample(1, "e2e4", 8)); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	got, ok, err := s.LoadAnalysis(1)
	if err != nil || !ok || got.BestMove != "e2e4" {
		t.Errorf("after reopen: %+v, %v, %v", got, ok, err)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}

	// Verify directory exists
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	t.Logf("Data directory: %s", dataDir)
}
