package formatter

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
	th "github.com/desertthunder/likesync/internal/testing"
)

var stamp = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func sameList(t *testing.T, want, got models.LikedList) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("expected %d tracks, got %d", len(want), len(got))
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("index %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestExporters(t *testing.T) {
	list := models.LikedList{
		{ID: "4uLU6hMCjMI75M1A2tKUQC", Name: "Never Gonna Give You Up"},
		{ID: "7GhIk7Il098yCjg4BQjzvb", Name: "Song, With \"Quotes\""},
	}

	t.Run("ExportToTSV", func(t *testing.T) {
		data, err := ExportToTSV(list)
		if err != nil {
			t.Fatalf("ExportToTSV failed: %v", err)
		}
		want := "4uLU6hMCjMI75M1A2tKUQC\tNever Gonna Give You Up\n7GhIk7Il098yCjg4BQjzvb\tSong, With \"Quotes\"\n"
		if string(data) != want {
			t.Errorf("unexpected TSV:\n%s", data)
		}
	})

	t.Run("ExportToTSV Sanitizes Names", func(t *testing.T) {
		data, err := ExportToTSV(models.LikedList{{ID: "x", Name: "Tab\there\nand\r\nbreaks"}})
		if err != nil {
			t.Fatalf("ExportToTSV failed: %v", err)
		}
		if string(data) != "x\tTab here and breaks\n" {
			t.Errorf("unexpected TSV %q", data)
		}
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(list)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}
		output := string(data)
		if !strings.HasPrefix(output, "ID,Name\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, `"Song, With ""Quotes"""`) {
			t.Errorf("CSV did not quote name, got: %s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(list)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		if !strings.Contains(string(data), `"id": "4uLU6hMCjMI75M1A2tKUQC"`) {
			t.Errorf("JSON missing id, got: %s", data)
		}

		empty, err := ExportToJSON(nil)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}
		if strings.TrimSpace(string(empty)) != "[]" {
			t.Errorf("expected empty array, got %s", empty)
		}
	})

	t.Run("Export Unknown Format", func(t *testing.T) {
		if _, err := Export(list, "xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestReaders(t *testing.T) {
	t.Run("ReadLikedTSV", func(t *testing.T) {
		input := "a\tFirst\n\nb\t\nc\tThird\r\n"
		got, err := ReadLikedTSV(strings.NewReader(input))
		if err != nil {
			t.Fatalf("ReadLikedTSV failed: %v", err)
		}
		sameList(t, models.LikedList{{ID: "a", Name: "First"}, {ID: "b"}, {ID: "c", Name: "Third"}}, got)
	})

	t.Run("ReadLikedTSV Malformed", func(t *testing.T) {
		_, err := ReadLikedTSV(strings.NewReader("a\tFirst\nno-tab-here\n"))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if err != nil && !strings.Contains(err.Error(), "line 2") {
			t.Errorf("expected line number in error, got %v", err)
		}
	})

	t.Run("ReadLikedCSV", func(t *testing.T) {
		got, err := ReadLikedCSV(strings.NewReader("ID,Name\na,\"One, Two\"\n"))
		if err != nil {
			t.Fatalf("ReadLikedCSV failed: %v", err)
		}
		sameList(t, models.LikedList{{ID: "a", Name: "One, Two"}}, got)
	})

	t.Run("ReadLikedCSV Wrong Field Count", func(t *testing.T) {
		_, err := ReadLikedCSV(strings.NewReader("ID,Name\na,b,c\n"))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("ReadLikedJSON Missing ID", func(t *testing.T) {
		_, err := ReadLikedJSON(strings.NewReader(`[{"id":"","name":"x"}]`))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestRoundTrip(t *testing.T) {
	list := models.LikedList(th.MakeTracks("rt", 25))
	list[3].Name = "Comma, \"quoted\" name"

	t.Run("TSV Writer And Reader", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteLikedTSV(&buf, list); err != nil {
			t.Fatalf("WriteLikedTSV failed: %v", err)
		}
		got, err := ReadLikedTSV(&buf)
		if err != nil {
			t.Fatalf("ReadLikedTSV failed: %v", err)
		}
		sameList(t, list, got)
	})

	for _, format := range []Format{FormatTSV, FormatCSV, FormatJSON} {
		t.Run("File "+string(format), func(t *testing.T) {
			dir := t.TempDir()
			path, err := WriteLikedExport(list, dir, format, stamp)
			if err != nil {
				t.Fatalf("WriteLikedExport failed: %v", err)
			}
			th.AssertFileExists(t, path)

			got, err := ReadLikedExport(path)
			if err != nil {
				t.Fatalf("ReadLikedExport failed: %v", err)
			}
			sameList(t, list, got)
		})
	}
}

func TestWriteLikedExport(t *testing.T) {
	t.Run("Filename", func(t *testing.T) {
		if got := ExportFilename(stamp, ""); got != "liked_tracks_20240309_140507.tsv" {
			t.Errorf("unexpected filename %s", got)
		}
		if got := ExportFilename(stamp, FormatJSON); got != "liked_tracks_20240309_140507.json" {
			t.Errorf("unexpected filename %s", got)
		}
	})

	t.Run("Creates Directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "exports")
		path, err := WriteLikedExport(models.LikedList{{ID: "a", Name: "A"}}, dir, "", stamp)
		if err != nil {
			t.Fatalf("WriteLikedExport failed: %v", err)
		}
		if filepath.Dir(path) != dir {
			t.Errorf("expected file in %s, got %s", dir, path)
		}
		if content := th.MustReadFile(t, path); content != "a\tA\n" {
			t.Errorf("unexpected content %q", content)
		}
	})

	t.Run("Refuses To Overwrite", func(t *testing.T) {
		dir := t.TempDir()
		existing := filepath.Join(dir, ExportFilename(stamp, FormatTSV))
		if err := os.WriteFile(existing, []byte("keep\tme\n"), 0644); err != nil {
			t.Fatal(err)
		}

		if _, err := WriteLikedExport(models.LikedList{{ID: "a"}}, dir, FormatTSV, stamp); err == nil {
			t.Error("expected error for existing file")
		}
		if content := th.MustReadFile(t, existing); content != "keep\tme\n" {
			t.Errorf("existing file was modified: %q", content)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		if _, err := ReadLikedExport(filepath.Join(t.TempDir(), "missing.tsv")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatTSV},
		{in: "TSV", want: FormatTSV},
		{in: " csv ", want: FormatCSV},
		{in: "json", want: FormatJSON},
		{in: "md", wantErr: true},
	}

	for _, c := range tc {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseFormat(c.in)
			if (err != nil) != c.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", c.in, err, c.wantErr)
			}
			if got != c.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}
