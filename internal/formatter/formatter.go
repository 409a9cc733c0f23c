// package formatter reads and writes liked-track exports (TSV, CSV, JSON)
package formatter

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// Format is an export file format.
type Format string

const (
	FormatTSV  Format = "tsv"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat converts user input to a [Format]; empty selects TSV.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatTSV, nil
	case FormatTSV, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q (must be tsv, csv or json)", shared.ErrInvalidArgument, s)
	}
}

const timestampLayout = "20060102_150405"

// ExportFilename returns liked_tracks_<YYYYMMDD_HHMMSS>.<format> for t.
func ExportFilename(t time.Time, format Format) string {
	if format == "" {
		format = FormatTSV
	}
	return fmt.Sprintf("liked_tracks_%s.%s", t.Format(timestampLayout), format)
}

var fieldReplacer = strings.NewReplacer("\r\n", " ", "\t", " ", "\n", " ", "\r", " ")

func sanitizeField(s string) string {
	return fieldReplacer.Replace(s)
}

// WriteLikedTSV writes one id<TAB>name line per track.
//
// Tabs and line breaks inside a field are replaced by spaces so each track stays on one line.
func WriteLikedTSV(w io.Writer, list models.LikedList) error {
	bw := bufio.NewWriter(w)
	for _, t := range list {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", sanitizeField(t.ID), sanitizeField(t.Name)); err != nil {
			return fmt.Errorf("failed to write TSV record: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write TSV record: %w", err)
	}
	return nil
}

// ReadLikedTSV parses the output of [WriteLikedTSV]. Blank lines are ignored.
func ReadLikedTSV(r io.Reader) (models.LikedList, error) {
	list := models.LikedList{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		id, name, ok := strings.Cut(line, "\t")
		if !ok || id == "" {
			return nil, fmt.Errorf("%w: line %d: expected id<TAB>name", shared.ErrInvalidInput, n)
		}
		list = append(list, models.Track{ID: id, Name: name})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read TSV: %w", err)
	}
	return list, nil
}

// ExportToTSV converts a liked list to TSV.
func ExportToTSV(list models.LikedList) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteLikedTSV(&buf, list); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportToCSV converts a liked list to CSV format with columns: ID, Name
func ExportToCSV(list models.LikedList) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Name"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, t := range list {
		if err := writer.Write([]string{t.ID, t.Name}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReadLikedCSV parses the output of [ExportToCSV].
func ReadLikedCSV(r io.Reader) (models.LikedList, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	list := models.LikedList{}
	for i, rec := range records {
		if i == 0 && rec[0] == "ID" && rec[1] == "Name" {
			continue
		}
		if rec[0] == "" {
			return nil, fmt.Errorf("%w: record %d: missing id", shared.ErrInvalidInput, i+1)
		}
		list = append(list, models.Track{ID: rec[0], Name: rec[1]})
	}
	return list, nil
}

// ExportToJSON converts a liked list to an indented JSON array.
func ExportToJSON(list models.LikedList) ([]byte, error) {
	if list == nil {
		list = models.LikedList{}
	}
	return shared.MarshalJSON(list, true)
}

// ReadLikedJSON parses the output of [ExportToJSON].
func ReadLikedJSON(r io.Reader) (models.LikedList, error) {
	var list models.LikedList
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	for i, t := range list {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: item %d: missing id", shared.ErrInvalidInput, i)
		}
	}
	if list == nil {
		list = models.LikedList{}
	}
	return list, nil
}

// Export renders list in format.
func Export(list models.LikedList, format Format) ([]byte, error) {
	switch format {
	case FormatTSV, "":
		return ExportToTSV(list)
	case FormatCSV:
		return ExportToCSV(list)
	case FormatJSON:
		return ExportToJSON(list)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteLikedExport writes list to dir under a name stamped with now and returns the file path.
//
// The directory is created if needed. An existing file is never overwritten.
func WriteLikedExport(list models.LikedList, dir string, format Format, now time.Time) (string, error) {
	if format == "" {
		format = FormatTSV
	}
	if dir == "" {
		dir = "."
	}

	data, err := Export(list, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, ExportFilename(now, format))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// ReadLikedExport loads an export written by [WriteLikedExport], choosing the parser by file extension.
// Unknown extensions are read as TSV.
func ReadLikedExport(path string) (models.LikedList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open export: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case string(FormatCSV):
		return ReadLikedCSV(f)
	case string(FormatJSON):
		return ReadLikedJSON(f)
	default:
		return ReadLikedTSV(f)
	}
}
