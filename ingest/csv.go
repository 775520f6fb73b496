package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/viant/cinematch/catalog"
)

// genreName matches the name entries of a stringified list of dicts such as
// [{'id': 16, 'name': 'Animation'}, {'id': 10751, 'name': "Children's"}].
var genreName = regexp.MustCompile(`['"]name['"]\s*:\s*(?:'([^']*)'|"([^"]*)")`)

// ParseGenres extracts genre names from the genres column. Values that are
// not a bracketed list yield an empty string.
func ParseGenres(literal string) string {
	s := strings.TrimSpace(literal)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return ""
	}
	var names []string
	for _, m := range genreName.FindAllStringSubmatch(s, -1) {
		if m[1] != "" {
			names = append(names, m[1])
		} else {
			names = append(names, m[2])
		}
	}
	return strings.Join(names, " ")
}

// CSVStats summarizes a LoadCSV run.
type CSVStats struct {
	Rows    int
	Loaded  int
	Dropped int
}

var requiredColumns = []string{"id", "title", "overview", "tagline", "genres"}

// LoadCSV converts a movies_metadata.csv stream into records. Rows whose id
// is not numeric, or that fail record validation, are dropped. Missing text
// fields are treated as empty.
func LoadCSV(r io.Reader) ([]catalog.Record, CSVStats, error) {
	var stats CSVStats
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("ingest: read csv header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, stats, fmt.Errorf("ingest: csv missing column %q", name)
		}
	}
	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []catalog.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				stats.Rows++
				stats.Dropped++
				continue
			}
			return nil, stats, fmt.Errorf("ingest: read csv: %w", err)
		}
		stats.Rows++
		id, ok := parseID(field(row, "id"))
		if !ok {
			stats.Dropped++
			continue
		}
		title := field(row, "title")
		genres := field(row, "genres")
		if genres == "" {
			genres = "[]"
		}
		record := catalog.Record{
			ID:    id,
			Title: title,
			Soup:  strings.Join([]string{title, title, field(row, "tagline"), field(row, "overview"), ParseGenres(genres)}, " "),
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(field(row, "vote_average")), 64); err == nil {
			record.Rating = &v
		}
		if record.Validate() != nil {
			stats.Dropped++
			continue
		}
		records = append(records, record)
	}
	stats.Loaded = len(records)
	return records, stats, nil
}

// parseID accepts integer ids and whole-number floats such as "862.0".
func parseID(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if id, err := strconv.Atoi(s); err == nil {
		return id, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
