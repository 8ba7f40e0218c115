// Package dataset loads the historical training stream from disk and
// enforces the ingestion boundary: every record is fully validated here,
// so the engine never sees a malformed event.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/drawrun/internal/domain"
)

// Load reads a training stream from path, dispatching on extension:
// .json for the structured form, anything else is parsed as CSV.
func Load(path string) ([]domain.Series, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadJSON(path)
	default:
		return LoadCSV(path)
	}
}

// LoadCSV parses rows of "series_id,n1,...,n14". Each series must
// contribute exactly seven consecutive rows and ids must strictly increase.
func LoadCSV(path string) ([]domain.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 1 + domain.EventSize

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse dataset CSV: %w", err)
	}

	grouped := make(map[int][]domain.Event)
	var order []int
	for i, row := range rows {
		line := i + 1
		if i == 0 && isHeader(row) {
			continue
		}

		id, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad series id %q: %w", line, row[0], err)
		}

		numbers := make([]int, 0, domain.EventSize)
		for _, field := range row[1:] {
			n, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, fmt.Errorf("line %d: bad number %q: %w", line, field, err)
			}
			numbers = append(numbers, n)
		}

		ev, err := domain.NewEvent(numbers)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		if _, seen := grouped[id]; !seen {
			order = append(order, id)
		}
		grouped[id] = append(grouped[id], ev)
	}

	return assemble(grouped, order)
}

type jsonSeries struct {
	ID     int     `json:"id"`
	Events [][]int `json:"events"`
}

// LoadJSON parses the structured form: an array of {id, events} objects.
func LoadJSON(path string) ([]domain.Series, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var raw []jsonSeries
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse dataset JSON: %w", err)
	}

	grouped := make(map[int][]domain.Event)
	var order []int
	for _, s := range raw {
		for _, nums := range s.Events {
			ev, err := domain.NewEvent(nums)
			if err != nil {
				return nil, fmt.Errorf("series %d: %w", s.ID, err)
			}
			if _, seen := grouped[s.ID]; !seen {
				order = append(order, s.ID)
			}
			grouped[s.ID] = append(grouped[s.ID], ev)
		}
	}

	return assemble(grouped, order)
}

// assemble turns grouped events into an id-ordered stream, rejecting
// incomplete series and duplicate or out-of-order ids.
func assemble(grouped map[int][]domain.Event, order []int) ([]domain.Series, error) {
	if !sort.IntsAreSorted(order) {
		return nil, fmt.Errorf("%w: series ids must be strictly increasing", domain.ErrInvalidEvent)
	}

	stream := make([]domain.Series, 0, len(order))
	for _, id := range order {
		s, err := domain.NewSeries(id, grouped[id])
		if err != nil {
			return nil, err
		}
		stream = append(stream, s)
	}

	log.Debug().Int("series", len(stream)).Msg("dataset loaded")
	return stream, nil
}

func isHeader(row []string) bool {
	_, err := strconv.Atoi(strings.TrimSpace(row[0]))
	return err != nil
}
