// Package csvio reads site tables and writes demand tables in the tabular
// layout used by the estimate and ingestor commands.
package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/samirrijal/gymdemand/internal/core/domain"
	"github.com/samirrijal/gymdemand/internal/core/gravity"
)

// table is a header-indexed CSV body.
type table struct {
	set  string
	cols map[string]int
	rows [][]string
}

func readTable(r io.Reader, set string) (*table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &domain.InputError{Set: set, Index: -1, Reason: "missing header"}
	}
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", set, err)
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", set, err)
	}
	return &table{set: set, cols: indexColumns(header), rows: rows}, nil
}

func indexColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		// Strip BOM from first column
		col = strings.TrimPrefix(col, "\xef\xbb\xbf")
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

// column resolves the first present name among aliases.
func (t *table) column(names ...string) (int, bool) {
	for _, n := range names {
		if idx, ok := t.cols[n]; ok {
			return idx, true
		}
	}
	return 0, false
}

func (t *table) require(field string, aliases ...string) (int, error) {
	idx, ok := t.column(append([]string{field}, aliases...)...)
	if !ok {
		return 0, &domain.InputError{Set: t.set, Index: -1, Field: field, Reason: "missing column"}
	}
	return idx, nil
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func (t *table) float(record []string, row, idx int, name string) (float64, error) {
	raw := field(record, idx)
	if raw == "" {
		return 0, domain.NewInputError(t.set, row, name, "empty value")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, domain.NewInputError(t.set, row, name, fmt.Sprintf("not a number: %q", raw))
	}
	return v, nil
}

func (t *table) location(record []string, row, xIdx, yIdx int) (domain.Point, error) {
	x, err := t.float(record, row, xIdx, "x")
	if err != nil {
		return domain.Point{}, err
	}
	y, err := t.float(record, row, yIdx, "y")
	if err != nil {
		return domain.Point{}, err
	}
	return domain.Point{X: x, Y: y}, nil
}

// ReadFacilities parses gym_name,x,y,attractiveness rows.
func ReadFacilities(r io.Reader) ([]domain.Facility, error) {
	t, err := readTable(r, gravity.SetFacilities)
	if err != nil {
		return nil, err
	}
	nameIdx, err := t.require("gym_name", "name")
	if err != nil {
		return nil, err
	}
	xIdx, err := t.require("x")
	if err != nil {
		return nil, err
	}
	yIdx, err := t.require("y")
	if err != nil {
		return nil, err
	}
	attrIdx, err := t.require("attractiveness")
	if err != nil {
		return nil, err
	}

	out := make([]domain.Facility, 0, len(t.rows))
	for i, rec := range t.rows {
		loc, err := t.location(rec, i, xIdx, yIdx)
		if err != nil {
			return nil, err
		}
		attr, err := t.float(rec, i, attrIdx, "attractiveness")
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Facility{
			Name:           field(rec, nameIdx),
			Location:       loc,
			Attractiveness: attr,
		})
	}
	return out, nil
}

// ReadPopulations parses [id,]x,y,population_count rows.
func ReadPopulations(r io.Reader) ([]domain.PopulationSite, error) {
	t, err := readTable(r, gravity.SetPopulations)
	if err != nil {
		return nil, err
	}
	xIdx, err := t.require("x")
	if err != nil {
		return nil, err
	}
	yIdx, err := t.require("y")
	if err != nil {
		return nil, err
	}
	popIdx, err := t.require("population_count", "population")
	if err != nil {
		return nil, err
	}
	idIdx, hasID := t.column("id")
	if !hasID {
		idIdx = -1
	}

	out := make([]domain.PopulationSite, 0, len(t.rows))
	for i, rec := range t.rows {
		loc, err := t.location(rec, i, xIdx, yIdx)
		if err != nil {
			return nil, err
		}
		pop, err := t.float(rec, i, popIdx, "population")
		if err != nil {
			return nil, err
		}
		out = append(out, domain.PopulationSite{
			ID:         field(rec, idIdx),
			Location:   loc,
			Population: pop,
		})
	}
	return out, nil
}

// ReadCompetitors parses [name,]x,y,attractiveness rows.
func ReadCompetitors(r io.Reader) ([]domain.Competitor, error) {
	t, err := readTable(r, gravity.SetCompetitors)
	if err != nil {
		return nil, err
	}
	xIdx, err := t.require("x")
	if err != nil {
		return nil, err
	}
	yIdx, err := t.require("y")
	if err != nil {
		return nil, err
	}
	attrIdx, err := t.require("attractiveness")
	if err != nil {
		return nil, err
	}
	nameIdx, hasName := t.column("name", "gym_name")
	if !hasName {
		nameIdx = -1
	}

	out := make([]domain.Competitor, 0, len(t.rows))
	for i, rec := range t.rows {
		loc, err := t.location(rec, i, xIdx, yIdx)
		if err != nil {
			return nil, err
		}
		attr, err := t.float(rec, i, attrIdx, "attractiveness")
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Competitor{
			Name:           field(rec, nameIdx),
			Location:       loc,
			Attractiveness: attr,
		})
	}
	return out, nil
}

// LoadInput reads the three site tables from disk. An empty competitors path
// means no competition.
func LoadInput(facilitiesPath, populationsPath, competitorsPath string) (gravity.Input, error) {
	var in gravity.Input

	if err := readFile(facilitiesPath, func(r io.Reader) (err error) {
		in.Facilities, err = ReadFacilities(r)
		return err
	}); err != nil {
		return gravity.Input{}, err
	}
	if err := readFile(populationsPath, func(r io.Reader) (err error) {
		in.Populations, err = ReadPopulations(r)
		return err
	}); err != nil {
		return gravity.Input{}, err
	}
	if competitorsPath != "" {
		if err := readFile(competitorsPath, func(r io.Reader) (err error) {
			in.Competitors, err = ReadCompetitors(r)
			return err
		}); err != nil {
			return gravity.Input{}, err
		}
	}
	return in, nil
}

func readFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := fn(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// WriteDemand writes the gym_name,demand table in facility order.
func WriteDemand(w io.Writer, demand []domain.FacilityDemand) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"gym_name", "demand"}); err != nil {
		return err
	}
	for _, d := range demand {
		if err := cw.Write([]string{d.Name, strconv.FormatFloat(d.Demand, 'g', -1, 64)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
