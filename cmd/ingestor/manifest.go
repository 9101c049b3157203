package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samirrijal/gymdemand/internal/adapters/csvio"
	"github.com/samirrijal/gymdemand/internal/core/domain"
)

// Manifest lists the studies to import.
type Manifest struct {
	Source  string       `json:"source"`
	Studies []StudyEntry `json:"studies"`
}

// StudyEntry points at the CSV tables of one study. Relative paths resolve
// against the manifest's directory.
type StudyEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Metric      string `json:"metric,omitempty"`
	Facilities  string `json:"facilities"`
	Populations string `json:"populations"`
	Competitors string `json:"competitors,omitempty"`
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	base := filepath.Dir(path)
	for i := range m.Studies {
		e := &m.Studies[i]
		if e.Facilities == "" || e.Populations == "" {
			return nil, fmt.Errorf("manifest studies[%d] (%s): facilities and populations are required", i, e.Name)
		}
		e.Facilities = resolve(base, e.Facilities)
		e.Populations = resolve(base, e.Populations)
		if e.Competitors != "" {
			e.Competitors = resolve(base, e.Competitors)
		}
	}
	return &m, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Study reads the entry's tables into a study ready for saving.
func (e StudyEntry) Study() (*domain.Study, error) {
	in, err := csvio.LoadInput(e.Facilities, e.Populations, e.Competitors)
	if err != nil {
		return nil, err
	}
	return &domain.Study{
		ID:          e.ID,
		Name:        e.Name,
		Metric:      e.Metric,
		Facilities:  in.Facilities,
		Populations: in.Populations,
		Competitors: in.Competitors,
	}, nil
}

// key identifies the entry in logs and in the CLI filter.
func (e StudyEntry) key() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Name
}
