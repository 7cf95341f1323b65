package sample

import (
	"context"
	"encoding/json"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
)

// Manifest is the top-level JSON input document listing samples to call.
type Manifest struct {
	Samples []*Sample `json:"samples"`
}

// LoadManifest reads and structurally validates a sample manifest.
// Caller-name validation happens separately, against the caller registry.
func LoadManifest(ctx context.Context, path string) ([]*Sample, error) {
	data, err := file.ReadFile(ctx, path)
	if err != nil {
		return nil, errors.E(err, "manifest:", path)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.E(err, "manifest:", path)
	}
	if len(m.Samples) == 0 {
		return nil, errors.E("manifest names no samples:", path)
	}
	for _, s := range m.Samples {
		if err := validate(s); err != nil {
			return nil, errors.E(err, "manifest:", path)
		}
	}
	log.Debug.Printf("manifest %s: %d samples", path, len(m.Samples))
	return m.Samples, nil
}

// validate checks the structural invariants a record must satisfy before
// entering the pipeline.
func validate(s *Sample) error {
	if s.Name == "" {
		return errors.New("sample has no description")
	}
	if s.Dirs.Work == "" {
		return errors.E("sample", s.Name, "has no work directory")
	}
	for i, src := range s.RegionBams {
		if len(src) != 1 && len(src) != len(s.Regions) {
			return errors.E("sample", s.Name, ": region_bams entry", i,
				"has", len(src), "paths for", len(s.Regions), "regions")
		}
	}
	return nil
}
