// Package sample defines the record type flowing through variant-calling
// orchestration: one Sample per biological sample, cloned per caller during
// fan-out and merged back by the combiner. Configuration values are treated
// as immutable once constructed; every mutation site works on a Clone.
package sample

import (
	"encoding/json"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/varcall/interval"
)

// Sample is one unit of pipeline state.
type Sample struct {
	// Name is the sample description, used in output file names.
	Name     string   `json:"description"`
	Metadata Metadata `json:"metadata,omitempty"`

	// AlignBams holds the aligned input(s) for the sample. WorkBams, when
	// set, overrides AlignBams as the working input set.
	AlignBams Paths `json:"align_bam,omitempty"`
	WorkBams  Paths `json:"work_bam,omitempty"`

	// Regions and RegionBams are populated when the sample has been
	// assigned regions for parallel calling. RegionBams holds one entry
	// per BAM source: a singleton used for every region, or exactly one
	// path per region. A work unit for region i takes one BAM from each
	// source.
	Regions    []interval.Region `json:"region,omitempty"`
	RegionBams [][]string        `json:"region_bams,omitempty"`

	Reference string            `json:"sam_ref"`
	Resources map[string]string `json:"variation,omitempty"`

	// VrnFile is the sample's working variant output. A manifest may
	// supply it up front (precalled variants) as a string or a
	// single-element list.
	VrnFile Path `json:"vrn_file,omitempty"`

	// Staging fields used between expansion and combination; the combiner
	// clears them.
	VrnFileBatch string            `json:"vrn_file_batch,omitempty"`
	VrnFileOrig  string            `json:"vrn_file_orig,omitempty"`
	VrnFilePlus  map[string]string `json:"vrn_file_plus,omitempty"`
	VrnStats     string            `json:"vrn_stats,omitempty"`

	Validate map[string]string `json:"validate,omitempty"`

	// Variants is the final ordered list of per-caller results. Only the
	// combiner populates it.
	Variants []Variant `json:"variants,omitempty"`

	Dirs   Dirs   `json:"dirs"`
	Config Config `json:"config"`
}

// Metadata carries upstream sample annotations used for batching.
type Metadata struct {
	Batch     string `json:"batch,omitempty"`
	Phenotype string `json:"phenotype,omitempty"`
	Sex       string `json:"sex,omitempty"`
}

// Dirs names the directories a sample writes under.
type Dirs struct {
	Work string `json:"work"`
}

// Variant is one per-caller entry in a combined sample's Variants list.
type Variant struct {
	Caller    string            `json:"variantcaller"`
	File      string            `json:"vrn_file,omitempty"`
	BatchFile string            `json:"vrn_file_batch,omitempty"`
	Stats     string            `json:"vrn_stats,omitempty"`
	Validate  map[string]string `json:"validate,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`

	// Population and DoUpload gate downstream population-database loading
	// and result upload. Joint and precalled entries suppress upload;
	// per-caller entries suppress population loading when a joint caller
	// supersedes them.
	Population bool `json:"population"`
	DoUpload   bool `json:"do_upload"`
}

// Paths is a path list that manifests may supply either as a single JSON
// string or as an array of strings; both normalize to a slice, so values
// derived from a Paths depend only on its elements.
type Paths []string

// UnmarshalJSON implements json.Unmarshaler.
func (p *Paths) UnmarshalJSON(b []byte) error {
	*p = nil
	if len(b) == 0 {
		return errors.New("empty path value")
	}
	switch b[0] {
	case 'n':
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = Paths{s}
		return nil
	case '[':
		return json.Unmarshal(b, (*[]string)(p))
	default:
		return errors.E("path value must be a string or list:", string(b))
	}
}

// First returns the first path, or "" when empty.
func (p Paths) First() string {
	if len(p) == 0 {
		return ""
	}
	return p[0]
}

// Path is a single file path that manifests may nonetheless supply as a
// one-element list. Stages that require exactly one path reject
// multi-valued input explicitly.
type Path struct {
	v []string
}

// PathOf returns a Path holding p, or an empty Path for "".
func PathOf(p string) Path {
	if p == "" {
		return Path{}
	}
	return Path{v: []string{p}}
}

// String returns the first path, or "" when empty.
func (p Path) String() string {
	if len(p.v) == 0 {
		return ""
	}
	return p.v[0]
}

// Empty reports whether no path is set.
func (p Path) Empty() bool { return len(p.v) == 0 }

// Len returns the number of supplied paths.
func (p Path) Len() int { return len(p.v) }

// MarshalJSON implements json.Marshaler.
func (p Path) MarshalJSON() ([]byte, error) {
	switch len(p.v) {
	case 0:
		return []byte("null"), nil
	case 1:
		return json.Marshal(p.v[0])
	default:
		return json.Marshal(p.v)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Path) UnmarshalJSON(b []byte) error {
	var paths Paths
	if err := paths.UnmarshalJSON(b); err != nil {
		return err
	}
	p.v = paths
	return nil
}

// Clone returns a structural copy of s: fresh slices and maps throughout,
// so mutating the clone never aliases the original.
func (s *Sample) Clone() *Sample {
	c := *s
	c.AlignBams = append(Paths(nil), s.AlignBams...)
	c.WorkBams = append(Paths(nil), s.WorkBams...)
	c.Regions = append([]interval.Region(nil), s.Regions...)
	if s.RegionBams != nil {
		c.RegionBams = make([][]string, len(s.RegionBams))
		for i, bams := range s.RegionBams {
			c.RegionBams[i] = append([]string(nil), bams...)
		}
	}
	c.Resources = copyStringMap(s.Resources)
	c.VrnFile = Path{v: append([]string(nil), s.VrnFile.v...)}
	c.VrnFilePlus = copyStringMap(s.VrnFilePlus)
	c.Validate = copyStringMap(s.Validate)
	if s.Variants != nil {
		c.Variants = make([]Variant, len(s.Variants))
		for i, v := range s.Variants {
			v.Validate = copyStringMap(v.Validate)
			v.Extra = copyStringMap(v.Extra)
			c.Variants[i] = v
		}
	}
	c.Config = s.Config.Clone()
	return &c
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
