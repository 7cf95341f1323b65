package sample

import (
	"encoding/json"

	"github.com/grailbio/base/errors"
)

// Config carries the analysis configuration for one sample. Values are
// immutable by convention: expansion derives new configurations through
// Clone instead of mutating shared state in place.
type Config struct {
	Algorithm Algorithm `json:"algorithm"`
}

// Algorithm is the per-sample algorithm configuration surface recognized by
// this package.
type Algorithm struct {
	VariantCaller  CallerList `json:"variantcaller,omitempty"`
	JointCaller    CallerList `json:"jointcaller,omitempty"`
	Phasing        string     `json:"phasing,omitempty"`
	VariantRegions string     `json:"variant_regions,omitempty"`

	// Provenance preserves the pre-expansion caller lists while a record
	// is fanned out one caller per clone. The first expansion sets it,
	// later expansions never overwrite it, and the combiner restores it
	// as the active lists.
	Provenance *Provenance `json:"provenance,omitempty"`
}

// Provenance records the original multi-caller configuration of an expanded
// record.
type Provenance struct {
	VariantCaller []string `json:"variantcaller,omitempty"`
	JointCaller   []string `json:"jointcaller,omitempty"`
}

// Clone returns a structural copy of c.
func (c Config) Clone() Config {
	c.Algorithm.VariantCaller = c.Algorithm.VariantCaller.clone()
	c.Algorithm.JointCaller = c.Algorithm.JointCaller.clone()
	if p := c.Algorithm.Provenance; p != nil {
		c.Algorithm.Provenance = &Provenance{
			VariantCaller: append([]string(nil), p.VariantCaller...),
			JointCaller:   append([]string(nil), p.JointCaller...),
		}
	}
	return c
}

// CallerList is a caller-selection configuration value. The manifest form
// is a bare string (one caller, no fan-out), a list of names (fan-out, one
// clone per name), false (calling explicitly switched off), or absent. A
// bare string keeps its scalar form: "samtools" selects a single caller
// while ["samtools"] requests fan-out over a one-element list.
type CallerList struct {
	names    []string
	scalar   bool
	disabled bool
}

// Callers returns a list-form CallerList.
func Callers(names ...string) CallerList {
	return CallerList{names: names}
}

// ScalarCaller returns a scalar-form CallerList naming one caller.
func ScalarCaller(name string) CallerList {
	return CallerList{names: []string{name}, scalar: true}
}

// DisabledCallers returns a CallerList that is explicitly switched off, as
// distinct from one that was never configured.
func DisabledCallers() CallerList {
	return CallerList{disabled: true}
}

// IsEmpty reports whether no caller is requested, either because none was
// configured or because calling was switched off.
func (c CallerList) IsEmpty() bool { return len(c.names) == 0 }

// IsDisabled reports whether calling was explicitly switched off.
func (c CallerList) IsDisabled() bool { return c.disabled }

// IsScalar reports whether the value was a bare name rather than a list.
func (c CallerList) IsScalar() bool { return c.scalar }

// Names returns the configured names in order. The caller must not modify
// the returned slice.
func (c CallerList) Names() []string { return c.names }

// Len returns the number of configured names.
func (c CallerList) Len() int { return len(c.names) }

// Active returns the concrete caller of a scalar value or an expanded
// clone: the first configured name, or "" when empty.
func (c CallerList) Active() string {
	if len(c.names) == 0 {
		return ""
	}
	return c.names[0]
}

func (c CallerList) clone() CallerList {
	c.names = append([]string(nil), c.names...)
	return c
}

// MarshalJSON implements json.Marshaler, reproducing the manifest form.
func (c CallerList) MarshalJSON() ([]byte, error) {
	switch {
	case c.disabled:
		return []byte("false"), nil
	case len(c.names) == 0:
		return []byte("null"), nil
	case c.scalar:
		return json.Marshal(c.names[0])
	default:
		return json.Marshal(c.names)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *CallerList) UnmarshalJSON(b []byte) error {
	*c = CallerList{}
	if len(b) == 0 {
		return errors.New("empty caller value")
	}
	switch b[0] {
	case 'n': // null
		return nil
	case 'f', 't':
		var v bool
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		if v {
			return errors.New("caller value true is not a caller name")
		}
		c.disabled = true
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		c.names = []string{s}
		c.scalar = true
		return nil
	case '[':
		return json.Unmarshal(b, &c.names)
	default:
		return errors.E("caller value must be a name, list, or false:", string(b))
	}
}
