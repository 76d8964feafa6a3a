// Package mapping models a requirement's data source mapping: an open-schema,
// ordered set of keys referencing other frameworks' controls, evidence and
// requirement flags, asset types and legal citations.
//
// The schema is deliberately open. Decoding only checks that the payload is a
// well-formed key→value structure whose values are strings, lists of strings
// or bools; the content itself is passed through unchanged.
package mapping

import (
	"errors"
	"fmt"
	"strings"

	pstrings "github.com/moag1000/Little-ISMS-Helper-sub006/pkg/platform/strings"
)

// ErrMalformed is wrapped by every decoding and validation failure.
var ErrMalformed = errors.New("malformed data source mapping")

var errInvalidValue = fmt.Errorf("%w: value has no variant", ErrMalformed)

// Conventional keys seen in the framework data modules.
const (
	KeyISOControls        = "iso_controls"
	KeyAuditEvidence      = "audit_evidence"
	KeyAssetTypes         = "asset_types"
	KeyLegalRequirement   = "legal_requirement"
	KeyIncidentManagement = "incident_management"
	KeyBCMRequired        = "bcm_required"
	KeyGDPRArticle        = "gdpr_article"
	KeyGDPRRelevant       = "gdpr_relevant"
	KeyTISAXLevel         = "tisax_level"
	KeyBSIGrundschutz     = "bsi_grundschutz"
	KeyTrainingRequired   = "training_required"
	KeyReportingDeadline  = "reporting_deadline"
)

// controlKeySuffix marks keys whose values are other frameworks' control IDs.
const controlKeySuffix = "_controls"

// Entry is one key/value pair.
type Entry struct {
	Key   string
	Value Value
}

// Mapping is an ordered string-keyed map of Values. The zero Mapping is empty
// and ready to use.
type Mapping struct {
	entries []Entry
}

// New builds a Mapping from entries, validating well-formedness.
func New(entries ...Entry) (Mapping, error) {
	m := Mapping{entries: append([]Entry{}, entries...)}
	if err := m.Validate(); err != nil {
		return Mapping{}, err
	}
	return m, nil
}

// MustNew is New for static data; it panics on malformed entries.
func MustNew(entries ...Entry) Mapping {
	m, err := New(entries...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Mapping) Len() int { return len(m.entries) }

func (m Mapping) IsEmpty() bool { return len(m.entries) == 0 }

func (m Mapping) Keys() []string {
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries in order.
func (m Mapping) Entries() []Entry {
	return append([]Entry{}, m.entries...)
}

func (m Mapping) Get(key string) (Value, bool) {
	for _, e := range m.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Set replaces the value for key in place or appends a new entry. It returns
// a new Mapping; m is left untouched.
func (m Mapping) Set(key string, v Value) (Mapping, error) {
	if strings.TrimSpace(key) == "" {
		return m, fmt.Errorf("%w: empty key", ErrMalformed)
	}
	if v.Kind() == KindInvalid {
		return m, fmt.Errorf("%w: key %q: %v", ErrMalformed, key, errInvalidValue)
	}
	out := m.Clone()
	for i, e := range out.entries {
		if e.Key == key {
			out.entries[i].Value = v
			return out, nil
		}
	}
	out.entries = append(out.entries, Entry{Key: key, Value: v})
	return out, nil
}

func (m Mapping) Clone() Mapping {
	out := Mapping{entries: make([]Entry, len(m.entries))}
	for i, e := range m.entries {
		if list, ok := e.Value.AsList(); ok {
			e.Value = List(list...)
		}
		out.entries[i] = e
	}
	return out
}

// Equal compares keys, order and values.
func (m Mapping) Equal(o Mapping) bool {
	if len(m.entries) != len(o.entries) {
		return false
	}
	for i := range m.entries {
		if m.entries[i].Key != o.entries[i].Key || !m.entries[i].Value.Equal(o.entries[i].Value) {
			return false
		}
	}
	return true
}

// Validate checks well-formedness only: non-empty unique keys and values that
// hold one of the three variants.
func (m Mapping) Validate() error {
	seen := make(map[string]struct{}, len(m.entries))
	for _, e := range m.entries {
		if strings.TrimSpace(e.Key) == "" {
			return fmt.Errorf("%w: empty key", ErrMalformed)
		}
		if _, dup := seen[e.Key]; dup {
			return fmt.Errorf("%w: duplicate key %q", ErrMalformed, e.Key)
		}
		seen[e.Key] = struct{}{}
		if e.Value.Kind() == KindInvalid {
			return fmt.Errorf("%w: key %q has no value", ErrMalformed, e.Key)
		}
	}
	return nil
}

// ControlRefs returns the cross-framework control references, keyed by the
// mapping key (e.g. "iso_controls"). Lists are trimmed and deduplicated; a
// plain string counts as a single reference.
func (m Mapping) ControlRefs() map[string][]string {
	refs := make(map[string][]string)
	for _, e := range m.entries {
		if !strings.HasSuffix(e.Key, controlKeySuffix) {
			continue
		}
		var ids []string
		if list, ok := e.Value.AsList(); ok {
			ids = pstrings.DedupeAndTrim(list)
		} else if s, ok := e.Value.AsString(); ok {
			ids = pstrings.DedupeAndTrim([]string{s})
		}
		if len(ids) > 0 {
			refs[e.Key] = ids
		}
	}
	return refs
}

// Flags returns the keys whose value is the bool true, in order.
func (m Mapping) Flags() []string {
	var flags []string
	for _, e := range m.entries {
		if b, ok := e.Value.AsBool(); ok && b {
			flags = append(flags, e.Key)
		}
	}
	return flags
}

// AssetTypes returns the asset type tags, if any.
func (m Mapping) AssetTypes() []string {
	v, ok := m.Get(KeyAssetTypes)
	if !ok {
		return nil
	}
	list, _ := v.AsList()
	return list
}

// Citations returns string-valued entries that cite legal sources, such as
// "legal_requirement" or "gdpr_article".
func (m Mapping) Citations() map[string]string {
	out := make(map[string]string)
	for _, key := range []string{KeyLegalRequirement, KeyGDPRArticle, KeyReportingDeadline} {
		if v, ok := m.Get(key); ok {
			if s, ok := v.AsString(); ok {
				out[key] = s
			}
		}
	}
	return out
}
