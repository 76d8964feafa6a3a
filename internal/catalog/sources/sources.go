// Package sources provides framework data modules: the embedded catalogue
// shipped with the binary and definition files supplied by operators.
package sources

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/models"
	"github.com/moag1000/Little-ISMS-Helper-sub006/internal/catalog/reconcile"
	dErrors "github.com/moag1000/Little-ISMS-Helper-sub006/pkg/domain-errors"
)

//go:embed data/*.yaml
var data embed.FS

// builtinOrder lists embedded modules in load order. Supplements follow the
// framework they extend.
var builtinOrder = []string{"iso27001", "nis2", "dora", "dora-rts", "soc2", "nist-csf", "gdpr"}

// Module is one framework data module: a target framework code, the
// descriptor used if the framework has to be created and its definitions.
type Module struct {
	Name      string            `json:"name" yaml:"name"`
	Code      string            `json:"code" yaml:"code"`
	Framework models.Descriptor `json:"framework" yaml:"framework"`
	// Supplement modules only add to a framework loaded by another module.
	Supplement bool `json:"supplement" yaml:"supplement"`
	// Transaction is "per_batch" (default) or "all_or_nothing".
	Transaction     string              `json:"transaction" yaml:"transaction"`
	SkipIfPopulated bool                `json:"skip_if_populated" yaml:"skip_if_populated"`
	Requirements    []models.Definition `json:"requirements" yaml:"requirements"`
}

// Validate checks the module header. Definitions are validated by the
// reconciler before any write.
func (m Module) Validate() error {
	if err := models.ValidateCode(models.NormalizeCode(m.Code)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "module "+m.Name)
	}
	if _, err := parseTxMode(m.Transaction); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "module "+m.Name)
	}
	return nil
}

// Job builds a reconcile job from the module. Module defaults only ever
// tighten the caller's options.
func (m Module) Job(opts reconcile.Options) (reconcile.Job, error) {
	if err := m.Validate(); err != nil {
		return reconcile.Job{}, err
	}
	txMode, _ := parseTxMode(m.Transaction)
	if txMode == reconcile.AllOrNothing {
		opts.Transaction = reconcile.AllOrNothing
	}
	if m.SkipIfPopulated {
		opts.SkipIfPopulated = true
	}
	if m.Supplement {
		opts.RequireFramework = true
		opts.RefreshFramework = true
	}
	return reconcile.Job{
		Code:        m.Code,
		Framework:   m.Framework,
		Definitions: m.Requirements,
		Options:     opts,
	}, nil
}

func parseTxMode(s string) (reconcile.TxMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "per_batch":
		return reconcile.PerBatch, nil
	case "all_or_nothing":
		return reconcile.AllOrNothing, nil
	}
	return 0, fmt.Errorf("unknown transaction mode %q", s)
}

var loadBuiltin = sync.OnceValues(func() ([]Module, error) {
	out := make([]Module, 0, len(builtinOrder))
	for _, name := range builtinOrder {
		raw, err := fs.ReadFile(data, "data/"+name+".yaml")
		if err != nil {
			return nil, fmt.Errorf("read builtin module %s: %w", name, err)
		}
		m, err := decode(raw, ".yaml")
		if err != nil {
			return nil, fmt.Errorf("decode builtin module %s: %w", name, err)
		}
		if m.Name == "" {
			m.Name = name
		}
		out = append(out, m)
	}
	return out, nil
})

// Builtin returns the embedded modules in load order.
func Builtin() ([]Module, error) {
	mods, err := loadBuiltin()
	if err != nil {
		return nil, err
	}
	out := make([]Module, len(mods))
	copy(out, mods)
	return out, nil
}

// Lookup finds an embedded module by module name or framework code, case
// insensitively. A code resolves to the base module, not a supplement.
func Lookup(key string) (Module, error) {
	mods, err := loadBuiltin()
	if err != nil {
		return Module{}, err
	}
	key = strings.TrimSpace(key)
	for _, m := range mods {
		if strings.EqualFold(m.Name, key) {
			return m, nil
		}
	}
	for _, m := range mods {
		if !m.Supplement && strings.EqualFold(m.Code, key) {
			return m, nil
		}
	}
	return Module{}, dErrors.Newf(dErrors.CodeNotFound, "no builtin framework module %q", key)
}

// LoadFile reads definitions from a YAML or JSON file. The file holds
// either a bare list of definitions or a full module document; code, when
// set, fills an empty module code.
func LoadFile(path, code string) (Module, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Module{}, dErrors.Wrap(err, dErrors.CodeNotFound, "definition file "+path)
		}
		return Module{}, dErrors.Wrap(err, dErrors.CodeInternal, "read definition file")
	}
	m, err := decode(raw, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return Module{}, dErrors.Wrap(err, dErrors.CodeValidation, "definition file "+path)
	}
	if m.Code == "" {
		m.Code = code
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := m.Validate(); err != nil {
		return Module{}, err
	}
	return m, nil
}

func decode(raw []byte, ext string) (Module, error) {
	if ext == ".json" {
		return decodeJSON(raw)
	}
	return decodeYAML(raw)
}

func decodeJSON(raw []byte) (Module, error) {
	var m Module
	trimmed := bytes.TrimSpace(raw)
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return m, dec.Decode(&m.Requirements)
	}
	return m, dec.Decode(&m)
}

func decodeYAML(raw []byte) (Module, error) {
	var (
		m    Module
		root yaml.Node
	)
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return m, err
	}
	if len(root.Content) == 0 {
		return m, errors.New("empty document")
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if root.Content[0].Kind == yaml.SequenceNode {
		return m, dec.Decode(&m.Requirements)
	}
	return m, dec.Decode(&m)
}
