package wizard

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-ispdn/pkg/model"
	"github.com/goliatone/go-ispdn/pkg/selection"
	"github.com/goliatone/go-ispdn/pkg/visibility/expr"
)

// Names of the embedded catalogs.
const (
	CatalogThreeStep = "three-step"
	CatalogFourStep  = "four-step"
	DefaultCatalog   = CatalogThreeStep
)

//go:embed catalogs/*.yaml
var embeddedCatalogs embed.FS

// CatalogsFS exposes the embedded step catalogs.
func CatalogsFS() fs.FS {
	sub, err := fs.Sub(embeddedCatalogs, "catalogs")
	if err != nil {
		return embeddedCatalogs
	}
	return sub
}

// Catalogs stores definitions by name.
type Catalogs struct {
	definitions map[string]Definition
}

// Get returns the named definition.
func (c *Catalogs) Get(name string) (Definition, bool) {
	if c == nil {
		return Definition{}, false
	}
	def, ok := c.definitions[strings.TrimSpace(name)]
	if !ok {
		return Definition{}, false
	}
	return def.clone(), true
}

// Names lists the loaded catalog names, sorted.
func (c *Catalogs) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.definitions))
	for name := range c.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	builtinOnce sync.Once
	builtinSet  *Catalogs
	builtinErr  error
)

// Builtin returns one of the embedded catalogs.
func Builtin(name string) (Definition, error) {
	builtinOnce.Do(func() {
		builtinSet, builtinErr = LoadFS(CatalogsFS())
	})
	if builtinErr != nil {
		return Definition{}, builtinErr
	}
	def, ok := builtinSet.Get(name)
	if !ok {
		return Definition{}, fmt.Errorf("wizard: unknown catalog %q (available: %s)", name, strings.Join(builtinSet.Names(), ", "))
	}
	return def, nil
}

// LoadFS walks fsys and parses every JSON/YAML catalog it finds. A nil
// filesystem yields an empty set.
func LoadFS(fsys fs.FS) (*Catalogs, error) {
	set := &Catalogs{definitions: make(map[string]Definition)}
	if fsys == nil {
		return set, nil
	}

	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isCatalogFile(name) {
			return nil
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("wizard: read %s: %w", name, err)
		}
		def, err := Parse(data, name)
		if err != nil {
			return err
		}
		if _, exists := set.definitions[def.Name]; exists {
			return fmt.Errorf("wizard: duplicate catalog %q (file %s)", def.Name, name)
		}
		set.definitions[def.Name] = def
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// Parse decodes a single JSON or YAML catalog. source names the document in
// error messages and provides the fallback catalog name.
func Parse(data []byte, source string) (Definition, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Definition{}, fmt.Errorf("wizard: catalog %s is empty", source)
	}

	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		def = Definition{}
		if err := yaml.Unmarshal(data, &def); err != nil {
			return Definition{}, fmt.Errorf("wizard: parse %s: invalid JSON or YAML: %w", source, err)
		}
	}
	if strings.TrimSpace(def.Name) == "" {
		base := path.Base(source)
		def.Name = strings.TrimSuffix(base, path.Ext(base))
	}
	return normaliseDefinition(def, source)
}

func normaliseDefinition(raw Definition, source string) (Definition, error) {
	def := Definition{
		Name:       strings.TrimSpace(raw.Name),
		ThreatMode: raw.ThreatMode,
	}
	switch def.ThreatMode {
	case "":
		def.ThreatMode = selection.ModeMulti
	case selection.ModeMulti, selection.ModeSingle:
	default:
		return Definition{}, fmt.Errorf("wizard: catalog %s has invalid threatMode %q", source, raw.ThreatMode)
	}
	if len(raw.Steps) == 0 {
		return Definition{}, fmt.Errorf("wizard: catalog %s defines no steps", source)
	}

	ids := make(map[string]struct{}, len(raw.Steps))
	kinds := make(map[Kind]string, len(raw.Steps))
	for idx, step := range raw.Steps {
		step.ID = strings.TrimSpace(step.ID)
		if step.ID == "" {
			return Definition{}, fmt.Errorf("wizard: catalog %s step %d has an empty id", source, idx)
		}
		if _, dup := ids[step.ID]; dup {
			return Definition{}, fmt.Errorf("wizard: catalog %s duplicate step %q", source, step.ID)
		}
		ids[step.ID] = struct{}{}

		if !step.Kind.valid() {
			return Definition{}, fmt.Errorf("wizard: catalog %s step %q has unknown kind %q", source, step.ID, step.Kind)
		}
		if other, dup := kinds[step.Kind]; dup {
			return Definition{}, fmt.Errorf("wizard: catalog %s steps %q and %q share kind %q", source, other, step.ID, step.Kind)
		}
		kinds[step.Kind] = step.ID

		if err := expr.Compile(step.VisibleWhen); err != nil {
			return Definition{}, fmt.Errorf("wizard: catalog %s step %q visibleWhen: %w", source, step.ID, err)
		}

		options, err := normaliseOptions(step, source)
		if err != nil {
			return Definition{}, err
		}
		step.Options = options
		step.VisibleWhen = strings.TrimSpace(step.VisibleWhen)
		def.Steps = append(def.Steps, step)
	}

	for _, required := range []Kind{KindDataType, KindThreats, KindEmployeesOnly} {
		if _, ok := kinds[required]; !ok {
			return Definition{}, fmt.Errorf("wizard: catalog %s has no %s step", source, required)
		}
	}
	return def, nil
}

func normaliseOptions(step StepDescriptor, source string) ([]selection.Option, error) {
	if len(step.Options) == 0 {
		return nil, fmt.Errorf("wizard: catalog %s step %q has no options", source, step.ID)
	}
	out := make([]selection.Option, 0, len(step.Options))
	for _, opt := range step.Options {
		opt.Value = strings.TrimSpace(opt.Value)
		if !optionAllowed(step.Kind, opt.Value) {
			return nil, fmt.Errorf("wizard: catalog %s step %q has invalid option %q", source, step.ID, opt.Value)
		}
		if strings.TrimSpace(opt.Label) == "" {
			opt.Label = opt.Value
		}
		if step.Kind == KindThreats && opt.Value == string(model.ThreatUnknown) {
			opt.Exclusive = true
		}
		out = append(out, opt)
	}
	return out, nil
}

func optionAllowed(kind Kind, value string) bool {
	switch kind {
	case KindDataType:
		switch model.DataType(value) {
		case model.DataTypeSpecial, model.DataTypeBiometric, model.DataTypePublic, model.DataTypeOther:
			return true
		}
	case KindThreats:
		switch model.ThreatType(value) {
		case model.ThreatType1, model.ThreatType2, model.ThreatType3, model.ThreatUnknown:
			return true
		}
	case KindEmployeesOnly:
		return value == OptionYes || value == OptionNo
	case KindNonEmployeeScope:
		switch model.Scope(value) {
		case model.ScopeUnder100k, model.ScopeOver100k:
			return true
		}
	}
	return false
}

func isCatalogFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
