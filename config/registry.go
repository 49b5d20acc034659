package config

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v2"
)

//go:embed registry.yaml
var defaultRegistryYAML []byte

// KPIDefinition maps a canonical KPI name to an ordered list of patterns
// evaluated against normalized concept labels. Sign flips expense lines to
// positive amounts; required KPIs surface a warning when nothing matches,
// optional ones silently use Default.
type KPIDefinition struct {
	Name     string   `yaml:"name"`
	Label    string   `yaml:"label"`
	Patterns []string `yaml:"patterns"`
	Sign     int      `yaml:"sign"`
	Required bool     `yaml:"required"`
	Default  float64  `yaml:"default"`

	compiled []*regexp.Regexp
}

// Match reports whether any of the definition's patterns matches the given
// normalized label. Patterns are tried in declaration order.
func (d *KPIDefinition) Match(normalized string) bool {
	for _, re := range d.compiled {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}

// Regexps returns the compiled patterns in declaration order.
func (d *KPIDefinition) Regexps() []*regexp.Regexp {
	return d.compiled
}

// MatchAt returns the index of the first pattern matching the normalized
// label, or -1.
func (d *KPIDefinition) MatchAt(normalized string) int {
	for i, re := range d.compiled {
		if re.MatchString(normalized) {
			return i
		}
	}
	return -1
}

// DetailCategory pairs a pattern with the display label of a detail line.
type DetailCategory struct {
	Pattern string `yaml:"pattern"`
	Label   string `yaml:"label"`

	Regex *regexp.Regexp `yaml:"-"`
}

// ServiceDetail describes the row range holding per-service revenue lines.
type ServiceDetail struct {
	Parent string `yaml:"parent"`
	Item   string `yaml:"item"`
	Stop   string `yaml:"stop"`

	ParentRegex *regexp.Regexp `yaml:"-"`
	ItemRegex   *regexp.Regexp `yaml:"-"`
	StopRegex   *regexp.Regexp `yaml:"-"`
}

// ItemDetail describes detail lines identified by an item code prefix.
type ItemDetail struct {
	Item string `yaml:"item"`

	ItemRegex *regexp.Regexp `yaml:"-"`
}

// Details groups the detail breakdown mappings.
type Details struct {
	Services    ServiceDetail    `yaml:"services"`
	Procurement ItemDetail       `yaml:"procurement"`
	Payroll     []DetailCategory `yaml:"payroll"`
	Operating   []DetailCategory `yaml:"operating"`
}

// Registry is the immutable KPI configuration, loaded once at startup.
type Registry struct {
	Years   []string        `yaml:"years"`
	KPIs    []KPIDefinition `yaml:"kpis"`
	Details Details         `yaml:"details"`
}

// LoadRegistry parses and compiles the KPI registry. With an empty path the
// embedded default registry is used.
func LoadRegistry(path string) (*Registry, error) {
	data := defaultRegistryYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read KPI registry %s: %w", path, err)
		}
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse KPI registry: %w", err)
	}
	if err := reg.compile(); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *Registry) compile() error {
	if len(r.Years) == 0 {
		return fmt.Errorf("KPI registry defines no years")
	}
	if len(r.KPIs) == 0 {
		return fmt.Errorf("KPI registry defines no KPIs")
	}

	for i := range r.KPIs {
		def := &r.KPIs[i]
		if def.Name == "" {
			return fmt.Errorf("KPI #%d has no name", i)
		}
		if len(def.Patterns) == 0 {
			return fmt.Errorf("KPI %s has no patterns", def.Name)
		}
		if def.Sign != 1 && def.Sign != -1 {
			return fmt.Errorf("KPI %s has invalid sign %d, must be 1 or -1", def.Name, def.Sign)
		}
		for _, p := range def.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return fmt.Errorf("KPI %s has invalid pattern %q: %w", def.Name, p, err)
			}
			def.compiled = append(def.compiled, re)
		}
	}

	var err error
	d := &r.Details
	if d.Services.Parent != "" {
		if d.Services.ParentRegex, err = regexp.Compile(d.Services.Parent); err != nil {
			return fmt.Errorf("invalid services parent pattern: %w", err)
		}
		if d.Services.ItemRegex, err = regexp.Compile(d.Services.Item); err != nil {
			return fmt.Errorf("invalid services item pattern: %w", err)
		}
		if d.Services.StopRegex, err = regexp.Compile(d.Services.Stop); err != nil {
			return fmt.Errorf("invalid services stop pattern: %w", err)
		}
	}
	if d.Procurement.Item != "" {
		if d.Procurement.ItemRegex, err = regexp.Compile(d.Procurement.Item); err != nil {
			return fmt.Errorf("invalid procurement item pattern: %w", err)
		}
	}
	for i := range d.Payroll {
		if d.Payroll[i].Regex, err = regexp.Compile(d.Payroll[i].Pattern); err != nil {
			return fmt.Errorf("invalid payroll pattern %q: %w", d.Payroll[i].Pattern, err)
		}
	}
	for i := range d.Operating {
		if d.Operating[i].Regex, err = regexp.Compile(d.Operating[i].Pattern); err != nil {
			return fmt.Errorf("invalid operating pattern %q: %w", d.Operating[i].Pattern, err)
		}
	}

	return nil
}

// Definition returns the KPI definition with the given canonical name.
func (r *Registry) Definition(name string) *KPIDefinition {
	for i := range r.KPIs {
		if r.KPIs[i].Name == name {
			return &r.KPIs[i]
		}
	}
	return nil
}

// Label returns the display label for a canonical KPI name, falling back to
// the name itself.
func (r *Registry) Label(name string) string {
	if def := r.Definition(name); def != nil && def.Label != "" {
		return def.Label
	}
	return name
}
