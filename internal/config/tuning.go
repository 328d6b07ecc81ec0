package config

import (
	"os"
	"strings"

	"github.com/ZacxDev/video-editor/pkg/types"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// KindSpec describes the slider range, default and random sub-range of one
// adjustment kind.
type KindSpec struct {
	Kind      types.AdjustmentKind
	Label     string
	Function  string // CSS filter function
	Unit      string // "", "px" or "deg"
	Min       float64
	Max       float64
	Step      float64
	Default   float64
	RandomMin float64
	RandomMax float64
}

// PresetStep is one (kind, literal value) pair of a preset.
type PresetStep struct {
	Kind  types.AdjustmentKind `yaml:"kind"`
	Value float64              `yaml:"value"`
}

// PresetSpec is a named bundle of adjustments applied atomically.
type PresetSpec struct {
	Name    string       `yaml:"name"`
	Aliases []string     `yaml:"aliases"`
	Steps   []PresetStep `yaml:"steps"`
}

// Tuning carries the product-level numbers behind adjustments: ranges,
// defaults, random sub-ranges and presets.
type Tuning struct {
	Kinds   map[types.AdjustmentKind]KindSpec
	Presets []PresetSpec
}

// DefaultTuning returns the built-in tuning.
func DefaultTuning() *Tuning {
	kinds := []KindSpec{
		{Kind: types.Brightness, Label: "Brightness", Function: "brightness", Min: 0, Max: 3, Step: 0.1, Default: 1.3, RandomMin: 0.8, RandomMax: 2.5},
		{Kind: types.Contrast, Label: "Contrast", Function: "contrast", Min: 0, Max: 3, Step: 0.1, Default: 1.3, RandomMin: 0.8, RandomMax: 2.5},
		{Kind: types.Saturation, Label: "Saturation", Function: "saturate", Min: 0, Max: 3, Step: 0.1, Default: 1.5, RandomMin: 0.5, RandomMax: 2.0},
		{Kind: types.Blur, Label: "Blur", Function: "blur", Unit: "px", Min: 0, Max: 10, Step: 0.5, Default: 2, RandomMin: 0.5, RandomMax: 5},
		{Kind: types.Sepia, Label: "Sepia", Function: "sepia", Min: 0, Max: 1, Step: 0.1, Default: 1, RandomMin: 0.3, RandomMax: 1},
		{Kind: types.Grayscale, Label: "Grayscale", Function: "grayscale", Min: 0, Max: 1, Step: 0.1, Default: 1, RandomMin: 0.3, RandomMax: 1},
		{Kind: types.Invert, Label: "Invert", Function: "invert", Min: 0, Max: 1, Step: 0.1, Default: 1, RandomMin: 0.3, RandomMax: 1},
		{Kind: types.HueRotate, Label: "Hue", Function: "hue-rotate", Unit: "deg", Min: 0, Max: 360, Step: 10, Default: 90, RandomMin: 0, RandomMax: 360},
	}

	t := &Tuning{Kinds: make(map[types.AdjustmentKind]KindSpec, len(kinds))}
	for _, k := range kinds {
		t.Kinds[k.Kind] = k
	}

	t.Presets = []PresetSpec{
		{Name: "vintage", Steps: []PresetStep{
			{types.Sepia, 0.8}, {types.Contrast, 1.2}, {types.Brightness, 1.1},
		}},
		{Name: "cinematic", Aliases: []string{"cinematico"}, Steps: []PresetStep{
			{types.Contrast, 1.3}, {types.Saturation, 1.2}, {types.Brightness, 0.9},
		}},
		{Name: "dramatic", Aliases: []string{"dramatico"}, Steps: []PresetStep{
			{types.Contrast, 1.5}, {types.Brightness, 0.8}, {types.Saturation, 1.4},
		}},
		{Name: "soft", Aliases: []string{"suave"}, Steps: []PresetStep{
			{types.Brightness, 1.2}, {types.Blur, 1}, {types.Saturation, 0.8},
		}},
		{Name: "vibrant", Aliases: []string{"vibrante"}, Steps: []PresetStep{
			{types.Saturation, 1.6}, {types.Contrast, 1.2}, {types.HueRotate, 15},
		}},
	}

	return t
}

// Kind returns the spec for k.
func (t *Tuning) Kind(k types.AdjustmentKind) (KindSpec, bool) {
	spec, ok := t.Kinds[k]
	return spec, ok
}

// Preset looks a preset up by name or alias, case-insensitively.
func (t *Tuning) Preset(name string) (PresetSpec, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range t.Presets {
		if p.Name == name {
			return p, true
		}
		for _, a := range p.Aliases {
			if a == name {
				return p, true
			}
		}
	}
	return PresetSpec{}, false
}

// PresetNames returns the canonical preset names in declaration order.
func (t *Tuning) PresetNames() []string {
	names := make([]string, 0, len(t.Presets))
	for _, p := range t.Presets {
		names = append(names, p.Name)
	}
	return names
}

// Validate checks that every kind has a sane range and every preset step
// references a known kind with an in-range value.
func (t *Tuning) Validate() error {
	for _, k := range types.AdjustmentKinds {
		spec, ok := t.Kinds[k]
		if !ok {
			return errors.Errorf("tuning is missing kind %s", k)
		}
		if spec.Step <= 0 {
			return errors.Errorf("kind %s: step must be positive", k)
		}
		if spec.Min > spec.Max {
			return errors.Errorf("kind %s: min %.2f exceeds max %.2f", k, spec.Min, spec.Max)
		}
		if spec.Default < spec.Min || spec.Default > spec.Max {
			return errors.Errorf("kind %s: default %.2f outside [%.2f, %.2f]", k, spec.Default, spec.Min, spec.Max)
		}
		if spec.RandomMin < spec.Min || spec.RandomMax > spec.Max || spec.RandomMin > spec.RandomMax {
			return errors.Errorf("kind %s: random range [%.2f, %.2f] must sit inside [%.2f, %.2f]",
				k, spec.RandomMin, spec.RandomMax, spec.Min, spec.Max)
		}
	}
	for k := range t.Kinds {
		if !k.Valid() {
			return errors.Errorf("unknown adjustment kind in tuning: %s", k)
		}
	}
	for _, p := range t.Presets {
		if p.Name == "" {
			return errors.Errorf("preset without a name")
		}
		for _, s := range p.Steps {
			spec, ok := t.Kinds[s.Kind]
			if !ok {
				return errors.Errorf("preset %s: unknown kind %s", p.Name, s.Kind)
			}
			if s.Value < spec.Min || s.Value > spec.Max {
				return errors.Errorf("preset %s: %s value %.2f outside [%.2f, %.2f]",
					p.Name, s.Kind, s.Value, spec.Min, spec.Max)
			}
		}
	}
	return nil
}

type kindOverride struct {
	Default *float64  `yaml:"default"`
	Min     *float64  `yaml:"min"`
	Max     *float64  `yaml:"max"`
	Step    *float64  `yaml:"step"`
	Random  []float64 `yaml:"random"`
	Label   *string   `yaml:"label"`
}

type tuningFile struct {
	Kinds   map[string]kindOverride `yaml:"kinds"`
	Presets []PresetSpec            `yaml:"presets"`
}

// LoadTuning returns the default tuning with the YAML file at path layered on
// top. An empty path yields the defaults.
//
// Kind entries override individual fields; a non-empty presets list replaces
// the built-in presets.
func LoadTuning(path string) (*Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read tuning file")
	}

	var f tuningFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "failed to parse tuning file")
	}

	for name, o := range f.Kinds {
		k := types.AdjustmentKind(name)
		spec, ok := t.Kinds[k]
		if !ok {
			return nil, errors.Errorf("unknown adjustment kind in tuning: %s", name)
		}
		if o.Default != nil {
			spec.Default = *o.Default
		}
		if o.Min != nil {
			spec.Min = *o.Min
		}
		if o.Max != nil {
			spec.Max = *o.Max
		}
		if o.Step != nil {
			spec.Step = *o.Step
		}
		if o.Label != nil {
			spec.Label = *o.Label
		}
		if len(o.Random) > 0 {
			if len(o.Random) != 2 {
				return nil, errors.Errorf("kind %s: random must be [min, max]", name)
			}
			spec.RandomMin, spec.RandomMax = o.Random[0], o.Random[1]
		}
		t.Kinds[k] = spec
	}

	if len(f.Presets) > 0 {
		presets := make([]PresetSpec, 0, len(f.Presets))
		for _, p := range f.Presets {
			p.Name = strings.ToLower(p.Name)
			for i := range p.Aliases {
				p.Aliases[i] = strings.ToLower(p.Aliases[i])
			}
			presets = append(presets, p)
		}
		t.Presets = presets
	}

	if err := t.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid tuning")
	}
	return t, nil
}
