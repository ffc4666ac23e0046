package formatter

import "fmt"

// Preset is a named template.
type Preset struct {
	Name        string
	Template    string
	Description string
}

// PresetRegistry manages template presets.
type PresetRegistry interface {
	Get(name string) (*Preset, error)
	List() []Preset
	Register(preset Preset) error
}

type presetRegistry struct {
	presets map[string]Preset
	order   []string
}

// NewPresetRegistry creates a registry holding the default presets.
func NewPresetRegistry() PresetRegistry {
	registry := &presetRegistry{presets: make(map[string]Preset)}
	for _, p := range []Preset{
		{
			Name:        "compact",
			Template:    "[${unread-count}] ${latest-title}",
			Description: "Unread count and the newest title",
		},
		{
			Name:        "detailed",
			Template:    "${unread-count} unread, ${read-count} read | Latest: ${latest-title}",
			Description: "Counts and the newest title",
		},
		{
			Name:        "count-only",
			Template:    "${unread-count}",
			Description: "Only the unread count",
		},
		{
			Name:        "categories",
			Template:    "${unread-count} unread (${unread-categories})",
			Description: "Unread count with the categories that have unread items",
		},
		{
			Name:        "json",
			Template:    `{"tenant":"${tenant}","unread":${unread-count},"total":${total-count},"failed":${failed-count}}`,
			Description: "JSON for status bars and scripts",
		},
	} {
		_ = registry.Register(p)
	}
	return registry
}

// Get returns a preset by name, or an error if not found.
func (pr *presetRegistry) Get(name string) (*Preset, error) {
	preset, ok := pr.presets[name]
	if !ok {
		return nil, fmt.Errorf("preset not found: %s", name)
	}
	return &preset, nil
}

// List returns all presets in registration order.
func (pr *presetRegistry) List() []Preset {
	result := make([]Preset, 0, len(pr.order))
	for _, name := range pr.order {
		result = append(result, pr.presets[name])
	}
	return result
}

// Register adds a new preset or overwrites an existing one.
func (pr *presetRegistry) Register(preset Preset) error {
	if preset.Name == "" {
		return fmt.Errorf("preset name cannot be empty")
	}
	if preset.Template == "" {
		return fmt.Errorf("preset template cannot be empty")
	}
	if _, exists := pr.presets[preset.Name]; !exists {
		pr.order = append(pr.order, preset.Name)
	}
	pr.presets[preset.Name] = preset
	return nil
}

// Resolve returns the template for a preset name, or the value itself when
// it is not a preset name.
func Resolve(registry PresetRegistry, value string) string {
	if p, err := registry.Get(value); err == nil {
		return p.Template
	}
	return value
}
