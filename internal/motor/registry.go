package motor

import (
	"fmt"
	"log/slog"
)

// Registry holds the skill set for one session. It is built once from
// configuration and passed into the orchestrator; there is no package
// level default.
type Registry struct {
	skills map[string]*Skill
}

// RegistryConfig maps skill names to their configuration.
type RegistryConfig struct {
	Skills map[string]SkillConfig
	Logger *slog.Logger
}

// NewRegistry builds a registry whose skills run through driver.
func NewRegistry(cfg RegistryConfig, driver Driver) (*Registry, error) {
	if len(cfg.Skills) == 0 {
		return nil, fmt.Errorf("motor: no skills configured")
	}
	r := &Registry{skills: make(map[string]*Skill, len(cfg.Skills))}
	for name, sc := range cfg.Skills {
		r.skills[name] = newSkill(name, sc, driver, cfg.Logger)
	}
	return r, nil
}

// NewSimulatedRegistry builds a registry backed by the simulated driver.
// Used for --dry-run and for hosts without the Solo CLI installed.
func NewSimulatedRegistry(cfg RegistryConfig, label string) (*Registry, error) {
	return NewRegistry(cfg, NewSimDriver(label, cfg.Logger))
}

// Get returns the named skill.
func (r *Registry) Get(name string) (*Skill, error) {
	s, ok := r.skills[name]
	if !ok {
		return nil, fmt.Errorf("motor: unknown skill %q", name)
	}
	return s, nil
}

// Names returns the configured skill names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.skills))
	for name := range r.skills {
		names = append(names, name)
	}
	return names
}
