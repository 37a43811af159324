package state

import (
	"sort"
)

// State is the charm data that survives between hook invocations. It is
// loaded before a handler runs and saved only when the handler succeeds.
type State struct {
	// ExtraConfig lists every extraconfig value ever pushed. Append-only.
	ExtraConfig []string `yaml:"extraconfig,omitempty"`

	// ExtraConfigApplied is the value extra.cfg currently holds, empty when
	// the file was removed
	ExtraConfigApplied string `yaml:"extraconfig_applied,omitempty"`

	// Targets maps a remote unit name to the target ID it announced
	Targets map[string]string `yaml:"targets,omitempty"`
}

func New() *State {
	return &State{
		ExtraConfig: []string{},
		Targets:     make(map[string]string),
	}
}

// HasExtraConfig reports whether value was pushed before
func (s *State) HasExtraConfig(value string) bool {
	for _, v := range s.ExtraConfig {
		if v == value {
			return true
		}
	}
	return false
}

// AddExtraConfig records value; it returns false if it was already known.
func (s *State) AddExtraConfig(value string) bool {
	if s.HasExtraConfig(value) {
		return false
	}
	s.ExtraConfig = append(s.ExtraConfig, value)
	return true
}

// ExtraConfigPending reports whether value differs from what extra.cfg holds
func (s *State) ExtraConfigPending(value string) bool {
	return s.ExtraConfigApplied != value
}

// MarkExtraConfigApplied records value as written to extra.cfg and adds it
// to the history
func (s *State) MarkExtraConfigApplied(value string) {
	s.ExtraConfigApplied = value
	if value != "" {
		s.AddExtraConfig(value)
	}
}

// SetTarget records the target announced by unit and returns the target the
// unit announced before, if any.
func (s *State) SetTarget(unit, targetID string) (previous string) {
	if s.Targets == nil {
		s.Targets = make(map[string]string)
	}
	previous = s.Targets[unit]
	s.Targets[unit] = targetID
	return previous
}

// Target returns the target ID last announced by unit
func (s *State) Target(unit string) (string, bool) {
	id, ok := s.Targets[unit]
	return id, ok
}

// ForgetUnit drops the unit's mapping
func (s *State) ForgetUnit(unit string) {
	delete(s.Targets, unit)
}

// UnitsFor returns, sorted, the units currently announcing targetID
func (s *State) UnitsFor(targetID string) []string {
	var units []string
	for unit, id := range s.Targets {
		if id == targetID {
			units = append(units, unit)
		}
	}
	sort.Strings(units)
	return units
}

// TargetIDs returns the distinct known target IDs, sorted
func (s *State) TargetIDs() []string {
	seen := make(map[string]bool, len(s.Targets))
	ids := make([]string, 0, len(s.Targets))
	for _, id := range s.Targets {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy, so a failed handler leaves the original intact
func (s *State) Clone() *State {
	c := &State{
		ExtraConfig:        append([]string{}, s.ExtraConfig...),
		ExtraConfigApplied: s.ExtraConfigApplied,
		Targets:            make(map[string]string, len(s.Targets)),
	}
	for k, v := range s.Targets {
		c.Targets[k] = v
	}
	return c
}
