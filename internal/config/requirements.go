package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Requirements represents the optional requirements file. It overrides the
// per-state hour requirements seeded by the migrations, for jurisdictions
// whose rules change between releases.
type Requirements struct {
	States []StateRequirement `yaml:"states"`
}

// StateRequirement overrides the required hours for one state.
type StateRequirement struct {
	Code          string `yaml:"code"`           // Two-letter code, e.g. "MA"
	RequiredHours int    `yaml:"required_hours"` // Hours per reporting period
}

// LoadRequirements loads the requirements file at path.
// Returns nil without error if the file doesn't exist.
func LoadRequirements(path string) (*Requirements, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Requirements file is optional
			return nil, nil
		}
		return nil, err
	}

	var reqs Requirements
	if err := yaml.Unmarshal(data, &reqs); err != nil {
		return nil, err
	}

	for i := range reqs.States {
		s := &reqs.States[i]
		s.Code = strings.ToUpper(strings.TrimSpace(s.Code))
		if len(s.Code) != 2 {
			return nil, fmt.Errorf("states[%d]: invalid state code %q", i, s.Code)
		}
		if s.RequiredHours < 0 {
			return nil, fmt.Errorf("states[%d]: required_hours must not be negative", i)
		}
	}

	return &reqs, nil
}

// GetState finds a state override by its code.
func (r *Requirements) GetState(code string) *StateRequirement {
	if r == nil {
		return nil
	}
	code = strings.ToUpper(code)
	for i := range r.States {
		if r.States[i].Code == code {
			return &r.States[i]
		}
	}
	return nil
}

// Hours returns the overrides keyed by state code. Nil-safe.
func (r *Requirements) Hours() map[string]int {
	if r == nil {
		return nil
	}
	hours := make(map[string]int, len(r.States))
	for _, s := range r.States {
		hours[s.Code] = s.RequiredHours
	}
	return hours
}
