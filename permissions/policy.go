package permissions

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Grants maps a module to the actions granted on it
type Grants map[string][]string

// Policy is the role configuration resource. Role names are folded with
// NormalizeRole when the policy is compiled, so "Senior Prosecutor" and
// "senior_prosecutor" name the same role.
type Policy struct {
	// FullAccess roles are granted every action on every module
	FullAccess []string `yaml:"fullAccess"`
	// Modules maps each module to the actions it adds beyond BaseActions
	Modules map[string][]string `yaml:"modules"`
	// RoleTypes classifies role names into role types
	RoleTypes map[RoleType][]string `yaml:"roleTypes"`
	// TypeGrants are inherited by every role of the type
	TypeGrants map[RoleType]Grants `yaml:"typeGrants"`
	// Roles holds explicit per role grants
	Roles map[string]Grants `yaml:"roles"`
}

// LoadPolicy reads a role configuration file. JSON files are accepted as well
// since every JSON document is valid YAML.
func LoadPolicy(path string) (*Policy, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read role configuration: %w", err)
	}
	return ParsePolicy(b)
}

// ParsePolicy decodes and validates a role configuration document
func ParsePolicy(b []byte) (*Policy, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	p := &Policy{}
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("failed to decode role configuration: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate rejects grants naming unknown modules, actions or role types
func (p *Policy) Validate() error {
	if len(p.Modules) == 0 {
		return fmt.Errorf("role configuration declares no modules")
	}
	vocab := p.vocabulary()
	check := func(owner string, g Grants) error {
		for module, actions := range g {
			m := normalizeModule(module)
			known, ok := vocab[m]
			if !ok {
				return fmt.Errorf("%s grants unknown module %q", owner, module)
			}
			for _, a := range actions {
				if !known[policyAction(a)] {
					return fmt.Errorf("%s grants unknown action %q on %s", owner, a, module)
				}
			}
		}
		return nil
	}
	for t := range p.RoleTypes {
		if !t.Valid() {
			return fmt.Errorf("unknown role type %q", t)
		}
	}
	for t, g := range p.TypeGrants {
		if !t.Valid() {
			return fmt.Errorf("unknown role type %q", t)
		}
		if err := check("role type "+string(t), g); err != nil {
			return err
		}
	}
	for role, g := range p.Roles {
		if err := check("role "+role, g); err != nil {
			return err
		}
	}
	return nil
}

func (p *Policy) vocabulary() map[string]map[string]bool {
	vocab := make(map[string]map[string]bool, len(p.Modules))
	for module, extra := range p.Modules {
		actions := map[string]bool{}
		for _, a := range BaseActions {
			actions[a] = true
		}
		for _, a := range extra {
			actions[NormalizeAction(a)] = true
		}
		vocab[normalizeModule(module)] = actions
	}
	return vocab
}

// policyAction resolves aliases and the numeric codes of older role files
func policyAction(a string) string {
	if code, ok := storedActionCodes[a]; ok {
		return code
	}
	return NormalizeAction(a)
}

var crud = []string{ActionView, ActionCreate, ActionEdit}

// DefaultPolicy returns the stock role taxonomy. Only full access roles may
// delete.
func DefaultPolicy() *Policy {
	modules := map[string][]string{}
	for _, m := range []string{
		"admin", "roles", "civil_cases", "indictments", "appeals", "defendants",
		"hearings", "templates", "warrants", "staff", "trainings", "equipment", "notes",
		"public_notes", "calendar", "files", "duty_log", "vacation", "address_book",
		"seized_assets", "business_licenses", "licenses", "license_categories", "todos",
		"task_assignments", "evidence", "revisions", "justice_references",
	} {
		modules[m] = nil
	}
	modules["users"] = []string{ActionForceLogout}
	modules["cases"] = []string{ActionPresideTrials}
	modules["civil_cases"] = []string{ActionPresideTrials}

	return &Policy{
		FullAccess: []string{"admin", "administrator"},
		Modules:    modules,
		RoleTypes: map[RoleType][]string{
			RoleTypeJudge: {
				"richter", "judge", "magistrate", "junior_magistrate", "magistratsrichter",
				"chief_justice", "district_court_judge", "oberster_richter", "senior_associate_justice",
			},
			RoleTypeProsecutor: {
				"staatsanwalt", "prosecutor", "junior_prosecutor", "senior_prosecutor",
				"district_attorney", "bezirksstaatsanwalt", "attorney_general", "generalstaatsanwalt",
			},
			RoleTypeLeadership: {
				"chief_justice", "oberster_richter", "senior_associate_justice",
				"stellvertretender_oberster_richter", "attorney_general", "generalstaatsanwalt",
				"district_attorney",
			},
			RoleTypeMarshal: {
				"marshal", "us_marshal", "deputy_marshal", "marshal_director", "director",
				"commander", "senior_deputy",
			},
		},
		TypeGrants: map[RoleType]Grants{
			RoleTypeProsecutor: {
				"cases":       crud,
				"civil_cases": crud,
				"indictments": {ActionView, ActionCreate},
				"appeals":     {ActionView, ActionCreate},
				"defendants":  crud,
				"evidence":    crud,
				"notes":       crud,
				"calendar":    {ActionView},
			},
			RoleTypeJudge: {
				"cases":              {ActionView, ActionEdit, ActionPresideTrials},
				"civil_cases":        {ActionView, ActionEdit, ActionPresideTrials},
				"indictments":        {ActionView, ActionEdit},
				"appeals":            {ActionView, ActionEdit},
				"defendants":         {ActionView},
				"hearings":           crud,
				"calendar":           crud,
				"notes":              crud,
				"justice_references": {ActionView},
			},
			RoleTypeLeadership: {
				"cases":       {ActionView, ActionCreate, ActionEdit, ActionPresideTrials},
				"civil_cases": {ActionView, ActionCreate, ActionEdit, ActionPresideTrials},
				"indictments": crud,
				"appeals":     crud,
				"defendants":  crud,
				"staff":       {ActionView, ActionEdit},
				"users":       {ActionView, ActionForceLogout},
				"calendar":    crud,
				"notes":       crud,
			},
			RoleTypeMarshal: {
				"cases":         {ActionView},
				"warrants":      crud,
				"defendants":    {ActionView},
				"seized_assets": crud,
				"calendar":      {ActionView},
			},
		},
		Roles: map[string]Grants{
			"clerk": {
				"cases":       {ActionView},
				"civil_cases": {ActionView, ActionCreate},
				"calendar":    {ActionView, ActionEdit},
				"templates":   {ActionView},
			},
		},
	}
}
