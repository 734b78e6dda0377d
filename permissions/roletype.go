package permissions

import (
	"fmt"
	"strings"
)

// RoleType is a behavioural category many job titles collapse into
type RoleType string

// Role types
const (
	RoleTypeProsecutor RoleType = "prosecutor"
	RoleTypeLeadership RoleType = "leadership"
	RoleTypeJudge      RoleType = "judge"
	RoleTypeMarshal    RoleType = "marshal"
)

// RoleTypes lists every role type
var RoleTypes = []RoleType{RoleTypeProsecutor, RoleTypeLeadership, RoleTypeJudge, RoleTypeMarshal}

// Valid reports whether t is a known role type
func (t RoleType) Valid() bool {
	for _, v := range RoleTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ParseRoleTypes turns a list of names such as "judge" or "Leadership" into
// role types
func ParseRoleTypes(names []string) ([]RoleType, error) {
	out := make([]RoleType, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		t := RoleType(n)
		if !t.Valid() {
			return nil, fmt.Errorf("unknown role type %q", n)
		}
		out = append(out, t)
	}
	return out, nil
}
