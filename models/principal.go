package models

import "strings"

// Principal is the caller on whose behalf an operation runs. It carries one
// primary role and any number of secondary roles.
type Principal struct {
	ActorID     string   `json:"actorId"`
	Name        string   `json:"name"`
	PrimaryRole string   `json:"role"`
	Roles       []string `json:"roles"`
}

// AllRoles returns the primary role followed by the secondary roles with
// blanks and duplicates removed
func (p Principal) AllRoles() []string {
	seen := make(map[string]bool, len(p.Roles)+1)
	out := make([]string, 0, len(p.Roles)+1)
	for _, r := range append([]string{p.PrimaryRole}, p.Roles...) {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

// DisplayName falls back to the actor id when no name is known
func (p Principal) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ActorID
}
