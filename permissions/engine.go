package permissions

import (
	"sort"

	"go.uber.org/zap"

	"github.com/linesmerrill/justice-case-api/models"
)

// UnknownLabel replaces a module or action outside the vocabulary when a
// decision is reported to hooks
const UnknownLabel = "unknown"

// DecisionHook observes every permission decision. module and action are
// always vocabulary members or UnknownLabel.
type DecisionHook func(module, action string, allowed bool)

// Option is a functional option for the Engine
type Option func(*Engine)

// WithDecisionHook registers a hook called after each IsAllowed decision
func WithDecisionHook(h DecisionHook) Option { return func(e *Engine) { e.hooks = append(e.hooks, h) } }

// Engine answers whether a principal may perform an action on a module. It
// denies by default and grants the union of every role the principal holds.
// An Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	vocab      map[string]map[string]bool
	fullAccess map[string]bool
	roleTypes  map[string][]RoleType
	typeGrants map[RoleType]map[string]bool
	roleGrants map[string]map[string]bool
	hooks      []DecisionHook
}

// NewEngine compiles p into an Engine
func NewEngine(p *Policy, opts ...Option) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		vocab:      p.vocabulary(),
		fullAccess: map[string]bool{},
		roleTypes:  map[string][]RoleType{},
		typeGrants: map[RoleType]map[string]bool{},
		roleGrants: map[string]map[string]bool{},
	}
	for _, r := range p.FullAccess {
		e.fullAccess[NormalizeRole(r)] = true
	}
	for t, roles := range p.RoleTypes {
		for _, r := range roles {
			key := NormalizeRole(r)
			e.roleTypes[key] = append(e.roleTypes[key], t)
		}
	}
	for t, g := range p.TypeGrants {
		e.typeGrants[t] = compileGrants(g)
	}
	for r, g := range p.Roles {
		key := NormalizeRole(r)
		if e.roleGrants[key] == nil {
			e.roleGrants[key] = map[string]bool{}
		}
		for k := range compileGrants(g) {
			e.roleGrants[key][k] = true
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func compileGrants(g Grants) map[string]bool {
	out := map[string]bool{}
	for module, actions := range g {
		for _, a := range actions {
			out[grantKey(normalizeModule(module), policyAction(a))] = true
		}
	}
	return out
}

func grantKey(module, action string) string {
	return module + "." + action
}

// KnownAction reports whether action belongs to module's vocabulary
func (e *Engine) KnownAction(module, action string) bool {
	return e.vocab[normalizeModule(module)][NormalizeAction(action)]
}

// IsAllowed reports whether any role of p grants action on module. An empty
// role set, an unknown module and an unknown action are all denied.
func (e *Engine) IsAllowed(p models.Principal, module, action string) bool {
	module, action = normalizeModule(module), NormalizeAction(action)
	allowed := e.decide(p.AllRoles(), module, action)
	if len(e.hooks) == 0 {
		return allowed
	}
	if !e.vocab[module][action] {
		module, action = UnknownLabel, UnknownLabel
	}
	for _, h := range e.hooks {
		h(module, action, allowed)
	}
	return allowed
}

// Permits makes the same decision as IsAllowed without reporting it to the
// decision hooks. It is meant for internal filtering, such as fanning out
// notifications, that is not a request decision.
func (e *Engine) Permits(p models.Principal, module, action string) bool {
	return e.decide(p.AllRoles(), normalizeModule(module), NormalizeAction(action))
}

func (e *Engine) decide(roles []string, module, action string) bool {
	if len(roles) == 0 || !e.vocab[module][action] {
		return false
	}
	key := grantKey(module, action)
	for _, r := range roles {
		r = NormalizeRole(r)
		if e.fullAccess[r] || e.roleGrants[r][key] {
			return true
		}
		for _, t := range e.roleTypes[r] {
			if e.typeGrants[t][key] {
				return true
			}
		}
	}
	return false
}

// RequirePermission returns a *models.PermissionDeniedError naming module and
// action unless p is allowed
func (e *Engine) RequirePermission(p models.Principal, module, action string) error {
	if e.IsAllowed(p, module, action) {
		return nil
	}
	zap.S().Debugw("permission denied",
		"actor", p.ActorID,
		"roles", p.AllRoles(),
		"module", module,
		"action", action)
	return &models.PermissionDeniedError{Module: module, Action: NormalizeAction(action)}
}

// HasRoleType reports whether any role of p is classified under one of types.
// Full access roles satisfy every role type.
func (e *Engine) HasRoleType(p models.Principal, types ...RoleType) bool {
	for _, r := range p.AllRoles() {
		r = NormalizeRole(r)
		if e.fullAccess[r] {
			return true
		}
		for _, have := range e.roleTypes[r] {
			for _, want := range types {
				if have == want {
					return true
				}
			}
		}
	}
	return false
}

// RequireRoleType is the role type guard used by lifecycle transitions. The
// denial names the module and action that was attempted.
func (e *Engine) RequireRoleType(p models.Principal, module, action string, types ...RoleType) error {
	if e.HasRoleType(p, types...) {
		return nil
	}
	zap.S().Debugw("role type required",
		"actor", p.ActorID,
		"roles", p.AllRoles(),
		"types", types,
		"module", module,
		"action", action)
	return &models.PermissionDeniedError{Module: module, Action: action}
}

// RoleTypesOf returns the role types p holds, sorted
func (e *Engine) RoleTypesOf(p models.Principal) []RoleType {
	seen := map[RoleType]bool{}
	for _, r := range p.AllRoles() {
		r = NormalizeRole(r)
		if e.fullAccess[r] {
			return append([]RoleType(nil), RoleTypes...)
		}
		for _, t := range e.roleTypes[r] {
			seen[t] = true
		}
	}
	out := make([]RoleType, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AccessibleModules lists the modules p may view, sorted
func (e *Engine) AccessibleModules(p models.Principal) []string {
	roles := p.AllRoles()
	var out []string
	for module := range e.vocab {
		if e.decide(roles, module, ActionView) {
			out = append(out, module)
		}
	}
	sort.Strings(out)
	return out
}
