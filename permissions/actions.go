package permissions

import "strings"

// Actions understood by every module
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// Module specific actions
const (
	ActionForceLogout   = "force_logout"
	ActionPresideTrials = "preside_trials"
)

// BaseActions is the vocabulary shared by all modules
var BaseActions = []string{ActionView, ActionCreate, ActionEdit, ActionDelete}

var actionAliases = map[string]string{
	"read":    ActionView,
	"list":    ActionView,
	"index":   ActionView,
	"show":    ActionView,
	"add":     ActionCreate,
	"new":     ActionCreate,
	"update":  ActionEdit,
	"remove":  ActionDelete,
	"destroy": ActionDelete,
}

// storedActionCodes are the numeric action codes older role files use
var storedActionCodes = map[string]string{
	"0": ActionView,
	"1": ActionEdit,
	"2": ActionDelete,
}

// NormalizeAction lower cases an action and resolves aliases. Unknown actions
// are returned unchanged so the vocabulary check can reject them.
func NormalizeAction(action string) string {
	a := strings.ToLower(strings.TrimSpace(action))
	if canonical, ok := actionAliases[a]; ok {
		return canonical
	}
	return a
}

// NormalizeRole folds a role name to its lookup key: trimmed, lower case and
// with spaces replaced by underscores
func NormalizeRole(role string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(role)), " ", "_")
}

func normalizeModule(module string) string {
	return strings.ToLower(strings.TrimSpace(module))
}
