package handlers

import (
	"net/http"

	"github.com/linesmerrill/justice-case-api/config"
	"github.com/linesmerrill/justice-case-api/models"
	"github.com/linesmerrill/justice-case-api/permissions"
)

// Permission exported for testing purposes
type Permission struct {
	Engine *permissions.Engine
}

type permissionCheckResponse struct {
	Module  string `json:"module"`
	Action  string `json:"action"`
	Allowed bool   `json:"allowed"`
}

type modulesResponse struct {
	Modules   []string               `json:"modules"`
	RoleTypes []permissions.RoleType `json:"roleTypes"`
}

// CheckPermissionHandler answers whether the caller may perform action on
// module
func (p Permission) CheckPermissionHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	module, action := q.Get("module"), q.Get("action")
	if module == "" || action == "" {
		config.Error("failed to check permission", w, &models.ValidationError{Field: "module", Reason: "module and action are required"})
		return
	}
	writeJSON(w, http.StatusOK, permissionCheckResponse{
		Module:  module,
		Action:  action,
		Allowed: p.Engine.IsAllowed(principal(r), module, action),
	})
}

// ModulesHandler lists the modules the caller may view and its role types
func (p Permission) ModulesHandler(w http.ResponseWriter, r *http.Request) {
	caller := principal(r)
	writeJSON(w, http.StatusOK, modulesResponse{
		Modules:   p.Engine.AccessibleModules(caller),
		RoleTypes: p.Engine.RoleTypesOf(caller),
	})
}
