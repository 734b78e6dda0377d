package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/linesmerrill/justice-case-api/api"
	"github.com/linesmerrill/justice-case-api/config"
	"github.com/linesmerrill/justice-case-api/databases"
	"github.com/linesmerrill/justice-case-api/limitation"
	"github.com/linesmerrill/justice-case-api/models"
	"github.com/linesmerrill/justice-case-api/permissions"
)

// limitationsModule guards changes to the limitation rules
const limitationsModule = "justice_references"

// Limitation exported for testing purposes
type Limitation struct {
	DB     databases.LimitationDatabase
	Engine *permissions.Engine
}

// LimitationsHandler lists the limitation rules. Anyone who may view a kind
// of case may read them.
func (l Limitation) LimitationsHandler(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if !l.Engine.IsAllowed(p, models.ModuleCases, permissions.ActionView) &&
		!l.Engine.IsAllowed(p, models.ModuleCivilCases, permissions.ActionView) {
		config.Error("failed to list limitations", w, &models.PermissionDeniedError{Module: models.ModuleCases, Action: permissions.ActionView})
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	rules, err := l.DB.Find(ctx)
	if err != nil {
		config.Error("failed to list limitations", w, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

// CreateLimitationHandler stores a new limitation rule
func (l Limitation) CreateLimitationHandler(w http.ResponseWriter, r *http.Request) {
	if err := l.Engine.RequirePermission(principal(r), limitationsModule, permissions.ActionEdit); err != nil {
		config.Error("failed to create limitation", w, err)
		return
	}
	var rule models.Limitation
	if err := decodeBody(r, &rule); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := limitation.ValidateRule(rule); err != nil {
		config.Error("failed to create limitation", w, err)
		return
	}
	if strings.TrimSpace(rule.ID) == "" {
		rule.ID = uuid.New().String()
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := l.DB.InsertOne(ctx, rule); err != nil {
		config.Error("failed to create limitation", w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}
