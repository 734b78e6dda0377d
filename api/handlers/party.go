package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/justice-case-api/api"
	"github.com/linesmerrill/justice-case-api/config"
	"github.com/linesmerrill/justice-case-api/parties"
	"github.com/linesmerrill/justice-case-api/permissions"
)

// partiesModule guards the party registry
const partiesModule = "defendants"

// Party exported for testing purposes
type Party struct {
	Resolver *parties.Resolver
	Engine   *permissions.Engine
}

type resolveRequest struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
}

// PartiesHandler searches parties by name or identifier with the q query
// parameter
func (p Party) PartiesHandler(w http.ResponseWriter, r *http.Request) {
	if err := p.Engine.RequirePermission(principal(r), partiesModule, permissions.ActionView); err != nil {
		config.Error("failed to search parties", w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	found, err := p.Resolver.Search(ctx, r.URL.Query().Get("q"))
	if err != nil {
		config.Error("failed to search parties", w, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// PartyByIDHandler returns a party with its case history
func (p Party) PartyByIDHandler(w http.ResponseWriter, r *http.Request) {
	if err := p.Engine.RequirePermission(principal(r), partiesModule, permissions.ActionView); err != nil {
		config.Error("failed to get party", w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	party, err := p.Resolver.Get(ctx, mux.Vars(r)["party_id"])
	if err != nil {
		config.Error("failed to get party", w, err)
		return
	}
	writeJSON(w, http.StatusOK, party)
}

// ResolvePartyHandler finds the party matching a name or identifier and
// creates one when none matches
func (p Party) ResolvePartyHandler(w http.ResponseWriter, r *http.Request) {
	caller := principal(r)
	if err := p.Engine.RequirePermission(caller, partiesModule, permissions.ActionCreate); err != nil {
		config.Error("failed to resolve party", w, err)
		return
	}
	var req resolveRequest
	if err := decodeBody(r, &req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	id, err := p.Resolver.ResolveParty(ctx, req.Name, req.Identifier, caller.ActorID)
	if err != nil {
		config.Error("failed to resolve party", w, err)
		return
	}
	party, err := p.Resolver.Get(ctx, id)
	if err != nil {
		config.Error("failed to get party", w, err)
		return
	}
	writeJSON(w, http.StatusOK, party)
}
