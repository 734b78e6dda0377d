package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/linesmerrill/justice-case-api/api"
	"github.com/linesmerrill/justice-case-api/config"
	"github.com/linesmerrill/justice-case-api/databases"
	"github.com/linesmerrill/justice-case-api/lifecycle"
	"github.com/linesmerrill/justice-case-api/models"
)

// Case exported for testing purposes
type Case struct {
	Service *lifecycle.Service
}

type noteRequest struct {
	Content string `json:"content"`
}

// CreateCaseHandler opens a new criminal or civil case
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var in lifecycle.NewCase
	if err := decodeBody(r, &in); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	v, err := c.Service.CreateCase(ctx, principal(r), in)
	if err != nil {
		config.Error("failed to create case", w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// CaseHandler lists the cases the caller may view. The optional query
// parameters caseType, status and defendantId narrow the list.
func (c Case) CaseHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := databases.CaseFilter{
		CaseType:    models.CaseType(q.Get("caseType")),
		DefendantID: q.Get("defendantId"),
	}
	if raw := q.Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			config.Error("invalid status filter", w, err)
			return
		}
		filter.Status = status
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cases, err := c.Service.ListCases(ctx, principal(r), filter)
	if err != nil {
		config.Error("failed to list cases", w, err)
		return
	}
	writeJSON(w, http.StatusOK, cases)
}

// CaseByIDHandler returns a case with its indictments, appeals and the
// actions its state allows
func (c Case) CaseByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	f, err := c.Service.GetCaseFile(ctx, principal(r), mux.Vars(r)["case_id"])
	if err != nil {
		config.Error("failed to get case", w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// UpdateCaseHandler edits the descriptive fields of a case
func (c Case) UpdateCaseHandler(w http.ResponseWriter, r *http.Request) {
	var d lifecycle.CaseDetails
	if err := decodeBody(r, &d); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	v, err := c.Service.UpdateCaseDetails(ctx, principal(r), mux.Vars(r)["case_id"], d)
	if err != nil {
		config.Error("failed to update case", w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// DeleteCaseHandler removes a case and its satellite records
func (c Case) DeleteCaseHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if err := c.Service.DeleteCase(ctx, principal(r), mux.Vars(r)["case_id"]); err != nil {
		config.Error("failed to delete case", w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TransitionHandler applies the lifecycle action named in the path
func (c Case) TransitionHandler(w http.ResponseWriter, r *http.Request) {
	var req lifecycle.TransitionRequest
	if err := decodeBody(r, &req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	vars := mux.Vars(r)
	req.Action = lifecycle.Action(vars["action"])

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	v, err := c.Service.Transition(ctx, principal(r), vars["case_id"], req)
	if err != nil {
		config.Error("failed to apply "+string(req.Action), w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// AddNoteHandler prepends a note to a case
func (c Case) AddNoteHandler(w http.ResponseWriter, r *http.Request) {
	var n noteRequest
	if err := decodeBody(r, &n); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	v, err := c.Service.AddNote(ctx, principal(r), mux.Vars(r)["case_id"], n.Content)
	if err != nil {
		config.Error("failed to add note", w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}
