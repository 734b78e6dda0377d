package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linesmerrill/justice-case-api/lifecycle"
	"github.com/linesmerrill/justice-case-api/models"
)

func createCase(t *testing.T, app *App) models.CaseView {
	t.Helper()
	rr := call(t, app, prosecutor, "POST", "/api/v1/cases", map[string]interface{}{
		"caseType":      "Criminal",
		"defendantName": "Jane Doe",
		"charge":        "Grand theft",
		"incidentDate":  "2024-01-01",
	})
	checkResponseCode(t, http.StatusCreated, rr.Code)
	var v models.CaseView
	decode(t, rr, &v)
	return v
}

func TestCase_CreateCaseHandler(t *testing.T) {
	app := newTestApp(t)
	v := createCase(t, app)

	assert.NotEmpty(t, v.ID)
	assert.Equal(t, models.StatusOpen, v.Status)
	assert.Equal(t, "Jane Doe", v.DefendantName)
	assert.NotEmpty(t, v.DefendantID)
	require.NotNil(t, v.IncidentDate)
	assert.Equal(t, "2024-01-01", v.IncidentDate.String())
}

func TestCase_CreateCaseHandlerErrors(t *testing.T) {
	app := newTestApp(t)

	rr := call(t, app, prosecutor, "POST", "/api/v1/cases", map[string]interface{}{"caseType": "Criminal"})
	checkResponseCode(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to create case")

	rr = call(t, app, marshal, "POST", "/api/v1/cases", map[string]interface{}{"defendantName": "Jane", "charge": "Theft"})
	checkResponseCode(t, http.StatusForbidden, rr.Code)

	rr = call(t, app, prosecutor, "POST", "/api/v1/cases", "not an object")
	checkResponseCode(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to decode request body")
}

func TestCase_CaseByIDHandler(t *testing.T) {
	app := newTestApp(t)
	v := createCase(t, app)

	rr := call(t, app, judge, "GET", "/api/v1/cases/"+v.ID, nil)
	checkResponseCode(t, http.StatusOK, rr.Code)
	var f lifecycle.CaseFile
	decode(t, rr, &f)
	assert.Equal(t, v.ID, f.ID)
	assert.Contains(t, f.AvailableActions, lifecycle.ActionSubmitIndictment)

	rr = call(t, app, judge, "GET", "/api/v1/cases/missing", nil)
	checkResponseCode(t, http.StatusNotFound, rr.Code)

	rr = call(t, app, visitor, "GET", "/api/v1/cases/"+v.ID, nil)
	checkResponseCode(t, http.StatusForbidden, rr.Code)
}

func TestCase_CaseHandler(t *testing.T) {
	app := newTestApp(t)
	v := createCase(t, app)

	rr := call(t, app, marshal, "GET", "/api/v1/cases?status=open", nil)
	checkResponseCode(t, http.StatusOK, rr.Code)
	var list []models.CaseView
	decode(t, rr, &list)
	require.Len(t, list, 1)
	assert.Equal(t, v.ID, list[0].ID)

	rr = call(t, app, marshal, "GET", "/api/v1/cases?status=completed", nil)
	checkResponseCode(t, http.StatusOK, rr.Code)
	decode(t, rr, &list)
	assert.Empty(t, list)

	rr = call(t, app, marshal, "GET", "/api/v1/cases?status=sleeping", nil)
	checkResponseCode(t, http.StatusBadRequest, rr.Code)

	rr = call(t, app, marshal, "GET", "/api/v1/cases?caseType=Civil", nil)
	checkResponseCode(t, http.StatusForbidden, rr.Code)
}

func TestCase_UpdateCaseHandler(t *testing.T) {
	app := newTestApp(t)
	v := createCase(t, app)

	rr := call(t, app, judge, "PATCH", "/api/v1/cases/"+v.ID, map[string]interface{}{"district": "North"})
	checkResponseCode(t, http.StatusOK, rr.Code)
	var got models.CaseView
	decode(t, rr, &got)
	assert.Equal(t, "North", got.District)
	assert.Equal(t, "update_details", got.RevisionHistory[0].Action)

	rr = call(t, app, marshal, "PATCH", "/api/v1/cases/"+v.ID, map[string]interface{}{"district": "South"})
	checkResponseCode(t, http.StatusForbidden, rr.Code)
}

func TestCase_TransitionHandler(t *testing.T) {
	app := newTestApp(t)
	v := createCase(t, app)

	rr := call(t, app, prosecutor, "POST", "/api/v1/cases/"+v.ID+"/transitions/submit_indictment", map[string]interface{}{
		"content": "The people charge Jane Doe",
	})
	checkResponseCode(t, http.StatusOK, rr.Code)
	var got models.CaseView
	decode(t, rr, &got)
	assert.Equal(t, models.StatusPending, got.Status)

	// wrong state
	rr = call(t, app, judge, "POST", "/api/v1/cases/"+v.ID+"/transitions/record_verdict", map[string]interface{}{
		"verdict":     "Guilty",
		"verdictDate": "2024-05-30",
	})
	checkResponseCode(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to apply record_verdict")

	// missing fields
	rr = call(t, app, judge, "POST", "/api/v1/cases/"+v.ID+"/transitions/reject_indictment", nil)
	checkResponseCode(t, http.StatusBadRequest, rr.Code)

	rr = call(t, app, judge, "POST", "/api/v1/cases/"+v.ID+"/transitions/archive", nil)
	checkResponseCode(t, http.StatusBadRequest, rr.Code)

	rr = call(t, app, marshal, "POST", "/api/v1/cases/"+v.ID+"/transitions/accept_indictment", nil)
	checkResponseCode(t, http.StatusForbidden, rr.Code)

	rr = call(t, app, judge, "POST", "/api/v1/cases/"+v.ID+"/transitions/accept_indictment", nil)
	checkResponseCode(t, http.StatusOK, rr.Code)
	decode(t, rr, &got)
	assert.Equal(t, models.StatusAccepted, got.Status)
	assert.Len(t, got.RevisionHistory, 3)
}

func TestCase_AddNoteHandler(t *testing.T) {
	app := newTestApp(t)
	v := createCase(t, app)

	rr := call(t, app, judge, "POST", "/api/v1/cases/"+v.ID+"/notes", map[string]interface{}{"content": "hearing moved"})
	checkResponseCode(t, http.StatusCreated, rr.Code)
	var got models.CaseView
	decode(t, rr, &got)
	require.Len(t, got.Notes, 1)
	assert.Equal(t, "hearing moved", got.Notes[0].Content)

	rr = call(t, app, judge, "POST", "/api/v1/cases/"+v.ID+"/notes", map[string]interface{}{"content": ""})
	checkResponseCode(t, http.StatusBadRequest, rr.Code)
}

func TestCase_DeleteCaseHandler(t *testing.T) {
	app := newTestApp(t)
	v := createCase(t, app)

	rr := call(t, app, prosecutor, "DELETE", "/api/v1/cases/"+v.ID, nil)
	checkResponseCode(t, http.StatusForbidden, rr.Code)

	rr = call(t, app, admin, "DELETE", "/api/v1/cases/"+v.ID, nil)
	checkResponseCode(t, http.StatusNoContent, rr.Code)

	rr = call(t, app, admin, "GET", "/api/v1/cases/"+v.ID, nil)
	checkResponseCode(t, http.StatusNotFound, rr.Code)
}

func TestCase_ErrorBodiesAreJSON(t *testing.T) {
	app := newTestApp(t)
	v := createCase(t, app)

	rr := call(t, app, judge, "GET", "/api/v1/cases/abc", nil)
	checkResponseCode(t, http.StatusNotFound, rr.Code)
	var body models.ErrorMessageResponse
	decode(t, rr, &body)
	assert.Equal(t, `failed to get case, case "abc" not found`, body.Response)

	rr = call(t, app, judge, "POST", "/api/v1/cases/"+v.ID+"/transitions/archive", nil)
	checkResponseCode(t, http.StatusBadRequest, rr.Code)
	decode(t, rr, &body)
	assert.Contains(t, body.Response, `unknown action "archive"`)
}
