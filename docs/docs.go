// Package docs Justice Case API.
//
// Documentation of Justice Case API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - bearer
//
//    SecurityDefinitions:
//    bearer:
//      type: apiKey
//      name: Authorization
//      in: header
//
// swagger:meta
package docs

import (
	"github.com/linesmerrill/justice-case-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/v1/cases cases listCases
// Lists the case files visible to the caller.
// responses:
//   200: caseListResponse
//   403: errorResponse

// Case files with their expiry annotation, newest first.
// swagger:response caseListResponse
type caseListResponseWrapper struct {
	// in:body
	Body []models.CaseView
}

// swagger:route GET /api/v1/cases/{case_id} cases caseByID
// Gets a single case file by ID.
// responses:
//   200: caseByIDResponse
//   403: errorResponse
//   404: errorResponse

// Shows a single case file by the given {case_id}
// swagger:response caseByIDResponse
type caseByIDResponseWrapper struct {
	// in:body
	Body models.CaseView
}

// swagger:route POST /api/v1/cases/{case_id}/transitions/{action} cases transitionCase
// Applies a workflow action to a case.
// responses:
//   200: caseByIDResponse
//   400: errorResponse
//   403: errorResponse
//   404: errorResponse
//   409: errorResponse

// swagger:route GET /api/v1/parties/{party_id} parties partyByID
// Gets a single party by ID.
// responses:
//   200: partyByIDResponse
//   404: errorResponse

// Shows a single party with its case history
// swagger:response partyByIDResponse
type partyByIDResponseWrapper struct {
	// in:body
	Body models.Party
}

// swagger:route GET /api/v1/limitations limitations listLimitations
// Lists the limitation rules.
// responses:
//   200: limitationListResponse

// Limitation rules used to compute case expiration.
// swagger:response limitationListResponse
type limitationListResponseWrapper struct {
	// in:body
	Body []models.Limitation
}

// Error text returned for every failed request.
// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorMessageResponse
}
