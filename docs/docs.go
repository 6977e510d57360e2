// Package docs FieldServe Inspector API.
//
// Documentation of the FieldServe inspector lifecycle and equipment API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//     Host: https://api.fieldserve.io
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/fieldserve/inspector-api/models"
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

// swagger:route GET /api/v1/inspectors/search inspectors searchInspectors
// Finds inspectors within a radius of a ZIP code centroid.
// responses:
//   200: inspectorSearchResponse

// A page of distance-sorted inspectors matching the search filters.
// swagger:response inspectorSearchResponse
type inspectorSearchResponseWrapper struct {
	// in:body
	Body models.InspectorSearchPage
}

// swagger:route POST /api/v1/inspector/{inspector_id}/mobilize inspectors mobilizeInspector
// Mobilizes an inspector onto a project.
// responses:
//   200: operationResultResponse

// The envelope every lifecycle operation returns. Warnings carry non-fatal
// degradations such as a failed notification.
// swagger:response operationResultResponse
type operationResultResponseWrapper struct {
	// in:body
	Body models.OperationResult
}

// swagger:route GET /api/v1/equipment/{equipment_id}/assignments equipment equipmentAssignments
// Lists the full assignment history for an equipment item.
// responses:
//   200: assignmentHistoryResponse

// Every assignment row ever recorded for the item, open row included.
// swagger:response assignmentHistoryResponse
type assignmentHistoryResponseWrapper struct {
	// in:body
	Body []models.EquipmentAssignment
}
