package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fieldserve/inspector-api/api"
	"github.com/fieldserve/inspector-api/compliance"
	"github.com/fieldserve/inspector-api/config"
	"github.com/fieldserve/inspector-api/databases"
	"github.com/fieldserve/inspector-api/geo"
	"github.com/fieldserve/inspector-api/ledger"
	"github.com/fieldserve/inspector-api/lifecycle"
)

// Permission names consulted by the route gates.
const (
	PermSearchInspectors    = "search_inspectors"
	PermMobilizeInspector   = "mobilize_inspector"
	PermDemobilizeInspector = "demobilize_inspector"
	PermEditEquipment       = "edit_equipment"
	PermRecordDrugTest      = "record_drug_test"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router   *mux.Router
	Config   *config.Config
	dbHelper databases.DatabaseHelper
}

// NewApp builds the application around a database handle.
func NewApp(conf *config.Config, dbHelper databases.DatabaseHelper) *App {
	return &App{Config: conf, dbHelper: dbHelper}
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	inspectorDB := databases.NewInspectorDatabase(a.dbHelper)
	equipmentDB := databases.NewEquipmentDatabase(a.dbHelper)
	assignmentDB := databases.NewAssignmentDatabase(a.dbHelper)
	drugTestDB := databases.NewDrugTestDatabase(a.dbHelper)
	zipDB := databases.NewZipCodeDatabase(a.dbHelper)
	adminDB := databases.NewAdminDatabase(a.dbHelper)

	tracker := compliance.NewTracker(drugTestDB)
	searcher := geo.NewSearcher(inspectorDB, geo.NewZipCodeGeocoder(zipDB), tracker)
	book := ledger.NewLedger(equipmentDB, assignmentDB)
	machine := lifecycle.NewMachine(inspectorDB)
	notifier := lifecycle.NewSendgridNotifier(a.Config.SendgridAPIKey, "", a.Config.NotifyFromEmail)
	notifyPolicy := lifecycle.RetryPolicy{
		MaxAttempts: a.Config.NotifyMaxAttempts,
		BaseDelay:   500 * time.Millisecond,
	}
	orchestrator := lifecycle.NewOrchestrator(
		inspectorDB, machine, tracker, book, notifier, notifyPolicy, a.Config.MobilizationGrace())

	board := NewStatusBoard()
	orchestrator.SetEventSink(board)

	i := Inspector{DB: inspectorDB, Searcher: searcher, Machine: machine, Assignments: book}
	mob := Mobilization{Orchestrator: orchestrator}
	e := Equipment{DB: equipmentDB, Ledger: book}
	d := DrugTest{DB: drugTestDB, InspectorDB: inspectorDB, Tracker: tracker}
	admin := Admin{ADB: adminDB, Secret: a.Config.JWTSecret}
	photo := PhotoSignature{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)
	r.HandleFunc("/ws/status-board", board.Handle)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/token", api.Middleware(http.HandlerFunc(m.CreateToken))).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")
	apiCreate.Handle("/admin/login", http.HandlerFunc(admin.AdminLoginHandler)).Methods("POST")

	apiCreate.Handle("/inspectors/search", m.RequirePermission(PermSearchInspectors, http.HandlerFunc(i.SearchHandler))).Methods("GET")
	apiCreate.Handle("/inspector", api.Middleware(http.HandlerFunc(i.CreateHandler))).Methods("POST")
	apiCreate.Handle("/inspector/{inspector_id}", api.Middleware(http.HandlerFunc(i.ByIDHandler))).Methods("GET")
	apiCreate.Handle("/inspector/{inspector_id}/activate", api.Middleware(http.HandlerFunc(i.ActivateHandler))).Methods("POST")
	apiCreate.Handle("/inspector/{inspector_id}/deactivate", api.Middleware(http.HandlerFunc(i.DeactivateHandler))).Methods("POST")
	apiCreate.Handle("/inspector/{inspector_id}/mobilize", m.RequirePermission(PermMobilizeInspector, http.HandlerFunc(mob.MobilizeHandler))).Methods("POST")
	apiCreate.Handle("/inspector/{inspector_id}/demobilize", m.RequirePermission(PermDemobilizeInspector, http.HandlerFunc(mob.DemobilizeHandler))).Methods("POST")
	apiCreate.Handle("/inspector/{inspector_id}/drug-tests", api.Middleware(http.HandlerFunc(d.HistoryHandler))).Methods("GET")
	apiCreate.Handle("/inspector/{inspector_id}/drug-tests", m.RequirePermission(PermRecordDrugTest, http.HandlerFunc(d.RecordHandler))).Methods("POST")
	apiCreate.Handle("/inspector/{inspector_id}/compliance", api.Middleware(http.HandlerFunc(d.ComplianceHandler))).Methods("GET")

	apiCreate.Handle("/equipment", m.RequirePermission(PermEditEquipment, http.HandlerFunc(e.CreateHandler))).Methods("POST")
	apiCreate.Handle("/equipment/photo-signature", m.RequirePermission(PermEditEquipment, http.HandlerFunc(photo.GenerateSignature))).Methods("POST")
	apiCreate.Handle("/equipment/{equipment_id}", api.Middleware(http.HandlerFunc(e.ByIDHandler))).Methods("GET")
	apiCreate.Handle("/equipment/{equipment_id}/assign", m.RequirePermission(PermEditEquipment, http.HandlerFunc(e.AssignHandler))).Methods("POST")
	apiCreate.Handle("/equipment/{equipment_id}/return", m.RequirePermission(PermEditEquipment, http.HandlerFunc(e.ReturnHandler))).Methods("POST")
	apiCreate.Handle("/equipment/{equipment_id}/assignments", api.Middleware(http.HandlerFunc(e.AssignmentsHandler))).Methods("GET")

	a.Router = r
	return r
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, `{"alive": true}`)
}

// getPage returns the requested zero-based page, defaulting to 0 on absent or
// malformed input.
func getPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		return 0
	}
	return page
}
