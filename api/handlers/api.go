package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/aniresq/aniresq-api/api"
	"github.com/aniresq/aniresq-api/api/scheduler"
	"github.com/aniresq/aniresq-api/config"
	"github.com/aniresq/aniresq-api/databases"
	"github.com/aniresq/aniresq-api/models"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
	uploads   Uploader
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for middleware
	m := api.MiddlewareDB{DB: databases.NewUserDatabase(a.dbHelper)}
	m.SetupGoGuardian()

	r := mux.NewRouter()

	rdb := databases.NewReportDatabase(a.dbHelper)
	udb := databases.NewUserDatabase(a.dbHelper)
	ndb := databases.NewNotificationDatabase(a.dbHelper)
	vdb := databases.NewVolunteerRequestDatabase(a.dbHelper)

	hub := NewNotificationHub()
	auth := Auth{UDB: udb, Uploads: a.uploads, Mail: NewSendgridMailer()}
	report := Report{RDB: rdb, UDB: udb, NDB: ndb, Uploads: a.uploads, Hub: hub}
	admin := Admin{RDB: rdb, UDB: udb}
	volunteer := Volunteer{VDB: vdb, UDB: udb}
	notification := Notification{NDB: ndb, Hub: hub}
	cloudinaryHandler := CloudinaryHandler{}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	// the websocket route lives outside the timeout-bounded subrouter since
	// its connections are long-lived
	r.Handle("/api/v1/ws/notifications", m.Middleware(http.HandlerFunc(hub.HandleWebSocket))).Methods("GET")

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/auth/signup", http.HandlerFunc(auth.SignupHandler)).Methods("POST")
	apiCreate.Handle("/auth/login", http.HandlerFunc(auth.LoginHandler)).Methods("POST")
	apiCreate.Handle("/auth/forgot-password", http.HandlerFunc(auth.ForgotPasswordHandler)).Methods("POST")
	apiCreate.Handle("/auth/verify-otp", http.HandlerFunc(auth.VerifyOTPHandler)).Methods("POST")
	apiCreate.Handle("/auth/me", m.Middleware(http.HandlerFunc(auth.MeHandler))).Methods("GET")
	apiCreate.Handle("/auth/me", m.Middleware(http.HandlerFunc(auth.UpdateProfileHandler))).Methods("PUT")

	apiCreate.Handle("/ngos", m.Middleware(http.HandlerFunc(auth.NgosHandler))).Methods("GET")

	// static report routes must be registered before /reports/{report_id}
	apiCreate.Handle("/reports", m.Middleware(api.RequireRole(http.HandlerFunc(report.CreateReportHandler), models.RoleCitizen))).Methods("POST")
	apiCreate.Handle("/reports", m.Middleware(api.RequireRole(http.HandlerFunc(report.ReportsHandler), models.RoleNgo, models.RoleAdmin))).Methods("GET")
	apiCreate.Handle("/reports/mine", m.Middleware(api.RequireRole(http.HandlerFunc(report.MyReportsHandler), models.RoleCitizen))).Methods("GET")
	apiCreate.Handle("/reports/nearby", m.Middleware(api.RequireRole(http.HandlerFunc(report.NearbyReportsHandler), models.RoleNgo))).Methods("GET")
	apiCreate.Handle("/reports/accepted", m.Middleware(api.RequireRole(http.HandlerFunc(report.AcceptedReportsHandler), models.RoleNgo))).Methods("GET")
	apiCreate.Handle("/reports/{report_id}", m.Middleware(http.HandlerFunc(report.ReportByIDHandler))).Methods("GET")
	apiCreate.Handle("/reports/{report_id}/accept", m.Middleware(api.RequireRole(http.HandlerFunc(report.AcceptReportHandler), models.RoleNgo))).Methods("PUT")
	apiCreate.Handle("/reports/{report_id}/update", m.Middleware(api.RequireRole(http.HandlerFunc(report.UpdateReportHandler), models.RoleNgo))).Methods("PUT")

	apiCreate.Handle("/admin/reports/{report_id}/status", m.Middleware(api.RequireRole(http.HandlerFunc(admin.SetAdminStatusHandler), models.RoleAdmin))).Methods("PUT")
	apiCreate.Handle("/admin/reports/{report_id}", m.Middleware(api.RequireRole(http.HandlerFunc(admin.DeleteFakeReportHandler), models.RoleAdmin))).Methods("DELETE")
	apiCreate.Handle("/admin/users", m.Middleware(api.RequireRole(http.HandlerFunc(admin.UsersHandler), models.RoleAdmin))).Methods("GET")
	apiCreate.Handle("/admin/users/ngos", m.Middleware(api.RequireRole(http.HandlerFunc(admin.NgoUsersHandler), models.RoleAdmin))).Methods("GET")
	apiCreate.Handle("/admin/users/citizens", m.Middleware(api.RequireRole(http.HandlerFunc(admin.CitizenUsersHandler), models.RoleAdmin))).Methods("GET")
	apiCreate.Handle("/admin/users/blacklisted", m.Middleware(api.RequireRole(http.HandlerFunc(admin.BlacklistedHandler), models.RoleAdmin))).Methods("GET")
	apiCreate.Handle("/admin/users/{user_id}/blacklist", m.Middleware(api.RequireRole(http.HandlerFunc(admin.BlacklistUserHandler), models.RoleAdmin))).Methods("PUT")
	apiCreate.Handle("/admin/users/{user_id}/unblacklist", m.Middleware(api.RequireRole(http.HandlerFunc(admin.UnblacklistUserHandler), models.RoleAdmin))).Methods("PUT")
	apiCreate.Handle("/admin/users/{user_id}", m.Middleware(api.RequireRole(http.HandlerFunc(admin.DeleteUserHandler), models.RoleAdmin))).Methods("DELETE")
	apiCreate.Handle("/admin/dashboard", m.Middleware(api.RequireRole(http.HandlerFunc(admin.DashboardStatsHandler), models.RoleAdmin))).Methods("GET")

	apiCreate.Handle("/volunteer-requests", m.Middleware(api.RequireRole(http.HandlerFunc(volunteer.SendRequestHandler), models.RoleCitizen))).Methods("POST")
	apiCreate.Handle("/volunteer-requests", m.Middleware(api.RequireRole(http.HandlerFunc(volunteer.NgoRequestsHandler), models.RoleNgo))).Methods("GET")
	apiCreate.Handle("/volunteer-requests/{request_id}", m.Middleware(api.RequireRole(http.HandlerFunc(volunteer.UpdateRequestStatusHandler), models.RoleNgo))).Methods("PUT")

	apiCreate.Handle("/notifications", m.Middleware(http.HandlerFunc(notification.MyNotificationsHandler))).Methods("GET")
	apiCreate.Handle("/notifications/{notification_id}/read", m.Middleware(http.HandlerFunc(notification.MarkNotificationReadHandler))).Methods("PUT")

	apiCreate.Handle("/generate-signature", m.Middleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("aniresq-api has connected to the database")

	uploads, err := NewCloudinaryUploader()
	if err != nil {
		zap.S().With(err).Error("failed to initialize cloudinary")
		return err
	}
	a.uploads = uploads

	a.Scheduler = scheduler.NewScheduler(
		databases.NewUserDatabase(a.dbHelper),
		databases.NewNotificationDatabase(a.dbHelper),
	)
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
