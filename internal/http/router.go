// Package http assembles the route table and the middleware chain.
package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"vgate-backend/internal/auth"
	"vgate-backend/internal/handlers"
	"vgate-backend/internal/middleware"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Student      *handlers.StudentHandler
	Tutor        *handlers.TutorHandler
	GatePass     *handlers.GatePassHandler
	Security     *handlers.SecurityHandler
	Notification *handlers.NotificationHandler
	Staff        *handlers.StaffHandler
	Verification *handlers.VerificationHandler
	Ops          *handlers.OpsHandler
}

func NewRouter(h Handlers, authMW *middleware.AuthMiddleware, logger *zap.Logger) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.GzipCompression)
	r.Use(middleware.APIRateLimiter.Middleware)

	student := authMW.RequireRole(auth.RoleStudent)
	tutor := authMW.RequireRole(auth.RoleTutor)
	security := authMW.RequireRole(auth.RoleSecurity)
	admin := authMW.RequireRole()
	anyUser := authMW.RequireRole(auth.RoleStudent, auth.RoleTutor, auth.RoleSecurity)

	// Ops
	r.HandleFunc("/health", h.Ops.HealthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.Handle("/api/admin/system/stats", admin(http.HandlerFunc(h.Ops.SystemStats))).Methods(http.MethodGet)

	// Auth and registration. Login and registration share the stricter
	// per-IP limiter.
	loginLimited := middleware.LoginRateLimiter.Middleware
	r.Handle("/api/students/register", loginLimited(http.HandlerFunc(h.Student.Register))).Methods(http.MethodPost)
	r.Handle("/api/students/login", loginLimited(http.HandlerFunc(h.Student.Login))).Methods(http.MethodPost)
	r.HandleFunc("/api/students/check-approval", h.Student.CheckApproval).Methods(http.MethodGet)
	r.Handle("/api/tutors/register", loginLimited(http.HandlerFunc(h.Tutor.Register))).Methods(http.MethodPost)
	r.Handle("/api/tutors/login", loginLimited(http.HandlerFunc(h.Tutor.Login))).Methods(http.MethodPost)
	r.Handle("/api/staff/login", loginLimited(http.HandlerFunc(h.Staff.Login))).Methods(http.MethodPost)

	// Public tutor dropdown for the registration form
	r.HandleFunc("/api/tutors", h.Tutor.ListVerified).Methods(http.MethodGet)

	// Students
	r.Handle("/api/students/me", student(http.HandlerFunc(h.Student.Me))).Methods(http.MethodGet)
	r.Handle("/api/students", admin(http.HandlerFunc(h.Student.List))).Methods(http.MethodGet)
	r.Handle("/api/students/{id:[0-9]+}", anyUser(http.HandlerFunc(h.Student.Get))).Methods(http.MethodGet)
	r.Handle("/api/students/{id:[0-9]+}", student(http.HandlerFunc(h.Student.Update))).Methods(http.MethodPut)
	r.Handle("/api/students/{id:[0-9]+}", admin(http.HandlerFunc(h.Student.Delete))).Methods(http.MethodDelete)
	r.Handle("/api/students/{id:[0-9]+}/image", anyUser(http.HandlerFunc(h.Student.GetImage))).Methods(http.MethodGet)
	r.Handle("/api/students/{id:[0-9]+}/approve", tutor(http.HandlerFunc(h.Student.ApproveRegistration))).Methods(http.MethodPost)

	// Tutors
	r.Handle("/api/tutors/me", tutor(http.HandlerFunc(h.Tutor.Me))).Methods(http.MethodGet)
	r.Handle("/api/tutors/me/students", tutor(http.HandlerFunc(h.Student.ListMine))).Methods(http.MethodGet)
	r.Handle("/api/tutors/me/students/pending", tutor(http.HandlerFunc(h.Student.ListPendingRegistrations))).Methods(http.MethodGet)
	r.Handle("/api/tutors/{id:[0-9]+}", tutor(http.HandlerFunc(h.Tutor.Update))).Methods(http.MethodPut)
	r.Handle("/api/tutors/{id:[0-9]+}", admin(http.HandlerFunc(h.Tutor.Delete))).Methods(http.MethodDelete)
	r.Handle("/api/tutors/{id:[0-9]+}/image", anyUser(http.HandlerFunc(h.Tutor.GetImage))).Methods(http.MethodGet)
	r.Handle("/api/tutors/{id:[0-9]+}/verify", admin(http.HandlerFunc(h.Tutor.Verify))).Methods(http.MethodPost)
	r.Handle("/api/admin/tutors", admin(http.HandlerFunc(h.Tutor.List))).Methods(http.MethodGet)

	// Gate passes
	r.Handle("/api/gate-passes", student(http.HandlerFunc(h.GatePass.Create))).Methods(http.MethodPost)
	r.Handle("/api/gate-passes/mine", student(http.HandlerFunc(h.GatePass.ListMine))).Methods(http.MethodGet)
	r.Handle("/api/gate-passes/pending", tutor(http.HandlerFunc(h.GatePass.ListPendingForTutor))).Methods(http.MethodGet)
	r.Handle("/api/gate-passes/tutor", tutor(http.HandlerFunc(h.GatePass.ListForTutor))).Methods(http.MethodGet)
	r.Handle("/api/gate-passes/{id:[0-9]+}", anyUser(http.HandlerFunc(h.GatePass.Get))).Methods(http.MethodGet)
	r.Handle("/api/gate-passes/{id:[0-9]+}", admin(http.HandlerFunc(h.GatePass.Delete))).Methods(http.MethodDelete)
	r.Handle("/api/gate-passes/{id:[0-9]+}/approve", tutor(http.HandlerFunc(h.GatePass.Approve))).Methods(http.MethodPost)
	r.Handle("/api/gate-passes/{id:[0-9]+}/reject", tutor(http.HandlerFunc(h.GatePass.Reject))).Methods(http.MethodPost)
	r.Handle("/api/gate-passes/{id:[0-9]+}/cancel", student(http.HandlerFunc(h.GatePass.Cancel))).Methods(http.MethodPost)
	r.Handle("/api/gate-passes/{id:[0-9]+}/qr", anyUser(http.HandlerFunc(h.Verification.QRCode))).Methods(http.MethodGet)
	r.Handle("/api/admin/gate-passes", admin(http.HandlerFunc(h.GatePass.ListAll))).Methods(http.MethodGet)
	r.Handle("/api/admin/gate-passes/{id:[0-9]+}/status", admin(http.HandlerFunc(h.GatePass.SetStatus))).Methods(http.MethodPut)

	// Return tracking (security desk)
	r.Handle("/api/returns/outstanding", security(http.HandlerFunc(h.Security.ListOutstanding))).Methods(http.MethodGet)
	r.Handle("/api/returns/lookup", security(http.HandlerFunc(h.Security.LookupMember))).Methods(http.MethodGet)
	r.Handle("/api/students/verify", security(http.HandlerFunc(h.Student.VerifyStudents))).Methods(http.MethodPost)
	r.Handle("/api/gate-passes/{id:[0-9]+}/return", security(http.HandlerFunc(h.Security.MarkReturned))).Methods(http.MethodPost)
	r.Handle("/api/gate-passes/{id:[0-9]+}/return-all", security(http.HandlerFunc(h.Security.MarkAllReturned))).Methods(http.MethodPost)

	// Notifications
	r.Handle("/api/notifications/tutor", tutor(http.HandlerFunc(h.Notification.TutorFeed))).Methods(http.MethodGet)
	r.Handle("/api/notifications/student", student(http.HandlerFunc(h.Notification.StudentFeed))).Methods(http.MethodGet)
	r.Handle("/api/notifications/read-all", anyUser(http.HandlerFunc(h.Notification.MarkAllRead))).Methods(http.MethodPost)
	r.Handle("/api/notifications/{id}/read", anyUser(http.HandlerFunc(h.Notification.MarkRead))).Methods(http.MethodPost)

	// QR verification target. The page is intentionally public: the gate
	// scanner may not be logged in.
	r.HandleFunc("/verify/{id:[0-9]+}", h.Verification.VerifyPage).Methods(http.MethodGet)
	r.HandleFunc("/api/verify/{id:[0-9]+}", h.Verification.VerifyJSON).Methods(http.MethodGet)

	// Live system feed for the admin dashboard
	r.HandleFunc("/ws/monitoring", h.Ops.Monitor.ServeWS)

	return r
}
