package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventmanage/internal/delivery/http/controllers"
	"eventmanage/internal/delivery/http/middleware"
	"eventmanage/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Public routes are registered bare; routes that need a user are wrapped with
// RequireAuth, and publicly readable event routes with OptionalAuth so that
// an authenticated viewer still gets viewer-specific data.
func NewRouter(
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	eventController *controllers.EventController,
	attendanceController *controllers.AttendanceController,
) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier)
	optional := middleware.OptionalAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.Signup)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Users
	mux.HandleFunc("GET /users/me", auth(userController.GetProfile))
	mux.HandleFunc("PATCH /users/me", auth(userController.UpdateProfile))
	mux.HandleFunc("DELETE /users/me", auth(userController.DeactivateAccount))
	mux.HandleFunc("POST /users/me/password", auth(userController.ChangePassword))
	mux.HandleFunc("GET /users", auth(userController.ListUsers))

	// Events
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("GET /events/upcoming", eventController.ListUpcomingEvents)
	mux.HandleFunc("GET /events/public", eventController.ListPublicEvents)
	mux.HandleFunc("GET /events/me", auth(eventController.ListMyEvents))
	mux.HandleFunc("GET /events/attending", auth(eventController.ListAttendingEvents))
	mux.HandleFunc("GET /events/conflicts", auth(eventController.CheckConflicts))
	mux.HandleFunc("GET /events/{eventID}", optional(eventController.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.DeleteEvent))
	mux.HandleFunc("POST /events/{eventID}/restore", auth(eventController.RestoreEvent))
	mux.HandleFunc("GET /events/{eventID}/stats", auth(eventController.GetEventStats))

	// Attendance
	mux.HandleFunc("POST /events/{eventID}/attendance", auth(attendanceController.CreateAttendance))
	mux.HandleFunc("PATCH /events/{eventID}/attendance", auth(attendanceController.UpdateAttendance))
	mux.HandleFunc("DELETE /events/{eventID}/attendance", auth(attendanceController.DeleteAttendance))
	mux.HandleFunc("GET /events/{eventID}/attendance", auth(attendanceController.GetAttendance))
	mux.HandleFunc("GET /events/{eventID}/attendance/stats", auth(attendanceController.GetAttendanceStats))
	mux.HandleFunc("GET /events/{eventID}/attendees", auth(attendanceController.ListAttendees))
	mux.HandleFunc("GET /users/me/attendance", auth(attendanceController.ListMyAttendance))
	mux.HandleFunc("GET /users/me/attendance/summary", auth(attendanceController.GetMySummary))
	mux.HandleFunc("GET /users/me/attendance/upcoming", auth(attendanceController.ListMyUpcoming))
	mux.HandleFunc("GET /users/me/attendance/past", auth(attendanceController.ListMyPast))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
