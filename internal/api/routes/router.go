package routes

import (
	"net/http"
	"net/netip"

	"github.com/kaayakalpa/healthfinder/internal/api/handlers"
	"github.com/kaayakalpa/healthfinder/internal/api/middleware"
	"github.com/kaayakalpa/healthfinder/internal/domain/entities"
	"github.com/kaayakalpa/healthfinder/internal/domain/providers"
	"github.com/kaayakalpa/healthfinder/internal/infrastructure/observability"
)

// Handlers groups the route handlers served by the API
type Handlers struct {
	Health  *handlers.HealthHandler
	Disease *handlers.DiseaseHandler
	Auth    *handlers.AuthHandler
	OTP     *handlers.OTPHandler
	Center  *handlers.CenterHandler
	Admin   *handlers.AdminHandler
	Report  *handlers.ReportHandler
}

// Options configures the router's cross-cutting middleware
type Options struct {
	Authenticator   middleware.Authenticator
	RateLimitCache  providers.CacheProvider
	CacheMiddleware *middleware.CacheMiddleware
	Metrics         *observability.Metrics
	AllowedOrigins  []string
	UploadsDir      string

	// TrustedProxies are the reverse proxies whose forwarding headers name the client
	TrustedProxies []netip.Prefix
}

// Router holds all route handlers
type Router struct {
	mux  *http.ServeMux
	h    Handlers
	opts Options
}

// NewRouter creates a new router
func NewRouter(h Handlers, opts Options) *Router {
	return &Router{
		mux:  http.NewServeMux(),
		h:    h,
		opts: opts,
	}
}

func chain(handler http.HandlerFunc, wrappers ...func(http.Handler) http.Handler) http.Handler {
	var out http.Handler = handler
	for i := len(wrappers) - 1; i >= 0; i-- {
		out = wrappers[i](out)
	}
	return out
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	auth := middleware.Auth(r.opts.Authenticator)
	optionalAuth := middleware.OptionalAuth(r.opts.Authenticator)
	adminOnly := middleware.RequireRole(entities.RoleAdmin)

	// Health check and static content
	r.mux.HandleFunc("GET /health", r.h.Health.Health)
	r.mux.HandleFunc("GET /api/disclaimer", r.h.Health.Disclaimer)
	if r.opts.UploadsDir != "" {
		uploads := handlers.NewUploadsHandler(r.opts.UploadsDir)
		r.mux.Handle("GET /uploads/{name}", chain(uploads.ServeFile, auth))
	}

	// Disease catalog
	r.mux.HandleFunc("GET /api/diseases", r.h.Disease.ListDiseases)
	r.mux.HandleFunc("GET /api/diseases/hierarchy", r.h.Disease.GetHierarchy)
	r.mux.HandleFunc("GET /api/diseases/search", r.h.Disease.SearchDiseases)
	r.mux.HandleFunc("GET /api/diseases/{id}", r.h.Disease.GetDisease)
	r.mux.Handle("POST /api/diseases", chain(r.h.Disease.CreateDisease, auth, adminOnly))
	r.mux.Handle("PUT /api/diseases/{id}", chain(r.h.Disease.UpdateDisease, auth, adminOnly))
	r.mux.Handle("DELETE /api/diseases/{id}", chain(r.h.Disease.DeleteDisease, auth, adminOnly))

	// Accounts
	r.mux.HandleFunc("POST /api/auth/register", r.h.Auth.Register)
	r.mux.HandleFunc("POST /api/auth/login", r.h.Auth.Login)
	r.mux.HandleFunc("POST /api/auth/check-email", r.h.Auth.CheckEmail)
	r.mux.Handle("GET /api/auth/me", chain(r.h.Auth.Me, auth))
	r.mux.Handle("PUT /api/auth/profile", chain(r.h.Auth.UpdateProfile, auth))
	r.mux.Handle("PUT /api/auth/verify-mobile", chain(r.h.Auth.VerifyMobile, auth))
	r.mux.Handle("PUT /api/auth/upgrade-business", chain(r.h.Auth.UpgradeToBusiness, auth))

	// Phone verification
	otpLimit := middleware.RateLimit(r.opts.RateLimitCache, middleware.OTPRateLimit)
	r.mux.Handle("POST /api/otp/send", chain(r.h.OTP.SendOTP, otpLimit, optionalAuth))
	r.mux.Handle("POST /api/otp/resend", chain(r.h.OTP.ResendOTP, otpLimit, optionalAuth))
	r.mux.Handle("POST /api/otp/verify", chain(r.h.OTP.VerifyOTP, optionalAuth))

	// Center directory
	r.mux.HandleFunc("GET /api/centers", r.h.Center.SearchCenters)
	r.mux.Handle("GET /api/centers/my/list", chain(r.h.Center.ListMyCenters, auth))
	r.mux.HandleFunc("GET /api/centers/user/{userId}", r.h.Center.ListUserCenters)
	r.mux.HandleFunc("GET /api/centers/{id}", r.h.Center.GetCenter)
	r.mux.Handle("POST /api/centers/license-upload", chain(r.h.Center.UploadLicense, auth))
	r.mux.Handle("POST /api/centers", chain(r.h.Center.CreateCenter, auth))
	r.mux.Handle("PUT /api/centers/{id}", chain(r.h.Center.UpdateCenter, auth))
	r.mux.Handle("DELETE /api/centers/{id}", chain(r.h.Center.DeleteCenter, auth))

	// Reports
	r.mux.Handle("POST /api/reports", chain(r.h.Report.CreateReport, auth))

	// Moderation
	r.mux.Handle("GET /api/admin/centers/pending", chain(r.h.Admin.PendingCenters, auth, adminOnly))
	r.mux.Handle("GET /api/admin/centers/approved", chain(r.h.Admin.ApprovedCenters, auth, adminOnly))
	r.mux.Handle("PUT /api/admin/centers/{id}/approve", chain(r.h.Admin.ApproveCenter, auth, adminOnly))
	r.mux.Handle("PUT /api/admin/centers/{id}/reject", chain(r.h.Admin.RejectCenter, auth, adminOnly))
	r.mux.Handle("PUT /api/admin/centers/{id}", chain(r.h.Admin.EditCenter, auth, adminOnly))
	r.mux.Handle("DELETE /api/admin/centers/{id}", chain(r.h.Admin.DeleteCenter, auth, adminOnly))
	r.mux.Handle("GET /api/admin/reports", chain(r.h.Admin.ListReports, auth, adminOnly))
	r.mux.Handle("PUT /api/admin/reports/{id}/reviewed", chain(r.h.Admin.ReviewReport, auth, adminOnly))
	r.mux.Handle("GET /api/admin/users", chain(r.h.Admin.ListUsers, auth, adminOnly))
	r.mux.Handle("PUT /api/admin/users/{id}/license", chain(r.h.Admin.SetLicenseVerification, auth, adminOnly))

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.opts.CacheMiddleware != nil {
		handler = r.opts.CacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.opts.Metrics)(handler)
	handler = middleware.ResponseOptimization(handler)
	handler = middleware.RequestID(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(r.opts.AllowedOrigins)(handler)
	handler = middleware.TrustedProxies(r.opts.TrustedProxies)(handler)

	return handler
}
