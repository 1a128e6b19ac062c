// Package api implements the HTTP surface of the marketplace.
package api

import (
	"database/sql"
	"net/http"

	"github.com/farmerchain/farmerchain/internal/carbon"
	"github.com/farmerchain/farmerchain/internal/mail"
	"github.com/farmerchain/farmerchain/internal/model"
)

// NewRouter builds the full route table.
func NewRouter(db *sql.DB, jwtSecret string, mailer *mail.Mailer, calc *carbon.Calculator) http.Handler {
	mux := http.NewServeMux()

	authed := AuthMiddleware(jwtSecret)
	guard := func(role string) func(http.HandlerFunc) http.Handler {
		require := RequireRole(db, role)
		return func(h http.HandlerFunc) http.Handler {
			return authed(require(h))
		}
	}
	anyRole := func(h http.HandlerFunc) http.Handler {
		return authed(RequireAuth(db)(h))
	}

	authH := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	mux.HandleFunc("POST /api/auth/login", authH.Login)
	mux.HandleFunc("POST /api/auth/refresh", authH.Refresh)

	// Marketplace account surfaces, one per role.
	for _, rc := range []struct {
		prefix string
		role   string
	}{
		{"farmers", model.RoleFarmer},
		{"fpos", model.RoleFPO},
		{"retailers", model.RoleRetailer},
	} {
		h := &AccountsHandler{DB: db, Role: rc.role}
		g := guard(rc.role)
		mux.HandleFunc("POST /api/"+rc.prefix+"/register", h.Register)
		mux.HandleFunc("POST /api/"+rc.prefix+"/login-check", h.LoginCheck)
		mux.Handle("GET /api/"+rc.prefix, g(h.List))
		mux.Handle("GET /api/"+rc.prefix+"/{id}", g(h.Get))
		mux.Handle("PUT /api/"+rc.prefix+"/{id}", g(h.Update))
		mux.Handle("DELETE /api/"+rc.prefix+"/{id}", g(h.Delete))
	}

	// Quote owner surfaces: farmers own farmer-tier quotes, FPOs own
	// FPO-tier quotes.
	for _, tc := range []struct {
		prefix string
		role   string
		tier   model.Tier
	}{
		{"farmers", model.RoleFarmer, model.TierFarmer},
		{"fpos", model.RoleFPO, model.TierFPO},
	} {
		h := &QuotesHandler{DB: db, Tier: tc.tier, Mailer: mailer}
		g := guard(tc.role)
		mux.Handle("POST /api/"+tc.prefix+"/quotes", g(h.Create))
		mux.Handle("GET /api/"+tc.prefix+"/quotes", g(h.List))
		mux.Handle("GET /api/"+tc.prefix+"/quotes/{id}", g(h.Get))
		mux.Handle("PUT /api/"+tc.prefix+"/quotes/{id}", g(h.Update))
		mux.Handle("DELETE /api/"+tc.prefix+"/quotes/{id}", g(h.Delete))
		mux.Handle("GET /api/"+tc.prefix+"/quotes/{id}/bids", g(h.Bids))
		mux.Handle("POST /api/"+tc.prefix+"/quotes/{id}/accept-bid", g(h.AcceptBid))
	}

	// Bidder surfaces: FPOs bid on farmer quotes, retailers on FPO
	// quotes.
	for _, bc := range []struct {
		prefix string
		role   string
		tier   model.Tier
	}{
		{"fpos", model.RoleFPO, model.TierFarmer},
		{"retailers", model.RoleRetailer, model.TierFPO},
	} {
		h := &BidsHandler{DB: db, Tier: bc.tier}
		g := guard(bc.role)
		mux.Handle("GET /api/"+bc.prefix+"/open-quotes", g(h.OpenQuotes))
		mux.Handle("POST /api/"+bc.prefix+"/open-quotes/{id}/submit-bid", g(h.SubmitBid))
		mux.Handle("GET /api/"+bc.prefix+"/bids", g(h.MyBids))
	}

	negH := &NegotiationsHandler{DB: db, Mailer: mailer}
	mux.Handle("POST /api/negotiations", anyRole(negH.Create))
	mux.Handle("GET /api/negotiations", anyRole(negH.List))
	mux.Handle("GET /api/negotiations/{id}", anyRole(negH.Get))
	mux.Handle("POST /api/negotiations/{id}/messages", anyRole(negH.SendMessage))
	mux.Handle("POST /api/negotiations/{id}/accept", anyRole(negH.Accept))
	mux.Handle("POST /api/negotiations/{id}/reject", anyRole(negH.Reject))

	carbonH := &CarbonHandler{DB: db, Calc: calc}
	mux.Handle("POST /api/carbon/calculate", anyRole(carbonH.Calculate))

	adminH := &AdminHandler{DB: db, Mailer: mailer}
	adminGuard := guard(model.RoleAdmin)
	mux.HandleFunc("POST /api/admin/register", adminH.Register)
	mux.HandleFunc("POST /api/admin/login-check", adminH.LoginCheck)
	mux.Handle("GET /api/admin/pending-registrations", adminGuard(adminH.PendingRegistrations))
	for _, rc := range []struct {
		prefix string
		role   string
	}{
		{"farmers", model.RoleFarmer},
		{"fpos", model.RoleFPO},
		{"retailers", model.RoleRetailer},
	} {
		mux.Handle("POST /api/admin/"+rc.prefix+"/{id}/approve", adminGuard(adminH.Decision(rc.role, model.ApprovalApproved)))
		mux.Handle("POST /api/admin/"+rc.prefix+"/{id}/reject", adminGuard(adminH.Decision(rc.role, model.ApprovalRejected)))
	}

	return mux
}
