package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/farmerchain/farmerchain/internal/carbon"
	"github.com/farmerchain/farmerchain/internal/model"
	"github.com/farmerchain/farmerchain/internal/store"
)

// CarbonHandler exposes the road emission estimator.
type CarbonHandler struct {
	DB   *sql.DB
	Calc *carbon.Calculator
}

func (h *CarbonHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var req carbon.Request
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// An omitted start address defaults to the caller's own city/state.
	if req.StartAddr == "" {
		p := GetPrincipal(r.Context())
		if p.Role != model.RoleAdmin {
			account, err := store.GetAccount(r.Context(), h.DB, p.Role, p.ID)
			if err == nil && account != nil && account.City != "" {
				req.StartAddr = account.City + ", " + account.State
			}
		}
	}

	if req.StartAddr == "" || req.EndAddr == "" || req.VehicleType == "" {
		jsonError(w, http.StatusBadRequest, "start_addr, end_addr and vehicle_type are required")
		return
	}

	result, err := h.Calc.CalculateRoadEmissions(r.Context(), req)
	if err != nil {
		if errors.Is(err, carbon.ErrUnavailable) {
			jsonError(w, http.StatusBadGateway, err.Error())
			return
		}
		// Unknown vehicle type or an address that could not be resolved.
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, result)
}
