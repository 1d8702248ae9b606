package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"pricescout-engine/internal/config"
	"pricescout-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setTrackerTokenReq struct {
	Token string `json:"token"`
}

func (h SecretsHandler) SetTrackerToken(w http.ResponseWriter, r *http.Request) {
	var req setTrackerTokenReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	cfg := h.CfgVal.Load().(config.Config)
	if err := secrets.SetTrackerToken(secrets.TrackerKeyringAccount(cfg), req.Token); err != nil {
		http.Error(w, "failed to store token: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
