package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"
)

type HealthHandler struct {
	DB *sql.DB
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	dbOK := h.DB.PingContext(r.Context()) == nil
	_ = json.NewEncoder(w).Encode(map[string]any{
		"ok": dbOK,
		"db": dbOK,
	})
}
