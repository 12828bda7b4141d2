package services

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/protocol"
)

// DemoHandler mints ciphertexts on the in-memory engine so a deployment
// without a real encryption client can still be driven end to end. Not
// for production wiring.
type DemoHandler struct {
	engine *protocol.InMemoryCipherEngine
}

// NewDemoHandler wraps the engine used by the ledger under test.
func NewDemoHandler(engine *protocol.InMemoryCipherEngine) *DemoHandler {
	return &DemoHandler{engine: engine}
}

// RegisterRoutes mounts the demo endpoints on r.
func (h *DemoHandler) RegisterRoutes(r chi.Router) {
	r.Post("/demo/encrypt", h.handleEncrypt)
}

func (h *DemoHandler) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	var req EncryptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ct, err := h.engine.EncryptUint(req.Value)
	if err != nil {
		writeJSONStatus(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSONStatus(w, http.StatusOK, EncryptResponse{Ciphertext: ct.String()})
}
