package services

import (
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/crypto"
	"github.com/brandon-salgado205n/DeFi-Builder-Game/metrics"
	"github.com/brandon-salgado205n/DeFi-Builder-Game/protocol"
)

// LedgerHandler exposes a ledger service over HTTP.
type LedgerHandler struct {
	ledger  *protocol.Service
	log     *slog.Logger
	metrics *metrics.MetricsServer
}

// NewLedgerHandler wraps the ledger core. A nil logger uses the default.
func NewLedgerHandler(ledger *protocol.Service, log *slog.Logger) *LedgerHandler {
	if log == nil {
		log = slog.Default()
	}
	return &LedgerHandler{ledger: ledger, log: log}
}

// UseMetrics attaches operation counters. Safe to call after routes are
// registered; nil disables counting.
func (h *LedgerHandler) UseMetrics(m *metrics.MetricsServer) {
	h.metrics = m
}

func (h *LedgerHandler) countOp(op string, err error) {
	if h.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	h.metrics.Operations.WithLabelValues(op, outcome).Inc()
}

// RegisterRoutes mounts the ledger API on r.
func (h *LedgerHandler) RegisterRoutes(r chi.Router) {
	r.Post("/admin/ownership", h.handleTransferOwnership)
	r.Post("/admin/providers", h.handleAddProvider)
	r.Post("/admin/providers/remove", h.handleRemoveProvider)
	r.Post("/admin/cooldown", h.handleSetCooldown)
	r.Post("/admin/pause", h.handlePause)
	r.Post("/admin/unpause", h.handleUnpause)

	r.Post("/batches/open", h.handleOpenBatch)
	r.Post("/batches/close", h.handleCloseBatch)
	r.Post("/batches/{batch}/collateral", h.handleSubmitCollateral)
	r.Post("/batches/{batch}/debt", h.handleSubmitDebt)
	r.Post("/batches/{batch}/solvency", h.handleCalculateSolvency)
	r.Post("/batches/{batch}/decryption", h.handleRequestDecryption)

	r.Post("/oracle/callback", h.handleOracleCallback)

	r.Get("/status", h.handleStatus)
	r.Get("/batches/{batch}", h.handleGetBatch)
	r.Get("/requests/{request}", h.handleGetRequest)
	r.Get("/events", h.handleGetEvents)
}

// statusForKind maps the ledger error taxonomy onto HTTP status codes.
func statusForKind(err error) int {
	switch protocol.KindOf(err) {
	case protocol.KindAuthorization:
		return http.StatusForbidden
	case protocol.KindLifecycle:
		return http.StatusConflict
	case protocol.KindRateLimit:
		return http.StatusTooManyRequests
	case protocol.KindIntegrity:
		return http.StatusUnprocessableEntity
	case protocol.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

func (h *LedgerHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	if err := writeJSONStatus(w, status, v); err != nil {
		h.log.Error("encoding response", "err", err)
	}
}

func (h *LedgerHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForKind(err)
	h.log.Info("request rejected", "path", r.URL.Path, "status", status, "err", err)
	h.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (h *LedgerHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeJSON(r, v); err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (h *LedgerHandler) address(w http.ResponseWriter, field, value string) (crypto.Address, bool) {
	addr, err := crypto.NewAddressFromString(value)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid " + field + " address"})
		return nil, false
	}
	return addr, true
}

func (h *LedgerHandler) batchID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "batch"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid batch id"})
		return 0, false
	}
	return id, true
}

func (h *LedgerHandler) handleTransferOwnership(w http.ResponseWriter, r *http.Request) {
	var req AdminRequest
	if !h.decode(w, r, &req) {
		return
	}
	caller, ok := h.address(w, "caller", req.Caller)
	if !ok {
		return
	}
	newOwner, ok := h.address(w, "target", req.Address)
	if !ok {
		return
	}
	err := h.ledger.TransferOwnership(caller, newOwner)
	h.countOp("transfer_ownership", err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *LedgerHandler) handleAddProvider(w http.ResponseWriter, r *http.Request) {
	var req AdminRequest
	if !h.decode(w, r, &req) {
		return
	}
	caller, ok := h.address(w, "caller", req.Caller)
	if !ok {
		return
	}
	addr, ok := h.address(w, "target", req.Address)
	if !ok {
		return
	}
	err := h.ledger.AddProvider(caller, addr)
	h.countOp("add_provider", err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *LedgerHandler) handleRemoveProvider(w http.ResponseWriter, r *http.Request) {
	var req AdminRequest
	if !h.decode(w, r, &req) {
		return
	}
	caller, ok := h.address(w, "caller", req.Caller)
	if !ok {
		return
	}
	addr, ok := h.address(w, "target", req.Address)
	if !ok {
		return
	}
	err := h.ledger.RemoveProvider(caller, addr)
	h.countOp("remove_provider", err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *LedgerHandler) handleSetCooldown(w http.ResponseWriter, r *http.Request) {
	var req CooldownRequest
	if !h.decode(w, r, &req) {
		return
	}
	caller, ok := h.address(w, "caller", req.Caller)
	if !ok {
		return
	}
	if req.CooldownSeconds < 0 {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "cooldown must not be negative"})
		return
	}
	err := h.ledger.SetCooldown(caller, time.Duration(req.CooldownSeconds)*time.Second)
	h.countOp("set_cooldown", err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *LedgerHandler) handlePause(w http.ResponseWriter, r *http.Request) {
	h.handleAdminToggle(w, r, "pause", h.ledger.Pause)
}

func (h *LedgerHandler) handleUnpause(w http.ResponseWriter, r *http.Request) {
	h.handleAdminToggle(w, r, "unpause", h.ledger.Unpause)
}

func (h *LedgerHandler) handleAdminToggle(w http.ResponseWriter, r *http.Request, name string, op func(crypto.Address) error) {
	var req AdminRequest
	if !h.decode(w, r, &req) {
		return
	}
	caller, ok := h.address(w, "caller", req.Caller)
	if !ok {
		return
	}
	err := op(caller)
	h.countOp(name, err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *LedgerHandler) handleOpenBatch(w http.ResponseWriter, r *http.Request) {
	h.handleLifecycle(w, r, "open_batch", h.ledger.OpenBatch)
}

func (h *LedgerHandler) handleCloseBatch(w http.ResponseWriter, r *http.Request) {
	h.handleLifecycle(w, r, "close_batch", h.ledger.CloseBatch)
}

func (h *LedgerHandler) handleLifecycle(w http.ResponseWriter, r *http.Request, name string, op func(crypto.Address) (uint64, error)) {
	var req BatchLifecycleRequest
	if !h.decode(w, r, &req) {
		return
	}
	caller, ok := h.address(w, "caller", req.Caller)
	if !ok {
		return
	}
	id, err := op(caller)
	h.countOp(name, err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, BatchLifecycleResponse{BatchID: id})
}

func (h *LedgerHandler) handleSubmitCollateral(w http.ResponseWriter, r *http.Request) {
	h.handleSubmit(w, r, "collateral", h.ledger.SubmitCollateral)
}

func (h *LedgerHandler) handleSubmitDebt(w http.ResponseWriter, r *http.Request) {
	h.handleSubmit(w, r, "debt", h.ledger.SubmitDebt)
}

func (h *LedgerHandler) handleSubmit(w http.ResponseWriter, r *http.Request, kind string,
	op func(crypto.Address, uint64, crypto.Handle) error) {

	batch, ok := h.batchID(w, r)
	if !ok {
		return
	}
	var req SubmissionRequest
	if !h.decode(w, r, &req) {
		return
	}
	caller, ok := h.address(w, "caller", req.Caller)
	if !ok {
		return
	}
	ct, err := crypto.NewHandleFromString(req.Ciphertext)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid ciphertext handle"})
		return
	}
	err = op(caller, batch, ct)
	h.countOp("submit_"+kind, err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.Submissions.WithLabelValues(kind).Inc()
	}
	w.WriteHeader(http.StatusOK)
}

func (h *LedgerHandler) handleCalculateSolvency(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.batchID(w, r)
	if !ok {
		return
	}
	var req SolvencyRequest
	if !h.decode(w, r, &req) {
		return
	}
	caller, ok := h.address(w, "caller", req.Caller)
	if !ok {
		return
	}
	err := h.ledger.CalculateSolvency(caller, batch)
	h.countOp("calculate_solvency", err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *LedgerHandler) handleRequestDecryption(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.batchID(w, r)
	if !ok {
		return
	}
	var req SolvencyRequest
	if !h.decode(w, r, &req) {
		return
	}
	caller, ok := h.address(w, "caller", req.Caller)
	if !ok {
		return
	}
	id, err := h.ledger.RequestSolvencyDecryption(caller, batch)
	h.countOp("request_decryption", err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.DecryptionRequests.WithLabelValues("requested").Inc()
	}
	h.writeJSON(w, http.StatusOK, DecryptionRequestResponse{RequestID: string(id)})
}

func (h *LedgerHandler) handleOracleCallback(w http.ResponseWriter, r *http.Request) {
	var req OracleCallbackRequest
	if !h.decode(w, r, &req) {
		return
	}
	cleartext, err := hex.DecodeString(req.Cleartext)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid cleartext encoding"})
		return
	}
	proof, err := hex.DecodeString(req.Proof)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid proof encoding"})
		return
	}

	solvent, err := h.ledger.FulfillDecryption(protocol.RequestID(req.RequestID), cleartext, proof)
	h.countOp("fulfill_decryption", err)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.DecryptionRequests.WithLabelValues("fulfilled").Inc()
	}
	h.writeJSON(w, http.StatusOK, OracleCallbackResponse{Solvent: solvent})
}

func (h *LedgerHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	openID, hasOpen := h.ledger.OpenBatchID()
	h.writeJSON(w, http.StatusOK, LedgerStatusView{
		Identity:       h.ledger.Identity().String(),
		Owner:          h.ledger.Owner().String(),
		Paused:         h.ledger.Paused(),
		CurrentBatchID: h.ledger.CurrentBatchID(),
		OpenBatchID:    openID,
		HasOpenBatch:   hasOpen,
		CooldownSec:    cooldownSeconds(h.ledger.CooldownWindow()),
	})
}

func (h *LedgerHandler) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.batchID(w, r)
	if !ok {
		return
	}
	b, err := h.ledger.BatchInfo(batch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newBatchView(b))
}

func (h *LedgerHandler) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.ledger.RequestInfo(protocol.RequestID(chi.URLParam(r, "request")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newRequestView(req))
}

func (h *LedgerHandler) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, EventsResponse{Events: h.ledger.Events()})
}
