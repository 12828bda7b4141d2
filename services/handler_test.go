package services

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/protocol"
	"github.com/brandon-salgado205n/DeFi-Builder-Game/testutil"
)

type testServer struct {
	*testutil.Fixture
	srv *httptest.Server
}

func newTestServer(t *testing.T, opts ...testutil.Option) *testServer {
	t.Helper()

	f := testutil.NewFixture(t, opts...)
	r := chi.NewRouter()
	NewLedgerHandler(f.Service, nil).RegisterRoutes(r)
	NewDemoHandler(f.Engine).RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &testServer{Fixture: f, srv: srv}
}

func (ts *testServer) post(t *testing.T, path string, body, out any) int {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(ts.srv.URL+path, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (ts *testServer) get(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(ts.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (ts *testServer) encrypt(t *testing.T, v uint64) string {
	t.Helper()
	var resp EncryptResponse
	code := ts.post(t, "/demo/encrypt", EncryptRequest{Value: v}, &resp)
	require.Equal(t, http.StatusOK, code)
	return resp.Ciphertext
}

func TestStatusEndpoint(t *testing.T) {
	ts := newTestServer(t)

	var status LedgerStatusView
	require.Equal(t, http.StatusOK, ts.get(t, "/status", &status))
	require.Equal(t, ts.Owner.String(), status.Owner)
	require.False(t, status.Paused)
	require.False(t, status.HasOpenBatch)
	require.Zero(t, status.CurrentBatchID)
}

func TestAdminEndpoints(t *testing.T) {
	ts := newTestServer(t)
	owner := ts.Owner.String()
	provider := testutil.Address(2).String()

	code := ts.post(t, "/admin/providers", AdminRequest{Caller: owner, Address: provider}, nil)
	require.Equal(t, http.StatusOK, code)

	// Non-owner calls map to 403.
	code = ts.post(t, "/admin/providers", AdminRequest{Caller: provider, Address: provider}, nil)
	require.Equal(t, http.StatusForbidden, code)

	code = ts.post(t, "/admin/cooldown", CooldownRequest{Caller: owner, CooldownSeconds: 5}, nil)
	require.Equal(t, http.StatusOK, code)

	var status LedgerStatusView
	require.Equal(t, http.StatusOK, ts.get(t, "/status", &status))
	require.Equal(t, int64(5), status.CooldownSec)

	code = ts.post(t, "/admin/pause", AdminRequest{Caller: owner}, nil)
	require.Equal(t, http.StatusOK, code)

	// Pausing twice is a lifecycle conflict.
	code = ts.post(t, "/admin/pause", AdminRequest{Caller: owner}, nil)
	require.Equal(t, http.StatusConflict, code)

	code = ts.post(t, "/admin/unpause", AdminRequest{Caller: owner}, nil)
	require.Equal(t, http.StatusOK, code)
}

func TestSubmissionFlow(t *testing.T) {
	ts := newTestServer(t, testutil.WithCooldown(0))
	owner := ts.Owner.String()
	provider := testutil.Address(2)
	ts.AddProvider(t, provider)

	var opened BatchLifecycleResponse
	code := ts.post(t, "/batches/open", BatchLifecycleRequest{Caller: owner}, &opened)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, uint64(1), opened.BatchID)

	base := fmt.Sprintf("/batches/%d", opened.BatchID)

	code = ts.post(t, base+"/collateral", SubmissionRequest{
		Caller:     provider.String(),
		Ciphertext: ts.encrypt(t, 100),
	}, nil)
	require.Equal(t, http.StatusOK, code)

	code = ts.post(t, base+"/debt", SubmissionRequest{
		Caller:     provider.String(),
		Ciphertext: ts.encrypt(t, 80),
	}, nil)
	require.Equal(t, http.StatusOK, code)

	// Non-providers get 403; unknown batches 404.
	code = ts.post(t, base+"/collateral", SubmissionRequest{
		Caller:     testutil.Address(9).String(),
		Ciphertext: ts.encrypt(t, 1),
	}, nil)
	require.Equal(t, http.StatusForbidden, code)

	code = ts.post(t, "/batches/7/collateral", SubmissionRequest{
		Caller:     provider.String(),
		Ciphertext: ts.encrypt(t, 1),
	}, nil)
	require.Equal(t, http.StatusNotFound, code)

	// A malformed handle is rejected before reaching the ledger.
	code = ts.post(t, base+"/collateral", SubmissionRequest{
		Caller:     provider.String(),
		Ciphertext: "not-hex",
	}, nil)
	require.Equal(t, http.StatusBadRequest, code)

	// A well-formed handle the engine never minted is an integrity failure.
	code = ts.post(t, base+"/collateral", SubmissionRequest{
		Caller:     provider.String(),
		Ciphertext: "ff00ff00ff00ff00ff00ff00ff00ff00ff00ff00ff00ff00ff00ff00ff00ff00",
	}, nil)
	require.Equal(t, http.StatusUnprocessableEntity, code)

	var batch BatchView
	require.Equal(t, http.StatusOK, ts.get(t, base, &batch))
	require.True(t, batch.Open)
	require.NotEmpty(t, batch.Collateral)
}

func TestSubmissionCooldownMapsTo429(t *testing.T) {
	ts := newTestServer(t)
	provider := testutil.Address(2)
	ts.AddProvider(t, provider)
	id := ts.OpenBatch(t)
	base := fmt.Sprintf("/batches/%d", id)

	code := ts.post(t, base+"/collateral", SubmissionRequest{
		Caller:     provider.String(),
		Ciphertext: ts.encrypt(t, 1),
	}, nil)
	require.Equal(t, http.StatusOK, code)

	code = ts.post(t, base+"/collateral", SubmissionRequest{
		Caller:     provider.String(),
		Ciphertext: ts.encrypt(t, 1),
	}, nil)
	require.Equal(t, http.StatusTooManyRequests, code)
}

func TestDecryptionFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t, testutil.WithCooldown(0))
	owner := ts.Owner.String()
	provider := testutil.Address(2)
	ts.AddProvider(t, provider)

	var opened BatchLifecycleResponse
	require.Equal(t, http.StatusOK,
		ts.post(t, "/batches/open", BatchLifecycleRequest{Caller: owner}, &opened))
	base := fmt.Sprintf("/batches/%d", opened.BatchID)

	require.Equal(t, http.StatusOK, ts.post(t, base+"/collateral", SubmissionRequest{
		Caller: provider.String(), Ciphertext: ts.encrypt(t, 100),
	}, nil))
	require.Equal(t, http.StatusOK, ts.post(t, base+"/debt", SubmissionRequest{
		Caller: provider.String(), Ciphertext: ts.encrypt(t, 80),
	}, nil))
	require.Equal(t, http.StatusOK,
		ts.post(t, base+"/solvency", SolvencyRequest{Caller: provider.String()}, nil))

	var reqResp DecryptionRequestResponse
	require.Equal(t, http.StatusOK,
		ts.post(t, base+"/decryption", SolvencyRequest{Caller: provider.String()}, &reqResp))
	require.NotEmpty(t, reqResp.RequestID)

	cleartext, proof, err := ts.Oracle.Respond(protocol.RequestID(reqResp.RequestID))
	require.NoError(t, err)

	callback := OracleCallbackRequest{
		RequestID: reqResp.RequestID,
		Cleartext: hex.EncodeToString(cleartext),
		Proof:     hex.EncodeToString(proof),
	}
	var cbResp OracleCallbackResponse
	require.Equal(t, http.StatusOK, ts.post(t, "/oracle/callback", callback, &cbResp))
	require.True(t, cbResp.Solvent)

	// Replaying the callback is a permanent integrity failure, not a
	// retryable conflict.
	require.Equal(t, http.StatusUnprocessableEntity, ts.post(t, "/oracle/callback", callback, nil))

	var view RequestView
	require.Equal(t, http.StatusOK, ts.get(t, "/requests/"+reqResp.RequestID, &view))
	require.True(t, view.Processed)
	require.Equal(t, opened.BatchID, view.BatchID)

	// Unknown request ids map to 404.
	require.Equal(t, http.StatusNotFound, ts.get(t, "/requests/nope", nil))
}

func TestEventsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.OpenBatch(t)

	var resp EventsResponse
	require.Equal(t, http.StatusOK, ts.get(t, "/events", &resp))
	require.NotEmpty(t, resp.Events)
	require.Equal(t, protocol.EventBatchOpened, resp.Events[len(resp.Events)-1].Kind)
}
