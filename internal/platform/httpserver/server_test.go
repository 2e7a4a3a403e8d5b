package httpserver

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	discussionengine "agora/contexts/deliberation/discussion-engine"
	httptransport "agora/contexts/deliberation/discussion-engine/transport/http"
)

func newTestServer() *Server {
	return New(discussionengine.NewInMemoryModule(slog.Default()), slog.Default(), ":0")
}

func doJSON(server *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func createTestSession(t *testing.T, server *Server) string {
	t.Helper()
	body := `{"title":"Weekly sync","turn_mode":"round_robin","min_rounds":1,"max_rounds":2,"participants":[{"participant_id":"p1","name":"Ada"},{"participant_id":"p2","name":"Grace"}]}`
	rr := doJSON(server, http.MethodPost, "/sessions", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("create session: %d body=%s", rr.Code, rr.Body.String())
	}
	var resp httptransport.SessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode session response: %v", err)
	}
	if resp.Item.SessionID == "" {
		t.Fatalf("expected a session id, body=%s", rr.Body.String())
	}
	return resp.Item.SessionID
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) httptransport.ErrorResponse {
	t.Helper()
	var resp httptransport.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v body=%s", err, rr.Body.String())
	}
	return resp
}

func TestHealthz(t *testing.T) {
	server := newTestServer()
	rr := doJSON(server, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSessionRoundTrip(t *testing.T) {
	server := newTestServer()
	sessionID := createTestSession(t, server)

	rr := doJSON(server, http.MethodGet, "/sessions/"+sessionID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp httptransport.GetSessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Item.SessionID != sessionID || resp.Item.Status != "active" || len(resp.Item.Participants) != 2 {
		t.Fatalf("unexpected snapshot: %+v", resp.Item)
	}
	if resp.OpenTurn != nil {
		t.Fatalf("no turn was started, got %+v", resp.OpenTurn)
	}

	rr = doJSON(server, http.MethodGet, "/sessions", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var list httptransport.ListSessionsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Items) != 1 {
		t.Fatalf("expected one session, got %+v", list.Items)
	}
}

func TestSubmissionFlow(t *testing.T) {
	server := newTestServer()
	sessionID := createTestSession(t, server)

	rr := doJSON(server, http.MethodPost, "/sessions/"+sessionID+"/turns", `{"prompt":"Where do we focus next quarter?"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("start turn: %d body=%s", rr.Code, rr.Body.String())
	}
	var turn httptransport.StartTurnResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &turn); err != nil {
		t.Fatalf("decode turn: %v", err)
	}
	if turn.Item.TurnNumber != 1 || turn.Item.CurrentRound != 1 {
		t.Fatalf("unexpected turn: %+v", turn.Item)
	}

	first := `{"session_id":"` + sessionID + `","participant_id":"p1","content":"Platform reliability.","round_number":1}`
	rr = doJSON(server, http.MethodPost, "/submissions", first)
	if rr.Code != http.StatusOK {
		t.Fatalf("first submission: %d body=%s", rr.Code, rr.Body.String())
	}
	var submitted httptransport.SubmitUtteranceResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode submission: %v", err)
	}
	if submitted.RoundCompleted || submitted.Replayed {
		t.Fatalf("the round still waits on p2, got %+v", submitted)
	}

	second := `{"session_id":"` + sessionID + `","participant_id":"p2","content":"Hiring.","round_number":1}`
	rr = doJSON(server, http.MethodPost, "/submissions", second)
	if rr.Code != http.StatusOK {
		t.Fatalf("second submission: %d body=%s", rr.Code, rr.Body.String())
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode submission: %v", err)
	}
	if !submitted.RoundCompleted || submitted.NextRound != 2 {
		t.Fatalf("the full roster should close round one, got %+v", submitted)
	}

	// Resending the identical request replays the stored outcome.
	rr = doJSON(server, http.MethodPost, "/submissions", first)
	if rr.Code != http.StatusOK {
		t.Fatalf("replay: %d body=%s", rr.Code, rr.Body.String())
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("decode replay: %v", err)
	}
	if !submitted.Replayed {
		t.Fatalf("an identical resubmission should replay, got %+v", submitted)
	}
}

func TestMalformedJSONRejected(t *testing.T) {
	server := newTestServer()
	rr := doJSON(server, http.MethodPost, "/sessions", `{"title":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	if resp := decodeError(t, rr); resp.Code != "invalid_json" {
		t.Fatalf("unexpected error code: %+v", resp)
	}
}

func TestValidationErrorsMapTo400(t *testing.T) {
	server := newTestServer()
	body := `{"title":"Broken","turn_mode":"fishbowl","participants":[{"participant_id":"p1","name":"Ada"}]}`
	rr := doJSON(server, http.MethodPost, "/sessions", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	if resp := decodeError(t, rr); resp.Code != "invalid_request" {
		t.Fatalf("unexpected error code: %+v", resp)
	}
}

func TestUnknownSessionMapsTo404(t *testing.T) {
	server := newTestServer()
	rr := doJSON(server, http.MethodGet, "/sessions/disc-404", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
	if resp := decodeError(t, rr); resp.Code != "not_found" {
		t.Fatalf("unexpected error code: %+v", resp)
	}
}

func TestStateConflictsMapTo422(t *testing.T) {
	server := newTestServer()
	sessionID := createTestSession(t, server)

	// Archiving skips the completed state, which the engine refuses.
	rr := doJSON(server, http.MethodPost, "/sessions/"+sessionID+"/archive", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
	}
	if resp := decodeError(t, rr); resp.Code != "state_conflict" {
		t.Fatalf("unexpected error code: %+v", resp)
	}
}

func TestConflictingResubmissionMapsTo409(t *testing.T) {
	server := newTestServer()
	sessionID := createTestSession(t, server)
	doJSON(server, http.MethodPost, "/sessions/"+sessionID+"/turns", `{"prompt":"Positions?"}`)

	first := `{"session_id":"` + sessionID + `","participant_id":"p1","content":"Option A.","round_number":1}`
	if rr := doJSON(server, http.MethodPost, "/submissions", first); rr.Code != http.StatusOK {
		t.Fatalf("first submission: %d body=%s", rr.Code, rr.Body.String())
	}

	changed := `{"session_id":"` + sessionID + `","participant_id":"p1","content":"Option B.","round_number":1}`
	rr := doJSON(server, http.MethodPost, "/submissions", changed)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
	if resp := decodeError(t, rr); resp.Code != "conflict" {
		t.Fatalf("unexpected error code: %+v", resp)
	}
}

func TestIdempotencyKeyConflictMapsTo409(t *testing.T) {
	server := newTestServer()
	sessionID := createTestSession(t, server)
	doJSON(server, http.MethodPost, "/sessions/"+sessionID+"/turns", `{"prompt":"Positions?"}`)

	send := func(content string) *httptest.ResponseRecorder {
		body := `{"session_id":"` + sessionID + `","participant_id":"p1","content":"` + content + `","round_number":1}`
		req := httptest.NewRequest(http.MethodPost, "/submissions", bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Idempotency-Key", "client-key-1")
		rr := httptest.NewRecorder()
		server.mux.ServeHTTP(rr, req)
		return rr
	}

	if rr := send("Option A."); rr.Code != http.StatusOK {
		t.Fatalf("first submission: %d body=%s", rr.Code, rr.Body.String())
	}
	rr := send("Option B.")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
	if resp := decodeError(t, rr); resp.Code != "idempotency_conflict" {
		t.Fatalf("unexpected error code: %+v", resp)
	}
}

func TestSwaggerMounted(t *testing.T) {
	server := newTestServer()
	rr := doJSON(server, http.MethodGet, "/swagger/index.html", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}
