package router_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"hr-portal/internal/router"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newServer(t *testing.T) (*httptest.Server, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)}
	ts := httptest.NewServer(router.NewRouter(router.Options{Now: clock.Now}))
	t.Cleanup(ts.Close)
	return ts, clock
}

func TestHTTP_EndToEnd_AccessRequestFlow(t *testing.T) {
	ts, clock := newServer(t)

	owner := "admin-1"
	other := "admin-2"

	// 1) Owner crea departamento
	var dept struct {
		ID   int64  `json:"id"`
		Code string `json:"code"`
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/departments", owner, map[string]any{"name": "Finanzas"})
		if st != http.StatusCreated {
			t.Fatalf("expected 201 creating department, got %d body=%s", st, string(body))
		}
		mustDecode(t, body, &dept)
	}
	deptPath := fmt.Sprintf("/departments/%s", dept.Code)

	// 2) Otro admin no puede editar
	{
		st, _ := doReq(t, ts.URL, "PATCH", deptPath, other, map[string]any{"description": "x"})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 before approval, got %d", st)
		}
	}

	// 3) Pide acceso; repetir devuelve el mismo pending
	var ar struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
		Active bool   `json:"active"`
	}
	{
		payload := map[string]any{"resource_type": "Department", "resource_id": dept.Code, "note": "cierre de mes"}
		st, body := doReq(t, ts.URL, "POST", "/access-requests", other, payload)
		if st != http.StatusCreated {
			t.Fatalf("expected 201 creating access request, got %d body=%s", st, string(body))
		}
		mustDecode(t, body, &ar)

		var again struct {
			ID int64 `json:"id"`
		}
		st, body = doReq(t, ts.URL, "POST", "/access-requests", other, payload)
		if st != http.StatusOK {
			t.Fatalf("expected 200 for existing pending request, got %d", st)
		}
		mustDecode(t, body, &again)
		if again.ID != ar.ID {
			t.Fatalf("expected same pending request, got %d and %d", ar.ID, again.ID)
		}
	}

	// 4) Solo el owner decide; el owner ve el pedido en su inbox
	{
		st, _ := doReq(t, ts.URL, "POST", fmt.Sprintf("/access-requests/%d/approve", ar.ID), other, nil)
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 when requester approves, got %d", st)
		}

		st, body := doReq(t, ts.URL, "GET", "/access-requests/inbox?status=pending", owner, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 inbox, got %d", st)
		}
		var inbox []map[string]any
		mustDecode(t, body, &inbox)
		if len(inbox) != 1 {
			t.Fatalf("expected 1 pending in inbox, got %d", len(inbox))
		}

		if st, _ := doReq(t, ts.URL, "POST", fmt.Sprintf("/access-requests/%d/approve", ar.ID), owner, map[string]any{"allow_minutes": 200_000_000_000}); st != http.StatusBadRequest {
			t.Fatalf("expected 400 for oversized window, got %d", st)
		}

		st, body = doReq(t, ts.URL, "POST", fmt.Sprintf("/access-requests/%d/approve", ar.ID), owner, map[string]any{"allow_minutes": 30})
		if st != http.StatusOK {
			t.Fatalf("expected 200 approving, got %d body=%s", st, string(body))
		}
		mustDecode(t, body, &ar)
		if ar.Status != "approved" || !ar.Active {
			t.Fatalf("unexpected approval: %+v", ar)
		}
	}

	// 5) Con el grant vigente puede editar
	{
		st, body := doReq(t, ts.URL, "PATCH", deptPath, other, map[string]any{"description": "cierre"})
		if st != http.StatusOK {
			t.Fatalf("expected 200 editing with grant, got %d body=%s", st, string(body))
		}
	}

	// 6) Vencido el grant vuelve a 403
	clock.Advance(31 * time.Minute)
	{
		st, _ := doReq(t, ts.URL, "PATCH", deptPath, other, map[string]any{"description": "tarde"})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 after expiry, got %d", st)
		}
	}

	// 7) Sin header => 401
	{
		st, _ := doReq(t, ts.URL, "PATCH", deptPath, "", map[string]any{"description": "x"})
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 without X-Admin-Id, got %d", st)
		}
	}
}

func TestHTTP_UnownedResourceIsAdopted(t *testing.T) {
	ts, _ := newServer(t)

	// Postulación pública: sin header queda sin owner.
	var cand struct {
		ID           int64  `json:"id"`
		Code         string `json:"code"`
		OwnerAdminID string `json:"owner_admin_id"`
	}
	st, body := doReq(t, ts.URL, "POST", "/candidates", "", map[string]any{"full_name": "Lucía Gómez"})
	if st != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", st, string(body))
	}
	mustDecode(t, body, &cand)
	if cand.OwnerAdminID != "" {
		t.Fatalf("expected unowned candidate, got %q", cand.OwnerAdminID)
	}

	path := "/candidates/" + cand.Code
	if st, body := doReq(t, ts.URL, "PATCH", path, "admin-3", map[string]any{"notes": "referida"}); st != http.StatusOK {
		t.Fatalf("expected first editor to adopt, got %d body=%s", st, string(body))
	}
	if st, _ := doReq(t, ts.URL, "PATCH", path, "admin-4", map[string]any{"notes": "otra"}); st != http.StatusForbidden {
		t.Fatalf("expected 403 for second admin, got %d", st)
	}
	// Owner sin distinguir mayúsculas.
	if st, _ := doReq(t, ts.URL, "PATCH", path, "ADMIN-3", map[string]any{"notes": "ok"}); st != http.StatusOK {
		t.Fatalf("expected owner match ignoring case, got %d", st)
	}

	// Pedir acceso a un recurso propio es inválido.
	if st, _ := doReq(t, ts.URL, "POST", "/access-requests", "admin-3", map[string]any{"resource_type": "Candidate", "resource_id": cand.Code}); st != http.StatusBadRequest {
		t.Fatalf("expected 400 requesting own resource, got %d", st)
	}
	// Recurso inexistente => 404.
	if st, _ := doReq(t, ts.URL, "POST", "/access-requests", "admin-4", map[string]any{"resource_type": "Employee", "resource_id": "E-999"}); st != http.StatusNotFound {
		t.Fatalf("expected 404 for missing resource, got %d", st)
	}
}

func TestHTTP_Health(t *testing.T) {
	ts, _ := newServer(t)
	if st, _ := doReq(t, ts.URL, "GET", "/health", "", nil); st != http.StatusOK {
		t.Fatalf("expected 200, got %d", st)
	}
}

func mustDecode(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("json decode: %v body=%s", err, string(body))
	}
}

func doReq(t *testing.T, baseURL, method, path, adminID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if adminID != "" {
		req.Header.Set("X-Admin-Id", adminID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
