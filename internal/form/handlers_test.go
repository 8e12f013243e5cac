package form

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"backend-mapty/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

func newHandlerApp(t *testing.T) (*fiber.App, fixture) {
	t.Helper()
	f := newFixture(t)
	app := fiber.New()
	RegisterRoutes(app, f.ctrl, f.store, func(c *fiber.Ctx) error { return c.Next() })
	return app, f
}

func send(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func TestCreateWorkoutRoute(t *testing.T) {
	app, f := newHandlerApp(t)

	resp := send(t, app, http.MethodPost, "/workouts", Input{Type: "running", Distance: "5.2", Duration: "24", Cadence: "178"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected conflict without an open form, got %d", resp.StatusCode)
	}

	if err := f.ctrl.MapClicked(geo.Coords{39, -12}); err != nil {
		t.Fatalf("map click: %v", err)
	}
	resp = send(t, app, http.MethodPost, "/workouts", Input{Type: "running", Distance: "-1", Duration: "24", Cadence: "178"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}

	resp = send(t, app, http.MethodPost, "/workouts", Input{Type: "running", Distance: "5.2", Duration: "24", Cadence: "178"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected created, got %d", resp.StatusCode)
	}
	var body struct {
		Workout struct {
			ID   string  `json:"id"`
			Pace float64 `json:"pace"`
		} `json:"workout"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Workout.ID == "" || body.Workout.Pace < 4.6 || body.Workout.Pace > 4.62 {
		t.Fatalf("unexpected workout %+v", body.Workout)
	}

	resp = send(t, app, http.MethodGet, "/workouts/"+body.Workout.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected workout lookup, got %d", resp.StatusCode)
	}
	resp = send(t, app, http.MethodGet, "/workouts/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found, got %d", resp.StatusCode)
	}
}

func TestEditAndDeleteRoutes(t *testing.T) {
	app, f := newHandlerApp(t)
	w := f.create(t, geo.Coords{39, -12}, Input{Type: "running", Distance: "5.2", Duration: "24", Cadence: "178"})
	id := w.Common().ID

	resp := send(t, app, http.MethodPost, "/workouts/"+id+"/edit", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("open edit status %d", resp.StatusCode)
	}
	var snap Snapshot
	_ = json.NewDecoder(resp.Body).Decode(&snap)
	if snap.State != StateEditPending || snap.EditID != id {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	resp = send(t, app, http.MethodPost, "/workouts/other/close", nil)
	_ = json.NewDecoder(resp.Body).Decode(&snap)
	if snap.State != StateEditPending || snap.EditID != id {
		t.Fatalf("closing another workout must keep the edit form, got %+v", snap)
	}

	resp = send(t, app, http.MethodPut, "/workouts/"+id, Input{Distance: "5.2", Duration: "30", Cadence: "178"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("edit status %d", resp.StatusCode)
	}

	resp = send(t, app, http.MethodPost, "/workouts/"+id+"/select", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("select status %d", resp.StatusCode)
	}

	resp = send(t, app, http.MethodDelete, "/workouts/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
	var deleted struct {
		Removed bool `json:"removed"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&deleted)
	if !deleted.Removed || f.store.Len() != 0 {
		t.Fatalf("expected workout removed")
	}

	resp = send(t, app, http.MethodDelete, "/workouts/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second delete status %d", resp.StatusCode)
	}
}

func TestListSortAndReset(t *testing.T) {
	app, f := newHandlerApp(t)
	f.create(t, geo.Coords{1, 1}, Input{Type: "running", Distance: "10", Duration: "50", Cadence: "170"})
	f.create(t, geo.Coords{2, 2}, Input{Type: "cycling", Distance: "3", Duration: "60", Elevation: "0"})

	resp := send(t, app, http.MethodGet, "/workouts?sort=distance", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status %d", resp.StatusCode)
	}
	var list []struct {
		Distance float64 `json:"distance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 || list[0].Distance != 3 {
		t.Fatalf("unexpected order %+v", list)
	}

	if resp := send(t, app, http.MethodGet, "/workouts?sort=calories", nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for unknown sort field")
	}

	if resp := send(t, app, http.MethodDelete, "/workouts", nil); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("reset status %d", resp.StatusCode)
	}
	if f.store.Len() != 0 {
		t.Fatalf("expected empty store")
	}
}

func TestFormKindAndCancelRoutes(t *testing.T) {
	app, f := newHandlerApp(t)

	if resp := send(t, app, http.MethodPost, "/form/kind", map[string]string{"type": "rowing"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request for unknown kind")
	}
	if resp := send(t, app, http.MethodPost, "/form/kind", map[string]string{"type": "cycling"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("kind status %d", resp.StatusCode)
	}
	if f.ctrl.Snapshot().Kind != "cycling" {
		t.Fatalf("expected cycling selected")
	}

	_ = f.ctrl.MapClicked(geo.Coords{1, 1})
	if resp := send(t, app, http.MethodPost, "/form/cancel", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel status %d", resp.StatusCode)
	}
	resp := send(t, app, http.MethodGet, "/form", nil)
	var snap Snapshot
	_ = json.NewDecoder(resp.Body).Decode(&snap)
	if snap.State != StateIdle {
		t.Fatalf("expected idle after cancel")
	}
}
