package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func passThrough(c *fiber.Ctx) error { return c.Next() }

func TestExportEmptySlot(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/storage"), NewMemorySlot(), nil, passThrough)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/storage/export", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("export status: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "[]" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestImportThenExport(t *testing.T) {
	slot := NewMemorySlot()
	reloaded := false
	app := fiber.New()
	RegisterRoutes(app.Group("/storage"), slot, func(context.Context) error {
		reloaded = true
		return nil
	}, passThrough)

	payload := `[{"id":"a","createdAt":"2026-04-14T08:00:00Z","coords":[39,-12],"distance":5,"duration":25,"kind":"running","cadence":170,"interactionCount":0}]`
	req := httptest.NewRequest(http.MethodPut, "/storage/import", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("import status: %v", err)
	}
	if !reloaded {
		t.Fatalf("expected reload after import")
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/storage/export", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("export status: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != payload {
		t.Fatalf("unexpected export %q", body)
	}
}

func TestImportRejectsInvalidBody(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/storage"), NewMemorySlot(), nil, passThrough)

	req := httptest.NewRequest(http.MethodPut, "/storage/import", bytes.NewBufferString(`{"id":"a"}`))
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request")
	}
}

func TestImportRejectsRecordsSkippedOnLoad(t *testing.T) {
	cases := map[string]string{
		"unknown kind":  `[{"id":"a","createdAt":"2026-04-14T08:00:00Z","coords":[39,-12],"distance":5,"duration":25,"kind":"swimming","interactionCount":0}]`,
		"zero cadence":  `[{"id":"a","createdAt":"2026-04-14T08:00:00Z","coords":[39,-12],"distance":5,"duration":25,"kind":"running","cadence":0,"interactionCount":0}]`,
		"duplicate ids": `[{"id":"a","createdAt":"2026-04-14T08:00:00Z","coords":[39,-12],"distance":5,"duration":25,"kind":"running","cadence":170,"interactionCount":0},{"id":"a","createdAt":"2026-04-14T08:00:00Z","coords":[39,-12],"distance":9,"duration":25,"kind":"cycling","elevationGain":3,"interactionCount":0}]`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			slot := NewMemorySlot()
			app := fiber.New()
			RegisterRoutes(app.Group("/storage"), slot, nil, passThrough)

			req := httptest.NewRequest(http.MethodPut, "/storage/import", bytes.NewBufferString(payload))
			resp, err := app.Test(req)
			if err != nil || resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected bad request")
			}
			if _, ok, _ := slot.Get(context.Background()); ok {
				t.Fatalf("rejected import must not touch the slot")
			}
		})
	}
}

func TestImportReloadError(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/storage"), NewMemorySlot(), func(context.Context) error {
		return errQuery
	}, passThrough)

	req := httptest.NewRequest(http.MethodPut, "/storage/import", bytes.NewBufferString(`[]`))
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected reload error status")
	}
}
