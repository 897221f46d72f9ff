package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestList_ReturnsCopy(t *testing.T) {
	cat := New()
	defs := cat.List()
	if len(defs) == 0 {
		t.Fatal("expected built-in definitions")
	}
	if defs[0].Name != "Hemoglobin" {
		t.Errorf("expected display order to start with Hemoglobin, got %s", defs[0].Name)
	}

	defs[0].Name = "Tampered"
	if again := cat.List(); again[0].Name != "Hemoglobin" {
		t.Error("expected List to hand out a copy")
	}
}

func TestLookup(t *testing.T) {
	cat := New()

	def, ok := cat.Lookup("glucose")
	if !ok {
		t.Fatal("expected case-insensitive match")
	}
	if def.ReferenceRange != "70-100" || def.Unit != "mg/dL" {
		t.Errorf("unexpected definition: %+v", def)
	}

	if _, ok := cat.Lookup("Midichlorians"); ok {
		t.Error("expected no match for unknown test")
	}
}

func TestHandler(t *testing.T) {
	e := echo.New()
	NewHandler(New()).RegisterRoutes(e.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/lab-definitions", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var defs []LabDefinition
	if err := json.Unmarshal(rec.Body.Bytes(), &defs); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(defs) != len(New().List()) {
		t.Errorf("expected full catalog, got %d entries", len(defs))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/lab-definitions/tsh", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var def LabDefinition
	json.Unmarshal(rec.Body.Bytes(), &def)
	if def.Name != "TSH" || def.Unit != "mIU/L" {
		t.Errorf("unexpected definition: %+v", def)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/lab-definitions/unknown", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
