package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexmabud/flowdash-backend/internal/model"
	"github.com/alexmabud/flowdash-backend/internal/testutil"
)

func TestObligationHandler_ScheduleBoleto(t *testing.T) {
	setupHandler := func(t *testing.T) (*ObligationHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		os := testutil.NewTestObligationService(t, db)
		return NewObligationHandler(os), db
	}

	postBoleto := func(t *testing.T, handler *ObligationHandler, payload map[string]any) *httptest.ResponseRecorder {
		t.Helper()
		body, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal payload: %v", err)
		}
		req := httptest.NewRequest(http.MethodPost, "/api/obligation/boleto", bytes.NewReader(body))
		w := httptest.NewRecorder()
		handler.ScheduleBoleto(w, req)
		return w
	}

	t.Run("schedules installments and returns 201", func(t *testing.T) {
		handler, _ := setupHandler(t)

		w := postBoleto(t, handler, map[string]any{
			"purchaseDate": "2026-01-05",
			"totalAmount":  300,
			"installments": 3,
			"firstDueDate": "2026-02-10",
			"creditor":     "ACME",
			"user":         "tester",
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response model.ScheduleResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response.InstallmentIDs) != 3 {
			t.Errorf("Expected 3 installments, got %d", len(response.InstallmentIDs))
		}
		if response.ObligationID == 0 {
			t.Error("Expected an obligation id")
		}
	})

	t.Run("replay returns 200", func(t *testing.T) {
		handler, _ := setupHandler(t)

		payload := map[string]any{
			"purchaseDate": "2026-01-05",
			"totalAmount":  300,
			"installments": 3,
			"firstDueDate": "2026-02-10",
			"creditor":     "ACME",
			"user":         "tester",
		}

		first := postBoleto(t, handler, payload)
		if first.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", first.Code, first.Body.String())
		}

		second := postBoleto(t, handler, payload)
		if second.Code != http.StatusOK {
			t.Fatalf("Expected 200 on replay, got %d: %s", second.Code, second.Body.String())
		}
	})

	t.Run("returns 400 on validation failure", func(t *testing.T) {
		handler, _ := setupHandler(t)

		w := postBoleto(t, handler, map[string]any{
			"purchaseDate": "2026-01-05",
			"totalAmount":  300,
			"installments": 0,
			"firstDueDate": "2026-02-10",
			"creditor":     "ACME",
			"user":         "tester",
		})

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestObligationHandler_ListOpen(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewObligationHandler(testutil.NewTestObligationService(t, db))

	testutil.NewCharge().WithCreditor("ACME").WithDueDate("2026-02-10").Build(t, db)
	testutil.NewCharge().WithType(model.ObligationLoan).WithCreditor("Bank").WithDueDate("2026-02-15").Build(t, db)

	t.Run("returns all open charges", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/obligation/open", nil)
		w := httptest.NewRecorder()

		handler.ListOpen(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.ObligationEvent
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 2 {
			t.Errorf("Expected 2 open charges, got %d", len(response))
		}
	})

	t.Run("filters by type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/obligation/open?type=LOAN", nil)
		w := httptest.NewRecorder()

		handler.ListOpen(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response []model.ObligationEvent
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if len(response) != 1 {
			t.Fatalf("Expected 1 open charge, got %d", len(response))
		}
		if response[0].Creditor != "Bank" {
			t.Errorf("Expected the loan charge, got creditor %s", response[0].Creditor)
		}
	})
}
