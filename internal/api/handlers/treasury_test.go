package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/alexmabud/flowdash-backend/internal/model"
	"github.com/alexmabud/flowdash-backend/internal/testutil"
)

func TestTreasuryHandler_Snapshot(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewTreasuryHandler(testutil.NewTestTreasuryService(t, db))

	testutil.NewSnapshot("2026-02-09").WithTill(200, 50).Build(t, db)

	t.Run("rolls forward onto the requested date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/treasury/snapshot?date=2026-02-10", nil)
		w := httptest.NewRecorder()

		handler.Snapshot(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.CashPositionSnapshot
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if !response.TillBalance.Equal(decimal.NewFromInt(200)) {
			t.Errorf("Expected till 200, got %s", response.TillBalance)
		}
	})

	t.Run("returns 400 on a malformed date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/treasury/snapshot?date=not-a-date", nil)
		w := httptest.NewRecorder()

		handler.Snapshot(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTreasuryHandler_BankTransfer(t *testing.T) {
	setupHandler := func(t *testing.T) (*TreasuryHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		ts := testutil.NewTestTreasuryService(t, db)
		return NewTreasuryHandler(ts), db
	}

	postTransfer := func(t *testing.T, handler *TreasuryHandler, payload map[string]any) *httptest.ResponseRecorder {
		t.Helper()
		body, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal payload: %v", err)
		}
		req := httptest.NewRequest(http.MethodPost, "/api/treasury/bank-transfer", bytes.NewReader(body))
		w := httptest.NewRecorder()
		handler.BankTransfer(w, req)
		return w
	}

	t.Run("transfers between accounts and returns 201", func(t *testing.T) {
		handler, db := setupHandler(t)
		testutil.SeedBankBalance(t, db, "2026-02-09", "Banco A", 100)

		w := postTransfer(t, handler, map[string]any{
			"date":        "2026-02-10",
			"amount":      40,
			"fromAccount": "Banco A",
			"toAccount":   "Banco B",
			"user":        "tester",
		})

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var response model.TransferResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.PairMovementID == 0 {
			t.Error("Expected a paired movement id")
		}
	})

	t.Run("returns 400 when both accounts match", func(t *testing.T) {
		handler, _ := setupHandler(t)

		w := postTransfer(t, handler, map[string]any{
			"date":        "2026-02-10",
			"amount":      40,
			"fromAccount": "Banco A",
			"toAccount":   "Banco A",
			"user":        "tester",
		})

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 409 on insufficient funds", func(t *testing.T) {
		handler, db := setupHandler(t)
		testutil.SeedBankBalance(t, db, "2026-02-09", "Banco A", 10)

		w := postTransfer(t, handler, map[string]any{
			"date":        "2026-02-10",
			"amount":      40,
			"fromAccount": "Banco A",
			"toAccount":   "Banco B",
			"user":        "tester",
		})

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTreasuryHandler_BankBalances(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewTreasuryHandler(testutil.NewTestTreasuryService(t, db))

	testutil.SeedBankBalance(t, db, "2026-02-09", "Banco A", 100)
	testutil.SeedBankBalance(t, db, "2026-02-10", "Banco B", 50)

	req := httptest.NewRequest(http.MethodGet, "/api/treasury/bank-balances?date=2026-02-10", nil)
	w := httptest.NewRecorder()

	handler.BankBalances(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var response []model.BankBalance
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&response)

	if len(response) != 2 {
		t.Errorf("Expected 2 accounts, got %d", len(response))
	}
}
