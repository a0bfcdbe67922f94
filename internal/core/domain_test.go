package core

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestStatus_Valid(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   bool
	}{
		{"pendiente", StatusPendiente, true},
		{"pagado", StatusPagado, true},
		{"vencido", StatusVencido, true},
		{"empty", Status(""), false},
		{"unknown", Status("paid"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Valid(); got != tt.want {
				t.Errorf("Status(%q).Valid() = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(2025, 3, 14)
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"2025-03-14"` {
		t.Errorf("marshal = %s, want %q", raw, "2025-03-14")
	}

	var back Date
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Errorf("round trip = %v, want %v", back, d)
	}
}

func TestDate_UnmarshalOptional(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"null", `null`},
		{"empty string", `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			if err := json.Unmarshal([]byte(tt.raw), &d); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.raw, err)
			}
			if !d.IsZero() {
				t.Errorf("unmarshal %s = %v, want zero date", tt.raw, d)
			}
		})
	}
}

func TestTransaction_Normalize(t *testing.T) {
	tx := Transaction{Description: "  Renta  "}
	tx.Normalize()

	if tx.PaymentStatus != StatusPendiente {
		t.Errorf("PaymentStatus = %q, want %q", tx.PaymentStatus, StatusPendiente)
	}
	if tx.Type != TypeGasto {
		t.Errorf("Type = %q, want %q", tx.Type, TypeGasto)
	}
	if tx.Description != "Renta" {
		t.Errorf("Description = %q, want %q", tx.Description, "Renta")
	}
}

func TestCalendarDay_Normalize(t *testing.T) {
	day := CalendarDay{
		Transactions: []Transaction{{Description: "Luz"}},
		DueDates:     []DueItem{{Description: "Internet"}},
	}
	day.Normalize()

	if day.Transactions[0].PaymentStatus != StatusPendiente {
		t.Errorf("transaction status = %q, want %q", day.Transactions[0].PaymentStatus, StatusPendiente)
	}
	if day.DueDates[0].Status != StatusPendiente {
		t.Errorf("due item status = %q, want %q", day.DueDates[0].Status, StatusPendiente)
	}
}

func TestHolding_FeedKey(t *testing.T) {
	tests := []struct {
		name    string
		holding Holding
		want    string
	}{
		{"default mapping", Holding{Symbol: "LINK"}, "chainlink"},
		{"explicit override", Holding{Symbol: "LINK", FeedID: "link-custom"}, "link-custom"},
		{"unmapped symbol", Holding{Symbol: "ZZZ"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.holding.FeedKey(); got != tt.want {
				t.Errorf("FeedKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadHoldings(t *testing.T) {
	t.Run("empty path falls back to defaults", func(t *testing.T) {
		holdings, err := LoadHoldings("")
		if err != nil {
			t.Fatalf("LoadHoldings: %v", err)
		}
		if len(holdings) == 0 {
			t.Fatal("default holdings are empty")
		}
	})

	t.Run("reads holdings from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "holdings.json")
		payload := `[{"symbol": "LINK", "amount": "4.174", "avg_buy_price": "24.38"}]`
		if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
			t.Fatal(err)
		}

		holdings, err := LoadHoldings(path)
		if err != nil {
			t.Fatalf("LoadHoldings: %v", err)
		}
		if len(holdings) != 1 || holdings[0].Symbol != "LINK" {
			t.Errorf("holdings = %+v, want single LINK entry", holdings)
		}
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "holdings.json")
		payload := `[{"symbol": "LINK", "amount": "-1", "avg_buy_price": "24.38"}]`
		if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadHoldings(path); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("LoadHoldings error = %v, want ErrInvalidAmount", err)
		}
	})
}
