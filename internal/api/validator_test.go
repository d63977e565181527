package api

import "testing"

func TestValidateSymbol(t *testing.T) {
	v := NewValidator()

	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"AAPL", "AAPL", false},
		{"aapl", "AAPL", false},
		{" brk.b ", "BRK.B", false},
		{"", "", true},
		{"TOO-LONG-SYMBOL", "", true},
		{"BAD SYMBOL", "", true},
	}

	for _, tc := range cases {
		got, err := v.ValidateSymbol(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestValidateOrder(t *testing.T) {
	v := NewValidator()

	valid := OrderRequest{Side: "buy", Symbol: "aapl", Quantity: 10, Price: 150}
	if err := v.ValidateOrder(&valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if valid.Symbol != "AAPL" {
		t.Errorf("symbol must be normalized, got %q", valid.Symbol)
	}

	// Zero price means "execute at the live quote".
	market := OrderRequest{Side: "sell", Symbol: "AAPL", Quantity: 1}
	if err := v.ValidateOrder(&market); err != nil {
		t.Errorf("zero price must be accepted: %v", err)
	}

	bad := []OrderRequest{
		{Side: "short", Symbol: "AAPL", Quantity: 1},
		{Side: "buy", Symbol: "", Quantity: 1},
		{Side: "buy", Symbol: "AAPL", Quantity: 0},
		{Side: "buy", Symbol: "AAPL", Quantity: -2},
		{Side: "buy", Symbol: "AAPL", Quantity: 1, Price: -1},
	}
	for i, req := range bad {
		req := req
		if err := v.ValidateOrder(&req); err == nil {
			t.Errorf("case %d: expected error for %+v", i, req)
		}
	}
}
