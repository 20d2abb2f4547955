package callbacks

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantName string
		wantArgs map[string]string
	}{
		{
			name:     "bare name",
			data:     "wallet",
			wantName: "wallet",
			wantArgs: map[string]string{},
		},
		{
			name:     "single argument",
			data:     "accept_transaction?id=42",
			wantName: "accept_transaction",
			wantArgs: map[string]string{"id": "42"},
		},
		{
			name:     "multiple arguments",
			data:     "buy_tpl?id=3&vpn=1",
			wantName: "buy_tpl",
			wantArgs: map[string]string{"id": "3", "vpn": "1"},
		},
		{
			name:     "empty query part",
			data:     "buy?",
			wantName: "buy",
			wantArgs: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, err := Parse(tt.data)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.data, err)
			}
			if cb.Name != tt.wantName {
				t.Errorf("name = %q, want %q", cb.Name, tt.wantName)
			}
			for k, v := range tt.wantArgs {
				if got := cb.Args.Get(k); got != v {
					t.Errorf("arg %q = %q, want %q", k, got, v)
				}
			}
		})
	}
}

func TestInt64Arg(t *testing.T) {
	cb, err := Parse("service?id=17")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := cb.Int64Arg("id"); got != 17 {
		t.Errorf("Int64Arg(id) = %d, want 17", got)
	}
	if got := cb.Int64Arg("missing"); got != 0 {
		t.Errorf("Int64Arg(missing) = %d, want 0", got)
	}
}

func TestDataRoundTrip(t *testing.T) {
	data := Data("append_gb", "id", "9")

	cb, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse(%q): %v", data, err)
	}
	if cb.Name != "append_gb" || cb.Int64Arg("id") != 9 {
		t.Errorf("round trip lost data: %+v", cb)
	}
}
