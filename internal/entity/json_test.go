package entity

import (
	"encoding/json"
	"testing"
)

func TestJSONUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"object", `{"a":1}`, `{"a":1}`, false},
		{"array", `[{"q":"why"}]`, `[{"q":"why"}]`, false},
		{"string-encoded object", `"{\"a\":1}"`, `{"a":1}`, false},
		{"string-encoded array", `"[1,2,3]"`, `[1,2,3]`, false},
		{"null", `null`, ``, false},
		{"empty string", `""`, ``, false},
		{"string with garbage", `"not json"`, ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var j JSON
			err := json.Unmarshal([]byte(tt.input), &j)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && string(j) != tt.want {
				t.Errorf("Unmarshal(%q) = %q, want %q", tt.input, string(j), tt.want)
			}
		})
	}
}

func TestJSONUnmarshalParam(t *testing.T) {
	var j JSON
	if err := j.UnmarshalParam(`{"theme":"dark"}`); err != nil {
		t.Fatalf("UnmarshalParam returned error: %v", err)
	}
	if string(j) != `{"theme":"dark"}` {
		t.Errorf("got %q", string(j))
	}

	if err := j.UnmarshalParam("not json"); err == nil {
		t.Error("expected error for invalid form value")
	}

	if err := j.UnmarshalParam(""); err != nil {
		t.Fatalf("empty param should not error: %v", err)
	}
	if j != nil {
		t.Error("empty param should reset the value to nil")
	}
}

func TestJSONValueAndScan(t *testing.T) {
	var j JSON
	if err := j.Scan([]byte(`{"a":1}`)); err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	v, err := j.Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}
	if v != `{"a":1}` {
		t.Errorf("Value() = %v, want %q", v, `{"a":1}`)
	}

	var empty JSON
	v, err = empty.Value()
	if err != nil {
		t.Fatalf("Value on empty returned error: %v", err)
	}
	if v != nil {
		t.Errorf("empty JSON should store NULL, got %v", v)
	}
}

func TestJSONMarshal(t *testing.T) {
	out, err := json.Marshal(JSON(`{"a":1}`))
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(out) != `{"a":1}` {
		t.Errorf("Marshal = %s", out)
	}

	out, err = json.Marshal(JSON(nil))
	if err != nil {
		t.Fatalf("Marshal nil returned error: %v", err)
	}
	if string(out) != "null" {
		t.Errorf("Marshal nil = %s, want null", out)
	}
}
