package parser

import (
	"testing"
)

func TestRepairJSON_TrailingComma(t *testing.T) {
	got := RepairJSON(`{"a": 1, "b": 2,}`)
	want := `{"a": 1, "b": 2}`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRepairJSON_Cases(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"unquoted keys", `{a: 1, b: 2}`, `{"a": 1, "b": 2}`},
		{"single quotes", `{'name': 'Acme'}`, `{"name": "Acme"}`},
		{"bare identifier value", `{"status": pending}`, `{"status": "pending"}`},
		{"literals untouched", `{"ok": true, "missing": null}`, `{"ok": true, "missing": null}`},
		{"trailing comma in array", `{"xs": [1, 2,]}`, `{"xs": [1, 2]}`},
		{"control characters stripped", "{\"a\": \"x\x01y\"}", `{"a": "xy"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RepairJSON(tc.input); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestParseRepaired(t *testing.T) {
	v, repaired, ok := parseRepaired(`{"a": 1,}`)
	if !ok {
		t.Fatal("expected repair to succeed")
	}
	if repaired != `{"a": 1}` {
		t.Errorf("expected repaired text %q, got %q", `{"a": 1}`, repaired)
	}
	obj, isObj := v.(map[string]any)
	if !isObj || obj["a"] != float64(1) {
		t.Errorf("unexpected parsed value: %v", v)
	}
}

func TestParseRepaired_UnquotedKeys(t *testing.T) {
	v, _, ok := parseRepaired(`{company: "Acme", year: 2023}`)
	if !ok {
		t.Fatal("expected repair to succeed")
	}
	obj := v.(map[string]any)
	if obj["company"] != "Acme" {
		t.Errorf("expected company 'Acme', got %v", obj["company"])
	}
}
