package parser

import (
	"strings"
	"testing"

	"filingpipe/pkg/core/filing"
)

func TestValidate_Strict_Valid(t *testing.T) {
	data := map[string]any{
		"company": "Acme Corp",
		"summary": "Solid quarter.",
		"financials": []any{
			map[string]any{"metric": "Revenue", "value": 1000000.0},
		},
	}

	vr := Validate(data, filing.Type10K, true)
	if !vr.Valid {
		t.Fatalf("expected valid, got errors: %v", vr.Errors)
	}
	if vr.ValidatedData == nil {
		t.Error("expected validated data to be set")
	}
}

func TestValidate_Strict_MissingRequired(t *testing.T) {
	data := map[string]any{"company": "Acme Corp"}

	vr := Validate(data, filing.Type10K, true)
	if vr.Valid {
		t.Fatal("expected invalid: summary and financials are required")
	}
	if len(vr.Errors) == 0 {
		t.Fatal("expected at least one validation error")
	}
}

func TestValidate_Lenient_MinimumShape(t *testing.T) {
	// Only company is required in lenient mode, for every filing type.
	data := map[string]any{"company": "Acme Corp"}

	for _, ft := range filing.All() {
		vr := Validate(data, ft, false)
		if !vr.Valid {
			t.Errorf("%s: expected lenient validation to pass, got %v", ft, vr.Errors)
		}
	}
}

func TestValidate_Lenient_MissingCompany(t *testing.T) {
	vr := Validate(map[string]any{"summary": "text"}, filing.Type10K, false)
	if vr.Valid {
		t.Fatal("expected invalid without company")
	}
	found := false
	for _, e := range vr.Errors {
		if strings.Contains(e, "company") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a company error, got %v", vr.Errors)
	}
}

func TestValidate_Lenient_WrongFieldType(t *testing.T) {
	data := map[string]any{
		"company":    "Acme Corp",
		"financials": "should be an array",
	}

	vr := Validate(data, filing.Type10K, false)
	if vr.Valid {
		t.Fatal("expected invalid: financials has the wrong type")
	}
}

func TestValidate_Lenient_UnknownFieldIgnored(t *testing.T) {
	data := map[string]any{
		"company":      "Acme Corp",
		"customNotes":  "anything goes",
		"randomNumber": 7.0,
	}

	vr := Validate(data, filing.Type10K, false)
	if !vr.Valid {
		t.Errorf("expected unknown fields to be ignored, got %v", vr.Errors)
	}
}

func TestValidate_NotAnObject(t *testing.T) {
	vr := Validate([]any{"a", "b"}, filing.Type10K, false)
	if vr.Valid {
		t.Fatal("expected invalid for non-object payload")
	}
}

func TestExtractPartialFields(t *testing.T) {
	data := map[string]any{
		"company":    "Acme Corp",
		"financials": "wrong type, dropped",
		"risks":      []any{"competition"},
		"custom":     "kept verbatim",
	}

	partial := ExtractPartialFields(data, filing.Type10K)
	if partial == nil {
		t.Fatal("expected a partial map")
	}
	if partial["company"] != "Acme Corp" {
		t.Errorf("expected company kept, got %v", partial["company"])
	}
	if _, present := partial["financials"]; present {
		t.Error("expected mistyped financials to be dropped")
	}
	if _, present := partial["risks"]; !present {
		t.Error("expected risks kept")
	}
	if partial["custom"] != "kept verbatim" {
		t.Errorf("expected unknown field kept, got %v", partial["custom"])
	}
}

func TestExtractPartialFields_NothingUsable(t *testing.T) {
	data := map[string]any{
		"company": 42.0, // wrong type
	}
	if partial := ExtractPartialFields(data, filing.Type10K); partial != nil {
		t.Errorf("expected nil for nothing usable, got %v", partial)
	}
}
