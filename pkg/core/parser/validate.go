package parser

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"filingpipe/pkg/core/filing"
)

// Validate checks extracted data against the filing type's schema. Strict
// mode runs full JSON-Schema validation and reports every violation.
// Non-strict mode validates only the schema fields actually present in the
// data and then requires the minimum viable shape: company present, summary
// optional. The minimum check is intentionally this lenient for every filing
// type - callers depend on it.
func Validate(data any, t filing.Type, strict bool) ValidationResult {
	obj, ok := data.(map[string]any)
	if !ok {
		return ValidationResult{Valid: false, Errors: []string{"extracted payload is not a JSON object"}}
	}

	sch := filing.SchemaFor(t)
	if strict {
		return validateStrict(obj, sch)
	}
	return validateLenient(obj, sch)
}

func validateStrict(obj map[string]any, sch *filing.Schema) ValidationResult {
	compiled, err := sch.Compiled()
	if err != nil {
		return ValidationResult{Valid: false, Errors: []string{err.Error()}}
	}

	if err := compiled.Validate(map[string]any(obj)); err != nil {
		return ValidationResult{Valid: false, Errors: flattenSchemaError(err)}
	}
	return ValidationResult{Valid: true, ValidatedData: obj}
}

func flattenSchemaError(err error) []string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}

	var msgs []string
	for _, unit := range ve.BasicOutput().Errors {
		if unit.Error == "" || strings.HasPrefix(unit.Error, "doesn't validate with") {
			continue
		}
		loc := unit.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		msgs = append(msgs, fmt.Sprintf("%s: %s", loc, unit.Error))
	}
	if len(msgs) == 0 {
		msgs = []string{ve.Error()}
	}
	return msgs
}

// validateLenient runs the partial-schema check (only fields present in the
// data) followed by the minimum-fields check.
func validateLenient(obj map[string]any, sch *filing.Schema) ValidationResult {
	var errs []string
	for key, val := range obj {
		spec, known := sch.Field(key)
		if !known {
			continue
		}
		if !kindMatches(val, spec.Kind) {
			errs = append(errs, fmt.Sprintf("field %q: expected %s, got %s", key, spec.Kind, describeKind(val)))
		}
	}

	if company, ok := obj["company"].(string); !ok || strings.TrimSpace(company) == "" {
		errs = append(errs, "missing minimum required field: company")
	}

	if len(errs) > 0 {
		return ValidationResult{Valid: false, Errors: errs}
	}
	return ValidationResult{Valid: true, ValidatedData: obj}
}

// ExtractPartialFields keeps whichever individual top-level fields satisfy
// the schema's per-field type. Fields with no matching schema entry are kept
// verbatim.
func ExtractPartialFields(obj map[string]any, t filing.Type) map[string]any {
	sch := filing.SchemaFor(t)
	out := make(map[string]any)
	for key, val := range obj {
		spec, known := sch.Field(key)
		if !known {
			out[key] = val
			continue
		}
		if kindMatches(val, spec.Kind) {
			out[key] = val
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func kindMatches(v any, k filing.FieldKind) bool {
	switch k {
	case filing.KindString:
		_, ok := v.(string)
		return ok
	case filing.KindNumber:
		switch v.(type) {
		case float64, int, int64:
			return true
		}
		return false
	case filing.KindBoolean:
		_, ok := v.(bool)
		return ok
	case filing.KindArray:
		_, ok := v.([]any)
		return ok
	case filing.KindObject:
		_, ok := v.(map[string]any)
		return ok
	default:
		return false
	}
}

func describeKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64, int, int64:
		return "number"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
