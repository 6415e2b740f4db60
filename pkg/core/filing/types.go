// Package filing owns the closed set of supported SEC filing types and the
// per-type validation schemas. Dispatch over filing types is always an
// exhaustive switch - Generic is an explicit arm, never an accidental
// fallthrough from an unchecked map lookup.
package filing

import "strings"

// Type is a supported SEC form. The set is closed; callers supply the
// classification, this package never infers it from document content.
type Type string

const (
	Type10K     Type = "10-K"
	Type10Q     Type = "10-Q"
	Type8K      Type = "8-K"
	Type20F     Type = "20-F"
	Type6K      Type = "6-K"
	TypeS1      Type = "S-1"
	TypeS4      Type = "S-4"
	Type424B    Type = "424B"
	TypeDEF14A  Type = "DEF 14A"
	TypeForm4   Type = "4"
	TypeGeneric Type = "Generic"
)

// All lists every supported type, Generic last.
func All() []Type {
	return []Type{Type10K, Type10Q, Type8K, Type20F, Type6K, TypeS1, TypeS4, Type424B, TypeDEF14A, TypeForm4, TypeGeneric}
}

// ParseType maps a raw SEC form string to a Type. Amendments ("10-K/A") map
// to their base form; anything unrecognized maps to Generic explicitly.
func ParseType(s string) Type {
	form := strings.ToUpper(strings.TrimSpace(s))
	form = strings.TrimSuffix(form, "/A")

	switch form {
	case "10-K":
		return Type10K
	case "10-Q":
		return Type10Q
	case "8-K":
		return Type8K
	case "20-F":
		return Type20F
	case "6-K":
		return Type6K
	case "S-1":
		return TypeS1
	case "S-4":
		return TypeS4
	case "DEF 14A", "DEFA14A":
		return TypeDEF14A
	case "4":
		return TypeForm4
	default:
		// 424B comes in subtype flavors (424B1..424B5).
		if strings.HasPrefix(form, "424B") {
			return Type424B
		}
		return TypeGeneric
	}
}

func (t Type) String() string { return string(t) }

// IsFinancialReport reports whether the type uses the financial-report schema
// family (periodic reports with financials/risks sections).
func (t Type) IsFinancialReport() bool {
	switch t {
	case Type10K, Type10Q, Type20F, Type6K:
		return true
	default:
		return false
	}
}

// IsRegistration reports whether the type is a securities registration.
func (t Type) IsRegistration() bool {
	return t == TypeS1 || t == TypeS4
}
