package filing

import (
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FieldKind is the expected JSON kind of a top-level schema field.
type FieldKind string

const (
	KindString  FieldKind = "string"
	KindNumber  FieldKind = "number"
	KindBoolean FieldKind = "boolean"
	KindArray   FieldKind = "array"
	KindObject  FieldKind = "object"
)

// FieldSpec describes one top-level field of a filing schema. The field table
// drives the partial/per-field checks; strict validation uses the compiled
// JSON Schema document instead.
type FieldSpec struct {
	Name     string
	Kind     FieldKind
	Required bool
}

// Schema is the validation schema for one filing type.
type Schema struct {
	Name   string
	Fields []FieldSpec

	source   string
	compile  sync.Once
	compiled *jsonschema.Schema
	err      error
}

// Field looks up a top-level field spec by name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Compiled returns the compiled JSON Schema for strict validation, compiling
// the source document on first use.
func (s *Schema) Compiled() (*jsonschema.Schema, error) {
	s.compile.Do(func() {
		s.compiled, s.err = jsonschema.CompileString(s.Name+".schema.json", s.source)
	})
	if s.err != nil {
		return nil, fmt.Errorf("compiling %s schema: %w", s.Name, s.err)
	}
	return s.compiled, nil
}

// SchemaFor maps a filing type to its schema. The mapping is a fixed, closed
// table: 10-K/10-Q/20-F/6-K share the financial-report schema, S-1/S-4 the
// registration schema, 424B and Generic the minimal schema, Form 4 and DEF 14A
// have bespoke schemas. 8-K uses the current-event schema.
func SchemaFor(t Type) *Schema {
	switch t {
	case Type10K, Type10Q, Type20F, Type6K:
		return financialReportSchema
	case Type8K:
		return currentEventSchema
	case TypeS1, TypeS4:
		return registrationSchema
	case TypeForm4:
		return insiderTransactionSchema
	case TypeDEF14A:
		return proxySchema
	case Type424B, TypeGeneric:
		return minimalSchema
	default:
		// Type is a closed set; unknown values behave as Generic.
		return minimalSchema
	}
}

var financialReportSchema = &Schema{
	Name: "financial_report",
	Fields: []FieldSpec{
		{Name: "company", Kind: KindString, Required: true},
		{Name: "summary", Kind: KindString},
		{Name: "filingDate", Kind: KindString},
		{Name: "reportDate", Kind: KindString},
		{Name: "period", Kind: KindString},
		{Name: "financials", Kind: KindArray},
		{Name: "risks", Kind: KindArray},
		{Name: "highlights", Kind: KindArray},
		{Name: "outlook", Kind: KindString},
		{Name: "keyMetrics", Kind: KindObject},
	},
	source: `{
		"type": "object",
		"required": ["company", "summary", "financials"],
		"properties": {
			"company": {"type": "string", "minLength": 1},
			"summary": {"type": "string"},
			"filingDate": {"type": "string"},
			"reportDate": {"type": "string"},
			"period": {"type": "string"},
			"financials": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["metric"],
					"properties": {
						"metric": {"type": "string"},
						"value": {"type": ["string", "number"]},
						"growth": {"type": ["string", "number"]}
					}
				}
			},
			"risks": {"type": "array", "items": {"type": "string"}},
			"highlights": {"type": "array", "items": {"type": "string"}},
			"outlook": {"type": "string"},
			"keyMetrics": {"type": "object"}
		}
	}`,
}

var currentEventSchema = &Schema{
	Name: "current_event",
	Fields: []FieldSpec{
		{Name: "company", Kind: KindString, Required: true},
		{Name: "summary", Kind: KindString},
		{Name: "filingDate", Kind: KindString},
		{Name: "eventType", Kind: KindString},
		{Name: "eventDate", Kind: KindString},
		{Name: "items", Kind: KindArray},
		{Name: "materialImpact", Kind: KindString},
	},
	source: `{
		"type": "object",
		"required": ["company", "summary"],
		"properties": {
			"company": {"type": "string", "minLength": 1},
			"summary": {"type": "string"},
			"filingDate": {"type": "string"},
			"eventType": {"type": "string"},
			"eventDate": {"type": "string"},
			"items": {"type": "array", "items": {"type": "string"}},
			"materialImpact": {"type": "string"}
		}
	}`,
}

var registrationSchema = &Schema{
	Name: "registration",
	Fields: []FieldSpec{
		{Name: "company", Kind: KindString, Required: true},
		{Name: "summary", Kind: KindString},
		{Name: "filingDate", Kind: KindString},
		{Name: "offeringAmount", Kind: KindString},
		{Name: "useOfProceeds", Kind: KindString},
		{Name: "riskFactors", Kind: KindArray},
		{Name: "underwriters", Kind: KindArray},
	},
	source: `{
		"type": "object",
		"required": ["company", "summary"],
		"properties": {
			"company": {"type": "string", "minLength": 1},
			"summary": {"type": "string"},
			"filingDate": {"type": "string"},
			"offeringAmount": {"type": ["string", "number"]},
			"useOfProceeds": {"type": "string"},
			"riskFactors": {"type": "array", "items": {"type": "string"}},
			"underwriters": {"type": "array", "items": {"type": "string"}}
		}
	}`,
}

var insiderTransactionSchema = &Schema{
	Name: "insider_transaction",
	Fields: []FieldSpec{
		{Name: "company", Kind: KindString, Required: true},
		{Name: "summary", Kind: KindString},
		{Name: "insider", Kind: KindString},
		{Name: "insiderTitle", Kind: KindString},
		{Name: "transactions", Kind: KindArray},
		{Name: "totalValue", Kind: KindString},
	},
	source: `{
		"type": "object",
		"required": ["company", "insider", "transactions"],
		"properties": {
			"company": {"type": "string", "minLength": 1},
			"summary": {"type": "string"},
			"insider": {"type": "string"},
			"insiderTitle": {"type": "string"},
			"transactions": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"date": {"type": "string"},
						"type": {"type": "string"},
						"shares": {"type": ["string", "number"]},
						"price": {"type": ["string", "number"]}
					}
				}
			},
			"totalValue": {"type": ["string", "number"]}
		}
	}`,
}

var proxySchema = &Schema{
	Name: "proxy_statement",
	Fields: []FieldSpec{
		{Name: "company", Kind: KindString, Required: true},
		{Name: "summary", Kind: KindString},
		{Name: "meetingDate", Kind: KindString},
		{Name: "proposals", Kind: KindArray},
		{Name: "boardMembers", Kind: KindArray},
		{Name: "executiveCompensation", Kind: KindArray},
	},
	source: `{
		"type": "object",
		"required": ["company", "summary"],
		"properties": {
			"company": {"type": "string", "minLength": 1},
			"summary": {"type": "string"},
			"meetingDate": {"type": "string"},
			"proposals": {"type": "array", "items": {"type": "string"}},
			"boardMembers": {"type": "array", "items": {"type": "string"}},
			"executiveCompensation": {
				"type": "array",
				"items": {
					"type": "object",
					"properties": {
						"name": {"type": "string"},
						"title": {"type": "string"},
						"totalCompensation": {"type": ["string", "number"]}
					}
				}
			}
		}
	}`,
}

var minimalSchema = &Schema{
	Name: "minimal",
	Fields: []FieldSpec{
		{Name: "company", Kind: KindString, Required: true},
		{Name: "summary", Kind: KindString},
		{Name: "filingDate", Kind: KindString},
		{Name: "keyPoints", Kind: KindArray},
	},
	source: `{
		"type": "object",
		"required": ["company"],
		"properties": {
			"company": {"type": "string", "minLength": 1},
			"summary": {"type": "string"},
			"filingDate": {"type": "string"},
			"keyPoints": {"type": "array", "items": {"type": "string"}}
		}
	}`,
}
