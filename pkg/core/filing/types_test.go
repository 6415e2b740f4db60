package filing

import "testing"

func TestParseType(t *testing.T) {
	cases := []struct {
		input string
		want  Type
	}{
		{"10-K", Type10K},
		{"10-k", Type10K},
		{" 10-K ", Type10K},
		{"10-K/A", Type10K},
		{"10-Q", Type10Q},
		{"10-Q/A", Type10Q},
		{"8-K", Type8K},
		{"20-F", Type20F},
		{"6-K", Type6K},
		{"S-1", TypeS1},
		{"S-4", TypeS4},
		{"424B1", Type424B},
		{"424B5", Type424B},
		{"DEF 14A", TypeDEF14A},
		{"def 14a", TypeDEF14A},
		{"DEFA14A", TypeDEF14A},
		{"4", TypeForm4},
		{"4/A", TypeForm4},
		{"SC 13D", TypeGeneric},
		{"", TypeGeneric},
		{"unheard-of form", TypeGeneric},
	}

	for _, tc := range cases {
		if got := ParseType(tc.input); got != tc.want {
			t.Errorf("ParseType(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestTypePredicates(t *testing.T) {
	for _, ft := range []Type{Type10K, Type10Q, Type20F, Type6K} {
		if !ft.IsFinancialReport() {
			t.Errorf("expected %s to be a financial report", ft)
		}
	}
	for _, ft := range []Type{Type8K, TypeS1, TypeDEF14A, TypeGeneric} {
		if ft.IsFinancialReport() {
			t.Errorf("expected %s not to be a financial report", ft)
		}
	}

	if !TypeS1.IsRegistration() || !TypeS4.IsRegistration() {
		t.Error("expected S-1 and S-4 to be registrations")
	}
	if Type10K.IsRegistration() {
		t.Error("expected 10-K not to be a registration")
	}
}

func TestAll_ContainsEveryType(t *testing.T) {
	all := All()
	if len(all) != 11 {
		t.Fatalf("expected 11 types, got %d", len(all))
	}
	if all[len(all)-1] != TypeGeneric {
		t.Error("expected Generic last")
	}
}
