package table

import (
	"math"
	"testing"
)

func TestCategoryCode_DenseAndInjective(t *testing.T) {
	cc := NewCategoryCode()

	values := []string{"primary", "secondary", "primary", "special", "secondary", "nursery"}
	for _, v := range values {
		cc.Encode(v)
	}

	if cc.Len() != 4 {
		t.Fatalf("expected 4 distinct codes, got %d", cc.Len())
	}

	// Codes must be exactly {0..k-1}, assigned in first-seen order.
	expected := map[string]int{"primary": 0, "secondary": 1, "special": 2, "nursery": 3}
	for value, want := range expected {
		got, ok := cc.Lookup(value)
		if !ok {
			t.Fatalf("value %q has no code", value)
		}
		if got != want {
			t.Errorf("value %q: expected code %d, got %d", value, want, got)
		}
	}

	for code := 0; code < cc.Len(); code++ {
		if _, ok := cc.Label(code); !ok {
			t.Errorf("code %d has no label", code)
		}
	}
	if _, ok := cc.Label(cc.Len()); ok {
		t.Error("label lookup past the dense range should fail")
	}

	if err := cc.Validate(); err != nil {
		t.Fatalf("valid mapping failed validation: %v", err)
	}
}

func TestCategoryCode_EncodeIsIdempotent(t *testing.T) {
	cc := NewCategoryCode()
	first := cc.Encode("alpha")
	second := cc.Encode("alpha")
	if first != second {
		t.Fatalf("re-encoding changed the code: %d then %d", first, second)
	}
	if cc.Len() != 1 {
		t.Fatalf("re-encoding grew the table to %d entries", cc.Len())
	}
}

func TestCell_Float(t *testing.T) {
	if got := Numeric(3.5).Float(); got != 3.5 {
		t.Errorf("numeric cell: expected 3.5, got %g", got)
	}
	if got := Category(2).Float(); got != 2 {
		t.Errorf("category cell: expected code 2, got %g", got)
	}
	if got := Missing().Float(); !math.IsNaN(got) {
		t.Errorf("missing cell: expected NaN, got %g", got)
	}
	if !Missing().IsMissing() {
		t.Error("missing cell not reported as missing")
	}
	if Numeric(0).IsMissing() {
		t.Error("numeric zero reported as missing")
	}
}

func TestTable_AppendChecksArity(t *testing.T) {
	tbl, err := New([]ColumnSpec{
		{Name: "a", Kind: KindRatio},
		{Name: "b", Kind: KindNominal},
	})
	if err != nil {
		t.Fatalf("new table: %v", err)
	}

	if err := tbl.Append([]Cell{Numeric(1)}); err == nil {
		t.Fatal("expected arity error for short record")
	}
	if err := tbl.Append([]Cell{Numeric(1), Category(0)}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if tbl.NumRows() != 1 {
		t.Fatalf("expected 1 row, got %d", tbl.NumRows())
	}
}

func TestTable_RejectsDuplicateColumns(t *testing.T) {
	if _, err := New([]ColumnSpec{
		{Name: "a", Kind: KindRatio},
		{Name: "a", Kind: KindRatio},
	}); err == nil {
		t.Fatal("expected duplicate column error")
	}
}

func TestTable_FloatColumn(t *testing.T) {
	tbl, err := New([]ColumnSpec{{Name: "score", Kind: KindRatio}})
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	for _, c := range []Cell{Numeric(10), Missing(), Numeric(30)} {
		if err := tbl.Append([]Cell{c}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	values, err := tbl.FloatColumn("score")
	if err != nil {
		t.Fatalf("float column: %v", err)
	}
	if values[0] != 10 || values[2] != 30 {
		t.Errorf("unexpected values: %v", values)
	}
	if !math.IsNaN(values[1]) {
		t.Errorf("missing cell should surface as NaN, got %g", values[1])
	}

	if _, err := tbl.FloatColumn("absent"); err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func TestColumnKind_Quantitative(t *testing.T) {
	cases := map[ColumnKind]bool{
		KindNominal:  false,
		KindOrdinal:  false,
		KindInterval: true,
		KindRatio:    true,
	}
	for kind, want := range cases {
		if got := kind.Quantitative(); got != want {
			t.Errorf("%s: expected %t, got %t", kind, want, got)
		}
	}

	if _, err := ParseColumnKind("fancy"); err == nil {
		t.Fatal("expected error for unknown kind tag")
	}
}
