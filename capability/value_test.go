package capability

import (
	"encoding/json"
	"testing"
)

func TestValueConstructorsAndAccessors(t *testing.T) {
	if !Absent().IsAbsent() {
		t.Error("Absent() should be absent")
	}

	s, ok := String("POL-88421").AsString()
	if !ok || s != "POL-88421" {
		t.Errorf("AsString = %q, %v", s, ok)
	}

	n, ok := Number(118).AsNumber()
	if !ok || n != 118 {
		t.Errorf("AsNumber = %v, %v", n, ok)
	}

	b, ok := Bool(true).AsBool()
	if !ok || !b {
		t.Errorf("AsBool = %v, %v", b, ok)
	}

	// Accessors refuse cross-kind reads.
	if _, ok := String("x").AsNumber(); ok {
		t.Error("AsNumber on a string should fail")
	}
	if _, ok := Number(1).AsString(); ok {
		t.Error("AsString on a number should fail")
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	original := Map(map[string]Value{
		"customer_id": String("CUST-1"),
		"claims":      List(String("CLM-2041"), String("CLM-2188")),
		"premium":     Number(118.5),
		"active":      Bool(true),
	})

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Value
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	m, ok := decoded.AsMap()
	if !ok {
		t.Fatalf("decoded kind = %v, want map", decoded.Kind())
	}
	if id, _ := m["customer_id"].AsString(); id != "CUST-1" {
		t.Errorf("customer_id = %q", id)
	}
	claims, _ := m["claims"].AsList()
	if len(claims) != 2 {
		t.Errorf("claims = %v", claims)
	}
	if p, _ := m["premium"].AsNumber(); p != 118.5 {
		t.Errorf("premium = %v", p)
	}
}

func TestValueUnmarshalNull(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte("null"), &v); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !v.IsAbsent() {
		t.Errorf("null should decode to absent, got %v", v.Kind())
	}
}

func TestFromAny(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Kind
	}{
		{"nil", nil, KindAbsent},
		{"string", "auto", KindString},
		{"float", 3.14, KindNumber},
		{"int", 42, KindNumber},
		{"bool", false, KindBool},
		{"slice", []any{"a", "b"}, KindList},
		{"map", map[string]any{"k": "v"}, KindMap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromAny(tt.in).Kind(); got != tt.want {
				t.Errorf("FromAny(%v).Kind() = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestText(t *testing.T) {
	if got := String("hello").Text(); got != "hello" {
		t.Errorf("Text = %q", got)
	}
	if got := Number(2).Text(); got != "2" {
		t.Errorf("Text = %q", got)
	}
	if got := Absent().Text(); got != "" {
		t.Errorf("absent Text = %q, want empty", got)
	}
}

func TestMergeValueMaps(t *testing.T) {
	dst := map[string]Value{
		"a": String("one"),
		"b": String("keep"),
	}
	src := map[string]Value{
		"a": String("two"),
		"c": Number(3),
	}

	merged := MergeValueMaps(dst, src)

	if v, _ := merged["a"].AsString(); v != "two" {
		t.Errorf("a = %q, want later write to win", v)
	}
	if v, _ := merged["b"].AsString(); v != "keep" {
		t.Errorf("b = %q", v)
	}
	if v, _ := merged["c"].AsNumber(); v != 3 {
		t.Errorf("c = %v", v)
	}
}

func TestMergeValueMaps_NilInputs(t *testing.T) {
	if got := MergeValueMaps(nil, nil); len(got) != 0 {
		t.Errorf("merge of nils = %v", got)
	}
	src := map[string]Value{"k": String("v")}
	got := MergeValueMaps(nil, src)
	if v, _ := got["k"].AsString(); v != "v" {
		t.Errorf("merge nil dst = %v", got)
	}
}
