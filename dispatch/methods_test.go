package dispatch

import "testing"

func TestMethodTable(t *testing.T) {
	seen := make(map[string]Method)
	for _, m := range Methods() {
		if !m.Valid() {
			t.Fatalf("%d reported invalid", m)
		}
		name := m.String()
		if name == "" {
			t.Fatalf("method %d has no name", m)
		}
		if prev, dup := seen[name]; dup {
			t.Fatalf("name %q used by %d and %d", name, prev, m)
		}
		seen[name] = m

		got, ok := LookupMethod(name)
		if !ok || got != m {
			t.Fatalf("LookupMethod(%q) = %d, %v", name, got, ok)
		}
	}
}

func TestMethodInvalid(t *testing.T) {
	if MethodInvalid.Valid() {
		t.Fatal("MethodInvalid must not be valid")
	}
	if methodCount.Valid() {
		t.Fatal("out of range method must not be valid")
	}
	if got := Method(9999).String(); got != "method(9999)" {
		t.Fatalf("String = %q", got)
	}
	if _, ok := LookupMethod("invalid"); ok {
		t.Fatal("invalid must not resolve")
	}
}

func TestMethodIDsStable(t *testing.T) {
	// Ids are part of the wire format.
	tests := []struct {
		m  Method
		id uint16
	}{
		{MethodCreateObject, 1},
		{MethodDeleteObject, 2},
		{MethodBindBuffer, 4},
	}
	for _, tt := range tests {
		if uint16(tt.m) != tt.id {
			t.Errorf("%s = %d, want %d", tt.m, uint16(tt.m), tt.id)
		}
	}
}
