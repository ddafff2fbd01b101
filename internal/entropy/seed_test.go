package entropy

import "testing"

func TestNewSeed_NonZero(t *testing.T) {
	for i := 0; i < 64; i++ {
		s, err := NewSeed()
		if err != nil {
			t.Fatalf("NewSeed: %v", err)
		}
		if s <= 0 {
			t.Fatalf("expected positive seed, got %d", s)
		}
	}
}

func TestResolve_KeepsExplicitSeed(t *testing.T) {
	s, err := Resolve(42)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s != 42 {
		t.Fatalf("expected 42, got %d", s)
	}
}

func TestResolve_ZeroDrawsFresh(t *testing.T) {
	s, err := Resolve(0)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if s == 0 {
		t.Fatal("zero seed should be replaced")
	}
}
