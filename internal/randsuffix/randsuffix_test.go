package randsuffix

import "testing"

// TestNew tests New.
func TestNew(t *testing.T) {
	suffix, err := New(8)
	if err != nil {
		t.Fatal("unable to generate random suffix:", err)
	}
	if len(suffix) != 16 {
		t.Error("suffix did not have expected length:", len(suffix), "!= 16")
	}
}

func TestNewIsRandom(t *testing.T) {
	a, err := New(8)
	if err != nil {
		t.Fatal("unable to generate random suffix:", err)
	}
	b, err := New(8)
	if err != nil {
		t.Fatal("unable to generate random suffix:", err)
	}
	if a == b {
		t.Error("two consecutive suffixes were identical:", a)
	}
}
