package build

import "testing"

func TestVersionIsComposedFromParts(t *testing.T) {
	want := "0.1.0"
	if Version != want {
		t.Fatalf("Version = %q, want %q", Version, want)
	}
}
