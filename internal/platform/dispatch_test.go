// SPDX-License-Identifier: Unlicense OR MIT

package platform

import "testing"

func TestSwitch0NeverExceedsCaps(t *testing.T) {
	caps := Caps{HasSSE2: true} // narrowest realistic case
	got := Switch0(MakeSelector(Width64, Float32, 1), caps)
	if got.Width() != Width4 {
		t.Fatalf("expected fallback to Width4, got %v", got.Width())
	}
}

func TestSwitch0HonorsNarrowerRequest(t *testing.T) {
	caps := Caps{HasAVX512: true}
	got := Switch0(MakeSelector(Width4, Float32, 1), caps)
	if got.Width() != Width4 {
		t.Fatalf("expected requested width 4 to be honored, got %v", got.Width())
	}
}

func TestSelectorRoundTrip(t *testing.T) {
	s := MakeSelector(Width16, Float32, 2)
	if s.Width() != Width16 || s.Type() != Float32 || s.Factor() != 2 {
		t.Fatalf("selector round trip failed: %+v", s)
	}
}
