package normalize

import "testing"

func TestVariationsPreferredIsLast(t *testing.T) {
	v := Diagnostics([]byte("error: Could not compile `mycrate`.\n"), testContext)
	if got := v.Preferred(); got != v.At(MaxLevel()) {
		t.Fatalf("Preferred() = %q, want the %s variation %q", got, MaxLevel(), v.At(MaxLevel()))
	}
}

func TestVariationsAny(t *testing.T) {
	v := Diagnostics([]byte("plain line\n"), testContext)

	if !v.Any(func(s string) bool { return s == "plain line\n" }) {
		t.Fatal("expected a matching variation")
	}
	if v.Any(func(s string) bool { return s == "never\n" }) {
		t.Fatal("predicate matched nothing, Any must be false")
	}

	calls := 0
	v.Any(func(string) bool {
		calls++
		return true
	})
	if calls != 1 {
		t.Fatalf("Any must stop at the first match, made %d calls", calls)
	}
}

func TestVariationsCoverEveryLevel(t *testing.T) {
	v := Diagnostics(nil, Context{})
	seen := 0
	v.Any(func(string) bool {
		seen++
		return false
	})
	if seen != len(Levels()) {
		t.Fatalf("expected %d variations, saw %d", len(Levels()), seen)
	}
}
