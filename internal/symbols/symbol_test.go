package symbols

import (
	"sync"
	"testing"
)

func TestFromQualString(t *testing.T) {
	s, err := FromQualString("aten::relu")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.String() != "aten::relu" || s.Namespace() != "aten" || s.Name() != "relu" {
		t.Fatalf("unexpected parts: %q %q %q", s.String(), s.Namespace(), s.Name())
	}
	again, _ := FromQualString("aten::relu")
	if again != s {
		t.Fatalf("interning is not stable")
	}
	for _, bad := range []string{"relu", "::relu", "aten::", "a::b::c"} {
		if _, err := FromQualString(bad); err == nil {
			t.Fatalf("FromQualString(%q) must fail", bad)
		}
	}
}

func TestJoinNeverFails(t *testing.T) {
	s := Join("torch", "definitely_not_registered")
	if s.String() != "torch::definitely_not_registered" {
		t.Fatalf("unexpected %q", s.String())
	}
	if s.WithNamespace("aten").String() != "aten::definitely_not_registered" {
		t.Fatalf("WithNamespace mismatch")
	}
}

func TestConcurrentIntern(t *testing.T) {
	var wg sync.WaitGroup
	got := make([]Symbol, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = Join("aten", "conv2d")
		}(i)
	}
	wg.Wait()
	for _, s := range got {
		if s != got[0] {
			t.Fatalf("concurrent interning produced different symbols")
		}
	}
}
