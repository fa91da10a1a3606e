package ptr_test

import (
	"testing"

	"github.com/myrjola/dailywod/internal/ptr"
)

func TestRef(t *testing.T) {
	v := 42
	p := ptr.Ref(v)
	if p == nil || *p != v {
		t.Errorf("expected pointer to %d, got %v", v, p)
	}
}

func TestDeref(t *testing.T) {
	v := "hello"
	if got := ptr.Deref(&v); got != v {
		t.Errorf("expected %q, got %q", v, got)
	}
	var nilPtr *string
	if got := ptr.Deref(nilPtr); got != "" {
		t.Errorf("expected zero value, got %q", got)
	}
}
