package eventmeta

import "testing"

func TestAcquireConstructsWhenEmpty(t *testing.T) {
	p := New(2)
	m := p.Acquire()
	if m == nil {
		t.Fatal("expected a freshly constructed Meta")
	}
}

func TestReleaseThenAcquireReusesValue(t *testing.T) {
	p := New(2)
	m := p.Acquire()
	m.Slot = 42
	p.Release(m)

	reused := p.Acquire()
	if reused != m {
		t.Fatal("expected Acquire to hand back the released Meta")
	}
	if reused.Slot != 0 {
		t.Fatalf("expected recycled Meta to be cleared, got Slot=%d", reused.Slot)
	}
}

func TestReleaseDropsOnOverflow(t *testing.T) {
	p := New(1)
	a, b := p.Acquire(), p.Acquire()
	p.Release(a)
	p.Release(b) // pool already has one slot filled; this one is dropped.

	// Draining should yield exactly one pooled value, not two.
	first := <-p.slots
	if first == nil {
		t.Fatal("expected one pooled value")
	}
	select {
	case <-p.slots:
		t.Fatal("expected pool to contain only one value after overflow")
	default:
	}
}
