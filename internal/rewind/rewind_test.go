package rewind

import (
	"bytes"
	"errors"
	"testing"

	"github.com/hhowser/gbcore/internal/types"
)

// fakeEmulator is a minimal Snapshotter whose entire state is one
// counter, enough to exercise the base/diff bucket mechanics without
// needing a full gameboy wiring.
type fakeEmulator struct {
	counter uint8
	extra   []byte
}

func (f *fakeEmulator) Save(st *types.State) {
	st.Write8(f.counter)
	st.WriteData(f.extra)
}

func (f *fakeEmulator) Load(st *types.State) {
	f.counter = st.Read8()
	st.ReadData(f.extra)
}

func newFakeEmulator() *fakeEmulator {
	return &fakeEmulator{extra: make([]byte, 64)}
}

func TestPushPopRoundTrip(t *testing.T) {
	emu := newFakeEmulator()
	r := NewWithLimits(emu, defaultMaxBytes, defaultMaxBuckets, 60)

	emu.counter = 1
	r.Push(100)
	emu.counter = 2
	r.Push(200)
	emu.counter = 3
	r.Push(300)

	emu.counter = 0xFF // simulate time moving on

	if !r.Pop() {
		t.Fatal("expected a state to pop")
	}
	if emu.counter != 3 {
		t.Fatalf("expected counter restored to 3, got %d", emu.counter)
	}

	if !r.Pop() {
		t.Fatal("expected a second state to pop")
	}
	if emu.counter != 2 {
		t.Fatalf("expected counter restored to 2, got %d", emu.counter)
	}

	if !r.Pop() {
		t.Fatal("expected a third state to pop")
	}
	if emu.counter != 1 {
		t.Fatalf("expected counter restored to 1, got %d", emu.counter)
	}

	if r.Pop() {
		t.Fatal("expected no more states to pop")
	}
}

func TestBucketRollsOverAfterFrameLimit(t *testing.T) {
	emu := newFakeEmulator()
	r := NewWithLimits(emu, defaultMaxBytes, defaultMaxBuckets, 2)

	for i := uint8(1); i <= 3; i++ {
		emu.counter = i
		r.Push(uint64(i))
	}

	if len(r.buckets) != 2 {
		t.Fatalf("expected 2 buckets (2-frame bucket, 3rd state rolls over), got %d", len(r.buckets))
	}
}

func TestDiffRoundTripsArbitraryChanges(t *testing.T) {
	base := bytes.Repeat([]byte{0xAA}, 256)
	full := make([]byte, len(base))
	copy(full, base)
	full[10] = 0x01
	full[11] = 0x02
	full[200] = 0xFF

	diff, err := diffAgainst(base, full)
	if err != nil {
		t.Fatalf("diffAgainst: %v", err)
	}
	got, err := reconstruct(base, diff)
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}

	if !bytes.Equal(got, full) {
		t.Fatalf("reconstruct did not recover original buffer")
	}
}

func TestDiffAgainstReportsInconsistentStateDiffWhenFullExceedsBase(t *testing.T) {
	base := bytes.Repeat([]byte{0xAA}, 4)
	full := bytes.Repeat([]byte{0xBB}, 8) // longer than base

	_, err := diffAgainst(base, full)
	if err == nil {
		t.Fatal("expected an InconsistentStateDiff error")
	}
	var want *InconsistentStateDiff
	if !errors.As(err, &want) {
		t.Fatalf("expected *InconsistentStateDiff, got %T", err)
	}
}

func TestReconstructReportsInconsistentStateDiffWhenDiffOutrunsBase(t *testing.T) {
	base := bytes.Repeat([]byte{0xAA}, 4)
	// A diff entry claiming a byte past the end of base.
	diff := diffEntry{start: 10, data: []uint8{0xFF}}.encode(nil)

	_, err := reconstruct(base, diff)
	if err == nil {
		t.Fatal("expected an InconsistentStateDiff error")
	}
	var want *InconsistentStateDiff
	if !errors.As(err, &want) {
		t.Fatalf("expected *InconsistentStateDiff, got %T", err)
	}
}

func TestPushSetsErrInsteadOfCorruptingOnSizeMismatch(t *testing.T) {
	emu := newFakeEmulator()
	r := NewWithLimits(emu, defaultMaxBytes, defaultMaxBuckets, 60)

	r.Push(1) // base snapshot for the bucket

	emu.extra = append(emu.extra, 0x00) // serialized state now grows
	r.Push(2)

	if r.Err == nil {
		t.Fatal("expected Err to be set when the state size changes mid-bucket")
	}
	var want *InconsistentStateDiff
	if !errors.As(r.Err, &want) {
		t.Fatalf("expected *InconsistentStateDiff, got %T", r.Err)
	}
	if len(r.buckets[0].states) != 1 {
		t.Fatalf("expected the corrupt diff not to be stored, got %d states", len(r.buckets[0].states))
	}
}

func TestEvictionRespectsBucketBudget(t *testing.T) {
	emu := newFakeEmulator()
	r := NewWithLimits(emu, defaultMaxBytes, 2, 1)

	for i := uint8(1); i <= 5; i++ {
		emu.counter = i
		r.Push(uint64(i))
	}

	if len(r.buckets) > 2 {
		t.Fatalf("expected at most 2 buckets under the bucket-count budget, got %d", len(r.buckets))
	}
}
