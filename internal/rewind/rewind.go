package rewind

import (
	"github.com/google/brotli/go/cbrotli"

	"github.com/hhowser/gbcore/internal/types"
)

// Snapshotter is implemented by the top-level emulator: whatever Save
// writes is what gets stored (as a full state or a diff, depending on
// its position in the bucket), and Load must accept it back unchanged.
type Snapshotter interface {
	Save(*types.State)
	Load(*types.State)
}

type snapshot struct {
	ticks uint64
	// raw is the byte-exact serialized state (pre-compression, for
	// diffing purposes); compressed is only populated for a bucket's
	// base (first) snapshot.
	raw        []byte
	compressed []byte
}

type bucket struct {
	states []snapshot
}

func (b *bucket) bytesUsed() int {
	total := 0
	for _, s := range b.states {
		if s.compressed != nil {
			total += len(s.compressed)
		} else {
			total += len(s.raw)
		}
	}
	return total
}

// Rewind stores save states in FIFO-evicted buckets: the first state
// in a bucket is a full snapshot (brotli-compressed, since it is the
// expensive one every later state in the bucket diffs against), every
// subsequent state is a byte-level diff against that bucket's base.
type Rewind struct {
	emu Snapshotter

	maxBytes        int
	maxBuckets      int
	framesPerBucket int

	buckets []*bucket

	// Err holds the fatal error from the most recent Push or Pop that
	// failed a diff consistency check, if any (*InconsistentStateDiff).
	Err error
}

const (
	defaultMaxBytes        = 256 * 1024 * 1024
	defaultMaxBuckets      = 100000
	defaultFramesPerBucket = 60
)

// New returns a Rewind with the original engine's defaults: 256 MiB or
// 100,000 buckets, whichever limit is hit first, 60 frames per bucket.
func New(emu Snapshotter) *Rewind {
	return NewWithLimits(emu, defaultMaxBytes, defaultMaxBuckets, defaultFramesPerBucket)
}

func NewWithLimits(emu Snapshotter, maxBytes, maxBuckets, framesPerBucket int) *Rewind {
	return &Rewind{
		emu:             emu,
		maxBytes:        maxBytes,
		maxBuckets:      maxBuckets,
		framesPerBucket: framesPerBucket,
	}
}

// UsedBytes reports the storage currently held across all buckets.
func (r *Rewind) UsedBytes() int {
	total := 0
	for _, b := range r.buckets {
		total += b.bytesUsed()
	}
	return total
}

// StateCount reports the number of stored snapshots across all
// buckets.
func (r *Rewind) StateCount() int {
	total := 0
	for _, b := range r.buckets {
		total += len(b.states)
	}
	return total
}

func (r *Rewind) atCapacity() bool {
	return r.UsedBytes() >= r.maxBytes || len(r.buckets) >= r.maxBuckets
}

func (r *Rewind) prepareBucket() *bucket {
	if len(r.buckets) == 0 || len(r.buckets[len(r.buckets)-1].states) >= r.framesPerBucket {
		b := &bucket{}
		r.buckets = append(r.buckets, b)
		return b
	}
	return r.buckets[len(r.buckets)-1]
}

// Push captures the emulator's current state into the active bucket,
// then evicts the oldest buckets until back under budget. The first
// state in a bucket is kept (compressed) in full; every later state
// is reduced to its diff against that first state before storage. If
// the emulator's serialized state has grown longer than the bucket's
// base since it was captured, the push is abandoned and Err is set
// instead of storing a corrupt diff. A state shorter than the base is
// not rejected: it is stored as a diff against the base's leading
// bytes.
func (r *Rewind) Push(ticks uint64) {
	b := r.prepareBucket()

	st := types.NewState()
	r.emu.Save(st)
	raw := st.Bytes()

	if len(b.states) == 0 {
		s := snapshot{ticks: ticks, raw: raw}
		if compressed, err := cbrotli.Encode(raw, cbrotli.WriterOptions{Quality: 9}); err == nil {
			s.compressed = compressed
		}
		b.states = append(b.states, s)
	} else {
		baseRaw := r.decodeBase(b.states[0])
		diff, err := diffAgainst(baseRaw, raw)
		if err != nil {
			r.Err = err
			return
		}
		b.states = append(b.states, snapshot{ticks: ticks, raw: diff})
	}

	for r.atCapacity() && len(r.buckets) > 0 {
		r.buckets = r.buckets[1:]
	}
}

// decodeBase returns a bucket's base snapshot as its original
// uncompressed bytes.
func (r *Rewind) decodeBase(base snapshot) []byte {
	if base.compressed == nil {
		return base.raw
	}
	decoded, err := cbrotli.Decode(base.compressed)
	if err != nil {
		return base.raw
	}
	return decoded
}

// Pop restores the most recently pushed state and removes it from the
// rewind buffer. It reports false if there is nothing left to rewind
// to, or if the stored diff is inconsistent with its base snapshot
// (fatal - see Err).
func (r *Rewind) Pop() bool {
	if len(r.buckets) == 0 {
		return false
	}
	b := r.buckets[len(r.buckets)-1]

	if len(b.states) == 1 {
		raw := r.decodeBase(b.states[0])
		r.emu.Load(types.StateFromBytes(raw))
		r.buckets = r.buckets[:len(r.buckets)-1]
		return true
	}

	baseRaw := r.decodeBase(b.states[0])
	target := b.states[len(b.states)-1]
	reconstructed, err := reconstruct(baseRaw, target.raw)
	if err != nil {
		r.Err = err
		return false
	}
	r.emu.Load(types.StateFromBytes(reconstructed))

	b.states = b.states[:len(b.states)-1]
	return true
}

// Clear discards every stored snapshot.
func (r *Rewind) Clear() {
	r.buckets = nil
}

// diffAgainst encodes a full byte buffer as a diff against base, the
// form every non-base bucket entry is stored in. It returns
// *InconsistentStateDiff if full is longer than base.
func diffAgainst(base, full []byte) ([]byte, error) {
	w := newDiffWriter(base)
	for _, b := range full {
		if err := w.write(b); err != nil {
			return nil, err
		}
	}
	return w.bytes(), nil
}

// reconstruct replays a diff buffer against base to recover the
// original full byte buffer. It returns *InconsistentStateDiff if the
// diff and base disagree in length, including a diff record that lies
// past the end of base.
func reconstruct(base, diff []byte) ([]byte, error) {
	r := newDiffReader(base, diff)
	out := make([]byte, len(base))
	for i := range out {
		b, err := r.read()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	if r.current != nil || r.diffPos < len(r.diff) {
		return nil, &InconsistentStateDiff{Op: "read", Index: len(base)}
	}
	return out, nil
}
