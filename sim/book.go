package sim

// sideQueues is a fixed-capacity ring buffer of queue sizes for one book
// half, indexed by tick-distance from the reference price (0 = best).
// Reference shifts drop level 0 and append a far level, which the ring
// makes O(1) instead of an O(L) array copy; shifts happen at the same
// order of frequency as top-of-book depletions.
type sideQueues struct {
	buf  []int
	head int
}

func newSideQueues(depths []int) sideQueues {
	buf := make([]int, len(depths))
	copy(buf, depths)
	return sideQueues{buf: buf}
}

func (q *sideQueues) at(level int) int {
	return q.buf[(q.head+level)%len(q.buf)]
}

func (q *sideQueues) add(level, delta int) {
	q.buf[(q.head+level)%len(q.buf)] += delta
}

// shift drops level 0 and appends farDepth as the new outermost level.
// Level i becomes level i-1 for all i >= 1.
func (q *sideQueues) shift(farDepth int) {
	q.buf[q.head] = farDepth
	q.head = (q.head + 1) % len(q.buf)
}

func (q *sideQueues) depths() []int {
	out := make([]int, len(q.buf))
	for i := range out {
		out[i] = q.at(i)
	}
	return out
}

// BookState is the finite representation of the order book: per-side queue
// sizes at the first L ticks around the reference price. It is exclusively
// owned by one run and mutated only by the transition engine.
type BookState struct {
	refTick int64
	bids    sideQueues
	asks    sideQueues
}

// NewBookState builds a book anchored at refTick with explicit initial
// depths. Both slices must have the same length L >= 1; sizes must be
// non-negative and both best queues non-empty.
func NewBookState(refTick int64, bidDepths, askDepths []int) (*BookState, error) {
	if len(bidDepths) == 0 || len(bidDepths) != len(askDepths) {
		return nil, &ConfigurationError{
			Field:  "initial depths",
			Reason: "bid and ask depth vectors must be non-empty and equal length",
		}
	}
	for _, depths := range [][]int{bidDepths, askDepths} {
		for _, d := range depths {
			if d < 0 {
				return nil, &ConfigurationError{
					Field:  "initial depths",
					Reason: "queue sizes must be non-negative",
				}
			}
		}
	}
	if bidDepths[0] == 0 || askDepths[0] == 0 {
		return nil, &ConfigurationError{
			Field:  "initial depths",
			Reason: "best bid and best ask queues must start non-empty",
		}
	}
	return &BookState{
		refTick: refTick,
		bids:    newSideQueues(bidDepths),
		asks:    newSideQueues(askDepths),
	}, nil
}

// Levels returns L, the number of tracked price levels per side.
func (b *BookState) Levels() int { return len(b.bids.buf) }

// ReferenceTick returns the current anchor tick index.
func (b *BookState) ReferenceTick() int64 { return b.refTick }

// Queue returns the size of the queue at (side, level).
func (b *BookState) Queue(side Side, level int) int {
	return b.side(side).at(level)
}

// BestBid and BestAsk are the level-0 queue sizes.
func (b *BookState) BestBid() int { return b.bids.at(0) }
func (b *BookState) BestAsk() int { return b.asks.at(0) }

// Depths returns a copy of one side's queue sizes, best first.
func (b *BookState) Depths(side Side) []int {
	return b.side(side).depths()
}

// ApplyDelta adjusts the queue at (side, level) by delta. It fails with an
// InvalidStateError if the result would be negative. The intensity contract
// makes that unreachable; the check guards against rate-model bugs rather
// than masking them.
func (b *BookState) ApplyDelta(side Side, level, delta int) error {
	q := b.side(side)
	if size := q.at(level); size+delta < 0 {
		return &InvalidStateError{Side: side, Level: level, Delta: delta, Size: size}
	}
	q.add(level, delta)
	return nil
}

// ShiftReference moves the reference price one tick toward the given side
// and re-indexes that side's queues: level 0 is dropped, levels slide in
// by one, and farDepth becomes the new outermost level. The opposite
// side's queue contents are unchanged; only their price interpretation
// moves with the reference. O(1).
func (b *BookState) ShiftReference(depleted Side, farDepth int) {
	b.side(depleted).shift(farDepth)
	if depleted == Ask {
		b.refTick++
	} else {
		b.refTick--
	}
}

// BidPriceTick and AskPriceTick map relative levels to absolute tick
// indices: bids sit at and below the reference, asks strictly above.
func (b *BookState) BidPriceTick(level int) int64 { return b.refTick - int64(level) }
func (b *BookState) AskPriceTick(level int) int64 { return b.refTick + 1 + int64(level) }

// Clone returns an independent deep copy, for snapshots and checkpoints.
func (b *BookState) Clone() *BookState {
	return &BookState{
		refTick: b.refTick,
		bids:    newSideQueues(b.bids.depths()),
		asks:    newSideQueues(b.asks.depths()),
	}
}

func (b *BookState) side(s Side) *sideQueues {
	if s == Bid {
		return &b.bids
	}
	return &b.asks
}
