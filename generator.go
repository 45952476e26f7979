package snowpager

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultEpoch is the zero point of the ID timestamp field. The 41-bit field
// lasts roughly 69 years from it.
var DefaultEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	// DefaultMaxClockWait bounds how long Next may sleep waiting for the clock.
	DefaultMaxClockWait = 5 * time.Millisecond

	clockPollInterval = time.Millisecond / 8
)

// Generator produces unique, strictly increasing IDs. Generators running in
// different processes never collide as long as each one owns a distinct node id.
//
// Clock regression policy: when the clock is observed behind the last issued
// timestamp, Next waits for it to catch up, at most MaxClockWait in total, and
// fails with ErrClockRegression otherwise. A timestamp is never reused.
//
// Generator is safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	clock   Clock
	epochMs int64
	nodeID  int64
	maxWait time.Duration
	logger  logrus.FieldLogger

	lastMs   int64
	sequence int64
}

type GeneratorOption func(*Generator)

// WithEpoch overrides DefaultEpoch. Every generator of one logical domain must
// share the same epoch, otherwise ordering across nodes is lost.
func WithEpoch(epoch time.Time) GeneratorOption {
	return func(g *Generator) {
		g.epochMs = epoch.UnixMilli()
	}
}

func WithClock(clock Clock) GeneratorOption {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// WithMaxClockWait sets the bound for clock waits. Zero disables waiting.
func WithMaxClockWait(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		g.maxWait = d
	}
}

func WithLogger(logger logrus.FieldLogger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator creates a generator for the given node id (0..MaxNodeID).
func NewGenerator(nodeID int64, opts ...GeneratorOption) (*Generator, error) {
	if nodeID < 0 || nodeID > MaxNodeID {
		return nil, fmt.Errorf("node id %d out of range [0, %d]", nodeID, MaxNodeID)
	}

	g := &Generator{
		clock:   SystemClock(),
		epochMs: DefaultEpoch.UnixMilli(),
		nodeID:  nodeID,
		maxWait: DefaultMaxClockWait,
		logger:  discardLogger(),
		lastMs:  -1,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.maxWait < 0 {
		return nil, fmt.Errorf("negative max clock wait %s", g.maxWait)
	}

	elapsed := g.elapsedMs()
	if elapsed < 0 {
		return nil, fmt.Errorf("epoch %s is in the future", time.UnixMilli(g.epochMs).UTC())
	} else if elapsed > maxTimestamp {
		return nil, fmt.Errorf("epoch %s is too old for the id timestamp field", time.UnixMilli(g.epochMs).UTC())
	}

	return g, nil
}

// NodeID returns the node discriminator embedded in every generated ID.
func (g *Generator) NodeID() int64 {
	return g.nodeID
}

// Next returns a fresh ID. It fails with ErrClockRegression or
// ErrGenerationStalled when the clock does not cooperate within MaxClockWait.
func (g *Generator) Next() (ID, error) {
	g.mu.Lock()
	id, waited, err := g.nextLocked()
	g.mu.Unlock()

	if err != nil {
		g.logger.WithError(err).WithField("node_id", g.nodeID).Error("cannot generate id")
		return 0, err
	}

	if waited > 0 {
		g.logger.WithFields(logrus.Fields{
			"node_id": g.nodeID,
			"waited":  waited,
		}).Warn("id generator waited for the clock")
	}

	return id, nil
}

// MustNext is like Next but panics on error.
func (g *Generator) MustNext() ID {
	id, err := g.Next()
	if err != nil {
		panic(fmt.Errorf("cannot generate id: %w", err))
	}

	return id
}

// nextLocked must be called with g.mu held. On failure the generator state is
// left untouched so the next call cannot hand out a used (timestamp, sequence).
func (g *Generator) nextLocked() (ID, time.Duration, error) {
	var waited time.Duration

	now := g.elapsedMs()
	if now < g.lastMs {
		var ok bool
		now, waited, ok = g.waitFor(g.lastMs)
		if !ok {
			return 0, waited, fmt.Errorf(
				"%w: clock is %dms behind the last issued id",
				ErrClockRegression, g.lastMs-now,
			)
		}
	}

	var seq int64
	if now == g.lastMs {
		seq = g.sequence + 1
		if seq > maxSequence {
			var (
				w  time.Duration
				ok bool
			)
			now, w, ok = g.waitFor(g.lastMs + 1)
			waited += w
			if !ok {
				return 0, waited, fmt.Errorf("%w: sequence exhausted at %dms", ErrGenerationStalled, g.lastMs)
			}
			seq = 0
		}
	}

	if now > maxTimestamp {
		return 0, waited, fmt.Errorf("%w: timestamp %dms overflows the id layout", ErrGenerationStalled, now)
	}

	g.lastMs = now
	g.sequence = seq

	return composeID(now, g.nodeID, seq), waited, nil
}

// waitFor sleeps until the clock reaches target or the wait bound is spent.
// Both the slept total and the clock's own progress count toward the bound.
func (g *Generator) waitFor(target int64) (int64, time.Duration, bool) {
	var slept time.Duration
	started := g.clock.Now()

	for {
		now := g.elapsedMs()
		if now >= target {
			return now, slept, true
		}

		if slept >= g.maxWait || g.clock.Now().Sub(started) >= g.maxWait {
			return now, slept, false
		}

		step := min(clockPollInterval, g.maxWait-slept)
		g.clock.Sleep(step)
		slept += step
	}
}

func (g *Generator) elapsedMs() int64 {
	return g.clock.Now().UnixMilli() - g.epochMs
}

// timeOf recovers the creation time encoded in id.
func (g *Generator) timeOf(id ID) time.Time {
	ms, _, _ := id.decompose()
	return time.UnixMilli(g.epochMs + ms)
}
