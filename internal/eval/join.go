package eval

import (
	"context"
	"log/slog"
	"slices"

	"github.com/roach88/triplestream/internal/binding"
)

// joinSpec is the construction shared by JoinBlock and LeftJoinBlock.
type joinSpec struct {
	lhs      Block
	rhs      Block
	joinVars []string
	cfg      joinConfig
	vars     []string
}

func newJoinSpec(block string, lhs, rhs Block, joinVars []string, opts []JoinOption) (joinSpec, error) {
	if lhs == nil {
		return joinSpec{}, constructionErr(ErrCodeNilBlock, block, "lhs is nil")
	}
	if rhs == nil {
		return joinSpec{}, constructionErr(ErrCodeNilBlock, block, "rhs is nil")
	}
	vars := unionVars(joinVars)
	if len(vars) == 0 {
		return joinSpec{}, constructionErr(ErrCodeNoJoinVariables, block, "join variable set is empty")
	}
	for _, v := range vars {
		if v == "" {
			return joinSpec{}, constructionErr(ErrCodeNoJoinVariables, block, "empty join variable name")
		}
	}

	cfg := defaultJoinConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(block); err != nil {
		return joinSpec{}, err
	}

	return joinSpec{
		lhs:      lhs,
		rhs:      rhs,
		joinVars: vars,
		cfg:      cfg,
		vars:     unionVars(lhs.Variables(), rhs.Variables()),
	}, nil
}

// canBind reports whether every join variable is either fixed by the seed
// or produced by b.
func (j joinSpec) canBind(b Block, seed binding.Bindings) bool {
	produced := b.Variables()
	for _, v := range j.joinVars {
		if !seed.Contains(v) && !slices.Contains(produced, v) {
			return false
		}
	}
	return true
}

// JoinBlock computes the natural join of two blocks on a set of join
// variables. Other shared variables must agree, enforced by Merge.
type JoinBlock struct {
	spec joinSpec
}

// NewJoinBlock creates an inner join of lhs and rhs on joinVars.
func NewJoinBlock(lhs, rhs Block, joinVars []string, opts ...JoinOption) (*JoinBlock, error) {
	spec, err := newJoinSpec("join", lhs, rhs, joinVars, opts)
	if err != nil {
		return nil, err
	}
	return &JoinBlock{spec: spec}, nil
}

// JoinVariables returns the deduplicated join variables.
func (b *JoinBlock) JoinVariables() []string { return b.spec.joinVars }

func (b *JoinBlock) Variables() []string { return b.spec.vars }

func (b *JoinBlock) Evaluate(ctx context.Context, seed binding.Bindings) Stream {
	return newJoinStream(ctx, seed, b.spec, false)
}

// LeftJoinBlock is JoinBlock that also keeps every lhs row without a
// match, unchanged.
type LeftJoinBlock struct {
	spec joinSpec
}

// NewLeftJoinBlock creates a left outer join of lhs and rhs on joinVars.
func NewLeftJoinBlock(lhs, rhs Block, joinVars []string, opts ...JoinOption) (*LeftJoinBlock, error) {
	spec, err := newJoinSpec("leftjoin", lhs, rhs, joinVars, opts)
	if err != nil {
		return nil, err
	}
	return &LeftJoinBlock{spec: spec}, nil
}

// JoinVariables returns the deduplicated join variables.
func (b *LeftJoinBlock) JoinVariables() []string { return b.spec.joinVars }

func (b *LeftJoinBlock) Variables() []string { return b.spec.vars }

func (b *LeftJoinBlock) Evaluate(ctx context.Context, seed binding.Bindings) Stream {
	return newJoinStream(ctx, seed, b.spec, true)
}

const (
	lhsSide = 0
	rhsSide = 1
)

// joinRow is one indexed input row. matched is only tracked for lhs rows
// of a left join.
type joinRow struct {
	b       binding.Bindings
	matched bool
}

// joinSide holds one input's stream, its hash index and its window state.
type joinSide struct {
	name      string
	stream    Stream
	rows      []joinRow
	index     map[string][]int
	window    int
	turnPulls int
	pulled    int
	exhausted bool
	closed    bool
}

func (s *joinSide) add(b binding.Bindings, key string) {
	s.index[key] = append(s.index[key], len(s.rows))
	s.rows = append(s.rows, joinRow{b: b})
}

func (s *joinSide) release() {
	s.rows = nil
	s.index = nil
}

// close closes the input stream once.
func (s *joinSide) close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.stream.Close()
}

// joinStream is the adaptive windowed symmetric hash join.
//
// State per side: the input stream, the rows pulled so far keyed by their
// join-variable projection, and the current window. Sides take turns of
// window pulls, lhs first. Each pulled row probes the other side's index;
// matches are queued and returned before any further pull. A round is one
// turn of each live side; when a round queues nothing both windows double.
type joinStream struct {
	ctx      context.Context
	seed     binding.Bindings
	spec     joinSpec
	optional bool

	sides      [2]*joinSide
	turn       int
	roundFound bool
	queue      []binding.Bindings

	// passthrough: a left join whose rhs can never bind the join variables.
	passthrough bool
	started     bool

	cur  binding.Bindings
	err  error
	done bool
}

func newJoinStream(ctx context.Context, seed binding.Bindings, spec joinSpec, optional bool) *joinStream {
	return &joinStream{ctx: ctx, seed: seed, spec: spec, optional: optional}
}

func (s *joinStream) start() {
	s.started = true

	if !s.spec.canBind(s.spec.lhs, s.seed) || !s.spec.canBind(s.spec.rhs, s.seed) {
		if !s.optional {
			slog.Debug("join variables unbindable, join is empty", "join_vars", s.spec.joinVars)
			s.done = true
			return
		}
		slog.Debug("join variables unbindable, passing lhs through", "join_vars", s.spec.joinVars)
		s.passthrough = true
		s.sides[lhsSide] = &joinSide{name: "lhs", stream: s.spec.lhs.Evaluate(s.ctx, s.seed)}
		return
	}

	s.sides[lhsSide] = &joinSide{
		name:   "lhs",
		stream: s.spec.lhs.Evaluate(s.ctx, s.seed),
		index:  make(map[string][]int),
		window: s.spec.cfg.lhsWindow,
	}
	s.sides[rhsSide] = &joinSide{
		name:   "rhs",
		stream: s.spec.rhs.Evaluate(s.ctx, s.seed),
		index:  make(map[string][]int),
		window: s.spec.cfg.rhsWindow,
	}
}

func (s *joinStream) Next() bool {
	if s.done {
		return false
	}
	if !s.started {
		s.start()
		if s.done {
			return false
		}
	}
	if s.passthrough {
		return s.nextPassthrough()
	}

	for {
		if len(s.queue) > 0 {
			s.cur = s.queue[0]
			s.queue[0] = binding.Bindings{}
			s.queue = s.queue[1:]
			return true
		}
		lhs, rhs := s.sides[lhsSide], s.sides[rhsSide]
		if lhs.exhausted && rhs.exhausted {
			s.finish()
			return false
		}
		if err := s.ctx.Err(); err != nil {
			s.fail(err)
			return false
		}
		if !s.pull(s.nextSide()) {
			return false
		}
	}
}

func (s *joinStream) nextPassthrough() bool {
	lhs := s.sides[lhsSide].stream
	if lhs.Next() {
		s.cur = lhs.Bindings()
		return true
	}
	if err := lhs.Err(); err != nil {
		s.fail(err)
		return false
	}
	s.finish()
	return false
}

// nextSide returns the side to pull from, advancing turns and growing
// windows at round boundaries. At least one side is live.
func (s *joinStream) nextSide() int {
	lhs, rhs := s.sides[lhsSide], s.sides[rhsSide]
	if lhs.exhausted {
		return rhsSide
	}
	if rhs.exhausted {
		return lhsSide
	}

	cur := s.sides[s.turn]
	if cur.turnPulls < cur.window {
		return s.turn
	}
	cur.turnPulls = 0
	if s.turn == rhsSide {
		if !s.roundFound {
			s.grow()
		}
		s.roundFound = false
	}
	s.turn ^= 1
	return s.turn
}

func (s *joinStream) grow() {
	maxWindow := s.spec.cfg.maxWindow
	for _, side := range s.sides {
		side.window = min(side.window*2, maxWindow)
	}
	slog.Debug("join window grown",
		"lhs_window", s.sides[lhsSide].window,
		"rhs_window", s.sides[rhsSide].window,
		"lhs_pulled", s.sides[lhsSide].pulled,
		"rhs_pulled", s.sides[rhsSide].pulled,
	)
}

// pull takes one row from side x and probes the other side's index.
// Returns false when the stream has failed.
func (s *joinStream) pull(x int) bool {
	self, other := s.sides[x], s.sides[x^1]

	if !self.stream.Next() {
		if err := self.stream.Err(); err != nil {
			s.fail(err)
			return false
		}
		if err := s.exhaust(x); err != nil {
			s.fail(err)
			return false
		}
		return true
	}
	self.pulled++
	self.turnPulls++
	row := self.stream.Bindings()

	key, ok := row.Key(s.spec.joinVars)
	if !ok {
		// Rows missing a join variable never join.
		if x == lhsSide && s.optional {
			s.emit(row)
		}
		return true
	}

	matched := false
	for _, i := range other.index[key] {
		candidate := &other.rows[i]
		merged, ok := row.Merge(candidate.b)
		if !ok {
			continue
		}
		if f := s.spec.cfg.filter; f != nil && !f(merged) {
			continue
		}
		matched = true
		candidate.matched = true
		s.emit(merged)
	}

	switch {
	case !other.exhausted:
		self.add(row, key)
		if matched {
			self.rows[len(self.rows)-1].matched = true
		}
	case x == lhsSide && s.optional && !matched:
		// rhs is exhausted: nothing can match this row later.
		s.emit(row)
	}
	return true
}

// exhaust freezes side x. The other side's rows were only kept for x to
// probe, so they are released, except unmatched lhs rows of a left join
// which are flushed first.
//
// A side that ends with nothing indexed ends the join too: no later row of
// the other side can match, and a left join with no lhs rows has nothing
// left to emit. The one exception is an empty rhs of a left join, whose
// lhs rows still pass through unmatched.
func (s *joinStream) exhaust(x int) error {
	self, other := s.sides[x], s.sides[x^1]
	self.exhausted = true
	err := self.close()
	slog.Debug("join side exhausted", "side", self.name, "pulled", self.pulled,
		"indexed", len(self.rows), "other_indexed", len(other.rows))

	if x == rhsSide && s.optional {
		for _, r := range other.rows {
			if !r.matched {
				s.emit(r.b)
			}
		}
	}
	other.release()

	if len(self.rows) == 0 && !other.exhausted && (!s.optional || x == lhsSide) {
		slog.Debug("join side empty, abandoning other side", "side", self.name, "other_pulled", other.pulled)
		other.exhausted = true
		if closeErr := other.close(); err == nil {
			err = closeErr
		}
	}
	return err
}

func (s *joinStream) emit(b binding.Bindings) {
	s.queue = append(s.queue, b)
	s.roundFound = true
}

func (s *joinStream) Bindings() binding.Bindings { return s.cur }

func (s *joinStream) Err() error { return s.err }

func (s *joinStream) Close() error {
	s.done = true
	s.queue = nil
	var first error
	for _, side := range s.sides {
		if side == nil {
			continue
		}
		if err := side.close(); err != nil && first == nil {
			first = err
		}
		side.release()
	}
	return first
}

// finish ends a stream whose inputs ran out, reporting a close failure
// through Err.
func (s *joinStream) finish() {
	if err := s.Close(); err != nil && s.err == nil {
		s.err = err
	}
}

func (s *joinStream) fail(err error) {
	s.err = err
	s.Close()
}
