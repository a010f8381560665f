package plan

import (
	"fmt"
	"strings"

	"github.com/roach88/triplestream/internal/dataset"
	"github.com/roach88/triplestream/internal/eval"
)

// BuildOption configures Build.
type BuildOption func(*builder)

// WithDefaultWindows sets the windows used by joins that do not set their own.
func WithDefaultWindows(lhs, rhs int) BuildOption {
	return func(b *builder) {
		b.lhsWindow = lhs
		b.rhsWindow = rhs
	}
}

// WithMaxWindow caps window growth for every join.
func WithMaxWindow(n int) BuildOption {
	return func(b *builder) { b.maxWindow = n }
}

type builder struct {
	ds        dataset.Dataset
	lhsWindow int
	rhsWindow int
	maxWindow int
}

// Build turns a plan into an evaluation block over ds.
// The plan is validated first; construction errors from eval are
// returned wrapped with the node path.
func Build(n Node, ds dataset.Dataset, opts ...BuildOption) (eval.Block, error) {
	if res := Validate(n); !res.Valid {
		return nil, fmt.Errorf("invalid plan: %s", strings.Join(res.Errors, "; "))
	}
	b := &builder{
		ds:        ds,
		lhsWindow: eval.DefaultWindow,
		rhsWindow: eval.DefaultWindow,
		maxWindow: eval.DefaultMaxWindow,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b.build("query", n)
}

func (b *builder) build(path string, n Node) (eval.Block, error) {
	switch n := n.(type) {
	case *Pattern:
		block, err := eval.NewPatternBlock(n.Triple, b.ds)
		return wrap(path, block, err)

	case *BGP:
		children, err := b.buildAll(path+".bgp", n.Children)
		if err != nil {
			return nil, err
		}
		block, err := eval.NewBGPBlock(children...)
		return wrap(path, block, err)

	case *Join:
		lhs, rhs, opts, err := b.buildJoinInputs(path+".join", n.Left, n.Right, n.LHSWindow, n.RHSWindow)
		if err != nil {
			return nil, err
		}
		block, err := eval.NewJoinBlock(lhs, rhs, n.On, opts...)
		return wrap(path+".join", block, err)

	case *LeftJoin:
		lhs, rhs, opts, err := b.buildJoinInputs(path+".leftjoin", n.Left, n.Right, n.LHSWindow, n.RHSWindow)
		if err != nil {
			return nil, err
		}
		if n.Filter != nil {
			f, err := CompilePredicate(n.Filter)
			if err != nil {
				return nil, fmt.Errorf("%s.leftjoin.filter: %w", path, err)
			}
			opts = append(opts, eval.WithFilter(f))
		}
		block, err := eval.NewLeftJoinBlock(lhs, rhs, n.On, opts...)
		return wrap(path+".leftjoin", block, err)

	case *Union:
		branches, err := b.buildAll(path+".union", n.Branches)
		if err != nil {
			return nil, err
		}
		block, err := eval.NewUnionBlock(branches...)
		return wrap(path, block, err)

	case *Filter:
		input, err := b.build(path+".filter", n.Input)
		if err != nil {
			return nil, err
		}
		f, err := CompilePredicate(n.Where)
		if err != nil {
			return nil, fmt.Errorf("%s.filter: %w", path, err)
		}
		block, err := eval.NewFilterBlock(input, f)
		return wrap(path, block, err)

	case *Slice:
		input, err := b.build(path+".slice", n.Input)
		if err != nil {
			return nil, err
		}
		block, err := eval.NewSliceBlock(input, n.Offset, n.Limit)
		return wrap(path, block, err)

	case nil:
		return nil, fmt.Errorf("%s: missing plan node", path)

	default:
		return nil, fmt.Errorf("%s: unsupported plan node type: %T", path, n)
	}
}

func (b *builder) buildAll(path string, nodes []Node) ([]eval.Block, error) {
	blocks := make([]eval.Block, 0, len(nodes))
	for i, c := range nodes {
		block, err := b.build(fmt.Sprintf("%s[%d]", path, i), c)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func (b *builder) buildJoinInputs(path string, left, right Node, lhsWindow, rhsWindow int) (eval.Block, eval.Block, []eval.JoinOption, error) {
	lhs, err := b.build(path+".lhs", left)
	if err != nil {
		return nil, nil, nil, err
	}
	rhs, err := b.build(path+".rhs", right)
	if err != nil {
		return nil, nil, nil, err
	}

	if lhsWindow == 0 {
		lhsWindow = b.lhsWindow
	}
	if rhsWindow == 0 {
		rhsWindow = b.rhsWindow
	}
	opts := []eval.JoinOption{
		eval.WithLHSWindow(lhsWindow),
		eval.WithRHSWindow(rhsWindow),
		eval.WithMaxWindow(max(b.maxWindow, lhsWindow, rhsWindow)),
	}
	return lhs, rhs, opts, nil
}

// wrap attaches the node path to construction errors and never returns
// a typed nil block.
func wrap[B eval.Block](path string, block B, err error) (eval.Block, error) {
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return block, nil
}
