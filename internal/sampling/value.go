package sampling

// Kind tags the shape held by a Value.
type Kind int

const (
	// KindScalar is a single fixed value.
	KindScalar Kind = iota
	// KindList is a set of candidates picked from uniformly.
	KindList
	// KindThunk is a deferred value produced on demand.
	KindThunk
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindList:
		return "list"
	case KindThunk:
		return "thunk"
	default:
		return "scalar"
	}
}

// Value is a property source: a scalar, a list of candidates or a thunk that
// yields another Value when invoked.
type Value[T any] struct {
	kind   Kind
	scalar T
	list   []T
	thunk  func() Value[T]
}

// Scalar wraps a fixed value.
func Scalar[T any](v T) Value[T] {
	return Value[T]{kind: KindScalar, scalar: v}
}

// List wraps a set of candidates.
func List[T any](items ...T) Value[T] {
	return Value[T]{kind: KindList, list: items}
}

// Thunk wraps a deferred value.
func Thunk[T any](fn func() Value[T]) Value[T] {
	return Value[T]{kind: KindThunk, thunk: fn}
}

// Kind returns the tag of v.
func (v Value[T]) Kind() Kind {
	return v.kind
}

// Items returns the candidates of a list value, or nil.
func (v Value[T]) Items() []T {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// FromAny converts a decoded document value: []any becomes a list, an existing
// Value[any] is kept, anything else is a scalar.
func FromAny(v any) Value[any] {
	switch x := v.(type) {
	case Value[any]:
		return x
	case []any:
		return List(x...)
	case []string:
		items := make([]any, len(x))
		for i, s := range x {
			items[i] = s
		}
		return List(items...)
	case func() any:
		return Thunk(func() Value[any] { return FromAny(x()) })
	default:
		return Scalar(v)
	}
}
