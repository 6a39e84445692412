// Package enrich provides an append-only collection whose inserts pass through a
// caller-supplied hook. Generated records use it to gain derived fields or fan
// out into several records before they reach the event log.
package enrich

import (
	"fmt"
	"reflect"

	"github.com/rs/zerolog/log"
)

// Outcome reports what a Push did.
type Outcome int

const (
	// Skipped means the input was empty and nothing was stored.
	Skipped Outcome = iota
	// Inserted means every input went through the hook and its results were stored.
	Inserted
	// FallbackInserted means the hook failed and the untransformed item was stored.
	FallbackInserted
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Inserted:
		return "inserted"
	case FallbackInserted:
		return "fallback-inserted"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Hook transforms one item before insertion. It may return any number of items.
type Hook[T any] func(item T, typ string, extras map[string]any) ([]T, error)

// Array is a hook-enriched collection. It is not safe for concurrent use.
type Array[T any] struct {
	Hook   Hook[T]
	Type   string
	Extras map[string]any

	items []T
}

// New creates an Array. A nil hook stores items as they are.
func New[T any](hook Hook[T], typ string, extras map[string]any) *Array[T] {
	return &Array[T]{Hook: hook, Type: typ, Extras: extras}
}

// Push inserts a single item.
func (a *Array[T]) Push(item T) Outcome {
	if isEmpty(item) {
		return Skipped
	}
	if a.apply(item) {
		return Inserted
	}
	return FallbackInserted
}

// PushAll inserts items in order. A hook failure inserts the failing item as it
// is and stops; later items are not processed.
func (a *Array[T]) PushAll(items []T) Outcome {
	if len(items) == 0 {
		return Skipped
	}
	pushed := false
	for _, item := range items {
		if isEmpty(item) {
			continue
		}
		if !a.apply(item) {
			return FallbackInserted
		}
		pushed = true
	}
	if !pushed {
		return Skipped
	}
	return Inserted
}

// Items returns the stored items. The slice is shared with the Array.
func (a *Array[T]) Items() []T {
	return a.items
}

// Len returns the number of stored items.
func (a *Array[T]) Len() int {
	return len(a.items)
}

// apply runs the hook and stores its output. It returns false when the hook
// failed and the original item was stored instead.
func (a *Array[T]) apply(item T) (ok bool) {
	if a.Hook == nil {
		a.items = append(a.items, item)
		return true
	}

	out, err := a.call(item)
	if err != nil {
		log.Warn().Err(err).Str("type", a.Type).Msg("Enrichment hook failed, storing original item")
		a.items = append(a.items, item)
		return false
	}
	a.items = append(a.items, out...)
	return true
}

func (a *Array[T]) call(item T) (out []T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("hook panic: %v", rec)
		}
	}()
	return a.Hook(item, a.Type, a.Extras)
}

// isEmpty reports nil pointers, interfaces, maps and slices, zero-length maps
// and slices, and zero-valued structs.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return rv.IsNil() || rv.Len() == 0
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	case reflect.Struct:
		return rv.IsZero()
	}
	return false
}
