package funnel

import (
	"fmt"

	"eventsim/internal/rng"
	"eventsim/internal/sampling"
)

// ValidateEventConfig normalizes a raw event catalogue. Bare names become
// repeatable events with a random weight in [1, 5]; EventConfig values and maps
// are taken as they are.
func ValidateEventConfig(r *rng.RNG, raw any) ([]EventConfig, error) {
	var items []any
	switch x := raw.(type) {
	case []any:
		items = x
	case []string:
		for _, s := range x {
			items = append(items, s)
		}
	case []EventConfig:
		out := make([]EventConfig, len(x))
		copy(out, x)
		return out, nil
	default:
		return nil, ErrNotAList
	}

	clean := make([]EventConfig, 0, len(items))
	for i, item := range items {
		switch e := item.(type) {
		case string:
			clean = append(clean, EventConfig{
				Event:        e,
				IsFirstEvent: false,
				Properties:   map[string]sampling.Value[any]{},
				Weight:       r.IntRange(1, 5),
			})
		case EventConfig:
			clean = append(clean, e)
		case *EventConfig:
			if e == nil {
				return nil, fmt.Errorf("event %d: %w", i, ErrInvalidIdentifier)
			}
			clean = append(clean, *e)
		case map[string]any:
			ec, err := eventFromMap(e)
			if err != nil {
				return nil, fmt.Errorf("event %d: %w", i, err)
			}
			clean = append(clean, ec)
		default:
			return nil, fmt.Errorf("event %d (%T): %w", i, item, ErrInvalidIdentifier)
		}
	}
	return clean, nil
}

func eventFromMap(m map[string]any) (EventConfig, error) {
	name, ok := m["event"].(string)
	if !ok {
		return EventConfig{}, ErrInvalidIdentifier
	}
	ec := EventConfig{Event: name}

	if first, ok := m["isFirstEvent"].(bool); ok {
		ec.IsFirstEvent = first
	}
	switch w := m["weight"].(type) {
	case int:
		ec.Weight = w
	case int64:
		ec.Weight = int(w)
	case float64:
		ec.Weight = int(w)
	}
	if props, ok := m["properties"].(map[string]any); ok {
		ec.Properties = make(map[string]sampling.Value[any], len(props))
		for k, v := range props {
			ec.Properties[k] = sampling.FromAny(v)
		}
	}
	return ec, nil
}

// SplitEvents separates one-shot first events from repeatable usage events,
// keeping catalogue order.
func SplitEvents(events []EventConfig) (first, usage []string) {
	for _, e := range events {
		if e.IsFirstEvent {
			first = append(first, e.Event)
		} else {
			usage = append(usage, e.Event)
		}
	}
	return first, usage
}
