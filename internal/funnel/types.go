// Package funnel models user journeys: the event catalogue, the funnels built
// from it and the biased selection and perturbation applied when funnels run.
package funnel

import (
	"errors"
	"fmt"

	"eventsim/internal/sampling"
)

var (
	// ErrNotAList is returned when the event catalogue is not a list.
	ErrNotAList = errors.New("events must be an array")
	// ErrInvalidIdentifier is returned for catalogue entries that do not name an event.
	ErrInvalidIdentifier = errors.New("event identifier must be a string")
	// ErrInvalidFunnel is returned by Funnel.Validate.
	ErrInvalidFunnel = errors.New("invalid funnel")
)

// Order controls how a funnel's sequence is arranged each time it runs.
type Order string

const (
	OrderSequential        Order = "sequential"
	OrderRandom            Order = "random"
	OrderFirstFixed        Order = "first-fixed"
	OrderLastFixed         Order = "last-fixed"
	OrderFirstAndLastFixed Order = "first-and-last-fixed"
	OrderMiddleFixed       Order = "middle-fixed"
	OrderMiddleShuffled    Order = "middle-shuffled"
	OrderInterrupted       Order = "interrupted"
)

// Valid reports whether o is a known order. The empty order runs sequentially.
func (o Order) Valid() bool {
	switch o {
	case "", OrderSequential, OrderRandom, OrderFirstFixed, OrderLastFixed,
		OrderFirstAndLastFixed, OrderMiddleFixed, OrderMiddleShuffled, OrderInterrupted:
		return true
	}
	return false
}

// EventConfig describes one event of the catalogue.
type EventConfig struct {
	Event        string                          `json:"event" yaml:"event"`
	IsFirstEvent bool                            `json:"isFirstEvent" yaml:"isFirstEvent"`
	Properties   map[string]sampling.Value[any] `json:"-" yaml:"-"`
	Weight       int                             `json:"weight" yaml:"weight"`
}

// Funnel is a user journey through a sequence of events.
type Funnel struct {
	Sequence       []string       `json:"sequence" yaml:"sequence"`
	ConversionRate int            `json:"conversionRate" yaml:"conversionRate"`
	Order          Order          `json:"order" yaml:"order"`
	RequireRepeats bool           `json:"requireRepeats" yaml:"requireRepeats"`
	Props          map[string]any `json:"props" yaml:"props"`
	// TimeToConvert is the time budget of one run, in hours.
	TimeToConvert float64 `json:"timeToConvert" yaml:"timeToConvert"`
	IsFirstFunnel bool    `json:"isFirstFunnel" yaml:"isFirstFunnel"`
	Weight        int     `json:"weight" yaml:"weight"`
}

// Template returns the defaults every inferred funnel starts from.
func Template() Funnel {
	return Funnel{
		Sequence:       []string{},
		ConversionRate: 50,
		Order:          OrderSequential,
		RequireRepeats: false,
		Props:          map[string]any{},
		TimeToConvert:  1,
		IsFirstFunnel:  false,
		Weight:         1,
	}
}

// Validate checks the funnel invariants.
func (f Funnel) Validate() error {
	if len(f.Sequence) == 0 {
		return fmt.Errorf("%w: empty sequence", ErrInvalidFunnel)
	}
	if !f.Order.Valid() {
		return fmt.Errorf("%w: unknown order %q", ErrInvalidFunnel, f.Order)
	}
	if f.ConversionRate < 0 || f.ConversionRate > 100 {
		return fmt.Errorf("%w: conversion rate %d outside [0, 100]", ErrInvalidFunnel, f.ConversionRate)
	}
	if f.IsFirstFunnel && (len(f.Sequence) != 1 || f.ConversionRate != 100) {
		return fmt.Errorf("%w: first funnel must be a single step at 100%% conversion", ErrInvalidFunnel)
	}
	if f.Weight < 0 {
		return fmt.Errorf("%w: negative weight %d", ErrInvalidFunnel, f.Weight)
	}
	return nil
}
