// Package generator turns a scenario into a synthetic event log: users are
// created across the window and walk funnels drawn from a weighted pool.
package generator

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"eventsim/internal/distribution"
	"eventsim/internal/enrich"
	"eventsim/internal/eventlog"
	"eventsim/internal/funnel"
	"eventsim/internal/rng"
	"eventsim/internal/sampling"
	"eventsim/internal/scenario"
	"eventsim/internal/temporal"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/maps"
)

// Options override the scenario's volumes. Zero fields keep the scenario value.
type Options struct {
	Name      string
	NumUsers  int
	NumEvents int
	NumDays   int
	// Hook, when set, transforms every event before it is logged.
	Hook enrich.Hook[eventlog.Event]
}

const (
	anonIDLength    = 42
	sessionIDGroups = 4
	sessionIDGroup  = 5
)

var idAlphabet = []byte("abcdefghijklmnopqrstuvwxyz0123456789")

// User is a generated profile. Anonymous and session ids are only filled when
// the scenario asks for them.
type User struct {
	DistinctID   string   `json:"distinct_id"`
	Created      string   `json:"created"`
	AnonymousIDs []string `json:"anonymous_ids,omitempty"`
	SessionIDs   []string `json:"session_ids,omitempty"`
}

// Record flattens the user for the record-oriented sinks.
func (u User) Record() map[string]any {
	rec := map[string]any{
		eventlog.FieldDistinctID: u.DistinctID,
		"created":                u.Created,
	}
	if len(u.AnonymousIDs) > 0 {
		rec["anonymous_ids"] = u.AnonymousIDs
	}
	if len(u.SessionIDs) > 0 {
		rec["session_ids"] = u.SessionIDs
	}
	return rec
}

// Result is everything one run produced.
type Result struct {
	Name    string
	Window  temporal.Window
	Events  []eventlog.Event
	Users   []User
	Funnels []funnel.Funnel
	Summary Summary
}

// UserRecords returns the users as flat records.
func (res *Result) UserRecords() []map[string]any {
	out := make([]map[string]any, len(res.Users))
	for i, u := range res.Users {
		out[i] = u.Record()
	}
	return out
}

type run struct {
	r       *rng.RNG
	clock   temporal.Clock
	spec    *scenario.Scenario
	catalog map[string]funnel.EventConfig
	usage   []string
}

// Generate produces a full run. The same seed, clock and scenario always yield
// the same events.
func Generate(ctx context.Context, r *rng.RNG, clock temporal.Clock, spec *scenario.Scenario, opts Options) (*Result, error) {
	name := firstNonEmpty(opts.Name, spec.Name)
	numUsers := firstPositive(opts.NumUsers, spec.NumUsers)
	numEvents := firstPositive(opts.NumEvents, spec.NumEvents)
	numDays := firstPositive(opts.NumDays, spec.NumDays)
	if numUsers <= 0 {
		return nil, fmt.Errorf("%w: no users to generate", scenario.ErrInvalidSpec)
	}

	funnels := spec.Funnels
	if len(funnels) == 0 {
		funnels = funnel.InferFunnels(r, spec.Events)
	}

	var firstFunnels, pool []*funnel.Funnel
	for i := range funnels {
		f := &funnels[i]
		if f.IsFirstFunnel {
			firstFunnels = append(firstFunnels, f)
			continue
		}
		pool = funnel.WeighFunnels(pool, f)
	}

	g := &run{
		r:       r,
		clock:   clock,
		spec:    spec,
		catalog: make(map[string]funnel.EventConfig, len(spec.Events)),
	}
	var weightedNames []string
	for _, e := range spec.Events {
		g.catalog[e.Event] = e
		if e.IsFirstEvent {
			continue
		}
		g.usage = append(g.usage, e.Event)
		for i := 0; i < max(e.Weight, 1); i++ {
			weightedNames = append(weightedNames, e.Event)
		}
	}
	filler := funnel.PickAWinner(r, weightedNames, -1)

	window := clock.LastDays(numDays)
	window.Earliest, window.Latest = temporal.FixWindow(r, clock, window.Earliest, window.Latest)

	// Per-user activity follows a bell curve around the average share.
	perUser := max(numEvents/numUsers, 1)
	budgets, err := distribution.WeightedRange(r, max(perUser/2, 1), perUser+perUser/2, 1, numUsers)
	if len(budgets) == 0 {
		budgets = []int{perUser}
	}
	if err != nil {
		log.Warn().Err(err).Int("budgets", len(budgets)).Msg("Using partial activity pool")
	}
	events := enrich.New(opts.Hook, "event", map[string]any{"run": name})

	log.Info().
		Str("name", name).
		Int("users", numUsers).
		Int("events", numEvents).
		Int("days", numDays).
		Int("funnels", len(funnels)).
		Bool("seeded", r.Seeded()).
		Msg("Generating events")

	users := make([]User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Births follow a sine curve over the window; the instant within the
		// user's span is clustered like every other timestamp.
		born := temporal.BornDaysAgo(r, numDays, temporal.BornCurve{})
		earliest := max(clock.LastDays(born).Earliest, window.Earliest)
		created, err := temporal.SoupInstant(r, clock, earliest, window.Latest, temporal.SoupOptions{})
		if err != nil {
			return nil, fmt.Errorf("user %d creation time: %w", i, err)
		}
		user := g.newUser(created)
		users = append(users, user)

		budget := budgets[i%len(budgets)]
		var userEvents []eventlog.Event

		// First funnels happen exactly at creation.
		for _, f := range firstFunnels {
			userEvents = append(userEvents, g.runFunnel(f, created, &user)...)
		}

		// Funnels start somewhere between creation and now. A run can yield
		// nothing when all its steps fall after now, so attempts are bounded.
		for attempts := 0; len(pool) > 0 && len(userEvents) < budget && attempts < budget*4; attempts++ {
			f := sampling.OneOf(r, pool)
			start, err := g.sinceCreation(created)
			if err != nil {
				return nil, fmt.Errorf("user %d funnel start: %w", i, err)
			}
			userEvents = append(userEvents, g.runFunnel(f, start, &user)...)
		}

		for len(userEvents) < budget && len(weightedNames) > 0 {
			for _, ev := range filler() {
				if len(userEvents) >= budget {
					break
				}
				at, err := g.sinceCreation(created)
				if err != nil {
					return nil, fmt.Errorf("user %d filler time: %w", i, err)
				}
				userEvents = append(userEvents, g.newEvent(ev, at, &user, nil))
			}
		}

		events.PushAll(userEvents)
	}

	store := eventlog.NewStore()
	store.Append(name, events.Items())

	res := &Result{
		Name:    name,
		Window:  window,
		Events:  store.Events(name),
		Users:   users,
		Funnels: funnels,
	}
	res.Summary = Summarize(res)

	log.Info().
		Str("name", name).
		Int("events", len(res.Events)).
		Int("users", len(res.Users)).
		Float64("medianEventsPerUser", res.Summary.MedianEventsPerUser).
		Msg("Generation complete")
	return res, nil
}

// sinceCreation draws an instant between a user's creation and now.
func (g *run) sinceCreation(created time.Time) (time.Time, error) {
	at, err := temporal.SoupInstant(g.r, g.clock, created.Unix(), g.clock.Now, temporal.SoupOptions{})
	if err != nil {
		return time.Time{}, err
	}
	// The window is in whole seconds; created may sit later within its second.
	if at.Before(created) {
		at = created
	}
	return at, nil
}

// runFunnel plays one pass through f starting at start. Unconverted passes stop
// at a random step. Steps are spread across the funnel's time budget and those
// landing after now are dropped.
func (g *run) runFunnel(f *funnel.Funnel, start time.Time, u *User) []eventlog.Event {
	steps := funnel.Arrange(g.r, *f, g.usage)
	if len(steps) == 0 {
		return nil
	}
	if !g.r.Bool(float64(f.ConversionRate)) && len(steps) > 1 {
		steps = steps[:g.r.IntRange(1, len(steps)-1)]
	}
	if !f.RequireRepeats {
		steps = dedupe(steps)
	}

	budget := time.Duration(f.TimeToConvert * float64(time.Hour))
	slot := budget / time.Duration(len(steps))
	now := g.clock.Time()

	out := make([]eventlog.Event, 0, len(steps))
	at := start
	for i, step := range steps {
		if i > 0 && slot > 0 {
			at = at.Add(time.Duration(g.r.Int63n(int64(slot))))
		}
		if at.After(now) {
			break
		}
		out = append(out, g.newEvent(step, at, u, f.Props))
	}
	return out
}

func (g *run) newEvent(name string, at time.Time, u *User, funnelProps map[string]any) eventlog.Event {
	props := make(map[string]any)
	for _, k := range sortedKeys(g.spec.SuperProps) {
		props[k] = sampling.Choose(g.r, g.spec.SuperProps[k])
	}
	if cfg, ok := g.catalog[name]; ok {
		for _, k := range sortedKeys(cfg.Properties) {
			props[k] = sampling.Choose(g.r, cfg.Properties[k])
		}
	}
	for _, k := range sortedKeys(funnelProps) {
		props[k] = sampling.Choose(g.r, sampling.FromAny(funnelProps[k]))
	}
	if len(u.AnonymousIDs) > 0 {
		props["device_id"] = sampling.OneOf(g.r, u.AnonymousIDs)
	}
	if len(u.SessionIDs) > 0 {
		props["session_id"] = sampling.OneOf(g.r, u.SessionIDs)
	}

	return eventlog.Event{
		Event:      name,
		DistinctID: u.DistinctID,
		Time:       temporal.Format(at, ""),
		InsertID:   g.newID(),
		Properties: props,
	}
}

func (g *run) newUser(created time.Time) User {
	u := User{DistinctID: g.newID(), Created: temporal.Format(created, "")}
	if g.spec.AnonIDs {
		n := sampling.Integer(g.r, 2, 10)
		for i := 0; i < n; i++ {
			u.AnonymousIDs = append(u.AnonymousIDs, g.token(anonIDLength))
		}
	}
	if g.spec.SessionIDs {
		n := sampling.Integer(g.r, 5, 30)
		for i := 0; i < n; i++ {
			groups := make([]string, sessionIDGroups)
			for j := range groups {
				groups[j] = g.token(sessionIDGroup)
			}
			u.SessionIDs = append(u.SessionIDs, strings.Join(groups, "-"))
		}
	}
	return u
}

// token draws n lowercase alphanumerics.
func (g *run) token(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = sampling.OneOf(g.r, idAlphabet)
	}
	return string(b)
}

// newID draws a v4 UUID from the run's generator so ids are reproducible.
func (g *run) newID() string {
	id, err := uuid.NewRandomFromReader(g.r)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func dedupe(steps []string) []string {
	seen := make(map[string]bool, len(steps))
	out := steps[:0:0]
	for _, s := range steps {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return scenario.DefaultName
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
