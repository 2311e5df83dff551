// Package resource implements Resource (C2): the per-node data-flow state
// machine attached to every non-namespace Entry in the resource tree —
// current value, default, override, source back-link, and push-handler
// fan-out, with the type-coercion rules of spec.md §4.2.
package resource

import (
	"time"

	"github.com/threatflux/datahub/internal/datahub/dherrors"
	"github.com/threatflux/datahub/internal/datahub/handler"
	"github.com/threatflux/datahub/internal/datahub/sample"
)

// Kind distinguishes the four resource variants named in spec.md §3.
type Kind int

const (
	Input Kind = iota
	Output
	Observation
	Placeholder
)

func (k Kind) String() string {
	switch k {
	case Input:
		return "input"
	case Output:
		return "output"
	case Observation:
		return "observation"
	case Placeholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

func (k Kind) isIO() bool { return k == Input || k == Output }

// valueSlot pairs a sample with the type it was set under — defaults and
// overrides keep their own type independent of the resource's current
// data_type, per spec.md §3 ("Independent of data_type; used only when
// types match").
type valueSlot struct {
	dataType sample.Type
	value    sample.Sample
}

// Filter lets a specialisation (Observation, see package observation) run
// its own pipeline — JSON extraction, period/range/change-by filtering,
// buffering, transform — before the base push continues at step 3 of
// spec.md §4.2. The returned sample replaces the one that will become
// current_value; ok=false drops the sample (no current_value update, no
// dispatch, no propagation).
type Filter func(s sample.Sample) (sample.Sample, bool)

// Resource is the data-bearing object attached to a non-namespace Entry.
type Resource struct {
	kind      Kind
	path      string
	typeFixed bool // true for Input/Output: dataType never changes after creation
	dataType  sample.Type
	units     string

	current  *sample.Sample
	example  *sample.Sample // supplemented feature: introspection hint, spec §5.3 of SPEC_FULL.md
	def      *valueSlot
	override *valueSlot

	source    *Resource
	consumers []*Resource // resources whose source is this one, in registration order

	handlers *handler.List

	pollInterval time.Duration // supplemented feature: poll-driven Input, SPEC_FULL.md §5.2
	lastPollAt   time.Time

	filter      Filter
	obsSettings HasObservationSettings
}

// New creates a Resource of the given kind at path. dataType/units are
// fixed for Input/Output and adapt to incoming samples for
// Observation/Placeholder (units stays empty for those, per spec.md §3).
func New(kind Kind, path string, dataType sample.Type, units string, table *handler.Table) *Resource {
	return &Resource{
		kind:      kind,
		path:      path,
		typeFixed: kind.isIO(),
		dataType:  dataType,
		units:     units,
		handlers:  handler.NewList(table),
	}
}

// Kind, Path, DataType, Units, Units are the structural accessors.
func (r *Resource) Kind() Kind            { return r.kind }
func (r *Resource) Path() string          { return r.path }
func (r *Resource) DataType() sample.Type { return r.dataType }
func (r *Resource) Units() string         { return r.units }

// SetFilter installs the Observation pipeline hook. Only meaningful for
// Kind() == Observation; called once at construction by package
// observation.
func (r *Resource) SetFilter(f Filter) { r.filter = f }

// CurrentValue returns the resource's current value, or ok=false if none
// has ever been pushed.
func (r *Resource) CurrentValue() (sample.Sample, bool) {
	if r.current == nil {
		return sample.Sample{}, false
	}
	return *r.current, true
}

// ExampleValue returns the introspection-hint sample recorded by
// SetExampleValue (supplemented feature, SPEC_FULL.md §5.3), if any.
func (r *Resource) ExampleValue() (sample.Sample, bool) {
	if r.example == nil {
		return sample.Sample{}, false
	}
	return *r.example, true
}

// SetExampleValue records an introspection-hint sample for UI/documentation
// purposes; it never participates in push/filter logic.
func (r *Resource) SetExampleValue(s sample.Sample) {
	v := s
	r.example = &v
}

// SetPollInterval marks an Input resource as poll-driven (supplemented
// feature, SPEC_FULL.md §5.2). Only valid on Input resources; a zero
// duration disables polling.
func (r *Resource) SetPollInterval(d time.Duration) error {
	if r.kind != Input {
		return dherrors.ErrBadParameter
	}
	r.pollInterval = d
	return nil
}

// ShouldPoll reports whether the poll interval has elapsed since the last
// time it returned true, and if so records now as that time. Nothing in
// the server calls it; no poll scheduler exists.
func (r *Resource) ShouldPoll(now time.Time) bool {
	if r.pollInterval <= 0 {
		return false
	}
	if now.Sub(r.lastPollAt) < r.pollInterval {
		return false
	}
	r.lastPollAt = now
	return true
}

// HasObservationSettings lets package observation report whether its
// filter/buffer/transform/backup configuration is non-default, so it folds
// into AdminSettingsPresent alongside default/override/source.
type HasObservationSettings interface {
	HasNonDefaultSettings() bool
}

// SetObservationSettings wires the Observation-specific admin-settings
// check. Called once at construction by package observation; a nil value
// (the default) means "no observation-specific settings to check".
func (r *Resource) SetObservationSettings(s HasObservationSettings) { r.obsSettings = s }

// AdminSettingsPresent is the derived boolean of spec.md §3: default,
// override, source, or (for Observations) non-default pipeline config.
func (r *Resource) AdminSettingsPresent() bool {
	if r.def != nil || r.override != nil || r.source != nil {
		return true
	}
	if r.obsSettings != nil {
		return r.obsSettings.HasNonDefaultSettings()
	}
	return false
}

// SetDefault sets the resource's default value. If no current value exists
// yet, this counts as a push of the default (and therefore propagates);
// if a current value already exists, it does not propagate.
func (r *Resource) SetDefault(t sample.Type, s sample.Sample) error {
	r.def = &valueSlot{dataType: t, value: s}
	if r.current == nil {
		return r.Push(t, s)
	}
	return nil
}

// RemoveDefault clears the default value.
func (r *Resource) RemoveDefault() { r.def = nil }

// Default returns the resource's default value and the type it was set
// under, or ok=false if none has been set.
func (r *Resource) Default() (s sample.Sample, t sample.Type, ok bool) {
	if r.def == nil {
		return sample.Sample{}, 0, false
	}
	return r.def.value, r.def.dataType, true
}

// SetOverride sets the resource's override value. Per spec.md §4.2 step 1,
// an override applies to every subsequent push whose resource is an
// Input/Output with a matching type, or any non-I/O resource.
func (r *Resource) SetOverride(t sample.Type, s sample.Sample) {
	r.override = &valueSlot{dataType: t, value: s}
}

// RemoveOverride clears the override value.
func (r *Resource) RemoveOverride() { r.override = nil }

// SetSource wires this resource to receive pushes transitively from other.
// Fails with dherrors.ErrWouldCycle if following other's source chain would
// reach r, leaving the existing edge (if any) unchanged.
func (r *Resource) SetSource(other *Resource) error {
	if other == r {
		return dherrors.ErrWouldCycle
	}
	for cur := other; cur != nil; cur = cur.source {
		if cur == r {
			return dherrors.ErrWouldCycle
		}
	}
	r.RemoveSource()
	r.source = other
	other.consumers = append(other.consumers, r)
	return nil
}

// RemoveSource clears this resource's source edge, if any.
func (r *Resource) RemoveSource() {
	if r.source == nil {
		return
	}
	old := r.source
	r.source = nil
	for i, c := range old.consumers {
		if c == r {
			old.consumers = append(old.consumers[:i], old.consumers[i+1:]...)
			break
		}
	}
}

// Source returns the resource this one receives pushes from, if any.
func (r *Resource) Source() *Resource { return r.source }

// ConsumerCount reports how many resources currently use r as their
// source — the tree uses this to decide whether a Placeholder with no
// admin settings can be pruned (spec.md §3: "Placeholders vanish when
// admin_settings_present = false and no incoming source edges remain").
func (r *Resource) ConsumerCount() int { return len(r.consumers) }

// clearSourceFrom is invoked by the tree when other's Entry disappears, so
// that a dangling weak reference is cleared instead of left stale.
func (r *Resource) clearSourceFrom(other *Resource) {
	if r.source == other {
		r.source = nil
	}
}

// DetachAsSource removes r as the source of every one of its consumers
// (clearing their weak back-reference), and clears r's own consumer list —
// used when r's Entry is being destroyed.
func (r *Resource) DetachAsSource() {
	for _, c := range r.consumers {
		c.clearSourceFrom(r)
	}
	r.consumers = nil
	r.RemoveSource()
}

// AddHandler registers a push handler and returns its opaque reference.
func (r *Resource) AddHandler(t sample.Type, cb handler.Callback) handler.Ref {
	return r.handlers.Add(t, cb)
}

// RemoveHandler removes a previously registered push handler.
func (r *Resource) RemoveHandler(ref handler.Ref) error {
	return r.handlers.Remove(ref)
}

// MigrateOnReplace moves default, override, and source from old to neu —
// the resource-replacement policy of spec.md §3 ("Replacing a Resource at
// an Entry moves default, override, and source from the old to the new
// Resource"). old's push handlers are intentionally left behind (they are
// discarded, per the same paragraph). Resources that had old as their
// source are repointed at neu so in-flight data-flow edges survive the
// replacement.
func MigrateOnReplace(old, neu *Resource) {
	if old.def != nil {
		neu.def = old.def
	}
	if old.override != nil {
		neu.override = old.override
	}
	if old.source != nil {
		src := old.source
		old.source = nil
		for i, c := range src.consumers {
			if c == old {
				src.consumers = append(src.consumers[:i], src.consumers[i+1:]...)
				break
			}
		}
		_ = neu.SetSource(src)
	}
	for _, c := range old.consumers {
		c.source = neu
		neu.consumers = append(neu.consumers, c)
	}
	old.consumers = nil
}

// Push implements the data-flow algorithm of spec.md §4.2 (and, via the
// Filter hook, §4.3 for Observations). t is the type the caller is pushing
// as; for Input/Output it must coerce to the resource's fixed type.
func (r *Resource) Push(t sample.Type, s sample.Sample) error {
	// Step 1: override substitution, keeping the original timestamp.
	if r.override != nil && (!r.kind.isIO() || r.override.dataType == r.dataType) {
		s = r.override.value.WithTimestamp(s.Timestamp())
		t = r.override.dataType
	}

	// Step 2: type coercion (Input/Output) or type adoption (Observation/Placeholder).
	if r.typeFixed {
		if t != r.dataType {
			coerced, ok := sample.Coerce(r.dataType, s)
			if !ok {
				return dherrors.ErrTypeMismatch
			}
			s = coerced
		}
	}

	// §4.3: specialised filter pipeline (Observation only). May rewrite the
	// sample (transform/extraction) or drop it.
	if r.filter != nil {
		var ok bool
		s, ok = r.filter(s)
		if !ok {
			return nil
		}
	}

	if !r.typeFixed {
		r.dataType = s.Type()
	}

	// Step 3: set current value.
	v := s
	r.current = &v

	// Step 4: dispatch to push handlers.
	r.handlers.Dispatch(r.path, s)

	// Step 5: fan out to every resource whose source is this one, in
	// registration order, depth-first.
	for _, c := range r.consumers {
		_ = c.Push(s.Type(), s)
	}

	return nil
}
