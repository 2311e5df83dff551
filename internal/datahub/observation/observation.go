// Package observation implements Observation (C3): a Resource specialised
// with filter parameters, JSON sub-field extraction, a ring buffer, a
// transform over the buffer, and a backup policy (spec.md §4.3).
package observation

import (
	"math"

	"github.com/threatflux/datahub/internal/datahub/dherrors"
	"github.com/threatflux/datahub/internal/datahub/handler"
	"github.com/threatflux/datahub/internal/datahub/resource"
	"github.com/threatflux/datahub/internal/datahub/sample"
)

// BackupStore persists and deletes an Observation's buffer contents, keyed
// by the observation's absolute path (spec.md §4.3 "Backup", §6 "Persisted
// state layout"). Implementations live outside this package (e.g. a
// filesystem-backed store under internal/datahub/admin).
type BackupStore interface {
	Persist(path string, buf []sample.Sample) error
	Delete(path string) error
}

// DestinationSink delivers an accepted sample to a symbolic destination
// name (spec.md §4.7) — set by the admin layer, which owns the actual
// destination.Registry.
type DestinationSink interface {
	Deliver(destinationName, observationPath string, s sample.Sample)
}

// Observation wraps a Resource with the filter/buffer/transform pipeline.
type Observation struct {
	*resource.Resource

	MinPeriod       float64 // NaN = unset
	ChangeBy        float64 // NaN = unset
	LowLimit        float64 // NaN = unset
	HighLimit       float64 // NaN = unset
	BufferMaxCount  int     // 0 = unset
	JSONExtraction  string  // "" = unset
	TransformKind   Transform
	BackupPeriodS   float64 // 0 = off
	DestinationName string  // "" = unset
	IsConfigManaged bool
	Relevance bool

	buffer            *ringBuffer
	hasLastAccepted   bool
	lastAcceptedTs    float64
	lastAcceptedValue sample.Sample

	backupStore  BackupStore
	lastBackupAt float64
	hasBackedUp  bool

	destinationSink DestinationSink
}

// SetDestinationSink wires delivery for symbolic (non-path) destination
// names. A nil sink (the default) disables delivery.
func (o *Observation) SetDestinationSink(sink DestinationSink) { o.destinationSink = sink }

// New creates an Observation at path with every filter parameter unset.
func New(path string, table *handler.Table, backupStore BackupStore) *Observation {
	o := &Observation{
		MinPeriod:    math.NaN(),
		ChangeBy:     math.NaN(),
		LowLimit:     math.NaN(),
		HighLimit:    math.NaN(),
		buffer:       newRingBuffer(0),
		backupStore:  backupStore,
	}
	o.Resource = resource.New(resource.Observation, path, sample.Trigger, "", table)
	o.Resource.SetFilter(o.pipeline)
	o.Resource.SetObservationSettings(o)
	return o
}

// HasNonDefaultSettings implements resource.HasObservationSettings: any
// filter/buffer/transform/backup/destination configuration away from its
// unset default makes AdminSettingsPresent true.
func (o *Observation) HasNonDefaultSettings() bool {
	return !math.IsNaN(o.MinPeriod) ||
		!math.IsNaN(o.ChangeBy) ||
		!math.IsNaN(o.LowLimit) ||
		!math.IsNaN(o.HighLimit) ||
		o.BufferMaxCount != 0 ||
		o.JSONExtraction != "" ||
		o.TransformKind != TransformNone ||
		o.BackupPeriodS != 0 ||
		o.DestinationName != ""
}

// SetBufferMaxCount resizes the ring buffer. 0 disables buffering.
func (o *Observation) SetBufferMaxCount(n int) {
	o.BufferMaxCount = n
	o.buffer.Resize(n)
}

// BufferSnapshot returns a copy of the buffered samples, oldest first.
func (o *Observation) BufferSnapshot() []sample.Sample { return o.buffer.Snapshot() }

// ResetToDefaults clears every optional filter field back to "unset" —
// applied by the config loader when an existing observation's config entry
// omits a field (spec.md §4.6: "on an existing observation they mean
// 'reset to the default'").
func (o *Observation) ResetToDefaults() {
	o.MinPeriod = math.NaN()
	o.ChangeBy = math.NaN()
	o.LowLimit = math.NaN()
	o.HighLimit = math.NaN()
	o.SetBufferMaxCount(0)
	o.JSONExtraction = ""
	o.TransformKind = TransformNone
	o.BackupPeriodS = 0
	o.DestinationName = ""
}

// pipeline implements spec.md §4.3 steps 1-7, installed as the underlying
// Resource's Filter hook. It runs after override substitution and before
// current_value is set.
func (o *Observation) pipeline(s sample.Sample) (sample.Sample, bool) {
	if o.JSONExtraction != "" && s.Type() == sample.JSON {
		extracted, ok := extractJSON(o.JSONExtraction, s.AsJSON(), s.Timestamp())
		if !ok {
			return sample.Sample{}, false
		}
		s = extracted
	}

	if o.hasLastAccepted && !math.IsNaN(o.MinPeriod) {
		if s.Timestamp()-o.lastAcceptedTs < o.MinPeriod {
			return sample.Sample{}, false
		}
	}

	if s.Type() == sample.Numeric || s.Type() == sample.Boolean {
		if !withinRange(s.AsNumeric(), o.LowLimit, o.HighLimit) {
			return sample.Sample{}, false
		}
	}

	if o.hasLastAccepted && s.Type() != sample.Trigger && !math.IsNaN(o.ChangeBy) && o.ChangeBy > 0 {
		if changeDistance(s, o.lastAcceptedValue) < o.ChangeBy {
			return sample.Sample{}, false
		}
	}

	o.hasLastAccepted = true
	o.lastAcceptedTs = s.Timestamp()
	o.lastAcceptedValue = s

	if o.BufferMaxCount > 0 {
		o.buffer.Append(s)
	}

	out := s
	if o.TransformKind != TransformNone && o.buffer.Len() > 0 {
		out = apply(o.TransformKind, o.buffer.Snapshot(), s.Timestamp())
	}

	if o.DestinationName != "" && o.destinationSink != nil {
		o.destinationSink.Deliver(o.DestinationName, o.Path(), out)
	}

	o.maybeBackup()

	return out, true
}

// withinRange implements spec.md §4.3 step 3: a live band when high>=low,
// a dead band when high<low, and either bound disabled by NaN.
func withinRange(v, low, high float64) bool {
	loSet, hiSet := !math.IsNaN(low), !math.IsNaN(high)
	switch {
	case !loSet && !hiSet:
		return true
	case loSet && hiSet:
		if high >= low {
			return v >= low && v <= high
		}
		return v <= high || v >= low
	case loSet:
		return v >= low
	default:
		return v <= high
	}
}

// changeDistance implements the comparable-types half of spec.md's
// change-by filter. Numeric and Boolean (as 0/1) are compared by
// magnitude; String and JSON have no numeric distance, so the filter is a
// no-op for them (an explicit resolution of the Open Question in spec.md
// §9 — see DESIGN.md).
func changeDistance(a, b sample.Sample) float64 {
	switch a.Type() {
	case sample.Numeric, sample.Boolean:
		d := a.AsNumeric() - b.AsNumeric()
		if d < 0 {
			d = -d
		}
		return d
	default:
		return math.Inf(1) // never drops: no numeric distance defined
	}
}

func (o *Observation) maybeBackup() {
	if o.backupStore == nil || o.BackupPeriodS <= 0 || o.BufferMaxCount <= 0 {
		return
	}
	now := o.lastAcceptedTs
	if o.hasBackedUp && now-o.lastBackupAt < o.BackupPeriodS {
		return
	}
	if err := o.backupStore.Persist(o.Path(), o.buffer.Snapshot()); err == nil {
		o.hasBackedUp = true
		o.lastBackupAt = now
	}
}

// DeleteBackup removes this observation's persisted buffer, if a backup
// store is configured — called when the observation is deleted.
func (o *Observation) DeleteBackup() error {
	if o.backupStore == nil {
		return nil
	}
	return dherrors.Wrap(o.backupStore.Delete(o.Path()), "deleting observation backup %s", o.Path())
}
