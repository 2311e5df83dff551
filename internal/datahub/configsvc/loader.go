// Package configsvc implements ConfigLoader (C6): a two-phase
// validate-then-apply driver over the JSON schema of spec.md §4.6, with
// relevance marking and rollback-on-failure.
package configsvc

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/threatflux/datahub/internal/datahub/dherrors"
	"github.com/threatflux/datahub/internal/datahub/observation"
	"github.com/threatflux/datahub/internal/datahub/sample"
	"github.com/threatflux/datahub/internal/datahub/tree"
)

// Source reopens the config document for a fresh read — the loader
// reads it twice, once per phase (spec.md §4.6: "both phases driven off
// the same streaming parser but re-reading the file").
type Source func() (io.ReadCloser, error)

// Loader drives config loads against a single ResourceTree. Only one
// load may be in progress at a time (spec.md §4.6).
type Loader struct {
	tree *tree.Tree
	busy bool
}

// New creates a Loader bound to t.
func New(t *tree.Tree) *Loader { return &Loader{tree: t} }

// Load runs the full validate-then-apply-then-sweep sequence. Supported
// encodings are limited to "json"; anything else fails with
// dherrors.ErrUnsupported without touching src.
func (l *Loader) Load(encoding string, src Source) (LoadResult, error) {
	if encoding != "json" {
		return LoadResult{}, dherrors.ErrUnsupported
	}
	if l.busy {
		return LoadResult{}, dherrors.ErrBusy
	}
	l.busy = true
	defer func() { l.busy = false }()

	if _, err := l.validate(src); err != nil {
		return LoadResult{}, err
	}

	doc, err := l.readDocument(src)
	if err != nil {
		// Already validated successfully once; a failure re-reading here
		// means the source changed or disappeared between phases.
		return LoadResult{}, &LoadError{Kind: "IoError", Message: err.Error()}
	}

	result, err := l.apply(doc)
	if err != nil {
		l.rollback()
		return LoadResult{}, dherrors.Wrap(dherrors.ErrFault, "config apply failed: %v", err)
	}
	return result, nil
}

func (l *Loader) readDocument(src Source) (*Document, error) {
	r, err := src()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// validate implements spec.md §4.6 phase 1: parse without mutating the
// tree, checking path syntax, string-length limits, and well-formedness.
func (l *Loader) validate(src Source) (*Document, error) {
	r, err := src()
	if err != nil {
		return nil, &LoadError{Kind: "IoError", Message: err.Error()}
	}
	defer r.Close()

	dec := json.NewDecoder(r)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		var syntaxErr *json.SyntaxError
		offset := int64(0)
		if errors.As(err, &syntaxErr) {
			offset = syntaxErr.Offset
		}
		return nil, &LoadError{Kind: "FormatError", ByteOffset: offset, Message: err.Error()}
	}

	for name, cfg := range doc.Obs {
		if err := tree.ValidatePath(tree.NormalizeObsPath(name)); err != nil {
			return nil, &LoadError{Kind: "BadParameter", Message: "invalid observation name " + name}
		}
		if cfg.Source == nil || cfg.Destination == nil {
			return nil, &LoadError{Kind: "FormatError", Message: "observation " + name + " did not have both r and d"}
		}
		if err := tree.ValidatePath(*cfg.Source); err != nil {
			return nil, &LoadError{Kind: "BadParameter", Message: "invalid source path for " + name}
		}
		if strings.HasPrefix(*cfg.Destination, "/") {
			if err := tree.ValidatePath(*cfg.Destination); err != nil {
				return nil, &LoadError{Kind: "BadParameter", Message: "invalid destination path for " + name}
			}
		}
		if cfg.Transform != nil {
			if _, ok := observation.ParseTransform(*cfg.Transform); !ok {
				return nil, &LoadError{Kind: "FormatError", Message: "unknown transform for " + name}
			}
		}
	}
	for path := range doc.State {
		if err := tree.ValidatePath(path); err != nil {
			return nil, &LoadError{Kind: "BadParameter", Message: "invalid state path " + path}
		}
	}

	return &doc, nil
}

// apply implements spec.md §4.6 phases 2-3: relevance clear, per-entry
// apply, and the post-apply sweep.
func (l *Loader) apply(doc *Document) (LoadResult, error) {
	var result LoadResult

	tree.PostOrder(l.tree.Root(), func(e *tree.Entry) {
		if e.Kind() == tree.ObservationEntry && e.Observation().IsConfigManaged {
			e.Observation().Relevance = false
		}
	})

	for name, cfg := range doc.Obs {
		obsPath := tree.NormalizeObsPath(name)
		_, findErr := l.tree.Find(obsPath)
		isNew := errors.Is(findErr, dherrors.ErrNotFound)

		obs, err := l.tree.GetObservation(obsPath)
		if err != nil {
			return LoadResult{}, err
		}
		if !isNew {
			obs.ResetToDefaults()
		}
		obs.IsConfigManaged = true
		obs.Relevance = true

		if err := applyObsConfig(l.tree, obs, cfg); err != nil {
			return LoadResult{}, err
		}

		if isNew {
			result.Created++
		} else {
			result.Updated++
		}
	}

	for path, seed := range doc.State {
		res, err := l.tree.Resolve(path)
		if err != nil {
			continue // best-effort seed: ignore failures per spec.md §4.6
		}
		t, s, ok := seedSample(seed)
		if !ok {
			continue
		}
		_ = res.SetDefault(t, s)
		_ = res.Push(t, s)
	}

	tree.PostOrder(l.tree.Root(), func(e *tree.Entry) {
		if e.Kind() != tree.ObservationEntry || !e.Observation().IsConfigManaged {
			return
		}
		if !e.Observation().Relevance {
			_ = l.tree.DeleteObservation(e.Path())
			result.Deleted++
			return
		}
		e.Observation().Relevance = false
	})

	return result, nil
}

func applyObsConfig(t *tree.Tree, obs *observation.Observation, cfg ObsConfig) error {
	if cfg.Source != nil {
		src, err := t.Resolve(*cfg.Source)
		if err != nil {
			return err
		}
		if err := obs.SetSource(src); err != nil {
			return err
		}
	}
	if cfg.Destination != nil {
		if strings.HasPrefix(*cfg.Destination, "/") {
			target, err := t.Resolve(*cfg.Destination)
			if err != nil {
				return err
			}
			if err := target.SetSource(obs.Resource); err != nil {
				return err
			}
		} else {
			obs.DestinationName = *cfg.Destination
		}
	}
	if cfg.MinPeriod != nil {
		obs.MinPeriod = *cfg.MinPeriod
	}
	if cfg.ChangeBy != nil {
		obs.ChangeBy = *cfg.ChangeBy
	}
	if cfg.HighLimit != nil {
		obs.HighLimit = *cfg.HighLimit
	}
	if cfg.LowLimit != nil {
		obs.LowLimit = *cfg.LowLimit
	}
	if cfg.BufferMaxCount != nil {
		obs.SetBufferMaxCount(*cfg.BufferMaxCount)
	}
	if cfg.Transform != nil {
		tr, ok := observation.ParseTransform(*cfg.Transform)
		if !ok {
			return dherrors.ErrFormatError
		}
		obs.TransformKind = tr
	}
	if cfg.JSONExtraction != nil {
		obs.JSONExtraction = *cfg.JSONExtraction
	}
	return nil
}

func seedSample(seed StateSeed) (sample.Type, sample.Sample, bool) {
	if seed.DataType != nil && *seed.DataType == "json" {
		encoded, err := json.Marshal(seed.Value)
		if err != nil {
			return 0, sample.Sample{}, false
		}
		return sample.JSON, sample.New(sample.JSON, 0, string(encoded)), true
	}
	switch v := seed.Value.(type) {
	case bool:
		return sample.Boolean, sample.New(sample.Boolean, 0, v), true
	case float64:
		return sample.Numeric, sample.New(sample.Numeric, 0, v), true
	case string:
		return sample.String, sample.New(sample.String, 0, v), true
	default:
		return 0, sample.Sample{}, false
	}
}

// rollback implements spec.md §4.6 step 4: on apply failure, delete
// every config-managed observation unconditionally, since settings may
// have been partially mutated and the pre-existing set can't be
// reconstructed.
func (l *Loader) rollback() {
	tree.PostOrder(l.tree.Root(), func(e *tree.Entry) {
		if e.Kind() == tree.ObservationEntry && e.Observation().IsConfigManaged {
			_ = l.tree.DeleteObservation(e.Path())
		}
	})
}
