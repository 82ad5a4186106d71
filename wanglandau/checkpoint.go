package wanglandau

import "mcsim/histogram"

// checkpointExtra is the Wang-Landau-specific payload carried in the
// engine checkpoint envelope's Extra field: the modification factor and
// both histograms, flattened to parallel key/value slices since JSON
// object keys must be strings and float64 bin keys are not.
type checkpointExtra struct {
	ModFactor       float64   `json:"mod_factor"`
	DOSKeys         []float64 `json:"dos_keys"`
	DOSValues       []float64 `json:"dos_values"`
	IncidenceKeys   []float64 `json:"incidence_keys"`
	IncidenceValues []int     `json:"incidence_values"`
}

// SaveCheckpoint serializes the control plane (RNG state, dump path, step
// counters) together with the modification factor and both histograms.
func (w *Engine[E, S]) SaveCheckpoint(path string) error {
	extra := checkpointExtra{ModFactor: w.ModFactor}
	w.DOS.Range(func(k, v float64) bool {
		extra.DOSKeys = append(extra.DOSKeys, k)
		extra.DOSValues = append(extra.DOSValues, v)
		return true
	})
	w.Incidence.Range(func(k float64, v int) bool {
		extra.IncidenceKeys = append(extra.IncidenceKeys, k)
		extra.IncidenceValues = append(extra.IncidenceValues, v)
		return true
	})
	return w.Base.SaveCheckpoint(path, &extra)
}

// LoadCheckpoint restores the control plane and the modification factor
// and both histograms saved by SaveCheckpoint. DOS and Incidence must
// already exist (constructed by New with the same binning parameters);
// their contents are replaced, not merged.
func (w *Engine[E, S]) LoadCheckpoint(path string) error {
	var extra checkpointExtra
	if err := w.Base.LoadCheckpoint(path, &extra); err != nil {
		return err
	}
	w.ModFactor = extra.ModFactor
	dos, incidence := histogram.NewDiscrete[float64](), histogram.NewDiscrete[int]()
	if w.DOS.Kind() == histogram.Binned {
		var err error
		if dos, err = histogram.NewBinned[float64](w.DOS.Width(), w.DOS.Reference()); err != nil {
			return err
		}
		if incidence, err = histogram.NewBinned[int](w.Incidence.Width(), w.Incidence.Reference()); err != nil {
			return err
		}
	}
	w.DOS, w.Incidence = dos, incidence
	for i, k := range extra.DOSKeys {
		w.DOS.Set(k, extra.DOSValues[i])
	}
	for i, k := range extra.IncidenceKeys {
		w.Incidence.Set(k, extra.IncidenceValues[i])
	}
	return nil
}
