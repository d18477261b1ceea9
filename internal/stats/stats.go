// Package stats analyzes a store's binning index: how many bins are
// actually populated, how features distribute across levels, and how many
// candidate bins a typical feature forces a query to visit.
package stats

import (
	"fmt"
	"io"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/inodb/hgidx/internal/binning"
	"github.com/inodb/hgidx/internal/store"
)

// LevelStats summarizes one level of the hierarchy (finest first).
type LevelStats struct {
	Level       int
	BinsUsed    uint32
	Features    uint64
	MaxBinLoad  int
	MeanBinLoad float64
}

// Report holds the computed statistics for a whole store.
type Report struct {
	Geometry       binning.Geometry
	Sequences      int
	TotalFeatures  uint64
	BinsUsed       uint32
	TotalBins      uint32
	RootBinLoad    uint64
	Levels         []LevelStats
	MinSize        uint32
	MaxSize        uint32
	MeanSize       float64
	MedianSize     float64
	MeanBinsPerHit float64 // avg candidate bins a feature-sized query visits
}

type seqAccum struct {
	features    uint64
	rootLoad    uint64
	binsUsed    uint32
	levelBins   []uint32
	levelFeats  []uint64
	levelMax    []int
	sizes       []uint32
	binsVisited uint64
}

// Analyze computes a Report for the open store. Sequences are analyzed
// concurrently; the index is immutable so no locking is needed beyond
// collecting results.
func Analyze(r *store.Reader) (*Report, error) {
	geom := r.Geometry()
	names := r.Sequences()

	accums := make([]*seqAccum, len(names))
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			si := r.SequenceIndex(name)
			if si == nil {
				return fmt.Errorf("stats: sequence %q vanished from index", name)
			}
			accums[i] = analyzeSequence(geom, si)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := &Report{
		Geometry:  geom,
		Sequences: len(names),
		TotalBins: geom.TotalBins(),
		Levels:    make([]LevelStats, geom.NumLevels),
	}
	var sizes []uint32
	var binsVisited uint64
	for k := range rep.Levels {
		rep.Levels[k].Level = k
	}
	for _, a := range accums {
		rep.TotalFeatures += a.features
		rep.RootBinLoad += a.rootLoad
		rep.BinsUsed += a.binsUsed
		for k := range rep.Levels {
			rep.Levels[k].BinsUsed += a.levelBins[k]
			rep.Levels[k].Features += a.levelFeats[k]
			if a.levelMax[k] > rep.Levels[k].MaxBinLoad {
				rep.Levels[k].MaxBinLoad = a.levelMax[k]
			}
		}
		sizes = append(sizes, a.sizes...)
		binsVisited += a.binsVisited
	}
	for k := range rep.Levels {
		if rep.Levels[k].BinsUsed > 0 {
			rep.Levels[k].MeanBinLoad = float64(rep.Levels[k].Features) / float64(rep.Levels[k].BinsUsed)
		}
	}

	if len(sizes) > 0 {
		sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })
		rep.MinSize = sizes[0]
		rep.MaxSize = sizes[len(sizes)-1]
		var sum uint64
		for _, s := range sizes {
			sum += uint64(s)
		}
		rep.MeanSize = float64(sum) / float64(len(sizes))
		rep.MedianSize = float64(sizes[len(sizes)/2])
		rep.MeanBinsPerHit = float64(binsVisited) / float64(len(sizes))
	}
	return rep, nil
}

func analyzeSequence(geom binning.Geometry, si *store.SequenceIndex) *seqAccum {
	a := &seqAccum{
		levelBins:  make([]uint32, geom.NumLevels),
		levelFeats: make([]uint64, geom.NumLevels),
		levelMax:   make([]int, geom.NumLevels),
	}
	var scratch []uint32
	for _, b := range si.Bins {
		n := len(b.Entries)
		a.features += uint64(n)
		a.binsUsed++
		if b.ID == binning.RootBin {
			a.rootLoad += uint64(n)
		} else {
			k := geom.Level(b.ID)
			a.levelBins[k]++
			a.levelFeats[k] += uint64(n)
			if n > a.levelMax[k] {
				a.levelMax[k] = n
			}
		}
		for _, e := range b.Entries {
			a.sizes = append(a.sizes, e.End-e.Start)
			scratch = geom.CandidateBins(scratch[:0], e.Start, e.End)
			a.binsVisited += uint64(len(scratch))
		}
	}
	return a
}

// WriteText renders the report for humans.
func (rep *Report) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "geometry:        %s\n", rep.Geometry)
	fmt.Fprintf(w, "sequences:       %d\n", rep.Sequences)
	fmt.Fprintf(w, "features:        %d\n", rep.TotalFeatures)
	fmt.Fprintf(w, "bins used:       %d (%d ids per sequence)\n", rep.BinsUsed, rep.TotalBins)
	if rep.RootBinLoad > 0 {
		fmt.Fprintf(w, "root bin load:   %d\n", rep.RootBinLoad)
	}
	if rep.TotalFeatures > 0 {
		fmt.Fprintf(w, "feature size:    min %d / median %.0f / mean %.1f / max %d\n",
			rep.MinSize, rep.MedianSize, rep.MeanSize, rep.MaxSize)
		fmt.Fprintf(w, "bins per query:  %.1f (feature-sized)\n", rep.MeanBinsPerHit)
	}
	for _, l := range rep.Levels {
		fmt.Fprintf(w, "level %d:         %d bins, %d features, mean %.1f max %d per bin\n",
			l.Level, l.BinsUsed, l.Features, l.MeanBinLoad, l.MaxBinLoad)
	}
	_, err := fmt.Fprintln(w)
	return err
}
