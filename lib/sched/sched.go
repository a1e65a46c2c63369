/*package sched runs a kernel over a pair list with several workers. The
list's i-cluster entries are split into contiguous ranges, each worker
accumulates into its own Output buffer, and the buffers are reduced into the
caller's after all workers finish. Because entries never share an i-cluster
range and j-side forces go to private buffers, workers never write the same
memory, and the reduction is the only synchronization needed.*/
package sched

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/viterin/vek/vek32"
	"gonum.org/v1/gonum/floats"

	"github.com/phil-mansfield/nbkern/lib/cluster"
	"github.com/phil-mansfield/nbkern/lib/kernel"
	"github.com/phil-mansfield/nbkern/lib/mathx"
)

// NumWorkers resolves a requested worker count: zero or negative means one
// worker per available CPU. Requests beyond the CPU count are an error, the
// same way oversubscription is rejected elsewhere in this module's tooling.
func NumWorkers(requested int) (int, error) {
	maxProcs := runtime.GOMAXPROCS(0)
	if requested <= 0 {
		return maxProcs, nil
	}
	if requested > maxProcs {
		return 0, fmt.Errorf(
			"%d workers were requested, but only %d CPUs are available.",
			requested, maxProcs,
		)
	}
	return requested, nil
}

// Run evaluates kern over the whole list with numWorkers workers and
// accumulates the result into out. With one worker it runs kern directly on
// the calling goroutine, so serial results are bit-identical to calling the
// kernel yourself.
func Run[T mathx.Real](
	kern kernel.Kernel[T], ad *cluster.AtomData[T],
	list *cluster.PairList[T], numWorkers int, out *kernel.Output[T],
) {
	if numWorkers <= 1 || len(list.CI) <= 1 {
		kern(ad, list, out)
		return
	}
	if numWorkers > len(list.CI) {
		numWorkers = len(list.CI)
	}

	parts := make([]*kernel.Output[T], numWorkers)
	wg := &sync.WaitGroup{}
	for w := 0; w < numWorkers; w++ {
		start := w * len(list.CI) / numWorkers
		end := (w + 1) * len(list.CI) / numWorkers
		sub := &cluster.PairList[T]{
			CI: list.CI[start:end], CJ: list.CJ, ShiftVecs: list.ShiftVecs,
		}
		parts[w] = kernel.NewOutput(ad)

		wg.Add(1)
		go func(sub *cluster.PairList[T], part *kernel.Output[T]) {
			defer wg.Done()
			kern(ad, sub, part)
		}(sub, parts[w])
	}
	wg.Wait()

	for _, part := range parts {
		addInto(out.F, part.F)
		addInto(out.FShift, part.FShift)
		addInto(out.VVdw, part.VVdw)
		addInto(out.VCoul, part.VCoul)
	}
}

// addInto adds src into dst element-wise.
func addInto[T mathx.Real](dst, src []T) {
	switch d := any(dst).(type) {
	case []float32:
		vek32.Add_Inplace(d, any(src).([]float32))
	case []float64:
		floats.Add(d, any(src).([]float64))
	default:
		for i := range dst {
			dst[i] += src[i]
		}
	}
}
