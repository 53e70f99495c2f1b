package matrixgame

import (
	"sync"
)

var floatSlicePool = sync.Pool{
	New: func() interface{} {
		return make([]float64, 0)
	},
}

// allocFloatSlice returns a scratch slice of length n. Its contents are undefined.
func allocFloatSlice(n int) []float64 {
	s := floatSlicePool.Get().([]float64)
	if cap(s) < n {
		return make([]float64, n)
	}

	return s[:n]
}

func freeFloatSlice(s []float64) {
	if cap(s) > 0 {
		floatSlicePool.Put(s[:0])
	}
}
