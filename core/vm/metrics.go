package vm

import "github.com/prometheus/client_golang/prometheus"

// opCounter and gasUsedHistogram instrument every cycle of the
// interpreter loop.
var (
	opCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evmlite_opcode_executions_total",
			Help: "Number of times each opcode has been executed.",
		},
		[]string{"opcode"},
	)

	gasUsedHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evmlite_frame_gas_used",
			Help:    "Gas consumed per completed call frame.",
			Buckets: prometheus.ExponentialBuckets(100, 4, 12),
		},
	)
)

func init() {
	prometheus.MustRegister(opCounter, gasUsedHistogram)
}

// observeFrameGas records the gas a just-finished Run call consumed.
func observeFrameGas(startGas, leftover uint64) {
	if startGas < leftover {
		return
	}
	gasUsedHistogram.Observe(float64(startGas - leftover))
}
