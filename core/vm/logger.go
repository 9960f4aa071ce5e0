package vm

import (
	"fmt"
	"io"
	"os"

	colorable "github.com/mattn/go-colorable"
	isatty "github.com/mattn/go-isatty"
)

// Tracer observes the interpreter's fetch-decode-execute cycle without
// participating in it; CaptureState is called once per cycle, after gas
// has been charged and before the operation body runs.
type Tracer interface {
	CaptureState(pc uint64, op OpCode, gas, cost uint64, scope *ScopeContext, depth int)
}

// StructLog is one cycle's worth of captured execution trace, the unit a
// StructLogger accumulates.
type StructLog struct {
	Pc         uint64   `json:"pc"`
	Op         OpCode   `json:"op"`
	Gas        uint64   `json:"gas"`
	GasCost    uint64   `json:"gasCost"`
	Depth      int      `json:"depth"`
	Stack      []string `json:"stack"`
	MemorySize int      `json:"memSize"`
}

// StructLogger is a Tracer that accumulates a StructLog per cycle, capped
// at Limit entries to bound memory on pathologically long runs.
type StructLogger struct {
	Limit int
	Logs  []StructLog
}

func NewStructLogger(limit int) *StructLogger {
	if limit <= 0 {
		limit = 10_000
	}
	return &StructLogger{Limit: limit}
}

func (l *StructLogger) CaptureState(pc uint64, op OpCode, gas, cost uint64, scope *ScopeContext, depth int) {
	if len(l.Logs) >= l.Limit {
		return
	}
	data := scope.Stack.Data()
	stack := make([]string, len(data))
	for i, w := range data {
		stack[i] = w.Hex()
	}
	l.Logs = append(l.Logs, StructLog{
		Pc:         pc,
		Op:         op,
		Gas:        gas,
		GasCost:    cost,
		Depth:      depth,
		Stack:      stack,
		MemorySize: scope.Memory.Len(),
	})
}

// WriteTrace writes each captured cycle as one line of go-ethereum-style
// human-readable trace output. It writes plain text; it adds no color.
func WriteTrace(w io.Writer, logs []StructLog) {
	for _, l := range logs {
		fmt.Fprintf(w, "%-16spc=%04x gas=%-8d cost=%-4d depth=%-2d stack=%d\n",
			l.Op.String(), l.Pc, l.Gas, l.GasCost, l.Depth, len(l.Stack))
	}
}

// NewColorableStderr returns os.Stderr wrapped so ANSI trace coloring
// renders correctly on Windows consoles, routing human-readable output
// through mattn/go-colorable and gating color on mattn/go-isatty.
func NewColorableStderr() io.Writer {
	fd := os.Stderr.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return colorable.NewColorableStderr()
	}
	return os.Stderr
}
