package labelscript

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/shopspring/decimal"
)

// LogEntry represents a single log message from the script.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

var (
	ErrNoResult = errors.New("labelscript: script produced no label")
	ErrTimeout  = errors.New("labelscript: script timed out")
)

const (
	defaultTimeout = 250 * time.Millisecond
	defaultMaxLogs = 100
)

// VM wraps a goja runtime with sandbox restrictions and global function injection.
// Calls are serialized; one VM is never run from two goroutines at once.
type VM struct {
	runtime *goja.Runtime
	mu      sync.Mutex
	timeout time.Duration

	logs    []LogEntry
	logsMu  sync.Mutex
	maxLogs int
}

// NewVM creates a sandboxed goja runtime with global functions injected.
func NewVM() *VM {
	vm := &VM{
		runtime: goja.New(),
		timeout: defaultTimeout,
		maxLogs: defaultMaxLogs,
	}
	vm.injectGlobalFunctions()
	return vm
}

// SetTimeout bounds every later script run.
func (vm *VM) SetTimeout(d time.Duration) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if d > 0 {
		vm.timeout = d
	}
}

// injectGlobalFunctions registers log, console.log and fixed.
func (vm *VM) injectGlobalFunctions() {
	vm.runtime.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		vm.appendLog(strings.Join(parts, " "))
		return goja.Undefined()
	})

	console := vm.runtime.NewObject()
	console.Set("log", vm.runtime.Get("log"))
	vm.runtime.Set("console", console)

	// fixed(value, places) formats a number or numeric string exactly.
	vm.runtime.Set("fixed", func(call goja.FunctionCall) goja.Value {
		d, err := decimal.NewFromString(call.Argument(0).String())
		if err != nil {
			d = decimal.NewFromFloat(call.Argument(0).ToFloat())
		}
		places := int32(call.Argument(1).ToInteger())
		return vm.runtime.ToValue(d.StringFixed(places))
	})

	vm.runtime.Set("require", goja.Undefined())
	vm.runtime.Set("fetch", goja.Undefined())
	vm.runtime.Set("XMLHttpRequest", goja.Undefined())
	vm.runtime.Set("eval", goja.Undefined())
	vm.runtime.Set("Function", goja.Undefined())
}

func (vm *VM) appendLog(msg string) {
	vm.logsMu.Lock()
	defer vm.logsMu.Unlock()
	if len(vm.logs) >= vm.maxLogs {
		vm.logs = vm.logs[1:]
	}
	vm.logs = append(vm.logs, LogEntry{Time: time.Now(), Message: msg})
}

// Run executes prog against in. A script that defines format(label, amount,
// index, count) has that function called; otherwise the program's completion
// value is the label.
func (vm *VM) Run(prog *goja.Program, in Input) (string, error) {
	v, err := vm.runWithTimeout(func() (goja.Value, error) {
		injectInput(vm.runtime, in)
		vm.runtime.Set("format", goja.Undefined())

		res, err := vm.runtime.RunProgram(prog)
		if err != nil {
			return nil, err
		}
		if fn, ok := goja.AssertFunction(vm.runtime.Get("format")); ok {
			return fn(goja.Undefined(), inputArgs(vm.runtime, in)...)
		}
		return res, nil
	})
	if err != nil {
		return "", err
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return "", ErrNoResult
	}
	out := v.String()
	if strings.TrimSpace(out) == "" {
		return "", ErrNoResult
	}
	return out, nil
}

// GetLogs returns a copy of the current log buffer.
func (vm *VM) GetLogs() []LogEntry {
	vm.logsMu.Lock()
	defer vm.logsMu.Unlock()
	out := make([]LogEntry, len(vm.logs))
	copy(out, vm.logs)
	return out
}

// ClearLogs clears the log buffer.
func (vm *VM) ClearLogs() {
	vm.logsMu.Lock()
	defer vm.logsMu.Unlock()
	vm.logs = vm.logs[:0]
}

func (vm *VM) runWithTimeout(fn func() (goja.Value, error)) (goja.Value, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.runtime.ClearInterrupt()
	timer := time.AfterFunc(vm.timeout, func() {
		vm.runtime.Interrupt("script execution timeout")
	})
	v, err := fn()
	timer.Stop()
	vm.runtime.ClearInterrupt()

	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return nil, fmt.Errorf("%w after %s", ErrTimeout, vm.timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("script error: %w", err)
	}
	return v, nil
}
