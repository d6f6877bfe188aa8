package labelscript

import (
	"fmt"
	"time"

	"github.com/dop251/goja"
)

// Formatter is a compiled label script bound to its own VM.
type Formatter struct {
	prog *goja.Program
	vm   *VM
}

// Compile parses source once so it can be run for every segment of a wheel.
func Compile(source string) (*Formatter, error) {
	prog, err := goja.Compile("label_script", source, false)
	if err != nil {
		return nil, fmt.Errorf("compile label script: %w", err)
	}
	return &Formatter{prog: prog, vm: NewVM()}, nil
}

// SetTimeout bounds each Format call.
func (f *Formatter) SetTimeout(d time.Duration) {
	f.vm.SetTimeout(d)
}

// Format returns the label for one segment.
func (f *Formatter) Format(in Input) (string, error) {
	return f.vm.Run(f.prog, in)
}

// FormatAll relabels a whole wheel in order. Index and Count are filled in
// from the slice position. Logs afterwards hold only this pass.
func (f *Formatter) FormatAll(ins []Input) ([]string, error) {
	f.vm.ClearLogs()
	out := make([]string, len(ins))
	for i, in := range ins {
		in.Index = i
		in.Count = len(ins)
		s, err := f.Format(in)
		if err != nil {
			return nil, fmt.Errorf("label %d (%q): %w", i, in.Label, err)
		}
		out[i] = s
	}
	return out, nil
}

// Logs returns what the script printed with log or console.log.
func (f *Formatter) Logs() []LogEntry {
	return f.vm.GetLogs()
}

// Format compiles script and runs it once.
func Format(script string, in Input) (string, error) {
	f, err := Compile(script)
	if err != nil {
		return "", err
	}
	return f.Format(in)
}
