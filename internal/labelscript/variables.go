package labelscript

import (
	"github.com/dop251/goja"
	"github.com/shopspring/decimal"
)

// Input is what a label script sees about the segment it is labelling.
type Input struct {
	Label  string
	Amount decimal.Decimal
	Index  int
	Count  int
}

// injectInput sets the per-segment globals. amount is the exact decimal
// string; amount_value is its float approximation for arithmetic.
func injectInput(vm *goja.Runtime, in Input) {
	vm.Set("label", in.Label)
	vm.Set("amount", in.Amount.String())
	vm.Set("amount_value", in.Amount.InexactFloat64())
	vm.Set("index", in.Index)
	vm.Set("count", in.Count)
	vm.Set("last", in.Index == in.Count-1)
}

func inputArgs(vm *goja.Runtime, in Input) []goja.Value {
	return []goja.Value{
		vm.ToValue(in.Label),
		vm.ToValue(in.Amount.String()),
		vm.ToValue(in.Index),
		vm.ToValue(in.Count),
	}
}
