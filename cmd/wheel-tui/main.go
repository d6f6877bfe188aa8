// Command wheel-tui spins a configured wheel in the terminal.
//
// Keys: space spins, r resets, t tries again, q or Esc quits.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/MJE43/wheel-of-fortune-go/internal/config"
	"github.com/MJE43/wheel-of-fortune-go/internal/engine"
	"github.com/MJE43/wheel-of-fortune-go/internal/spin"
)

type app struct {
	screen tcell.Screen
	wheel  config.Wheel
	runner *spin.Runner
	labels []string
	status string
	wins   chan string
}

func newApp(wh config.Wheel) (*app, error) {
	a := &app{
		wheel:  wh,
		labels: wh.Labels(),
		wins:   make(chan string, 4),
	}

	opts := wh.SpinOptions()
	opts.Source = engine.CryptoPicker{}
	opts.OnWinner = func(value string, index int) {
		select {
		case a.wins <- fmt.Sprintf("Winner: %s (segment %d, pays %s)", value, index, wh.Amount(index)):
		default:
		}
	}
	runner, err := spin.Start(context.Background(), opts)
	if err != nil {
		return nil, err
	}
	a.runner = runner

	screen, err := tcell.NewScreen()
	if err != nil {
		runner.Dispose()
		return nil, err
	}
	if err := screen.Init(); err != nil {
		runner.Dispose()
		return nil, err
	}
	a.screen = screen
	a.status = "space: spin  r: reset  t: try again  q: quit"
	return a, nil
}

func (a *app) cleanup() {
	a.runner.Dispose()
	a.screen.Fini()
}

// handleInput returns false when the user quits.
func (a *app) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			if !a.runner.Trigger() {
				a.status = "busy: wait for the wheel to stop"
			} else {
				a.status = "spinning..."
			}
		case 'r':
			if err := a.runner.Reset(); err != nil {
				a.status = err.Error()
			} else {
				a.status = "reset"
			}
		case 't':
			if err := a.runner.TryAgain(); err != nil {
				a.status = err.Error()
			} else {
				a.status = "spinning again..."
			}
		}
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return true
}

func (a *app) draw() {
	snap := a.runner.State()
	a.screen.Clear()

	title := a.wheel.Title
	if title == "" {
		title = a.wheel.ID
	}
	bold := tcell.StyleDefault.Bold(true)
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)
	a.print(2, 1, bold, title)
	a.print(2, 2, dim, fmt.Sprintf("%d segments, %s, %s over %s",
		len(a.labels), a.wheel.Direction, a.wheel.Easing, a.wheel.Duration))

	under := spin.ResolveWinner(snap.Angle, len(a.labels))
	for i, label := range a.labels {
		style := tcell.StyleDefault
		marker := "  "
		if i == under {
			marker = "▶ "
			style = style.Reverse(true)
		}
		if snap.Winner != nil && *snap.Winner == i {
			style = style.Foreground(tcell.ColorYellow).Bold(true)
		}
		a.print(2, 4+i, style, fmt.Sprintf("%s%2d  %s", marker, i, label))
	}

	row := 5 + len(a.labels)
	a.print(2, row, tcell.StyleDefault, fmt.Sprintf("state  %-9s angle %9.2f°  knob %6.2f°  spins %d",
		snap.State, snap.Angle, snap.KnobTilt, snap.Spins))
	if snap.WinnerValue != "" {
		a.print(2, row+2, tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true), "★ "+snap.WinnerValue+" ★")
	}
	a.print(2, row+4, dim, a.status)
	a.screen.Show()
}

func (a *app) print(x, y int, style tcell.Style, s string) {
	for _, r := range s {
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (a *app) run() {
	ticker := time.NewTicker(spin.DefaultTickInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev := <-events:
			if !a.handleInput(ev) {
				return
			}
		case msg := <-a.wins:
			a.status = msg
		case <-ticker.C:
			a.draw()
		}
	}
}

func main() {
	configPath := flag.String("config", "wheels.yaml", "wheel catalog")
	wheelID := flag.String("wheel", "", "wheel id (default: first wheel in the catalog)")
	flag.Parse()

	cat, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load catalog: %v\n", err)
		os.Exit(1)
	}
	var wh config.Wheel
	if *wheelID == "" && len(cat.Wheels) > 0 {
		wh = cat.Wheels[0]
	} else if w, ok := cat.Get(*wheelID); ok {
		wh = w
	} else {
		fmt.Fprintf(os.Stderr, "unknown wheel %q (have %v)\n", *wheelID, cat.IDs())
		os.Exit(1)
	}

	a, err := newApp(wh)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.cleanup()

	a.run()
}
