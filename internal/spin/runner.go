package spin

import (
	"context"
	"time"
)

// DefaultTickInterval is roughly one frame at 60Hz.
const DefaultTickInterval = 16 * time.Millisecond

// Handle is what a host holds to drive a running wheel. It replaces any
// callback-based registration: the host gets it from Start and gives it up
// with Dispose.
type Handle interface {
	// Trigger starts a spin; false means it was ignored.
	Trigger() bool
	Reset() error
	TryAgain() error
	State() Snapshot
	Dispose()
}

type commandKind int

const (
	cmdTrigger commandKind = iota
	cmdReset
	cmdTryAgain
	cmdSnapshot
	cmdDisable
	cmdEnable
)

type command struct {
	kind  commandKind
	reply chan commandResult
}

type commandResult struct {
	ok   bool
	err  error
	snap Snapshot
}

// Runner owns a Controller on its own goroutine and advances it on a ticker
// that only runs while the controller is busy. All access goes through the
// command channel, so the controller never needs a lock.
// OnWinner runs on the runner goroutine and must not call back into the Runner.
type Runner struct {
	cmds   chan command
	done   chan struct{}
	cancel context.CancelFunc
}

var _ Handle = (*Runner)(nil)

// Start builds a controller from opts and runs it until ctx ends or Dispose is called.
func Start(ctx context.Context, opts Options) (*Runner, error) {
	opts = opts.withDefaults()
	c, err := New(opts)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	r := &Runner{
		cmds:   make(chan command),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go r.loop(ctx, c, opts.TickInterval)
	return r, nil
}

func (r *Runner) loop(ctx context.Context, c *Controller, interval time.Duration) {
	defer close(r.done)

	var ticker *time.Ticker
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		// A nil channel never fires, so an idle or settled wheel costs nothing.
		var tick <-chan time.Time
		switch {
		case c.Busy() && ticker == nil:
			ticker = time.NewTicker(interval)
		case !c.Busy() && ticker != nil:
			ticker.Stop()
			ticker = nil
		}
		if ticker != nil {
			tick = ticker.C
		}

		select {
		case <-ctx.Done():
			return
		case <-tick:
			c.Advance()
		case cmd := <-r.cmds:
			c.Advance()
			var res commandResult
			switch cmd.kind {
			case cmdTrigger:
				res.ok = c.Trigger()
			case cmdReset:
				res.err = c.Reset()
			case cmdTryAgain:
				res.err = c.TryAgain()
			case cmdDisable:
				c.SetDisabled(true)
			case cmdEnable:
				c.SetDisabled(false)
			}
			res.snap = c.Snapshot()
			cmd.reply <- res
		}
	}
}

func (r *Runner) send(kind commandKind) (commandResult, error) {
	reply := make(chan commandResult, 1)
	select {
	case r.cmds <- command{kind: kind, reply: reply}:
	case <-r.done:
		return commandResult{}, ErrDisposed
	}
	// The loop always answers a command it has received.
	return <-reply, nil
}

// Trigger implements Handle.
func (r *Runner) Trigger() bool {
	res, err := r.send(cmdTrigger)
	return err == nil && res.ok
}

// Reset implements Handle.
func (r *Runner) Reset() error {
	res, err := r.send(cmdReset)
	if err != nil {
		return err
	}
	return res.err
}

// TryAgain implements Handle.
func (r *Runner) TryAgain() error {
	res, err := r.send(cmdTryAgain)
	if err != nil {
		return err
	}
	return res.err
}

// State implements Handle. A disposed runner reports the zero Snapshot.
func (r *Runner) State() Snapshot {
	res, _ := r.send(cmdSnapshot)
	return res.snap
}

// SetDisabled blocks or re-allows triggers.
func (r *Runner) SetDisabled(disabled bool) error {
	kind := cmdEnable
	if disabled {
		kind = cmdDisable
	}
	_, err := r.send(kind)
	return err
}

// Dispose stops the goroutine and waits for it. A spin in flight is abandoned
// without a winner notification. Calling Dispose more than once is safe.
func (r *Runner) Dispose() {
	r.cancel()
	<-r.done
}

// Done is closed once the runner has stopped.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}
