package command

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// debouncer holds at most one pending preview request.
type debouncer struct {
	delay time.Duration
	fn    PreviewFunc

	mu      sync.Mutex
	pending *pendingPreview
}

type pendingPreview struct {
	timer   *time.Timer
	done    chan error
	settled bool
}

// Debounce wraps fn so that it runs delay after the latest call. A call
// that is superseded before its timer fires returns nil without running
// fn; a call whose context ends first returns the context error.
func Debounce(delay time.Duration, fn PreviewFunc) PreviewFunc {
	d := &debouncer{delay: delay, fn: fn}
	return d.preview
}

func (d *debouncer) preview(ctx context.Context, args Args, display Display, bin Bin) error {
	p := &pendingPreview{done: make(chan error, 1)}

	d.mu.Lock()
	if prev := d.pending; prev != nil {
		prev.timer.Stop()
		d.settleLocked(prev, nil)
	}
	d.pending = p
	p.timer = time.AfterFunc(d.delay, func() {
		d.fire(ctx, p, args, display, bin)
	})
	d.mu.Unlock()

	select {
	case err := <-p.done:
		return err
	case <-ctx.Done():
	}

	d.mu.Lock()
	if !p.settled {
		p.timer.Stop()
		d.settleLocked(p, nil)
		d.mu.Unlock()
		<-p.done
		return ctx.Err()
	}
	d.mu.Unlock()
	return <-p.done
}

func (d *debouncer) settleLocked(p *pendingPreview, err error) {
	p.settled = true
	if d.pending == p {
		d.pending = nil
	}
	p.done <- err
}

func (d *debouncer) fire(ctx context.Context, p *pendingPreview, args Args, display Display, bin Bin) {
	d.mu.Lock()
	if p.settled {
		d.mu.Unlock()
		return
	}
	p.settled = true
	if d.pending == p {
		d.pending = nil
	}
	d.mu.Unlock()

	p.done <- d.run(ctx, args, display, bin)
}

func (d *debouncer) run(ctx context.Context, args Args, display Display, bin Bin) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("preview panic: %v", r)
		}
	}()
	return d.fn(ctx, args, display, bin)
}
