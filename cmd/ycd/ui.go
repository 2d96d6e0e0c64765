package main

import (
	"context"
	"sync"

	"github.com/eiannone/keyboard"
)

//////////////////////////////////////////////////

// UIKeySubject matches a key press either by special key or by rune.
type UIKeySubject struct {
	Key  keyboard.Key
	Rune rune
}

type UIKeyEvent struct {
	keyboard.KeyEvent

	stopped bool
}

// StopPropagation prevents handlers bound after the current one from running,
// and ends Listen.
func (e *UIKeyEvent) StopPropagation() {
	e.stopped = true
}

type UIKeyHandler func(ui *UI, e *UIKeyEvent) error

type UI struct {
	mu       sync.Mutex
	bindings map[UIKeySubject][]UIKeyHandler

	closeOnce sync.Once
}

func NewUI() *UI {
	return &UI{
		bindings: make(map[UIKeySubject][]UIKeyHandler),
	}
}

func (ui *UI) BindKey(subject UIKeySubject, handler UIKeyHandler) {
	ui.mu.Lock()
	defer ui.mu.Unlock()

	ui.bindings[subject] = append(ui.bindings[subject], handler)
}

func (ui *UI) handlers(ev keyboard.KeyEvent) []UIKeyHandler {
	ui.mu.Lock()
	defer ui.mu.Unlock()

	subject := UIKeySubject{Key: ev.Key}
	if ev.Rune != 0 {
		subject = UIKeySubject{Rune: ev.Rune}
	}

	return append([]UIKeyHandler(nil), ui.bindings[subject]...)
}

// Listen dispatches key presses until ctx is done, the keyboard fails, or a
// handler stops propagation.
func (ui *UI) Listen(ctx context.Context) error {
	keys, err := keyboard.GetKeys(10)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-keys:
			if !ok {
				return nil
			}
			if ev.Err != nil {
				return ev.Err
			}

			e := &UIKeyEvent{KeyEvent: ev}
			for _, h := range ui.handlers(ev) {
				if err := h(ui, e); err != nil {
					return err
				}

				if e.stopped {
					return nil
				}
			}
		}
	}
}

func (ui *UI) Close() {
	ui.closeOnce.Do(func() {
		keyboard.Close()
	})
}
