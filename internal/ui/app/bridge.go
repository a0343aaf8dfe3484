package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	timerdto "cadence/internal/modules/timer/dto"
	timerview "cadence/internal/ui/views/timer"
)

type dialogMsg struct{ open bool }

type layoutMsg struct{ lines int }

// eventBridge turns timer bus notifications into tea messages. Handlers run
// on the publisher's goroutine and must not block it, so a full buffer
// drops state, dialog and layout messages; the next one catches the view
// up. A finished review has no later message to recover from and is kept
// in its own slot until delivered.
type eventBridge struct {
	ch          chan tea.Msg
	unsubscribe []func()

	mu       sync.Mutex
	finished *timerdto.PendingOutput
	ready    chan struct{}
}

const bridgeBuffer = 64

func newEventBridge(events timerEvents) *eventBridge {
	b := &eventBridge{ch: make(chan tea.Msg, bridgeBuffer), ready: make(chan struct{}, 1)}
	if events == nil {
		return b
	}
	b.unsubscribe = append(b.unsubscribe,
		events.Subscribe(
			func(s timerdto.StateOutput) { b.send(timerview.StateMsg{State: s}) },
			b.finish,
		),
		events.SubscribeDialog(func(open bool) { b.send(dialogMsg{open: open}) }),
		events.SubscribeLayout(func(lines int) { b.send(layoutMsg{lines: lines}) }),
	)
	return b
}

func (b *eventBridge) send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	default:
	}
}

// finish records p, replacing one not yet delivered.
func (b *eventBridge) finish(p timerdto.PendingOutput) {
	b.mu.Lock()
	b.finished = &p
	b.mu.Unlock()
	select {
	case b.ready <- struct{}{}:
	default:
	}
}

func (b *eventBridge) takeFinished() (timerdto.PendingOutput, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished == nil {
		return timerdto.PendingOutput{}, false
	}
	p := *b.finished
	b.finished = nil
	return p, true
}

// wait delivers the next bridged message. Every handled bridge message must
// re-arm it.
func (b *eventBridge) wait() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case msg := <-b.ch:
				return msg
			case <-b.ready:
				if p, ok := b.takeFinished(); ok {
					return timerview.FinishedMsg{Pending: p}
				}
			}
		}
	}
}

func (b *eventBridge) close() {
	for _, fn := range b.unsubscribe {
		fn()
	}
	b.unsubscribe = nil
}
