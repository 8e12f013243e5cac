package view

import (
	"sync"
	"time"
)

type AlertState struct {
	Message string `json:"message"`
	Visible bool   `json:"visible"`
	Notice  string `json:"notice,omitempty"`
}

// AlertBox is the transient message region. A new message replaces the
// current one and restarts the dismissal timer; timers left over from
// earlier messages do nothing.
type AlertBox struct {
	mu      sync.Mutex
	out     Emitter
	timeout time.Duration
	state   AlertState
	gen     uint64
}

func NewAlertBox(pub Publisher, topic string, timeout time.Duration) *AlertBox {
	return &AlertBox{out: Emitter{pub: pub, topic: topic}, timeout: timeout}
}

func (a *AlertBox) Alert(msg string) {
	a.mu.Lock()
	a.gen++
	gen := a.gen
	a.state.Message = msg
	a.state.Visible = true
	a.mu.Unlock()

	a.out.Emit(Frame{Type: "alert", Message: msg})
	time.AfterFunc(a.timeout, func() { a.dismiss(gen) })
}

// Notice shows a message that stays until replaced.
func (a *AlertBox) Notice(msg string) {
	a.mu.Lock()
	a.state.Notice = msg
	a.mu.Unlock()
	a.out.Emit(Frame{Type: "notice", Message: msg})
}

func (a *AlertBox) State() AlertState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *AlertBox) dismiss(gen uint64) {
	a.mu.Lock()
	if gen != a.gen || !a.state.Visible {
		a.mu.Unlock()
		return
	}
	a.state.Visible = false
	a.mu.Unlock()
	a.out.Emit(Frame{Type: "alert_hidden"})
}
