package ui

import (
	"sync"
	"time"
)

const (
	IndicatorBlue  = "blue"
	IndicatorGreen = "green"
	IndicatorRed   = "red"
)

// Action types replayed by the client runtime, in order.
const (
	ActionAlert      = "alert"
	ActionMsgPrint   = "msgprint"
	ActionFreeze     = "freeze"
	ActionUnfreeze   = "unfreeze"
	ActionWait       = "wait"
	ActionNavigate   = "navigate"
	ActionOpenWindow = "open_window"
	ActionDialog     = "dialog"
)

// Message is a modal message box.
type Message struct {
	Title     string `json:"title,omitempty"`
	Body      string `json:"message"`
	Indicator string `json:"indicator,omitempty"`
}

// Field is one read-only dialog field.
type Field struct {
	Fieldname string `json:"fieldname"`
	Label     string `json:"label"`
	Fieldtype string `json:"fieldtype"`
	Default   string `json:"default"`
	ReadOnly  bool   `json:"read_only"`
}

// Dialog is a modal showing a fixed list of fields.
type Dialog struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Surface is everything a payment flow may do to the user's screen.
type Surface interface {
	ShowAlert(message, indicator string)
	MsgPrint(msg Message)
	Freeze(message string)
	Unfreeze()
	// After runs f once d has elapsed.
	After(d time.Duration, f func())
	Navigate(url string)
	OpenWindow(url string)
	ShowDialog(d Dialog)
}

// Action is one recorded Surface call.
type Action struct {
	Type      string  `json:"type"`
	Title     string  `json:"title,omitempty"`
	Message   string  `json:"message,omitempty"`
	Indicator string  `json:"indicator,omitempty"`
	URL       string  `json:"url,omitempty"`
	DelayMS   int64   `json:"ms,omitempty"`
	Dialog    *Dialog `json:"dialog,omitempty"`
}

// Recorder is a Surface that keeps the calls as an action list for a client
// to replay. After does not sleep: it records a wait and runs f immediately,
// so everything scheduled lands after the wait in the list.
type Recorder struct {
	mu      sync.Mutex
	actions []Action
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(a Action) {
	r.mu.Lock()
	r.actions = append(r.actions, a)
	r.mu.Unlock()
}

func (r *Recorder) ShowAlert(message, indicator string) {
	r.add(Action{Type: ActionAlert, Message: message, Indicator: indicator})
}

func (r *Recorder) MsgPrint(msg Message) {
	r.add(Action{Type: ActionMsgPrint, Title: msg.Title, Message: msg.Body, Indicator: msg.Indicator})
}

func (r *Recorder) Freeze(message string) {
	r.add(Action{Type: ActionFreeze, Message: message})
}

func (r *Recorder) Unfreeze() {
	r.add(Action{Type: ActionUnfreeze})
}

func (r *Recorder) After(d time.Duration, f func()) {
	r.add(Action{Type: ActionWait, DelayMS: d.Milliseconds()})
	f()
}

func (r *Recorder) Navigate(url string) {
	r.add(Action{Type: ActionNavigate, URL: url})
}

func (r *Recorder) OpenWindow(url string) {
	r.add(Action{Type: ActionOpenWindow, URL: url})
}

func (r *Recorder) ShowDialog(d Dialog) {
	r.add(Action{Type: ActionDialog, Title: d.Title, Dialog: &d})
}

// Actions returns a copy of the recorded actions.
func (r *Recorder) Actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Action, len(r.actions))
	copy(out, r.actions)
	return out
}

// Count returns how many actions of the given type were recorded.
func (r *Recorder) Count(actionType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.actions {
		if a.Type == actionType {
			n++
		}
	}
	return n
}

// Last returns the last action of the given type.
func (r *Recorder) Last(actionType string) (Action, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.actions) - 1; i >= 0; i-- {
		if r.actions[i].Type == actionType {
			return r.actions[i], true
		}
	}
	return Action{}, false
}
