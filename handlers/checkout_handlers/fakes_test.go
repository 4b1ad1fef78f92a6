package checkout_handlers

import (
	"context"
	"encoding/json"
	"sync"
)

type fakeCall struct {
	Method string
	Args   any
}

type fakeCaller struct {
	mu     sync.Mutex
	calls  []fakeCall
	reply  json.RawMessage
	err    error
	onCall func()
}

func (f *fakeCaller) Call(ctx context.Context, method string, args any) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{Method: method, Args: args})
	hook := f.onCall
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return f.reply, f.err
}

func (f *fakeCaller) Calls() []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeCall(nil), f.calls...)
}

type fakeRazorpay struct {
	data  map[string]interface{}
	reply map[string]interface{}
	err   error
}

func (f *fakeRazorpay) CreatePaymentLink(data map[string]interface{}) (map[string]interface{}, error) {
	f.data = data
	return f.reply, f.err
}
