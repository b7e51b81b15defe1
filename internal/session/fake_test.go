package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/innovadoor/sitemeasure/internal/model"
)

// submitCtxKey marks the context of a Submit call in tests. Serial requests
// carrying it skip the gate and run onSerial once.
type submitCtxKey struct{}

func submitContext() context.Context {
	return context.WithValue(context.Background(), submitCtxKey{}, true)
}

// fakeBackend is an in-memory Backend. When gate is set, serial requests
// block until it is closed or the request is cancelled.
type fakeBackend struct {
	mu sync.Mutex

	next      int
	serialErr error
	gate      chan struct{}
	onSerial  func()
	onSubmit  func()

	parties    []model.Party
	partiesErr error
	number     string

	submitted []model.Measurement
	submitErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		parties: []model.Party{{ID: 1, Name: "Acme Builders"}, {ID: 2, Name: "Skyline Homes"}},
		number:  "MSR-00001",
	}
}

func (f *fakeBackend) setSerialErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.serialErr = err
}

func (f *fakeBackend) setGate(gate chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = gate
}

func (f *fakeBackend) setHooks(onSerial, onSubmit func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onSerial = onSerial
	f.onSubmit = onSubmit
}

func (f *fakeBackend) NextSerialNumber(ctx context.Context) (string, error) {
	f.mu.Lock()
	gate := f.gate
	var hook func()
	if ctx.Value(submitCtxKey{}) != nil {
		gate = nil
		hook, f.onSerial = f.onSerial, nil
	}
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.serialErr != nil {
		return "", f.serialErr
	}
	f.next++
	return fmt.Sprintf("A%05d", f.next), nil
}

func (f *fakeBackend) NextMeasurementNumber(context.Context) (string, error) {
	return f.number, nil
}

func (f *fakeBackend) Parties(context.Context) ([]model.Party, error) {
	if f.partiesErr != nil {
		return nil, f.partiesErr
	}
	return f.parties, nil
}

func (f *fakeBackend) Products(_ context.Context, category string) ([]model.Product, error) {
	return []model.Product{{ID: 1, Name: category + " 30mm", Category: category}}, nil
}

func (f *fakeBackend) Designs(context.Context) ([]model.Design, error) {
	return []model.Design{{ID: 1, Name: "Flush", IsActive: true}}, nil
}

func (f *fakeBackend) SubmitMeasurement(_ context.Context, m model.Measurement) (int64, error) {
	f.mu.Lock()
	hook := f.onSubmit
	f.onSubmit = nil
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return 0, f.submitErr
	}
	f.submitted = append(f.submitted, m)
	return int64(41 + len(f.submitted)), nil
}

func (f *fakeBackend) submissions() []model.Measurement {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Measurement(nil), f.submitted...)
}
