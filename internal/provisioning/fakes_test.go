package provisioning

import (
	"context"
	"sync"
	"time"

	"github.com/retain-dental/retain/internal/identity"
	"github.com/retain-dental/retain/internal/patient"
	"github.com/retain-dental/retain/internal/wallet"
)

// Operation names used to inject faults into the in-memory backends.
const (
	opFindIdentity   = "find_identity"
	opCreateIdentity = "create_identity"
	opDeleteIdentity = "delete_identity"
	opFindProfile    = "find_profile"
	opFindWallet     = "find_wallet"
	opInsertProfile  = "insert_profile"
	opInsertWallet   = "insert_wallet"
	opDeleteProfile  = "delete_profile"
	opDeleteWallet   = "delete_wallet"
)

type hangMode int

const (
	hangNone hangMode = iota
	// hangBefore blocks until the deadline without touching the backend.
	hangBefore
	// hangAfter commits the write and then blocks until the deadline.
	hangAfter
)

// faults scripts failures per operation and records the order of calls.
type faults struct {
	mu     sync.Mutex
	once   map[string][]error
	always map[string]error
	hang   map[string]hangMode
	gates  map[string]*gate
	calls  map[string]int
	log    []string
}

// gate parks the next call to an operation until released, so tests can
// interleave two workflows deterministically.
type gate struct {
	arrived chan struct{}
	release chan struct{}
}

func (g *gate) wait(t interface{ Fatalf(string, ...any) }) {
	select {
	case <-g.arrived:
	case <-time.After(2 * time.Second):
		t.Fatalf("operation never reached the gate")
	}
}

func (g *gate) open() { close(g.release) }

func newFaults() *faults {
	return &faults{
		once:   map[string][]error{},
		always: map[string]error{},
		hang:   map[string]hangMode{},
		gates:  map[string]*gate{},
		calls:  map[string]int{},
	}
}

// gateOn parks the next call to op before it reaches the backend.
func (f *faults) gateOn(op string) *gate {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := &gate{arrived: make(chan struct{}), release: make(chan struct{})}
	f.gates[op] = g
	return g
}

func (f *faults) failOnce(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.once[op] = append(f.once[op], err)
}

func (f *faults) failAlways(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.always[op] = err
}

func (f *faults) hangOn(op string, mode hangMode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hang[op] = mode
}

// heal removes every scripted fault but keeps call history.
func (f *faults) heal() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.once = map[string][]error{}
	f.always = map[string]error{}
	f.hang = map[string]hangMode{}
}

func (f *faults) enter(op string) (*gate, hangMode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	f.log = append(f.log, op)
	g := f.gates[op]
	delete(f.gates, op)
	if queued := f.once[op]; len(queued) > 0 {
		f.once[op] = queued[1:]
		return g, hangNone, queued[0]
	}
	return g, f.hang[op], f.always[op]
}

func (f *faults) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// sequence returns the logged calls restricted to ops.
func (f *faults) sequence(ops ...string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := map[string]bool{}
	for _, op := range ops {
		want[op] = true
	}
	var out []string
	for _, op := range f.log {
		if want[op] {
			out = append(out, op)
		}
	}
	return out
}

// run applies the scripted fault for op around fn.
func run[T any](ctx context.Context, f *faults, op string, fn func() (T, error)) (T, error) {
	var zero T
	g, mode, err := f.enter(op)
	if g != nil {
		close(g.arrived)
		select {
		case <-g.release:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	if err != nil {
		return zero, err
	}
	if mode == hangBefore {
		<-ctx.Done()
		return zero, ctx.Err()
	}
	val, err := fn()
	if mode == hangAfter {
		<-ctx.Done()
		return zero, ctx.Err()
	}
	return val, err
}

type flakyIdentities struct {
	*identity.MemoryProvider
	faults *faults
}

func (p *flakyIdentities) CreateIdentity(ctx context.Context, loginID, credential string, meta identity.Metadata) (string, error) {
	return run(ctx, p.faults, opCreateIdentity, func() (string, error) {
		return p.MemoryProvider.CreateIdentity(ctx, loginID, credential, meta)
	})
}

func (p *flakyIdentities) DeleteIdentity(ctx context.Context, key string) error {
	_, err := run(ctx, p.faults, opDeleteIdentity, func() (struct{}, error) {
		return struct{}{}, p.MemoryProvider.DeleteIdentity(ctx, key)
	})
	return err
}

func (p *flakyIdentities) FindIdentityByLoginID(ctx context.Context, loginID string) (string, error) {
	return run(ctx, p.faults, opFindIdentity, func() (string, error) {
		return p.MemoryProvider.FindIdentityByLoginID(ctx, loginID)
	})
}

type flakyStore struct {
	*Store
	faults *faults
}

func (s *flakyStore) InsertProfile(ctx context.Context, profile patient.Profile) error {
	_, err := run(ctx, s.faults, opInsertProfile, func() (struct{}, error) {
		return struct{}{}, s.Store.InsertProfile(ctx, profile)
	})
	return err
}

func (s *flakyStore) InsertWallet(ctx context.Context, w wallet.Wallet) error {
	_, err := run(ctx, s.faults, opInsertWallet, func() (struct{}, error) {
		return struct{}{}, s.Store.InsertWallet(ctx, w)
	})
	return err
}

func (s *flakyStore) DeleteProfile(ctx context.Context, identityKey string) error {
	_, err := run(ctx, s.faults, opDeleteProfile, func() (struct{}, error) {
		return struct{}{}, s.Store.DeleteProfile(ctx, identityKey)
	})
	return err
}

func (s *flakyStore) DeleteWallet(ctx context.Context, identityKey string) error {
	_, err := run(ctx, s.faults, opDeleteWallet, func() (struct{}, error) {
		return struct{}{}, s.Store.DeleteWallet(ctx, identityKey)
	})
	return err
}

func (s *flakyStore) FindProfileByIdentityKey(ctx context.Context, identityKey string) (patient.Profile, error) {
	return run(ctx, s.faults, opFindProfile, func() (patient.Profile, error) {
		return s.Store.FindProfileByIdentityKey(ctx, identityKey)
	})
}

func (s *flakyStore) FindWalletByIdentityKey(ctx context.Context, identityKey string) (wallet.Wallet, error) {
	return run(ctx, s.faults, opFindWallet, func() (wallet.Wallet, error) {
		return s.Store.FindWalletByIdentityKey(ctx, identityKey)
	})
}
