// Package graphfake is an in-memory graph.Runtime used by tests: it
// tracks elements, links and pad probes without driving any real media
// processing, so the pipeline builder and hot-swap coordinator can be
// exercised deterministically.
package graphfake

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-wfd/wfdsource/pipeline/graph"
)

// Runtime is a graph.Runtime that records every bin it creates.
type Runtime struct {
	mu   sync.Mutex
	Bins []*Bin
}

// New allocates a Runtime.
func New() *Runtime {
	return &Runtime{}
}

// NewBin implements graph.Runtime.
func (r *Runtime) NewBin(name string) (graph.Bin, error) {
	b := &Bin{name: name, elements: map[string]*Element{}}
	r.mu.Lock()
	r.Bins = append(r.Bins, b)
	r.mu.Unlock()
	return b, nil
}

// Bin is an in-memory graph.Bin.
type Bin struct {
	mu       sync.Mutex
	name     string
	elements map[string]*Element
	links    []Link
	state    graph.State
	ghosts   map[string]graph.Pad
	pads     map[string]*Pad

	// FailFactory, when set, makes MakeElement fail for the named factory —
	// used to exercise BuildFailed.
	FailFactory string
}

// Link records a src->dst connection.
type Link struct {
	Src, Dst string
}

// Name returns the bin's name.
func (b *Bin) Name() string { return b.name }

// State returns the bin's current state.
func (b *Bin) State() graph.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Elements returns the names of every element added to the bin, in
// insertion order is not guaranteed; tests should check membership.
func (b *Bin) Elements() map[string]*Element {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]*Element, len(b.elements))
	for k, v := range b.elements {
		out[k] = v
	}
	return out
}

// MakeElement implements graph.Bin.
func (b *Bin) MakeElement(factory, name string) (graph.Element, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.FailFactory != "" && factory == b.FailFactory {
		return nil, fmt.Errorf("factory %q unavailable", factory)
	}

	el := &Element{factory: factory, name: name, props: map[string]any{}}
	b.elements[name] = el
	return el, nil
}

// Link implements graph.Bin.
func (b *Bin) Link(src, dst graph.Element) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.links = append(b.links, Link{Src: src.Name(), Dst: dst.Name()})
	return nil
}

// RequestPad implements graph.Bin.
func (b *Bin) RequestPad(el graph.Element, key string) (graph.Pad, error) {
	return b.padFor(el.Name(), key), nil
}

// GetPad implements graph.Bin.
func (b *Bin) GetPad(el graph.Element, name string) (graph.Pad, error) {
	return b.padFor(el.Name(), name), nil
}

// padFor returns the same *Pad instance for a given (owner, name) pair on
// every call, so a probe installed through one GetPad/RequestPad call is
// visible to a Fire issued through another — pads are identified by name,
// not by the call that looked them up.
func (b *Bin) padFor(owner, name string) *Pad {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pads == nil {
		b.pads = map[string]*Pad{}
	}
	key := owner + "\x00" + name
	if p, ok := b.pads[key]; ok {
		return p
	}
	p := &Pad{owner: owner, name: name}
	b.pads[key] = p
	return p
}

// Pad returns the cached pad for (owner, name) if one has been requested,
// for test assertions that need to Fire a probe from outside the
// component under test.
func (b *Bin) Pad(owner, name string) (*Pad, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pads[owner+"\x00"+name]
	return p, ok
}

// SetState implements graph.Bin.
func (b *Bin) SetState(_ context.Context, s graph.State) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = s
	return nil
}

// Remove implements graph.Bin.
func (b *Bin) Remove(el graph.Element) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.elements, el.Name())
	return nil
}

// AddGhostPad implements graph.Bin.
func (b *Bin) AddGhostPad(name string, internal graph.Pad) (graph.Pad, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ghosts == nil {
		b.ghosts = map[string]graph.Pad{}
	}
	b.ghosts[name] = internal
	return internal, nil
}

// Element is an in-memory graph.Element.
type Element struct {
	mu      sync.Mutex
	factory string
	name    string
	props   map[string]any
}

// Factory returns the element's factory name.
func (e *Element) Factory() string { return e.factory }

// Name implements graph.Element.
func (e *Element) Name() string { return e.name }

// SetProperty implements graph.Element.
func (e *Element) SetProperty(key string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.props[key] = value
	return nil
}

// Property returns a previously set property, for test assertions.
func (e *Element) Property(key string) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.props[key]
	return v, ok
}

// Pad is an in-memory graph.Pad that runs probes synchronously when Fire
// is called, the way a real idle/buffer/event probe would on a streaming
// thread.
type Pad struct {
	mu     sync.Mutex
	owner  string
	name   string
	probes []installedProbe
}

type installedProbe struct {
	typ graph.ProbeType
	cb  graph.ProbeFunc
	id  int
}

type handle struct {
	pad *Pad
	id  int
}

func (h *handle) Remove() {
	h.pad.mu.Lock()
	defer h.pad.mu.Unlock()
	for i, p := range h.pad.probes {
		if p.id == h.id {
			h.pad.probes = append(h.pad.probes[:i], h.pad.probes[i+1:]...)
			return
		}
	}
}

// AddProbe implements graph.Pad.
func (p *Pad) AddProbe(t graph.ProbeType, cb graph.ProbeFunc) graph.ProbeHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := len(p.probes)
	p.probes = append(p.probes, installedProbe{typ: t, cb: cb, id: id})
	return &handle{pad: p, id: id}
}

// Fire invokes every installed probe of type t, the way the real runtime
// would when the condition (idle/buffer/event) occurs. Idle probes are
// removed after firing (they are documented as one-shot).
func (p *Pad) Fire(t graph.ProbeType, info graph.Info) {
	p.mu.Lock()
	toRun := make([]installedProbe, 0, len(p.probes))
	for _, pr := range p.probes {
		if pr.typ == t {
			toRun = append(toRun, pr)
		}
	}
	p.mu.Unlock()

	for _, pr := range toRun {
		pr.cb(info)
		if t == graph.ProbeIdle {
			(&handle{pad: p, id: pr.id}).Remove()
		}
	}
}
