// Package vipstest provides a recording vips.Library for tests that must not load libvips.
package vipstest

import (
	"fmt"
	"os"
	"sync"

	"github.com/cshum/vipsop/vips"
)

// Call one recorded native call
type Call struct {
	Entry string
	Fixed []vips.Arg
	Tail  vips.CallTail
}

// Library records every call and returns configured codes.
// Successful save calls write a small placeholder artifact at the requested name.
type Library struct {
	// Codes maps entry point to return code, 0 when absent
	Codes map[string]int
	// Message returned by LastError after a failed call
	Message string
	// FailLoad makes image loads return a zero handle
	FailLoad bool

	Width  int
	Height int
	Bands  int

	lock        sync.Mutex
	calls       []Call
	released    []vips.Handle
	next        vips.Handle
	lastErr     string
	concurrency int
	cache       [3]int
	shutdowns   int
}

// New creates a Library reporting 64x48 RGB images
func New() *Library {
	return &Library{
		Codes:  map[string]int{},
		Width:  64,
		Height: 48,
		Bands:  3,
		next:   0x1000,
	}
}

// Calls returns a copy of the recorded calls
func (l *Library) Calls() []Call {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]Call(nil), l.calls...)
}

// CallCount returns the number of calls to entry, all calls if entry is empty
func (l *Library) CallCount(entry string) int {
	l.lock.Lock()
	defer l.lock.Unlock()
	n := 0
	for _, c := range l.calls {
		if entry == "" || c.Entry == entry {
			n++
		}
	}
	return n
}

// Released returns the handles passed to Unref in order
func (l *Library) Released() []vips.Handle {
	l.lock.Lock()
	defer l.lock.Unlock()
	return append([]vips.Handle(nil), l.released...)
}

// Shutdowns returns the number of Shutdown calls
func (l *Library) Shutdowns() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.shutdowns
}

// Concurrency returns the last SetConcurrency value
func (l *Library) Concurrency() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.concurrency
}

// Cache returns the last SetCache values
func (l *Library) Cache() (maxOps, maxMem, maxFiles int) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.cache[0], l.cache[1], l.cache[2]
}

func (l *Library) newHandle() vips.Handle {
	l.next += 0x10
	return l.next
}

func (l *Library) fail(entry string, code int) int {
	l.lastErr = l.Message
	if l.lastErr == "" {
		l.lastErr = fmt.Sprintf("%s: failed", entry)
	}
	return code
}

// Call implements vips.Library
func (l *Library) Call(entry string, fixed []vips.Arg, tail vips.CallTail) int {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.calls = append(l.calls, Call{
		Entry: entry,
		Fixed: append([]vips.Arg(nil), fixed...),
		Tail:  append(vips.CallTail(nil), tail...),
	})
	if code := l.Codes[entry]; code != 0 {
		return l.fail(entry, code)
	}
	for _, a := range fixed {
		if a.Type == vips.ArgOutImage && a.Out != nil {
			*a.Out = l.newHandle()
		}
	}
	if len(fixed) >= 2 && fixed[1].Type == vips.ArgString {
		if err := writeArtifact(entry, fixed[1].Str, tail); err != nil {
			l.lastErr = err.Error()
			return -1
		}
	}
	return 0
}

func writeArtifact(entry, name string, tail vips.CallTail) error {
	if entry == vips.EntryDzSave {
		container := vips.DzContainerFS
		for _, p := range tail.Pairs() {
			if p.Name == "container" {
				container = vips.DzContainer(p.Value.Int)
			}
		}
		name += container.Suffix()
	}
	return os.WriteFile(name, []byte("vipstest:"+entry), 0600)
}

// NewImageFromFile implements vips.Library
func (l *Library) NewImageFromFile(filename string, tail vips.CallTail) vips.Handle {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.calls = append(l.calls, Call{
		Entry: vips.EntryNewFromFile,
		Fixed: []vips.Arg{vips.String(filename)},
		Tail:  append(vips.CallTail(nil), tail...),
	})
	if l.FailLoad {
		l.fail(vips.EntryNewFromFile, -1)
		return 0
	}
	return l.newHandle()
}

// NewImageFromMemory implements vips.Library
func (l *Library) NewImageFromMemory(data []byte, width, height, bands int) vips.Handle {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.calls = append(l.calls, Call{
		Entry: vips.EntryNewFromMemory,
		Fixed: []vips.Arg{vips.Bytes(data), vips.Int(width), vips.Int(height), vips.Int(bands)},
	})
	if l.FailLoad {
		l.fail(vips.EntryNewFromMemory, -1)
		return 0
	}
	return l.newHandle()
}

// ImageWidth implements vips.Library
func (l *Library) ImageWidth(vips.Handle) int { return l.Width }

// ImageHeight implements vips.Library
func (l *Library) ImageHeight(vips.Handle) int { return l.Height }

// ImageBands implements vips.Library
func (l *Library) ImageBands(vips.Handle) int { return l.Bands }

// Unref implements vips.Library
func (l *Library) Unref(h vips.Handle) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.released = append(l.released, h)
}

// LastError implements vips.Library
func (l *Library) LastError() string {
	l.lock.Lock()
	defer l.lock.Unlock()
	msg := l.lastErr
	l.lastErr = ""
	return msg
}

// SetConcurrency implements vips.Library
func (l *Library) SetConcurrency(n int) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.concurrency = n
}

// SetCache implements vips.Library
func (l *Library) SetCache(maxOps, maxMem, maxFiles int) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.cache = [3]int{maxOps, maxMem, maxFiles}
}

// Version implements vips.Library
func (l *Library) Version() string { return "8.15.0-vipstest" }

// Shutdown implements vips.Library
func (l *Library) Shutdown() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.shutdowns++
}
