// Package crawl: traversal frontier.
// Holds the fetched pages whose outbound links are still waiting to be followed.
package crawl

import "fmt"

// Order selects how the frontier hands out pages.
type Order string

const (
	// DepthFirst follows each link to the bottom before moving to its
	// sibling, the same order as a recursive crawl.
	DepthFirst Order = "depth-first"
	// BreadthFirst drains every link of a page before descending.
	BreadthFirst Order = "breadth-first"
)

// ParseOrder converts user input into an Order. Empty input selects DepthFirst.
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case "", DepthFirst, "dfs":
		return DepthFirst, nil
	case BreadthFirst, "bfs":
		return BreadthFirst, nil
	}
	return "", fmt.Errorf("unknown traversal order %q", s)
}

// frame is a fetched page at a given depth and the links found on it.
type frame struct {
	depth int
	links []string
	next  int // index of the next link to hand out
}

// pop returns the next unhandled link of the frame.
func (f *frame) pop() (string, bool) {
	if f.next >= len(f.links) {
		return "", false
	}
	link := f.links[f.next]
	f.next++
	return link, true
}

// Frontier is a work list of frames. Depending on its order it behaves as
// a stack (depth-first) or a queue (breadth-first).
type Frontier struct {
	order  Order
	frames []*frame
	head   int // first live frame, used by the queue
}

// NewFrontier creates an empty Frontier.
func NewFrontier(order Order) *Frontier {
	return &Frontier{order: order}
}

// Push adds a frame.
func (f *Frontier) Push(fr *frame) {
	f.frames = append(f.frames, fr)
}

// Current returns the frame links are taken from, or nil when empty.
func (f *Frontier) Current() *frame {
	if f.Len() == 0 {
		return nil
	}
	if f.order == BreadthFirst {
		return f.frames[f.head]
	}
	return f.frames[len(f.frames)-1]
}

// Drop discards the current frame.
func (f *Frontier) Drop() {
	if f.Len() == 0 {
		return
	}
	if f.order == BreadthFirst {
		f.frames[f.head] = nil
		f.head++
		return
	}
	f.frames[len(f.frames)-1] = nil
	f.frames = f.frames[:len(f.frames)-1]
}

// Len returns the number of live frames.
func (f *Frontier) Len() int {
	return len(f.frames) - f.head
}
