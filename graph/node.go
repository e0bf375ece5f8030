package graph

import (
	"sync"

	"github.com/highwaygo/highways/channel"
	"github.com/highwaygo/highways/highway"
)

// Label identifies one of a Node's input or output channels. The zero
// value, DefaultLabel, is what a single-input/single-output node uses
// when it has no reason to distinguish channels by name.
type Label int32

// DefaultLabel is the label a Node uses when callers don't need more than
// one input or output channel.
const DefaultLabel Label = 0

// OutputPublisher is what a Logic function publishes results through.
// Unlike the input label that triggered a delivery, Logic chooses which
// output label(s) it publishes to via out — this is what makes a Node
// able to route a single input to different outputs depending on the
// value it sees, e.g. splitting even and odd inputs onto separate
// labels, which reusing the triggering input's label could never express.
type OutputPublisher[OutResult any] interface {
	Publish(label Label, out OutResult)
}

// Logic is the work a Node performs for a single delivery on one of its
// labeled input channels. It reports an error instead of a bare ok flag
// so a failure carries a reason into progress reporting, and it
// publishes zero or more results itself via out rather than having
// exactly one result automatically fanned out on the triggering input's
// label.
type Logic[InParam, OutResult any] func(label Label, in InParam, out OutputPublisher[OutResult]) error

// ProgressPublisher is where a Node reports its NodeProgress as it moves
// through a delivery; NewProgressPublisher and
// NewBatchedProgressPublisher are the two concrete implementations.
type ProgressPublisher interface {
	Publish(NodeProgress)
}

// Node is a single unit of the execution graph: it accepts InParam
// deliveries on any number of labeled input channels, runs Logic for
// each on its host highway, and lets Logic publish OutResult values on
// whichever labeled output channel(s) it chooses. Grounded in
// execution_tree/i_execution_tree.h's DefaultNode, generalized past its
// single hard-coded input/output pair into the labeled sets a graph
// builder wires up.
type Node[InParam, OutResult any] struct {
	id    int32
	host  *highway.Highway
	logic Logic[InParam, OutResult]

	mu       sync.Mutex
	inputs   map[Label]channel.Subscription[InParam]
	outputs  map[Label]*channel.ManyForMany[OutResult]
	progress ProgressPublisher
}

// NewNode creates a Node identified by id, dispatching logic onto host for
// every input delivery.
func NewNode[InParam, OutResult any](id int32, host *highway.Highway, logic Logic[InParam, OutResult]) *Node[InParam, OutResult] {
	return &Node[InParam, OutResult]{
		id:      id,
		host:    host,
		logic:   logic,
		inputs:  make(map[Label]channel.Subscription[InParam]),
		outputs: make(map[Label]*channel.ManyForMany[OutResult]),
	}
}

// ID returns the node's identifier within its ExecutionTree.
func (n *Node[InParam, OutResult]) ID() int32 { return n.id }

// SetProgressPublisher attaches pp as the destination for this node's
// NodeProgress reports. A nil pp (the default) disables progress
// reporting entirely.
func (n *Node[InParam, OutResult]) SetProgressPublisher(pp ProgressPublisher) {
	n.mu.Lock()
	n.progress = pp
	n.mu.Unlock()
}

// Input returns the Subscription that feeds deliveries on label into this
// node's Logic. Upstream publishers Subscribe it to receive values;
// repeated calls with the same label return the same Subscription.
func (n *Node[InParam, OutResult]) Input(label Label) channel.Subscription[InParam] {
	n.mu.Lock()
	defer n.mu.Unlock()
	if sub, ok := n.inputs[label]; ok {
		return sub
	}
	sub := channel.HighwayDispatched(n.host, func(in InParam) {
		n.run(label, in)
	}, true, "graph/node.go", 0)
	n.inputs[label] = sub
	return sub
}

// Output returns the publisher downstream code subscribes to for results
// published on label. Repeated calls with the same label return the same
// publisher.
func (n *Node[InParam, OutResult]) Output(label Label) *channel.ManyForMany[OutResult] {
	n.mu.Lock()
	defer n.mu.Unlock()
	out, ok := n.outputs[label]
	if !ok {
		out = channel.NewManyForMany[OutResult]()
		n.outputs[label] = out
	}
	return out
}

func (n *Node[InParam, OutResult]) publish(label Label, out OutResult) {
	n.Output(label).Publish(out)
}

func (n *Node[InParam, OutResult]) run(label Label, in InParam) {
	n.reportProgress(ProgressStarted)
	if err := n.logic(label, in, nodeOutput[InParam, OutResult]{n}); err != nil {
		n.reportProgress(ProgressUnknownError)
		return
	}
	n.reportProgress(ProgressSuccessFinished)
}

func (n *Node[InParam, OutResult]) reportProgress(code int32) {
	n.mu.Lock()
	pp := n.progress
	n.mu.Unlock()
	if pp == nil {
		return
	}
	pp.Publish(NodeProgress{NodeID: n.id, AchievedProgress: code})
}

// Close satisfies GraphNode. A Node owns nothing that needs explicit
// release beyond its maps, which the garbage collector reclaims once the
// ExecutionTree drops its reference.
func (n *Node[InParam, OutResult]) Close() {}

// nodeOutput adapts a *Node to OutputPublisher so a Logic function can
// choose which labeled output(s) to publish to, independent of the input
// label that triggered it.
type nodeOutput[InParam, OutResult any] struct {
	n *Node[InParam, OutResult]
}

func (o nodeOutput[InParam, OutResult]) Publish(label Label, out OutResult) {
	o.n.publish(label, out)
}

// SeedInput feeds value into node's input on label exactly once, through
// a ConstPublisher, for nodes wired up without a live upstream producer —
// e.g. a constant configuration value a graph's root nodes need at
// startup.
func SeedInput[InParam, OutResult any](node *Node[InParam, OutResult], label Label, value InParam) {
	channel.NewConstPublisher(value).Subscribe(node.Input(label))
}
