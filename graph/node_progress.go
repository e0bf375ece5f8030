// Package graph implements a composable execution graph of typed nodes,
// each dispatching its logic on a highway and fanning its result out to
// labeled output channels that other nodes (or plain subscribers) connect
// to.
package graph

// NodeProgress reports a node's execution progress to anything subscribed
// to a graph's progress channel, grounded in
// execution_tree/NodeProgress.h. AchievedProgress follows the original's
// scale: 1..9999 is in-progress, 10000 is success, negative is an error
// code, and values above 10000 are reserved for user-defined completion
// codes.
type NodeProgress struct {
	NodeID           int32
	AchievedProgress int32
}

const (
	// ProgressNotStarted is the zero value: the node has not run yet.
	ProgressNotStarted int32 = 0
	// ProgressStarted marks the moment a node begins processing an input.
	ProgressStarted int32 = 1
	// ProgressSuccessFinished marks full, successful completion.
	ProgressSuccessFinished int32 = 10000
	// ProgressUnknownError marks a failure whose cause wasn't categorized.
	ProgressUnknownError int32 = -1
)
