package node

import (
	"github.com/xaionaro-go/avtimestamp/types"
)

type Statistics = types.Statistics

// NodeStatistics counts what entered the node; what left it is counted by
// the src pads.
type NodeStatistics struct {
	Input *types.Counters
}

func newNodeStatistics() *NodeStatistics {
	return &NodeStatistics{
		Input: types.NewCounters(),
	}
}

// PadStatistics is a snapshot of one src pad.
type PadStatistics struct {
	Sent     types.StatisticsSubSection
	Rejected types.StatisticsSubSection
}

type FullStatistics struct {
	Input Statistics
	Pads  map[string]PadStatistics
}
