package pagerank

import (
	"github.com/neurorank/fxpagerank/bspgraph"
	"github.com/neurorank/fxpagerank/bspgraph/message"
	"github.com/neurorank/fxpagerank/fixed"
	"github.com/neurorank/fxpagerank/trajectory"
)

const l1AggregatorName = "l1_raw"

// RankMessage carries a vertex's rank share to one of its neighbors. The
// payload holds the raw wire bits in the engine's payload format, after
// truncation.
type RankMessage struct {
	Payload uint64
}

// Type returns the type of this message
func (RankMessage) Type() string { return "rank" }

// roundState holds the constants of a run and the row that is being filled
// by the current superstep. Each vertex only writes its own row slot.
type roundState struct {
	rankFmt      fixed.Format
	payloadFmt   fixed.Format
	truncateBits uint
	undamped     bool

	initRank   fixed.Value
	damping    fixed.Value
	dampingSum fixed.Value

	row trajectory.Row
}

// encode returns the wire payload for a share of rank.
func (st *roundState) encode(share fixed.Value) RankMessage {
	return RankMessage{Payload: fixed.EncodePayload(share, st.payloadFmt, st.truncateBits)}
}

// decode converts a received payload back into the rank format.
func (st *roundState) decode(msg RankMessage) fixed.Value {
	return fixed.DecodePayload(msg.Payload, st.payloadFmt, st.rankFmt)
}

// makeComputeFunc returns a ComputeFunc that executes one round of the
// fixed-point PageRank iteration for a vertex.
func makeComputeFunc(st *roundState) bspgraph.ComputeFunc {
	return func(g *bspgraph.Graph, v *bspgraph.Vertex, msgIt message.Iterator) error {
		var cur trajectory.RankState
		if g.Superstep() == 0 {
			// Every vertex starts with an equal share of the total rank
			// and sends it before anything has been received.
			cur = trajectory.RankState{
				Rank:    st.initRank,
				Pending: fixed.Zero(st.rankFmt),
			}
		} else {
			pending := fixed.Zero(st.rankFmt)
			var count int
			for msgIt.Next() {
				pending = pending.Add(st.decode(msgIt.Message().(RankMessage)))
				count++
			}

			newRank := pending
			if !st.undamped {
				newRank = st.dampingSum.Add(st.damping.Mul(pending, st.rankFmt))
			}

			prev := v.Value().(trajectory.RankState)
			g.Aggregator(l1AggregatorName).Aggregate(newRank.Sub(prev.Rank).Abs().Raw())

			cur = trajectory.RankState{
				Rank:         newRank,
				Pending:      pending,
				MessageCount: count,
			}
		}

		v.SetValue(cur)
		st.row[v.Index()] = cur

		// Validated graphs have no dead ends.
		numOutLinks := int64(len(v.Edges()))
		if numOutLinks == 0 {
			return nil
		}
		return g.BroadcastToNeighbors(v, st.encode(cur.Rank.DivInt(numOutLinks)))
	}
}
