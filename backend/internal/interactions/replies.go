package interactions

import "tgosint/backend/internal/archive"

// Pair is a directed reply relationship: From replied to a message written by To
type Pair struct {
	From int64 `json:"from_id"`
	To   int64 `json:"to_id"`
}

// ReplyEdge is a ranked pair with its count
type ReplyEdge struct {
	Pair
	Count int `json:"count"`
}

// ReplyGraph is the tallied reply graph of one archive
type ReplyGraph struct {
	edges []ReplyEdge

	// Dangling counts replies whose target message is not in the archive
	Dangling int
	// SelfReplies counts replies to one's own message
	SelfReplies int
}

// messageKey identifies a message. Telegram message ids are only unique within one chat.
type messageKey struct {
	Chat string
	ID   int64
}

// authorIndex maps messages to the user who wrote them
type authorIndex map[messageKey]int64

// buildAuthorIndex is the first pass: every message with a user author is indexed
// under its own chat. A repeated id inside one chat keeps its first author.
func buildAuthorIndex(msgs []archive.Message) authorIndex {
	index := make(authorIndex, len(msgs))
	for _, msg := range msgs {
		if msg.FromID == nil {
			continue
		}
		key := messageKey{Chat: msg.Chat, ID: msg.ID}
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = *msg.FromID
	}
	return index
}

// BuildReplyGraph reconstructs who replied to whom. A reply target is looked up in the
// replying message's own chat. Replies to messages outside the archive and self-replies
// produce no edge. With a subject, only edges touching the
// subject are kept.
func BuildReplyGraph(msgs []archive.Message, subjectID *int64) *ReplyGraph {
	index := buildAuthorIndex(msgs)
	graph := &ReplyGraph{}
	pairs := newTally[Pair]()

	for _, msg := range msgs {
		if msg.FromID == nil || msg.ReplyToID == nil {
			continue
		}
		target, ok := index[messageKey{Chat: msg.Chat, ID: *msg.ReplyToID}]
		if !ok {
			graph.Dangling++
			continue
		}
		author := *msg.FromID
		if author == target {
			graph.SelfReplies++
			continue
		}
		pairs.add(Pair{From: author, To: target})
	}

	for _, pair := range pairs.ranked() {
		if subjectID != nil && pair.From != *subjectID && pair.To != *subjectID {
			continue
		}
		graph.edges = append(graph.edges, ReplyEdge{Pair: pair, Count: pairs.counts[pair]})
	}
	return graph
}

// Edges returns the retained edges by descending count, ties in first-seen order
func (g *ReplyGraph) Edges() []ReplyEdge {
	out := make([]ReplyEdge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Participants returns every user id on a retained edge, in ranked order of first appearance
func (g *ReplyGraph) Participants() []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, edge := range g.edges {
		for _, id := range []int64{edge.From, edge.To} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}
