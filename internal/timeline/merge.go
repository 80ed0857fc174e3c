// Package timeline merges per-author message streams into one recency-ordered feed.
package timeline

import (
	"container/heap"

	"warbler/internal/models"
)

// Merge combines streams, each already ordered newest first, into a single
// newest-first sequence of at most limit messages. Equal timestamps are
// ordered by descending message ID.
func Merge(streams [][]models.Message, limit int) []models.Message {
	if limit <= 0 {
		return []models.Message{}
	}

	h := make(cursorHeap, 0, len(streams))
	for _, s := range streams {
		if len(s) > 0 {
			h = append(h, &cursor{stream: s})
		}
	}
	heap.Init(&h)

	out := make([]models.Message, 0, min(limit, total(streams)))
	for h.Len() > 0 && len(out) < limit {
		c := h[0]
		out = append(out, c.head())
		c.pos++
		if c.pos == len(c.stream) {
			heap.Pop(&h)
		} else {
			heap.Fix(&h, 0)
		}
	}
	return out
}

func total(streams [][]models.Message) int {
	n := 0
	for _, s := range streams {
		n += len(s)
	}
	return n
}

type cursor struct {
	stream []models.Message
	pos    int
}

func (c *cursor) head() models.Message { return c.stream[c.pos] }

type cursorHeap []*cursor

func (h cursorHeap) Len() int           { return len(h) }
func (h cursorHeap) Less(i, j int) bool { return h[i].head().Newer(h[j].head()) }
func (h cursorHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *cursorHeap) Push(x any) { *h = append(*h, x.(*cursor)) }

func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}
