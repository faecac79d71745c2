package correlate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rundownlog/rundownlog-go/pkg/rundownlog/event"
)

func TestQueueIsFIFO(t *testing.T) {
	q := NewQueue()
	q.Push(Ref{Item: event.ItemPD, ZoneAlias: 410})
	q.Push(Ref{Item: event.ItemDataCube, ZoneAlias: 411})

	ref, ok := q.Next()
	assert.True(t, ok)
	assert.Equal(t, event.ItemPD, ref.Item)
	assert.Equal(t, uint32(410), ref.ZoneAlias)

	ref, ok = q.Next()
	assert.True(t, ok)
	assert.Equal(t, event.ItemDataCube, ref.Item)

	_, ok = q.Next()
	assert.False(t, ok)
}

func TestQueueEmptyNext(t *testing.T) {
	q := NewQueue()
	_, ok := q.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestQueueReset(t *testing.T) {
	q := NewQueue()
	q.Push(Ref{Item: event.ItemID, ZoneAlias: 1})
	q.Reset()

	assert.Equal(t, 0, q.Len())
	_, ok := q.Next()
	assert.False(t, ok)
}
