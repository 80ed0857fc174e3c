package timeline_test

import (
	"testing"
	"time"

	"warbler/internal/models"
	"warbler/internal/timeline"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func msg(id uint, userID uint, minutes int) models.Message {
	return models.Message{ID: id, UserID: userID, Text: "m", Timestamp: base.Add(time.Duration(minutes) * time.Minute)}
}

func ids(messages []models.Message) []uint {
	out := make([]uint, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.ID)
	}
	return out
}

func TestMerge_InterleavesByRecency(t *testing.T) {
	a := []models.Message{msg(5, 1, 50), msg(3, 1, 30), msg(1, 1, 10)}
	b := []models.Message{msg(6, 2, 60), msg(4, 2, 40), msg(2, 2, 20)}

	got := timeline.Merge([][]models.Message{a, b}, 100)

	assert.Equal(t, []uint{6, 5, 4, 3, 2, 1}, ids(got))
}

func TestMerge_RespectsLimit(t *testing.T) {
	a := []models.Message{msg(4, 1, 40), msg(2, 1, 20)}
	b := []models.Message{msg(3, 2, 30), msg(1, 2, 10)}

	got := timeline.Merge([][]models.Message{a, b}, 3)

	assert.Equal(t, []uint{4, 3, 2}, ids(got))
}

func TestMerge_KeepsEachAuthorsNewestMessage(t *testing.T) {
	// One prolific author must not crowd out another author's newer post.
	var busy []models.Message
	for i := 0; i < 100; i++ {
		busy = append(busy, msg(uint(200-i), 1, -i))
	}
	quiet := []models.Message{msg(1, 2, 5)}

	got := timeline.Merge([][]models.Message{busy, quiet}, 100)

	assert.Len(t, got, 100)
	assert.Equal(t, uint(1), got[0].ID)
}

func TestMerge_TiesBrokenByHigherID(t *testing.T) {
	a := []models.Message{msg(7, 1, 0)}
	b := []models.Message{msg(9, 2, 0)}
	c := []models.Message{msg(8, 3, 0)}

	got := timeline.Merge([][]models.Message{a, b, c}, 10)

	assert.Equal(t, []uint{9, 8, 7}, ids(got))
}

func TestMerge_EmptyInputs(t *testing.T) {
	assert.Empty(t, timeline.Merge(nil, 100))
	assert.Empty(t, timeline.Merge([][]models.Message{{}, {}}, 100))
	assert.Empty(t, timeline.Merge([][]models.Message{{msg(1, 1, 0)}}, 0))
}
