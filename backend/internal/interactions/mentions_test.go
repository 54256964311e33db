package interactions

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"tgosint/backend/internal/archive"
)

func text(s string) *string { return &s }

func id(v int64) *int64 { return &v }

func TestExtractMentions_RanksByCountThenFirstSeen(t *testing.T) {
	msgs := []archive.Message{
		{ID: 1, Text: text("ping @carol_x and @bob_handle")},
		{ID: 2, Text: text("@bob_handle again, also @alice")},
		{ID: 3},
		{ID: 4, Text: text("@carol_x @bob_handle")},
	}

	got := ExtractMentions(msgs).Ranked()

	want := []MentionCount{
		{Mention: "@bob_handle", Count: 3},
		{Mention: "@carol_x", Count: 2},
		{Mention: "@alice", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ranked mentions mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractMentions_MinimumLengthAndCase(t *testing.T) {
	msgs := []archive.Message{
		{ID: 1, Text: text("@abc is too short, @abcd is fine")},
		{ID: 2, Text: text("@Abcd differs by case, mail me at me@host_name")},
		{ID: 3, Text: text("кириллица @иван_петров")},
	}

	tally := ExtractMentions(msgs)
	counts := tally.Counts()

	assert.NotContains(t, counts, "@abc")
	assert.Equal(t, 1, counts["@abcd"])
	assert.Equal(t, 1, counts["@Abcd"])
	assert.Equal(t, 1, counts["@host_name"])
	assert.Equal(t, 1, counts["@иван_петров"])
	assert.Equal(t, 4, tally.Len())
	assert.Equal(t, 4, tally.Total())
}

func TestExtractMentions_Empty(t *testing.T) {
	tally := ExtractMentions(nil)

	assert.Empty(t, tally.Ranked())
	assert.Zero(t, tally.Total())
}

func TestTop(t *testing.T) {
	ranked := []int{5, 4, 3}

	assert.Equal(t, []int{5, 4}, top(ranked, 2))
	assert.Equal(t, ranked, top(ranked, 10))
	assert.Equal(t, ranked, top(ranked, 0))
}
