package linkage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mugline/roster-cli/internal/csvio"
)

func primaryTable(names ...string) *csvio.Table {
	t := &csvio.Table{Columns: []string{"BookingID", "Name", "Severity"}}
	for i, n := range names {
		t.Rows = append(t.Rows, []string{string(rune('1' + i)), n, "Medium"})
	}
	return t
}

func secondaryTable(names ...string) *csvio.Table {
	t := &csvio.Table{Columns: []string{"DCNumber", "Name", "CurrentFacility"}}
	for i, n := range names {
		t.Rows = append(t.Rows, []string{"X" + string(rune('1'+i)), n, "EVERGLADES C.I."})
	}
	return t
}

func TestLink_ExactMatchOnNormalizedName(t *testing.T) {
	merged, stats, err := Link(context.Background(),
		primaryTable("SMITH, JOHN A JR."),
		secondaryTable("SMITH, JOHN"),
		Options{})

	require.NoError(t, err)
	assert.Equal(t, 1, stats.ExactMatched)
	assert.Equal(t, 0, stats.FuzzyMatched)
	assert.Equal(t, float64(100), stats.MatchRate)

	require.Len(t, merged.Rows, 1)
	assert.Equal(t, []string{"1", "SMITH, JOHN A JR.", "Medium", "X1", "SMITH, JOHN", "EVERGLADES C.I."}, merged.Rows[0])
}

func TestLink_FuzzyMatchesReorderedName(t *testing.T) {
	// "Smith, John" and "John Smith" never match exactly but are the
	// same person under variant reordering.
	merged, stats, err := Link(context.Background(),
		primaryTable("Smith, John"),
		secondaryTable("John Smith"),
		Options{})

	require.NoError(t, err)
	assert.Equal(t, 0, stats.ExactMatched)
	assert.Equal(t, 1, stats.FuzzyMatched)
	assert.Equal(t, 0, stats.Unmatched)
	assert.Equal(t, float64(100), stats.MatchRate)
	assert.Equal(t, "X1", merged.Rows[0][3])
}

func TestLink_ThresholdBoundary(t *testing.T) {
	// Exactly at the threshold matches; one point under does not.
	at := "ABCDEFGHIJKLMNOPQRST"   // 20 chars
	sub3 := "XBCDEFGHIJXLMNOPQRSX" // ratio 85
	under := "ABCDEFGHIJKLMNOPQRSTUVWXY"  // 25 chars
	sub4 := "XBCDEFGHXJKLMNOPXRSTUVWXZ"   // ratio 84

	_, stats, err := Link(context.Background(),
		primaryTable(at), secondaryTable(sub3), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FuzzyMatched)

	_, stats, err = Link(context.Background(),
		primaryTable(under), secondaryTable(sub4), Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.FuzzyMatched)
	assert.Equal(t, 1, stats.Unmatched)
}

func TestLink_JoinKeepsUnmatchedPrimaryRows(t *testing.T) {
	merged, stats, err := Link(context.Background(),
		primaryTable("SMITH, JOHN", "UNRELATED, PERSON"),
		secondaryTable("SMITH, JOHN"),
		Options{Mode: ModeJoin})

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Unmatched)
	require.Len(t, merged.Rows, 2)
	assert.Equal(t, []string{"2", "UNRELATED, PERSON", "Medium", "", "", ""}, merged.Rows[1])
}

func TestLink_ConcatAppendsUnmatchedSecondaryRows(t *testing.T) {
	merged, stats, err := Link(context.Background(),
		primaryTable("SMITH, JOHN"),
		secondaryTable("SMITH, JOHN", "ONLYIN, CORRECTIONS"),
		Options{Mode: ModeConcat})

	require.NoError(t, err)
	assert.Equal(t, 1, stats.ExactMatched)
	require.Len(t, merged.Rows, 2)
	assert.Equal(t, []string{"", "", "", "X2", "ONLYIN, CORRECTIONS", "EVERGLADES C.I."}, merged.Rows[1])
}

func TestLink_CollidingColumnsSuffixed(t *testing.T) {
	merged, _, err := Link(context.Background(),
		primaryTable("SMITH, JOHN"),
		secondaryTable("SMITH, JOHN"),
		Options{})

	require.NoError(t, err)
	assert.Equal(t,
		[]string{"BookingID", "Name", "Severity", "DCNumber", "Name_doc", "CurrentFacility"},
		merged.Columns)
}

func TestLink_FirstSecondaryRowWinsDuplicateNames(t *testing.T) {
	merged, stats, err := Link(context.Background(),
		primaryTable("SMITH, JOHN"),
		secondaryTable("SMITH, JOHN", "SMITH, JOHN"),
		Options{Mode: ModeJoin})

	require.NoError(t, err)
	assert.Equal(t, 1, stats.ExactMatched)
	assert.Equal(t, "X1", merged.Rows[0][3])
}

func TestLink_MissingNameColumnIsError(t *testing.T) {
	bad := &csvio.Table{Columns: []string{"ID"}, Rows: [][]string{{"1"}}}
	_, _, err := Link(context.Background(), bad, secondaryTable("A"), Options{})
	require.Error(t, err)
}

func TestLink_RowOrderIndependentOfConcurrency(t *testing.T) {
	names := []string{"AAA, ONE", "BBB, TWO", "CCC, THREE", "DDD, FOUR", "EEE, FIVE"}
	merged, stats, err := Link(context.Background(),
		primaryTable(names...),
		secondaryTable("ONE AAA", "TWO BBB", "THREE CCC", "FOUR DDD", "FIVE EEE"),
		Options{Concurrency: 8})

	require.NoError(t, err)
	assert.Equal(t, 5, stats.FuzzyMatched)
	for i := range names {
		assert.Equal(t, names[i], merged.Rows[i][1])
		assert.Equal(t, "X"+string(rune('1'+i)), merged.Rows[i][3])
	}
}
