package matching

import (
	"testing"

	"skillswap/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	guitar  = models.Skill{ID: 1, Name: "Guitar"}
	spanish = models.Skill{ID: 2, Name: "Spanish"}
	chess   = models.Skill{ID: 3, Name: "Chess"}
	yoga    = models.Skill{ID: 4, Name: "Yoga"}
	cooking = models.Skill{ID: 5, Name: "Cooking"}
)

func user(id uint) models.User {
	return models.User{ID: id}
}

func TestComputeExcludesUsersWithoutOverlap(t *testing.T) {
	own := Ledgers{
		Teach: []models.Skill{guitar},
		Learn: []models.Skill{spanish},
	}
	ledgers := map[uint]Ledgers{
		2: {Teach: []models.Skill{chess}, Learn: []models.Skill{yoga}},
	}

	matches := Compute(own, []models.User{user(2)}, ledgers)
	assert.Empty(t, matches)
}

func TestComputeScoresAndSortsDescending(t *testing.T) {
	own := Ledgers{
		Teach: []models.Skill{guitar, chess},
		Learn: []models.Skill{spanish, yoga},
	}
	ledgers := map[uint]Ledgers{
		// one-way: they learn guitar
		2: {Learn: []models.Skill{guitar}},
		// two-way, score 4: they learn both teach skills, teach both learn skills
		3: {Teach: []models.Skill{spanish, yoga}, Learn: []models.Skill{guitar, chess}},
		// two-way, score 2
		4: {Teach: []models.Skill{spanish}, Learn: []models.Skill{guitar}},
	}

	matches := Compute(own, []models.User{user(2), user(3), user(4)}, ledgers)
	require.Len(t, matches, 3)

	assert.Equal(t, uint(3), matches[0].User.ID)
	assert.Equal(t, 4, matches[0].Score)
	assert.Equal(t, 2, matches[0].YouTeachThem)
	assert.Equal(t, 2, matches[0].TheyTeachYou)

	assert.Equal(t, uint(4), matches[1].User.ID)
	assert.Equal(t, 2, matches[1].Score)

	assert.Equal(t, uint(2), matches[2].User.ID)
	assert.Equal(t, 1, matches[2].Score)
	assert.Equal(t, 1, matches[2].YouTeachThem)
	assert.Equal(t, 0, matches[2].TheyTeachYou)
}

func TestComputeScoreIsSumOfBothDirections(t *testing.T) {
	own := Ledgers{
		Teach: []models.Skill{guitar, chess, cooking},
		Learn: []models.Skill{spanish},
	}
	ledgers := map[uint]Ledgers{
		2: {Teach: []models.Skill{spanish}, Learn: []models.Skill{guitar, cooking}},
	}

	matches := Compute(own, []models.User{user(2)}, ledgers)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, 2, m.YouTeachThem)
	assert.Equal(t, 1, m.TheyTeachYou)
	assert.Equal(t, m.YouTeachThem+m.TheyTeachYou, m.Score)
}

func TestComputeDescriptions(t *testing.T) {
	own := Ledgers{
		Teach: []models.Skill{guitar, chess},
		Learn: []models.Skill{spanish, yoga},
	}

	t.Run("perfect match with extras", func(t *testing.T) {
		ledgers := map[uint]Ledgers{
			2: {Teach: []models.Skill{spanish, yoga}, Learn: []models.Skill{guitar, chess}},
		}
		matches := Compute(own, []models.User{user(2)}, ledgers)
		require.Len(t, matches, 1)
		assert.Equal(t,
			"Perfect match! You can teach Guitar and learn Spanish from each other. Plus 2 additional skill matches!",
			matches[0].Description)
	})

	t.Run("one-way teach", func(t *testing.T) {
		ledgers := map[uint]Ledgers{
			2: {Learn: []models.Skill{guitar}},
		}
		matches := Compute(own, []models.User{user(2)}, ledgers)
		require.Len(t, matches, 1)
		assert.Equal(t, "You can teach Guitar to this user.", matches[0].Description)
	})

	t.Run("one-way learn", func(t *testing.T) {
		ledgers := map[uint]Ledgers{
			2: {Teach: []models.Skill{yoga}},
		}
		matches := Compute(own, []models.User{user(2)}, ledgers)
		require.Len(t, matches, 1)
		assert.Equal(t, "You can learn Yoga from this user.", matches[0].Description)
	})
}

func TestCategorizeTiersAreExclusive(t *testing.T) {
	matches := []Match{
		{User: user(2), Score: 2, YouTeachThem: 1, TheyTeachYou: 1},
		{User: user(3), Score: 2, YouTeachThem: 2, TheyTeachYou: 0},
		{User: user(4), Score: 1, YouTeachThem: 0, TheyTeachYou: 1},
	}

	categorized := Categorize(matches)

	require.Len(t, categorized.Perfect, 1)
	require.Len(t, categorized.Good, 1)
	require.Len(t, categorized.Potential, 1)

	assert.Equal(t, uint(2), categorized.Perfect[0].User.ID)
	assert.Equal(t, uint(3), categorized.Good[0].User.ID)
	assert.Equal(t, uint(4), categorized.Potential[0].User.ID)

	total := len(categorized.Perfect) + len(categorized.Good) + len(categorized.Potential)
	assert.Equal(t, len(matches), total)
}

func TestCategorizeEmptyInput(t *testing.T) {
	categorized := Categorize(nil)

	assert.NotNil(t, categorized.Perfect)
	assert.NotNil(t, categorized.Good)
	assert.NotNil(t, categorized.Potential)
	assert.Empty(t, categorized.Perfect)
}
