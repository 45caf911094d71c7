// Package matching computes bidirectional skill compatibility between users.
// It is pure: callers feed it ledger snapshots and it never touches storage.
package matching

import (
	"fmt"
	"sort"

	"skillswap/models"
)

// Match describes the compatibility between the requesting user and one
// counterpart. Score is the total number of matched skills across both
// directions; the representative skills are display sugar, not score inputs.
type Match struct {
	User              models.User   `json:"user"`
	Score             int           `json:"score"`
	YouTeachThem      int           `json:"you_teach_them"`
	TheyTeachYou      int           `json:"they_teach_you"`
	SkillYouCanTeach  *models.Skill `json:"skill_you_can_teach,omitempty"`
	SkillTheyCanTeach *models.Skill `json:"skill_they_can_teach,omitempty"`
	Description       string        `json:"description"`
}

// Categorized buckets matches into mutually exclusive tiers.
type Categorized struct {
	Perfect   []Match `json:"perfect"`
	Good      []Match `json:"good"`
	Potential []Match `json:"potential"`
}

// Ledgers is one user's skill ledger snapshot, in the store's enumeration
// order (skill id ascending).
type Ledgers struct {
	Teach []models.Skill
	Learn []models.Skill
}

// Compute evaluates the requesting user's ledgers against every candidate and
// returns the non-zero-score matches sorted by descending score. The sort is
// stable: ties keep discovery order.
func Compute(own Ledgers, candidates []models.User, ledgersByUser map[uint]Ledgers) []Match {
	var matches []Match
	for _, candidate := range candidates {
		theirs := ledgersByUser[candidate.ID]

		youTeachThem, skillYouCanTeach := intersect(own.Teach, theirs.Learn)
		theyTeachYou, skillTheyCanTeach := intersect(theirs.Teach, own.Learn)

		score := youTeachThem + theyTeachYou
		if score == 0 {
			continue
		}

		matches = append(matches, Match{
			User:              candidate,
			Score:             score,
			YouTeachThem:      youTeachThem,
			TheyTeachYou:      theyTeachYou,
			SkillYouCanTeach:  skillYouCanTeach,
			SkillTheyCanTeach: skillTheyCanTeach,
			Description:       describe(skillYouCanTeach, skillTheyCanTeach, youTeachThem, theyTeachYou),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// Categorize partitions matches into tiers. Every match lands in exactly one:
// perfect when both directions are matched, good when one-directional with
// score >= 2, potential otherwise. Input order (descending score) is kept.
func Categorize(matches []Match) Categorized {
	categorized := Categorized{
		Perfect:   []Match{},
		Good:      []Match{},
		Potential: []Match{},
	}
	for _, m := range matches {
		switch {
		case m.YouTeachThem > 0 && m.TheyTeachYou > 0:
			categorized.Perfect = append(categorized.Perfect, m)
		case m.Score >= 2:
			categorized.Good = append(categorized.Good, m)
		default:
			categorized.Potential = append(categorized.Potential, m)
		}
	}
	return categorized
}

// intersect counts skills of a present in b by identity and returns the first
// common skill in a's order.
func intersect(a, b []models.Skill) (int, *models.Skill) {
	ids := make(map[uint]bool, len(b))
	for _, s := range b {
		ids[s.ID] = true
	}

	count := 0
	var first *models.Skill
	for i := range a {
		if ids[a[i].ID] {
			if first == nil {
				first = &a[i]
			}
			count++
		}
	}
	return count, first
}

func describe(skillYouCanTeach, skillTheyCanTeach *models.Skill, youTeachThem, theyTeachYou int) string {
	var description string
	switch {
	case skillYouCanTeach != nil && skillTheyCanTeach != nil:
		description = fmt.Sprintf("Perfect match! You can teach %s and learn %s from each other.",
			skillYouCanTeach.Name, skillTheyCanTeach.Name)
	case skillYouCanTeach != nil:
		description = fmt.Sprintf("You can teach %s to this user.", skillYouCanTeach.Name)
	case skillTheyCanTeach != nil:
		description = fmt.Sprintf("You can learn %s from this user.", skillTheyCanTeach.Name)
	}

	additional := max(youTeachThem-1, 0) + max(theyTeachYou-1, 0)
	if additional > 0 {
		description += fmt.Sprintf(" Plus %d additional skill matches!", additional)
	}
	return description
}
