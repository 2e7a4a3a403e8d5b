package entities

import (
	"fmt"
	"sort"
	"strings"
)

// Caucus clustering bases.
const (
	CaucusBasisFullRanking = "full_ranking"
	CaucusBasisTopChoice   = "top_choice"
)

// FirstPlaceCount pairs an option with its first-choice ballot count.
type FirstPlaceCount struct {
	OptionID int64 `json:"option_id"`
	Count    int   `json:"count"`
}

// MajorityResult is the simple-majority lens: most first-place rankings
// wins. Ties fall to the lowest option id.
type MajorityResult struct {
	WinnerOptionID int64             `json:"winner_option_id"`
	FirstPlace     []FirstPlaceCount `json:"first_place"`
	WinningShare   float64           `json:"winning_share"`
	TotalBallots   int               `json:"total_ballots"`
}

// Caucus is a descriptive voter grouping, informational only.
type Caucus struct {
	Label   string   `json:"label"`
	Basis   string   `json:"basis"`
	Members []string `json:"members"`
	Size    int      `json:"size"`
}

// RunoffRound records one elimination pass. EliminatedOptionID is zero on
// the final round, where a winner emerged instead.
type RunoffRound struct {
	Number             int               `json:"number"`
	Counts             []FirstPlaceCount `json:"counts"`
	EliminatedOptionID int64             `json:"eliminated_option_id,omitempty"`
}

// RunoffResult is the instant-runoff lens with its full elimination trace.
type RunoffResult struct {
	Rounds         []RunoffRound `json:"rounds"`
	WinnerOptionID int64         `json:"winner_option_id"`
}

// PollResults freezes the three independent result lenses computed from
// round-2 ballots. Once stored they are immutable.
type PollResults struct {
	Majority MajorityResult `json:"majority"`
	Caucuses []Caucus       `json:"caucuses"`
	Runoff   RunoffResult   `json:"runoff"`
}

// ComputeBordaScores sums positional points across ballots: a rank-r entry
// on a ballot over K options contributes K-r points. Every id in optionIDs
// appears in the result, at zero when never ranked.
func ComputeBordaScores(ballots []PollBallot, optionIDs []int64) map[int64]int {
	k := len(optionIDs)
	scores := make(map[int64]int, k)
	for _, id := range optionIDs {
		scores[id] = 0
	}
	for _, ballot := range ballots {
		for _, ranked := range ballot.Ranking {
			if _, known := scores[ranked.OptionID]; !known {
				continue
			}
			scores[ranked.OptionID] += k - ranked.Rank
		}
	}
	return scores
}

// SelectTopOptions orders options by Borda score descending, breaking ties
// by lowest option id, and returns at most limit ids in that order.
func SelectTopOptions(scores map[int64]int, limit int) []int64 {
	ids := make([]int64, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if scores[ids[i]] != scores[ids[j]] {
			return scores[ids[i]] > scores[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

// ComputePollResults derives all three lenses from the final ballots.
// The round-1 Borda scores feed the runoff's elimination tie-break.
func ComputePollResults(ballots []PollBallot, optionIDs []int64, bordaScores map[int64]int) PollResults {
	return PollResults{
		Majority: ComputeSimpleMajority(ballots, optionIDs),
		Caucuses: BuildCaucuses(ballots),
		Runoff:   RunInstantRunoff(ballots, optionIDs, bordaScores),
	}
}

// ComputeSimpleMajority counts first-place rankings per option.
func ComputeSimpleMajority(ballots []PollBallot, optionIDs []int64) MajorityResult {
	counts := make(map[int64]int, len(optionIDs))
	for _, id := range optionIDs {
		counts[id] = 0
	}
	remaining := make(map[int64]bool, len(optionIDs))
	for _, id := range optionIDs {
		remaining[id] = true
	}
	for _, ballot := range ballots {
		if top, ok := ballot.TopRemaining(remaining); ok {
			counts[top]++
		}
	}

	result := MajorityResult{
		FirstPlace:   sortedCounts(counts),
		TotalBallots: len(ballots),
	}
	winner, winnerCount, found := leadingOption(counts)
	if !found {
		return result
	}
	result.WinnerOptionID = winner
	if len(ballots) > 0 {
		result.WinningShare = float64(winnerCount) / float64(len(ballots)) * 100
	}
	return result
}

// BuildCaucuses clusters voters sharing an identical full ranking. When no
// two voters match exactly, it regroups by top choice instead so the lens
// still says something about preference blocks.
func BuildCaucuses(ballots []PollBallot) []Caucus {
	if len(ballots) == 0 {
		return nil
	}

	byRanking := make(map[string][]string)
	for _, ballot := range ballots {
		key := rankingSignature(ballot)
		byRanking[key] = append(byRanking[key], ballot.ParticipantID)
	}
	exactMatches := false
	for _, members := range byRanking {
		if len(members) > 1 {
			exactMatches = true
			break
		}
	}

	basis := CaucusBasisFullRanking
	groups := byRanking
	if !exactMatches {
		basis = CaucusBasisTopChoice
		groups = make(map[string][]string)
		for _, ballot := range ballots {
			all := make(map[int64]bool, len(ballot.Ranking))
			for _, ranked := range ballot.Ranking {
				all[ranked.OptionID] = true
			}
			top, ok := ballot.TopRemaining(all)
			if !ok {
				continue
			}
			key := fmt.Sprintf("top choice %d", top)
			groups[key] = append(groups[key], ballot.ParticipantID)
		}
	}

	caucuses := make([]Caucus, 0, len(groups))
	for label, members := range groups {
		sort.Strings(members)
		caucuses = append(caucuses, Caucus{
			Label:   label,
			Basis:   basis,
			Members: members,
			Size:    len(members),
		})
	}
	sort.Slice(caucuses, func(i, j int) bool {
		if caucuses[i].Size != caucuses[j].Size {
			return caucuses[i].Size > caucuses[j].Size
		}
		return caucuses[i].Label < caucuses[j].Label
	})
	return caucuses
}

// RunInstantRunoff repeatedly eliminates the option with the fewest current
// first-place votes, redistributing its ballots, until an option holds a
// strict majority of active ballots or only one remains. Elimination ties
// fall to the lowest round-1 Borda score, then the lowest option id. With
// K options the loop runs at most K-1 eliminations.
func RunInstantRunoff(ballots []PollBallot, optionIDs []int64, bordaScores map[int64]int) RunoffResult {
	result := RunoffResult{}
	if len(optionIDs) == 0 {
		return result
	}
	remaining := make(map[int64]bool, len(optionIDs))
	for _, id := range optionIDs {
		remaining[id] = true
	}

	for round := 1; ; round++ {
		counts := make(map[int64]int, len(remaining))
		for id := range remaining {
			counts[id] = 0
		}
		active := 0
		for _, ballot := range ballots {
			top, ok := ballot.TopRemaining(remaining)
			if !ok {
				continue
			}
			counts[top]++
			active++
		}

		leader, leaderCount, _ := leadingOption(counts)
		if leaderCount*2 > active || len(remaining) == 1 {
			result.Rounds = append(result.Rounds, RunoffRound{
				Number: round,
				Counts: sortedCounts(counts),
			})
			result.WinnerOptionID = leader
			return result
		}

		eliminated := trailingOption(counts, bordaScores)
		result.Rounds = append(result.Rounds, RunoffRound{
			Number:             round,
			Counts:             sortedCounts(counts),
			EliminatedOptionID: eliminated,
		})
		delete(remaining, eliminated)
	}
}

func rankingSignature(ballot PollBallot) string {
	ordered := make([]RankedOption, len(ballot.Ranking))
	copy(ordered, ballot.Ranking)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Rank < ordered[j].Rank })
	parts := make([]string, 0, len(ordered))
	for _, ranked := range ordered {
		parts = append(parts, fmt.Sprintf("%d", ranked.OptionID))
	}
	return "ranking " + strings.Join(parts, " > ")
}

func sortedCounts(counts map[int64]int) []FirstPlaceCount {
	out := make([]FirstPlaceCount, 0, len(counts))
	for id, count := range counts {
		out = append(out, FirstPlaceCount{OptionID: id, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OptionID < out[j].OptionID })
	return out
}

// leadingOption returns the option with the most votes, lowest id on ties.
func leadingOption(counts map[int64]int) (int64, int, bool) {
	var leader int64
	leaderCount := -1
	found := false
	for id, count := range counts {
		if count > leaderCount || (count == leaderCount && id < leader) {
			leader = id
			leaderCount = count
			found = true
		}
	}
	if !found {
		return 0, 0, false
	}
	return leader, leaderCount, true
}

// trailingOption returns the elimination candidate: fewest votes, ties by
// lowest Borda score, then lowest id.
func trailingOption(counts map[int64]int, bordaScores map[int64]int) int64 {
	var trailing int64
	trailingCount := -1
	first := true
	for id, count := range counts {
		if first {
			trailing = id
			trailingCount = count
			first = false
			continue
		}
		switch {
		case count < trailingCount:
			trailing = id
			trailingCount = count
		case count == trailingCount:
			if bordaScores[id] < bordaScores[trailing] ||
				(bordaScores[id] == bordaScores[trailing] && id < trailing) {
				trailing = id
			}
		}
	}
	return trailing
}
