package entities

import "testing"

func ballot(participantID string, orderedOptionIDs ...int64) PollBallot {
	ranking := make([]RankedOption, 0, len(orderedOptionIDs))
	for i, id := range orderedOptionIDs {
		ranking = append(ranking, RankedOption{OptionID: id, Rank: i + 1})
	}
	return PollBallot{PollID: "poll-1", ParticipantID: participantID, Ranking: ranking}
}

func TestComputeBordaScoresAwardsKMinusRankPoints(t *testing.T) {
	optionIDs := []int64{1, 2, 3}
	ballots := []PollBallot{
		ballot("p1", 2, 1, 3),
		ballot("p2", 2, 1, 3),
		ballot("p3", 1, 3, 2),
		ballot("p4", 3, 1, 2),
	}

	scores := ComputeBordaScores(ballots, optionIDs)
	if scores[1] != 5 || scores[2] != 4 || scores[3] != 3 {
		t.Fatalf("unexpected scores: %v", scores)
	}

	// Each full ballot over K options contributes K(K-1)/2 points.
	total := 0
	for _, score := range scores {
		total += score
	}
	if total != len(ballots)*3 {
		t.Fatalf("points not conserved: got %d, want %d", total, len(ballots)*3)
	}
}

func TestComputeBordaScoresIgnoresUnknownOptionsAndZerosUnranked(t *testing.T) {
	scores := ComputeBordaScores([]PollBallot{ballot("p1", 1, 99)}, []int64{1, 2})
	if scores[1] != 1 {
		t.Fatalf("rank-1 entry over two options is worth one point, got %d", scores[1])
	}
	if score, ok := scores[2]; !ok || score != 0 {
		t.Fatalf("unranked known option should score zero, got %d/%v", score, ok)
	}
	if _, ok := scores[99]; ok {
		t.Fatal("options outside the poll must not leak into the scores")
	}
}

func TestSelectTopOptionsBreaksTiesByLowestID(t *testing.T) {
	scores := map[int64]int{1: 5, 2: 9, 3: 5, 4: 2, 5: 9, 6: 1}
	top := SelectTopOptions(scores, 5)
	want := []int64{2, 5, 1, 3, 4}
	if len(top) != len(want) {
		t.Fatalf("expected %d survivors, got %v", len(want), top)
	}
	for i, id := range want {
		if top[i] != id {
			t.Fatalf("position %d: got %d, want %d (full order %v)", i, top[i], id, top)
		}
	}
}

func TestSelectTopOptionsKeepsAllWhenUnderLimit(t *testing.T) {
	top := SelectTopOptions(map[int64]int{7: 1, 8: 2}, 5)
	if len(top) != 2 || top[0] != 8 || top[1] != 7 {
		t.Fatalf("expected both options ordered by score, got %v", top)
	}
}

func TestComputeSimpleMajorityCountsFirstPlace(t *testing.T) {
	optionIDs := []int64{1, 2, 3}
	ballots := []PollBallot{
		ballot("p1", 1, 2, 3),
		ballot("p2", 1, 3, 2),
		ballot("p3", 1, 2, 3),
		ballot("p4", 2, 1, 3),
		ballot("p5", 3, 2, 1),
	}

	result := ComputeSimpleMajority(ballots, optionIDs)
	if result.WinnerOptionID != 1 {
		t.Fatalf("expected option 1 to win, got %d", result.WinnerOptionID)
	}
	if result.WinningShare != 60 {
		t.Fatalf("expected 60%% share, got %v", result.WinningShare)
	}
	if result.TotalBallots != 5 {
		t.Fatalf("expected 5 ballots, got %d", result.TotalBallots)
	}
	if len(result.FirstPlace) != 3 || result.FirstPlace[0].Count != 3 || result.FirstPlace[1].Count != 1 || result.FirstPlace[2].Count != 1 {
		t.Fatalf("unexpected first-place counts: %v", result.FirstPlace)
	}
}

func TestComputeSimpleMajorityTieFallsToLowestID(t *testing.T) {
	ballots := []PollBallot{
		ballot("p1", 2, 1),
		ballot("p2", 2, 1),
		ballot("p3", 1, 2),
		ballot("p4", 1, 2),
	}
	result := ComputeSimpleMajority(ballots, []int64{1, 2})
	if result.WinnerOptionID != 1 {
		t.Fatalf("tied counts should fall to the lowest option id, got %d", result.WinnerOptionID)
	}
	if result.WinningShare != 50 {
		t.Fatalf("expected 50%% share, got %v", result.WinningShare)
	}
}

func TestBuildCaucusesGroupsIdenticalRankings(t *testing.T) {
	caucuses := BuildCaucuses([]PollBallot{
		ballot("p2", 1, 2, 3),
		ballot("p1", 1, 2, 3),
		ballot("p3", 3, 2, 1),
	})

	if len(caucuses) != 2 {
		t.Fatalf("expected two caucuses, got %v", caucuses)
	}
	lead := caucuses[0]
	if lead.Basis != CaucusBasisFullRanking {
		t.Fatalf("expected full-ranking basis, got %q", lead.Basis)
	}
	if lead.Size != 2 || lead.Members[0] != "p1" || lead.Members[1] != "p2" {
		t.Fatalf("largest caucus should hold p1 and p2 sorted, got %+v", lead)
	}
	if lead.Label != "ranking 1 > 2 > 3" {
		t.Fatalf("unexpected label %q", lead.Label)
	}
}

func TestBuildCaucusesFallsBackToTopChoice(t *testing.T) {
	caucuses := BuildCaucuses([]PollBallot{
		ballot("p1", 1, 2, 3),
		ballot("p2", 1, 3, 2),
		ballot("p3", 2, 1, 3),
	})

	if len(caucuses) != 2 {
		t.Fatalf("expected two top-choice caucuses, got %v", caucuses)
	}
	for _, caucus := range caucuses {
		if caucus.Basis != CaucusBasisTopChoice {
			t.Fatalf("no identical rankings should regroup by top choice, got %q", caucus.Basis)
		}
	}
	if caucuses[0].Label != "top choice 1" || caucuses[0].Size != 2 {
		t.Fatalf("expected the option-1 block first, got %+v", caucuses[0])
	}
}

func TestBuildCaucusesEmptyBallots(t *testing.T) {
	if caucuses := BuildCaucuses(nil); caucuses != nil {
		t.Fatalf("no ballots means no caucuses, got %v", caucuses)
	}
}

func TestRunInstantRunoffImmediateMajority(t *testing.T) {
	optionIDs := []int64{1, 2, 3}
	ballots := []PollBallot{
		ballot("p1", 1, 2, 3),
		ballot("p2", 1, 2, 3),
		ballot("p3", 1, 3, 2),
		ballot("p4", 2, 1, 3),
		ballot("p5", 3, 2, 1),
	}

	result := RunInstantRunoff(ballots, optionIDs, ComputeBordaScores(ballots, optionIDs))
	if result.WinnerOptionID != 1 {
		t.Fatalf("expected option 1, got %d", result.WinnerOptionID)
	}
	if len(result.Rounds) != 1 {
		t.Fatalf("strict first-round majority should end the runoff, got %d rounds", len(result.Rounds))
	}
	if result.Rounds[0].EliminatedOptionID != 0 {
		t.Fatalf("winning round must not eliminate, got %d", result.Rounds[0].EliminatedOptionID)
	}
}

func TestRunInstantRunoffEliminationTraceAndBordaTieBreak(t *testing.T) {
	optionIDs := []int64{1, 2, 3}
	ballots := []PollBallot{
		ballot("p1", 2, 1, 3),
		ballot("p2", 2, 1, 3),
		ballot("p3", 1, 3, 2),
		ballot("p4", 3, 1, 2),
	}
	// Round-1 Borda: option 1 -> 5, option 2 -> 4, option 3 -> 3.
	borda := ComputeBordaScores(ballots, optionIDs)

	result := RunInstantRunoff(ballots, optionIDs, borda)
	if len(result.Rounds) != 3 {
		t.Fatalf("expected three runoff rounds, got %+v", result.Rounds)
	}

	// Options 1 and 3 tie on first-place count; 3 leaves on lower Borda.
	if result.Rounds[0].EliminatedOptionID != 3 {
		t.Fatalf("round 1 should eliminate option 3, got %d", result.Rounds[0].EliminatedOptionID)
	}
	// After redistribution the 1/2 count tie resolves against 2's Borda.
	if result.Rounds[1].EliminatedOptionID != 2 {
		t.Fatalf("round 2 should eliminate option 2, got %d", result.Rounds[1].EliminatedOptionID)
	}
	if result.WinnerOptionID != 1 {
		t.Fatalf("expected option 1 to survive, got %d", result.WinnerOptionID)
	}

	final := result.Rounds[2]
	if final.EliminatedOptionID != 0 {
		t.Fatalf("final round must not eliminate, got %d", final.EliminatedOptionID)
	}
	if len(final.Counts) != 1 || final.Counts[0].OptionID != 1 || final.Counts[0].Count != 4 {
		t.Fatalf("every ballot should transfer to the survivor, got %v", final.Counts)
	}
}

func TestRunInstantRunoffNoOptions(t *testing.T) {
	result := RunInstantRunoff(nil, nil, nil)
	if result.WinnerOptionID != 0 || result.Rounds != nil {
		t.Fatalf("no options should produce an empty result, got %+v", result)
	}
}

func TestComputePollResultsFillsAllThreeLenses(t *testing.T) {
	optionIDs := []int64{1, 2}
	ballots := []PollBallot{
		ballot("p1", 1, 2),
		ballot("p2", 1, 2),
		ballot("p3", 2, 1),
	}

	results := ComputePollResults(ballots, optionIDs, ComputeBordaScores(ballots, optionIDs))
	if results.Majority.WinnerOptionID != 1 {
		t.Fatalf("majority lens: got %d", results.Majority.WinnerOptionID)
	}
	if len(results.Caucuses) == 0 {
		t.Fatal("caucus lens should not be empty")
	}
	if results.Runoff.WinnerOptionID != 1 || len(results.Runoff.Rounds) == 0 {
		t.Fatalf("runoff lens: got %+v", results.Runoff)
	}
}
