// Package tally maintains running vote counts and derives results for every
// supported method, including the instant-runoff computation for
// ranked-choice votes. All state lives in memory; persistence is the
// repository's concern.
package tally

import (
	"sort"

	"daotools/contexts/governance/vote-engine/domain/entities"
)

// Tally is the mutable counting state for one vote. It tracks exactly one
// ballot per voter: applying a replacement removes the superseded ballot's
// contribution before adding the new one.
type Tally struct {
	method  entities.VoteMethod
	counts  map[string]int
	byVoter map[string]entities.Ballot
}

func New(vote entities.Vote) *Tally {
	counts := make(map[string]int, len(vote.Options)+1)
	for _, option := range vote.Options {
		counts[option.OptionID] = 0
	}
	counts[entities.AbstainChoice] = 0
	return &Tally{
		method:  vote.Method,
		counts:  counts,
		byVoter: make(map[string]entities.Ballot),
	}
}

// Apply replaces old with latest in the running counts. Pass old as nil for a
// first-time submission. The caller is responsible for serializing Apply
// calls for the same vote.
func (t *Tally) Apply(old *entities.Ballot, latest entities.Ballot) {
	if old != nil {
		if !t.method.Ranked() {
			t.counts[old.Choice]--
		}
		delete(t.byVoter, old.VoterID)
	}
	if !t.method.Ranked() {
		t.counts[latest.Choice]++
	}
	t.byVoter[latest.VoterID] = latest
}

// Total is the number of distinct voters with a currently-recorded ballot.
func (t *Tally) Total() int {
	return len(t.byVoter)
}

// Compute folds the ballot set through Apply, so a recomputed tally and an
// incrementally-maintained one always agree. A later ballot from the same
// voter supersedes the earlier one.
func Compute(vote entities.Vote, ballots []entities.Ballot) *Tally {
	t := New(vote)
	for _, ballot := range ballots {
		if existing, ok := t.byVoter[ballot.VoterID]; ok {
			t.Apply(&existing, ballot)
			continue
		}
		t.Apply(nil, ballot)
	}
	return t
}

// Result derives the disclosed tally: per-option counts and percentages,
// quorum progress, the current leader, and for ranked-choice the full
// elimination history. Percentages divide by the total ballot count including
// abstentions and are defined as 0 when no ballots exist.
func (t *Tally) Result(vote entities.Vote) entities.TallyResult {
	result := entities.TallyResult{
		VoteID:         vote.VoteID,
		Method:         vote.Method,
		TotalBallots:   t.Total(),
		QuorumRequired: vote.QuorumRequired,
	}
	result.QuorumReached = vote.QuorumRequired > 0 && result.TotalBallots >= vote.QuorumRequired

	if vote.Method.Ranked() {
		firstPreferences := t.firstPreferenceCounts(optionIDs(vote))
		result.Options = optionCounts(vote, firstPreferences, result.TotalBallots)
		result.Winner, result.Rounds = t.runoff(vote)
		result.Leader = result.Winner
		if result.Leader == "" {
			result.Leader = leaderOf(vote, firstPreferences)
		}
		return result
	}

	result.AbstainCount = t.counts[entities.AbstainChoice]
	result.Options = optionCounts(vote, t.counts, result.TotalBallots)
	result.Leader = leaderOf(vote, t.counts)
	return result
}

// runoff runs instant-runoff elimination rounds until an option holds a
// strict majority of non-exhausted ballots or only one option remains.
// Elimination ties break on fewest cumulative first-preference votes across
// completed rounds, then on the lexicographically greatest option id.
func (t *Tally) runoff(vote entities.Vote) (string, []entities.RunoffRound) {
	remaining := make(map[string]bool, len(vote.Options))
	for _, option := range vote.Options {
		remaining[option.OptionID] = true
	}

	cumulativeFirst := make(map[string]int, len(vote.Options))
	var rounds []entities.RunoffRound

	for roundNumber := 1; len(remaining) > 0; roundNumber++ {
		counts := make(map[string]int, len(remaining))
		for optionID := range remaining {
			counts[optionID] = 0
		}
		exhausted := 0
		for _, ballot := range t.byVoter {
			preferred, ok := highestRemaining(ballot.Ranking, remaining)
			if !ok {
				exhausted++
				continue
			}
			counts[preferred]++
		}
		for optionID, count := range counts {
			cumulativeFirst[optionID] += count
		}

		round := entities.RunoffRound{
			Round:     roundNumber,
			Counts:    counts,
			Exhausted: exhausted,
		}

		active := len(t.byVoter) - exhausted
		if winner := majorityWinner(counts, active); winner != "" {
			round.Winner = winner
			rounds = append(rounds, round)
			return winner, rounds
		}
		if len(remaining) == 1 || active == 0 {
			// No strict majority is reachable; the last standing option wins
			// only if any ballots still support it.
			if len(remaining) == 1 && active > 0 {
				round.Winner = soleOption(remaining)
			}
			rounds = append(rounds, round)
			return round.Winner, rounds
		}

		eliminated := pickElimination(counts, cumulativeFirst)
		round.Eliminated = eliminated
		rounds = append(rounds, round)
		delete(remaining, eliminated)
	}
	return "", rounds
}

func (t *Tally) firstPreferenceCounts(options []string) map[string]int {
	remaining := make(map[string]bool, len(options))
	for _, optionID := range options {
		remaining[optionID] = true
	}
	counts := make(map[string]int, len(options))
	for _, optionID := range options {
		counts[optionID] = 0
	}
	for _, ballot := range t.byVoter {
		if preferred, ok := highestRemaining(ballot.Ranking, remaining); ok {
			counts[preferred]++
		}
	}
	return counts
}

func highestRemaining(ranking []string, remaining map[string]bool) (string, bool) {
	for _, optionID := range ranking {
		if remaining[optionID] {
			return optionID, true
		}
	}
	return "", false
}

func majorityWinner(counts map[string]int, active int) string {
	for optionID, count := range counts {
		if count*2 > active {
			return optionID
		}
	}
	return ""
}

// pickElimination chooses the option to drop this round. Deterministic by
// construction: fewest current votes, then fewest cumulative first
// preferences, then greatest option id.
func pickElimination(counts map[string]int, cumulativeFirst map[string]int) string {
	candidates := make([]string, 0, len(counts))
	for optionID := range counts {
		candidates = append(candidates, optionID)
	}
	sort.Strings(candidates)

	eliminated := ""
	for _, optionID := range candidates {
		if eliminated == "" {
			eliminated = optionID
			continue
		}
		switch {
		case counts[optionID] < counts[eliminated]:
			eliminated = optionID
		case counts[optionID] > counts[eliminated]:
		case cumulativeFirst[optionID] < cumulativeFirst[eliminated]:
			eliminated = optionID
		case cumulativeFirst[optionID] > cumulativeFirst[eliminated]:
		case optionID > eliminated:
			eliminated = optionID
		}
	}
	return eliminated
}

func soleOption(remaining map[string]bool) string {
	for optionID := range remaining {
		return optionID
	}
	return ""
}

func optionIDs(vote entities.Vote) []string {
	ids := make([]string, 0, len(vote.Options))
	for _, option := range vote.Options {
		ids = append(ids, option.OptionID)
	}
	return ids
}

func optionCounts(vote entities.Vote, counts map[string]int, total int) []entities.OptionCount {
	items := make([]entities.OptionCount, 0, len(vote.Options))
	for _, option := range vote.Options {
		count := counts[option.OptionID]
		items = append(items, entities.OptionCount{
			OptionID: option.OptionID,
			Label:    option.Label,
			Count:    count,
			Percent:  percentOf(count, total),
		})
	}
	return items
}

func percentOf(count int, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

// leaderOf picks the non-abstain option with the highest count; ties resolve
// to the earlier option in the vote's declared order.
func leaderOf(vote entities.Vote, counts map[string]int) string {
	leader := ""
	best := -1
	for _, option := range vote.Options {
		if counts[option.OptionID] > best {
			leader = option.OptionID
			best = counts[option.OptionID]
		}
	}
	return leader
}
