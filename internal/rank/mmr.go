package rank

// Diversify applies Maximal Marginal Relevance re-ranking to a pool
// already sorted by relevance. At each step it greedily picks the
// candidate maximizing
//
//	lambda*relevance - (1-lambda)*maxSimilarityToPicked
//
// where similarity is token-set Jaccard over titles. lambda=1 returns
// the input order unchanged.
func Diversify(pool []*Candidate, lambda float64) []*Candidate {
	if lambda >= 1.0 || len(pool) <= 1 {
		return pool
	}

	tokens := make([][]string, len(pool))
	for i, c := range pool {
		tokens[i] = Tokenize(c.Paper.Title)
	}

	picked := make([]*Candidate, 0, len(pool))
	pickedTokens := make([][]string, 0, len(pool))
	remaining := make([]int, len(pool))
	for i := range pool {
		remaining[i] = i
	}

	for len(remaining) > 0 {
		bestPos := 0
		bestScore := mmrScore(pool, tokens, pickedTokens, remaining[0], lambda)
		for pos := 1; pos < len(remaining); pos++ {
			if s := mmrScore(pool, tokens, pickedTokens, remaining[pos], lambda); s > bestScore {
				bestScore = s
				bestPos = pos
			}
		}

		idx := remaining[bestPos]
		picked = append(picked, pool[idx])
		pickedTokens = append(pickedTokens, tokens[idx])
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}

	return picked
}

func mmrScore(pool []*Candidate, tokens, pickedTokens [][]string, idx int, lambda float64) float64 {
	maxSim := 0.0
	for _, pt := range pickedTokens {
		if sim := jaccard(tokens[idx], pt); sim > maxSim {
			maxSim = sim
		}
	}
	return lambda*pool[idx].FinalScore - (1-lambda)*maxSim
}
