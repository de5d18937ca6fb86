package capture

import "strings"

// Minimum window geometry for the secondary source's owner-only fallback
// pass. Windows with legitimately empty titles are matched by owner alone,
// but only when they are plausibly a main window rather than a tool
// palette or tooltip.
const (
	minFallbackWidth  = 100
	minFallbackHeight = 100
)

// matchPrimary applies the primary-source heuristic chain: most specific
// first, first match wins. Matching never accumulates scores, so the
// outcome is deterministic and explainable from the pass order alone.
func matchPrimary(cands []Candidate, title, appHint string) *Candidate {
	// Pass 1: owning-application-name containment (case-sensitive),
	// highest priority when a hint is supplied.
	if appHint != "" {
		for i := range cands {
			if cands[i].Minimized {
				continue
			}
			if strings.Contains(cands[i].App, appHint) {
				return &cands[i]
			}
		}
	}

	// Pass 2: exact title match.
	for i := range cands {
		if cands[i].Minimized {
			continue
		}
		if cands[i].Title == title {
			return &cands[i]
		}
	}

	// Pass 3: case-insensitive exact title match.
	for i := range cands {
		if cands[i].Minimized {
			continue
		}
		if strings.EqualFold(cands[i].Title, title) {
			return &cands[i]
		}
	}

	// Pass 4: case-insensitive substring title match.
	titleLower := strings.ToLower(title)
	for i := range cands {
		if cands[i].Minimized {
			continue
		}
		if strings.Contains(strings.ToLower(cands[i].Title), titleLower) {
			return &cands[i]
		}
	}

	return nil
}

// matchSecondary applies the secondary-source chain, used when the primary
// source yields no match. Only normal-layer windows are eligible; overlay
// and decoration layers are excluded before any pass runs.
func matchSecondary(cands []Candidate, title, appHint string) *Candidate {
	eligible := cands[:0:0]
	for _, c := range cands {
		if c.Layer == LayerNormal {
			eligible = append(eligible, c)
		}
	}

	titleLower := strings.ToLower(title)
	ownerContains := func(c Candidate) bool {
		return strings.Contains(strings.ToLower(c.App), strings.ToLower(appHint))
	}
	titleContains := func(c Candidate) bool {
		return strings.Contains(strings.ToLower(c.Title), titleLower)
	}

	if appHint != "" {
		// Pass 1: owner exact + title exact.
		for i := range eligible {
			if eligible[i].App == appHint && eligible[i].Title == title {
				return &eligible[i]
			}
		}
		// Pass 2: owner contains + title exact.
		for i := range eligible {
			if ownerContains(eligible[i]) && eligible[i].Title == title {
				return &eligible[i]
			}
		}
		// Pass 3: owner contains + title contains.
		for i := range eligible {
			if ownerContains(eligible[i]) && titleContains(eligible[i]) {
				return &eligible[i]
			}
		}
	}

	// Pass 4: title contains alone, non-empty titles only.
	for i := range eligible {
		if eligible[i].Title != "" && titleContains(eligible[i]) {
			return &eligible[i]
		}
	}

	// Pass 5: owner exact alone with a minimum-size filter, to catch
	// windows whose title is legitimately empty. Known limitation: two
	// same-owner windows past the size threshold are not disambiguated
	// further.
	if appHint != "" {
		for i := range eligible {
			b := eligible[i].Bounds
			if eligible[i].App == appHint &&
				b.Dx() >= minFallbackWidth && b.Dy() >= minFallbackHeight {
				return &eligible[i]
			}
		}
	}

	return nil
}
