package normalizer

import (
	"strings"

	"prdflow/pkg/models"
)

// Layout constants. The main lane runs left to right in declaration order;
// decision branches fan out above and below it at the decision's own x.
const (
	layoutStartX    = 200.0
	layoutStepX     = 300.0
	layoutMainY     = 100.0
	layoutBranchY   = 300.0 // first alternate branch ("No" lane)
	layoutBranchYup = 50.0  // second alternate branch ("Yes" lane)
	layoutStackStep = 200.0 // further alternates stack below the first
)

// branchClaim marks a node as the k-th alternate target of a decision node.
type branchClaim struct {
	decision int
	lane     int
}

// assignLayout gives deterministic coordinates to every candidate that
// arrived without usable ones. Positions nodes already carry are kept.
// Identical input order and types always yield identical coordinates.
func assignLayout(cands []candidate) {
	index := make(map[string]int, len(cands))
	for i, c := range cands {
		index[strings.ToLower(c.node.ID)] = i
	}

	// A decision's first connection continues the main lane; each later
	// connection claims its target for a branch lane. First claim wins.
	claims := make(map[int]branchClaim)
	for i, c := range cands {
		if c.node.Type != models.NodeTypeDecision {
			continue
		}
		for k, target := range c.node.Connections {
			if k == 0 {
				continue
			}
			j := index[strings.ToLower(target)]
			if cands[j].hasPosition {
				continue
			}
			if _, taken := claims[j]; !taken {
				claims[j] = branchClaim{decision: i, lane: k - 1}
			}
		}
	}

	// Resolved connections only point forward, so a claimed node's decision
	// is always positioned before the claim is consumed.
	mainRank := 0
	for i := range cands {
		if cands[i].hasPosition {
			continue
		}
		if claim, ok := claims[i]; ok {
			d := cands[claim.decision]
			cands[i].node.X = d.node.X
			cands[i].node.Y = branchLaneY(claim.lane)
			continue
		}
		cands[i].node.X = layoutStartX + float64(mainRank)*layoutStepX
		cands[i].node.Y = layoutMainY
		mainRank++
	}
}

func branchLaneY(lane int) float64 {
	switch lane {
	case 0:
		return layoutBranchY
	case 1:
		return layoutBranchYup
	default:
		return layoutBranchY + float64(lane-1)*layoutStackStep
	}
}
