package discovery

import (
	"context"
	"fmt"
	"log/slog"

	"kinship/internal/family/assembler"
	"kinship/internal/family/models"
	id "kinship/pkg/domain"
)

// Every pattern is a two-hop walk.
const twoHops = 1

// pattern walks anchor --via--> intermediate --hop--> candidate and infers
// the anchor's relationship to the candidate.
type pattern struct {
	name  string
	via   models.RelationshipKind
	hop   models.RelationshipKind
	infer func(candidate *models.Person) models.RelationshipType
}

func defaultPatterns() []pattern {
	return []pattern{
		{
			name: "spouse_children",
			via:  models.KindSpouse,
			hop:  models.KindChild,
			infer: func(c *models.Person) models.RelationshipType {
				return models.KindChild.ForGender(c.Gender)
			},
		},
		{
			name: "parent_spouse",
			via:  models.KindParent,
			hop:  models.KindSpouse,
			infer: func(c *models.Person) models.RelationshipType {
				return models.KindParent.ForGender(c.Gender)
			},
		},
		{
			name: "child_parent",
			via:  models.KindChild,
			hop:  models.KindParent,
			infer: func(*models.Person) models.RelationshipType {
				return models.RelationshipSpouse
			},
		},
	}
}

type hopRef struct {
	candidate    id.PersonID
	intermediate *models.Person
}

func (p pattern) run(ctx context.Context, graph Graph, logger *slog.Logger, edges []models.Edge, exclude models.PersonIDSet) ([]models.DiscoveryResult, error) {
	var intermediateIDs []id.PersonID
	seen := models.NewPersonIDSet()
	for _, e := range edges {
		if e.Type.Is(p.via) && !seen.Has(e.OtherPersonID) {
			seen.Add(e.OtherPersonID)
			intermediateIDs = append(intermediateIDs, e.OtherPersonID)
		}
	}
	if len(intermediateIDs) == 0 {
		return nil, nil
	}

	intermediates, err := graph.PersonsByIDs(ctx, intermediateIDs)
	if err != nil {
		return nil, fmt.Errorf("loading %s relatives: %w", p.via, err)
	}
	if len(intermediates) < len(intermediateIDs) {
		logger.WarnContext(ctx, "relative record missing, skipping",
			"pattern", p.name,
			"requested", len(intermediateIDs),
			"found", len(intermediates),
		)
	}

	var refs []hopRef
	var candidateIDs []id.PersonID
	queued := models.NewPersonIDSet()
	for _, inter := range intermediates {
		hops, err := graph.ActiveRelationshipsOf(ctx, inter.ID)
		if err != nil {
			return nil, fmt.Errorf("loading relationships of %s: %w", inter.ID, err)
		}
		for _, h := range hops {
			if !h.Type.Is(p.hop) || exclude.Has(h.OtherPersonID) {
				continue
			}
			refs = append(refs, hopRef{candidate: h.OtherPersonID, intermediate: inter})
			if !queued.Has(h.OtherPersonID) {
				queued.Add(h.OtherPersonID)
				candidateIDs = append(candidateIDs, h.OtherPersonID)
			}
		}
	}
	if len(candidateIDs) == 0 {
		return nil, nil
	}

	candidates, err := graph.PersonsByIDs(ctx, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}
	byID := make(map[id.PersonID]*models.Person, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	results := make([]models.DiscoveryResult, 0, len(refs))
	for _, ref := range refs {
		cand, ok := byID[ref.candidate]
		if !ok {
			logger.WarnContext(ctx, "candidate record missing, skipping",
				"pattern", p.name,
				"person_id", ref.candidate,
			)
			continue
		}
		results = append(results, assembler.DiscoveryResult(cand, p.infer(cand), ref.intermediate, p.via, twoHops))
	}
	return results, nil
}
