package application

import (
	"context"

	facdomain "github.com/wms-platform/fulfillment/internal/facility/domain"
	"github.com/wms-platform/fulfillment/pkg/errors"
)

// Placement scores
const (
	scorePickingZone       = 100
	scoreForwardPick       = 50
	scoreCapacityFits      = 20
	scoreShippingAdjacency = 10
)

// selectPutAwayLocation scores every candidate storage or picking slot and
// returns the highest-scoring one, ties broken by list order
func (s *ReceivingService) selectPutAwayLocation(ctx context.Context, sku string, quantity int) (*facdomain.Location, error) {
	candidates, err := s.directory.CandidatesFor(ctx, sku, facdomain.LocationFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	shippingZones, err := s.shippingZones(ctx)
	if err != nil {
		return nil, err
	}

	var best *facdomain.Location
	bestScore := -1
	for _, loc := range candidates {
		if loc.Type != facdomain.LocationTypeStorage && loc.Type != facdomain.LocationTypePicking {
			continue
		}
		score := placementScore(loc, quantity, shippingZones)
		if score > bestScore {
			best = loc
			bestScore = score
		}
	}
	if best == nil {
		return nil, errors.ErrConflict("no put-away location available for " + sku)
	}
	return best, nil
}

func placementScore(loc *facdomain.Location, quantity int, shippingZones map[string]bool) int {
	score := 0
	if loc.Type == facdomain.LocationTypePicking {
		score += scorePickingZone
	}
	if loc.ForwardPick {
		score += scoreForwardPick
	}
	if loc.CanHold(quantity) {
		score += scoreCapacityFits
	}
	if shippingZones[loc.Hierarchy.Zone] {
		score += scoreShippingAdjacency
	}
	return score
}

// shippingZones returns the zones that contain shipping locations; placing
// stock in those zones shortens the outbound travel path
func (s *ReceivingService) shippingZones(ctx context.Context) (map[string]bool, error) {
	locations, err := s.directory.FindLocations(ctx, facdomain.LocationFilter{
		Type:       facdomain.LocationTypeShipping,
		ActiveOnly: true,
	})
	if err != nil {
		return nil, err
	}
	zones := make(map[string]bool, len(locations))
	for _, loc := range locations {
		zones[loc.Hierarchy.Zone] = true
	}
	return zones, nil
}
