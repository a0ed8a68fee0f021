package application

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/wms-platform/fulfillment/internal/shipping/domain"
	"github.com/wms-platform/fulfillment/pkg/errors"
)

// Scoring weights and normalization baselines. Cost and transit scores are
// normalized against a fixed baseline quote and transit promise so scores
// stay comparable across selections.
const (
	weightPerformance = 0.40
	weightCost        = 0.30
	weightTransit     = 0.20
	weightCapability  = 0.10

	baselineTransitDays = 3
)

var baselineCost = decimal.NewFromFloat(10.00)

// ShipmentRequirements describe what a shipment needs from a carrier
type ShipmentRequirements struct {
	Destination  string              `validate:"required"`
	ServiceLevel domain.ServiceLevel `validate:"required,oneof=overnight express two_day ground"`
	WeightKg     float64             `validate:"gt=0"`
	VolumeCubicM float64             `validate:"gte=0"`
	Required     domain.Capabilities
}

// CarrierOption is one scored quote
type CarrierOption struct {
	Carrier     *domain.Carrier
	Cost        decimal.Decimal
	TransitDays int
	Score       float64
}

// CarrierSelection is the best option plus up to two alternatives
type CarrierSelection struct {
	Best         CarrierOption
	Alternatives []CarrierOption
}

// SelectOptimalCarrier filters active carriers by coverage, capabilities and
// offered service level, quotes each survivor and ranks them by weighted
// score. Ties break on carrier id so selection is deterministic.
func (s *ShippingService) SelectOptimalCarrier(ctx context.Context, req ShipmentRequirements) (*CarrierSelection, error) {
	carriers, err := s.carriers.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	var options []CarrierOption
	for _, carrier := range carriers {
		if !carrier.ServesArea(req.Destination) {
			continue
		}
		if !carrier.Capabilities.Covers(req.Required) {
			continue
		}
		transit := carrier.TransitDaysFor(req.ServiceLevel)
		if transit <= 0 {
			continue
		}

		cost := carrier.Quote(req.WeightKg, req.VolumeCubicM, req.ServiceLevel)
		options = append(options, CarrierOption{
			Carrier:     carrier,
			Cost:        cost,
			TransitDays: transit,
			Score:       scoreOption(carrier, cost, transit),
		})
	}
	if len(options) == 0 {
		return nil, errors.ErrNoEligibleCarrier(req.Destination)
	}

	sort.SliceStable(options, func(i, j int) bool {
		if options[i].Score != options[j].Score {
			return options[i].Score > options[j].Score
		}
		return options[i].Carrier.CarrierID < options[j].Carrier.CarrierID
	})

	selection := &CarrierSelection{Best: options[0]}
	for _, option := range options[1:] {
		selection.Alternatives = append(selection.Alternatives, option)
		if len(selection.Alternatives) == 2 {
			break
		}
	}
	return selection, nil
}

func scoreOption(carrier *domain.Carrier, cost decimal.Decimal, transitDays int) float64 {
	costScore := 1.0
	if cost.GreaterThan(baselineCost) {
		ratio, _ := baselineCost.Div(cost).Float64()
		costScore = ratio
	}

	transitScore := 1.0
	if transitDays > baselineTransitDays {
		transitScore = float64(baselineTransitDays) / float64(transitDays)
	}

	capabilityScore := float64(carrier.Capabilities.Count()) / 4

	return weightPerformance*carrier.Performance.Score() +
		weightCost*costScore +
		weightTransit*transitScore +
		weightCapability*capabilityScore
}
