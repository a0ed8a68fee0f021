package application

import (
	"sort"

	ordomain "github.com/wms-platform/fulfillment/internal/orders/domain"
	"github.com/wms-platform/fulfillment/internal/waving/domain"
)

// applyStrategy returns the selected orders in the strategy's pick order.
// Sorts are stable so equal keys keep their input order.
func applyStrategy(strategy domain.Strategy, orders []*ordomain.Order) []*ordomain.Order {
	sorted := append([]*ordomain.Order(nil), orders...)

	switch strategy {
	case domain.StrategyStandard:
		// Priority descending, then order date ascending
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Priority.Rank() != sorted[j].Priority.Rank() {
				return sorted[i].Priority.Rank() > sorted[j].Priority.Rank()
			}
			return sorted[i].OrderDate.Before(sorted[j].OrderDate)
		})

	case domain.StrategyZoneBased:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Customer.PostalCode < sorted[j].Customer.PostalCode
		})

	case domain.StrategyProductBased:
		// Orders sharing SKUs with many peers pick first so their paths
		// overlap
		scores := productAffinityScores(sorted)
		sort.SliceStable(sorted, func(i, j int) bool {
			return scores[sorted[i].OrderNumber] > scores[sorted[j].OrderNumber]
		})

	case domain.StrategyRouteBased:
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].Carrier != sorted[j].Carrier {
				return sorted[i].Carrier < sorted[j].Carrier
			}
			return sorted[i].Customer.State < sorted[j].Customer.State
		})
	}
	return sorted
}

// productAffinityScores counts, per order, how many lines are shared with
// other selected orders: the score is the sum over the order's SKUs of the
// number of other orders carrying that SKU
func productAffinityScores(orders []*ordomain.Order) map[string]int {
	carriers := make(map[string]int)
	for _, order := range orders {
		seen := make(map[string]bool)
		for _, line := range order.Lines {
			if !seen[line.SKU] {
				carriers[line.SKU]++
				seen[line.SKU] = true
			}
		}
	}

	scores := make(map[string]int, len(orders))
	for _, order := range orders {
		seen := make(map[string]bool)
		for _, line := range order.Lines {
			if seen[line.SKU] {
				continue
			}
			seen[line.SKU] = true
			scores[order.OrderNumber] += carriers[line.SKU] - 1
		}
	}
	return scores
}

// waveMetrics computes the wave summary over the selected orders
func waveMetrics(orders []*ordomain.Order) domain.Metrics {
	metrics := domain.Metrics{Orders: len(orders)}
	skus := make(map[string]bool)
	for _, order := range orders {
		metrics.Lines += len(order.Lines)
		for _, line := range order.Lines {
			metrics.Units += line.OrderedQuantity
			skus[line.SKU] = true
		}
	}
	metrics.DistinctSKUs = len(skus)
	metrics.EstimatedPickMinutes = 0.5*float64(metrics.Units) + 2*float64(metrics.DistinctSKUs)
	return metrics
}
