package application

import (
	"sort"

	"github.com/wms-platform/fulfillment/internal/picking/domain"
)

// OptimizePickPath orders tasks for a single walk through the warehouse:
// tasks are grouped by the zone prefix of their location code, sorted
// lexically by full location code inside each zone, and the zone groups are
// concatenated in zone-code order. Pick sequences are assigned 1..N.
func OptimizePickPath(tasks []*domain.PickTask) []*domain.PickTask {
	byZone := make(map[string][]*domain.PickTask)
	for _, task := range tasks {
		zone := task.ZonePrefix()
		byZone[zone] = append(byZone[zone], task)
	}

	zones := make([]string, 0, len(byZone))
	for zone := range byZone {
		zones = append(zones, zone)
	}
	sort.Strings(zones)

	ordered := make([]*domain.PickTask, 0, len(tasks))
	for _, zone := range zones {
		group := byZone[zone]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].LocationCode < group[j].LocationCode
		})
		ordered = append(ordered, group...)
	}

	for i, task := range ordered {
		task.PickSequence = i + 1
	}
	return ordered
}
