package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Errors
var (
	ErrInvalidTransition = errors.New("invalid wave status transition")
	ErrEmptyWave         = errors.New("wave has no orders")
	ErrUnknownStrategy   = errors.New("unknown wave strategy")
)

// WaveStatus is the wave state machine
type WaveStatus string

const (
	WaveStatusPlanning  WaveStatus = "planning"
	WaveStatusReleased  WaveStatus = "released"
	WaveStatusPicking   WaveStatus = "picking"
	WaveStatusCompleted WaveStatus = "completed"
	WaveStatusCancelled WaveStatus = "cancelled"
)

// Strategy decides the ordering of selected orders inside a wave
type Strategy string

const (
	StrategyStandard     Strategy = "standard"
	StrategyZoneBased    Strategy = "zone_based"
	StrategyProductBased Strategy = "product_based"
	StrategyRouteBased   Strategy = "route_based"
)

// IsValid reports whether s is a known strategy
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyStandard, StrategyZoneBased, StrategyProductBased, StrategyRouteBased:
		return true
	}
	return false
}

// Metrics summarizes a planned wave. Estimated pick time is
// 0.5 min per unit plus 2 min per distinct SKU.
type Metrics struct {
	Orders               int     `bson:"orders"`
	Lines                int     `bson:"lines"`
	Units                int     `bson:"units"`
	DistinctSKUs         int     `bson:"distinctSkus"`
	EstimatedPickMinutes float64 `bson:"estimatedPickMinutes"`
}

// Wave groups released orders for batch picking
type Wave struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	WaveID       string             `bson:"waveId"`
	Strategy     Strategy           `bson:"strategy"`
	OrderNumbers []string           `bson:"orderNumbers"`
	Status       WaveStatus         `bson:"status"`
	Metrics      Metrics            `bson:"metrics"`
	CreatedAt    time.Time          `bson:"createdAt"`
	ReleasedAt   *time.Time         `bson:"releasedAt,omitempty"`
	CompletedAt  *time.Time         `bson:"completedAt,omitempty"`
}

// NewWave creates an empty planning wave
func NewWave(waveID string, strategy Strategy) (*Wave, error) {
	if waveID == "" {
		return nil, errors.New("wave id is required")
	}
	if !strategy.IsValid() {
		return nil, ErrUnknownStrategy
	}
	return &Wave{
		WaveID:    waveID,
		Strategy:  strategy,
		Status:    WaveStatusPlanning,
		CreatedAt: time.Now(),
	}, nil
}

// AssignOrders writes the planned selection and metrics into the wave
func (w *Wave) AssignOrders(orderNumbers []string, metrics Metrics) error {
	if w.Status != WaveStatusPlanning {
		return ErrInvalidTransition
	}
	w.OrderNumbers = orderNumbers
	w.Metrics = metrics
	return nil
}

// Release hands the wave to picking
func (w *Wave) Release(now time.Time) error {
	if w.Status != WaveStatusPlanning {
		return ErrInvalidTransition
	}
	if len(w.OrderNumbers) == 0 {
		return ErrEmptyWave
	}
	w.Status = WaveStatusReleased
	w.ReleasedAt = &now
	return nil
}

// StartPicking records that pick tasks are being worked
func (w *Wave) StartPicking() error {
	if w.Status != WaveStatusReleased {
		return ErrInvalidTransition
	}
	w.Status = WaveStatusPicking
	return nil
}

// Complete closes the wave once all its orders are picked
func (w *Wave) Complete(now time.Time) error {
	if w.Status != WaveStatusPicking && w.Status != WaveStatusReleased {
		return ErrInvalidTransition
	}
	w.Status = WaveStatusCompleted
	w.CompletedAt = &now
	return nil
}

// Cancel aborts a wave that has not started picking
func (w *Wave) Cancel() error {
	if w.Status != WaveStatusPlanning && w.Status != WaveStatusReleased {
		return ErrInvalidTransition
	}
	w.Status = WaveStatusCancelled
	return nil
}
