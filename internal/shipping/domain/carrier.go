package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServiceLevel is the shipping speed tier
type ServiceLevel string

const (
	ServiceOvernight ServiceLevel = "overnight"
	ServiceExpress   ServiceLevel = "express"
	ServiceTwoDay    ServiceLevel = "two_day"
	ServiceGround    ServiceLevel = "ground"
)

// Factor returns the rate multiplier applied to the base quote
func (l ServiceLevel) Factor() decimal.Decimal {
	switch l {
	case ServiceOvernight:
		return decimal.NewFromFloat(3.0)
	case ServiceExpress:
		return decimal.NewFromFloat(2.0)
	case ServiceTwoDay:
		return decimal.NewFromFloat(1.5)
	}
	return decimal.NewFromFloat(1.0)
}

// Capabilities are the special-handling services a carrier offers
type Capabilities struct {
	SignatureRequired bool `bson:"signatureRequired"`
	Insurance         bool `bson:"insurance"`
	Refrigeration     bool `bson:"refrigeration"`
	CashOnDelivery    bool `bson:"cashOnDelivery"`
}

// Count returns how many capabilities are offered, out of four
func (c Capabilities) Count() int {
	count := 0
	for _, flag := range []bool{c.SignatureRequired, c.Insurance, c.Refrigeration, c.CashOnDelivery} {
		if flag {
			count++
		}
	}
	return count
}

// Covers reports whether every required capability is offered
func (c Capabilities) Covers(required Capabilities) bool {
	if required.SignatureRequired && !c.SignatureRequired {
		return false
	}
	if required.Insurance && !c.Insurance {
		return false
	}
	if required.Refrigeration && !c.Refrigeration {
		return false
	}
	if required.CashOnDelivery && !c.CashOnDelivery {
		return false
	}
	return true
}

// Rates is the carrier's rate card. Stored as floats, quoted with decimals.
type Rates struct {
	BaseRate       float64 `bson:"baseRate"`
	PerKgRate      float64 `bson:"perKgRate"`
	VolumetricRate float64 `bson:"volumetricRate"`
}

// Performance tracks rolling delivery quality counters
type Performance struct {
	Deliveries int `bson:"deliveries"`
	OnTime     int `bson:"onTime"`
	Damaged    int `bson:"damaged"`
	Lost       int `bson:"lost"`
}

// Score folds on-time, damage and loss rates into a single 0..1 figure.
// A carrier with no history scores a neutral 0.5.
func (p Performance) Score() float64 {
	if p.Deliveries == 0 {
		return 0.5
	}
	onTime := float64(p.OnTime) / float64(p.Deliveries)
	damage := float64(p.Damaged) / float64(p.Deliveries)
	loss := float64(p.Lost) / float64(p.Deliveries)
	score := onTime * (1 - damage) * (1 - loss)
	if score < 0 {
		return 0
	}
	return score
}

// Carrier is a shipping provider with coverage, capabilities and a rate card
type Carrier struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	CarrierID    string               `bson:"carrierId"`
	Name         string               `bson:"name"`
	Active       bool                 `bson:"active"`
	ServiceAreas []string             `bson:"serviceAreas"`
	Capabilities Capabilities         `bson:"capabilities"`
	Rates        Rates                `bson:"rates"`
	Performance  Performance          `bson:"performance"`
	TransitDays  map[ServiceLevel]int `bson:"transitDays"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

// ServesArea reports whether the carrier covers a destination area code
func (c *Carrier) ServesArea(area string) bool {
	for _, served := range c.ServiceAreas {
		if served == area || served == "*" {
			return true
		}
	}
	return false
}

// TransitDaysFor returns the promised transit days for a level, or 0 when the
// level is not offered
func (c *Carrier) TransitDaysFor(level ServiceLevel) int {
	return c.TransitDays[level]
}

// Quote prices a shipment: (base + weight x per-kg + volume x volumetric)
// scaled by the service-level factor.
func (c *Carrier) Quote(weightKg, volumeCubicM float64, level ServiceLevel) decimal.Decimal {
	base := decimal.NewFromFloat(c.Rates.BaseRate)
	weight := decimal.NewFromFloat(c.Rates.PerKgRate).Mul(decimal.NewFromFloat(weightKg))
	volume := decimal.NewFromFloat(c.Rates.VolumetricRate).Mul(decimal.NewFromFloat(volumeCubicM))
	return base.Add(weight).Add(volume).Mul(level.Factor()).Round(2)
}

// RecordDelivery rolls a completed delivery into the performance counters
func (c *Carrier) RecordDelivery(onTime, damaged, lost bool) {
	c.Performance.Deliveries++
	if onTime {
		c.Performance.OnTime++
	}
	if damaged {
		c.Performance.Damaged++
	}
	if lost {
		c.Performance.Lost++
	}
	c.UpdatedAt = time.Now()
}
