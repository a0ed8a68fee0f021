package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ASNStatus is the advance-ship-notice state machine
type ASNStatus string

const (
	ASNStatusAnnounced ASNStatus = "announced"
	ASNStatusScheduled ASNStatus = "scheduled"
	ASNStatusArrived   ASNStatus = "arrived"
	ASNStatusCompleted ASNStatus = "completed"
)

// ASNLine is one announced line
type ASNLine struct {
	SKU        string     `bson:"sku"`
	Quantity   int        `bson:"quantity"`
	LotNumber  string     `bson:"lotNumber,omitempty"`
	ExpiryDate *time.Time `bson:"expiryDate,omitempty"`
}

// ASN announces an inbound delivery ahead of arrival
type ASN struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	ASNNumber       string             `bson:"asnNumber"`
	PONumber        string             `bson:"poNumber"`
	Carrier         string             `bson:"carrier,omitempty"`
	Lines           []ASNLine          `bson:"lines"`
	Status          ASNStatus          `bson:"status"`
	ExpectedArrival time.Time          `bson:"expectedArrival"`
	DockDoor        string             `bson:"dockDoor,omitempty"`
	AppointmentAt   *time.Time         `bson:"appointmentAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

// NewASN creates an announced ASN
func NewASN(asnNumber, poNumber string, lines []ASNLine, expectedArrival time.Time) (*ASN, error) {
	if asnNumber == "" {
		return nil, errors.New("asn number is required")
	}
	if poNumber == "" {
		return nil, errors.New("po number is required")
	}
	if len(lines) == 0 {
		return nil, errors.New("asn must have at least one line")
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	now := time.Now()
	return &ASN{
		ASNNumber:       asnNumber,
		PONumber:        poNumber,
		Lines:           lines,
		Status:          ASNStatusAnnounced,
		ExpectedArrival: expectedArrival,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Schedule books a dock appointment for the ASN
func (a *ASN) Schedule(door string, at time.Time) error {
	if a.Status != ASNStatusAnnounced {
		return ErrInvalidStatus
	}
	a.Status = ASNStatusScheduled
	a.DockDoor = door
	a.AppointmentAt = &at
	a.UpdatedAt = time.Now()
	return nil
}

// MarkArrived records physical arrival; scheduling is optional so both
// announced and scheduled ASNs can arrive
func (a *ASN) MarkArrived() error {
	if a.Status != ASNStatusAnnounced && a.Status != ASNStatusScheduled {
		return ErrInvalidStatus
	}
	a.Status = ASNStatusArrived
	a.UpdatedAt = time.Now()
	return nil
}

// MarkCompleted closes the ASN after its receipt finishes
func (a *ASN) MarkCompleted() error {
	if a.Status != ASNStatusArrived {
		return ErrInvalidStatus
	}
	a.Status = ASNStatusCompleted
	a.UpdatedAt = time.Now()
	return nil
}

// Line returns the announced line for a SKU, or nil
func (a *ASN) Line(sku string) *ASNLine {
	for i := range a.Lines {
		if a.Lines[i].SKU == sku {
			return &a.Lines[i]
		}
	}
	return nil
}

// DockAppointment reserves a dock door around a scheduled time
type DockAppointment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	AppointmentID string             `bson:"appointmentId"`
	ASNNumber     string             `bson:"asnNumber"`
	Door          string             `bson:"door"`
	ScheduledAt   time.Time          `bson:"scheduledAt"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

// ConflictsWith reports whether another appointment at the same door falls
// inside the buffer window around the scheduled time
func (d *DockAppointment) ConflictsWith(at time.Time, buffer time.Duration) bool {
	diff := d.ScheduledAt.Sub(at)
	if diff < 0 {
		diff = -diff
	}
	return diff < buffer
}
