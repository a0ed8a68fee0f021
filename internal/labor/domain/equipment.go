package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EquipmentStatus represents the operational state of a piece of equipment
type EquipmentStatus string

const (
	EquipmentAvailable    EquipmentStatus = "available"
	EquipmentInUse        EquipmentStatus = "in_use"
	EquipmentMaintenance  EquipmentStatus = "maintenance"
	EquipmentOutOfService EquipmentStatus = "out_of_service"
)

// Equipment is a shared warehouse resource such as a forklift or scanner
type Equipment struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	EquipmentID       string             `bson:"equipmentId"`
	Type              string             `bson:"type"`
	Status            EquipmentStatus    `bson:"status"`
	CurrentAssignment string             `bson:"currentAssignment,omitempty"`
	UsageMinutes      float64            `bson:"usageMinutes"`
	MaintenanceCount  int                `bson:"maintenanceCount"`
	CreatedAt         time.Time          `bson:"createdAt"`
}

// NewEquipment registers an available piece of equipment
func NewEquipment(equipmentID, equipmentType string) *Equipment {
	return &Equipment{
		EquipmentID: equipmentID,
		Type:        equipmentType,
		Status:      EquipmentAvailable,
		CreatedAt:   time.Now(),
	}
}

// Use reserves the equipment for an assignment
func (e *Equipment) Use(assignmentID string) error {
	if e.Status != EquipmentAvailable {
		return ErrEquipmentBusy
	}
	e.Status = EquipmentInUse
	e.CurrentAssignment = assignmentID
	return nil
}

// Release returns the equipment to the pool and accrues usage time
func (e *Equipment) Release(usedMinutes float64) error {
	if e.Status != EquipmentInUse {
		return ErrInvalidStatus
	}
	e.Status = EquipmentAvailable
	e.CurrentAssignment = ""
	e.UsageMinutes += usedMinutes
	return nil
}

// StartMaintenance takes the equipment out of the assignable pool
func (e *Equipment) StartMaintenance() error {
	if e.Status == EquipmentInUse || e.Status == EquipmentOutOfService {
		return ErrInvalidStatus
	}
	e.Status = EquipmentMaintenance
	return nil
}

// FinishMaintenance returns the equipment to service
func (e *Equipment) FinishMaintenance() error {
	if e.Status != EquipmentMaintenance {
		return ErrInvalidStatus
	}
	e.Status = EquipmentAvailable
	e.MaintenanceCount++
	return nil
}

// Decommission permanently removes the equipment from service
func (e *Equipment) Decommission() error {
	if e.Status == EquipmentInUse {
		return ErrInvalidStatus
	}
	e.Status = EquipmentOutOfService
	return nil
}
