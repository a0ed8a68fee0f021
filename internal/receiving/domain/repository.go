package domain

import (
	"context"
	"time"
)

// PurchaseOrderRepository persists purchase orders
type PurchaseOrderRepository interface {
	Save(ctx context.Context, po *PurchaseOrder) error
	FindByNumber(ctx context.Context, poNumber string) (*PurchaseOrder, error)
	FindByStatus(ctx context.Context, status POStatus) ([]*PurchaseOrder, error)
}

// ASNRepository persists advance ship notices
type ASNRepository interface {
	Save(ctx context.Context, asn *ASN) error
	FindByNumber(ctx context.Context, asnNumber string) (*ASN, error)
	FindByStatus(ctx context.Context, status ASNStatus) ([]*ASN, error)
}

// DockAppointmentRepository persists dock bookings
type DockAppointmentRepository interface {
	Save(ctx context.Context, appointment *DockAppointment) error
	FindByDoorBetween(ctx context.Context, door string, from, to time.Time) ([]*DockAppointment, error)
}

// ReceiptRepository persists receiving sessions
type ReceiptRepository interface {
	Save(ctx context.Context, receipt *Receipt) error
	FindByNumber(ctx context.Context, receiptNumber string) (*Receipt, error)
	FindByASN(ctx context.Context, asnNumber string) (*Receipt, error)
}

// ReceivingTaskRepository persists per-line receiving tasks
type ReceivingTaskRepository interface {
	Save(ctx context.Context, task *ReceivingTask) error
	FindByReceipt(ctx context.Context, receiptNumber string) ([]*ReceivingTask, error)
	FindByReceiptAndSKU(ctx context.Context, receiptNumber, sku string) (*ReceivingTask, error)
}

// DiscrepancyRepository persists investigation reports
type DiscrepancyRepository interface {
	Save(ctx context.Context, report *DiscrepancyReport) error
	FindOpen(ctx context.Context) ([]*DiscrepancyReport, error)
}

// PutAwayTaskRepository persists put-away tasks
type PutAwayTaskRepository interface {
	Save(ctx context.Context, task *PutAwayTask) error
	FindByID(ctx context.Context, taskID string) (*PutAwayTask, error)
	FindByStatus(ctx context.Context, status PutAwayStatus) ([]*PutAwayTask, error)
}
