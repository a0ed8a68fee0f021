package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReceiptCompleteWithoutDiscrepancy(t *testing.T) {
	receipt, err := NewReceipt("RCPT-1", "ASN-1", "PO-1")
	require.NoError(t, err)

	require.NoError(t, receipt.RecordLine(ReceiptLine{SKU: "A1", ExpectedQuantity: 10, ReceivedQuantity: 10, Quality: QualityAccepted}))
	require.NoError(t, receipt.Complete(time.Now()))

	assert.Equal(t, ReceiptStatusCompleted, receipt.Status)
	assert.NotNil(t, receipt.CompletedAt)
}

func TestReceiptCompleteWithDiscrepancy(t *testing.T) {
	receipt, err := NewReceipt("RCPT-1", "ASN-1", "PO-1")
	require.NoError(t, err)

	require.NoError(t, receipt.RecordLine(ReceiptLine{SKU: "A1", ExpectedQuantity: 10, ReceivedQuantity: 10}))
	require.NoError(t, receipt.RecordLine(ReceiptLine{SKU: "B2", ExpectedQuantity: 5, ReceivedQuantity: 8}))
	require.NoError(t, receipt.Complete(time.Now()))

	assert.Equal(t, ReceiptStatusDiscrepancy, receipt.Status)
	assert.Error(t, receipt.Complete(time.Now()))
}

func TestPurchaseOrderReceiptRollup(t *testing.T) {
	po, err := NewPurchaseOrder("PO-1", Supplier{SupplierID: "S1"}, []POLine{
		{SKU: "A1", OrderedQuantity: 10},
		{SKU: "B2", OrderedQuantity: 5},
	}, time.Now())
	require.NoError(t, err)

	require.NoError(t, po.RecordReceipt("A1", 10))
	assert.Equal(t, POStatusPartiallyReceived, po.Status)

	require.NoError(t, po.RecordReceipt("B2", 5))
	assert.Equal(t, POStatusReceived, po.Status)

	assert.ErrorIs(t, po.RecordReceipt("ZZ", 1), ErrPOLineNotFound)
}

func TestDiscrepancyReportClassification(t *testing.T) {
	short := NewDiscrepancyReport("R1", "RCPT-1", "A1", 10, 7, time.Now())
	assert.Equal(t, DiscrepancyShortage, short.Type)

	over := NewDiscrepancyReport("R2", "RCPT-1", "A1", 10, 12, time.Now())
	assert.Equal(t, DiscrepancyOverage, over.Type)
}

func TestDockAppointmentConflictWindow(t *testing.T) {
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	appointment := &DockAppointment{Door: "DOCK-1", ScheduledAt: at}

	assert.True(t, appointment.ConflictsWith(at.Add(time.Hour), 2*time.Hour))
	assert.True(t, appointment.ConflictsWith(at.Add(-90*time.Minute), 2*time.Hour))
	assert.False(t, appointment.ConflictsWith(at.Add(2*time.Hour), 2*time.Hour))
}

func TestASNStateMachine(t *testing.T) {
	asn, err := NewASN("ASN-1", "PO-1", []ASNLine{{SKU: "A1", Quantity: 1}}, time.Now())
	require.NoError(t, err)

	require.NoError(t, asn.Schedule("DOCK-1", time.Now()))
	assert.Error(t, asn.Schedule("DOCK-2", time.Now()))
	require.NoError(t, asn.MarkArrived())
	require.NoError(t, asn.MarkCompleted())
	assert.Error(t, asn.MarkArrived())
}
