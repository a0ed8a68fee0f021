package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wms-platform/fulfillment/internal/receiving/domain"
)

// PurchaseOrderRepository is an in-memory adapter used by tests
type PurchaseOrderRepository struct {
	mu  sync.RWMutex
	pos map[string]*domain.PurchaseOrder
}

func NewPurchaseOrderRepository() *PurchaseOrderRepository {
	return &PurchaseOrderRepository{pos: make(map[string]*domain.PurchaseOrder)}
}

func (r *PurchaseOrderRepository) Save(ctx context.Context, po *domain.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *po
	copied.Lines = append([]domain.POLine(nil), po.Lines...)
	r.pos[po.PONumber] = &copied
	return nil
}

func (r *PurchaseOrderRepository) FindByNumber(ctx context.Context, poNumber string) (*domain.PurchaseOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	po, ok := r.pos[poNumber]
	if !ok {
		return nil, nil
	}
	copied := *po
	copied.Lines = append([]domain.POLine(nil), po.Lines...)
	return &copied, nil
}

func (r *PurchaseOrderRepository) FindByStatus(ctx context.Context, status domain.POStatus) ([]*domain.PurchaseOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.PurchaseOrder
	for _, po := range r.pos {
		if po.Status == status {
			copied := *po
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ExpectedDate.Before(result[j].ExpectedDate)
	})
	return result, nil
}

// ASNRepository is an in-memory adapter used by tests
type ASNRepository struct {
	mu   sync.RWMutex
	asns map[string]*domain.ASN
}

func NewASNRepository() *ASNRepository {
	return &ASNRepository{asns: make(map[string]*domain.ASN)}
}

func (r *ASNRepository) Save(ctx context.Context, asn *domain.ASN) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *asn
	copied.Lines = append([]domain.ASNLine(nil), asn.Lines...)
	r.asns[asn.ASNNumber] = &copied
	return nil
}

func (r *ASNRepository) FindByNumber(ctx context.Context, asnNumber string) (*domain.ASN, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	asn, ok := r.asns[asnNumber]
	if !ok {
		return nil, nil
	}
	copied := *asn
	copied.Lines = append([]domain.ASNLine(nil), asn.Lines...)
	return &copied, nil
}

func (r *ASNRepository) FindByStatus(ctx context.Context, status domain.ASNStatus) ([]*domain.ASN, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.ASN
	for _, asn := range r.asns {
		if asn.Status == status {
			copied := *asn
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ExpectedArrival.Before(result[j].ExpectedArrival)
	})
	return result, nil
}

// DockAppointmentRepository is an in-memory adapter used by tests
type DockAppointmentRepository struct {
	mu           sync.RWMutex
	appointments []*domain.DockAppointment
}

func NewDockAppointmentRepository() *DockAppointmentRepository {
	return &DockAppointmentRepository{}
}

func (r *DockAppointmentRepository) Save(ctx context.Context, appointment *domain.DockAppointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *appointment
	r.appointments = append(r.appointments, &copied)
	return nil
}

func (r *DockAppointmentRepository) FindByDoorBetween(ctx context.Context, door string, from, to time.Time) ([]*domain.DockAppointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.DockAppointment
	for _, a := range r.appointments {
		if a.Door != door {
			continue
		}
		if a.ScheduledAt.Before(from) || a.ScheduledAt.After(to) {
			continue
		}
		copied := *a
		result = append(result, &copied)
	}
	return result, nil
}

// All returns every stored appointment
func (r *DockAppointmentRepository) All() []*domain.DockAppointment {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*domain.DockAppointment(nil), r.appointments...)
}

// ReceiptRepository is an in-memory adapter used by tests
type ReceiptRepository struct {
	mu       sync.RWMutex
	receipts map[string]*domain.Receipt
}

func NewReceiptRepository() *ReceiptRepository {
	return &ReceiptRepository{receipts: make(map[string]*domain.Receipt)}
}

func (r *ReceiptRepository) Save(ctx context.Context, receipt *domain.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *receipt
	copied.Lines = append([]domain.ReceiptLine(nil), receipt.Lines...)
	r.receipts[receipt.ReceiptNumber] = &copied
	return nil
}

func (r *ReceiptRepository) FindByNumber(ctx context.Context, receiptNumber string) (*domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	receipt, ok := r.receipts[receiptNumber]
	if !ok {
		return nil, nil
	}
	copied := *receipt
	copied.Lines = append([]domain.ReceiptLine(nil), receipt.Lines...)
	return &copied, nil
}

func (r *ReceiptRepository) FindByASN(ctx context.Context, asnNumber string) (*domain.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, receipt := range r.receipts {
		if receipt.ASNNumber == asnNumber {
			copied := *receipt
			copied.Lines = append([]domain.ReceiptLine(nil), receipt.Lines...)
			return &copied, nil
		}
	}
	return nil, nil
}

// ReceivingTaskRepository is an in-memory adapter used by tests
type ReceivingTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.ReceivingTask
}

func NewReceivingTaskRepository() *ReceivingTaskRepository {
	return &ReceivingTaskRepository{tasks: make(map[string]*domain.ReceivingTask)}
}

func (r *ReceivingTaskRepository) Save(ctx context.Context, task *domain.ReceivingTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *task
	r.tasks[task.TaskID] = &copied
	return nil
}

func (r *ReceivingTaskRepository) FindByReceipt(ctx context.Context, receiptNumber string) ([]*domain.ReceivingTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.ReceivingTask
	for _, task := range r.tasks {
		if task.ReceiptNumber == receiptNumber {
			copied := *task
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SKU < result[j].SKU })
	return result, nil
}

func (r *ReceivingTaskRepository) FindByReceiptAndSKU(ctx context.Context, receiptNumber, sku string) (*domain.ReceivingTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, task := range r.tasks {
		if task.ReceiptNumber == receiptNumber && task.SKU == sku {
			copied := *task
			return &copied, nil
		}
	}
	return nil, nil
}

// DiscrepancyRepository is an in-memory adapter used by tests
type DiscrepancyRepository struct {
	mu      sync.RWMutex
	reports []*domain.DiscrepancyReport
}

func NewDiscrepancyRepository() *DiscrepancyRepository {
	return &DiscrepancyRepository{}
}

func (r *DiscrepancyRepository) Save(ctx context.Context, report *domain.DiscrepancyReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.reports {
		if existing.ReportID == report.ReportID {
			copied := *report
			r.reports[i] = &copied
			return nil
		}
	}
	copied := *report
	r.reports = append(r.reports, &copied)
	return nil
}

func (r *DiscrepancyRepository) FindOpen(ctx context.Context) ([]*domain.DiscrepancyReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.DiscrepancyReport
	for _, report := range r.reports {
		if report.Status == domain.DiscrepancyOpen {
			copied := *report
			result = append(result, &copied)
		}
	}
	return result, nil
}

// PutAwayTaskRepository is an in-memory adapter used by tests
type PutAwayTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.PutAwayTask
}

func NewPutAwayTaskRepository() *PutAwayTaskRepository {
	return &PutAwayTaskRepository{tasks: make(map[string]*domain.PutAwayTask)}
}

func (r *PutAwayTaskRepository) Save(ctx context.Context, task *domain.PutAwayTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *task
	r.tasks[task.TaskID] = &copied
	return nil
}

func (r *PutAwayTaskRepository) FindByID(ctx context.Context, taskID string) (*domain.PutAwayTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[taskID]
	if !ok {
		return nil, nil
	}
	copied := *task
	return &copied, nil
}

func (r *PutAwayTaskRepository) FindByStatus(ctx context.Context, status domain.PutAwayStatus) ([]*domain.PutAwayTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.PutAwayTask
	for _, task := range r.tasks {
		if task.Status == status {
			copied := *task
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
