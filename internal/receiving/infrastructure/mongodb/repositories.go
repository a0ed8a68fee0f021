package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/wms-platform/fulfillment/internal/receiving/domain"
)

// PurchaseOrderRepository is the MongoDB adapter for purchase orders
type PurchaseOrderRepository struct {
	collection *mongo.Collection
}

// NewPurchaseOrderRepository creates the repository and ensures its indexes
func NewPurchaseOrderRepository(db *mongo.Database) (*PurchaseOrderRepository, error) {
	repo := &PurchaseOrderRepository{collection: db.Collection("purchase_orders")}
	_, err := repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "poNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase order indexes: %w", err)
	}
	return repo, nil
}

func (r *PurchaseOrderRepository) Save(ctx context.Context, po *domain.PurchaseOrder) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"poNumber": po.PONumber},
		bson.M{"$set": po},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save purchase order %s: %w", po.PONumber, err)
	}
	return nil
}

func (r *PurchaseOrderRepository) FindByNumber(ctx context.Context, poNumber string) (*domain.PurchaseOrder, error) {
	var po domain.PurchaseOrder
	err := r.collection.FindOne(ctx, bson.M{"poNumber": poNumber}).Decode(&po)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find purchase order %s: %w", poNumber, err)
	}
	return &po, nil
}

func (r *PurchaseOrderRepository) FindByStatus(ctx context.Context, status domain.POStatus) ([]*domain.PurchaseOrder, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": status},
		options.Find().SetSort(bson.D{{Key: "expectedDate", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find purchase orders: %w", err)
	}
	defer cursor.Close(ctx)

	var pos []*domain.PurchaseOrder
	if err := cursor.All(ctx, &pos); err != nil {
		return nil, fmt.Errorf("failed to decode purchase orders: %w", err)
	}
	return pos, nil
}

// ASNRepository is the MongoDB adapter for advance ship notices
type ASNRepository struct {
	collection *mongo.Collection
}

// NewASNRepository creates the repository and ensures its indexes
func NewASNRepository(db *mongo.Database) (*ASNRepository, error) {
	repo := &ASNRepository{collection: db.Collection("asns")}
	_, err := repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "asnNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expectedArrival", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create asn indexes: %w", err)
	}
	return repo, nil
}

func (r *ASNRepository) Save(ctx context.Context, asn *domain.ASN) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"asnNumber": asn.ASNNumber},
		bson.M{"$set": asn},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save asn %s: %w", asn.ASNNumber, err)
	}
	return nil
}

func (r *ASNRepository) FindByNumber(ctx context.Context, asnNumber string) (*domain.ASN, error) {
	var asn domain.ASN
	err := r.collection.FindOne(ctx, bson.M{"asnNumber": asnNumber}).Decode(&asn)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find asn %s: %w", asnNumber, err)
	}
	return &asn, nil
}

func (r *ASNRepository) FindByStatus(ctx context.Context, status domain.ASNStatus) ([]*domain.ASN, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": status},
		options.Find().SetSort(bson.D{{Key: "expectedArrival", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find asns: %w", err)
	}
	defer cursor.Close(ctx)

	var asns []*domain.ASN
	if err := cursor.All(ctx, &asns); err != nil {
		return nil, fmt.Errorf("failed to decode asns: %w", err)
	}
	return asns, nil
}

// DockAppointmentRepository is the MongoDB adapter for dock bookings
type DockAppointmentRepository struct {
	collection *mongo.Collection
}

// NewDockAppointmentRepository creates the repository and ensures its indexes
func NewDockAppointmentRepository(db *mongo.Database) (*DockAppointmentRepository, error) {
	repo := &DockAppointmentRepository{collection: db.Collection("dock_appointments")}
	_, err := repo.collection.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "door", Value: 1}, {Key: "scheduledAt", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dock appointment indexes: %w", err)
	}
	return repo, nil
}

func (r *DockAppointmentRepository) Save(ctx context.Context, appointment *domain.DockAppointment) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"appointmentId": appointment.AppointmentID},
		bson.M{"$set": appointment},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save dock appointment %s: %w", appointment.AppointmentID, err)
	}
	return nil
}

func (r *DockAppointmentRepository) FindByDoorBetween(ctx context.Context, door string, from, to time.Time) ([]*domain.DockAppointment, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"door":        door,
		"scheduledAt": bson.M{"$gte": from, "$lte": to},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find dock appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []*domain.DockAppointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode dock appointments: %w", err)
	}
	return appointments, nil
}

// ReceiptRepository is the MongoDB adapter for receiving sessions
type ReceiptRepository struct {
	collection *mongo.Collection
}

// NewReceiptRepository creates the repository and ensures its indexes
func NewReceiptRepository(db *mongo.Database) (*ReceiptRepository, error) {
	repo := &ReceiptRepository{collection: db.Collection("receipts")}
	_, err := repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "receiptNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "asnNumber", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt indexes: %w", err)
	}
	return repo, nil
}

func (r *ReceiptRepository) Save(ctx context.Context, receipt *domain.Receipt) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"receiptNumber": receipt.ReceiptNumber},
		bson.M{"$set": receipt},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save receipt %s: %w", receipt.ReceiptNumber, err)
	}
	return nil
}

func (r *ReceiptRepository) FindByNumber(ctx context.Context, receiptNumber string) (*domain.Receipt, error) {
	var receipt domain.Receipt
	err := r.collection.FindOne(ctx, bson.M{"receiptNumber": receiptNumber}).Decode(&receipt)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find receipt %s: %w", receiptNumber, err)
	}
	return &receipt, nil
}

func (r *ReceiptRepository) FindByASN(ctx context.Context, asnNumber string) (*domain.Receipt, error) {
	var receipt domain.Receipt
	err := r.collection.FindOne(ctx, bson.M{"asnNumber": asnNumber}).Decode(&receipt)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find receipt for asn %s: %w", asnNumber, err)
	}
	return &receipt, nil
}

// ReceivingTaskRepository is the MongoDB adapter for receiving tasks
type ReceivingTaskRepository struct {
	collection *mongo.Collection
}

// NewReceivingTaskRepository creates the repository and ensures its indexes
func NewReceivingTaskRepository(db *mongo.Database) (*ReceivingTaskRepository, error) {
	repo := &ReceivingTaskRepository{collection: db.Collection("receiving_tasks")}
	_, err := repo.collection.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "receiptNumber", Value: 1}, {Key: "sku", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create receiving task indexes: %w", err)
	}
	return repo, nil
}

func (r *ReceivingTaskRepository) Save(ctx context.Context, task *domain.ReceivingTask) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"taskId": task.TaskID},
		bson.M{"$set": task},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save receiving task %s: %w", task.TaskID, err)
	}
	return nil
}

func (r *ReceivingTaskRepository) FindByReceipt(ctx context.Context, receiptNumber string) ([]*domain.ReceivingTask, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"receiptNumber": receiptNumber})
	if err != nil {
		return nil, fmt.Errorf("failed to find receiving tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []*domain.ReceivingTask
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode receiving tasks: %w", err)
	}
	return tasks, nil
}

func (r *ReceivingTaskRepository) FindByReceiptAndSKU(ctx context.Context, receiptNumber, sku string) (*domain.ReceivingTask, error) {
	var task domain.ReceivingTask
	err := r.collection.FindOne(ctx, bson.M{"receiptNumber": receiptNumber, "sku": sku}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find receiving task: %w", err)
	}
	return &task, nil
}

// DiscrepancyRepository is the MongoDB adapter for discrepancy reports
type DiscrepancyRepository struct {
	collection *mongo.Collection
}

// NewDiscrepancyRepository creates the repository and ensures its indexes
func NewDiscrepancyRepository(db *mongo.Database) (*DiscrepancyRepository, error) {
	repo := &DiscrepancyRepository{collection: db.Collection("discrepancy_reports")}
	_, err := repo.collection.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create discrepancy indexes: %w", err)
	}
	return repo, nil
}

func (r *DiscrepancyRepository) Save(ctx context.Context, report *domain.DiscrepancyReport) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"reportId": report.ReportID},
		bson.M{"$set": report},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save discrepancy report %s: %w", report.ReportID, err)
	}
	return nil
}

func (r *DiscrepancyRepository) FindOpen(ctx context.Context) ([]*domain.DiscrepancyReport, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": domain.DiscrepancyOpen},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find discrepancy reports: %w", err)
	}
	defer cursor.Close(ctx)

	var reports []*domain.DiscrepancyReport
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, fmt.Errorf("failed to decode discrepancy reports: %w", err)
	}
	return reports, nil
}

// PutAwayTaskRepository is the MongoDB adapter for put-away tasks
type PutAwayTaskRepository struct {
	collection *mongo.Collection
}

// NewPutAwayTaskRepository creates the repository and ensures its indexes
func NewPutAwayTaskRepository(db *mongo.Database) (*PutAwayTaskRepository, error) {
	repo := &PutAwayTaskRepository{collection: db.Collection("putaway_tasks")}
	_, err := repo.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "taskId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create put-away task indexes: %w", err)
	}
	return repo, nil
}

func (r *PutAwayTaskRepository) Save(ctx context.Context, task *domain.PutAwayTask) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"taskId": task.TaskID},
		bson.M{"$set": task},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save put-away task %s: %w", task.TaskID, err)
	}
	return nil
}

func (r *PutAwayTaskRepository) FindByID(ctx context.Context, taskID string) (*domain.PutAwayTask, error) {
	var task domain.PutAwayTask
	err := r.collection.FindOne(ctx, bson.M{"taskId": taskID}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find put-away task %s: %w", taskID, err)
	}
	return &task, nil
}

func (r *PutAwayTaskRepository) FindByStatus(ctx context.Context, status domain.PutAwayStatus) ([]*domain.PutAwayTask, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": status},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find put-away tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []*domain.PutAwayTask
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode put-away tasks: %w", err)
	}
	return tasks, nil
}
