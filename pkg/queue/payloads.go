package queue

// Work payloads carried on the named queues. Each payload is JSON in the
// message body and is validated by the consumer before dispatch.

// OrderWork drives the validation, allocation, packing and shipping queues
type OrderWork struct {
	OrderNumber string `json:"orderNumber" validate:"required"`
}

// WaveWork asks the picking stage to expand a released wave into pick tasks
type WaveWork struct {
	WaveID string `json:"waveId" validate:"required"`
}

// PickWork drives the picking queue, one message per pick task
type PickWork struct {
	TaskID string `json:"taskId" validate:"required"`
}

// PutAwayWork drives the putaway queue
type PutAwayWork struct {
	TaskID string `json:"taskId" validate:"required"`
}

// ReturnWork drives the returns queue
type ReturnWork struct {
	RMANumber string `json:"rmaNumber" validate:"required"`
}

// MaintenanceWork drives the maintenance queue
type MaintenanceWork struct {
	EquipmentID string `json:"equipmentId" validate:"required"`
	Description string `json:"description,omitempty"`
}

// ExceptionWork drives the exceptions queue for anything that needs
// human review
type ExceptionWork struct {
	Kind      string `json:"kind" validate:"required"`
	Reference string `json:"reference" validate:"required"`
	Detail    string `json:"detail,omitempty"`
}

// Exception kinds
const (
	ExceptionDiscrepancy   = "receiving_discrepancy"
	ExceptionShortPick     = "short_pick"
	ExceptionUnknownReturn = "unknown_return_item"
)
