package order

// Status is the order-level lifecycle state.
type Status string

const (
	StatusPending               Status = "Pending"
	StatusProcessing            Status = "Processing"
	StatusDispatched            Status = "Dispatched"
	StatusPartiallyDelivered    Status = "Partially Delivered"
	StatusDelivered             Status = "Delivered"
	StatusCancellationRequested Status = "Cancellation Requested"
	StatusCancelled             Status = "Cancelled"
)

// Valid reports whether s is one of the known order statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusDispatched,
		StatusPartiallyDelivered, StatusDelivered,
		StatusCancellationRequested, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Open reports whether orders in this status still hold a claim on their
// products. Inventory for a referenced product cannot be deleted while an
// open order exists.
func (s Status) Open() bool {
	return s != StatusDelivered && s != StatusCancelled
}

// Dispatchable reports whether an order in this status may be dispatched.
func (s Status) Dispatchable() bool {
	return s == StatusPending
}

// Cancellable reports whether a cancellation request may be raised from s.
// Dispatched and delivered orders are past the point of no return.
func (s Status) Cancellable() bool {
	return s != StatusDispatched && s != StatusDelivered
}

// Editable reports whether order items and address may still be replaced.
// Editing after dispatch would desynchronise deducted stock from the order
// lines, so only pre-dispatch statuses qualify.
func (s Status) Editable() bool {
	return s == StatusPending || s == StatusProcessing
}

// VendorStatus is the per-vendor fulfilment sub-state within an order.
type VendorStatus string

const (
	VendorProcessing VendorStatus = "Processing"
	VendorDelivered  VendorStatus = "Delivered"
)

// Valid reports whether v is a known vendor sub-status.
func (v VendorStatus) Valid() bool {
	return v == VendorProcessing || v == VendorDelivered
}
