package models

// OrderStatus is the lifecycle stage of an order. Any status may be set from any other.
type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "Pending"
	OrderStatusUnderProduction  OrderStatus = "Under Production"
	OrderStatusReadyForDispatch OrderStatus = "Ready for Dispatch"
	OrderStatusCompleted        OrderStatus = "Completed"
)

// OrderStatuses lists every order status in lifecycle order
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusUnderProduction,
	OrderStatusReadyForDispatch,
	OrderStatusCompleted,
}

// Valid reports whether s is one of the known order statuses
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// MaintenanceStatus is the progress of a maintenance task. Transitions are unconstrained.
type MaintenanceStatus string

const (
	MaintenanceStatusScheduled  MaintenanceStatus = "Scheduled"
	MaintenanceStatusInProgress MaintenanceStatus = "In Progress"
	MaintenanceStatusCompleted  MaintenanceStatus = "Completed"
)

var MaintenanceStatuses = []MaintenanceStatus{
	MaintenanceStatusScheduled,
	MaintenanceStatusInProgress,
	MaintenanceStatusCompleted,
}

func (s MaintenanceStatus) Valid() bool {
	for _, known := range MaintenanceStatuses {
		if s == known {
			return true
		}
	}
	return false
}
