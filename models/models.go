package models

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&Customer{},
		&Product{},
		&RawMaterial{},
		&Order{},
		&OrderItem{},
		&Asset{},
		&MaintenanceTask{},
		&ChecklistItem{},
		&Notification{},
	}
}
