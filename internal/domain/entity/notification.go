package entity

import "time"

// Notification is a workflow message addressed to one or more departments
type Notification struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Message     string       `json:"message"`
	OrderID     string       `json:"order_id,omitempty"`
	Departments []Department `json:"departments"`
	Priority    Priority     `json:"priority"`
	CreatedAt   time.Time    `json:"created_at"`
	ReadBy      []string     `json:"read_by,omitempty"`
}

// AddressedTo reports whether the notification targets the department
func (n *Notification) AddressedTo(d Department) bool {
	for _, dep := range n.Departments {
		if dep == d {
			return true
		}
	}
	return false
}

// IsReadBy reports whether the user has already read the notification
func (n *Notification) IsReadBy(userID string) bool {
	for _, id := range n.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}
