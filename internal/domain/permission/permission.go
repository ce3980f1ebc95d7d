// Package permission derives what a user may do from their role and department.
package permission

import (
	"sort"

	"github.com/garyjia/print-order-tracker/internal/domain/entity"
)

// Key names a single capability
type Key string

const (
	CreateOrders        Key = "create_orders"
	UpdateOrders        Key = "update_orders"
	DeleteOrders        Key = "delete_orders"
	ViewReports         Key = "view_reports"
	ManageUsers         Key = "manage_users"
	ForwardToDepartment Key = "forward_to_department"
	RequestApproval     Key = "request_approval"
	RespondToApproval   Key = "respond_to_approval"
	RecordPayment       Key = "record_payment"
	VerifyPayment       Key = "verify_payment"
	DispatchOrders      Key = "dispatch_orders"
	MarkReadyDispatch   Key = "mark_ready_dispatch"
	UpdateProduction    Key = "update_production"
	ViewAddressDetails  Key = "view_address_details"
)

// All lists every permission key
var All = []Key{
	CreateOrders,
	UpdateOrders,
	DeleteOrders,
	ViewReports,
	ManageUsers,
	ForwardToDepartment,
	RequestApproval,
	RespondToApproval,
	RecordPayment,
	VerifyPayment,
	DispatchOrders,
	MarkReadyDispatch,
	UpdateProduction,
	ViewAddressDetails,
}

var rolePermissions = map[entity.Role][]Key{
	entity.RoleManager: {CreateOrders, UpdateOrders, ViewReports, ViewAddressDetails},
	entity.RoleStaff:   {UpdateOrders},
}

var departmentPermissions = map[entity.Department][]Key{
	entity.DepartmentSales: {
		CreateOrders, ForwardToDepartment, VerifyPayment, DispatchOrders,
		RecordPayment, RespondToApproval, ViewAddressDetails,
	},
	entity.DepartmentDesign:     {RequestApproval, ForwardToDepartment},
	entity.DepartmentPrepress:   {RequestApproval, ForwardToDepartment},
	entity.DepartmentProduction: {MarkReadyDispatch, UpdateProduction},
	entity.DepartmentAdmin:      All,
}

// Set is an unordered collection of permission keys
type Set map[Key]struct{}

// Has reports whether the set contains the key
func (s Set) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Strings returns the keys sorted, for storage on the user record
func (s Set) Strings() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

// GetRolePermissions returns the permissions granted to a role within a department.
// Admin receives every key regardless of department.
func GetRolePermissions(role entity.Role, department entity.Department) Set {
	set := make(Set)
	if role == entity.RoleAdmin {
		for _, k := range All {
			set[k] = struct{}{}
		}
		return set
	}

	for _, k := range rolePermissions[role] {
		set[k] = struct{}{}
	}
	for _, k := range departmentPermissions[department] {
		set[k] = struct{}{}
	}
	return set
}

// Apply recomputes the stored permission list of a user
func Apply(u *entity.User) {
	if u == nil {
		return
	}
	u.Permissions = GetRolePermissions(u.Role, u.Department).Strings()
}

// HasPermission tests membership in the set derived from role and department,
// not the stored Permissions list. A nil user has no permissions.
func HasPermission(u *entity.User, k Key) bool {
	if u == nil {
		return false
	}
	return GetRolePermissions(u.Role, u.Department).Has(k)
}

// CanForwardToDepartment checks the fixed forwarding chain
func CanForwardToDepartment(u *entity.User, from, to entity.Department) bool {
	if u == nil || !to.IsWorkflow() || from == to {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	if !HasPermission(u, ForwardToDepartment) {
		return false
	}

	switch u.Department {
	case entity.DepartmentSales:
		return true
	case entity.DepartmentDesign:
		return from == entity.DepartmentDesign && to == entity.DepartmentPrepress
	case entity.DepartmentPrepress:
		return from == entity.DepartmentPrepress && to == entity.DepartmentProduction
	default:
		return false
	}
}

// CanRequestApprovalFromSales reports whether the user may pause work pending a Sales decision
func CanRequestApprovalFromSales(u *entity.User) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	switch u.Department {
	case entity.DepartmentDesign, entity.DepartmentPrepress:
		return HasPermission(u, RequestApproval)
	default:
		return false
	}
}

// CanRespondToApproval reports whether the user may approve or reject an approval request
func CanRespondToApproval(u *entity.User) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	return u.Department == entity.DepartmentSales && HasPermission(u, RespondToApproval)
}

// CanMarkReadyToDispatch requires a Production user and a fully paid order in Production
func CanMarkReadyToDispatch(u *entity.User, o *entity.Order) bool {
	if u == nil || o == nil {
		return false
	}
	if u.IsAdmin() {
		return true
	}
	return u.Department == entity.DepartmentProduction &&
		HasPermission(u, MarkReadyDispatch) &&
		o.CurrentDepartment == entity.DepartmentProduction &&
		o.IsPaid()
}

// CanVerify reports whether the user may verify a fully paid order
func CanVerify(u *entity.User, o *entity.Order) bool {
	if u == nil || o == nil || !o.IsPaid() {
		return false
	}
	return u.IsAdmin() || HasPermission(u, VerifyPayment)
}

// CanDispatch reports whether the user may dispatch a fully paid order
func CanDispatch(u *entity.User, o *entity.Order) bool {
	if u == nil || o == nil || !o.IsPaid() {
		return false
	}
	return u.IsAdmin() || HasPermission(u, DispatchOrders)
}

// CanViewAddressDetails reports whether delivery address and contact may be shown
func CanViewAddressDetails(u *entity.User, o *entity.Order) bool {
	if u == nil {
		return false
	}
	if u.IsAdmin() || HasPermission(u, ViewAddressDetails) || u.Department == entity.DepartmentSales {
		return true
	}
	return u.Department == entity.DepartmentProduction &&
		o != nil && o.Status == entity.OrderStatusReadyToDispatch
}
