package domain

// Role identifies the kind of principal behind a user.
type Role string

const (
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// User represents a login-capable identity. Employee users share the employee ID.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Name     string `json:"name"`
}

func (u *User) IsManager() bool {
	return u != nil && u.Role == RoleManager
}

// Principal is the tagged union of the roles a session can act as.
type Principal interface {
	principal()
}

// ManagerPrincipal is a built-in account with no employee record.
type ManagerPrincipal struct{}

// EmployeePrincipal is backed by an employee record in the directory.
type EmployeePrincipal struct {
	EmployeeID string
}

func (ManagerPrincipal) principal()  {}
func (EmployeePrincipal) principal() {}

// PrincipalOf derives the principal of u. Unknown roles yield nil.
func PrincipalOf(u User) Principal {
	switch u.Role {
	case RoleManager:
		return ManagerPrincipal{}
	case RoleEmployee:
		return EmployeePrincipal{EmployeeID: u.ID}
	default:
		return nil
	}
}
