package rbac

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

type RolePermissionRow struct {
	Role     string
	Resource string
	Action   string
}

type RoleInheritanceRow struct {
	Role   string
	Parent string // Role inherits every permission of Parent
}

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetRolePermissions() ([]RolePermissionRow, error)
	GetRoleInheritance() ([]RoleInheritanceRow, error)
}

type staticRepository struct{}

// NewStaticRepository serves the built-in policy table.
func NewStaticRepository() Repository {
	return staticRepository{}
}

func (staticRepository) GetRolePermissions() ([]RolePermissionRow, error) {
	return []RolePermissionRow{
		{RoleEmployee, "user", "read_self"},
		{RoleEmployee, "location", "read"},
		{RoleEmployee, "time_entry", "clock"},
		{RoleEmployee, "time_entry", "read_own"},
		{RoleEmployee, "vacation", "create"},
		{RoleEmployee, "vacation", "read_own"},
		{RoleEmployee, "vacation", "update_own"},
		{RoleEmployee, "vacation", "cancel_own"},
		{RoleEmployee, "notification", "read"},
		{RoleEmployee, "rbac", "read"},

		{RoleManager, "time_entry", "read_all"},
		{RoleManager, "time_entry", "update"},
		{RoleManager, "time_entry", "export"},
		{RoleManager, "vacation", "read_all"},
		{RoleManager, "vacation", "approve"},

		{RoleAdmin, "user", "manage"},
		{RoleAdmin, "location", "manage"},
	}, nil
}

func (staticRepository) GetRoleInheritance() ([]RoleInheritanceRow, error) {
	return []RoleInheritanceRow{
		{Role: RoleManager, Parent: RoleEmployee},
		{Role: RoleAdmin, Parent: RoleManager},
	}, nil
}
