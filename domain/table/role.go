package table

// Role is the semantic classification of a column
type Role string

const (
	RoleTemporal     Role = "temporal"
	RoleNumeric      Role = "numeric"
	RoleCategorical  Role = "categorical"
	RoleUnclassified Role = "unclassified"
)

// ColumnRole pairs a column name with its role.
type ColumnRole struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Roles is a total role assignment in table column order.
type Roles []ColumnRole

// Role returns the role of name, or RoleUnclassified when name is unknown.
func (r Roles) Role(name string) Role {
	for _, cr := range r {
		if cr.Name == name {
			return cr.Role
		}
	}
	return RoleUnclassified
}

// Has reports whether name is part of the assignment.
func (r Roles) Has(name string) bool {
	for _, cr := range r {
		if cr.Name == name {
			return true
		}
	}
	return false
}

// Columns returns the names holding role, in column order.
func (r Roles) Columns(role Role) []string {
	var out []string
	for _, cr := range r {
		if cr.Role == role {
			out = append(out, cr.Name)
		}
	}
	return out
}

// Map returns the assignment as name -> role.
func (r Roles) Map() map[string]Role {
	m := make(map[string]Role, len(r))
	for _, cr := range r {
		m[cr.Name] = cr.Role
	}
	return m
}
