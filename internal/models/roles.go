package models

import "strings"

// RoleKey identifies an access role in the host system's hierarchy.
type RoleKey string

const (
	RoleViewer   RoleKey = "viewer"
	RoleUser     RoleKey = "user"
	RoleApprover RoleKey = "approver"
	RoleFinance  RoleKey = "finance"
	RoleManager  RoleKey = "manager"
	RoleAdmin    RoleKey = "admin"
)

// DefaultRole is assigned when a viewer carries no recognizable role.
const DefaultRole = RoleViewer

// OperationalRole is the functional team a user belongs to, independent of
// their access role.
type OperationalRole string

const (
	OpsFinance    OperationalRole = "finance"
	OpsOperations OperationalRole = "operations"
	OpsProduct    OperationalRole = "product"
	OpsPeople     OperationalRole = "people"
	OpsAdmin      OperationalRole = "admin"
)

// RoleDefinition describes one role: its rank in the hierarchy, the roles it
// inherits and the capabilities it grants.
type RoleDefinition struct {
	ID           RoleKey   `json:"id"`
	Label        string    `json:"label"`
	Description  string    `json:"description"`
	Inherits     []RoleKey `json:"inherits"`
	Capabilities []string  `json:"capabilities"`
	Rank         int       `json:"rank"`
}

var roleDefinitions = map[RoleKey]RoleDefinition{
	RoleViewer: {
		ID:           RoleViewer,
		Label:        "Gözlemci",
		Description:  "Sadece izleme yetkisine sahip kullanıcı.",
		Inherits:     nil,
		Capabilities: []string{"read"},
		Rank:         0,
	},
	RoleUser: {
		ID:           RoleUser,
		Label:        "Operasyon Uzmanı",
		Description:  "Operasyonel kayıtları oluşturabilir ve güncelleyebilir.",
		Inherits:     []RoleKey{RoleViewer},
		Capabilities: []string{"read", "create", "update"},
		Rank:         1,
	},
	RoleApprover: {
		ID:           RoleApprover,
		Label:        "Onay Yetkilisi",
		Description:  "Operasyonel talepleri inceleyip onaylayabilir.",
		Inherits:     []RoleKey{RoleUser},
		Capabilities: []string{"read", "create", "update", "approve"},
		Rank:         2,
	},
	RoleFinance: {
		ID:           RoleFinance,
		Label:        "Finans Kontrolörü",
		Description:  "Finansal kayıtlar için ikinci derece onay verir.",
		Inherits:     []RoleKey{RoleApprover},
		Capabilities: []string{"read", "create", "update", "approve", "finance-approve"},
		Rank:         3,
	},
	RoleManager: {
		ID:           RoleManager,
		Label:        "Birim Yöneticisi",
		Description:  "Departman seviyesinde nihai sorumluluk taşır.",
		Inherits:     []RoleKey{RoleApprover},
		Capabilities: []string{"read", "create", "update", "approve", "delegate"},
		Rank:         3,
	},
	RoleAdmin: {
		ID:           RoleAdmin,
		Label:        "Sistem Yöneticisi",
		Description:  "Tüm modüller üzerinde tam yetkiye sahiptir.",
		Inherits:     []RoleKey{RoleManager, RoleFinance},
		Capabilities: []string{"read", "create", "update", "approve", "delegate", "admin"},
		Rank:         4,
	},
}

// GetRoleDefinition returns the definition for a role, or false when unknown.
func GetRoleDefinition(role RoleKey) (RoleDefinition, bool) {
	def, ok := roleDefinitions[role]
	return def, ok
}

// ListRoles returns all role definitions ordered by rank, then ID.
func ListRoles() []RoleDefinition {
	out := make([]RoleDefinition, 0, len(roleDefinitions))
	for _, key := range []RoleKey{RoleViewer, RoleUser, RoleApprover, RoleFinance, RoleManager, RoleAdmin} {
		out = append(out, roleDefinitions[key])
	}
	return out
}

// ResolveInheritedRoles returns the transitive closure of roles inherited by
// the given role, excluding the role itself.
func ResolveInheritedRoles(role RoleKey) []RoleKey {
	visited := map[RoleKey]bool{}
	var out []RoleKey
	var walk func(r RoleKey)
	walk = func(r RoleKey) {
		def, ok := roleDefinitions[r]
		if !ok || visited[r] {
			return
		}
		visited[r] = true
		for _, parent := range def.Inherits {
			if !visited[parent] {
				out = append(out, parent)
				walk(parent)
			}
		}
	}
	walk(role)
	return out
}

// IsRoleAtLeast reports whether subject satisfies a requirement of required.
// A role satisfies itself and every role it transitively inherits. Equal rank
// alone is not enough: finance does not satisfy manager or vice versa, only
// admin dominates both branches.
func IsRoleAtLeast(subject, required RoleKey) bool {
	if required == "" {
		return true
	}
	if subject == "" {
		return false
	}
	if subject == required {
		return true
	}
	if _, ok := roleDefinitions[subject]; !ok {
		return false
	}
	for _, inherited := range ResolveInheritedRoles(subject) {
		if inherited == required {
			return true
		}
	}
	return false
}

// NormalizeRole maps free-form role input onto a known role key, defaulting
// to viewer.
func NormalizeRole(role string) RoleKey {
	key := RoleKey(strings.ToLower(strings.TrimSpace(role)))
	if _, ok := roleDefinitions[key]; ok {
		return key
	}
	return DefaultRole
}
