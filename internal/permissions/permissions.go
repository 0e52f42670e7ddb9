package permissions

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gorm.io/datatypes"
)

// Admin roles.
const (
	RoleSuperAdmin  = "super_admin"
	RoleCoordinator = "coordinator"
	RoleTreasurer   = "treasurer"
	RoleAdmin       = "admin"
)

// Permission keys gating administrative action families.
const (
	ManageAdmins      = "manage_admins"
	ManageRoles       = "manage_roles"
	ManageEvents      = "manage_events"
	ManageVolunteers  = "manage_volunteers"
	ManageTeam        = "manage_team"
	ManageContent     = "manage_content"
	ManageEmpowerment = "manage_empowerments"
	ManageTags        = "manage_tags"
	ManageContacts    = "manage_contacts"
	ManageSettings    = "manage_settings"
	ManagePageImages  = "manage_page_images"
	ViewAuditLogs     = "view_audit_logs"
	ManageUploads     = "manage_uploads"
)

// All lists every known permission key in stable order.
var All = []string{
	ManageAdmins,
	ManageRoles,
	ManageEvents,
	ManageVolunteers,
	ManageTeam,
	ManageContent,
	ManageEmpowerment,
	ManageTags,
	ManageContacts,
	ManageSettings,
	ManagePageImages,
	ViewAuditLogs,
	ManageUploads,
}

var known = func() map[string]struct{} {
	m := make(map[string]struct{}, len(All))
	for _, p := range All {
		m[p] = struct{}{}
	}
	return m
}()

// roleDefaults maps each role to the permission set granted at provisioning
// time when no explicit set is supplied. Super admins bypass permission
// checks entirely, so their stored set is informational only.
var roleDefaults = map[string][]string{
	RoleSuperAdmin: All,
	RoleCoordinator: {
		ManageEvents, ManageVolunteers, ManageTeam, ManageContent,
		ManageEmpowerment, ManageTags, ManagePageImages, ManageUploads,
	},
	RoleTreasurer: {
		ManageContacts, ManageSettings, ViewAuditLogs,
	},
	RoleAdmin: {
		ManageEvents, ManageVolunteers, ManageTeam, ManageTags, ManageContacts,
	},
}

// ValidRole reports whether role is one of the known admin roles.
func ValidRole(role string) bool {
	switch role {
	case RoleSuperAdmin, RoleCoordinator, RoleTreasurer, RoleAdmin:
		return true
	}
	return false
}

// IsSuperAdmin reports whether role grants the implicit full permission set.
func IsSuperAdmin(role string) bool {
	return role == RoleSuperAdmin
}

// RoleDefaults returns a copy of the default permission set for a role.
// Unknown roles get no permissions (fail closed).
func RoleDefaults(role string) []string {
	defaults, ok := roleDefaults[role]
	if !ok {
		return nil
	}
	out := make([]string, len(defaults))
	copy(out, defaults)
	return out
}

// Allowed decides a permission check. Super admins hold every permission
// regardless of the stored set; everyone else needs the permission present.
// Empty or unknown role data denies.
func Allowed(role string, granted []string, permission string) bool {
	if permission == "" {
		return false
	}
	if IsSuperAdmin(role) {
		return true
	}
	if !ValidRole(role) {
		return false
	}
	for _, p := range granted {
		if p == permission {
			return true
		}
	}
	return false
}

// Normalize trims, lowercases, deduplicates and sorts a permission list.
func Normalize(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, p := range list {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Validate rejects lists containing unknown permission keys.
func Validate(list []string) error {
	for _, p := range list {
		if _, ok := known[p]; !ok {
			return fmt.Errorf("permissions: unknown permission %q", p)
		}
	}
	return nil
}

// Marshal encodes a permission list as JSON for storage.
func Marshal(list []string) ([]byte, error) {
	if list == nil {
		list = []string{}
	}
	return json.Marshal(list)
}

// Parse decodes a stored permission column. Malformed data yields an empty
// set so permission checks fail closed.
func Parse(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if errUnmarshal := json.Unmarshal(raw, &list); errUnmarshal != nil {
		return nil
	}
	return Normalize(list)
}
