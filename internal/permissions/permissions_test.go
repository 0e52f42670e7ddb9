package permissions

import (
	"testing"

	"gorm.io/datatypes"
)

func TestAllowedGrantsOnlyHeldPermissions(t *testing.T) {
	t.Parallel()

	granted := []string{ManageEvents, ManageTags}

	if !Allowed(RoleAdmin, granted, ManageEvents) {
		t.Fatal("expected held permission to be allowed")
	}
	if Allowed(RoleAdmin, granted, ManageAdmins) {
		t.Fatal("expected missing permission to be denied")
	}
}

func TestAllowedSuperAdminBypassesStoredSet(t *testing.T) {
	t.Parallel()

	for _, permission := range All {
		if !Allowed(RoleSuperAdmin, nil, permission) {
			t.Fatalf("expected super admin to hold %q with empty stored set", permission)
		}
	}
}

func TestAllowedFailsClosed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		role       string
		granted    []string
		permission string
	}{
		{"empty role", "", []string{ManageEvents}, ManageEvents},
		{"unknown role", "editor", []string{ManageEvents}, ManageEvents},
		{"empty permission", RoleAdmin, []string{ManageEvents}, ""},
		{"nil granted", RoleCoordinator, nil, ManageEvents},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if Allowed(tc.role, tc.granted, tc.permission) {
				t.Fatalf("expected denial for role=%q granted=%v permission=%q", tc.role, tc.granted, tc.permission)
			}
		})
	}
}

func TestRoleDefaultsUnknownRoleIsEmpty(t *testing.T) {
	t.Parallel()

	if got := RoleDefaults("bogus"); len(got) != 0 {
		t.Fatalf("expected empty defaults for unknown role, got %v", got)
	}
}

func TestRoleDefaultsReturnsCopy(t *testing.T) {
	t.Parallel()

	first := RoleDefaults(RoleTreasurer)
	first[0] = "mutated"
	second := RoleDefaults(RoleTreasurer)
	if second[0] == "mutated" {
		t.Fatal("RoleDefaults must not share backing storage with callers")
	}
}

func TestNormalizeDeduplicatesAndSorts(t *testing.T) {
	t.Parallel()

	got := Normalize([]string{" Manage_Events ", "manage_tags", "manage_events", ""})
	want := []string{"manage_events", "manage_tags"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestValidateRejectsUnknownKeys(t *testing.T) {
	t.Parallel()

	if err := Validate([]string{ManageEvents, "launch_missiles"}); err == nil {
		t.Fatal("expected unknown permission to be rejected")
	}
	if err := Validate(All); err != nil {
		t.Fatalf("expected full known set to validate, got %v", err)
	}
}

func TestParseMalformedColumnFailsClosed(t *testing.T) {
	t.Parallel()

	if got := Parse(datatypes.JSON(`{"not":"a list"}`)); got != nil {
		t.Fatalf("expected nil permission set for malformed column, got %v", got)
	}
	if got := Parse(nil); got != nil {
		t.Fatalf("expected nil permission set for empty column, got %v", got)
	}

	got := Parse(datatypes.JSON(`["manage_events","MANAGE_EVENTS"]`))
	if len(got) != 1 || got[0] != ManageEvents {
		t.Fatalf("expected normalized single permission, got %v", got)
	}
}
