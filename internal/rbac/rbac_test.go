package rbac

import "testing"

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	cases := []struct {
		role, perm string
		want       bool
	}{
		{"child", "assessment:start", true},
		{"child", "practice:submit", true},
		{"child", "child:create", false},
		{"child", "content:import", false},
		{"parent", "child:token", true},
		{"parent", "rewards:spend", false},
		{"admin", "content:import", true},
		{"admin", "anything:at-all", true},
		{"", "assessment:start", false},
		{"unknown-role", "assessment:start", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestWildcardPrefix(t *testing.T) {
	c := NewChecker(map[string][]string{"ops": {"events:*"}})
	if !c.Has("ops", "events:view") {
		t.Error("prefix wildcard should grant events:view")
	}
	if c.Has("ops", "content:import") {
		t.Error("prefix wildcard must not leak to other scopes")
	}
}

func TestAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("parent", "rewards:spend", "child:view") {
		t.Error("Any should pass when one permission matches")
	}
	if c.Any("child", "child:create", "child:update") {
		t.Error("Any should fail when none match")
	}
}
