package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)
	cases := []struct {
		role, perm string
		want       bool
	}{
		{RoleEditor, "question:create", true},
		{RoleEditor, "transfer:import", true},
		{RoleLearner, "session:next", true},
		{RoleLearner, "question:answers", true},
		{RoleLearner, "question:create", false},
		{RoleLearner, "question:delete", false},
		{"", "session:next", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Require("question:delete")(ok)

	for role, want := range map[string]int{RoleEditor: http.StatusNoContent, RoleLearner: http.StatusForbidden, "": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodDelete, "/questions/1", nil)
		req = req.WithContext(WithRole(context.Background(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("role %q: status %d, want %d", role, rec.Code, want)
		}
	}
}
