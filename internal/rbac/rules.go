package rbac

const (
	RoleEditor  = "editor"
	RoleLearner = "learner"
)

// RolePermissions is the default policy. Editors maintain the question bank,
// learners only run sessions.
var RolePermissions = map[string][]string{
	RoleLearner: {
		"session:*",
		"question:answers",
		"question:count",
		"question:stats",
		"history:view",
	},
	RoleEditor: {
		"*",
	},
}
