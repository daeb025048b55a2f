package authz

import (
	"fmt"

	"github.com/vrlab-next/internal/constants"
)

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds 系统预置角色矩阵
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.DefaultAdminRole,
			Policies: []Policy{
				{Object: "/admin/*", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "training_manager",
			Inherits: []string{constants.DefaultAdminRole},
			Policies: []Policy{
				{Object: "/admin/courses", Action: "*"},
				{Object: "/admin/courses/:id", Action: "*"},
				{Object: "/admin/courses/:id/modules", Action: "*"},
				{Object: "/admin/courses/:id/modules/resequence", Action: "*"},
				{Object: "/admin/course-modules/:id", Action: "*"},
				{Object: "/admin/virtual-users", Action: "*"},
				{Object: "/admin/virtual-users/:id", Action: "*"},
				{Object: "/admin/enrollments", Action: "*"},
				{Object: "/admin/enrollments/:id", Action: "*"},
				{Object: "/admin/organizations", Action: "*"},
				{Object: "/admin/organizations/:id", Action: "*"},
			},
			Immutable: true,
		},
		{
			Role:     "device_operator",
			Inherits: []string{constants.DefaultAdminRole},
			Policies: []Policy{
				{Object: "/admin/devices", Action: "*"},
				{Object: "/admin/devices/:id", Action: "*"},
				{Object: "/admin/alerts", Action: "GET"},
				{Object: "/admin/alerts/:id/acknowledge", Action: "POST"},
				{Object: "/admin/alerts/:id/resolve", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role:     "analyst",
			Inherits: []string{constants.DefaultAdminRole},
			Policies: []Policy{
				{Object: "/admin/dashboard/*", Action: "GET"},
				{Object: "/admin/training-sessions", Action: "GET"},
				{Object: "/admin/training-sessions/:id", Action: "GET"},
				{Object: "/admin/login-logs", Action: "GET"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles 初始化预置角色与默认策略
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
		if err != nil {
			return fmt.Errorf("check builtin role failed: %w", err)
		}
		if !exists {
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor); err != nil {
				return fmt.Errorf("create builtin role failed: %w", err)
			}
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}

		for _, policy := range seed.Policies {
			action := NormalizeAction(policy.Action)
			if action == "" {
				return fmt.Errorf("builtin policy action is required")
			}
			if _, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), action); err != nil {
				return fmt.Errorf("add builtin policy failed: %w", err)
			}
		}
	}

	return nil
}
