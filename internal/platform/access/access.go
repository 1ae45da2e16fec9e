package access

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// ロールから権限（object, action）への対応表。ロール継承は g で表す
const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Capabilities checked by handlers and middleware.
const (
	ObjDashboard   = "dashboard"
	ObjRequests    = "requests"
	ObjMaintenance = "maintenance"
	ObjAssets      = "assets"
	ObjUsers       = "users"

	ActStats   = "stats"
	ActRecent  = "recent"
	ActProcess = "process"
	ActManage  = "manage"
)

var defaultPolicy = [][]string{
	{"user", ObjDashboard, ActStats},
	{"petugas", ObjDashboard, ActRecent},
	{"petugas", ObjRequests, ActProcess},
	{"petugas", ObjMaintenance, ActProcess},
	{"petugas", ObjAssets, ActManage},
	{"admin", ObjUsers, ActManage},
}

var defaultGrouping = [][]string{
	{"petugas", "user"},
	{"admin", "petugas"},
}

// Checker はロールの権限判定。テストでは差し替える
type Checker interface {
	Can(role, obj, act string) bool
}

type Enforcer struct{ e *casbin.Enforcer }

func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("load casbin model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	if _, err := e.AddPolicies(defaultPolicy); err != nil {
		return nil, fmt.Errorf("add policies: %w", err)
	}
	if _, err := e.AddGroupingPolicies(defaultGrouping); err != nil {
		return nil, fmt.Errorf("add grouping policies: %w", err)
	}
	return &Enforcer{e: e}, nil
}

// Can は判定エラーを拒否として扱う
func (x *Enforcer) Can(role, obj, act string) bool {
	if strings.TrimSpace(role) == "" {
		return false
	}
	ok, err := x.e.Enforce(role, obj, act)
	return err == nil && ok
}
