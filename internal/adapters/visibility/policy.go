// Package visibility decides which exchanges and tasks a restricted role
// may see. Ownership rules are expr-lang expressions over the viewer and
// the record, so deployments can change them in configuration.
package visibility

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/exchange-dash/internal/domain"
	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

const (
	DefaultExchangeRule = `exchange.clientId == viewer.userId || exchange.coordinatorId == viewer.userId || viewer.userId in exchange.participantIds`
	DefaultTaskRule     = `task.assignedTo == viewer.userId || task.createdBy == viewer.userId`
)

var DefaultElevatedRoles = []string{string(domain.RoleAdmin)}

type Config struct {
	ElevatedRoles []string
	ExchangeRule  string
	TaskRule      string
}

type viewerEnv struct {
	Role   string `expr:"role"`
	UserID string `expr:"userId"`
}

type exchangeEnv struct {
	ID             string   `expr:"id"`
	Name           string   `expr:"name"`
	Status         string   `expr:"status"`
	CoordinatorID  string   `expr:"coordinatorId"`
	ClientID       string   `expr:"clientId"`
	ParticipantIDs []string `expr:"participantIds"`
}

type taskEnv struct {
	ID         string `expr:"id"`
	Status     string `expr:"status"`
	Priority   string `expr:"priority"`
	AssignedTo string `expr:"assignedTo"`
	CreatedBy  string `expr:"createdBy"`
	ExchangeID string `expr:"exchangeId"`
}

type exchangeRuleEnv struct {
	Viewer   viewerEnv   `expr:"viewer"`
	Exchange exchangeEnv `expr:"exchange"`
}

type taskRuleEnv struct {
	Viewer viewerEnv `expr:"viewer"`
	Task   taskEnv   `expr:"task"`
}

// Policy implements domain.Visibility with compiled ownership rules.
type Policy struct {
	elevated map[domain.Role]struct{}
	exchange *exprvm.Program
	task     *exprvm.Program
}

var _ domain.Visibility = (*Policy)(nil)

func New(cfg Config) (*Policy, error) {
	roles := cfg.ElevatedRoles
	if len(roles) == 0 {
		roles = DefaultElevatedRoles
	}
	elevated := make(map[domain.Role]struct{}, len(roles))
	for _, role := range roles {
		if normalized := domain.Role(role).Normalize(); normalized != "" {
			elevated[normalized] = struct{}{}
		}
	}

	exchangeRule := ruleOrDefault(cfg.ExchangeRule, DefaultExchangeRule)
	exchange, err := exprlang.Compile(exchangeRule, exprlang.Env(exchangeRuleEnv{}), exprlang.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile exchange visibility rule: %w", err)
	}

	taskRule := ruleOrDefault(cfg.TaskRule, DefaultTaskRule)
	task, err := exprlang.Compile(taskRule, exprlang.Env(taskRuleEnv{}), exprlang.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile task visibility rule: %w", err)
	}

	return &Policy{elevated: elevated, exchange: exchange, task: task}, nil
}

func (p *Policy) Elevated(role domain.Role) bool {
	_, ok := p.elevated[role.Normalize()]
	return ok
}

func (p *Policy) ExchangeVisible(viewer domain.Viewer, exchange domain.Exchange) (bool, error) {
	if viewer.UserID == "" {
		return false, nil
	}

	env := exchangeRuleEnv{
		Viewer: toViewerEnv(viewer),
		Exchange: exchangeEnv{
			ID:             exchange.ID,
			Name:           exchange.Name,
			Status:         string(exchange.Status),
			CoordinatorID:  exchange.CoordinatorID,
			ClientID:       exchange.ClientID,
			ParticipantIDs: exchange.ParticipantIDs,
		},
	}
	return run(p.exchange, env, "exchange", exchange.ID)
}

func (p *Policy) TaskVisible(viewer domain.Viewer, task domain.Task) (bool, error) {
	if viewer.UserID == "" {
		return false, nil
	}

	env := taskRuleEnv{
		Viewer: toViewerEnv(viewer),
		Task: taskEnv{
			ID:         task.ID,
			Status:     string(task.Status),
			Priority:   string(task.Priority),
			AssignedTo: task.AssignedTo,
			CreatedBy:  task.CreatedBy,
			ExchangeID: task.ExchangeID,
		},
	}
	return run(p.task, env, "task", task.ID)
}

func run(program *exprvm.Program, env any, kind string, id string) (bool, error) {
	out, err := exprlang.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate %s visibility for %q: %w", kind, id, err)
	}

	visible, ok := out.(bool)
	if !ok {
		return false, errors.New("visibility rule did not return a boolean")
	}
	return visible, nil
}

func toViewerEnv(viewer domain.Viewer) viewerEnv {
	return viewerEnv{Role: string(viewer.Role.Normalize()), UserID: viewer.UserID}
}

func ruleOrDefault(rule string, fallback string) string {
	if rule = strings.TrimSpace(rule); rule != "" {
		return rule
	}
	return fallback
}
