package service

import (
	"errors"
	"sort"

	"github.com/qs3c/vidgen_server/config"
	"github.com/qs3c/vidgen_server/internal/model"
)

var ErrUnknownPlan = errors.New("Invalid plan")

const DefaultPlanID = "basic"

// 内置套餐，可被配置覆盖
var defaultPlans = map[string]model.Plan{
	"basic": {ID: "basic", Name: "Basic", Price: 24.99, Credits: 5, MaxDuration: 6},
	"pro":   {ID: "pro", Name: "Pro", Price: 49.99, Credits: 15, MaxDuration: 10},
	"elite": {ID: "elite", Name: "Elite", Price: 99.99, Credits: 40, MaxDuration: 10},
}

// PlanCatalog 启动后只读
type PlanCatalog struct {
	plans map[string]model.Plan
}

func NewPlanCatalog(overrides map[string]config.PlanConfig) *PlanCatalog {
	plans := make(map[string]model.Plan, len(defaultPlans)+len(overrides))
	for id, p := range defaultPlans {
		plans[id] = p
	}

	for id, o := range overrides {
		p := plans[id]
		p.ID = id
		if o.Name != "" {
			p.Name = o.Name
		}
		if o.Price > 0 {
			p.Price = o.Price
		}
		if o.Credits > 0 {
			p.Credits = o.Credits
		}
		if o.MaxDuration > 0 {
			p.MaxDuration = o.MaxDuration
		}
		if p.Name == "" || p.Price <= 0 || p.Credits <= 0 {
			continue
		}
		plans[id] = p
	}

	return &PlanCatalog{plans: plans}
}

// Get 未知 id 返回 ErrUnknownPlan
func (c *PlanCatalog) Get(id string) (model.Plan, error) {
	p, ok := c.plans[id]
	if !ok {
		return model.Plan{}, ErrUnknownPlan
	}
	return p, nil
}

// GetOrDefault 结算页使用，未知 id 回落到 basic
func (c *PlanCatalog) GetOrDefault(id string) model.Plan {
	if p, ok := c.plans[id]; ok {
		return p
	}
	return c.plans[DefaultPlanID]
}

// List 按价格升序
func (c *PlanCatalog) List() []model.Plan {
	list := make([]model.Plan, 0, len(c.plans))
	for _, p := range c.plans {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Price == list[j].Price {
			return list[i].ID < list[j].ID
		}
		return list[i].Price < list[j].Price
	})
	return list
}
