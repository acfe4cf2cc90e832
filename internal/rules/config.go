package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ohtostado/duperscooper/internal/model"
)

// yamlConfig is the on-disk shape of a custom rules file.
type yamlConfig struct {
	DefaultAction string      `yaml:"default_action"`
	Rules         []yamlRule  `yaml:"rules"`
}

type yamlRule struct {
	Name       string          `yaml:"name"`
	Priority   int             `yaml:"priority"`
	Action     string          `yaml:"action"`
	Logic      string          `yaml:"logic"`
	Conditions []yamlCondition `yaml:"conditions"`
}

type yamlCondition struct {
	Field    string      `yaml:"field"`
	Operator string      `yaml:"operator"`
	Value    interface{} `yaml:"value"`
}

// LoadConfig parses a user-provided declarative rules file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading rules config: %w", err)
	}
	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parsing rules config: %w", err)
	}

	cfg := Config{DefaultAction: model.ActionDelete}
	if raw.DefaultAction == string(model.ActionKeep) {
		cfg.DefaultAction = model.ActionKeep
	}

	for _, r := range raw.Rules {
		rule := Rule{
			Name:     r.Name,
			Priority: r.Priority,
			Action:   model.RecommendedAction(r.Action),
			Logic:    Logic(r.Logic),
		}
		if rule.Logic != LogicOr {
			rule.Logic = LogicAnd
		}
		for _, c := range r.Conditions {
			value := c.Value
			if list, ok := c.Value.([]interface{}); ok {
				value = list
			}
			rule.Conditions = append(rule.Conditions, Condition{
				Field:    Field(c.Field),
				Operator: Operator(c.Operator),
				Value:    value,
			})
		}
		cfg.Rules = append(cfg.Rules, rule)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
