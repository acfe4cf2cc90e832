package rules

import (
	"fmt"
	"sort"

	"github.com/ohtostado/duperscooper/internal/model"
)

// Logic is the combinator applied across a rule's conditions.
type Logic string

const (
	LogicAnd Logic = "AND"
	LogicOr  Logic = "OR"
)

// Condition is a single (field, operator, value) test.
type Condition struct {
	Field    Field
	Operator Operator
	Value    interface{}
}

// Rule is named, priority-ordered, and assigns an action when its
// condition list evaluates true under its logic.
type Rule struct {
	Name       string
	Priority   int
	Action     model.RecommendedAction
	Logic      Logic
	Conditions []Condition
}

// Config is a declarative rule set plus the default action applied when no
// rule matches.
type Config struct {
	DefaultAction model.RecommendedAction
	Rules         []Rule
}

var validFields = map[Field]bool{
	FieldPath: true, FieldIsBest: true, FieldQualityScore: true, FieldFormat: true,
	FieldCodec: true, FieldBitrate: true, FieldSampleRate: true, FieldBitDepth: true,
	FieldIsLossless: true, FieldFileSize: true, FieldSimilarityToBest: true,
	FieldMatchPercentage: true, FieldMatchMethod: true, FieldTrackCount: true,
	FieldAlbumIdentifier: true, FieldAlbumName: true, FieldArtistName: true,
}

// Validate checks every condition references a known field and operator,
// and that every regex compiles, surfacing rules-config errors (category e:
// fatal before execution) as early as possible.
func (c Config) Validate() error {
	for _, r := range c.Rules {
		for _, cond := range r.Conditions {
			if !validFields[cond.Field] {
				return ErrUnknownField{Field: string(cond.Field)}
			}
			if _, err := evaluateOperator(cond.Operator, "", true, cond.Value); err != nil {
				if _, isOp := err.(ErrUnknownOperator); isOp {
					return err
				}
			}
			if cond.Operator == OpMatchesRegex {
				if pattern, ok := cond.Value.(string); ok {
					if _, err := evaluateOperator(OpMatchesRegex, "", true, pattern); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// Evaluate sorts rules by descending priority and returns the action of the
// first rule whose condition list evaluates true; if none match, the
// configuration's default action applies.
func (c Config) Evaluate(item Item) (model.RecommendedAction, string, error) {
	sorted := make([]Rule, len(c.Rules))
	copy(sorted, c.Rules)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })

	for _, r := range sorted {
		matched, err := evaluateConditions(r, item)
		if err != nil {
			return "", "", err
		}
		if matched {
			return r.Action, r.Name, nil
		}
	}
	return c.DefaultAction, "default", nil
}

func evaluateConditions(r Rule, item Item) (bool, error) {
	if len(r.Conditions) == 0 {
		return false, nil
	}
	results := make([]bool, len(r.Conditions))
	for i, cond := range r.Conditions {
		actual, present := item.Get(cond.Field)
		ok, err := evaluateOperator(cond.Operator, actual, present, cond.Value)
		if err != nil {
			return false, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		results[i] = ok
	}
	switch r.Logic {
	case LogicOr:
		for _, ok := range results {
			if ok {
				return true, nil
			}
		}
		return false, nil
	default: // AND
		for _, ok := range results {
			if !ok {
				return false, nil
			}
		}
		return true, nil
	}
}

// BuiltinEliminateDuplicates keeps iff is_best.
func BuiltinEliminateDuplicates() Config {
	return Config{
		DefaultAction: model.ActionDelete,
		Rules: []Rule{
			{
				Name: "keep-best", Priority: 100, Action: model.ActionKeep, Logic: LogicAnd,
				Conditions: []Condition{{Field: FieldIsBest, Operator: OpEq, Value: true}},
			},
		},
	}
}

// BuiltinKeepLossless keeps iff is_lossless.
func BuiltinKeepLossless() Config {
	return Config{
		DefaultAction: model.ActionDelete,
		Rules: []Rule{
			{
				Name: "keep-lossless", Priority: 100, Action: model.ActionKeep, Logic: LogicAnd,
				Conditions: []Condition{{Field: FieldIsLossless, Operator: OpEq, Value: true}},
			},
		},
	}
}

// BuiltinKeepFormat keeps iff format == f.
func BuiltinKeepFormat(f string) Config {
	return Config{
		DefaultAction: model.ActionDelete,
		Rules: []Rule{
			{
				Name: "keep-format", Priority: 100, Action: model.ActionKeep, Logic: LogicAnd,
				Conditions: []Condition{{Field: FieldFormat, Operator: OpEq, Value: f}},
			},
		},
	}
}
