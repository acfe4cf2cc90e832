package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohtostado/duperscooper/internal/model"
)

func item(values map[Field]interface{}) Item {
	return Item{Values: values}
}

func TestEvaluateOperatorAbsentField(t *testing.T) {
	ok, err := evaluateOperator(OpEq, nil, false, "flac")
	require.NoError(t, err)
	assert.False(t, ok, "absent field with == must evaluate false")

	ok, err = evaluateOperator(OpNeq, nil, false, "flac")
	require.NoError(t, err)
	assert.True(t, ok, "absent field with != must evaluate true")

	ok, err = evaluateOperator(OpIn, nil, false, []interface{}{"flac"})
	require.NoError(t, err)
	assert.False(t, ok, "absent field with 'in' must evaluate false")
}

func TestEvaluateOperatorComparisons(t *testing.T) {
	cases := []struct {
		op   Operator
		a, w interface{}
		want bool
	}{
		{OpEq, "flac", "flac", true},
		{OpEq, "flac", "mp3", false},
		{OpNeq, "flac", "mp3", true},
		{OpLt, 10.0, 20.0, true},
		{OpGt, 20.0, 10.0, true},
		{OpLte, 10.0, 10.0, true},
		{OpGte, 10.0, 10.0, true},
		{OpContains, "hello world", "world", true},
		{OpMatchesRegex, "track-001.flac", `^track-\d+\.flac$`, true},
	}
	for _, c := range cases {
		got, err := evaluateOperator(c.op, c.a, true, c.w)
		require.NoError(t, err, "op=%s", c.op)
		assert.Equal(t, c.want, got, "op=%s a=%v w=%v", c.op, c.a, c.w)
	}
}

func TestEvaluateOperatorInvalidRegex(t *testing.T) {
	_, err := evaluateOperator(OpMatchesRegex, "x", true, "(unterminated")
	require.Error(t, err)
	assert.IsType(t, ErrInvalidRegex{}, err)
}

func TestConfigValidateRejectsUnknownField(t *testing.T) {
	cfg := Config{Rules: []Rule{{
		Name: "bad", Priority: 1, Action: model.ActionDelete,
		Conditions: []Condition{{Field: "nonsense", Operator: OpEq, Value: "x"}},
	}}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.IsType(t, ErrUnknownField{}, err)
}

func TestConfigEvaluatePriorityOrder(t *testing.T) {
	cfg := Config{
		DefaultAction: model.ActionDelete,
		Rules: []Rule{
			{Name: "low", Priority: 1, Action: model.ActionDelete, Logic: LogicAnd,
				Conditions: []Condition{{Field: FieldIsLossless, Operator: OpEq, Value: true}}},
			{Name: "high", Priority: 100, Action: model.ActionKeep, Logic: LogicAnd,
				Conditions: []Condition{{Field: FieldIsLossless, Operator: OpEq, Value: true}}},
		},
	}
	action, name, err := cfg.Evaluate(item(map[Field]interface{}{FieldIsLossless: true}))
	require.NoError(t, err)
	assert.Equal(t, "high", name, "expected the higher-priority rule to win")
	assert.Equal(t, model.ActionKeep, action)
}

func TestConfigEvaluateDefaultActionWhenNoRuleMatches(t *testing.T) {
	cfg := Config{DefaultAction: model.ActionDelete}
	action, name, err := cfg.Evaluate(item(nil))
	require.NoError(t, err)
	assert.Equal(t, "default", name)
	assert.Equal(t, model.ActionDelete, action)
}

func TestBuiltinEliminateDuplicatesKeepsOnlyBest(t *testing.T) {
	cfg := BuiltinEliminateDuplicates()
	action, _, _ := cfg.Evaluate(item(map[Field]interface{}{FieldIsBest: true}))
	assert.Equal(t, model.ActionKeep, action, "expected best item to be kept")

	action, _, _ = cfg.Evaluate(item(map[Field]interface{}{FieldIsBest: false}))
	assert.Equal(t, model.ActionDelete, action, "expected non-best item to be deleted")
}
