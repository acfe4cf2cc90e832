package rules

import (
	"bytes"
	"fmt"

	"github.com/ohtostado/duperscooper/internal/logging"
	"github.com/ohtostado/duperscooper/internal/model"
	"github.com/ohtostado/duperscooper/internal/serialize"
	"github.com/ohtostado/duperscooper/internal/stage"
)

// LoadScanResult auto-detects the serialized shape (record-oriented JSON or
// flat CSV) and parses it.
func LoadScanResult(data []byte) (serialize.ScanResult, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return serialize.ReadJSON(data)
	}
	return serialize.ReadFlat(data)
}

// GroupPlan is one group's evaluated deletion plan.
type GroupPlan struct {
	GroupID    string     `json:"group_id"`
	Overridden bool       `json:"overridden,omitempty"` // true if a would-delete-everything rule outcome was overridden
	Items      []ItemPlan `json:"items"`
}

// ItemPlan is one item's evaluated action plus the rule that produced it.
type ItemPlan struct {
	Path        string                   `json:"path"`
	Size        int64                    `json:"size"`
	Action      model.RecommendedAction  `json:"action"`
	MatchedRule string                   `json:"matched_rule"`
}

// Report summarizes a dry-run or executed apply pass.
type Report struct {
	Groups          []GroupPlan
	TotalGroups     int
	TotalDeleted    int
	TotalDeletedSize int64
	Warnings        []string
}

// Plan evaluates cfg against every item of every group in result, never
// marking all items of a group for deletion: if a rule configuration would,
// the best item (is_best) is kept instead and a warning is recorded.
func Plan(result serialize.ScanResult, cfg Config) (Report, error) {
	report := Report{TotalGroups: len(result.Groups)}
	for _, g := range result.Groups {
		gp := GroupPlan{GroupID: g.GroupID}
		deleteCount := 0
		bestIdx := -1
		for i, it := range g.Items {
			if it.IsBest {
				bestIdx = i
			}
			item := ProjectSerialized(g, it)
			action, ruleName, err := cfg.Evaluate(item)
			if err != nil {
				return Report{}, fmt.Errorf("evaluating group %s: %w", g.GroupID, err)
			}
			gp.Items = append(gp.Items, ItemPlan{Path: it.Path, Size: it.Size, Action: action, MatchedRule: ruleName})
			if action == model.ActionDelete {
				deleteCount++
			}
		}

		if deleteCount == len(gp.Items) && len(gp.Items) > 0 {
			keepIdx := bestIdx
			if keepIdx < 0 {
				keepIdx = 0
			}
			gp.Items[keepIdx].Action = model.ActionKeep
			gp.Items[keepIdx].MatchedRule = "never-delete-all-override"
			gp.Overridden = true
			warning := fmt.Sprintf("group %s: rule configuration would delete every item, kept %s instead", g.GroupID, gp.Items[keepIdx].Path)
			report.Warnings = append(report.Warnings, warning)
			logging.Warn(warning)
		}

		for _, ip := range gp.Items {
			if ip.Action == model.ActionDelete {
				report.TotalDeleted++
				report.TotalDeletedSize += ip.Size
			}
		}
		report.Groups = append(report.Groups, gp)
	}
	return report, nil
}

// ExecuteOptions configures the staging call made when a plan is executed.
type ExecuteOptions struct {
	Root string
	Mode model.GroupMode
}

// Execute stages every item marked for deletion across the whole report in
// a single staging batch, matching the apply pipeline's "one batch per
// invocation" contract.
func Execute(report Report, opts ExecuteOptions) (batchUUID string, results []stage.ItemResult, err error) {
	var paths []string
	for _, g := range report.Groups {
		for _, it := range g.Items {
			if it.Action == model.ActionDelete {
				paths = append(paths, it.Path)
			}
		}
	}
	if len(paths) == 0 {
		return "", nil, nil
	}
	return stage.Stage(opts.Root, paths, opts.Mode)
}
