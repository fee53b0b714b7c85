package wsbridge

import (
	"time"

	"enquirysync/config"
	"enquirysync/store"
)

// ConfigToInstanceConfig converts the HCL-based config into a JSON-safe InstanceConfig.
// Variable values are never included.
func ConfigToInstanceConfig(cfg *config.Config) InstanceConfig {
	ic := InstanceConfig{}

	if cfg.Sheet != nil {
		ic.SpreadsheetID = cfg.Sheet.SpreadsheetID
		ic.Range = cfg.Sheet.ReadRange()
		ic.Schema = cfg.Sheet.Schema
	}
	if cfg.Executor != nil {
		ic.Executor = cfg.Executor.Kind
	}
	if cfg.Rewriter != nil {
		ic.RewriteModel = cfg.Rewriter.Model
	}
	if cfg.Sync != nil {
		ic.Interval = int(cfg.Sync.IntervalDuration() / time.Second)
	}

	for _, m := range cfg.Models {
		model := ""
		if len(m.AllowedModels) > 0 {
			model = m.AllowedModels[0]
		}
		ic.Models = append(ic.Models, ModelInfo{
			Name:     m.Name,
			Provider: string(m.Provider),
			Model:    model,
		})
	}

	for _, v := range cfg.Variables {
		ic.Variables = append(ic.Variables, VariableInfo{
			Name:   v.Name,
			Secret: v.Secret,
		})
	}

	return ic
}

func cycleToInfo(c store.Cycle) CycleInfo {
	info := CycleInfo{
		ID:        c.ID,
		Status:    c.Status,
		Rows:      c.Rows,
		Selected:  c.Selected,
		Answered:  c.Answered,
		StartedAt: c.StartedAt.Format(time.RFC3339),
	}
	if c.Error != nil {
		info.Error = *c.Error
	}
	if c.FinishedAt != nil {
		f := c.FinishedAt.Format(time.RFC3339)
		info.FinishedAt = &f
	}
	return info
}

func attemptToInfo(a store.Attempt) AttemptInfo {
	info := AttemptInfo{
		ID:            a.ID,
		Row:           a.Row,
		Query:         a.Query,
		Stage:         a.Stage,
		Status:        a.Status,
		Soft:          a.Soft,
		AnswerPreview: a.AnswerPreview,
	}
	if a.Error != nil {
		info.Error = *a.Error
	}
	return info
}
