package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Config holds all configuration
type Config struct {
	Variables []Variable
	Models    []Model
	Sheet     *SheetConfig
	Executor  *ExecutorConfig
	Rewriter  *RewriterConfig
	Sync      *SyncConfig
	Storage   *StorageConfig
	Commander *CommanderConfig

	// ResolvedVars holds the resolved variable values for runtime use
	ResolvedVars map[string]cty.Value
}

func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// LoadAndValidate loads the config and validates all components
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all config components are valid
func (c *Config) Validate() error {
	for _, v := range c.Variables {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("variable '%s': %w", v.Name, err)
		}
	}

	for _, m := range c.Models {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("model '%s': %w", m.Name, err)
		}
	}

	if c.Sheet == nil {
		return fmt.Errorf("a sheet block is required")
	}
	if err := c.Sheet.Validate(); err != nil {
		return fmt.Errorf("sheet: %w", err)
	}

	if c.Executor == nil {
		return fmt.Errorf("an executor block is required")
	}
	if err := c.Executor.Validate(); err != nil {
		return fmt.Errorf("executor '%s': %w", c.Executor.Kind, err)
	}

	if c.Rewriter == nil {
		return fmt.Errorf("a rewriter block is required")
	}
	if err := c.Rewriter.Validate(); err != nil {
		return fmt.Errorf("rewriter: %w", err)
	}
	if _, _, err := c.ResolveModel(c.Rewriter.Model); err != nil {
		return fmt.Errorf("rewriter: %w", err)
	}

	if err := c.Sync.Validate(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	if c.Commander != nil {
		if err := c.Commander.Validate(); err != nil {
			return fmt.Errorf("commander: %w", err)
		}
	}

	return nil
}

// ResolveModel finds the model block that allows the given model key
// (e.g. "gemini_2_0_flash") and returns it with the provider's model name.
func (c *Config) ResolveModel(key string) (*Model, string, error) {
	for i := range c.Models {
		m := &c.Models[i]
		for _, allowed := range m.AllowedModels {
			if allowed != key {
				continue
			}
			name, ok := SupportedModels[m.Provider][key]
			if !ok {
				return nil, "", fmt.Errorf("model '%s' is not supported for provider '%s'", key, m.Provider)
			}
			return m, name, nil
		}
	}
	return nil, "", fmt.Errorf("model '%s' not found in any model block", key)
}

func LoadFile(filename string) (*Config, error) {
	return loadFromFiles([]string{filename})
}

func LoadDir(dir string) (*Config, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.hcl"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %s", dir)
	}
	return loadFromFiles(files)
}

// parsedBlocks holds all blocks extracted from a file in one pass
type parsedBlocks struct {
	Variables []*hcl.Block
	Models    []*hcl.Block
	Others    []*hcl.Block
}

// loadFromFiles implements staged loading: variables → models → everything else
func loadFromFiles(files []string) (*Config, error) {
	parser := hclparse.NewParser()
	var allParsedBlocks []parsedBlocks

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parse %s: %w", file, diags)
		}

		content, diags := hclFile.Body.Content(&hcl.BodySchema{
			Blocks: []hcl.BlockHeaderSchema{
				{Type: "variable", LabelNames: []string{"name"}},
				{Type: "model", LabelNames: []string{"name"}},
				{Type: "sheet"},
				{Type: "executor", LabelNames: []string{"kind"}},
				{Type: "rewriter"},
				{Type: "sync"},
				{Type: "storage"},
				{Type: "commander"},
			},
		})
		if diags.HasErrors() {
			return nil, fmt.Errorf("content %s: %w", file, diags)
		}

		var pb parsedBlocks
		for _, block := range content.Blocks {
			switch block.Type {
			case "variable":
				pb.Variables = append(pb.Variables, block)
			case "model":
				pb.Models = append(pb.Models, block)
			default:
				pb.Others = append(pb.Others, block)
			}
		}
		allParsedBlocks = append(allParsedBlocks, pb)
	}

	// Stage 1: Load variables (no context needed)
	var allVars []Variable
	for _, pb := range allParsedBlocks {
		for _, block := range pb.Variables {
			var v Variable
			v.Name = block.Labels[0]
			diags := gohcl.DecodeBody(block.Body, nil, &v)
			if diags.HasErrors() {
				return nil, fmt.Errorf("decode variable %s: %w", v.Name, diags)
			}
			allVars = append(allVars, v)
		}
	}

	varsCtx, resolvedVars := buildVarsContext(allVars)

	// Stage 2: Load models (with vars context)
	var allModels []Model
	for _, pb := range allParsedBlocks {
		for _, block := range pb.Models {
			var m Model
			m.Name = block.Labels[0]
			diags := gohcl.DecodeBody(block.Body, varsCtx, &m)
			if diags.HasErrors() {
				return nil, fmt.Errorf("decode model %s: %w", m.Name, diags)
			}
			allModels = append(allModels, m)
		}
	}

	modelsCtx := buildModelsContext(varsCtx, allModels)

	// Stage 3: Singleton blocks (with vars + models context)
	cfg := &Config{
		Variables:    allVars,
		Models:       allModels,
		ResolvedVars: resolvedVars,
	}
	for _, pb := range allParsedBlocks {
		for _, block := range pb.Others {
			if err := cfg.decodeSingleton(block, modelsCtx); err != nil {
				return nil, err
			}
		}
	}

	if cfg.Sync == nil {
		cfg.Sync = &SyncConfig{}
	}
	if cfg.Storage == nil {
		cfg.Storage = &StorageConfig{}
	}
	cfg.Sync.Defaults()
	cfg.Storage.Defaults()
	if cfg.Sheet != nil {
		cfg.Sheet.Defaults()
	}
	if cfg.Executor != nil {
		cfg.Executor.Defaults()
	}
	if cfg.Commander != nil {
		cfg.Commander.Defaults()
	}

	return cfg, nil
}

// decodeSingleton decodes one of the blocks that may appear at most once
func (c *Config) decodeSingleton(block *hcl.Block, ctx *hcl.EvalContext) error {
	duplicate := func() error {
		return fmt.Errorf("%s: duplicate %s block", block.DefRange.String(), block.Type)
	}

	var target any
	switch block.Type {
	case "sheet":
		if c.Sheet != nil {
			return duplicate()
		}
		c.Sheet = &SheetConfig{}
		target = c.Sheet
	case "executor":
		if c.Executor != nil {
			return duplicate()
		}
		c.Executor = &ExecutorConfig{Kind: block.Labels[0]}
		target = c.Executor
	case "rewriter":
		if c.Rewriter != nil {
			return duplicate()
		}
		c.Rewriter = &RewriterConfig{}
		target = c.Rewriter
	case "sync":
		if c.Sync != nil {
			return duplicate()
		}
		c.Sync = &SyncConfig{}
		target = c.Sync
	case "storage":
		if c.Storage != nil {
			return duplicate()
		}
		c.Storage = &StorageConfig{}
		target = c.Storage
	case "commander":
		if c.Commander != nil {
			return duplicate()
		}
		c.Commander = &CommanderConfig{}
		target = c.Commander
	default:
		return fmt.Errorf("unexpected block type %q", block.Type)
	}

	if diags := gohcl.DecodeBody(block.Body, ctx, target); diags.HasErrors() {
		return fmt.Errorf("decode %s: %w", block.Type, diags)
	}
	return nil
}

// buildVarsContext creates context with just vars
func buildVarsContext(vars []Variable) (*hcl.EvalContext, map[string]cty.Value) {
	varsMap := make(map[string]cty.Value)
	fileVars, _ := LoadVarsFromFile()
	for _, v := range vars {
		varsMap[v.Name] = cty.StringVal(resolveWith(&v, fileVars))
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"vars": cty.ObjectVal(varsMap),
		},
	}, varsMap
}

// buildModelsContext adds models to existing context
func buildModelsContext(ctx *hcl.EvalContext, models []Model) *hcl.EvalContext {
	modelsMap := make(map[string]cty.Value)
	for _, m := range models {
		providerModels := make(map[string]cty.Value)
		for _, modelKey := range m.AllowedModels {
			providerModels[modelKey] = cty.StringVal(modelKey)
		}
		modelsMap[m.Name] = cty.ObjectVal(providerModels)
	}

	newVars := make(map[string]cty.Value)
	for k, v := range ctx.Variables {
		newVars[k] = v
	}
	newVars["models"] = cty.ObjectVal(modelsMap)

	return &hcl.EvalContext{
		Variables: newVars,
	}
}
