package commands

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	appconfig "github.com/dkessel/bomorder/internal/config"
	"github.com/dkessel/bomorder/pkg/application/services/planning"
	"github.com/dkessel/bomorder/pkg/domain/entities"
	"github.com/dkessel/bomorder/pkg/infrastructure/repositories/csv"
	"github.com/dkessel/bomorder/pkg/infrastructure/repositories/memory"
	"github.com/dkessel/bomorder/pkg/interfaces/cli/output"
)

// Config holds configuration for the plan command
type Config struct {
	PartsFile     string
	PosedFile     string
	CatalogFile   string
	ShippingFile  string
	InventoryFile string
	ConfigFile    string
	OutputDir     string
	Format        string
	Verbose       bool
	Help          bool
}

// PlanCommand handles the main planning execution logic
type PlanCommand struct {
	config Config
	logger *zap.Logger
}

// NewPlanCommand creates a new plan command with the given configuration
func NewPlanCommand(config Config, logger *zap.Logger) *PlanCommand {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanCommand{
		config: config,
		logger: logger,
	}
}

// Execute runs the plan command
func (c *PlanCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	optimizerConfig := planning.DefaultConfig()
	if c.config.ConfigFile != "" {
		appConf, err := appconfig.LoadConfiguration(c.config.ConfigFile)
		if err != nil {
			return fmt.Errorf("error loading config file: %w", err)
		}
		optimizerConfig = toOptimizerConfig(appConf.Optimizer)
	}

	csvLoader := csv.NewLoader()

	parts, err := csvLoader.LoadParts(c.config.PartsFile)
	if err != nil {
		return fmt.Errorf("error loading parts: %w", err)
	}

	posed, err := csvLoader.LoadPosedParts(c.config.PosedFile)
	if err != nil {
		return fmt.Errorf("error loading posed parts: %w", err)
	}

	rows, err := csvLoader.LoadCatalog(c.config.CatalogFile)
	if err != nil {
		return fmt.Errorf("error loading catalog: %w", err)
	}

	partRepo := memory.NewPartRepository(len(parts))
	if err := partRepo.LoadParts(parts); err != nil {
		return fmt.Errorf("failed to load parts into repository: %w", err)
	}

	catalogRepo := memory.NewCatalogRepository(len(rows))
	if err := catalogRepo.LoadRows(rows); err != nil {
		return fmt.Errorf("failed to load catalog into repository: %w", err)
	}

	shippingRepo := memory.NewShippingRepository()
	if c.config.ShippingFile != "" {
		policies, err := csvLoader.LoadShippingPolicies(c.config.ShippingFile)
		if err != nil {
			return fmt.Errorf("error loading shipping policies: %w", err)
		}
		if err := shippingRepo.LoadPolicies(policies); err != nil {
			return fmt.Errorf("failed to load shipping policies into repository: %w", err)
		}
	}

	inventoryRepo := memory.NewInventoryRepository()
	if c.config.InventoryFile != "" {
		levels, err := csvLoader.LoadInventory(c.config.InventoryFile)
		if err != nil {
			return fmt.Errorf("error loading inventory: %w", err)
		}
		if err := inventoryRepo.LoadLevels(levels); err != nil {
			return fmt.Errorf("failed to load inventory into repository: %w", err)
		}
	}

	if c.config.Verbose {
		fmt.Printf("Loaded %d parts, %d posed parts, %d catalog rows\n\n",
			len(parts), len(posed), len(rows))
	}

	planner := planning.NewPlanner(
		partRepo,
		catalogRepo,
		shippingRepo,
		inventoryRepo,
		optimizerConfig,
		c.logger,
	)

	result, err := planner.Plan(ctx, posed)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	if c.config.OutputDir != "" {
		if err := os.MkdirAll(c.config.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	return output.Generate(result, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	})
}

// validateInputs checks that the required input files were provided
func (c *PlanCommand) validateInputs() error {
	if c.config.PartsFile == "" {
		return fmt.Errorf("parts file is required (-parts)")
	}
	if c.config.PosedFile == "" {
		return fmt.Errorf("posed parts file is required (-posed)")
	}
	if c.config.CatalogFile == "" {
		return fmt.Errorf("catalog file is required (-catalog)")
	}
	switch c.config.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid format: %s (expected text or json)", c.config.Format)
	}
	return nil
}

// toOptimizerConfig maps the loaded configuration onto optimizer settings,
// keeping defaults for anything unset
func toOptimizerConfig(conf appconfig.OptimizerConfig) planning.Config {
	cfg := planning.DefaultConfig()
	if conf.MaxExactVendors > 0 {
		cfg.MaxExactVendors = conf.MaxExactVendors
	}
	if conf.MaxSubsets > 0 {
		cfg.MaxSubsets = conf.MaxSubsets
	}
	if conf.Workers > 0 {
		cfg.Workers = conf.Workers
	}
	for _, vendor := range conf.ExcludedVendors {
		cfg.ExcludedVendors = append(cfg.ExcludedVendors, entities.VendorID(vendor))
	}
	return cfg
}

func (c *PlanCommand) showHelp() {
	fmt.Println(`bomorder - turn posed parts into minimal-cost vendor orders

Usage:
  bomorder -parts parts.csv -posed posed.csv -catalog catalog.csv [options]

Required:
  -parts     Part namespace CSV (Concrete/Alias/MultiPart/Fractional definitions)
  -posed     Posed parts CSV (part name, placement count)
  -catalog   Catalog snapshot CSV (vendor offer rows per actual part)

Options:
  -shipping  Vendor shipping policy CSV
  -inventory On-hand inventory CSV, netted against demand
  -config    YAML config file (optimizer caps, excluded vendors, logging)
  -output    Output directory for JSON results
  -format    Output format: text, json (default text)
  -verbose   Print the optimizer decision trace
  -help      Show this message`)
}
