package main

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JaneliaSciComp/go-anndata/pkg/anndata"
	"github.com/JaneliaSciComp/go-anndata/pkg/config"
	"github.com/JaneliaSciComp/go-anndata/pkg/logger"
	"github.com/JaneliaSciComp/go-anndata/pkg/store"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	var configFile string

	root := &cobra.Command{
		Use:   "anndata",
		Short: "go-anndata - AnnData containers on hierarchical array stores",
		Long: `go-anndata inspects, validates, and creates AnnData containers stored as
compressed array hierarchies on the filesystem. Container layout and typing
follow the AnnData on-disk specification.`,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML/JSON configuration file (optional)")

	// Version command
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("go-anndata v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	// Init command
	var initStorePath, obsFile, varFile string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty AnnData container",
		Long: `Create an empty AnnData container at the given directory. Observation and
variable names are read from text files, one name per line.

Example:
  anndata init --store pbmc.n5 --obs barcodes.txt --var genes.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(configFile, initStorePath, obsFile, varFile)
		},
	}
	initCmd.Flags().StringVarP(&initStorePath, "store", "s", "", "Path to the container directory (required)")
	initCmd.Flags().StringVar(&obsFile, "obs", "", "Path to the observation names file (required)")
	initCmd.Flags().StringVar(&varFile, "var", "", "Path to the variable names file (required)")
	_ = initCmd.MarkFlagRequired("store")
	_ = initCmd.MarkFlagRequired("obs")
	_ = initCmd.MarkFlagRequired("var")
	root.AddCommand(initCmd)

	// Validate command
	var validateStorePath string
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that a directory holds a well-formed AnnData container",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(configFile, validateStorePath)
		},
	}
	validateCmd.Flags().StringVarP(&validateStorePath, "store", "s", "", "Path to the container directory (required)")
	_ = validateCmd.MarkFlagRequired("store")
	root.AddCommand(validateCmd)

	// Info command
	var infoStorePath string
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Summarize the contents of an AnnData container",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(configFile, infoStorePath)
		},
	}
	infoCmd.Flags().StringVarP(&infoStorePath, "store", "s", "", "Path to the container directory (required)")
	_ = infoCmd.MarkFlagRequired("store")
	root.AddCommand(infoCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration, initializes the logger, and opens the
// filesystem store.
func setup(configFile, storePath string) (*config.Config, *store.FS, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("configuration error: %w", err)
	}
	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return nil, nil, fmt.Errorf("logger initialization failed: %w", err)
	}

	fs, err := store.NewFS(storePath, cfg.CompressorConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store %s: %w", storePath, err)
	}
	return cfg, fs, nil
}

// readNames reads one name per line, skipping blank lines.
func readNames(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read names file %s: %w", filename, err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			names = append(names, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read names file %s: %w", filename, err)
	}
	return names, nil
}

func runInit(configFile, storePath, obsFile, varFile string) error {
	cfg, fs, err := setup(configFile, storePath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	obsNames, err := readNames(obsFile)
	if err != nil {
		return err
	}
	varNames, err := readNames(varFile)
	if err != nil {
		return err
	}

	log := logger.Get().With(zap.String("component", "anndata-cli"), zap.String("store", storePath))
	log.Info("initializing container",
		zap.Int("n_obs", len(obsNames)),
		zap.Int("n_var", len(varNames)),
		zap.String("compression", cfg.Compression.Algorithm))

	if err := anndata.Initialize(fs, obsNames, varNames); err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}

	fmt.Printf("Initialized AnnData container at %s (%d obs x %d var)\n",
		storePath, len(obsNames), len(varNames))
	return nil
}

func runValidate(configFile, storePath string) error {
	_, fs, err := setup(configFile, storePath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if !anndata.IsValid(fs) {
		return fmt.Errorf("%s is not a valid AnnData container", storePath)
	}
	fmt.Printf("%s is a valid AnnData container\n", storePath)
	return nil
}

func runInfo(configFile, storePath string) error {
	_, fs, err := setup(configFile, storePath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if !anndata.IsValid(fs) {
		return fmt.Errorf("%s is not a valid AnnData container", storePath)
	}

	nObs, err := anndata.NObs(fs)
	if err != nil {
		return fmt.Errorf("failed to read observation count: %w", err)
	}
	nVar, err := anndata.NVar(fs)
	if err != nil {
		return fmt.Errorf("failed to read variable count: %w", err)
	}

	fmt.Printf("AnnData container at %s\n", storePath)
	fmt.Printf("  %d observations x %d variables\n", nObs, nVar)

	xType, err := anndata.FieldTypeAt(fs, anndata.NewPath(anndata.FieldX))
	if err == nil && xType != anndata.TypeMissing {
		fmt.Printf("  X: %s\n", xType.Encoding())
	}

	for _, f := range []anndata.Field{anndata.FieldObs, anndata.FieldVar} {
		columns, err := anndata.DataFrameColumns(fs, anndata.NewPath(f))
		if err != nil {
			return fmt.Errorf("failed to list %s columns: %w", f, err)
		}
		fmt.Printf("  %s: %d columns %v\n", f, len(columns), columns)
	}

	for _, f := range []anndata.Field{
		anndata.FieldLayers, anndata.FieldObsm, anndata.FieldObsp,
		anndata.FieldVarm, anndata.FieldVarp, anndata.FieldUns,
	} {
		datasets, err := anndata.ListDatasets(fs, anndata.NewPath(f))
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", f, err)
		}
		if len(datasets) == 0 {
			continue
		}
		paths := make([]string, 0, len(datasets))
		for p := range datasets {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		fmt.Printf("  %s:\n", f)
		for _, p := range paths {
			fmt.Printf("    %s (%s)\n", p, datasets[p].Encoding())
		}
	}
	return nil
}
