// Package main provides the entry point for the wfmigrate CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/codebypatrickleung/wfmigrate/internal/config"
	"github.com/codebypatrickleung/wfmigrate/internal/logger"
	"github.com/codebypatrickleung/wfmigrate/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wfmigrate",
	Short: "wfmigrate - Asset Workflow Migration Tool",
	Long: `wfmigrate is a Go-based CLI tool that migrates the asset workflows of an AEM project to
AEM Assets as a Cloud Service. It disables asset launchers, converts rendition steps into
processing profiles, strips unsupported steps from workflow models and writes a migration report.`,
	Version: version,
	RunE:    run,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./wfmigrate-config.env)")

	flags := []struct {
		name, shorthand, usage, defaultValue string
	}{
		{"project-path", "p", "Path of the AEM project to migrate", ""},
		{"output-dir", "o", "Directory the migrated project is written to (default is <project>-migrated)", ""},
		{"report-dir", "", "Directory for the migration report (default is the output directory)", ""},
		{"steps-file", "", "YAML file overriding the built-in step support table", ""},
		{"publish-target", "", "Upload migration artifacts to object storage (azure or oci)", ""},
		{"azure-storage-account-url", "", "Azure Blob Storage account URL", ""},
		{"azure-container", "", "Azure Blob Storage container name", "wfmigrate"},
		{"oci-region", "", "OCI region", ""},
		{"oci-compartment-id", "", "OCI compartment OCID", ""},
		{"oci-bucket-name", "", "OCI Object Storage bucket name", "wfmigrate-bucket"},
		{"source-platform", "", "Source platform (aem)", "aem"},
		{"target-platform", "", "Target platform (aem-cloud)", "aem-cloud"},
	}
	for _, f := range flags {
		rootCmd.Flags().StringP(f.name, f.shorthand, f.defaultValue, f.usage)
	}

	boolFlags := []struct {
		name, usage string
	}{
		{"skip-launchers", "Skip disabling workflow launchers"},
		{"skip-profiles", "Skip processing profile creation"},
		{"skip-models", "Skip workflow model transformation"},
		{"skip-report", "Skip migration report generation"},
		{"skip-publish", "Skip artifact publishing"},
		{"debug", "Enable debug logging"},
	}
	for _, f := range boolFlags {
		rootCmd.Flags().Bool(f.name, false, f.usage)
	}

	bindings := map[string]string{
		"PROJECT_PATH":              "project-path",
		"OUTPUT_DIR":                "output-dir",
		"REPORT_DIR":                "report-dir",
		"STEPS_FILE":                "steps-file",
		"PUBLISH_TARGET":            "publish-target",
		"AZURE_STORAGE_ACCOUNT_URL": "azure-storage-account-url",
		"AZURE_CONTAINER":           "azure-container",
		"OCI_REGION":                "oci-region",
		"OCI_COMPARTMENT_ID":        "oci-compartment-id",
		"OCI_BUCKET_NAME":           "oci-bucket-name",
		"SOURCE_PLATFORM":           "source-platform",
		"TARGET_PLATFORM":           "target-platform",
		"SKIP_LAUNCHERS":            "skip-launchers",
		"SKIP_PROFILES":             "skip-profiles",
		"SKIP_MODELS":               "skip-models",
		"SKIP_REPORT":               "skip-report",
		"SKIP_PUBLISH":              "skip-publish",
		"DEBUG":                     "debug",
	}
	for env, flag := range bindings {
		if err := viper.BindPFlag(env, rootCmd.Flags().Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to bind flag %s to env %s: %v\n", flag, env, err)
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("wfmigrate-config")
		viper.SetConfigType("env")
	}
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	timestamp := logger.GetTimestamp()
	logFileName := fmt.Sprintf("wfmigrate-%s.log", timestamp)

	log, err := logger.NewWithFile(cfg.Debug, logFileName)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Close()

	log.Infof("wfmigrate version %s", version)
	log.Infof("Log file: %s", logFileName)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	ctx := context.Background()
	mgr, err := workflow.NewManager(cfg, log, version)
	if err != nil {
		return fmt.Errorf("failed to create workflow manager: %w", err)
	}

	if err := mgr.Run(ctx); err != nil {
		log.Error(fmt.Sprintf("Workflow failed: %v", err))
		return err
	}

	return nil
}
