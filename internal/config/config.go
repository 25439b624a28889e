// Package config handles configuration loading from files, environment variables, and flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/codebypatrickleung/wfmigrate/internal/common"
	"github.com/spf13/viper"
)

// Publish targets.
const (
	PublishAzure = "azure"
	PublishOCI   = "oci"
)

const (
	defaultSourcePlatform = "aem"
	defaultTargetPlatform = "aem-cloud"
	defaultContainer      = "wfmigrate"
	defaultBucketName     = "wfmigrate-bucket"
	outputSuffix          = "-migrated"
)

// Config holds all configuration for wfmigrate.
type Config struct {
	SourcePlatform         string
	TargetPlatform         string
	ProjectPath            string
	OutputDir              string
	ReportDir              string
	StepsFile              string
	PublishTarget          string
	AzureStorageAccountURL string
	AzureContainer         string
	OCIRegion              string
	OCICompartmentID       string
	OCIBucketName          string
	SkipLaunchers          bool
	SkipProfiles           bool
	SkipModels             bool
	SkipReport             bool
	SkipPublish            bool
	Debug                  bool
}

// Load initializes configuration from file, environment variables, and flags.
func Load(configFile string) (*Config, error) {
	viper.SetDefault("source_platform", defaultSourcePlatform)
	viper.SetDefault("target_platform", defaultTargetPlatform)
	viper.SetDefault("azure_container", defaultContainer)
	viper.SetDefault("oci_bucket_name", defaultBucketName)

	viper.AutomaticEnv()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	projectPath := viper.GetString("project_path")
	outputDir := viper.GetString("output_dir")
	if outputDir == "" && projectPath != "" {
		outputDir = filepath.Join(filepath.Dir(filepath.Clean(projectPath)),
			common.SanitizeName(filepath.Base(filepath.Clean(projectPath)))+outputSuffix)
	}
	reportDir := viper.GetString("report_dir")
	if reportDir == "" {
		reportDir = outputDir
	}

	cfg := &Config{
		SourcePlatform:         viper.GetString("source_platform"),
		TargetPlatform:         viper.GetString("target_platform"),
		ProjectPath:            projectPath,
		OutputDir:              outputDir,
		ReportDir:              reportDir,
		StepsFile:              viper.GetString("steps_file"),
		PublishTarget:          viper.GetString("publish_target"),
		AzureStorageAccountURL: viper.GetString("azure_storage_account_url"),
		AzureContainer:         viper.GetString("azure_container"),
		OCIRegion:              viper.GetString("oci_region"),
		OCICompartmentID:       viper.GetString("oci_compartment_id"),
		OCIBucketName:          viper.GetString("oci_bucket_name"),
		SkipLaunchers:          viper.GetBool("skip_launchers"),
		SkipProfiles:           viper.GetBool("skip_profiles"),
		SkipModels:             viper.GetBool("skip_models"),
		SkipReport:             viper.GetBool("skip_report"),
		SkipPublish:            viper.GetBool("skip_publish"),
		Debug:                  viper.GetBool("debug"),
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.ProjectPath == "" {
		return fmt.Errorf("project_path is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if filepath.Clean(c.OutputDir) == filepath.Clean(c.ProjectPath) {
		return fmt.Errorf("output_dir must differ from project_path, the source project is never modified")
	}
	switch c.PublishTarget {
	case "":
	case PublishAzure:
		if c.AzureStorageAccountURL == "" {
			return fmt.Errorf("azure_storage_account_url is required for the Azure publish target")
		}
		if c.AzureContainer == "" {
			return fmt.Errorf("azure_container is required for the Azure publish target")
		}
	case PublishOCI:
		if c.OCIRegion == "" {
			return fmt.Errorf("oci_region is required for the OCI publish target")
		}
		if c.OCICompartmentID == "" {
			return fmt.Errorf("oci_compartment_id is required for the OCI publish target")
		}
		if c.OCIBucketName == "" {
			return fmt.Errorf("oci_bucket_name is required for the OCI publish target")
		}
	default:
		return fmt.Errorf("unsupported publish_target %q, expected %q or %q", c.PublishTarget, PublishAzure, PublishOCI)
	}
	return nil
}

// Publishing reports whether artifacts are uploaded at the end of the run.
func (c *Config) Publishing() bool {
	return c.PublishTarget != "" && !c.SkipPublish
}

// LoadConfig loads configuration using the global Viper instance.
func LoadConfig() (*Config, error) {
	return Load("")
}
