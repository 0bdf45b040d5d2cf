package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fsort/internal/config"
	"fsort/internal/paths"
)

var configFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect fsort configuration",
	Long:  "View the configuration stored in config.json inside the data directory",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after defaults, config.json and FSORT_*
environment overrides have been applied. The API key is redacted.

Examples:
  fsort config show
  fsort config show --format json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configEnvCmd = &cobra.Command{
	Use:   "env",
	Short: "List supported environment variables",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Environment overrides:")
		for _, e := range configEnvVars {
			value := "(unset)"
			if v, ok := os.LookupEnv(e.name); ok {
				value = v
				if e.secret {
					value = redact(v)
				}
			}
			fmt.Printf("  %-36s %s\n", e.name, value)
		}
	},
}

var configEnvVars = []struct {
	name   string
	secret bool
}{
	{name: paths.HomeEnvVar},
	{name: "FSORT_CLASSIFIER_PROVIDER"},
	{name: "FSORT_CLASSIFIER_MODEL"},
	{name: "FSORT_CLASSIFIER_BASE_URL"},
	{name: "FSORT_CLASSIFIER_API_KEY", secret: true},
	{name: "FSORT_PROMPT_LANGUAGE"},
	{name: "FSORT_PROMPT_WHITELIST"},
	{name: "FSORT_STORAGE_BACKEND"},
	{name: "FSORT_LOGGING_LEVEL"},
}

func init() {
	configShowCmd.Flags().StringVar(&configFormat, "format", "human", "Output format (human, json)")
	configCmd.AddCommand(configShowCmd, configEnvCmd)
	rootCmd.AddCommand(configCmd)
}

// ConfigShowResponse is the response format for config show
type ConfigShowResponse struct {
	ConfigPath string         `json:"configPath"`
	Exists     bool           `json:"exists"`
	Config     *config.Config `json:"config"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	format, err := parseOutputFormat(configFormat)
	if err != nil {
		return err
	}

	cfg := *current.cfg
	cfg.Classifier.APIKey = redact(cfg.Classifier.APIKey)
	path := paths.ConfigPath(current.dataDir)
	_, statErr := os.Stat(path)
	resp := ConfigShowResponse{ConfigPath: path, Exists: statErr == nil, Config: &cfg}

	if format == FormatJSON {
		return writeJSON(os.Stdout, resp)
	}
	fmt.Print(formatConfigHuman(resp))
	return nil
}

func formatConfigHuman(resp ConfigShowResponse) string {
	var b strings.Builder
	source := resp.ConfigPath
	if !resp.Exists {
		source += " (not found, using defaults)"
	}
	fmt.Fprintf(&b, "Config: %s\n\n", source)

	c := resp.Config
	b.WriteString("Classifier\n")
	fmt.Fprintf(&b, "  provider:          %s\n", c.Classifier.Provider)
	fmt.Fprintf(&b, "  model:             %s\n", c.Classifier.Model)
	if c.Classifier.BaseURL != "" {
		fmt.Fprintf(&b, "  baseUrl:           %s\n", c.Classifier.BaseURL)
	}
	if c.Classifier.APIKey != "" {
		fmt.Fprintf(&b, "  apiKey:            %s\n", c.Classifier.APIKey)
	}
	fmt.Fprintf(&b, "  requestsPerMinute: %d\n", c.Classifier.RequestsPerMinute)

	b.WriteString("Resolution\n")
	fmt.Fprintf(&b, "  maxAttempts:       %d\n", c.Resolution.MaxAttempts)
	fmt.Fprintf(&b, "  backoff:           %dms..%dms\n", c.Resolution.BaseDelayMs, c.Resolution.MaxDelayMs)
	fmt.Fprintf(&b, "  timeouts:          local %ds, remote %ds\n", c.Resolution.LocalTimeoutSeconds, c.Resolution.RemoteTimeoutSeconds)
	fmt.Fprintf(&b, "  enforceWhitelist:  %t\n", c.Resolution.EnforceWhitelist)

	b.WriteString("Prompt\n")
	fmt.Fprintf(&b, "  language:          %s\n", c.Prompt.Language)
	fmt.Fprintf(&b, "  consistencyHints:  %t (max %d)\n", c.Prompt.ConsistencyHints, c.Prompt.MaxHints)
	if c.Prompt.Whitelist != "" {
		fmt.Fprintf(&b, "  whitelist:         %s\n", c.Prompt.Whitelist)
	}

	fmt.Fprintf(&b, "Storage: %s\n", c.Storage.Backend)
	fmt.Fprintf(&b, "Logging: %s (file %t)\n", c.Logging.Level, c.Logging.File)
	return b.String()
}

// redact keeps the last four characters of secrets longer than eight.
func redact(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return "****" + s[len(s)-4:]
	}
}
