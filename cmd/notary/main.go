package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/attestry/notary/pkg/component"
	"github.com/attestry/notary/pkg/log"
	"github.com/attestry/notary/pkg/metrics"
	"github.com/attestry/notary/pkg/notary"
	"github.com/attestry/notary/pkg/ssm"
	"github.com/attestry/notary/pkg/storage"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const defaultDirectory = ".bali"

// fileConfig mirrors the optional YAML configuration file. Flags given on
// the command line override it.
type fileConfig struct {
	Directory   string `yaml:"directory"`
	Account     string `yaml:"account"`
	LogLevel    string `yaml:"log_level"`
	LogJSON     bool   `yaml:"log_json"`
	MetricsAddr string `yaml:"metrics_addr"`
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "notary",
	Short: "Digital notary - key lifecycle and document notarization",
	Long: `The notary manages a signing key pair on behalf of one account and uses
it to notarize structured documents, producing certificates, notarized
documents and tamper-evident citations.

Key material never leaves the configuration directory; rotated keys sign
their replacement's certificate, forming a verifiable chain back to the
self-signed original.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Notary version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("directory", "", "Configuration directory (default ~/.bali)")
	rootCmd.PersistentFlags().String("account", "", "Account tag (default: read from the configuration directory)")
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("metrics-addr", "", "Expose Prometheus metrics on this address")

	cobra.OnInitialize(initialize)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(notarizeCmd)
	rootCmd.AddCommand(citeCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(forgetCmd)
}

var config fileConfig

func initialize() {
	if path, _ := rootCmd.PersistentFlags().GetString("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read configuration file: %v\n", err)
			os.Exit(1)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to parse configuration file: %v\n", err)
			os.Exit(1)
		}
	}

	flags := rootCmd.PersistentFlags()
	if flags.Changed("directory") || config.Directory == "" {
		config.Directory, _ = flags.GetString("directory")
	}
	if flags.Changed("account") || config.Account == "" {
		config.Account, _ = flags.GetString("account")
	}
	if flags.Changed("log-level") || config.LogLevel == "" {
		config.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-json") {
		config.LogJSON, _ = flags.GetBool("log-json")
	}
	if flags.Changed("metrics-addr") || config.MetricsAddr == "" {
		config.MetricsAddr, _ = flags.GetString("metrics-addr")
	}

	log.Configure(log.Options{
		Level: config.LogLevel,
		JSON:  config.LogJSON,
	})

	if config.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(config.MetricsAddr); err != nil {
				log.Logger.Error().Err(err).Msg("metrics endpoint failed")
			}
		}()
	}
}

// directory resolves the configuration directory, defaulting to ~/.bali.
func directory() (string, error) {
	if config.Directory != "" {
		return config.Directory, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, defaultDirectory), nil
}

// buildNotary wires the notary, its security modules and their stores. The
// account tag comes from the flag or from account.bali in the configuration
// directory; a fresh tag is generated and saved on first use.
func buildNotary() (*notary.Notary, error) {
	dir, err := directory()
	if err != nil {
		return nil, err
	}
	accountStore, err := storage.NewFileStore(dir, "account.bali")
	if err != nil {
		return nil, err
	}
	var account component.Tag
	if config.Account != "" {
		account = component.Tag(strings.TrimPrefix(config.Account, "#"))
	} else {
		text, ok, err := accountStore.Load()
		if err != nil {
			return nil, err
		}
		if ok {
			value, err := component.Parse(strings.TrimSpace(text))
			if err != nil {
				return nil, fmt.Errorf("the saved account tag is malformed: %w", err)
			}
			account, _ = value.(component.Tag)
		} else {
			account = component.NewTag()
			if err := accountStore.Store(account.Format() + "\n"); err != nil {
				return nil, err
			}
		}
	}
	ssmStore, err := storage.NewFileStore(dir, "ssm.bali")
	if err != nil {
		return nil, err
	}
	notaryStore, err := storage.NewFileStore(dir, "notary.bali")
	if err != nil {
		return nil, err
	}
	modules := []ssm.Module{ssm.NewV2(ssmStore), ssm.NewV1()}
	return notary.New(account, modules, notaryStore)
}

func readCatalog(path string) (*component.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return component.ParseCatalog(strings.TrimSpace(string(data)))
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate, self-sign and activate a key pair",
	Long: `Generate a new key pair for the account, notarize its certificate with
the new key itself, and activate it. Prints the citation of the activated
certificate.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := buildNotary()
		if err != nil {
			return err
		}
		certificate, err := n.GenerateKey()
		if err != nil {
			return err
		}
		signed, err := n.NotarizeComponent(certificate)
		if err != nil {
			return err
		}
		citation, err := n.ActivateKey(signed)
		if err != nil {
			return err
		}
		fmt.Printf("Account: %s\n", n.GetAccount().Format())
		fmt.Println(citation.Format())
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the notary state and current citation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := buildNotary()
		if err != nil {
			return err
		}
		state, err := n.GetState()
		if err != nil {
			return err
		}
		fmt.Printf("Account: %s\n", n.GetAccount().Format())
		fmt.Printf("State:   %s\n", state)
		if state == notary.StateEnabled {
			citation, err := n.GetCitation()
			if err != nil {
				return err
			}
			fmt.Println(citation.Format())
		}
		return nil
	},
}

var notarizeCmd = &cobra.Command{
	Use:   "notarize <component-file>",
	Short: "Notarize a component read from a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := buildNotary()
		if err != nil {
			return err
		}
		comp, err := readCatalog(args[0])
		if err != nil {
			return err
		}
		document, err := n.NotarizeComponent(comp)
		if err != nil {
			return err
		}
		fmt.Println(document.Format())
		return nil
	},
}

var citeCmd = &cobra.Command{
	Use:   "cite <document-file>",
	Short: "Print a citation to a notarized document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := buildNotary()
		if err != nil {
			return err
		}
		document, err := readCatalog(args[0])
		if err != nil {
			return err
		}
		citation, err := n.CiteDocument(document)
		if err != nil {
			return err
		}
		fmt.Println(citation.Format())
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <document-file> <certificate-file>",
	Short: "Verify a notarized document against a notarized certificate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := buildNotary()
		if err != nil {
			return err
		}
		document, err := readCatalog(args[0])
		if err != nil {
			return err
		}
		certificate, err := readCatalog(args[1])
		if err != nil {
			return err
		}
		valid, err := n.ValidDocument(document, certificate)
		if err != nil {
			return err
		}
		if !valid {
			return fmt.Errorf("the document signature is not valid")
		}
		fmt.Println("The document signature is valid.")
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rotate the key pair",
	Long: `Rotate the key pair. The certificate for the new key is signed by the
key being replaced and cites the previous certificate, extending the
certificate chain. Prints the new notarized certificate.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := buildNotary()
		if err != nil {
			return err
		}
		certificate, err := n.RefreshKey()
		if err != nil {
			return err
		}
		fmt.Println(certificate.Format())
		return nil
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Erase all key material and notary state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := buildNotary()
		if err != nil {
			return err
		}
		if err := n.ForgetKey(); err != nil {
			return err
		}
		fmt.Println("All key material and notary state erased.")
		return nil
	},
}
