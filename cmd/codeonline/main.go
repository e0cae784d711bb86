package main

import (
	"fmt"
	"os"

	"github.com/dhamidi/codeonline/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	"golang.org/x/term"

	_ "github.com/tliron/commonlog/simple"
)

var version = "0.1.0"

// globals holds the persistent flags and the configuration they select.
type globals struct {
	configPath string
	verbose    int
	logFile    string
	color      string

	cfg *config.Config
}

func main() {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:           "codeonline",
		Short:         "Compile and complete Java fragments",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.setup()
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "configuration file (default: search for "+config.FileName+")")
	rootCmd.PersistentFlags().CountVarP(&g.verbose, "verbose", "v", "increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&g.logFile, "log-file", "", "write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&g.color, "color", "auto", "colorize output (auto|on|off)")

	rootCmd.AddCommand(newClassifyCmd(g))
	rootCmd.AddCommand(newGenerateCmd(g))
	rootCmd.AddCommand(newCompileCmd(g))
	rootCmd.AddCommand(newCompleteCmd(g))
	rootCmd.AddCommand(newRequestCmd(g))
	rootCmd.AddCommand(newServeCmd(g))
	rootCmd.AddCommand(newLSPCmd(g))
	rootCmd.AddCommand(newPackCmd(g))
	rootCmd.AddCommand(newLibsCmd(g))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func (g *globals) setup() error {
	var logPath *string
	if g.logFile != "" {
		logPath = &g.logFile
	}
	commonlog.Configure(g.verbose-1, logPath)

	switch g.color {
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (want auto, on or off)", g.color)
	}

	var err error
	if g.configPath != "" {
		g.cfg, err = config.LoadFile(g.configPath)
	} else {
		g.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if g.cfg.Path != "" {
		commonlog.GetLogger("codeonline.cli").Infof("using configuration %s", g.cfg.Path)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
