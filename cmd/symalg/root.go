package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"

	"github.com/njchilds90/symalg"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set with -ldflags at release time.
var Version string

var rootCmd = &cobra.Command{
	Use:   "symalg",
	Short: "A symbolic algebra engine.",
	Long: `Parse, simplify, differentiate and evaluate mathematical formulas.
	Formulas use + - * / ^, postfix !, |x| and the usual elementary functions.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "version") {
			fmt.Print("symalg ")
			if Version != "" {
				fmt.Print(Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				fmt.Print(info.Main.Version)
			} else {
				fmt.Print("(unknown version)")
			}
			fmt.Println()
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.Flags().Bool("version", false, "report version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().StringP("config", "c", "", "simplifier configuration file (yaml)")
	rootCmd.PersistentFlags().StringSlice("passes", nil, "comma separated simplification passes (default all)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "abort a computation after this long (0 disables)")
	rootCmd.AddCommand(simplifyCmd, diffCmd, evalCmd, varsCmd, replCmd)
}

// setup configures logging and loads the simplifier configuration shared by
// every subcommand.
func setup(cmd *cobra.Command) symalg.Config {
	if getFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
	cfg, err := loadConfig(getString(cmd, "config"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if passes := getStringSlice(cmd, "passes"); len(passes) > 0 {
		if cfg.Passes, err = symalg.ParsePasses(passes); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	log.Debugf("passes: %v", cfg.Passes)
	return cfg
}

// computation returns a context cancelled on interrupt or after --timeout.
func computation(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil || timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
	return r
}

func getString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
	return r
}

func getStringSlice(cmd *cobra.Command, flag string) []string {
	r, err := cmd.Flags().GetStringSlice(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
	return r
}
