package config

import (
	"flag"
	"os"
	"time"

	"github.com/justonlyforyou/shippingmanager-copilot/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string      target domain (default shippingmanager.cc)
//	-data string   userdata directory (default platform-specific)
//	-helper string directory holding dialog executables
//	-t int         browser login timeout in seconds
//
// The function filters os.Args to only the flags it knows about, using
// flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-data", "-helper", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.TargetDomain, "d", cfg.TargetDomain, "target service domain")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "userdata directory")
	fs.StringVar(&cfg.HelperDir, "helper", cfg.HelperDir, "dialog helper directory")
	loginTimeout := fs.Int("t", int(cfg.LoginTimeout.Seconds()), "browser login timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.LoginTimeout = time.Duration(*loginTimeout) * time.Second
}
