package cmd

import (
	"io/fs"
	"os"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

const (
	DenseCliEnvFileEnv     = "DENSECLI_ENV"
	DenseCliEnvFileDefault = ".densecli.env"
	DenseCliHisFileDefault = ".densecli_history"
)

// Config is the dense-cli command line. Every flag can also come from its
// DENSECLI_* variable, which may be set in the dotenv file.
type Config struct {
	Small   bool             `help:"Keep sets in inline buckets until they outgrow them." env:"DENSECLI_SMALL"`
	Inline  int              `help:"Inline bucket count for --small: 4, 8, 16 or 32." default:"8" env:"DENSECLI_INLINE"`
	Reserve int              `help:"Elements every new set has room for." default:"0" env:"DENSECLI_RESERVE"`
	History string           `help:"History file for interactive sessions (/dev/null disables it)." env:"DENSECLI_HISTFILE"`
	Raw     bool             `help:"Print replies without type decorations." env:"DENSECLI_RAW"`
	NoRaw   bool             `help:"Decorate replies even when stdout is not a terminal." env:"DENSECLI_NO_RAW"`
	Verbose bool             `short:"v" help:"Log debug output to stderr." env:"DENSECLI_VERBOSE"`
	Version kong.VersionFlag `help:"Print version and exit."`

	Command []string `arg:"" optional:"" help:"Run this command and exit instead of starting the shell."`
}

func (c *Config) Validate() error {
	switch c.Inline {
	case 4, 8, 16, 32:
	default:
		return errors.Newf("--inline must be 4, 8, 16 or 32, got %d", c.Inline)
	}
	if c.Reserve < 0 {
		return errors.Newf("--reserve must not be negative, got %d", c.Reserve)
	}
	if c.Raw && c.NoRaw {
		return errors.New("--raw and --no-raw are mutually exclusive")
	}
	return nil
}

// loadEnvFile exports the variables of the dotenv file named by
// DENSECLI_ENV. Variables already set in the environment win. A missing
// file is not an error.
func loadEnvFile() error {
	path := os.Getenv(DenseCliEnvFileEnv)
	if path == "" {
		path = DenseCliEnvFileDefault
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, "loading %s", path)
	}
	return nil
}

// historyPath resolves the history file: the configured one, else
// ~/.densecli_history. It returns "" when history is disabled or there is no
// home directory.
func historyPath(configured string) string {
	if configured != "" {
		if configured == "/dev/null" {
			return ""
		}
		return configured
	}
	home := os.Getenv("HOME")
	if home == "" {
		return ""
	}
	return home + "/" + DenseCliHisFileDefault
}
