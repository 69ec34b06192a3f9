// Package cli holds small pieces shared by the three command-line
// binaries: flag types and logger setup.
package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// logLevelFlag adapts logrus.Level to pflag.Value so --verbosity can
// be registered directly on a command's flag set and take effect on
// the logger immediately as it's parsed.
type logLevelFlag struct {
	logger *logrus.Logger
}

var _ pflag.Value = (*logLevelFlag)(nil)

func (f *logLevelFlag) String() string {
	return f.logger.GetLevel().String()
}

func (f *logLevelFlag) Set(s string) error {
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return err
	}
	f.logger.SetLevel(lvl)
	return nil
}

func (f *logLevelFlag) Type() string {
	return "level"
}

// AddLogLevelFlag registers --verbosity on fs, defaulting logger to
// logrus.InfoLevel.
func AddLogLevelFlag(fs *pflag.FlagSet, logger *logrus.Logger) {
	logger.SetLevel(logrus.InfoLevel)
	fs.Var(&logLevelFlag{logger: logger}, "verbosity", "set the logging level (error|warn|info|debug|trace)")
}
