package config

import (
	"flag"

	"github.com/cshum/vipsop"
	"go.uber.org/zap"
)

// Func flag based config setter. It registers its flags on fs,
// calls cb once flags are parsed, then returns the App option.
type Func func(fs *flag.FlagSet, cb func() (logger *zap.Logger, isDebug bool)) vipsop.Option

// applyFuncs transform from config.Func to vipsop.Option
func applyFuncs(
	fs *flag.FlagSet, cb func() (*zap.Logger, bool), funcs ...Func,
) (options []vipsop.Option, logger *zap.Logger, isDebug bool) {
	if len(funcs) == 0 {
		logger, isDebug = cb()
		return
	}
	var last = len(funcs) - 1
	var called bool
	if funcs[last] == nil {
		return applyFuncs(fs, cb, funcs[:last]...)
	}
	option := funcs[last](fs, func() (*zap.Logger, bool) {
		options, logger, isDebug = applyFuncs(fs, cb, funcs[:last]...)
		called = true
		return logger, isDebug
	})
	if !called {
		options, logger, isDebug = applyFuncs(fs, cb, funcs[:last]...)
	}
	options = append(options, option)
	return
}
