package config

import (
	"flag"
	"fmt"
	"runtime"
	"time"

	"github.com/TheZeroSlave/zapsentry"
	"github.com/cshum/vipsop"
	"github.com/cshum/vipsop/metrics/instrumentation"
	"github.com/cshum/vipsop/metrics/prometheusmetrics"
	"github.com/cshum/vipsop/server"
	"github.com/peterbourgon/ff/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CreateServer parses args, env vars and the -config file into a Server
// wrapping vipsop.App. Returns nil for -version.
func CreateServer(args []string, funcs ...Func) (srv *server.Server) {
	var (
		fs     = flag.NewFlagSet("vipsop", flag.ExitOnError)
		logger *zap.Logger
		err    error

		debug        = fs.Bool("debug", false, "Debug mode")
		version      = fs.Bool("version", false, "vipsop version")
		port         = fs.Int("port", 8000, "Server port")
		bind         = fs.String("bind", "", "Server address and port to bind .e.g. myhost:8888. This overrides server address and port config")
		goMaxProcess = fs.Int("gomaxprocs", 0, "GOMAXPROCS")

		_ = fs.String("config", ".env", "Retrieve configuration from the given file")

		vipsopRequestTimeout = fs.Duration("vipsop-request-timeout", time.Second*30,
			"Timeout for performing a conversion request")
		vipsopSaveTimeout = fs.Duration("vipsop-save-timeout", time.Second*20,
			"Timeout for saving a result to storages")
		vipsopProcessConcurrency = fs.Int64("vipsop-process-concurrency", -1,
			"Semaphore size for concurrent libvips calls. Set -1 for no limit")
		vipsopMaxUploadSize = fs.Int64("vipsop-max-upload-size", 32<<20,
			"Max request body size in bytes")
		vipsopTempDir = fs.String("vipsop-temp-dir", "",
			"Directory for temp artifacts. Defaults to the OS temp dir")
		vipsopDisableErrorBody = fs.Bool("vipsop-disable-error-body", false,
			"Disable response body on error")

		serverAddress = fs.String("server-address", "",
			"Server address")
		serverPathPrefix = fs.String("server-path-prefix", "",
			"Server path prefix")
		serverCORS = fs.Bool("server-cors", false,
			"Enable CORS")
		serverStripQueryString = fs.Bool("server-strip-query-string", false,
			"Enable strip query string redirection")
		serverAccessLog = fs.Bool("server-access-log", false,
			"Enable server access log")
		serverCertFile = fs.String("server-cert-file", "",
			"Server TLS cert file. Serves TLS if both cert and key files present")
		serverKeyFile = fs.String("server-key-file", "",
			"Server TLS key file")
		serverReadTimeout = fs.Duration("server-read-timeout", 0,
			"Server read timeout. Default no timeout")
		serverStartupTimeout = fs.Duration("server-startup-timeout", time.Second*10,
			"Timeout for app startup")
		serverShutdownTimeout = fs.Duration("server-shutdown-timeout", time.Second*10,
			"Timeout for graceful shutdown")

		prometheusBind = fs.String("prometheus-bind", "",
			"Specify address and port to enable Prometheus metrics, e.g. :5000, prom:7000")
		prometheusPath = fs.String("prometheus-path", "/metrics",
			"Prometheus metrics path")

		sentryDsn = fs.String("sentry-dsn", "",
			"Sentry DSN. Sends panics and error logs to Sentry if present")
	)

	funcs = append([]Func{withFileSystem, withVips}, funcs...)

	options, logger, isDebug := applyFuncs(fs, func() (*zap.Logger, bool) {
		if err = ff.Parse(fs, args,
			ff.WithEnvVars(),
			ff.WithConfigFileFlag("config"),
			ff.WithIgnoreUndefined(true),
			ff.WithAllowMissingConfigFile(true),
			ff.WithConfigFileParser(ff.EnvParser),
		); err != nil {
			panic(err)
		}
		if *debug {
			if logger, err = zap.NewDevelopment(); err != nil {
				panic(err)
			}
		} else {
			if logger, err = zap.NewProduction(); err != nil {
				panic(err)
			}
		}
		if *sentryDsn != "" {
			logger = withSentryCore(logger, *sentryDsn)
		}
		return logger, *debug
	}, funcs...)

	if *version {
		fmt.Println(vipsop.Version)
		return
	}

	if *goMaxProcess > 0 {
		logger.Debug("GOMAXPROCS", zap.Int("count", *goMaxProcess))
		runtime.GOMAXPROCS(*goMaxProcess)
	}

	var serverOptions []server.Option
	if *prometheusBind != "" {
		serverOptions = append(serverOptions, server.WithMetrics(
			prometheusmetrics.New(
				prometheusmetrics.WithAddr(*prometheusBind),
				prometheusmetrics.WithPath(*prometheusPath),
				prometheusmetrics.WithLogger(logger),
			),
		))
		options = append(options, vipsop.WithCallObserver(instrumentation.New(logger)))
	}
	if *bind != "" {
		serverOptions = append(serverOptions, server.WithAddr(*bind))
	}

	return server.New(
		vipsop.New(append(
			options,
			vipsop.WithRequestTimeout(*vipsopRequestTimeout),
			vipsop.WithSaveTimeout(*vipsopSaveTimeout),
			vipsop.WithProcessConcurrency(*vipsopProcessConcurrency),
			vipsop.WithMaxUploadSize(*vipsopMaxUploadSize),
			vipsop.WithTempDir(*vipsopTempDir),
			vipsop.WithDisableErrorBody(*vipsopDisableErrorBody),
			vipsop.WithLogger(logger),
			vipsop.WithDebug(isDebug),
		)...),
		append(
			serverOptions,
			server.WithAddress(*serverAddress),
			server.WithPort(*port),
			server.WithPathPrefix(*serverPathPrefix),
			server.WithCORS(*serverCORS),
			server.WithStripQueryString(*serverStripQueryString),
			server.WithAccessLog(*serverAccessLog),
			server.WithCertFile(*serverCertFile),
			server.WithKeyFile(*serverKeyFile),
			server.WithReadTimeout(*serverReadTimeout),
			server.WithStartupTimeout(*serverStartupTimeout),
			server.WithShutdownTimeout(*serverShutdownTimeout),
			server.WithSentry(*sentryDsn),
			server.WithLogger(logger),
			server.WithDebug(isDebug),
		)...,
	)
}

func withSentryCore(logger *zap.Logger, dsn string) *zap.Logger {
	core, err := zapsentry.NewCore(zapsentry.Configuration{
		Level:             zapcore.ErrorLevel,
		EnableBreadcrumbs: true,
		BreadcrumbLevel:   zapcore.InfoLevel,
	}, zapsentry.NewSentryClientFromDSN(dsn))
	if err != nil {
		logger.Warn("sentry", zap.Error(err))
		return logger
	}
	return zapsentry.AttachCoreToLogger(core, logger)
}
