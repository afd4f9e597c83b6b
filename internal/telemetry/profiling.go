package telemetry

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/grafana/pyroscope-go"

	"github.com/marmos91/cryptoolstore/internal/logger"
)

// ProfilingConfig describes the Pyroscope profiler started by
// InitProfiling.
type ProfilingConfig struct {
	Enabled bool

	ServiceName    string
	ServiceVersion string

	// Endpoint is the Pyroscope server URL.
	Endpoint string

	// ProfileTypes names the profiles to collect, see profileTypes.
	ProfileTypes []string

	// Tags are attached to every profile next to version and instance. Dots
	// in keys become underscores.
	Tags map[string]string
}

// profileType maps a config name to the Pyroscope profile and the runtime
// sampling it needs.
type profileType struct {
	profile pyroscope.ProfileType
	mutex   bool
	block   bool
}

var profileTypes = map[string]profileType{
	"cpu":            {profile: pyroscope.ProfileCPU},
	"alloc_objects":  {profile: pyroscope.ProfileAllocObjects},
	"alloc_space":    {profile: pyroscope.ProfileAllocSpace},
	"inuse_objects":  {profile: pyroscope.ProfileInuseObjects},
	"inuse_space":    {profile: pyroscope.ProfileInuseSpace},
	"goroutines":     {profile: pyroscope.ProfileGoroutines},
	"mutex_count":    {profile: pyroscope.ProfileMutexCount, mutex: true},
	"mutex_duration": {profile: pyroscope.ProfileMutexDuration, mutex: true},
	"block_count":    {profile: pyroscope.ProfileBlockCount, block: true},
	"block_duration": {profile: pyroscope.ProfileBlockDuration, block: true},
}

const runtimeSampleRate = 5

var profilingActive atomic.Bool

// InitProfiling starts continuous profiling and returns the function that
// stops it and restores the runtime's mutex and block sampling.
func InitProfiling(cfg ProfilingConfig) (func() error, error) {
	if !cfg.Enabled {
		profilingActive.Store(false)
		return func() error { return nil }, nil
	}

	types, mutex, block, err := resolveProfileTypes(cfg.ProfileTypes)
	if err != nil {
		return nil, err
	}

	name := cfg.ServiceName
	if name == "" {
		name = defaultServiceName
	}
	tags := map[string]string{"version": cfg.ServiceVersion}
	if host, err := os.Hostname(); err == nil {
		tags["instance"] = host
	}
	for k, v := range cfg.Tags {
		tags[strings.ReplaceAll(k, ".", "_")] = v
	}

	if mutex {
		runtime.SetMutexProfileFraction(runtimeSampleRate)
	}
	if block {
		runtime.SetBlockProfileRate(runtimeSampleRate)
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: name,
		ServerAddress:   cfg.Endpoint,
		Tags:            tags,
		ProfileTypes:    types,
		Logger:          profilerLogger{},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start Pyroscope profiler: %w", err)
	}
	profilingActive.Store(true)

	return func() error {
		profilingActive.Store(false)
		if mutex {
			runtime.SetMutexProfileFraction(0)
		}
		if block {
			runtime.SetBlockProfileRate(0)
		}
		return profiler.Stop()
	}, nil
}

// IsProfilingEnabled reports whether a profiler is running.
func IsProfilingEnabled() bool {
	return profilingActive.Load()
}

func resolveProfileTypes(names []string) (types []pyroscope.ProfileType, mutex, block bool, err error) {
	for _, n := range names {
		pt, ok := profileTypes[n]
		if !ok {
			return nil, false, false, fmt.Errorf("unknown profile type %q", n)
		}
		types = append(types, pt.profile)
		mutex = mutex || pt.mutex
		block = block || pt.block
	}
	return types, mutex, block, nil
}

// profilerLogger routes Pyroscope's own messages into the server log.
type profilerLogger struct{}

func (profilerLogger) Infof(format string, args ...interface{}) {
	logger.Debug(fmt.Sprintf(format, args...), "component", "pyroscope")
}

func (profilerLogger) Debugf(format string, args ...interface{}) {
	logger.Debug(fmt.Sprintf(format, args...), "component", "pyroscope")
}

func (profilerLogger) Errorf(format string, args ...interface{}) {
	logger.Warn(fmt.Sprintf(format, args...), "component", "pyroscope")
}
