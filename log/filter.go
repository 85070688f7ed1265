package log

import (
	"io"
	"sort"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"moul.io/zapfilter"
)

type (
	// Filter decides per logger name which entries are written.
	// The rules may be replaced at runtime.
	Filter struct {
		rules atomic.Pointer[filterRules]
	}
	filterRules struct {
		defaultLevel Level
		named        []namedRule // longest name first
	}
	namedRule struct {
		name  string
		level Level
		match zapfilter.FilterFunc
	}
)

func NewFilter(cfg *Config) (*Filter, error) {
	f := &Filter{}
	if err := f.Update(cfg); err != nil {
		return nil, err
	}
	return f, nil
}

// Update replaces the active rules. On error the previous rules stay active.
func (f *Filter) Update(cfg *Config) error {
	rules, err := compileRules(cfg)
	if err != nil {
		return err
	}
	f.rules.Store(rules)
	return nil
}

func (f *Filter) check(entry zapcore.Entry, fields []zapcore.Field) bool {
	rules := f.rules.Load()
	for _, r := range rules.named {
		if r.match(entry, fields) {
			return entry.Level >= r.level
		}
	}
	return entry.Level >= rules.defaultLevel
}

// WithFilter routes all entries through the filter
func WithFilter(f *Filter) Option {
	return zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapfilter.NewFilteringCore(c, f.check)
	})
}

// NewFiltered creates a logger whose levels are controlled by the filter only.
// format is either "json" or anything else for console output.
func NewFiltered(writer io.Writer, format string, f *Filter, opts ...Option) *Logger {
	opts = append(opts, WithFilter(f))
	if format == "json" {
		return New(writer, DebugLevel, opts...)
	}
	return DevLogger(writer, DebugLevel, opts...)
}

func compileRules(cfg *Config) (*filterRules, error) {
	defaultLevel, err := ParseLevel(cfg.DefaultLevel)
	if err != nil {
		return nil, err
	}
	ret := &filterRules{defaultLevel: defaultLevel}
	for name, lvl := range cfg.Loggers {
		level, err := ParseLevel(lvl)
		if err != nil {
			return nil, err
		}
		name = strings.TrimSpace(name)
		ret.named = append(ret.named, namedRule{
			name:  name,
			level: level,
			match: zapfilter.ByNamespaces(name + "," + name + ".*"),
		})
	}
	sort.Slice(ret.named, func(i, j int) bool {
		if len(ret.named[i].name) != len(ret.named[j].name) {
			return len(ret.named[i].name) > len(ret.named[j].name)
		}
		return ret.named[i].name < ret.named[j].name
	})
	return ret, nil
}
