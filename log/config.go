package log

import (
	"context"
	"os"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Config is the content of a log config file.
//
//	defaultLevel: info
//	loggers:
//	  session: debug
//	  udp: warn
type Config struct {
	DefaultLevel string            `yaml:"defaultLevel"`
	Loggers      map[string]string `yaml:"loggers"`
}

func DefaultConfig(level string) *Config {
	return &Config{DefaultLevel: level, Loggers: map[string]string{}}
}

func LoadConfig(file string) (*Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig("info")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.DefaultLevel == "" {
		cfg.DefaultLevel = "info"
	}
	return cfg, nil
}

// WatchConfig reloads the filter rules whenever file changes.
// Blocks until ctx is done.
func WatchConfig(ctx context.Context, file string, f *Filter) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(file); err != nil {
		return err
	}
	l := Default().Named("log")
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write != fsnotify.Write &&
				event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			cfg, err := LoadConfig(file)
			if err != nil {
				l.Warn("could not read log config", String("file", file), ErrorField(err))
				continue
			}
			if err := f.Update(cfg); err != nil {
				l.Warn("invalid log config", String("file", file), ErrorField(err))
				continue
			}
			l.Info("log config reloaded", String("file", file))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.Error("watcher error", ErrorField(err))
		}
	}
}
