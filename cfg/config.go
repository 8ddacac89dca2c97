// Package cfg loads typed configuration sections from an optional file with
// environment overrides.
package cfg

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const DefaultWatchDebounce = 200 * time.Millisecond

type Option func(*source)

type source struct {
	file        string
	configType  string
	envPrefix   string
	keyReplacer *strings.Replacer
	env         bool
	optional    bool
	defaults    map[string]any
}

func newSource(opts []Option) source {
	s := source{
		env:         true,
		optional:    true,
		keyReplacer: strings.NewReplacer(".", "_", "-", "_"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

// WithFile reads path before applying env overrides. The type is taken
// from the extension unless WithType is given.
func WithFile(path string) Option {
	return func(s *source) { s.file = path }
}

func WithType(kind string) Option {
	return func(s *source) { s.configType = kind }
}

func WithEnvPrefix(prefix string) Option {
	return func(s *source) { s.envPrefix = prefix }
}

func WithNoEnv() Option {
	return func(s *source) {
		s.env = false
		s.envPrefix = ""
	}
}

// WithRequired makes a missing file an error.
func WithRequired() Option {
	return func(s *source) { s.optional = false }
}

func WithDefault(key string, value any) Option {
	return func(s *source) {
		if s.defaults == nil {
			s.defaults = map[string]any{}
		}
		s.defaults[key] = value
	}
}

// WithDefaults registers every `default` struct tag of T under key.
func WithDefaults[T any](key string) Option {
	return func(s *source) {
		for k, v := range TagDefaults[T](key) {
			if s.defaults == nil {
				s.defaults = map[string]any{}
			}
			if _, ok := s.defaults[k]; !ok {
				s.defaults[k] = v
			}
		}
	}
}

// Load decodes the section key (the whole document when key is empty) into T.
func Load[T any](key string, opts ...Option) (T, error) {
	var out T
	v, err := newSource(opts).viper()
	if err != nil {
		return out, err
	}
	return out, decode(v, key, &out)
}

// TagDefaults collects `default` tags of T's mapstructure fields, prefixed by
// key. Nested structs are walked.
func TagDefaults[T any](key string) map[string]any {
	out := map[string]any{}
	walkFields(reflect.TypeFor[T](), key, func(name string, f reflect.StructField) {
		if def, ok := f.Tag.Lookup("default"); ok {
			out[name] = def
		}
	})
	return out
}

func walkFields(t reflect.Type, prefix string, fn func(string, reflect.StructField)) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		if prefix != "" {
			name = prefix + "." + name
		}
		if f.Type.Kind() == reflect.Struct && f.Type != reflect.TypeFor[time.Time]() {
			walkFields(f.Type, name, fn)
			continue
		}
		fn(name, f)
	}
}

func (s source) viper() (*viper.Viper, error) {
	v := viper.New()
	if s.envPrefix != "" {
		v.SetEnvPrefix(s.envPrefix)
	}
	if s.keyReplacer != nil {
		v.SetEnvKeyReplacer(s.keyReplacer)
	}
	if s.env {
		v.AutomaticEnv()
	}
	if s.file != "" {
		v.SetConfigFile(s.file)
	}
	if s.configType != "" {
		v.SetConfigType(s.configType)
	}
	for k, val := range s.defaults {
		v.SetDefault(k, val)
	}
	if s.file == "" {
		return v, nil
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if s.optional && (errors.As(err, &nf) || errors.Is(err, os.ErrNotExist)) {
			return v, nil
		}
		if cleaned, ok := sanitize(s.file); ok {
			if s.configType == "" {
				if ext := strings.TrimPrefix(filepath.Ext(s.file), "."); ext != "" {
					v.SetConfigType(ext)
				}
			}
			if rerr := v.ReadConfig(bytes.NewReader(cleaned)); rerr == nil {
				return v, nil
			}
		}
		return nil, fmt.Errorf("read config %s: %w", s.file, err)
	}
	return v, nil
}

// sanitize strips byte order marks and zero-width spaces some editors leave
// behind.
func sanitize(path string) ([]byte, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	cleaned := bytes.ReplaceAll(data, []byte("\xEF\xBB\xBF"), nil)
	cleaned = bytes.ReplaceAll(cleaned, []byte("\xE2\x80\x8B"), nil)
	if len(cleaned) == len(data) {
		return nil, false
	}
	return cleaned, true
}

func decode(v *viper.Viper, key string, out any) error {
	t := reflect.TypeOf(out)
	if t == nil || t.Kind() != reflect.Pointer {
		return fmt.Errorf("config target must be a pointer")
	}
	if t.Elem().Kind() != reflect.Struct {
		if key == "" {
			return v.Unmarshal(out)
		}
		return v.UnmarshalKey(key, out)
	}
	// env-only values are invisible to AllSettings until their keys are bound
	walkFields(t.Elem(), key, func(name string, _ reflect.StructField) {
		_ = v.BindEnv(name)
	})
	settings := v.AllSettings()
	var in any = settings
	if key != "" {
		in = section(settings, key)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("decode config %q: %w", key, err)
	}
	return nil
}

func section(settings map[string]any, key string) any {
	var cur any = settings
	for _, part := range strings.Split(strings.ToLower(key), ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}

// Watcher reloads a section when its file changes and hands the fresh value
// to a callback.
type Watcher[T any] struct {
	key      string
	source   source
	debounce time.Duration
	logger   *zap.Logger

	mu    sync.Mutex
	last  string
	timer *time.Timer
}

func NewWatcher[T any](key string, logger *zap.Logger, opts ...Option) *Watcher[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher[T]{
		key:      key,
		source:   newSource(opts),
		debounce: DefaultWatchDebounce,
		logger:   logger,
	}
}

func (w *Watcher[T]) WithDebounce(d time.Duration) *Watcher[T] {
	w.debounce = d
	return w
}

// Watch starts watching the file. onChange runs after the debounce window
// with the newly decoded section; decode failures are logged and skipped.
func (w *Watcher[T]) Watch(onChange func(T)) error {
	if w.source.file == "" {
		return fmt.Errorf("watch %q: no config file", w.key)
	}
	v, err := w.source.viper()
	if err != nil {
		return err
	}
	w.last = snapshot(v, w.key)
	v.OnConfigChange(func(ev fsnotify.Event) {
		w.mu.Lock()
		defer w.mu.Unlock()
		next := snapshot(v, w.key)
		if next == w.last {
			return
		}
		w.last = next
		fire := func() {
			var out T
			if err := decode(v, w.key, &out); err != nil {
				w.logger.Warn("config reload failed", zap.String("key", w.key), zap.Error(err))
				return
			}
			w.logger.Info("config changed", zap.String("key", w.key), zap.String("file", ev.Name))
			onChange(out)
		}
		if w.debounce <= 0 {
			fire()
			return
		}
		if w.timer != nil {
			w.timer.Stop()
		}
		w.timer = time.AfterFunc(w.debounce, fire)
	})
	v.WatchConfig()
	return nil
}

func snapshot(v *viper.Viper, key string) string {
	if key == "" {
		return fmt.Sprintf("%v", v.AllSettings())
	}
	return fmt.Sprintf("%s=%v", key, v.Get(key))
}
