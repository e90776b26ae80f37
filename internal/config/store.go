package config

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/askinaltinok-glitch/talentqx-sub012/internal/companyfit"
	"github.com/askinaltinok-glitch/talentqx-sub012/internal/engine"
)

// State is one consistent view of the configuration.
type State struct {
	File     *File
	Snapshot *engine.Snapshot
	Tenants  map[string]*companyfit.Model
}

// Tenant returns the model of a tenant.
func (s *State) Tenant(id string) (*companyfit.Model, bool) {
	m, ok := s.Tenants[normalizeTenant(id)]
	return m, ok
}

// NewState validates f and builds everything it describes.
func NewState(f *File) (*State, error) {
	snap, err := f.Snapshot()
	if err != nil {
		return nil, err
	}
	tenants, err := f.TenantModels()
	if err != nil {
		return nil, err
	}
	return &State{File: f.Effective(), Snapshot: snap, Tenants: tenants}, nil
}

// Store hands out the current State. Reloads swap the whole state at once,
// so a reader never sees parts of two versions.
type Store struct {
	v       *viper.Viper
	logger  *zap.Logger
	current atomic.Pointer[State]

	mu       sync.Mutex
	onChange []func(*State)
}

// NewStore decodes the current state of v.
func NewStore(v *viper.Viper, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{v: v, logger: log}
	if err := s.apply(); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the active state.
func (s *Store) Current() *State { return s.current.Load() }

// Snapshot returns the active engine snapshot.
func (s *Store) Snapshot() *engine.Snapshot { return s.Current().Snapshot }

// Reload re-reads the config file. On failure the previous state stays
// active.
func (s *Store) Reload() error {
	if err := s.v.ReadInConfig(); err != nil {
		return errors.Wrap(err, "failed to read config file")
	}
	return s.apply()
}

// OnChange registers fn to run after every successful swap.
func (s *Store) OnChange(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Watch reloads the state whenever the config file changes.
func (s *Store) Watch() {
	s.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		if err := s.apply(); err != nil {
			s.logger.Warn("config reload rejected, keeping previous snapshot",
				zap.String("file", e.Name),
				zap.Error(err),
			)
			return
		}
		s.logger.Info("config reloaded",
			zap.String("file", e.Name),
			zap.String("snapshot", s.Current().Snapshot.Version()),
		)
	})
	s.v.WatchConfig()
}

func (s *Store) apply() error {
	f, err := Decode(s.v)
	if err != nil {
		return err
	}
	state, err := NewState(f)
	if err != nil {
		return err
	}

	s.current.Store(state)

	s.mu.Lock()
	callbacks := append(([]func(*State))(nil), s.onChange...)
	s.mu.Unlock()
	for _, fn := range callbacks {
		fn(state)
	}
	return nil
}

func normalizeTenant(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
