package rng

import (
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// Manager holds a write-once generator. The first Init wins; the seed cannot be
// changed afterwards.
type Manager struct {
	mu          sync.Mutex
	rng         *RNG
	initialized bool
	lookupEnv   func(string) (string, bool)
}

// NewManager creates a Manager that reads SEED from the process environment.
func NewManager() *Manager {
	return &Manager{lookupEnv: os.LookupEnv}
}

// Init establishes the generator on the first call. A SEED environment value
// always overrides the argument. Later calls are no-ops.
func (m *Manager) Init(seed string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initLocked(seed)
}

func (m *Manager) initLocked(seed string) {
	if m.initialized {
		return
	}
	if env, ok := m.envSeed(); ok {
		seed = env
	}
	m.rng = New(seed)
	m.initialized = true

	log.Debug().
		Str("seed", seed).
		Bool("seeded", m.rng.Seeded()).
		Msg("Random generator initialized")
}

// Get returns the established generator. When Init was never called it
// initializes from SEED if present; otherwise it returns a fresh unseeded
// generator and stays uninitialized.
func (m *Manager) Get() *RNG {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return m.rng
	}
	if env, ok := m.envSeed(); ok {
		m.initLocked(env)
		return m.rng
	}
	return New("")
}

// Initialized reports whether a generator has been established.
func (m *Manager) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

// Reset drops the established generator. Only tests should need this.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rng = nil
	m.initialized = false
}

func (m *Manager) envSeed() (string, bool) {
	if m.lookupEnv == nil {
		return "", false
	}
	v, ok := m.lookupEnv(SeedEnv)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

var global = NewManager()

// Init initializes the process-wide generator. See Manager.Init.
func Init(seed string) {
	global.Init(seed)
}

// Get returns the process-wide generator. See Manager.Get.
func Get() *RNG {
	return global.Get()
}

// Reset clears the process-wide generator.
func Reset() {
	global.Reset()
}
