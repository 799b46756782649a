package plugin

import (
	"encoding/json"
	"expvar"
	"fmt"
	"os"
	"path/filepath"
	pluginpkg "plugin"
	"reflect"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/annelo/rwsim/internal/data"
	"github.com/annelo/rwsim/internal/gameloop"
)

// PluginMeta holds metadata for a plugin
type PluginMeta struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version" yaml:"version"`
	Author      string `json:"author" yaml:"author"`
	Description string `json:"description" yaml:"description"`
}

// HookType defines a named event hook
type HookType string

const (
	// HookBeforeSave receives the *storage.SaveGame about to be written.
	HookBeforeSave HookType = "BeforeSave"
	// HookAfterSave receives the save name.
	HookAfterSave HookType = "AfterSave"
	// HookAfterLoad receives the save name after the world was restored.
	HookAfterLoad HookType = "AfterLoad"
	// HookWorldEvent receives every gameloop.WorldEvent.
	HookWorldEvent HookType = "WorldEvent"

	HookBeforePluginLoad   HookType = "BeforePluginLoad"
	HookAfterPluginLoad    HookType = "AfterPluginLoad"
	HookBeforePluginUnload HookType = "BeforePluginUnload"
	HookAfterPluginUnload  HookType = "AfterPluginUnload"
)

// HookFunc is the signature for hook handlers. args can be event-specific.
type HookFunc func(args ...interface{})

// CommandFunc is the signature for admin CLI command handlers.
type CommandFunc func(args []string) (string, error)

// CommandRegistration holds a single CLI command registration.
type CommandRegistration struct {
	Name        string
	Description string
	Handler     CommandFunc
}

// PluginRegistry allows registration of data tables and game systems.
type PluginRegistry interface {
	// RegisterCatalog adds vehicle, weapon or animation tables on top of the built-in ones.
	RegisterCatalog(c *data.Catalog)
	// RegisterGameSystem registers a game loop system to be ticked every step.
	RegisterGameSystem(sys gameloop.System)
	Catalogs() []*data.Catalog
	GameSystems() []gameloop.System
	RegisterPluginMeta(meta PluginMeta)
	PluginMetas() []PluginMeta
	RegisterHook(hook HookType, fn HookFunc)
	Hooks(hook HookType) []HookFunc
	// RegisterCommand registers an admin CLI command.
	RegisterCommand(name, description string, handler CommandFunc)
	Commands() []CommandRegistration
	// MarkCore marks the boundary between core and plugin registrations.
	MarkCore()
	// ClearPlugins removes all registrations added after MarkCore.
	ClearPlugins()
	// RegisterPluginConfig registers a sample config struct for a plugin.
	RegisterPluginConfig(name string, sample interface{})
	// LoadPluginConfig loads a plugin's config YAML from the given directory into the registry.
	LoadPluginConfig(name, dir string) error
	PluginConfig(name string) interface{}
}

// DefaultRegistry is the default implementation of PluginRegistry.
type DefaultRegistry struct {
	catalogs    []*data.Catalog
	gameSystems []gameloop.System
	pluginMetas []PluginMeta
	commands    []CommandRegistration
	hooks       map[HookType][]HookFunc
	// configSamples maps plugin name to a sample config struct pointer.
	configSamples map[string]interface{}
	configs       map[string]interface{}
	mu            sync.RWMutex

	// размеры на момент MarkCore
	coreCatalogCount    int
	coreSystemCount     int
	coreCommandCount    int
	corePluginMetaCount int
	coreHooks           map[HookType][]HookFunc
}

// NewDefaultRegistry returns a new DefaultRegistry instance.
func NewDefaultRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		hooks:         make(map[HookType][]HookFunc),
		configSamples: make(map[string]interface{}),
		configs:       make(map[string]interface{}),
	}
}

func (r *DefaultRegistry) RegisterCatalog(c *data.Catalog) {
	if c == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.catalogs = append(r.catalogs, c)
}

// RegisterGameSystem appends a gameloop.System to the registry.
func (r *DefaultRegistry) RegisterGameSystem(sys gameloop.System) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gameSystems = append(r.gameSystems, sys)
}

func (r *DefaultRegistry) RegisterPluginMeta(meta PluginMeta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pluginMetas = append(r.pluginMetas, meta)
}

func (r *DefaultRegistry) RegisterHook(hook HookType, fn HookFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[hook] = append(r.hooks[hook], fn)
}

func (r *DefaultRegistry) RegisterCommand(name, description string, handler CommandFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, CommandRegistration{Name: name, Description: description, Handler: handler})
}

// RegisterPluginConfig registers a sample config struct for a plugin in the registry.
// The sample is returned by PluginConfig until a file is loaded.
func (r *DefaultRegistry) RegisterPluginConfig(name string, sample interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configSamples[name] = sample
	r.configs[name] = sample
}

// LoadPluginConfig loads a plugin's YAML config from dir/name.yaml into the registry.
// A missing file keeps the sample.
func (r *DefaultRegistry) LoadPluginConfig(name, dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sample, ok := r.configSamples[name]
	if !ok {
		return nil
	}
	t := reflect.TypeOf(sample)
	if t.Kind() != reflect.Ptr {
		return fmt.Errorf("config sample for %s must be a pointer to struct", name)
	}
	newPtr := reflect.New(t.Elem()).Interface()
	path := filepath.Join(dir, name+".yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, newPtr); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	r.configs[name] = newPtr
	return nil
}

func (r *DefaultRegistry) PluginConfig(name string) interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.configs[name]
}

// PluginConfigs returns all plugin configs keyed by plugin name.
func (r *DefaultRegistry) PluginConfigs() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]interface{}, len(r.configs))
	for k, v := range r.configs {
		out[k] = v
	}
	return out
}

func (r *DefaultRegistry) Catalogs() []*data.Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*data.Catalog(nil), r.catalogs...)
}

func (r *DefaultRegistry) GameSystems() []gameloop.System {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]gameloop.System(nil), r.gameSystems...)
}

func (r *DefaultRegistry) PluginMetas() []PluginMeta {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]PluginMeta(nil), r.pluginMetas...)
}

func (r *DefaultRegistry) Hooks(hook HookType) []HookFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]HookFunc(nil), r.hooks[hook]...)
}

func (r *DefaultRegistry) Commands() []CommandRegistration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]CommandRegistration(nil), r.commands...)
}

// Command looks up a command by name.
func (r *DefaultRegistry) Command(name string) (CommandRegistration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.commands {
		if c.Name == name {
			return c, true
		}
	}
	return CommandRegistration{}, false
}

// Fire calls every handler of hook in registration order.
func (r *DefaultRegistry) Fire(hook HookType, args ...interface{}) {
	for _, h := range r.Hooks(hook) {
		h(args...)
	}
}

// MarkCore marks the current registry state as the core, so plugin additions can be cleared later.
func (r *DefaultRegistry) MarkCore() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coreCatalogCount = len(r.catalogs)
	r.coreSystemCount = len(r.gameSystems)
	r.coreCommandCount = len(r.commands)
	r.corePluginMetaCount = len(r.pluginMetas)
	r.coreHooks = make(map[HookType][]HookFunc, len(r.hooks))
	for k, v := range r.hooks {
		r.coreHooks[k] = append([]HookFunc{}, v...)
	}
}

// ClearPlugins removes all registrations added after the last core mark.
func (r *DefaultRegistry) ClearPlugins() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.coreCatalogCount <= len(r.catalogs) {
		r.catalogs = r.catalogs[:r.coreCatalogCount]
	}
	if r.coreSystemCount <= len(r.gameSystems) {
		r.gameSystems = r.gameSystems[:r.coreSystemCount]
	}
	if r.coreCommandCount <= len(r.commands) {
		r.commands = r.commands[:r.coreCommandCount]
	}
	if r.corePluginMetaCount <= len(r.pluginMetas) {
		r.pluginMetas = r.pluginMetas[:r.corePluginMetaCount]
	}
	r.hooks = make(map[HookType][]HookFunc, len(r.coreHooks))
	for k, v := range r.coreHooks {
		r.hooks[k] = append([]HookFunc{}, v...)
	}
}

// PluginAPIVersion defines the current plugin API version.
const PluginAPIVersion = "1"

// PluginManager handles loading of plugins from shared object files.
type PluginManager struct {
	// Dir is the directory where plugin .so files are located.
	Dir    string
	logger *zap.SugaredLogger
	mu     sync.Mutex
}

// NewPluginManager creates a PluginManager for a given directory.
func NewPluginManager(dir string, logger *zap.SugaredLogger) *PluginManager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &PluginManager{Dir: dir, logger: logger}
}

var (
	pluginLoadCount  = expvar.NewInt("plugins_loaded")
	pluginSkipCount  = expvar.NewInt("plugins_skipped")
	pluginErrorCount = expvar.NewInt("plugins_errors")
)

// readMeta looks for base.json, base.yaml or base.yml next to the plugin.
func (pm *PluginManager) readMeta(base string) (PluginMeta, bool) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		metaPath := filepath.Join(pm.Dir, base+ext)
		raw, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}
		var meta PluginMeta
		if ext == ".json" {
			err = json.Unmarshal(raw, &meta)
		} else {
			err = yaml.Unmarshal(raw, &meta)
		}
		if err != nil {
			pm.logger.Warnw("failed to parse plugin metadata", "path", metaPath, "error", err)
			continue
		}
		return meta, true
	}
	return PluginMeta{}, false
}

// LoadPlugins loads all plugins in pm.Dir and invokes their Register function.
func (pm *PluginManager) LoadPlugins(reg PluginRegistry) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	entries, err := os.ReadDir(pm.Dir)
	if err != nil {
		pluginErrorCount.Add(1)
		return fmt.Errorf("cannot read plugin directory %s: %w", pm.Dir, err)
	}
	for _, f := range entries {
		if f.IsDir() || filepath.Ext(f.Name()) != ".so" {
			continue
		}
		base := strings.TrimSuffix(f.Name(), ".so")
		if meta, ok := pm.readMeta(base); ok {
			if meta.Version != PluginAPIVersion {
				pm.logger.Warnw("skipping plugin: version mismatch",
					"plugin", meta.Name, "got", meta.Version, "expected", PluginAPIVersion)
				pluginSkipCount.Add(1)
				continue
			}
			reg.RegisterPluginMeta(meta)
		}

		pluginPath := filepath.Join(pm.Dir, f.Name())
		for _, h := range reg.Hooks(HookBeforePluginLoad) {
			h(pluginPath)
		}
		p, err := pluginpkg.Open(pluginPath)
		if err != nil {
			pluginErrorCount.Add(1)
			return fmt.Errorf("failed to open plugin %s: %w", pluginPath, err)
		}
		sym, err := p.Lookup("Register")
		if err != nil {
			pluginErrorCount.Add(1)
			pm.logger.Warnw("no Register symbol", "plugin", pluginPath, "error", err)
			continue
		}
		pm.register(reg, sym, base, pluginPath)
	}
	return nil
}

func (pm *PluginManager) register(reg PluginRegistry, sym pluginpkg.Symbol, base, pluginPath string) {
	defer func() {
		if r := recover(); r != nil {
			pluginErrorCount.Add(1)
			pm.logger.Errorw("panic in plugin Register", "plugin", pluginPath, "panic", r)
		}
	}()
	registerFunc, ok := sym.(func(PluginRegistry))
	if !ok {
		pluginErrorCount.Add(1)
		pm.logger.Warnw("invalid Register signature", "plugin", pluginPath)
		return
	}
	registerFunc(reg)
	if err := reg.LoadPluginConfig(base, pm.Dir); err != nil {
		pluginErrorCount.Add(1)
		pm.logger.Warnw("failed to load plugin config", "plugin", base, "error", err)
	}
	pluginLoadCount.Add(1)
	pm.logger.Infow("plugin loaded", "plugin", pluginPath)
	for _, h := range reg.Hooks(HookAfterPluginLoad) {
		h(pluginPath)
	}
}

// UnloadPlugins triggers unload hooks for all loaded plugins.
func (pm *PluginManager) UnloadPlugins(reg PluginRegistry) {
	metas := reg.PluginMetas()
	for _, meta := range metas {
		for _, h := range reg.Hooks(HookBeforePluginUnload) {
			h(meta)
		}
	}
	for _, meta := range metas {
		for _, h := range reg.Hooks(HookAfterPluginUnload) {
			h(meta)
		}
	}
}

// ReloadPlugins unloads existing plugins and reloads them.
func (pm *PluginManager) ReloadPlugins(reg PluginRegistry) error {
	pm.UnloadPlugins(reg)
	reg.ClearPlugins()
	return pm.LoadPlugins(reg)
}

// BuildCatalog merges every registered catalog over base in registration order.
func BuildCatalog(base *data.Catalog, reg PluginRegistry) *data.Catalog {
	out := base
	for _, c := range reg.Catalogs() {
		out = data.Merge(out, c)
	}
	return out
}
