package plugin_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/annelo/rwsim/internal/plugin"
)

func TestPluginManager_UnloadPlugins_CallsHooks(t *testing.T) {
	reg := plugin.NewDefaultRegistry()
	reg.RegisterPluginMeta(plugin.PluginMeta{Name: "p1", Version: plugin.PluginAPIVersion})
	reg.RegisterPluginMeta(plugin.PluginMeta{Name: "p2", Version: plugin.PluginAPIVersion})

	var calledBefore, calledAfter []string
	reg.RegisterHook(plugin.HookBeforePluginUnload, func(args ...interface{}) {
		if m, ok := args[0].(plugin.PluginMeta); ok {
			calledBefore = append(calledBefore, m.Name)
		}
	})
	reg.RegisterHook(plugin.HookAfterPluginUnload, func(args ...interface{}) {
		if m, ok := args[0].(plugin.PluginMeta); ok {
			calledAfter = append(calledAfter, m.Name)
		}
	})

	pm := plugin.NewPluginManager("", nil)
	pm.UnloadPlugins(reg)

	assert.Equal(t, []string{"p1", "p2"}, calledBefore)
	assert.Equal(t, []string{"p1", "p2"}, calledAfter)
}

func TestPluginManager_LoadPlugins_InvalidDir_ReturnsError(t *testing.T) {
	pm := plugin.NewPluginManager("/nonexistent_directory_for_tests", zaptest.NewLogger(t).Sugar())
	assert.Error(t, pm.LoadPlugins(plugin.NewDefaultRegistry()))
}

func TestPluginManager_VersionMismatchIsSkipped(t *testing.T) {
	dir := t.TempDir()
	// файл не является настоящим плагином, но до Open дело не дойдёт
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.so"), []byte("junk"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.yaml"), []byte("name: old\nversion: \"0\"\n"), 0644))

	reg := plugin.NewDefaultRegistry()
	var opened []string
	reg.RegisterHook(plugin.HookBeforePluginLoad, func(args ...interface{}) {
		opened = append(opened, args[0].(string))
	})

	pm := plugin.NewPluginManager(dir, zaptest.NewLogger(t).Sugar())
	require.NoError(t, pm.LoadPlugins(reg))
	assert.Empty(t, reg.PluginMetas())
	assert.Empty(t, opened)
}

func TestPluginManager_ConcurrentLoad(t *testing.T) {
	pm := plugin.NewPluginManager(t.TempDir(), nil)
	reg := plugin.NewDefaultRegistry()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = pm.LoadPlugins(reg)
	}()
	go func() {
		defer wg.Done()
		_ = pm.LoadPlugins(reg)
	}()
	wg.Wait()
}
