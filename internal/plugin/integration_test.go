package plugin_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annelo/rwsim/internal/plugin"
)

// Needs the shared object built first:
// go build -buildmode=plugin -o plugins/sampleplugin/sampleplugin.so ./plugins/sampleplugin
func TestIntegration_SamplePlugin(t *testing.T) {
	pluginDir := filepath.Join("..", "..", "plugins", "sampleplugin")
	if _, err := os.Stat(filepath.Join(pluginDir, "sampleplugin.so")); err != nil {
		t.Skip("sampleplugin.so not built")
	}

	reg := plugin.NewDefaultRegistry()
	pm := plugin.NewPluginManager(pluginDir, nil)
	reg.MarkCore()
	require.NoError(t, pm.LoadPlugins(reg))

	metas := reg.PluginMetas()
	require.Len(t, metas, 1)
	assert.Equal(t, "sampleplugin", metas[0].Name)

	assert.NotEmpty(t, reg.Catalogs(), "expected the sample vehicle catalog")
	assert.NotEmpty(t, reg.GameSystems(), "expected the curfew system")
	assert.NotEmpty(t, reg.Hooks(plugin.HookWorldEvent))

	sinfo, ok := reg.Command("sampleinfo")
	require.True(t, ok, "expected sampleinfo command")
	out, err := sinfo.Handler(nil)
	assert.NoError(t, err)
	assert.Contains(t, out, "Greeting: Hello from SamplePlugin")
	assert.Contains(t, out, "Value: 123")

	assert.NotNil(t, reg.PluginConfig("sampleplugin"))

	require.NoError(t, pm.ReloadPlugins(reg))
	assert.Len(t, reg.PluginMetas(), 1, "reload does not duplicate registrations")
}
