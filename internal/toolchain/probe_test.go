package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func envOf(kv map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := kv[key]
		return v, ok
	}
}

func TestProbeSystemWhenVariableSet(t *testing.T) {
	tc := Probe(Settings{}, ModeAuto, envOf(map[string]string{"ROOTSYS": "/opt/root"}))

	assert.Equal(t, ModeSystem, tc.Mode)
	assert.Equal(t, "/opt/root", tc.Root)
	assert.Equal(t, []string{"root-config"}, tc.Query)
	assert.Empty(t, tc.Requires)
	assert.Equal(t, []string{"cppyy_backend"}, tc.Packages)
}

func TestProbeSystemWhenVariableEmpty(t *testing.T) {
	tc := Probe(Settings{}, ModeAuto, envOf(map[string]string{"ROOTSYS": ""}))
	assert.Equal(t, ModeSystem, tc.Mode)
}

func TestProbeBundledWhenVariableMissing(t *testing.T) {
	tc := Probe(Settings{}, ModeAuto, envOf(nil))

	assert.Equal(t, ModeBundled, tc.Mode)
	assert.Equal(t, []string{"python", "-m", "cppyy_backend._cling_config"}, tc.Query)
	assert.Equal(t, []string{"cppyy-cling>6.14.2.1"}, tc.Requires)
	assert.Empty(t, tc.Packages)
}

func TestProbeForcedModeIgnoresEnvironment(t *testing.T) {
	tc := Probe(Settings{}, ModeBundled, envOf(map[string]string{"ROOTSYS": "/opt/root"}))
	assert.Equal(t, ModeBundled, tc.Mode)

	tc = Probe(Settings{}, ModeSystem, envOf(nil))
	assert.Equal(t, ModeSystem, tc.Mode)
	assert.Equal(t, []string{"root-config"}, tc.Query)
}

func TestProbeCustomSettings(t *testing.T) {
	s := Settings{
		EnvVar:          "CLING_HOME",
		SystemQuery:     []string{"cling-config"},
		BundledRequires: []string{},
	}

	tc := Probe(s, ModeAuto, envOf(map[string]string{"ROOTSYS": "/opt/root"}))
	assert.Equal(t, ModeBundled, tc.Mode, "only the configured variable counts")
	assert.Empty(t, tc.Requires)

	tc = Probe(s, ModeAuto, envOf(map[string]string{"CLING_HOME": "/opt/cling"}))
	assert.Equal(t, ModeSystem, tc.Mode)
	assert.Equal(t, []string{"cling-config"}, tc.Query)
}

func TestProbeDoesNotAliasSettings(t *testing.T) {
	s := DefaultSettings()
	tc := Probe(s, ModeBundled, envOf(nil))
	tc.Query[0] = "mutated"
	assert.Equal(t, "python", s.BundledQuery[0])
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeAuto, ModeSystem, ModeBundled} {
		got, err := ParseMode(m.String())
		assert.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := ParseMode("conda")
	assert.Error(t, err)
}
