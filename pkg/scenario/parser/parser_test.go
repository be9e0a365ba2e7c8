package parser_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jihwankim/netfabric/pkg/scenario/parser"
)

const minimalScenario = `
apiVersion: netfabric/v1
kind: Scenario
metadata:
  name: ${NAME}
spec:
  servers:
    - name: server-0
  clients:
    - name: client-0
      connects_to: server-0
      enabled: true
`

func TestParseFileSubstitutesVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0644))

	p := parser.New(map[string]string{"NAME": "substituted-name"})
	s, err := p.ParseFile(path)
	require.NoError(t, err)
	require.Equal(t, "substituted-name", s.Metadata.Name)
	require.Len(t, s.Spec.Servers, 1)
}

func TestParseRejectsMissingRequiredFields(t *testing.T) {
	p := parser.New(nil)
	_, err := p.Parse([]byte("apiVersion: netfabric/v1\nkind: Scenario\n"))
	require.Error(t, err)
}

func TestApplyOverridesSetsPolicy(t *testing.T) {
	p := parser.New(map[string]string{"NAME": "overrides"})
	s, err := p.Parse([]byte(minimalScenario))
	require.NoError(t, err)

	err = parser.ApplyOverrides(s, map[string]string{"reliable": "false"})
	require.NoError(t, err)
	require.False(t, s.Spec.Policy.Reliable)
}

func TestApplyOverridesRejectsUnknownKey(t *testing.T) {
	p := parser.New(map[string]string{"NAME": "overrides"})
	s, err := p.Parse([]byte(minimalScenario))
	require.NoError(t, err)

	err = parser.ApplyOverrides(s, map[string]string{"nope": "x"})
	require.Error(t, err)
}
