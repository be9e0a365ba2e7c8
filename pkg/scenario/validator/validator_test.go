package validator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jihwankim/netfabric/pkg/scenario"
	"github.com/jihwankim/netfabric/pkg/scenario/validator"
)

func validScenario() *scenario.Scenario {
	return &scenario.Scenario{
		Metadata: scenario.Metadata{Name: "demo"},
		Spec: scenario.Spec{
			Servers: []scenario.ServerSpec{{Name: "server-0"}},
			Clients: []scenario.ClientSpec{{Name: "client-0", ConnectsTo: "server-0", Enabled: true}},
			Script:  []scenario.CallSpec{{Client: "client-0", Service: "Echo", Method: "Call", Payload: "ping"}},
		},
	}
}

func TestValidateAcceptsWellFormedScenario(t *testing.T) {
	v := validator.New()
	require.NoError(t, v.Validate(validScenario()))
	require.False(t, v.HasWarnings())
}

func TestValidateRejectsUnknownServerReference(t *testing.T) {
	s := validScenario()
	s.Spec.Clients[0].ConnectsTo = "server-missing"

	v := validator.New()
	require.Error(t, v.Validate(s))
}

func TestValidateRejectsUnknownClientInScript(t *testing.T) {
	s := validScenario()
	s.Spec.Script[0].Client = "client-missing"

	v := validator.New()
	require.Error(t, v.Validate(s))
}

func TestValidateWarnsOnDisabledClient(t *testing.T) {
	s := validScenario()
	s.Spec.Clients[0].Enabled = false

	v := validator.New()
	require.NoError(t, v.Validate(s))
	require.True(t, v.HasWarnings())
}

func TestValidateRejectsMissingServers(t *testing.T) {
	s := validScenario()
	s.Spec.Servers = nil

	v := validator.New()
	require.Error(t, v.Validate(s))
}
