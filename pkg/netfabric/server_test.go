package netfabric_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jihwankim/netfabric/pkg/netfabric"
)

// handler4 is a fixture handler: it returns a fixed reply for an empty
// request and reports a decode error for anything else, without
// touching the output.
func handler4(req []byte) ([]byte, error) {
	if len(req) != 0 {
		return nil, netfabric.ErrDecode
	}
	return []byte("pointer"), nil
}

func TestServerDispatchBasics(t *testing.T) {
	srv := netfabric.NewServerBuilder("junk").
		AddHandler("junk.handler4", handler4).
		Build()

	reply, err := srv.Dispatch("junk.handler4", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("pointer"), reply)

	reply, err = srv.Dispatch("junk.handler4", []byte("garbage"))
	require.Error(t, err)
	assert.ErrorIs(t, err, netfabric.ErrDecode)
	assert.Nil(t, reply)

	reply, err = srv.Dispatch("unknown.x", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, netfabric.ErrUnimplemented)
	assert.Nil(t, reply)

	assert.Equal(t, uint64(3), srv.Count())
}

func TestServerRebindAllocatesFreshID(t *testing.T) {
	first := netfabric.NewServerBuilder("x").Build()
	second := netfabric.NewServerBuilder("x").Build()

	assert.Equal(t, "x", first.Name())
	assert.Equal(t, "x", second.Name())
	assert.Greater(t, second.ID(), first.ID())
}

func TestFQName(t *testing.T) {
	assert.Equal(t, "junk.handler4", netfabric.FQName("junk", "handler4"))
}
