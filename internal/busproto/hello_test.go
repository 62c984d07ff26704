package busproto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallHelloAnswersFixedUniqueName(t *testing.T) {
	client, server := pipePeers()
	defer client.Close()
	defer server.Close()

	InstallHello(server)

	reply, err := client.Call(HelloPath, HelloIface, HelloMethod, nil, time.Second)
	require.NoError(t, err)

	var name string
	require.NoError(t, reply.Decode(&name))
	assert.Equal(t, fakeUniqueName, name)
}
