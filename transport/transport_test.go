package transport_test

import (
	"bytes"
	"testing"

	"github.com/carn181/mlsp/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocketRoundTrip(t *testing.T) {
	addr := "127.0.0.1:58071"
	expectedMsg := []byte("Content-Length: 4\r\n\r\nHey!")

	done := make(chan struct{})
	go func() {
		defer close(done)
		var srv transport.Transport
		srv.Addr = addr
		require.NoError(t, srv.Init(transport.Server, transport.Socket))
		defer srv.Close()

		msg, err := srv.Read()
		require.NoError(t, err)
		assert.True(t, bytes.Equal(msg, expectedMsg), "got %q", msg)
	}()

	var cl transport.Transport
	cl.Addr = addr
	for i := 0; i < 50; i++ {
		if err := cl.Init(transport.Client, transport.Socket); err == nil {
			break
		}
	}
	require.NoError(t, cl.Write([]byte("Hey!")))
	cl.Close()
	<-done
}

func TestGetMethodFromFramedMessage(t *testing.T) {
	msg := []byte("Content-Length: 39\r\n\r\n{\"jsonrpc\":\"2.0\",\"method\":\"initialize\"}")
	method, err := transport.GetMethod(msg)
	require.NoError(t, err)
	assert.Equal(t, "initialize", method)
}
