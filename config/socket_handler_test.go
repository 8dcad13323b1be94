package config

import (
	"testing"
	"time"

	socketio "github.com/doquangtan/socket.io/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"matchcore/app/services"
	"matchcore/app/utils"
)

func TestIdentifyAcceptsTokenForms(t *testing.T) {
	h := NewSocketHandler(services.NewSocketService(nil), "secret", zap.NewNop())
	token, err := utils.GenerateToken("alice", "secret", time.Hour)
	require.NoError(t, err)

	for name, data := range map[string]interface{}{
		"string": token,
		"object": map[string]interface{}{"token": token},
	} {
		t.Run(name, func(t *testing.T) {
			userID, err := h.identify(&socketio.EventPayload{Data: []interface{}{data}})
			require.NoError(t, err)
			assert.Equal(t, "alice", userID)
		})
	}
}

func TestIdentifyRejectsBadInput(t *testing.T) {
	h := NewSocketHandler(services.NewSocketService(nil), "secret", zap.NewNop())
	foreign, err := utils.GenerateToken("alice", "other-secret", time.Hour)
	require.NoError(t, err)

	cases := map[string][]interface{}{
		"no data":       nil,
		"wrong type":    {42},
		"empty token":   {map[string]interface{}{"token": ""}},
		"foreign token": {foreign},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.identify(&socketio.EventPayload{Data: data})
			assert.Error(t, err)
		})
	}
}

func TestEmitToUnknownSocket(t *testing.T) {
	h := NewSocketHandler(services.NewSocketService(nil), "secret", zap.NewNop())
	assert.Error(t, h.emitTo("missing", "newMatch", nil))
}
