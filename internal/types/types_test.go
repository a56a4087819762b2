package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRecipient(t *testing.T) {
	tcases := []struct {
		name      string
		wireId    int
		err       bool
		broadcast bool
		userId    int
	}{
		{
			name:      "zero is broadcast",
			wireId:    0,
			broadcast: true,
		},
		{
			name:   "positive id is direct",
			wireId: 42,
			userId: 42,
		},
		{
			name:   "negative id is rejected",
			wireId: -1,
			err:    true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := ParseRecipient(tc.wireId)
			if tc.err {
				assert.Error(t, err, "expected error for wire id %d", tc.wireId)
				return
			}
			assert.NoError(t, err, "expected no error for wire id %d", tc.wireId)
			assert.Equal(t, tc.broadcast, r.IsBroadcast(), "expected broadcast flag to match")
			assert.Equal(t, tc.userId, r.UserId(), "expected user id to match")
			assert.Equal(t, tc.wireId, r.WireId(), "expected wire id to round-trip")
		})
	}
}

func TestRecipientConstructors(t *testing.T) {
	b := Broadcast()
	assert.True(t, b.IsBroadcast(), "expected Broadcast to be broadcast")
	assert.Equal(t, BroadcastWireId, b.WireId(), "expected broadcast wire id")

	d := Direct(7)
	assert.False(t, d.IsBroadcast(), "expected Direct to not be broadcast")
	assert.Equal(t, 7, d.UserId(), "expected direct user id")
	assert.Equal(t, 7, d.WireId(), "expected direct wire id")
}
