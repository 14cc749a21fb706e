package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCBORRoundTrip(t *testing.T) {
	type payload struct {
		Name  string
		Count int
	}

	in := payload{Name: "widget", Count: 3}
	encoded, err := Default.Encode(in)
	require.NoError(t, err)

	var out payload
	require.NoError(t, Default.Decode(encoded, &out))
	assert.Equal(t, in, out)
}
