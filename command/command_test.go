package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryRouting(t *testing.T) {
	cases := []struct {
		cmd  Command
		want Category
	}{
		{Put{Key: []byte("k")}, CategoryDatabase},
		{Get{Key: []byte("k")}, CategoryDatabase},
		{ConnectPeer{}, CategoryNetwork},
		{Bootstrap{}, CategoryNetwork},
		{Shutdown{}, CategorySystem},
		{Reload{}, CategoryConfiguration},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.cmd.Category())
	}
}

func TestReplyToNilForFireAndForget(t *testing.T) {
	var cmd Bootstrap
	assert.Nil(t, cmd.ReplyTo())

	ch := make(chan Response, 1)
	cmd.Reply = ch
	assert.NotNil(t, cmd.ReplyTo())
}
