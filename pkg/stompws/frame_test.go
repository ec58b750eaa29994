package stompws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalSend(t *testing.T) {
	frame := NewFrame(CommandSend).
		SetHeader(HeaderDestination, "/app/watch-party/join").
		SetHeader(HeaderContentType, "application/json")
	frame.Body = []byte(`{"roomId":"r1"}`)

	data := frame.Marshal()

	assert.Equal(t, "SEND\ndestination:/app/watch-party/join\ncontent-type:application/json\ncontent-length:15\n\n{\"roomId\":\"r1\"}\x00", string(data))
}

func TestMarshalConnectSkipsEscaping(t *testing.T) {
	frame := NewFrame(CommandConnect).
		SetHeader(HeaderAcceptVersion, "1.2").
		SetHeader(HeaderHost, "/")

	data := frame.Marshal()

	assert.Equal(t, "CONNECT\naccept-version:1.2\nhost:/\n\n\x00", string(data))
}

func TestRoundTripEscapedHeaders(t *testing.T) {
	frame := NewFrame(CommandMessage).
		SetHeader(HeaderDestination, "/topic/a:b").
		SetHeader("note", "line1\nline2\\end")
	frame.Body = []byte("body")

	parsed, err := Unmarshal(frame.Marshal())
	require.NoError(t, err)

	assert.Equal(t, CommandMessage, parsed.Command)
	assert.Equal(t, "/topic/a:b", parsed.Header(HeaderDestination))
	assert.Equal(t, "line1\nline2\\end", parsed.Header("note"))
	assert.Equal(t, []byte("body"), parsed.Body)
}

func TestUnmarshal(t *testing.T) {
	tcases := []struct {
		name    string
		data    string
		command string
		err     bool
	}{
		{
			name:    "connected",
			data:    "CONNECTED\nversion:1.2\n\n\x00",
			command: CommandConnected,
		},
		{
			name:    "message with body",
			data:    "MESSAGE\nsubscription:s1\ndestination:/topic/x\n\n{\"a\":1}\x00",
			command: CommandMessage,
		},
		{
			name:    "crlf line endings",
			data:    "ERROR\r\nmessage:bad frame\r\n\r\n\x00",
			command: CommandError,
		},
		{
			name: "no header terminator",
			data: "MESSAGE\nsubscription:s1",
			err:  true,
		},
		{
			name: "header without colon",
			data: "MESSAGE\nnocolon\n\n\x00",
			err:  true,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			frame, err := Unmarshal([]byte(tc.data))
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.command, frame.Command)
		})
	}
}

func TestUnmarshalHeartBeat(t *testing.T) {
	_, err := Unmarshal([]byte("\n"))
	assert.ErrorIs(t, err, errHeartBeat)

	_, err = Unmarshal([]byte("\r\n"))
	assert.ErrorIs(t, err, errHeartBeat)
}

func TestUnmarshalContentLength(t *testing.T) {
	// NUL inside the body must be preserved when content-length says so
	frame, err := Unmarshal([]byte("MESSAGE\nsubscription:s1\ncontent-length:5\n\nab\x00cd\x00"))
	require.NoError(t, err)
	assert.Equal(t, []byte("ab\x00cd"), frame.Body)

	_, err = Unmarshal([]byte("MESSAGE\ncontent-length:999\n\nshort\x00"))
	assert.Error(t, err)
}

func TestFirstHeaderOccurrenceWins(t *testing.T) {
	frame, err := Unmarshal([]byte("MESSAGE\nfoo:first\nfoo:second\n\n\x00"))
	require.NoError(t, err)
	assert.Equal(t, "first", frame.Header("foo"))
}
