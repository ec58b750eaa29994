package stompws

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// STOMP 1.2 commands used by this client.
const (
	CommandConnect     = "CONNECT"
	CommandConnected   = "CONNECTED"
	CommandSubscribe   = "SUBSCRIBE"
	CommandUnsubscribe = "UNSUBSCRIBE"
	CommandSend        = "SEND"
	CommandMessage     = "MESSAGE"
	CommandError       = "ERROR"
)

const (
	HeaderAcceptVersion = "accept-version"
	HeaderHost          = "host"
	HeaderHeartBeat     = "heart-beat"
	HeaderDestination   = "destination"
	HeaderID            = "id"
	HeaderSubscription  = "subscription"
	HeaderContentType   = "content-type"
	HeaderContentLength = "content-length"
	HeaderMessage       = "message"
	HeaderAuthorization = "Authorization"
)

// Frame is a single STOMP frame. Header order is preserved because the
// protocol gives the first occurrence of a repeated header precedence.
type Frame struct {
	Command string
	headers [][2]string
	Body    []byte
}

func NewFrame(command string) *Frame {
	return &Frame{Command: command}
}

func (f *Frame) Header(key string) string {
	for _, h := range f.headers {
		if h[0] == key {
			return h[1]
		}
	}

	return ""
}

func (f *Frame) hasHeader(key string) bool {
	for _, h := range f.headers {
		if h[0] == key {
			return true
		}
	}

	return false
}

func (f *Frame) SetHeader(key, value string) *Frame {
	for i, h := range f.headers {
		if h[0] == key {
			f.headers[i][1] = value
			return f
		}
	}

	f.headers = append(f.headers, [2]string{key, value})
	return f
}

// escapeHeader applies the STOMP 1.2 header escaping rules. The protocol
// exempts CONNECT and CONNECTED frames.
func escapeHeader(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "\r", "\\r", "\n", "\\n", ":", "\\c")
	return r.Replace(s)
}

func unescapeHeader(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}

		i++
		if i >= len(s) {
			return "", fmt.Errorf("dangling escape in header %q", s)
		}
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case 'r':
			b.WriteByte('\r')
		case 'n':
			b.WriteByte('\n')
		case 'c':
			b.WriteByte(':')
		default:
			return "", fmt.Errorf("invalid escape sequence \\%c in header %q", s[i], s)
		}
	}

	return b.String(), nil
}

func (f *Frame) escaped() bool {
	return f.Command != CommandConnect && f.Command != CommandConnected
}

// Marshal renders the frame as a NUL-terminated STOMP wire frame.
func (f *Frame) Marshal() []byte {
	var b bytes.Buffer
	b.WriteString(f.Command)
	b.WriteByte('\n')

	for _, h := range f.headers {
		k, v := h[0], h[1]
		if f.escaped() {
			k, v = escapeHeader(k), escapeHeader(v)
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(v)
		b.WriteByte('\n')
	}
	if len(f.Body) > 0 && f.Header(HeaderContentLength) == "" {
		b.WriteString(HeaderContentLength)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(len(f.Body)))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	b.Write(f.Body)
	b.WriteByte(0)

	return b.Bytes()
}

// errHeartBeat marks an inbound heart-beat, which carries no frame.
var errHeartBeat = fmt.Errorf("heart-beat")

// Unmarshal parses one wire frame. A bare EOL is a heart-beat and yields
// errHeartBeat.
func Unmarshal(data []byte) (*Frame, error) {
	data = bytes.TrimPrefix(data, []byte("\r"))
	if len(data) == 0 || data[0] == '\n' {
		return nil, errHeartBeat
	}

	head, body, found := bytes.Cut(data, []byte("\n\n"))
	if !found {
		head, body, found = bytes.Cut(data, []byte("\r\n\r\n"))
		if !found {
			return nil, fmt.Errorf("frame has no header terminator")
		}
	}

	lines := strings.Split(string(head), "\n")
	f := NewFrame(strings.TrimSuffix(lines[0], "\r"))
	if f.Command == "" {
		return nil, fmt.Errorf("frame has no command")
	}

	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed header line %q", line)
		}
		if f.escaped() {
			var err error
			if k, err = unescapeHeader(k); err != nil {
				return nil, err
			}
			if v, err = unescapeHeader(v); err != nil {
				return nil, err
			}
		}
		// first occurrence wins
		if !f.hasHeader(k) {
			f.SetHeader(k, v)
		}
	}

	if n := f.Header(HeaderContentLength); n != "" {
		length, err := strconv.Atoi(n)
		if err != nil || length < 0 || length > len(body) {
			return nil, fmt.Errorf("invalid content-length %q", n)
		}
		f.Body = body[:length]
	} else {
		f.Body = bytes.TrimSuffix(body, []byte{0})
	}

	return f, nil
}
