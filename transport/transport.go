package transport

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net"
	"os"
	"strconv"

	"github.com/carn181/mlsp/logging"
)

type TransportMethod int

const (
	Stdin TransportMethod = iota
	Socket
)

// TransportType distinguishes which side of a socket connection we are,
// so the same Transport can be reused for both the server and its test
// client.
type TransportType int

const (
	Client TransportType = iota
	Server
)

// DefaultSocketAddr is used when Transport.Addr is left empty.
const DefaultSocketAddr = ":5007"

// Transport frames JSON-RPC messages over either stdio or a TCP socket.
type Transport struct {
	Type    TransportType
	Method  TransportMethod
	Addr    string // socket address; defaults to DefaultSocketAddr when empty
	Scanner *bufio.Scanner
	conn    net.Conn
	ln      net.Listener
	Writer  io.Writer
	Closed  bool
}

func (t *Transport) Init(ttype TransportType, method TransportMethod) error {
	t.Method = method
	t.Type = ttype
	var r io.Reader

	switch t.Method {
	case Stdin:
		r = os.Stdin
		t.Writer = os.Stdout

	case Socket:
		addr := t.Addr
		if addr == "" {
			addr = DefaultSocketAddr
		}
		var conn net.Conn
		var err error
		switch t.Type {
		case Server:
			t.ln, err = net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			conn, err = t.ln.Accept()
			if err != nil {
				return err
			}
		case Client:
			conn, err = net.Dial("tcp", addr)
			if err != nil {
				return err
			}
			t.conn = conn
		}
		r = conn
		t.Writer = conn
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	scanner.Split(split)
	t.Scanner = scanner
	return nil
}

// Read returns one framed JSON-RPC message (header stripped).
func (t *Transport) Read() ([]byte, error) {
	t.Closed = !t.Scanner.Scan()
	return t.Scanner.Bytes(), t.Scanner.Err()
}

func (t *Transport) Write(msg []byte) error {
	header := []byte("Content-Length: " + strconv.Itoa(len(msg)) + "\r\n\r\n")
	_, err := t.Writer.Write(append(header, msg...))
	return err
}

func (t *Transport) WriteNotif(method string, params json.RawMessage) error {
	msg, err := json.Marshal(NotificationMessage{
		Message: Message{Jsonrpc: "2.0"},
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}
	return t.Write(msg)
}

func (t *Transport) WriteRequest(id interface{}, method string, params json.RawMessage) error {
	msg, err := json.Marshal(RequestMessage{
		Message: Message{Jsonrpc: "2.0"},
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}
	logging.Logger.Debug("writing request", "method", method)
	return t.Write(msg)
}

func (t *Transport) WriteResponse(id interface{}, result json.RawMessage, respErr *ResponseError) error {
	msg, err := json.Marshal(ResponseMessage{
		Message: Message{Jsonrpc: "2.0"},
		ID:      id,
		Result:  result,
		Error:   respErr,
	})
	if err != nil {
		return err
	}
	return t.Write(msg)
}

func (t *Transport) Close() {
	if t.Method == Socket {
		if t.Type == Client {
			t.conn.Close()
		} else {
			t.ln.Close()
		}
	}
}

// split is a bufio.SplitFunc that recognizes a Content-Length-framed
// JSON-RPC message.
func split(data []byte, _ bool) (advance int, token []byte, err error) {
	header, content, found := bytes.Cut(data, []byte{'\r', '\n', '\r', '\n'})
	if !found {
		return 0, nil, nil
	}

	if len(header) < len("Content-Length: ") {
		return 0, nil, errors.New("invalid header: " + string(header))
	}
	contentLengthBytes := header[len("Content-Length: "):]
	contentLength, err := strconv.Atoi(string(contentLengthBytes))
	if err != nil {
		return 0, nil, errors.New("invalid content length")
	}

	if len(content) < contentLength {
		return 0, nil, nil
	}

	totalLength := len(header) + 4 + contentLength
	return totalLength, data[:totalLength], nil
}

// GetMethod peeks at a framed message's method name without fully
// decoding its params.
func GetMethod(message []byte) (method string, err error) {
	var msg RPCMessage
	_, content, found := bytes.Cut(message, []byte{'\r', '\n', '\r', '\n'})
	if !found {
		return "", nil
	}
	err = json.Unmarshal(content, &msg)
	return msg.Method, err
}
