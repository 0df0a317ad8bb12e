package bmv2

import (
	"errors"
	"fmt"
	"io"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pair"

	// Register the transports bmv2 deployments use.
	_ "go.nanomsg.org/mangos/v3/transport/ipc"
	_ "go.nanomsg.org/mangos/v3/transport/tcp"
)

// replyWindow is how long SendAndReceive keeps collecting replies after
// the last one arrived.
const replyWindow = time.Second

// Client is a pair-socket connection to a bmv2 process started with
// --packet-in.
type Client struct {
	sock mangos.Socket

	// Trace, when non-nil, receives one line per sent and received
	// message.
	Trace io.Writer
}

// Dial connects to the bmv2 simulated-device socket at addr, e.g.
// "ipc:///tmp/bmv2-packet.ipc" or "tcp://127.0.0.1:9001".
func Dial(addr string) (*Client, error) {
	sock, err := pair.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("create pair socket: %w", err)
	}
	if err := sock.Dial(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{sock: sock}, nil
}

// Close closes the socket.
func (c *Client) Close() error {
	return c.sock.Close()
}

// Send transmits one message.
func (c *Client) Send(msg Message) error {
	c.trace("send %s", msg)
	if err := c.sock.Send(msg.Encode()); err != nil {
		return fmt.Errorf("send %s: %w", msg, err)
	}
	return nil
}

// SendAndReceive sends request, then collects replies until no more
// arrive within the reply window, and returns them. Ordinarily request
// is a PacketIn, and the replies are the PacketOut messages the switch
// program produced in response.
func (c *Client) SendAndReceive(request Message) ([]Message, error) {
	if err := c.Send(request); err != nil {
		return nil, err
	}

	if err := c.sock.SetOption(mangos.OptionRecvDeadline, replyWindow); err != nil {
		return nil, fmt.Errorf("set receive deadline: %w", err)
	}

	var replies []Message
	for {
		data, err := c.sock.Recv()
		if err != nil {
			if errors.Is(err, mangos.ErrRecvTimeout) {
				return replies, nil
			}
			return replies, fmt.Errorf("receive: %w", err)
		}

		reply, err := Decode(data)
		if err != nil {
			return replies, fmt.Errorf("decode reply: %w", err)
		}
		c.trace("receive %s", reply)
		replies = append(replies, reply)
	}
}

func (c *Client) trace(format string, args ...interface{}) {
	if c.Trace != nil {
		fmt.Fprintf(c.Trace, format+"\n", args...)
	}
}
