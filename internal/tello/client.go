package tello

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/ironsheep/tello-linetrace/internal/util"
)

// Default network endpoints.
const (
	DefaultAddr      = "192.168.10.1:8889"
	DefaultLocalAddr = ":8889"
)

// Client sends SDK commands to the vehicle over UDP.
//
// All methods are safe for concurrent use. Send failures are logged and
// otherwise ignored.
type Client struct {
	commander

	conn   *net.UDPConn
	remote *net.UDPAddr

	mu        sync.Mutex
	sent      uint64
	failed    uint64
	lastReply string

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// Dial binds localAddr and prepares to send to remoteAddr. A background
// goroutine logs every reply until Close is called.
func Dial(localAddr, remoteAddr string) (*Client, error) {
	remote, err := net.ResolveUDPAddr("udp", remoteAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vehicle address: %w", err)
	}
	local, err := net.ResolveUDPAddr("udp", localAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve local address: %w", err)
	}
	conn, err := net.ListenUDP("udp", local)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", localAddr, err)
	}

	c := &Client{conn: conn, remote: remote}
	c.commander = commander{send: c.Send}

	c.wg.Add(1)
	go c.readLoop()

	return c, nil
}

// LocalAddr returns the bound local address.
func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// Send writes one command datagram.
func (c *Client) Send(cmd string) {
	_ = c.conn.SetWriteDeadline(time.Now().Add(100 * time.Millisecond))
	_, err := c.conn.WriteToUDP([]byte(cmd), c.remote)

	c.mu.Lock()
	if err != nil {
		c.failed++
	} else {
		c.sent++
	}
	c.mu.Unlock()

	if err != nil {
		util.Error("tello: send %q failed: %v", cmd, err)
		return
	}
	util.Debug("tello: -> %s", cmd)
}

// Stats returns the number of sent and failed commands.
func (c *Client) Stats() (sent, failed uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sent, c.failed
}

// LastReply returns the most recent reply received from the vehicle.
func (c *Client) LastReply() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReply
}

// Close stops the reply reader and releases the socket.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
		c.wg.Wait()
	})
	return err
}

func (c *Client) readLoop() {
	defer c.wg.Done()

	buf := make([]byte, 1518)
	for {
		n, from, err := c.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			util.Debug("tello: read failed: %v", err)
			continue
		}
		reply := string(buf[:n])

		c.mu.Lock()
		c.lastReply = reply
		c.mu.Unlock()

		util.Debug("tello: <- %s (%s)", reply, from)
	}
}
