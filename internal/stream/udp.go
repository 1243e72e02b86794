package stream

import (
	"context"
	"fmt"
	"net"
)

// PacketConn is the subset of a connected UDP socket the transport needs.
// It lets tests replace the socket.
type PacketConn interface {
	Write(b []byte) (int, error)
	Close() error
}

// UDPTransport sends each frame as one datagram to a fixed address.
type UDPTransport struct {
	conn    PacketConn
	address string
}

// NewUDPTransport dials the target address.
func NewUDPTransport(host string, port int) (*UDPTransport, error) {
	address := net.JoinHostPort(host, fmt.Sprint(port))
	udpAddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target address: %w", err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to create udp connection: %w", err)
	}
	return &UDPTransport{conn: conn, address: address}, nil
}

// NewUDPTransportConn wraps an existing connection.
func NewUDPTransportConn(conn PacketConn, address string) *UDPTransport {
	return &UDPTransport{conn: conn, address: address}
}

// Address returns the target host:port.
func (u *UDPTransport) Address() string {
	return u.address
}

// Send writes the encoded frame as a single datagram.
func (u *UDPTransport) Send(_ context.Context, records []Record) error {
	payload, err := EncodeFrame(records)
	if err != nil {
		return err
	}
	if _, err := u.conn.Write(payload); err != nil {
		return fmt.Errorf("udp send to %s: %w", u.address, err)
	}
	return nil
}

// Close closes the socket.
func (u *UDPTransport) Close() error {
	return u.conn.Close()
}
