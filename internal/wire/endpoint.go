package wire

import (
	"encoding/binary"
	"fmt"
)

const (
	// EndpointSize is the wire size of one endpoint descriptor.
	EndpointSize = 6
	// DiscoveryReplySize is the wire size of a rendezvous reply:
	// dealer endpoint followed by subscriber endpoint.
	DiscoveryReplySize = 2 * EndpointSize
)

// Endpoint is one IPv4+port descriptor from the discovery exchange.
type Endpoint struct {
	IP   [4]byte
	Port uint16
}

// Addr returns the endpoint in dialable form, e.g. "tcp://127.0.0.1:5556".
func (e Endpoint) Addr() string {
	return fmt.Sprintf("tcp://%d.%d.%d.%d:%d", e.IP[0], e.IP[1], e.IP[2], e.IP[3], e.Port)
}

// DecodeEndpoint parses a 6-byte endpoint descriptor.
func DecodeEndpoint(b []byte) (Endpoint, error) {
	if len(b) < EndpointSize {
		return Endpoint{}, ErrShortEndpoint
	}
	var e Endpoint
	copy(e.IP[:], b[0:4])
	e.Port = binary.LittleEndian.Uint16(b[4:6])
	return e, nil
}

// EncodeEndpoint renders an endpoint in its 6-byte wire form.
func EncodeEndpoint(e Endpoint) []byte {
	buf := make([]byte, EndpointSize)
	copy(buf[0:4], e.IP[:])
	binary.LittleEndian.PutUint16(buf[4:6], e.Port)
	return buf
}

// DecodeDiscoveryReply parses a rendezvous reply into the dealer and
// subscriber endpoints. Trailing bytes beyond the two descriptors are
// ignored.
func DecodeDiscoveryReply(b []byte) (dealer, sub Endpoint, err error) {
	if len(b) < DiscoveryReplySize {
		return Endpoint{}, Endpoint{}, ErrBadDiscoveryReply
	}
	dealer, err = DecodeEndpoint(b[0:EndpointSize])
	if err != nil {
		return Endpoint{}, Endpoint{}, err
	}
	sub, err = DecodeEndpoint(b[EndpointSize:DiscoveryReplySize])
	if err != nil {
		return Endpoint{}, Endpoint{}, err
	}
	return dealer, sub, nil
}

// EncodeDiscoveryReply renders the 12-byte rendezvous reply.
func EncodeDiscoveryReply(dealer, sub Endpoint) []byte {
	buf := make([]byte, 0, DiscoveryReplySize)
	buf = append(buf, EncodeEndpoint(dealer)...)
	buf = append(buf, EncodeEndpoint(sub)...)
	return buf
}
