// Package inject crafts and transmits the single test frames used by
// the switch tests. Each selector corresponds to one fixed
// Ethernet/IPv4/UDP frame and an egress interface; the frame for "1" is
// the frame for "0" with the MAC pair swapped, emitted on the peer side
// of the veth pair.
package inject

import (
	"errors"
	"fmt"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/nerpa-project/p4check/internal/filelock"
)

// ErrBadSelector means the direction selector was not "0" or "1".
// This is a configuration error; nothing is emitted.
var ErrBadSelector = errors.New("selector must be \"0\" or \"1\"")

// Fixed addressing for the test frames. These match the values the
// switch test programs expect to see.
var (
	macA = net.HardwareAddr{0x00, 0x11, 0x11, 0x00, 0x00, 0x00}
	macB = net.HardwareAddr{0x00, 0x22, 0x22, 0x00, 0x00, 0x00}
)

const (
	dstIP   = "1.2.3.4"
	srcPort = 1234
	dstPort = 2345

	ifaceA = "veth0"
	ifaceB = "veth2"
)

// FrameSpec describes one test frame and the interface to emit it on.
type FrameSpec struct {
	SrcMAC  net.HardwareAddr
	DstMAC  net.HardwareAddr
	SrcIP   net.IP
	DstIP   net.IP
	SrcPort layers.UDPPort
	DstPort layers.UDPPort
	Iface   string
}

// ForSelector maps a direction selector to its frame. Selector "0"
// sends A-to-B on veth0; "1" sends B-to-A on veth2. Anything else is
// ErrBadSelector.
func ForSelector(selector string) (FrameSpec, error) {
	spec := FrameSpec{
		SrcIP:   net.IPv4zero,
		DstIP:   net.ParseIP(dstIP),
		SrcPort: srcPort,
		DstPort: dstPort,
	}

	switch selector {
	case "0":
		spec.SrcMAC = macA
		spec.DstMAC = macB
		spec.Iface = ifaceA
	case "1":
		spec.SrcMAC = macB
		spec.DstMAC = macA
		spec.Iface = ifaceB
	default:
		return FrameSpec{}, fmt.Errorf("%w: got %q", ErrBadSelector, selector)
	}

	return spec, nil
}

// Serialize builds the wire bytes for the frame with lengths and
// checksums computed.
func (f FrameSpec) Serialize() ([]byte, error) {
	eth := &layers.Ethernet{
		SrcMAC:       f.SrcMAC,
		DstMAC:       f.DstMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    f.SrcIP,
		DstIP:    f.DstIP,
	}
	udp := &layers.UDP{
		SrcPort: f.SrcPort,
		DstPort: f.DstPort,
	}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		return nil, fmt.Errorf("bind UDP checksum layer: %w", err)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, udp); err != nil {
		return nil, fmt.Errorf("serialize frame: %w", err)
	}
	return buf.Bytes(), nil
}

// Send emits the frame once on its interface. A per-interface file lock
// serializes concurrent test processes injecting on the same veth pair.
func Send(spec FrameSpec) error {
	frame, err := spec.Serialize()
	if err != nil {
		return err
	}

	lock := filelock.ForInterface(spec.Iface)
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	handle, err := pcap.OpenLive(spec.Iface, 1024, false, pcap.BlockForever)
	if err != nil {
		return fmt.Errorf("open interface %s: %w", spec.Iface, err)
	}
	defer handle.Close()

	if err := handle.WritePacketData(frame); err != nil {
		return fmt.Errorf("send on %s: %w", spec.Iface, err)
	}
	return nil
}
