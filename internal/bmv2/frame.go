package bmv2

import (
	"fmt"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// Frame is an Ethernet frame carried in a packet message.
type Frame []byte

// String summarizes the frame's headers, e.g.
// "eth(dst=00:22:22:00:00:00, src=00:11:11:00:00:00), ipv4(dst=1.2.3.4,
// src=0.0.0.0), udp(dst=2345, src=1234)". Undecodable layers degrade to
// what could be parsed.
func (f Frame) String() string {
	packet := gopacket.NewPacket([]byte(f), layers.LayerTypeEthernet, gopacket.Lazy)

	var parts []string

	eth, ok := packet.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
	if !ok {
		return fmt.Sprintf("bad_eth(%d bytes)", len(f))
	}
	parts = append(parts, fmt.Sprintf("eth(dst=%s, src=%s)", eth.DstMAC, eth.SrcMAC))

	if ip, ok := packet.Layer(layers.LayerTypeIPv4).(*layers.IPv4); ok {
		parts = append(parts, fmt.Sprintf("ipv4(dst=%s, src=%s)", ip.DstIP, ip.SrcIP))
	} else if packet.Layer(layers.LayerTypeIPv6) != nil {
		parts = append(parts, "ipv6()")
		return strings.Join(parts, ", ")
	} else {
		parts = append(parts, fmt.Sprintf("ethertype(%s)", eth.EthernetType))
		return strings.Join(parts, ", ")
	}

	switch {
	case packet.Layer(layers.LayerTypeUDP) != nil:
		udp := packet.Layer(layers.LayerTypeUDP).(*layers.UDP)
		parts = append(parts, fmt.Sprintf("udp(dst=%d, src=%d)", udp.DstPort, udp.SrcPort))
	case packet.Layer(layers.LayerTypeTCP) != nil:
		tcp := packet.Layer(layers.LayerTypeTCP).(*layers.TCP)
		parts = append(parts, fmt.Sprintf("tcp(dst=%d, src=%d)", tcp.DstPort, tcp.SrcPort))
	case packet.Layer(layers.LayerTypeICMPv4) != nil:
		icmp := packet.Layer(layers.LayerTypeICMPv4).(*layers.ICMPv4)
		parts = append(parts, fmt.Sprintf("icmp(type=%s)", icmp.TypeCode))
	}

	return strings.Join(parts, ", ")
}
