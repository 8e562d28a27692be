package netmon

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
)

const procWireless = "/proc/net/wireless"

// LinuxProber reads an interface's state from the kernel: flags and IPv4
// address via the net package, signal level from /proc/net/wireless.
// Interfaces without a wireless entry report no RSSI.
type LinuxProber struct {
	Interface    string
	WirelessPath string
}

func NewLinuxProber(iface string) *LinuxProber {
	return &LinuxProber{Interface: iface, WirelessPath: procWireless}
}

func (p *LinuxProber) Probe() (Reading, error) {
	ifi, err := net.InterfaceByName(p.Interface)
	if err != nil {
		return Reading{}, err
	}
	if ifi.Flags&net.FlagUp == 0 {
		return Reading{}, nil
	}

	addrs, err := ifi.Addrs()
	if err != nil {
		return Reading{}, err
	}
	addr := firstIPv4(addrs)
	if addr == "" {
		return Reading{}, nil
	}

	r := Reading{Connected: true, Address: addr}

	f, err := os.Open(p.WirelessPath)
	if err != nil {
		return r, nil
	}
	defer f.Close()

	rssi, ok, err := parseWireless(f, p.Interface)
	if err != nil {
		return r, err
	}
	if ok {
		r.RSSI = rssi
		r.HasRSSI = true
	}
	return r, nil
}

func firstIPv4(addrs []net.Addr) string {
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil && !ip4.IsLoopback() {
			return ip4.String()
		}
	}
	return ""
}

// parseWireless finds iface in /proc/net/wireless content and returns its
// signal level in dBm.
//
//	Inter-| sta-|   Quality        |   Discarded packets
//	 face | tus | link level noise |  nwid  crypt ...
//	 wlan0: 0000   54.  -56.  -256        0      0 ...
func parseWireless(r io.Reader, iface string) (int, bool, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		name, rest, found := strings.Cut(line, ":")
		if !found || strings.TrimSpace(name) != iface {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) < 3 {
			return 0, false, fmt.Errorf("short wireless entry for %s", iface)
		}
		level, err := strconv.ParseFloat(strings.TrimSuffix(fields[2], "."), 64)
		if err != nil {
			return 0, false, fmt.Errorf("parse signal level %q: %w", fields[2], err)
		}
		return int(level), true, nil
	}
	return 0, false, sc.Err()
}
