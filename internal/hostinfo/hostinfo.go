// Package hostinfo identifies the host being inspected.
package hostinfo

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	hostnameDest     = "org.freedesktop.hostname1"
	hostnamePath     = dbus.ObjectPath("/org/freedesktop/hostname1")
	staticHostnameIf = "org.freedesktop.hostname1.StaticHostname"
	fallbackHostname = "localhost"
)

type propertyGetter interface {
	GetProperty(p string) (dbus.Variant, error)
}

// Hostname returns the static hostname known to systemd-hostnamed. When the
// system bus is not reachable it falls back to the kernel hostname, and to
// "localhost" when that is unavailable too.
func Hostname() string {
	return resolve(busHostname, os.Hostname)
}

func resolve(sources ...func() (string, error)) string {
	for _, source := range sources {
		name, err := source()
		if err != nil {
			slog.Debug("cannot determine hostname", "error", err)
			continue
		}
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	return fallbackHostname
}

func busHostname() (string, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return "", fmt.Errorf("cannot connect to system bus: %w", err)
	}
	defer conn.Close()

	return staticHostname(conn.Object(hostnameDest, hostnamePath))
}

func staticHostname(obj propertyGetter) (string, error) {
	v, err := obj.GetProperty(staticHostnameIf)
	if err != nil {
		return "", fmt.Errorf("cannot read %v: %w", staticHostnameIf, err)
	}
	name, ok := v.Value().(string)
	if !ok {
		return "", fmt.Errorf("unexpected %v type %v", staticHostnameIf, v.Signature())
	}
	return name, nil
}
