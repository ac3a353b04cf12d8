package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is the root of every topic the bridge uses.
const DefaultTopicPrefix = "enodebd"

// Topics builds topic names under a prefix.
type Topics struct {
	Prefix string
}

func (t Topics) prefix() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return t.Prefix
}

// Status is the retained online/offline topic of the daemon.
func (t Topics) Status() string {
	return fmt.Sprintf("%s/status", t.prefix())
}

// DeviceState carries state transitions of one device.
func (t Topics) DeviceState(serial string) string {
	return fmt.Sprintf("%s/%s/state", t.prefix(), serial)
}

// DeviceReboot is where reboot commands for one device arrive.
func (t Topics) DeviceReboot(serial string) string {
	return fmt.Sprintf("%s/%s/reboot", t.prefix(), serial)
}

// DeviceRebootResult carries the outcome of a reboot command.
func (t Topics) DeviceRebootResult(serial string) string {
	return fmt.Sprintf("%s/%s/reboot/result", t.prefix(), serial)
}

// RebootWildcard subscribes to reboot commands of every device.
func (t Topics) RebootWildcard() string {
	return fmt.Sprintf("%s/+/reboot", t.prefix())
}

// ParseReboot extracts the serial from a reboot command topic.
func (t Topics) ParseReboot(topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, t.prefix()+"/")
	if !ok {
		return "", false
	}
	serial, ok := strings.CutSuffix(rest, "/reboot")
	if !ok || serial == "" || strings.Contains(serial, "/") {
		return "", false
	}
	return serial, true
}
