// Package mqtt bridges the device service to an MQTT broker.
//
// State machine transitions are published as JSON on
// "<prefix>/<serial>/state". A message on "<prefix>/<serial>/reboot"
// requests a reboot of that device and the outcome is published on
// "<prefix>/<serial>/reboot/result". The daemon announces itself with a
// retained message on "<prefix>/status", cleared by the broker's last
// will when the connection is lost.
package mqtt
