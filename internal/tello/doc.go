// Package tello talks to a Tello quadrotor over its text SDK.
//
// Two independent links are provided:
//
//   - Client sends SDK commands ("command", "rc a b c d", "takeoff", ...) as
//     UDP datagrams to the vehicle's command port and reads replies in the
//     background. Replies are only logged; no command waits for an
//     acknowledgment and nothing is retried.
//   - VideoStream runs ffmpeg on the vehicle's H.264 stream and keeps the most
//     recent decoded frame in a single slot that the control loop polls.
//
// Recorder implements the same command surface in memory, for dry runs and
// tests.
//
// # Network defaults
//
// The vehicle listens for commands on 192.168.10.1:8889 and replies to the
// sender's port. Video arrives on UDP port 11111 once "streamon" was sent.
package tello
