// Package control turns line positions and operator input into rate commands.
//
// The package is free of I/O. It owns the value types that flow through the
// control loop (State, RateCommand, Event) and the pure functions that
// transform them:
//
//   - Controller maps a blob centroid to a bounded yaw rate with a dead band.
//   - Apply handles one operator event, issuing at most one vehicle command.
//   - KeepAlive decides when the vehicle link needs a liveness ping.
//
// # Sign convention
//
// The offset is measured as dx = center - int(centroidX), so a line to the
// right of center gives a negative dx. The yaw rate is -dx: positive values
// turn clockwise toward a line on the right.
//
// # Ownership
//
// State is a plain value. The control loop holds the only copy and passes it
// into each update, receiving the new state back; nothing in this package
// keeps state between calls except KeepAlive, which the loop also owns.
package control
