// Package follower runs the closed control loop.
//
// One goroutine executes Loop.Run. Each cycle it
//
//  1. takes the newest camera frame without blocking,
//  2. segments it and selects the largest blob,
//  3. computes and sends one rate command if tracking is enabled,
//  4. waits briefly for one operator event and applies it,
//  5. sends a keep-alive if one is due.
//
// The loop goroutine owns the control state. Other goroutines interact with it
// only through the event channel (Submit), the shared threshold band store
// and the read-only telemetry snapshot.
//
// The loop stops when its context is cancelled or a Quit event arrives, then
// sends a neutral rate command, stops the video stream and closes the link.
package follower
