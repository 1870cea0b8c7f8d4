// Package console implements the operator console of the line follower.
//
// The console speaks line-delimited JSON-RPC 2.0, either on stdio or as
// websocket text messages at /ws. Methods map onto control events
// (tracking/enable, speed/adjust, move, ...), live threshold tuning
// (threshold/get, threshold/set) and inspection (status, color/sample,
// snapshot). The Hub streams annotated frames as JPEG to /stream viewers.
package console
