// Package server provides the HTTP API of the command launcher.
//
// The server is a thin chi router over the command manager. Input sent to
// the dispatch endpoints is resolved by the sentence parser, and the
// resolved command's handlers run through the manager's error-isolating
// wrappers, so a failing handler yields ok=false rather than an HTTP error.
//
// # API Endpoints
//
//   - GET /command: registered commands; ?kind=builtin|user filters them
//   - GET /command/{uuid}: one command, looked up case-insensitively
//   - POST /command/{uuid}/enable, POST /command/{uuid}/disable
//   - GET /namespace: namespaces owning commands, builtin first
//   - POST /preview, POST /execute: {"input": "..."}
//   - GET /history: executed input, most recent first
//   - POST /reload, POST /reload/{namespace}: reload commands
//   - POST /script/check: evaluate a script without registering it
//   - GET /event: Server-Sent Events mirroring the event bus
//
// # Event Streaming
//
// Every event published on the bus is forwarded as an SSE "message" whose
// data is the JSON encoded event ({"type": ..., "data": ...}). A heartbeat
// comment is sent every SSEHeartbeatInterval.
package server
