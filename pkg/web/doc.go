// Package web serves a component tree to browsers over WebSocket. Each
// connection gets its own engine, scheduler loop, and host adapter; the
// adapter mirrors the host tree server-side and streams every commit's
// mutations to the thin client as a JSON patch frame. Client events flow
// back as frames and fire the mirror node's listener on the session loop.
package web
