// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the transport adapter for the AniChat backend.
//
// It wraps the five-endpoint HTTP surface the server exposes:
//
//	POST   /new_chat                 create a session
//	POST   /chat                     send a message, receive the reply
//	GET    /get_chat_sessions        list sessions
//	GET    /load_chat/{sessionId}    load a session transcript
//	DELETE /delete_chat/{sessionId}  delete a session
//
// The backend is loose about session id representation (numeric from
// some endpoints, string from others). This package normalizes every
// id to a canonical string at the decode boundary so the rest of the
// client compares ids with plain equality.
//
// Failures map onto a small taxonomy (see ErrorKind): connection,
// timeout, backend-reported, invalid response. The client never
// retries; every retry in this system is the user repeating the
// action.
package api
