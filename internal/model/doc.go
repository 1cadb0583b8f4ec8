// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared by the client:
// chat sessions as the server reports them, and the messages rendered
// in the conversation window.
//
// Session ids are opaque, server-assigned, and always handled as
// strings on this side of the wire. The transport layer normalizes
// whatever representation the backend uses (numeric or string) before
// a Session or Message is constructed, so id comparison everywhere in
// the client is plain string equality.
package model
