// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry records local streaming stats: time to first token,
// turn duration, revealed character counts, and peak drain backlog.
// Everything stays in a SQLite file under the user's config directory;
// nothing leaves the machine.
package telemetry
