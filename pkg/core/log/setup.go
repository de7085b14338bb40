// Copyright (c) 2025 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package log

import (
	"log/slog"
	"os"
)

// Setup installs the process-wide default slog handler. Log records
// are rendered as JSON lines when jsonLogs is true (suitable for a
// log shipper) and as human readable text lines otherwise.
func Setup(jsonLogs bool, level slog.Level) {
	opts := &slog.HandlerOptions{Level: level, AddSource: true}
	var h slog.Handler
	if jsonLogs {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}
