// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Roadmapgen - Roadmapgen renders a GitHub Projects-v2 board as a Mermaid Gantt
chart and keeps it spliced into a README, so a repository's roadmap stays in
sync with the board without manual editing.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bartekus/roadmapgen/cmd/roadmapgen/commands"
	"github.com/bartekus/roadmapgen/cmd/roadmapgen/internal/clierr"
)

func main() {
	// Cancellation is whole-process: a signal cancels the context threaded
	// through every pipeline stage.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(clierr.ExitCodeOf(err))
	}
}
