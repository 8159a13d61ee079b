// Reelrank - Movie Recommendation Engine and Serving API
// Copyright 2026 Marek V. (marekv42)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/marekv42/reelrank

/*
Package supervisor provides process supervision for Reelrank using suture v4.

The serving process runs a small hierarchical supervisor tree. Each
long-running component is wrapped as a suture.Service and placed in a
layer so failures stay contained:

	RootSupervisor ("reelrank")
	├── ServingSupervisor ("serving-layer")
	│   └── HTTPServerService
	└── MaintenanceSupervisor ("maintenance-layer")
	    └── LatencySweepService

A panic or error in a maintenance service restarts only that service; the
HTTP server keeps answering requests. Restart storms are damped with
suture's failure threshold, decay, and backoff settings, all configurable
through TreeConfig.

Supervision events (service starts, failures, backoff transitions) are
logged through slog via the sutureslog adapter, which plugs into the
application's zerolog pipeline through logging.NewSlogLogger.

Basic setup:

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddServingService(services.NewHTTPServerService(srv, 10*time.Second))
	tree.AddMaintenanceService(services.NewLatencySweepService(monitor, time.Minute, time.Second))
	return tree.Serve(ctx)

Serve blocks until the context is canceled, then shuts the tree down
leaf-first within the configured shutdown timeout.
*/
package supervisor
