// Package build runs beagle's full build cycle.
//
// An Engine owns src and dist. Each cycle re-discovers the actions, parses a
// fresh template environment, renders every command into a staging directory
// next to dist and then promotes the staged tree into dist while holding the
// dist write guard. A failed cycle discards the staging directory, so dist
// always holds the output of the last successful build.
//
// Cycles never interleave. Render called during a cycle records a single
// pending rebuild that runs as soon as the current cycle ends; TryRender
// reports ErrBuildInProgress instead.
package build
