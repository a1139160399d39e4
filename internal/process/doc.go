// Package process terminates browser process trees.
//
// Chrome forks renderer, GPU and utility helpers. Killing only the parent
// leaves them running, so engine disposal kills the whole group.
package process
