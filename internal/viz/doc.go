// Package viz renders simulated trajectories in the terminal: static
// ascii charts for quick inspection and an interactive replay view
// built on bubbletea.
package viz
