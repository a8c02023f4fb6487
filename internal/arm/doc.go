// Package arm holds the normalized robot-arm state model shared by the
// wire codec and the link client.
package arm
