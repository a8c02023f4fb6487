// Package wire implements the fixed-layout binary codec for the arm
// controller link: endpoint descriptors, discovery replies, command
// requests, and telemetry frames.
//
// All multi-byte fields are little-endian per the controller contract.
// Encoding is pure and never fails for well-typed input; decoding returns
// sentinel errors for malformed data.
package wire
