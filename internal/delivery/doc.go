// Package delivery fans a block out to a set of recipients and collects
// one result per recipient.
//
// # Modes
//
//   - [ModeDirect] hands every recipient the same in-memory value.
//   - [ModeJSON] encodes the block once and gives every recipient its own
//     decoded copy, the way a block arrives over a serialized channel.
//
// # Partial Failure
//
// A failing recipient never affects the others. [Broadcaster.Deliver]
// always returns one [Result] per target, in target order.
package delivery
