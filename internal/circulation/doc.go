// Package circulation owns the checkout/checkin workflow.
//
// The Engine is an explicit state machine: an operation mode (none,
// checkout, checkin) plus an optional pending member resolved mid-checkout.
// A scan event flows from the scan source through the resolver into the
// engine, which applies the in-memory mutation first and then persists,
// in that order. No failure in this package is fatal to the session: every
// error path returns the machine to a consistent idle or in-progress state.
package circulation
