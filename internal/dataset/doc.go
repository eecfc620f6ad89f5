// Package dataset generates the synthetic e-commerce tables.
//
// Generation runs in a fixed dependency order, threading one rng.Source
// through every step:
//
//	customers -> sessions -> events -> orders
//
// Sessions draw their customer from the customer id range. Events walk the
// sessions in id order and emit a view followed by a gated funnel
// (add_to_cart, checkout, purchase), stopping at the first failed step. The
// event pass returns the purchasing session ids as an explicit value, and
// orders are generated from exactly that list, one order per purchasing
// session. Reordering the steps breaks referential integrity.
//
// If the event pass produces no purchasing session, the lowest session id is
// promoted: its missing funnel events are appended to the event stream and it
// yields the single order. The dataset is flagged Degenerate.
package dataset
