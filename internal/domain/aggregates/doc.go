// Package aggregates defines domain-facing aggregate contracts.
//
// Each contract names a write boundary where marketplace invariants must hold
// atomically: one enrollment per learner and course, one progress row per
// enrollment and lesson, one media asset per object key, one certificate per
// learner and course, and one settlement per order.
package aggregates
