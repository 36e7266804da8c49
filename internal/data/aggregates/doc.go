// Package aggregates implements the domain aggregate contracts.
//
// Each aggregate composes table repos from internal/data/repos and owns the
// transaction for its write. Create-if-absent steps go through getOrCreate or
// ON CONFLICT DO NOTHING inserts; unique constraints are the only arbiter
// between concurrent writers.
package aggregates
