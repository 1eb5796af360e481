// Package domain models electric-vehicle charging demand for postal-code areas.
//
// # Areas
//
// An area is identified by a five-digit postal code. Only codes inside the
// served region are accepted: the code must start with 10, 12, 13 or 14 and
// fall strictly between 10000 and 14200. Surrounding whitespace is trimmed
// before validation; anything else is rejected rather than coerced.
//
// # Residents per station
//
// The central metric is residents per station: population divided by the
// number of public charging stations. An area without stations reports its
// population as the ratio, so "no infrastructure" always ranks alongside the
// worst-served areas.
//
// # Bucketings over the same ratio
//
// Several independent scales are derived from residents per station. They
// intentionally use different cut points:
//
//	Priority level  HIGH > 5000, MEDIUM > 2000, LOW otherwise (zero stations is always HIGH)
//	Urgency score   100 ≥ 10000, 75 ≥ 5000, 50 ≥ 2000, 25 otherwise
//	Coverage        CRITICAL > 10000, POOR > 5000, ADEQUATE > 2000, GOOD otherwise
//	Expansion       needed when the ratio exceeds 3000
//
// Priority ties resolve to the less urgent bucket (exactly 5000 is MEDIUM,
// exactly 2000 is LOW) while urgency ties resolve upward (exactly 5000 scores
// 75). A MEDIUM area above 3000 is therefore still flagged for expansion.
//
// # Events
//
// DemandAnalysis accumulates events whenever its priority is recalculated.
// Construction does not emit; recalculation emits DemandCalculated and, for
// HIGH priority, HighDemandIdentified. Callers drain events with
// DomainEvents and ClearDomainEvents after publishing them.
package domain
