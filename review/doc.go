// Package review implements peer review coordination: selecting a bounded
// set of reviewer agents for a completed unit of work, collecting independent
// verdicts in parallel under a global timeout, and aggregating them into one
// deterministic outcome.
//
// Selection and verdict parsing both treat model output as a fallible
// decoder with an explicit fallback: selection falls back to uniform random
// choice, an unparsable verdict simply contributes no decision. Aggregation
// is a pure, order-independent function over the decision list.
package review
