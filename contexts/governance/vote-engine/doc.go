// Package voteengine implements the governance vote engine inside the
// governance context.
//
// The module owns vote lifecycle orchestration (create/activate/close/
// finalize), ballot acceptance with eligibility gating, tally computation for
// all supported voting methods, and results-visibility enforcement. Business
// rules live in the application/domain layers; infrastructure concerns stay
// behind ports and adapters.
package voteengine
