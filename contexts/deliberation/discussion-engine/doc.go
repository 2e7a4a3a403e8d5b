// Package discussionengine implements the discussion engine inside the
// deliberation context.
//
// The module owns session and roster lifecycle, turn and round scheduling
// across the five turn modes, utterance intake with idempotent replay,
// consensus proposals, and the two-round ranked poll pipeline from
// synthesis through Borda reduction to the three result lenses. Business
// rules live in the domain and application layers; infrastructure concerns
// stay behind ports and adapters, with events leaving through the outbox.
package discussionengine
