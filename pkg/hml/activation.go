package hml

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// The process-wide slot tracking the pipeline currently being defined, with
// a single backup slot saved by Enter and restored by Exit. Only one level
// of nesting is preserved: Enter(A), Enter(B), Exit(), Exit() leaves A
// current, not the pre-A state. Callers needing more than one level should
// register through the *Pipeline methods directly and skip the ambient slot
// altogether.
var (
	activeMu        sync.Mutex
	currentPipeline *Pipeline
	oldPipeline     *Pipeline
)

// Enter installs p as the current pipeline, saving the previous one.
func Enter(p *Pipeline) {
	activeMu.Lock()
	defer activeMu.Unlock()

	if p != nil {
		log.Info().Str("pipeline", p.Name).Msg("pipeline enter")
	}

	oldPipeline = currentPipeline
	currentPipeline = p
}

// Exit restores the pipeline saved by the matching Enter.
func Exit() {
	activeMu.Lock()
	defer activeMu.Unlock()

	if currentPipeline != nil {
		log.Info().Str("pipeline", currentPipeline.Name).Msg("pipeline exit")
	}

	currentPipeline = oldPipeline
}

// Current returns the pipeline installed by Enter, or nil.
func Current() *Pipeline {
	activeMu.Lock()
	defer activeMu.Unlock()

	return currentPipeline
}
