// SPDX-License-Identifier: EPL-2.0

package embed

import (
	"errors"
	"fmt"
)

var (
	ErrVideoNotImplemented = errors.New("video essence embedding is not implemented")
	ErrShortWrite          = errors.New("essence session accepted fewer frames than offered")
	ErrShortEssence        = errors.New("source ended before the expected frame count")
	ErrNoSource            = errors.New("asset has neither a header nor a source")
)

// Stage names the step of the construction protocol an embedding failed in.
type Stage string

const (
	StageHeaderFetch      Stage = "header-fetch"
	StageMobCreate        Stage = "mob-create"
	StageDescriptorCreate Stage = "descriptor-create"
	StageDescriptorAttach Stage = "descriptor-attach"
	StageMobRegister      Stage = "mob-register"
	StageEssenceOpen      Stage = "essence-open"
	StageWrite            Stage = "write"
)

// EmbedError reports a container protocol failure.
type EmbedError struct {
	Stage Stage
	// Mob is the name of the mob under construction, empty before it exists.
	Mob string
	Err error
}

func (e *EmbedError) Error() string {
	if e.Mob == "" {
		return fmt.Sprintf("embed %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("embed %s (mob %q): %v", e.Stage, e.Mob, e.Err)
}

func (e *EmbedError) Unwrap() error { return e.Err }

// StageOf returns the stage of the first EmbedError in err's chain.
func StageOf(err error) (Stage, bool) {
	var ee *EmbedError
	if errors.As(err, &ee) {
		return ee.Stage, true
	}
	return "", false
}
