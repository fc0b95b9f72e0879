package projection

import "fmt"

// MissingPrerequisiteError reports an update event that references an entity
// which has not been created yet (extend/settle/drop before create). The event
// is aborted and surfaced as a warning; no placeholder entity is fabricated.
// At-least-once redelivery applies it once the creation event has landed.
type MissingPrerequisiteError struct {
	EntityType string
	Key        string
}

func (e *MissingPrerequisiteError) Error() string {
	return fmt.Sprintf("%s %s does not exist yet", e.EntityType, e.Key)
}
