package systems

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/spaghettifunk/anima-fractals/engine/core"
	"github.com/spaghettifunk/anima-fractals/engine/renderer/metadata"
)

type InstanceSystemConfig struct {
	/** @brief Upper bound on the instances a single generation may hold. */
	MaxInstanceCount uint32
}

/**
 * @brief Collects the instances of a generation pass for the renderer. A pass
 * is staged while it runs and replaces the visible set only when it commits.
 */
type InstanceSystem struct {
	Config *InstanceSystemConfig

	mu         sync.RWMutex
	generation uuid.UUID
	instances  []metadata.Instance

	staging   []metadata.Instance
	stagingID uuid.UUID
}

func NewInstanceSystem(config *InstanceSystemConfig) (*InstanceSystem, error) {
	if config.MaxInstanceCount == 0 {
		err := fmt.Errorf("func NewInstanceSystem - config.MaxInstanceCount must be > 0")
		core.LogError(err.Error())
		return nil, err
	}
	return &InstanceSystem{Config: config}, nil
}

func (is *InstanceSystem) BeginGeneration(id uuid.UUID) {
	is.mu.Lock()
	defer is.mu.Unlock()
	is.stagingID = id
	is.staging = make([]metadata.Instance, 0, 64)
}

func (is *InstanceSystem) Emit(instance metadata.Instance) error {
	is.mu.Lock()
	defer is.mu.Unlock()
	if is.stagingID == uuid.Nil || instance.GenerationID != is.stagingID {
		return fmt.Errorf("instance from generation %s does not belong to the open generation %s", instance.GenerationID, is.stagingID)
	}
	if uint32(len(is.staging)) >= is.Config.MaxInstanceCount {
		return fmt.Errorf("instance system is full (%d). Adjust configuration to allow more", is.Config.MaxInstanceCount)
	}
	is.staging = append(is.staging, instance)
	return nil
}

/**
 * @brief Closes the open generation. On commit its instances become the
 * visible set; otherwise they are dropped and the previous set stays.
 */
func (is *InstanceSystem) EndGeneration(id uuid.UUID, commit bool) {
	is.mu.Lock()
	defer is.mu.Unlock()
	if id != is.stagingID {
		core.LogWarn("instance system: generation %s is not open. Nothing was done.", id)
		return
	}
	if commit {
		is.generation = id
		is.instances = is.staging
	} else {
		core.LogWarn("instance system: generation %s discarded after %d instances", id, len(is.staging))
	}
	is.staging = nil
	is.stagingID = uuid.Nil
}

// Instances returns the committed generation. The slice is never written
// again once committed; callers must not modify it.
func (is *InstanceSystem) Instances() []metadata.Instance {
	is.mu.RLock()
	defer is.mu.RUnlock()
	return is.instances
}

func (is *InstanceSystem) Count() int {
	is.mu.RLock()
	defer is.mu.RUnlock()
	return len(is.instances)
}

// Generation identifies the committed set, or uuid.Nil when there is none.
func (is *InstanceSystem) Generation() uuid.UUID {
	is.mu.RLock()
	defer is.mu.RUnlock()
	return is.generation
}

// Clear drops every instance, staged or committed.
func (is *InstanceSystem) Clear() {
	is.mu.Lock()
	defer is.mu.Unlock()
	is.generation = uuid.Nil
	is.instances = nil
	is.stagingID = uuid.Nil
	is.staging = nil
}
