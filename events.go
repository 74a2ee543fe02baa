package impulse

import (
	"cogentcore.org/core/base/keylist"
	"github.com/akmonengine/impulse/actor"
)

const (
	TRIGGER_ENTER EventType = iota
	COLLISION_ENTER
	TRIGGER_STAY
	COLLISION_STAY
	TRIGGER_EXIT
	COLLISION_EXIT
	ON_SLEEP
	ON_WAKE
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Trigger events
type TriggerEnterEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerEnterEvent) Type() EventType { return TRIGGER_ENTER }

type TriggerStayEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerStayEvent) Type() EventType { return TRIGGER_STAY }

type TriggerExitEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e TriggerExitEvent) Type() EventType { return TRIGGER_EXIT }

// Collision events
type CollisionEnterEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// Sleep/Wake events
type SleepEvent struct {
	Body *actor.RigidBody
}

func (e SleepEvent) Type() EventType { return ON_SLEEP }

type WakeEvent struct {
	Body *actor.RigidBody
}

func (e WakeEvent) Type() EventType { return ON_WAKE }

// EventListener - callback for events
type EventListener func(event Event)

type activePair struct {
	bodyA, bodyB *actor.RigidBody
}

func (p activePair) isTrigger() bool {
	return p.bodyA.IsTrigger || p.bodyB.IsTrigger
}

// Events buffers what happened during a step and sends it to the listeners
// once the step is over. Pairs are kept in the order contacts were found.
type Events struct {
	listeners map[EventType][]EventListener
	buffer    []Event

	previousActivePairs *keylist.List[PairKey, activePair]
	currentActivePairs  *keylist.List[PairKey, activePair]

	sleepStates map[actor.BodyID]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: keylist.New[PairKey, activePair](),
		currentActivePairs:  keylist.New[PairKey, activePair](),
		sleepStates:         make(map[actor.BodyID]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordContact marks the pair as touching during this step
func (e *Events) recordContact(pair *OverlappingPair) {
	e.currentActivePairs.Set(pair.Key(), activePair{bodyA: pair.BodyA, bodyB: pair.BodyB})
}

// keepAlive carries a touching pair over a step where its test was skipped,
// so sleeping pairs neither exit nor stay.
func (e *Events) keepAlive(pair *OverlappingPair) {
	if previous, ok := e.previousActivePairs.AtTry(pair.Key()); ok {
		e.currentActivePairs.Set(pair.Key(), previous)
	}
}

// forget drops every trace of a removed body, without exit events
func (e *Events) forget(body *actor.RigidBody) {
	delete(e.sleepStates, body.ID)

	for _, list := range []*keylist.List[PairKey, activePair]{e.previousActivePairs, e.currentActivePairs} {
		for i := list.Len() - 1; i >= 0; i-- {
			if key := list.Keys[i]; key.A == body.ID || key.B == body.ID {
				list.DeleteByIndex(i, i+1)
			}
		}
	}
}

// processCollisionEvents compares current and previous pairs to detect Enter/Stay/Exit
func (e *Events) processCollisionEvents() {
	for i, key := range e.currentActivePairs.Keys {
		pair := e.currentActivePairs.Values[i]

		// Skip if both bodies are sleeping, to avoid spamming events
		if pair.bodyA.IsSleeping && pair.bodyB.IsSleeping {
			continue
		}

		_, wasActive := e.previousActivePairs.AtTry(key)
		switch {
		case wasActive && pair.isTrigger():
			e.buffer = append(e.buffer, TriggerStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		case wasActive:
			e.buffer = append(e.buffer, CollisionStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		case pair.isTrigger():
			e.buffer = append(e.buffer, TriggerEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		default:
			e.buffer = append(e.buffer, CollisionEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	for i, key := range e.previousActivePairs.Keys {
		if e.currentActivePairs.IndexByKey(key) >= 0 {
			continue
		}

		pair := e.previousActivePairs.Values[i]
		if pair.isTrigger() {
			e.buffer = append(e.buffer, TriggerExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		} else {
			e.buffer = append(e.buffer, CollisionExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	// Swap for next frame and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	e.currentActivePairs.Reset()
}

func (e *Events) processSleepEvents(bodies []*actor.RigidBody) {
	for _, body := range bodies {
		trackedState, exists := e.sleepStates[body.ID]
		if !exists {
			e.sleepStates[body.ID] = body.IsSleeping
			continue
		}

		if !trackedState && body.IsSleeping {
			e.buffer = append(e.buffer, SleepEvent{Body: body})
			e.sleepStates[body.ID] = true
		} else if trackedState && !body.IsSleeping {
			e.buffer = append(e.buffer, WakeEvent{Body: body})
			e.sleepStates[body.ID] = false
		}
	}
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}
