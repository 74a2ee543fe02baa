package constraint

import "github.com/akmonengine/impulse/actor"

type JointType int

const (
	JointBallSocket JointType = iota
	JointSlider
	JointHinge
	JointFixed
)

func (t JointType) String() string {
	switch t {
	case JointBallSocket:
		return "ball-socket"
	case JointSlider:
		return "slider"
	case JointHinge:
		return "hinge"
	case JointFixed:
		return "fixed"
	}
	return "unknown"
}

// Joint links two bodies into the same island. Joints are not solved here.
type Joint interface {
	Type() JointType
	Bodies() (*actor.RigidBody, *actor.RigidBody)
	// IsCollisionEnabled reports whether the two linked bodies may still collide
	IsCollisionEnabled() bool
}

// JointInfo is the base value shared by concrete joints.
type JointInfo struct {
	JointType        JointType
	BodyA            *actor.RigidBody
	BodyB            *actor.RigidBody
	CollisionEnabled bool
}

func NewJointInfo(jointType JointType, bodyA, bodyB *actor.RigidBody) JointInfo {
	return JointInfo{JointType: jointType, BodyA: bodyA, BodyB: bodyB}
}

func (j JointInfo) Type() JointType { return j.JointType }

func (j JointInfo) Bodies() (*actor.RigidBody, *actor.RigidBody) { return j.BodyA, j.BodyB }

func (j JointInfo) IsCollisionEnabled() bool { return j.CollisionEnabled }
